package handler

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/grpcjson"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.inventory.v1.InventoryService"

type GetStockRequest struct {
	ProductID string `json:"product_id"`
}

type StockResponse struct {
	ProductID string `json:"product_id"`
	Stock     int    `json:"stock"`
}

type AdjustStockRequest struct {
	ProductID      string `json:"product_id"`
	QuantityChange int    `json:"quantity_change"`
	Reason         string `json:"reason"`
}

type MovementResponse struct {
	Movement *model.StockMovement `json:"movement"`
}

type ListMovementsRequest struct {
	ProductID     string     `json:"product_id"`
	ReferenceType string     `json:"reference_type"`
	ReferenceID   string     `json:"reference_id"`
	StartDate     *time.Time `json:"start_date"`
	EndDate       *time.Time `json:"end_date"`
	Page          int        `json:"page"`
	PageSize      int        `json:"page_size"`
}

type ListMovementsResponse struct {
	Movements []model.StockMovement `json:"movements"`
	Total     int                   `json:"total"`
	Page      int                   `json:"page,omitempty"`
	PageSize  int                   `json:"page_size,omitempty"`
}

type InventoryServiceServer interface {
	GetStock(context.Context, *GetStockRequest) (*StockResponse, error)
	AdjustStock(context.Context, *AdjustStockRequest) (*MovementResponse, error)
	ListMovements(context.Context, *ListMovementsRequest) (*ListMovementsResponse, error)
}

var InventoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*InventoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetStock", Handler: grpcjson.Unary("/"+serviceName+"/GetStock", InventoryServiceServer.GetStock)},
		{MethodName: "AdjustStock", Handler: grpcjson.Unary("/"+serviceName+"/AdjustStock", InventoryServiceServer.AdjustStock)},
		{MethodName: "ListMovements", Handler: grpcjson.Unary("/"+serviceName+"/ListMovements", InventoryServiceServer.ListMovements)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/inventory/v1/inventory.json",
}

func RegisterInventoryServiceServer(s grpc.ServiceRegistrar, srv InventoryServiceServer) {
	s.RegisterService(&InventoryServiceDesc, srv)
}
