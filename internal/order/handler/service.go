package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/grpcjson"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.order.v1.OrderService"

type OrderLine struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type PlaceOrderRequest struct {
	Items []OrderLine `json:"items"`
}

type OrderIDRequest struct {
	OrderID string `json:"order_id"`
}

type OrderResponse struct {
	Order *model.Order `json:"order"`
}

type ListOrdersRequest struct {
	// CustomerID is honoured for admins only; customers always see their own orders.
	CustomerID string `json:"customer_id"`
	Status     string `json:"status"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
}

type ListOrdersResponse struct {
	Orders   []model.Order `json:"orders"`
	Total    int           `json:"total"`
	Page     int           `json:"page,omitempty"`
	PageSize int           `json:"page_size,omitempty"`
}

type OrderServiceServer interface {
	PlaceOrder(context.Context, *PlaceOrderRequest) (*OrderResponse, error)
	ApproveOrder(context.Context, *OrderIDRequest) (*OrderResponse, error)
	CancelOrder(context.Context, *OrderIDRequest) (*OrderResponse, error)
	GetOrder(context.Context, *OrderIDRequest) (*OrderResponse, error)
	ListOrders(context.Context, *ListOrdersRequest) (*ListOrdersResponse, error)
}

var OrderServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*OrderServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "PlaceOrder", Handler: grpcjson.Unary("/"+serviceName+"/PlaceOrder", OrderServiceServer.PlaceOrder)},
		{MethodName: "ApproveOrder", Handler: grpcjson.Unary("/"+serviceName+"/ApproveOrder", OrderServiceServer.ApproveOrder)},
		{MethodName: "CancelOrder", Handler: grpcjson.Unary("/"+serviceName+"/CancelOrder", OrderServiceServer.CancelOrder)},
		{MethodName: "GetOrder", Handler: grpcjson.Unary("/"+serviceName+"/GetOrder", OrderServiceServer.GetOrder)},
		{MethodName: "ListOrders", Handler: grpcjson.Unary("/"+serviceName+"/ListOrders", OrderServiceServer.ListOrders)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/order/v1/order.json",
}

func RegisterOrderServiceServer(s grpc.ServiceRegistrar, srv OrderServiceServer) {
	s.RegisterService(&OrderServiceDesc, srv)
}
