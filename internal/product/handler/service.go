package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/grpcjson"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.catalog.v1.ProductService"

type CreateProductRequest struct {
	CategoryID    string           `json:"category_id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
	Stock         int              `json:"stock"`
}

type ImportProductsRequest struct {
	Products []CreateProductRequest `json:"products"`
}

type GetProductRequest struct {
	ID string `json:"id"`
}

type ListProductsRequest struct {
	CategoryID  string `json:"category_id"`
	InStockOnly bool   `json:"in_stock_only"`
	SortBy      string `json:"sort_by"`
	SortOrder   string `json:"sort_order"`
	Page        int    `json:"page"`
	PageSize    int    `json:"page_size"`
}

type SearchProductsRequest struct {
	Query      string `json:"query"`
	CategoryID string `json:"category_id"`
	Limit      int    `json:"limit"`
}

type UpdateProductRequest struct {
	ID            string           `json:"id"`
	CategoryID    string           `json:"category_id"`
	Name          string           `json:"name"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discount_price"`
}

type DeleteProductRequest struct {
	ID string `json:"id"`
}

// Product is the wire view of a product, carrying the price a customer pays today.
type Product struct {
	*model.Product
	EffectivePrice decimal.Decimal `json:"effective_price"`
}

type ProductResponse struct {
	Product *Product `json:"product"`
}

type ListProductsResponse struct {
	Products []*Product `json:"products"`
	Total    int        `json:"total"`
	Page     int        `json:"page,omitempty"`
	PageSize int        `json:"page_size,omitempty"`
}

type Empty struct{}

type ProductServiceServer interface {
	CreateProduct(context.Context, *CreateProductRequest) (*ProductResponse, error)
	ImportProducts(context.Context, *ImportProductsRequest) (*ListProductsResponse, error)
	GetProduct(context.Context, *GetProductRequest) (*ProductResponse, error)
	ListProducts(context.Context, *ListProductsRequest) (*ListProductsResponse, error)
	SearchProducts(context.Context, *SearchProductsRequest) (*ListProductsResponse, error)
	UpdateProduct(context.Context, *UpdateProductRequest) (*ProductResponse, error)
	DeleteProduct(context.Context, *DeleteProductRequest) (*Empty, error)
}

var ProductServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*ProductServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateProduct", Handler: grpcjson.Unary("/"+serviceName+"/CreateProduct", ProductServiceServer.CreateProduct)},
		{MethodName: "ImportProducts", Handler: grpcjson.Unary("/"+serviceName+"/ImportProducts", ProductServiceServer.ImportProducts)},
		{MethodName: "GetProduct", Handler: grpcjson.Unary("/"+serviceName+"/GetProduct", ProductServiceServer.GetProduct)},
		{MethodName: "ListProducts", Handler: grpcjson.Unary("/"+serviceName+"/ListProducts", ProductServiceServer.ListProducts)},
		{MethodName: "SearchProducts", Handler: grpcjson.Unary("/"+serviceName+"/SearchProducts", ProductServiceServer.SearchProducts)},
		{MethodName: "UpdateProduct", Handler: grpcjson.Unary("/"+serviceName+"/UpdateProduct", ProductServiceServer.UpdateProduct)},
		{MethodName: "DeleteProduct", Handler: grpcjson.Unary("/"+serviceName+"/DeleteProduct", ProductServiceServer.DeleteProduct)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/catalog/v1/product.json",
}

func RegisterProductServiceServer(s grpc.ServiceRegistrar, srv ProductServiceServer) {
	s.RegisterService(&ProductServiceDesc, srv)
}
