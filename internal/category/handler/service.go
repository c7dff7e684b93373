package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/grpcjson"
	"google.golang.org/grpc"
)

const serviceName = "omnipos.catalog.v1.CategoryService"

type CreateCategoryRequest struct {
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type GetCategoryRequest struct {
	ID string `json:"id"`
}

type ListCategoriesRequest struct {
	ParentID *string `json:"parent_id"`
	Tree     bool    `json:"tree"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

type UpdateCategoryRequest struct {
	ID       string `json:"id"`
	ParentID string `json:"parent_id"`
	Name     string `json:"name"`
}

type DeleteCategoryRequest struct {
	ID string `json:"id"`
}

type CategoryResponse struct {
	Category *model.Category `json:"category"`
}

type ListCategoriesResponse struct {
	Categories []model.Category `json:"categories"`
	Total      int              `json:"total"`
	Page       int              `json:"page,omitempty"`
	PageSize   int              `json:"page_size,omitempty"`
}

type PriceSummaryResponse struct {
	Summary *model.CategoryPriceSummary `json:"summary"`
}

type Empty struct{}

type CategoryServiceServer interface {
	CreateCategory(context.Context, *CreateCategoryRequest) (*CategoryResponse, error)
	GetCategory(context.Context, *GetCategoryRequest) (*CategoryResponse, error)
	ListCategories(context.Context, *ListCategoriesRequest) (*ListCategoriesResponse, error)
	UpdateCategory(context.Context, *UpdateCategoryRequest) (*CategoryResponse, error)
	DeleteCategory(context.Context, *DeleteCategoryRequest) (*Empty, error)
	GetPriceSummary(context.Context, *GetCategoryRequest) (*PriceSummaryResponse, error)
}

var CategoryServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*CategoryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "CreateCategory", Handler: grpcjson.Unary("/"+serviceName+"/CreateCategory", CategoryServiceServer.CreateCategory)},
		{MethodName: "GetCategory", Handler: grpcjson.Unary("/"+serviceName+"/GetCategory", CategoryServiceServer.GetCategory)},
		{MethodName: "ListCategories", Handler: grpcjson.Unary("/"+serviceName+"/ListCategories", CategoryServiceServer.ListCategories)},
		{MethodName: "UpdateCategory", Handler: grpcjson.Unary("/"+serviceName+"/UpdateCategory", CategoryServiceServer.UpdateCategory)},
		{MethodName: "DeleteCategory", Handler: grpcjson.Unary("/"+serviceName+"/DeleteCategory", CategoryServiceServer.DeleteCategory)},
		{MethodName: "GetPriceSummary", Handler: grpcjson.Unary("/"+serviceName+"/GetPriceSummary", CategoryServiceServer.GetPriceSummary)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "omnipos/catalog/v1/category.json",
}

func RegisterCategoryServiceServer(s grpc.ServiceRegistrar, srv CategoryServiceServer) {
	s.RegisterService(&CategoryServiceDesc, srv)
}
