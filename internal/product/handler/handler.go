package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/pricing"
	"github.com/fekuna/omnipos-order-service/internal/product"
	"github.com/fekuna/omnipos-order-service/internal/product/dto"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

var _ ProductServiceServer = (*ProductHandler)(nil)

type ProductHandler struct {
	uc     product.UseCase
	logger logger.ZapLogger
}

func NewProductHandler(uc product.UseCase, log logger.ZapLogger) *ProductHandler {
	return &ProductHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *ProductHandler) CreateProduct(ctx context.Context, req *CreateProductRequest) (*ProductResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	p, err := h.uc.CreateProduct(ctx, toCreateInput(req))
	if err != nil {
		h.logger.Error("failed to create product", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &ProductResponse{Product: mapProduct(p)}, nil
}

func (h *ProductHandler) ImportProducts(ctx context.Context, req *ImportProductsRequest) (*ListProductsResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	inputs := make([]*dto.CreateProductInput, len(req.Products))
	for i := range req.Products {
		inputs[i] = toCreateInput(&req.Products[i])
	}

	products, err := h.uc.ImportProducts(ctx, inputs)
	if err != nil {
		h.logger.Error("failed to import products", zap.Int("count", len(inputs)), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &ListProductsResponse{Products: mapProducts(products), Total: len(products)}, nil
}

func (h *ProductHandler) GetProduct(ctx context.Context, req *GetProductRequest) (*ProductResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	p, err := h.uc.GetProduct(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return &ProductResponse{Product: mapProduct(p)}, nil
}

func (h *ProductHandler) ListProducts(ctx context.Context, req *ListProductsRequest) (*ListProductsResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	products, count, err := h.uc.ListProducts(ctx, &dto.ProductFilters{
		CategoryID:  req.CategoryID,
		InStockOnly: req.InStockOnly,
		SortBy:      req.SortBy,
		SortOrder:   req.SortOrder,
		Page:        req.Page,
		PageSize:    req.PageSize,
	})
	if err != nil {
		h.logger.Error("failed to list products", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}

	return &ListProductsResponse{
		Products: mapProducts(products),
		Total:    count,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}

func (h *ProductHandler) SearchProducts(ctx context.Context, req *SearchProductsRequest) (*ListProductsResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}
	if req.Query == "" {
		return nil, apperror.ToGRPC(apperror.Validation("query", "query is required"))
	}

	products, count, err := h.uc.ListProducts(ctx, &dto.ProductFilters{
		CategoryID:  req.CategoryID,
		SearchQuery: req.Query,
		Page:        1,
		PageSize:    req.Limit,
	})
	if err != nil {
		h.logger.Error("failed to search products", zap.String("query", req.Query), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &ListProductsResponse{Products: mapProducts(products), Total: count}, nil
}

func (h *ProductHandler) UpdateProduct(ctx context.Context, req *UpdateProductRequest) (*ProductResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	p, err := h.uc.UpdateProduct(ctx, &dto.UpdateProductInput{
		ID:            req.ID,
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
	})
	if err != nil {
		h.logger.Error("failed to update product", zap.String("product_id", req.ID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &ProductResponse{Product: mapProduct(p)}, nil
}

func (h *ProductHandler) DeleteProduct(ctx context.Context, req *DeleteProductRequest) (*Empty, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	if err := h.uc.DeleteProduct(ctx, req.ID); err != nil {
		h.logger.Error("failed to delete product", zap.String("product_id", req.ID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &Empty{}, nil
}

func toCreateInput(req *CreateProductRequest) *dto.CreateProductInput {
	return &dto.CreateProductInput{
		CategoryID:    req.CategoryID,
		Name:          req.Name,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         req.Stock,
	}
}

// Helper
func mapProduct(m *model.Product) *Product {
	if m == nil {
		return nil
	}
	return &Product{Product: m, EffectivePrice: pricing.EffectivePrice(m)}
}

func mapProducts(products []model.Product) []*Product {
	out := make([]*Product, len(products))
	for i := range products {
		out[i] = mapProduct(&products[i])
	}
	return out
}
