package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/category"
	"github.com/fekuna/omnipos-order-service/internal/category/dto"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

var _ CategoryServiceServer = (*CategoryHandler)(nil)

type CategoryHandler struct {
	uc     category.UseCase
	logger logger.ZapLogger
}

func NewCategoryHandler(uc category.UseCase, log logger.ZapLogger) *CategoryHandler {
	return &CategoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *CategoryHandler) CreateCategory(ctx context.Context, req *CreateCategoryRequest) (*CategoryResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	input := &dto.CreateCategoryInput{Name: req.Name}
	if req.ParentID != "" {
		input.ParentID = &req.ParentID
	}

	cat, err := h.uc.CreateCategory(ctx, input)
	if err != nil {
		h.logger.Error("failed to create category", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &CategoryResponse{Category: cat}, nil
}

func (h *CategoryHandler) GetCategory(ctx context.Context, req *GetCategoryRequest) (*CategoryResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	cat, err := h.uc.GetCategory(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return &CategoryResponse{Category: cat}, nil
}

func (h *CategoryHandler) ListCategories(ctx context.Context, req *ListCategoriesRequest) (*ListCategoriesResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	if req.Tree {
		tree, err := h.uc.GetCategoryTree(ctx)
		if err != nil {
			h.logger.Error("failed to build category tree", zap.Error(err))
			return nil, apperror.ToGRPC(err)
		}
		return &ListCategoriesResponse{Categories: tree, Total: len(tree)}, nil
	}

	cats, count, err := h.uc.ListCategories(ctx, &dto.CategoryFilters{
		ParentID: req.ParentID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &ListCategoriesResponse{Categories: cats, Total: count, Page: req.Page, PageSize: req.PageSize}, nil
}

func (h *CategoryHandler) UpdateCategory(ctx context.Context, req *UpdateCategoryRequest) (*CategoryResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	input := &dto.UpdateCategoryInput{ID: req.ID, Name: req.Name}
	if req.ParentID != "" {
		input.ParentID = &req.ParentID
	}

	cat, err := h.uc.UpdateCategory(ctx, input)
	if err != nil {
		h.logger.Error("failed to update category", zap.String("category_id", req.ID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &CategoryResponse{Category: cat}, nil
}

func (h *CategoryHandler) DeleteCategory(ctx context.Context, req *DeleteCategoryRequest) (*Empty, error) {
	if _, err := auth.Require(ctx, auth.ActionManageCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	if err := h.uc.DeleteCategory(ctx, req.ID); err != nil {
		h.logger.Error("failed to delete category", zap.String("category_id", req.ID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &Empty{}, nil
}

func (h *CategoryHandler) GetPriceSummary(ctx context.Context, req *GetCategoryRequest) (*PriceSummaryResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	summary, err := h.uc.PriceSummary(ctx, req.ID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return &PriceSummaryResponse{Summary: summary}, nil
}
