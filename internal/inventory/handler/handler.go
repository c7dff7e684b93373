package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/inventory"
	"github.com/fekuna/omnipos-order-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

var _ InventoryServiceServer = (*InventoryHandler)(nil)

type InventoryHandler struct {
	uc     inventory.UseCase
	logger logger.ZapLogger
}

func NewInventoryHandler(uc inventory.UseCase, log logger.ZapLogger) *InventoryHandler {
	return &InventoryHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *InventoryHandler) GetStock(ctx context.Context, req *GetStockRequest) (*StockResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionBrowseCatalog); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	stock, err := h.uc.GetStock(ctx, req.ProductID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return &StockResponse{ProductID: req.ProductID, Stock: stock}, nil
}

func (h *InventoryHandler) AdjustStock(ctx context.Context, req *AdjustStockRequest) (*MovementResponse, error) {
	p, err := auth.Require(ctx, auth.ActionManageInventory)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	movement, err := h.uc.AdjustStock(ctx, &dto.AdjustStockInput{
		ProductID:      req.ProductID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
		UserID:         p.UserID,
	})
	if err != nil {
		h.logger.Error("failed to adjust stock", zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &MovementResponse{Movement: movement}, nil
}

func (h *InventoryHandler) ListMovements(ctx context.Context, req *ListMovementsRequest) (*ListMovementsResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionManageInventory); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	items, count, err := h.uc.ListMovements(ctx, &dto.MovementFilters{
		ProductID:     req.ProductID,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Page:          req.Page,
		PageSize:      req.PageSize,
	})
	if err != nil {
		h.logger.Error("failed to list movements", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}

	return &ListMovementsResponse{
		Movements: items,
		Total:     count,
		Page:      req.Page,
		PageSize:  req.PageSize,
	}, nil
}
