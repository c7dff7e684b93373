package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/customer"
	customerdto "github.com/fekuna/omnipos-order-service/internal/customer/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

var _ OrderServiceServer = (*OrderHandler)(nil)

type OrderHandler struct {
	uc        order.UseCase
	customers customer.UseCase
	logger    logger.ZapLogger
}

func NewOrderHandler(uc order.UseCase, customers customer.UseCase, log logger.ZapLogger) *OrderHandler {
	return &OrderHandler{
		uc:        uc,
		customers: customers,
		logger:    log,
	}
}

func (h *OrderHandler) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (*OrderResponse, error) {
	p, err := auth.Require(ctx, auth.ActionPlaceOrder)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	// The notification worker resolves the recipient from the customer directory.
	if _, err := h.customers.EnsureCustomer(ctx, customerdto.FromPrincipal(p)); err != nil {
		h.logger.Error("failed to ensure customer", zap.String("customer_id", p.UserID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}

	lines := make([]dto.LineInput, len(req.Items))
	for i, it := range req.Items {
		lines[i] = dto.LineInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	o, err := h.uc.PlaceOrder(ctx, &dto.PlaceOrderInput{CustomerID: p.UserID, Lines: lines})
	if err != nil {
		h.logger.Warn("order rejected", zap.String("customer_id", p.UserID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) ApproveOrder(ctx context.Context, req *OrderIDRequest) (*OrderResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionApproveOrder); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	o, err := h.uc.ApproveOrder(ctx, req.OrderID)
	if err != nil {
		h.logger.Warn("failed to approve order", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) CancelOrder(ctx context.Context, req *OrderIDRequest) (*OrderResponse, error) {
	if _, err := auth.Require(ctx, auth.ActionCancelOrder); err != nil {
		return nil, apperror.ToGRPC(err)
	}

	o, err := h.uc.CancelOrder(ctx, req.OrderID)
	if err != nil {
		h.logger.Warn("failed to cancel order", zap.String("order_id", req.OrderID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &OrderResponse{Order: o}, nil
}

// GetOrder hides other customers' orders behind NotFound.
func (h *OrderHandler) GetOrder(ctx context.Context, req *OrderIDRequest) (*OrderResponse, error) {
	p, err := auth.Require(ctx, auth.ActionViewOwnOrders)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	o, err := h.uc.GetOrder(ctx, req.OrderID)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	if auth.Authorize(p, auth.ActionViewAllOrders) != nil && o.CustomerID != p.UserID {
		return nil, apperror.ToGRPC(apperror.NotFound("order", req.OrderID))
	}
	return &OrderResponse{Order: o}, nil
}

func (h *OrderHandler) ListOrders(ctx context.Context, req *ListOrdersRequest) (*ListOrdersResponse, error) {
	p, err := auth.Require(ctx, auth.ActionViewOwnOrders)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	customerID := req.CustomerID
	if auth.Authorize(p, auth.ActionViewAllOrders) != nil {
		customerID = p.UserID
	}

	orders, count, err := h.uc.ListOrders(ctx, &dto.OrderFilters{
		CustomerID: customerID,
		Status:     model.OrderStatus(req.Status),
		Page:       req.Page,
		PageSize:   req.PageSize,
	})
	if err != nil {
		h.logger.Error("failed to list orders", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}

	return &ListOrdersResponse{
		Orders:   orders,
		Total:    count,
		Page:     req.Page,
		PageSize: req.PageSize,
	}, nil
}
