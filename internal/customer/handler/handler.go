package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/customer"
	"github.com/fekuna/omnipos-order-service/internal/customer/dto"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

var _ CustomerServiceServer = (*CustomerHandler)(nil)

type CustomerHandler struct {
	uc     customer.UseCase
	logger logger.ZapLogger
}

func NewCustomerHandler(uc customer.UseCase, log logger.ZapLogger) *CustomerHandler {
	return &CustomerHandler{
		uc:     uc,
		logger: log,
	}
}

// GetProfile returns the caller's profile, creating it on first sight.
func (h *CustomerHandler) GetProfile(ctx context.Context, _ *GetProfileRequest) (*ProfileResponse, error) {
	p, err := auth.Require(ctx, auth.ActionManageProfile)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	c, err := h.uc.EnsureCustomer(ctx, dto.FromPrincipal(p))
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}
	return &ProfileResponse{Customer: c}, nil
}

func (h *CustomerHandler) UpdatePhone(ctx context.Context, req *UpdatePhoneRequest) (*ProfileResponse, error) {
	p, err := auth.Require(ctx, auth.ActionManageProfile)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	if _, err := h.uc.EnsureCustomer(ctx, dto.FromPrincipal(p)); err != nil {
		return nil, apperror.ToGRPC(err)
	}
	c, err := h.uc.UpdatePhone(ctx, &dto.UpdatePhoneInput{ID: p.UserID, PhoneNumber: req.PhoneNumber})
	if err != nil {
		h.logger.Warn("failed to update phone", zap.String("customer_id", p.UserID), zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}
	return &ProfileResponse{Customer: c}, nil
}
