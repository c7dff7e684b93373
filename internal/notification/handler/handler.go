package handler

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/auth"
	"github.com/fekuna/omnipos-order-service/internal/notification"
	"github.com/fekuna/omnipos-order-service/internal/notification/dto"
	"github.com/fekuna/omnipos-order-service/pkg/logger"
	"go.uber.org/zap"
)

var _ NotificationServiceServer = (*NotificationHandler)(nil)

type NotificationHandler struct {
	repo   notification.Repository
	logger logger.ZapLogger
}

func NewNotificationHandler(repo notification.Repository, log logger.ZapLogger) *NotificationHandler {
	return &NotificationHandler{
		repo:   repo,
		logger: log,
	}
}

func (h *NotificationHandler) ListNotifications(ctx context.Context, req *ListNotificationsRequest) (*ListNotificationsResponse, error) {
	p, err := auth.Require(ctx, auth.ActionManageProfile)
	if err != nil {
		return nil, apperror.ToGRPC(err)
	}

	userID := req.UserID
	if auth.Authorize(p, auth.ActionViewAllOrders) != nil {
		userID = p.UserID
	}

	items, count, err := h.repo.List(ctx, &dto.NotificationFilters{
		UserID:   userID,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		h.logger.Error("failed to list notifications", zap.Error(err))
		return nil, apperror.ToGRPC(err)
	}

	return &ListNotificationsResponse{
		Notifications: items,
		Total:         count,
		Page:          req.Page,
		PageSize:      req.PageSize,
	}, nil
}
