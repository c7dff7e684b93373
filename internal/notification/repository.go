package notification

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/notification/dto"
)

// Repository is append-only.
type Repository interface {
	Create(ctx context.Context, n *model.Notification) error
	List(ctx context.Context, filters *dto.NotificationFilters) ([]model.Notification, int, error)
}
