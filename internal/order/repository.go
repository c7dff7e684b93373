package order

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/pkg/database"
)

type Repository interface {
	// Create inserts the order and its items.
	Create(ctx context.Context, order *model.Order) error
	FindByID(ctx context.Context, id string, lock database.LockMode) (*model.Order, error)
	FindAll(ctx context.Context, filters *dto.OrderFilters) ([]model.Order, int, error)
	// UpdateStatus moves the order from one status to another and reports whether the
	// row was still in from.
	UpdateStatus(ctx context.Context, id string, from, to model.OrderStatus, at time.Time) (bool, error)
}
