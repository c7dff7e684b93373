package customer

import (
	"context"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

type Repository interface {
	// Upsert inserts the customer or refreshes its identity fields. The phone number of an
	// existing row is kept.
	Upsert(ctx context.Context, c *model.Customer) error
	FindByID(ctx context.Context, id string) (*model.Customer, error)
	UpdatePhone(ctx context.Context, id, phone string, at time.Time) error
}
