package inventory

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
)

// StockLevel is the locked view of a product's stock.
type StockLevel struct {
	ProductID string `db:"id"`
	Stock     int    `db:"stock"`
}

type Repository interface {
	// LockStock reads stock for ids in ascending id order, holding row locks until
	// the transaction ends.
	LockStock(ctx context.Context, ids []string) ([]StockLevel, error)
	// ApplyDelta adds delta to stock unless the result would be negative. It reports
	// whether the row was changed.
	ApplyDelta(ctx context.Context, productID string, delta int) (bool, error)

	// Movements / Audit
	LogMovement(ctx context.Context, movement *model.StockMovement) error
	ListMovements(ctx context.Context, filters *dto.MovementFilters) ([]model.StockMovement, int, error)
}
