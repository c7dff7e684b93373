package inventory

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
)

// ReferenceType classifies what caused a stock movement.
type ReferenceType string

const (
	ReferenceOrder      ReferenceType = "order"
	ReferenceAdjustment ReferenceType = "adjustment"
)

// Line is a request for quantity units of one product.
type Line struct {
	ProductID string
	Quantity  int
}

// Reference is recorded on every movement a reservation writes.
type Reference struct {
	Type      ReferenceType
	ID        string
	CreatedBy string
	Notes     string
}

// Ledger is the only writer of product stock after creation.
type Ledger interface {
	// IsInStock reports whether p currently covers quantity. It takes no locks.
	IsInStock(p *model.Product, quantity int) bool
	// Reserve decrements stock for every line or for none. It must run inside the
	// caller's transaction and fails with database.ErrNoTx otherwise.
	Reserve(ctx context.Context, lines []Line, ref Reference) error
}
