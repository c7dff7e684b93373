package category

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/category/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/shopspring/decimal"
)

type Repository interface {
	Create(ctx context.Context, category *model.Category) error
	FindByID(ctx context.Context, id string) (*model.Category, error)
	FindAll(ctx context.Context, filters *dto.CategoryFilters) ([]model.Category, int, error)
	Update(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id string) error

	// SubtreeIDs returns id and the ids of all its descendants.
	SubtreeIDs(ctx context.Context, id string) ([]string, error)
	// LockTree serializes tree reshaping against concurrent writers. It requires a transaction.
	LockTree(ctx context.Context) error
	// CountOrderedProducts counts products in the given categories that order items refer to.
	CountOrderedProducts(ctx context.Context, categoryIDs []string) (int, error)
	// ListPrices returns the list price of every product in the given categories.
	ListPrices(ctx context.Context, categoryIDs []string) ([]decimal.Decimal, error)
}
