package product

import (
	"context"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/product/dto"
	"github.com/fekuna/omnipos-order-service/pkg/database"
)

type Repository interface {
	Create(ctx context.Context, product *model.Product) error
	FindByID(ctx context.Context, id string) (*model.Product, error)
	// FindByIDs returns the products found among ids in ascending id order, taking
	// row locks of the given mode when called inside a transaction.
	FindByIDs(ctx context.Context, ids []string, lock database.LockMode) ([]model.Product, error)
	FindAll(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id string) error

	CategoryExists(ctx context.Context, categoryID string) (bool, error)
	// ReferencedByOrders reports whether any order item points at the product.
	ReferencedByOrders(ctx context.Context, id string) (bool, error)
}
