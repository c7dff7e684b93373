package repository

import (
	"context"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/database/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTreeLockStatement(t *testing.T) {
	assert.Equal(t, "LOCK TABLE categories IN SHARE ROW EXCLUSIVE MODE", treeLockStatement(database.Postgres))
	assert.Empty(t, treeLockStatement(database.SQLite))
}

func TestLockTree(t *testing.T) {
	db, err := sqlite.OpenMigrated(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewSQLRepository(db)

	assert.ErrorIs(t, repo.LockTree(context.Background()), database.ErrNoTx)

	err = database.NewTxManager(db).WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.LockTree(ctx)
	})
	assert.NoError(t, err)
}

func TestDelete_ReferencedProductSurfacesAsConflict(t *testing.T) {
	db, err := sqlite.OpenMigrated(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	repo := NewSQLRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()

	cat := &model.Category{BaseModel: model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now}, Name: "Kitchen"}
	require.NoError(t, repo.Create(ctx, cat))

	productID, orderID := uuid.New().String(), uuid.New().String()
	_, err = db.Exec(`INSERT INTO products (id, name, category_id, price, stock, created_at, updated_at)
		VALUES (?, 'Kettle', ?, '10.00', 1, ?, ?)`, productID, cat.ID, now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO orders (id, customer_id, status, total_price, created_at, updated_at)
		VALUES (?, 'cust-1', 'pending', '10.00', ?, ?)`, orderID, now, now)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO order_items (id, order_id, product_id, quantity, price_at_time_of_order)
		VALUES (?, ?, ?, 1, '10.00')`, uuid.New().String(), orderID, productID)
	require.NoError(t, err)

	count, err := repo.CountOrderedProducts(ctx, []string{cat.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	assert.ErrorIs(t, repo.Delete(ctx, cat.ID), apperror.ErrReferenced)
}
