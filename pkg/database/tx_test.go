package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/fekuna/omnipos-order-service/pkg/database/sqlite"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlite.OpenMigrated(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func insertCategory(ctx context.Context, db *sqlx.DB, name string) error {
	now := time.Now().UTC()
	_, err := database.Executor(ctx, db).ExecContext(ctx,
		`INSERT INTO categories (id, name, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		uuid.New().String(), name, now, now)
	return err
}

func countCategories(t *testing.T, db *sqlx.DB) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, "SELECT COUNT(*) FROM categories"))
	return n
}

func TestWithinTx_Commits(t *testing.T) {
	db := open(t)
	tx := database.NewTxManager(db)

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		_, ok := database.TxFromContext(ctx)
		assert.True(t, ok)
		return insertCategory(ctx, db, "a")
	})
	require.NoError(t, err)
	assert.Equal(t, 1, countCategories(t, db))
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	db := open(t)
	tx := database.NewTxManager(db)
	boom := errors.New("boom")

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, insertCategory(ctx, db, "a"))
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countCategories(t, db))
}

func TestWithinTx_RollsBackOnPanic(t *testing.T) {
	db := open(t)
	tx := database.NewTxManager(db)

	assert.PanicsWithValue(t, "kaboom", func() {
		_ = tx.WithinTx(context.Background(), func(ctx context.Context) error {
			require.NoError(t, insertCategory(ctx, db, "a"))
			panic("kaboom")
		})
	})
	assert.Equal(t, 0, countCategories(t, db))
}

func TestWithinTx_NestedCallsJoin(t *testing.T) {
	db := open(t)
	tx := database.NewTxManager(db)
	boom := errors.New("boom")

	err := tx.WithinTx(context.Background(), func(ctx context.Context) error {
		outer, _ := database.TxFromContext(ctx)
		err := tx.WithinTx(ctx, func(ctx context.Context) error {
			inner, _ := database.TxFromContext(ctx)
			assert.Same(t, outer, inner)
			return insertCategory(ctx, db, "inner")
		})
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, countCategories(t, db))
}

func TestRequireTx(t *testing.T) {
	db := open(t)

	_, err := database.RequireTx(context.Background())
	assert.ErrorIs(t, err, database.ErrNoTx)

	require.NoError(t, database.NewTxManager(db).WithinTx(context.Background(), func(ctx context.Context) error {
		_, err := database.RequireTx(ctx)
		return err
	}))
}

func TestDialect(t *testing.T) {
	db := open(t)
	assert.Equal(t, database.SQLite, database.DialectOf(db))
	assert.Equal(t, "", database.SQLite.LockClause(database.LockUpdate))

	assert.Equal(t, " FOR UPDATE", database.Postgres.LockClause(database.LockUpdate))
	assert.Equal(t, " FOR SHARE", database.Postgres.LockClause(database.LockShare))
	assert.Equal(t, "", database.Postgres.LockClause(database.LockNone))
	assert.Equal(t, "postgres", database.Postgres.String())
}

func TestMigrate_Idempotent(t *testing.T) {
	db := open(t)
	require.NoError(t, database.Migrate(context.Background(), db))
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	db := open(t)
	require.NoError(t, insertCategory(context.Background(), db, "c"))
	var catID string
	require.NoError(t, db.Get(&catID, "SELECT id FROM categories"))
	now := time.Now().UTC()

	insert := func(price, discount any, stock int) error {
		_, err := db.Exec(`INSERT INTO products (id, name, category_id, price, stock, discount_price, created_at, updated_at)
			VALUES (?, 'p', ?, ?, ?, ?, ?, ?)`, uuid.New().String(), catID, price, stock, discount, now, now)
		return err
	}
	assert.NoError(t, insert("10.00", nil, 0))
	assert.Error(t, insert("0", nil, 0))
	assert.Error(t, insert("10.00", "10.00", 0))
	assert.Error(t, insert("10.00", nil, -1))
}
