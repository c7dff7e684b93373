package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/inventory"
	"github.com/fekuna/omnipos-order-service/internal/inventory/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB      *sqlx.DB
	dialect database.Dialect
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, dialect: database.DialectOf(db)}
}

func (r *SQLRepository) LockStock(ctx context.Context, ids []string) ([]inventory.StockLevel, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id, stock FROM products WHERE id IN (?) ORDER BY id ASC`+r.dialect.LockClause(database.LockUpdate), ids)
	if err != nil {
		return nil, err
	}
	var levels []inventory.StockLevel
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &levels, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to lock stock: %w", err)
	}
	return levels, nil
}

func (r *SQLRepository) ApplyDelta(ctx context.Context, productID string, delta int) (bool, error) {
	query := r.DB.Rebind(`
        UPDATE products
        SET stock = stock + ?, updated_at = ?
        WHERE id = ? AND stock + ? >= 0
    `)
	res, err := database.Executor(ctx, r.DB).ExecContext(ctx, query, delta, time.Now().UTC(), productID, delta)
	if err != nil {
		return false, fmt.Errorf("failed to update stock: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLRepository) LogMovement(ctx context.Context, m *model.StockMovement) error {
	query := `
        INSERT INTO stock_movements (
            id, product_id, quantity_change, quantity_before, quantity_after,
            reference_type, reference_id, notes, created_by, created_at
        )
        VALUES (
            :id, :product_id, :quantity_change, :quantity_before, :quantity_after,
            :reference_type, :reference_id, :notes, :created_by, :created_at
        )
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, m); err != nil {
		return fmt.Errorf("failed to log movement: %w", err)
	}
	return nil
}

func (r *SQLRepository) ListMovements(ctx context.Context, f *dto.MovementFilters) ([]model.StockMovement, int, error) {
	var items []model.StockMovement
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.ProductID != "" {
		conditions = append(conditions, "product_id = ?")
		args = append(args, f.ProductID)
	}
	if f.ReferenceType != "" {
		conditions = append(conditions, "reference_type = ?")
		args = append(args, f.ReferenceType)
	}
	if f.ReferenceID != "" {
		conditions = append(conditions, "reference_id = ?")
		args = append(args, f.ReferenceID)
	}
	if f.StartDate != nil {
		conditions = append(conditions, "created_at >= ?")
		args = append(args, f.StartDate.UTC())
	}
	if f.EndDate != nil {
		conditions = append(conditions, "created_at < ?")
		args = append(args, f.EndDate.UTC())
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	exec := database.Executor(ctx, r.DB)

	countQuery := r.DB.Rebind("SELECT count(*) FROM stock_movements" + whereClause)
	if err := sqlx.GetContext(ctx, exec, &count, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count movements: %w", err)
	}

	query := `SELECT id, product_id, quantity_change, quantity_before, quantity_after,
        reference_type, reference_id, notes, created_by, created_at
        FROM stock_movements` + whereClause + " ORDER BY created_at DESC, id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := sqlx.SelectContext(ctx, exec, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list movements: %w", err)
	}
	return items, count, nil
}
