package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/category/dto"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// SQLRepository stores categories in Postgres or SQLite.
type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, c *model.Category) error {
	query := `
        INSERT INTO categories (id, parent_id, name, created_at, updated_at)
        VALUES (:id, :parent_id, :name, :created_at, :updated_at)
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, c); err != nil {
		return fmt.Errorf("failed to insert category: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Category, error) {
	var category model.Category
	query := r.DB.Rebind(`SELECT id, parent_id, name, created_at, updated_at FROM categories WHERE id = ?`)
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &category, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", id)
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.CategoryFilters) ([]model.Category, int, error) {
	var categories []model.Category
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.ParentID != nil {
		if *f.ParentID == "" {
			conditions = append(conditions, "parent_id IS NULL")
		} else {
			conditions = append(conditions, "parent_id = ?")
			args = append(args, *f.ParentID)
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	exec := database.Executor(ctx, r.DB)

	countQuery := r.DB.Rebind("SELECT count(*) FROM categories" + whereClause)
	if err := sqlx.GetContext(ctx, exec, &count, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	query := "SELECT id, parent_id, name, created_at, updated_at FROM categories" + whereClause + " ORDER BY name ASC, id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := sqlx.SelectContext(ctx, exec, &categories, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}

	return categories, count, nil
}

func (r *SQLRepository) Update(ctx context.Context, c *model.Category) error {
	query := `
        UPDATE categories
        SET parent_id = :parent_id,
            name = :name,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, c)
	if err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return requireAffected(res, c.ID)
}

// Delete removes the category; subcategories and their products cascade.
func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := database.Executor(ctx, r.DB).ExecContext(ctx, r.DB.Rebind("DELETE FROM categories WHERE id = ?"), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperror.Referenced("category", id)
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return requireAffected(res, id)
}

func (r *SQLRepository) SubtreeIDs(ctx context.Context, id string) ([]string, error) {
	query := r.DB.Rebind(`
        WITH RECURSIVE tree(id) AS (
            SELECT id FROM categories WHERE id = ?
            UNION
            SELECT c.id FROM categories c JOIN tree t ON c.parent_id = t.id
        )
        SELECT id FROM tree
    `)
	var ids []string
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &ids, query, id); err != nil {
		return nil, fmt.Errorf("failed to walk category tree: %w", err)
	}
	if len(ids) == 0 {
		return nil, apperror.NotFound("category", id)
	}
	return ids, nil
}

// treeLockStatement blocks other reshaping transactions while letting reads through.
// SQLite already serializes writers.
func treeLockStatement(d database.Dialect) string {
	if d != database.Postgres {
		return ""
	}
	return "LOCK TABLE categories IN SHARE ROW EXCLUSIVE MODE"
}

func (r *SQLRepository) LockTree(ctx context.Context) error {
	tx, err := database.RequireTx(ctx)
	if err != nil {
		return err
	}
	stmt := treeLockStatement(database.DialectOf(r.DB))
	if stmt == "" {
		return nil
	}
	if _, err := tx.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("failed to lock category tree: %w", err)
	}
	return nil
}

func (r *SQLRepository) CountOrderedProducts(ctx context.Context, categoryIDs []string) (int, error) {
	if len(categoryIDs) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`
        SELECT count(*) FROM products p
        WHERE p.category_id IN (?)
          AND EXISTS (SELECT 1 FROM order_items oi WHERE oi.product_id = p.id)
    `, categoryIDs)
	if err != nil {
		return 0, err
	}
	var count int
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &count, r.DB.Rebind(query), args...); err != nil {
		return 0, fmt.Errorf("failed to count ordered products: %w", err)
	}
	return count, nil
}

func (r *SQLRepository) ListPrices(ctx context.Context, categoryIDs []string) ([]decimal.Decimal, error) {
	if len(categoryIDs) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT price FROM products WHERE category_id IN (?)`, categoryIDs)
	if err != nil {
		return nil, err
	}
	var prices []decimal.Decimal
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &prices, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list product prices: %w", err)
	}
	return prices, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("category", id)
	}
	return nil
}
