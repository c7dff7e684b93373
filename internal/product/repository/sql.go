package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/product/dto"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

const productColumns = `id, name, category_id, price, stock, discount_price, created_at, updated_at`

type SQLRepository struct {
	DB      *sqlx.DB
	dialect database.Dialect
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, dialect: database.DialectOf(db)}
}

func (r *SQLRepository) Create(ctx context.Context, p *model.Product) error {
	query := `
        INSERT INTO products (` + productColumns + `)
        VALUES (:id, :name, :category_id, :price, :stock, :discount_price, :created_at, :updated_at)
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, p); err != nil {
		return fmt.Errorf("failed to insert product: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Product, error) {
	var product model.Product
	query := r.DB.Rebind(`SELECT ` + productColumns + ` FROM products WHERE id = ?`)
	err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *SQLRepository) FindByIDs(ctx context.Context, ids []string, lock database.LockMode) ([]model.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT `+productColumns+` FROM products WHERE id IN (?) ORDER BY id ASC`+r.dialect.LockClause(lock), ids)
	if err != nil {
		return nil, err
	}
	var products []model.Product
	if err := sqlx.SelectContext(ctx, database.Executor(ctx, r.DB), &products, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	return products, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.ProductFilters) ([]model.Product, int, error) {
	var products []model.Product
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.CategoryID != "" {
		conditions = append(conditions, "category_id = ?")
		args = append(args, f.CategoryID)
	}
	if f.SearchQuery != "" {
		conditions = append(conditions, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.SearchQuery)+"%")
	}
	if f.InStockOnly {
		conditions = append(conditions, "stock > 0")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	exec := database.Executor(ctx, r.DB)

	countQuery := r.DB.Rebind("SELECT count(*) FROM products" + whereClause)
	if err := sqlx.GetContext(ctx, exec, &count, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	orderBy := "created_at DESC"
	if f.SortBy != "" {
		// Whitelisted columns only
		switch f.SortBy {
		case "name":
			orderBy = "name"
		case "price":
			orderBy = "price"
			if r.dialect == database.SQLite {
				orderBy = "CAST(price AS REAL)"
			}
		default:
			orderBy = "created_at"
		}
		if strings.ToLower(f.SortOrder) == "asc" {
			orderBy += " ASC"
		} else {
			orderBy += " DESC"
		}
	}

	query := fmt.Sprintf("SELECT %s FROM products%s ORDER BY %s, id ASC", productColumns, whereClause, orderBy)
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}

	if err := sqlx.SelectContext(ctx, exec, &products, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, count, nil
}

// Update writes catalog fields. The stock column is left to the inventory ledger.
func (r *SQLRepository) Update(ctx context.Context, p *model.Product) error {
	query := `
        UPDATE products
        SET category_id = :category_id,
            name = :name,
            price = :price,
            discount_price = :discount_price,
            updated_at = :updated_at
        WHERE id = :id
    `
	res, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, p)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return requireAffected(res, p.ID)
}

func (r *SQLRepository) Delete(ctx context.Context, id string) error {
	res, err := database.Executor(ctx, r.DB).ExecContext(ctx, r.DB.Rebind("DELETE FROM products WHERE id = ?"), id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return apperror.Referenced("product", id)
		}
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return requireAffected(res, id)
}

func (r *SQLRepository) CategoryExists(ctx context.Context, categoryID string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM categories WHERE id = ?`)
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &count, query, categoryID); err != nil {
		return false, fmt.Errorf("failed to check category: %w", err)
	}
	return count > 0, nil
}

func (r *SQLRepository) ReferencedByOrders(ctx context.Context, id string) (bool, error) {
	var count int
	query := r.DB.Rebind(`SELECT count(*) FROM order_items WHERE product_id = ?`)
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &count, query, id); err != nil {
		return false, fmt.Errorf("failed to check order references: %w", err)
	}
	return count > 0, nil
}

func requireAffected(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}
