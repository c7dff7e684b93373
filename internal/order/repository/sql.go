package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/order/dto"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

const (
	orderColumns = `id, customer_id, status, total_price, created_at, updated_at`
	itemColumns  = `id, order_id, product_id, quantity, price_at_time_of_order`
)

type SQLRepository struct {
	DB      *sqlx.DB
	dialect database.Dialect
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db, dialect: database.DialectOf(db)}
}

func (r *SQLRepository) Create(ctx context.Context, o *model.Order) error {
	exec := database.Executor(ctx, r.DB)

	orderQuery := `
        INSERT INTO orders (` + orderColumns + `)
        VALUES (:id, :customer_id, :status, :total_price, :created_at, :updated_at)
    `
	if _, err := sqlx.NamedExecContext(ctx, exec, orderQuery, o); err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	itemQuery := `
        INSERT INTO order_items (` + itemColumns + `)
        VALUES (:id, :order_id, :product_id, :quantity, :price_at_time_of_order)
    `
	for i := range o.Items {
		if _, err := sqlx.NamedExecContext(ctx, exec, itemQuery, &o.Items[i]); err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string, lock database.LockMode) (*model.Order, error) {
	exec := database.Executor(ctx, r.DB)

	var o model.Order
	query := r.DB.Rebind(`SELECT ` + orderColumns + ` FROM orders WHERE id = ?` + r.dialect.LockClause(lock))
	if err := sqlx.GetContext(ctx, exec, &o, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("order", id)
		}
		return nil, fmt.Errorf("failed to get order: %w", err)
	}

	items, err := r.itemsFor(ctx, exec, []string{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return &o, nil
}

func (r *SQLRepository) FindAll(ctx context.Context, f *dto.OrderFilters) ([]model.Order, int, error) {
	var orders []model.Order
	var count int

	conditions := []string{}
	args := []interface{}{}

	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(f.Status))
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	exec := database.Executor(ctx, r.DB)

	countQuery := r.DB.Rebind("SELECT count(*) FROM orders" + whereClause)
	if err := sqlx.GetContext(ctx, exec, &count, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := "SELECT " + orderColumns + " FROM orders" + whereClause + " ORDER BY created_at DESC, id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}
	if err := sqlx.SelectContext(ctx, exec, &orders, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	if len(orders) == 0 {
		return orders, count, nil
	}

	ids := make([]string, len(orders))
	for i := range orders {
		ids[i] = orders[i].ID
	}
	items, err := r.itemsFor(ctx, exec, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, count, nil
}

func (r *SQLRepository) UpdateStatus(ctx context.Context, id string, from, to model.OrderStatus, at time.Time) (bool, error) {
	query := r.DB.Rebind(`UPDATE orders SET status = ?, updated_at = ? WHERE id = ? AND status = ?`)
	res, err := database.Executor(ctx, r.DB).ExecContext(ctx, query, string(to), at, id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *SQLRepository) itemsFor(ctx context.Context, exec sqlx.ExtContext, orderIDs []string) (map[string][]model.OrderItem, error) {
	query, args, err := sqlx.In(`SELECT `+itemColumns+` FROM order_items WHERE order_id IN (?) ORDER BY order_id, product_id`, orderIDs)
	if err != nil {
		return nil, err
	}
	var items []model.OrderItem
	if err := sqlx.SelectContext(ctx, exec, &items, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to load order items: %w", err)
	}
	byOrder := make(map[string][]model.OrderItem, len(orderIDs))
	for _, it := range items {
		byOrder[it.OrderID] = append(byOrder[it.OrderID], it)
	}
	return byOrder, nil
}
