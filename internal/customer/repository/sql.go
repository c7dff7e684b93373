package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/fekuna/omnipos-order-service/internal/apperror"
	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Upsert(ctx context.Context, c *model.Customer) error {
	query := `
        INSERT INTO customers (id, email, phone_number, name, role, created_at, updated_at)
        VALUES (:id, :email, :phone_number, :name, :role, :created_at, :updated_at)
        ON CONFLICT (id) DO UPDATE SET
            email = excluded.email,
            name = excluded.name,
            role = excluded.role,
            updated_at = excluded.updated_at
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, c); err != nil {
		return fmt.Errorf("failed to upsert customer: %w", err)
	}
	return nil
}

func (r *SQLRepository) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var c model.Customer
	query := r.DB.Rebind(`SELECT id, email, phone_number, name, role, created_at, updated_at FROM customers WHERE id = ?`)
	if err := sqlx.GetContext(ctx, database.Executor(ctx, r.DB), &c, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("customer", id)
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &c, nil
}

func (r *SQLRepository) UpdatePhone(ctx context.Context, id, phone string, at time.Time) error {
	query := r.DB.Rebind(`UPDATE customers SET phone_number = ?, updated_at = ? WHERE id = ?`)
	res, err := database.Executor(ctx, r.DB).ExecContext(ctx, query, phone, at, id)
	if err != nil {
		return fmt.Errorf("failed to update customer phone: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperror.NotFound("customer", id)
	}
	return nil
}
