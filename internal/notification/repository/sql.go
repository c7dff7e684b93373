package repository

import (
	"context"
	"fmt"

	"github.com/fekuna/omnipos-order-service/internal/model"
	"github.com/fekuna/omnipos-order-service/internal/notification/dto"
	"github.com/fekuna/omnipos-order-service/pkg/database"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	DB *sqlx.DB
}

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{DB: db}
}

func (r *SQLRepository) Create(ctx context.Context, n *model.Notification) error {
	query := `
        INSERT INTO notifications (id, user_id, channel, message, created_at)
        VALUES (:id, :user_id, :channel, :message, :created_at)
    `
	if _, err := sqlx.NamedExecContext(ctx, database.Executor(ctx, r.DB), query, n); err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

func (r *SQLRepository) List(ctx context.Context, f *dto.NotificationFilters) ([]model.Notification, int, error) {
	var notifications []model.Notification
	var count int

	whereClause := ""
	args := []interface{}{}
	if f.UserID != "" {
		whereClause = " WHERE user_id = ?"
		args = append(args, f.UserID)
	}

	exec := database.Executor(ctx, r.DB)

	countQuery := r.DB.Rebind("SELECT count(*) FROM notifications" + whereClause)
	if err := sqlx.GetContext(ctx, exec, &count, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := "SELECT id, user_id, channel, message, created_at FROM notifications" + whereClause + " ORDER BY created_at DESC, id ASC"
	if f.PageSize > 0 {
		page := f.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.PageSize, (page-1)*f.PageSize)
	}
	if err := sqlx.SelectContext(ctx, exec, &notifications, r.DB.Rebind(query), args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, count, nil
}
