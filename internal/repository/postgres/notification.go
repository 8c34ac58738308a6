package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/repository"
)

type notificationRepository struct {
	db *sql.DB
}

func NewNotificationRepository(db *sql.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, note *domain.Notification) error {
	attrs, err := json.Marshal(note.Attributes)
	if err != nil {
		return fmt.Errorf("failed to encode attributes: %w", err)
	}

	query := `INSERT INTO notifications (tenant_id, title, message, is_read, attributes, created_at)
	          VALUES ($1, $2, $3, FALSE, $4, NOW())
	          RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, query, note.TenantID, note.Title, note.Message, attrs).
		Scan(&note.ID, &note.CreatedAt)
}

func (r *notificationRepository) List(ctx context.Context, tenantID string, limit, offset int32) ([]domain.Notification, int32, error) {
	var count int32
	if err := r.db.QueryRowContext(ctx,
		`SELECT count(*) FROM notifications WHERE tenant_id = $1`, tenantID).Scan(&count); err != nil {
		return nil, 0, err
	}

	query := `SELECT id, tenant_id, title, message, is_read, attributes, created_at
	          FROM notifications WHERE tenant_id = $1
	          ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, tenantID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var notes []domain.Notification
	for rows.Next() {
		var n domain.Notification
		var attrs []byte
		if err := rows.Scan(&n.ID, &n.TenantID, &n.Title, &n.Message, &n.IsRead, &attrs, &n.CreatedAt); err != nil {
			return nil, 0, err
		}
		if len(attrs) > 0 {
			if err := json.Unmarshal(attrs, &n.Attributes); err != nil {
				return nil, 0, fmt.Errorf("failed to decode attributes: %w", err)
			}
		}
		notes = append(notes, n)
	}
	return notes, count, rows.Err()
}

func (r *notificationRepository) MarkAsRead(ctx context.Context, id int32, tenantID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &domain.NotFoundError{Entity: "notification", ID: fmt.Sprintf("%d", id)}
	}
	return nil
}
