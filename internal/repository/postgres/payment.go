package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/repository"
)

type paymentRepository struct {
	db *sql.DB
}

func NewPaymentRepository(db *sql.DB) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.PaymentResult) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `INSERT INTO payments (id, reference, status, amount, currency, method, customer_name, customer_email, customer_phone, provider, lease_id, metadata, created_at, updated_at, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, NOW(), NOW(), 1)
	          RETURNING created_at, updated_at`
	err = r.db.QueryRowContext(ctx, query,
		p.ID, p.Reference, p.Status, p.Amount.Value, p.Amount.Currency, p.Method,
		p.Customer.Name, p.Customer.Email, p.Customer.Phone,
		p.Provider, nullable(p.LeaseID), metadata,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return err
	}
	p.Version = 1
	return nil
}

const paymentColumns = `id, reference, status, amount, currency, method, customer_name, customer_email, customer_phone, provider, COALESCE(lease_id, ''), metadata, created_at, updated_at, version`

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.PaymentResult, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), id)
}

func (r *paymentRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentResult, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE reference = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, reference), reference)
}

func (r *paymentRepository) scanOne(row *sql.Row, key string) (*domain.PaymentResult, error) {
	var p domain.PaymentResult
	var metadata []byte
	err := row.Scan(&p.ID, &p.Reference, &p.Status, &p.Amount.Value, &p.Amount.Currency, &p.Method,
		&p.Customer.Name, &p.Customer.Email, &p.Customer.Phone,
		&p.Provider, &p.LeaseID, &metadata, &p.CreatedAt, &p.UpdatedAt, &p.Version)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "payment", ID: key}
	}
	if err != nil {
		return nil, err
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
			return nil, fmt.Errorf("failed to decode metadata: %w", err)
		}
	}
	return &p, nil
}

func (r *paymentRepository) Update(ctx context.Context, p *domain.PaymentResult, expectedVersion int32) error {
	metadata, err := json.Marshal(p.Metadata)
	if err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	query := `UPDATE payments SET status = $1, metadata = $2, updated_at = NOW(), version = version + 1
	          WHERE id = $3 AND version = $4`
	result, err := r.db.ExecContext(ctx, query, p.Status, metadata, p.ID, expectedVersion)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM payments WHERE id = $1)`, p.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Entity: "payment", ID: p.ID}
		}
		return domain.ErrVersionConflict
	}
	p.Version = expectedVersion + 1
	return nil
}

func (r *paymentRepository) ListByLease(ctx context.Context, leaseID string, page, pageSize int32) ([]domain.PaymentResult, int32, error) {
	offset := (page - 1) * pageSize
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE lease_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.QueryContext(ctx, query, leaseID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var count int32
	countQuery := `SELECT count(*) FROM payments WHERE lease_id = $1`
	if err := r.db.QueryRowContext(ctx, countQuery, leaseID).Scan(&count); err != nil {
		return nil, 0, err
	}

	var payments []domain.PaymentResult
	for rows.Next() {
		var p domain.PaymentResult
		var metadata []byte
		if err := rows.Scan(&p.ID, &p.Reference, &p.Status, &p.Amount.Value, &p.Amount.Currency, &p.Method,
			&p.Customer.Name, &p.Customer.Email, &p.Customer.Phone,
			&p.Provider, &p.LeaseID, &metadata, &p.CreatedAt, &p.UpdatedAt, &p.Version); err != nil {
			return nil, 0, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
				return nil, 0, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		payments = append(payments, p)
	}
	return payments, count, rows.Err()
}

// ListStalePending returns pending payments last touched before olderThan,
// oldest first. Feeds the reconciliation sweep.
func (r *paymentRepository) ListStalePending(ctx context.Context, olderThan time.Time, limit int32) ([]domain.PaymentResult, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
	          WHERE status = $1 AND updated_at < $2
	          ORDER BY updated_at ASC LIMIT $3`
	rows, err := r.db.QueryContext(ctx, query, domain.PaymentStatusPending, olderThan, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.PaymentResult
	for rows.Next() {
		var p domain.PaymentResult
		var metadata []byte
		if err := rows.Scan(&p.ID, &p.Reference, &p.Status, &p.Amount.Value, &p.Amount.Currency, &p.Method,
			&p.Customer.Name, &p.Customer.Email, &p.Customer.Phone,
			&p.Provider, &p.LeaseID, &metadata, &p.CreatedAt, &p.UpdatedAt, &p.Version); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &p.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode metadata: %w", err)
			}
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// nullable maps the empty string to NULL for optional foreign keys.
func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
