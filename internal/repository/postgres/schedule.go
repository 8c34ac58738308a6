package postgres

import (
	"context"
	"database/sql"
	"time"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/repository"
)

type scheduleRepository struct {
	db *sql.DB
}

func NewScheduleRepository(db *sql.DB) repository.ScheduleRepository {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, lease_id, amount, currency, method, customer_name, customer_email, customer_phone, frequency, start_date, end_date, next_payment_date, total_payments, completed_payments, is_active, created_at, updated_at, version`

func (r *scheduleRepository) Create(ctx context.Context, s *domain.RecurringSchedule) error {
	query := `INSERT INTO recurring_schedules (id, lease_id, amount, currency, method, customer_name, customer_email, customer_phone, frequency, start_date, end_date, next_payment_date, total_payments, completed_payments, is_active, created_at, updated_at, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 0, TRUE, NOW(), NOW(), 1)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		s.ID, s.LeaseID, s.Amount.Value, s.Amount.Currency, s.Method,
		s.Customer.Name, s.Customer.Email, s.Customer.Phone,
		s.Frequency, s.StartDate, s.EndDate, s.NextPaymentDate, s.TotalPayments,
	).Scan(&s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	s.CompletedPayments = 0
	s.IsActive = true
	s.Version = 1
	return nil
}

func (r *scheduleRepository) GetByID(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + ` FROM recurring_schedules WHERE id = $1`
	var s domain.RecurringSchedule
	if err := scanSchedule(r.db.QueryRowContext(ctx, query, id), &s); err != nil {
		if err == sql.ErrNoRows {
			return nil, &domain.NotFoundError{Entity: "schedule", ID: id}
		}
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepository) Update(ctx context.Context, s *domain.RecurringSchedule, expectedVersion int32) error {
	query := `UPDATE recurring_schedules
	          SET next_payment_date = $1, completed_payments = $2, is_active = $3, updated_at = NOW(), version = version + 1
	          WHERE id = $4 AND version = $5`
	result, err := r.db.ExecContext(ctx, query, s.NextPaymentDate, s.CompletedPayments, s.IsActive, s.ID, expectedVersion)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM recurring_schedules WHERE id = $1)`, s.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Entity: "schedule", ID: s.ID}
		}
		return domain.ErrVersionConflict
	}
	s.Version = expectedVersion + 1
	return nil
}

func (r *scheduleRepository) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
	          FROM recurring_schedules
	          WHERE is_active = TRUE AND next_payment_date <= $1
	          ORDER BY next_payment_date`
	return r.list(ctx, query, asOf)
}

func (r *scheduleRepository) ListDueSoon(ctx context.Context, from, to time.Time) ([]domain.RecurringSchedule, error) {
	query := `SELECT ` + scheduleColumns + `
	          FROM recurring_schedules
	          WHERE is_active = TRUE AND next_payment_date > $1 AND next_payment_date <= $2
	          ORDER BY next_payment_date`
	return r.list(ctx, query, from, to)
}

func (r *scheduleRepository) list(ctx context.Context, query string, args ...interface{}) ([]domain.RecurringSchedule, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []domain.RecurringSchedule
	for rows.Next() {
		var s domain.RecurringSchedule
		if err := scanSchedule(rows, &s); err != nil {
			return nil, err
		}
		schedules = append(schedules, s)
	}
	return schedules, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSchedule(row rowScanner, s *domain.RecurringSchedule) error {
	return row.Scan(&s.ID, &s.LeaseID, &s.Amount.Value, &s.Amount.Currency, &s.Method,
		&s.Customer.Name, &s.Customer.Email, &s.Customer.Phone,
		&s.Frequency, &s.StartDate, &s.EndDate, &s.NextPaymentDate,
		&s.TotalPayments, &s.CompletedPayments, &s.IsActive,
		&s.CreatedAt, &s.UpdatedAt, &s.Version)
}
