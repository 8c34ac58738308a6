package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/repository"
)

type depositRepository struct {
	db *sql.DB
}

func NewDepositRepository(db *sql.DB) repository.DepositRepository {
	return &depositRepository{db: db}
}

func (r *depositRepository) Create(ctx context.Context, d *domain.SecurityDeposit) error {
	query := `INSERT INTO security_deposits (id, lease_id, tenant_id, amount, currency, interest_rate, received_at, accrued_interest, status, created_at, updated_at, version)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, 0, $8, NOW(), NOW(), 1)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		d.ID, d.LeaseID, d.TenantID, d.Amount, d.Currency, d.InterestRate, d.ReceivedAt, domain.DepositStatusHeld,
	).Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return err
	}
	d.Status = domain.DepositStatusHeld
	d.AccruedInterest = 0
	d.Version = 1
	return nil
}

func (r *depositRepository) GetByID(ctx context.Context, id string) (*domain.SecurityDeposit, error) {
	var d domain.SecurityDeposit
	query := `SELECT id, lease_id, tenant_id, amount, currency, interest_rate, received_at, accrued_interest, status, created_at, updated_at, version
	          FROM security_deposits WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&d.ID, &d.LeaseID, &d.TenantID, &d.Amount, &d.Currency, &d.InterestRate,
		&d.ReceivedAt, &d.AccruedInterest, &d.Status, &d.CreatedAt, &d.UpdatedAt, &d.Version)
	if err == sql.ErrNoRows {
		return nil, &domain.NotFoundError{Entity: "deposit", ID: id}
	}
	if err != nil {
		return nil, err
	}

	if err := r.loadDeductions(ctx, &d); err != nil {
		return nil, err
	}
	if err := r.loadRefunds(ctx, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *depositRepository) loadDeductions(ctx context.Context, d *domain.SecurityDeposit) error {
	query := `SELECT id, deposit_id, reason, amount, attachment_urls, created_at
	          FROM deposit_deductions WHERE deposit_id = $1 ORDER BY created_at`
	rows, err := r.db.QueryContext(ctx, query, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ded domain.Deduction
		var urls []byte
		if err := rows.Scan(&ded.ID, &ded.DepositID, &ded.Reason, &ded.Amount, &urls, &ded.CreatedAt); err != nil {
			return err
		}
		if len(urls) > 0 {
			if err := json.Unmarshal(urls, &ded.AttachmentURLs); err != nil {
				return fmt.Errorf("failed to decode attachment urls: %w", err)
			}
		}
		d.Deductions = append(d.Deductions, ded)
	}
	return rows.Err()
}

func (r *depositRepository) loadRefunds(ctx context.Context, d *domain.SecurityDeposit) error {
	query := `SELECT id, deposit_id, amount, currency, method, reference, deductions_snapshot, processed_at
	          FROM deposit_refunds WHERE deposit_id = $1 ORDER BY processed_at`
	rows, err := r.db.QueryContext(ctx, query, d.ID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var ref domain.Refund
		if err := rows.Scan(&ref.ID, &ref.DepositID, &ref.Amount, &ref.Currency, &ref.Method, &ref.Reference, &ref.DeductionsSnapshot, &ref.ProcessedAt); err != nil {
			return err
		}
		d.Refunds = append(d.Refunds, ref)
	}
	return rows.Err()
}

func (r *depositRepository) UpdateAccruedInterest(ctx context.Context, depositID string, accrued int64, expectedVersion int32) error {
	query := `UPDATE security_deposits SET accrued_interest = $1, updated_at = NOW(), version = version + 1
	          WHERE id = $2 AND version = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, accrued, depositID, expectedVersion, domain.DepositStatusHeld)
	if err != nil {
		return err
	}
	return r.checkAffected(ctx, result, depositID)
}

// AppendDeduction inserts a deduction and bumps the deposit version in one
// transaction. Deductions are rejected once the deposit is closed.
func (r *depositRepository) AppendDeduction(ctx context.Context, ded *domain.Deduction, expectedVersion int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var status domain.DepositStatus
	var version int32
	err = tx.QueryRowContext(ctx,
		`SELECT status, version FROM security_deposits WHERE id = $1 FOR UPDATE`,
		ded.DepositID).Scan(&status, &version)
	if err == sql.ErrNoRows {
		return &domain.NotFoundError{Entity: "deposit", ID: ded.DepositID}
	}
	if err != nil {
		return err
	}
	if version != expectedVersion {
		return domain.ErrVersionConflict
	}
	if status == domain.DepositStatusClosed {
		return &domain.StateConflictError{Reason: "deposit is closed, deductions are no longer accepted"}
	}

	urls, err := json.Marshal(ded.AttachmentURLs)
	if err != nil {
		return fmt.Errorf("failed to encode attachment urls: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO deposit_deductions (id, deposit_id, reason, amount, attachment_urls, created_at)
		 VALUES ($1, $2, $3, $4, $5, NOW()) RETURNING created_at`,
		ded.ID, ded.DepositID, ded.Reason, ded.Amount, urls).Scan(&ded.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE security_deposits SET updated_at = NOW(), version = version + 1 WHERE id = $1`,
		ded.DepositID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// AppendRefund validates the refund against the refundable amount computed
// from the row state inside the transaction, not from any client-supplied
// figure. A concurrent deduction therefore either lands before the row lock
// (and shrinks the refundable amount seen here) or is rejected afterwards
// because the deposit closes. Rollback on any failure leaves the ledger
// unchanged.
func (r *depositRepository) AppendRefund(ctx context.Context, refund *domain.Refund, expectedVersion int32) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var amount, accrued int64
	var status domain.DepositStatus
	var version int32
	err = tx.QueryRowContext(ctx,
		`SELECT amount, accrued_interest, status, version FROM security_deposits WHERE id = $1 FOR UPDATE`,
		refund.DepositID).Scan(&amount, &accrued, &status, &version)
	if err == sql.ErrNoRows {
		return &domain.NotFoundError{Entity: "deposit", ID: refund.DepositID}
	}
	if err != nil {
		return err
	}
	if version != expectedVersion {
		return domain.ErrVersionConflict
	}
	if status == domain.DepositStatusClosed {
		return &domain.StateConflictError{Reason: "deposit already refunded"}
	}

	var totalDeductions int64
	err = tx.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM deposit_deductions WHERE deposit_id = $1`,
		refund.DepositID).Scan(&totalDeductions)
	if err != nil {
		return err
	}

	refundable := amount + accrued - totalDeductions
	if refundable < 0 {
		return &domain.StateConflictError{Reason: fmt.Sprintf("refundable amount is negative (%d)", refundable)}
	}
	if refund.Amount > refundable {
		return &domain.StateConflictError{Reason: fmt.Sprintf("refund of %d exceeds refundable amount %d", refund.Amount, refundable)}
	}

	refund.DeductionsSnapshot = totalDeductions
	err = tx.QueryRowContext(ctx,
		`INSERT INTO deposit_refunds (id, deposit_id, amount, currency, method, reference, deductions_snapshot, processed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, NOW()) RETURNING processed_at`,
		refund.ID, refund.DepositID, refund.Amount, refund.Currency, refund.Method, refund.Reference, refund.DeductionsSnapshot,
	).Scan(&refund.ProcessedAt)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE security_deposits SET status = $1, updated_at = NOW(), version = version + 1 WHERE id = $2`,
		domain.DepositStatusClosed, refund.DepositID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

func (r *depositRepository) checkAffected(ctx context.Context, result sql.Result, depositID string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM security_deposits WHERE id = $1)`, depositID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return &domain.NotFoundError{Entity: "deposit", ID: depositID}
		}
		return domain.ErrVersionConflict
	}
	return nil
}
