package postgres

import (
	"context"
	"testing"
	"time"

	"propertypay-backend/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestDepositRepository_AppendRefund(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewDepositRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT amount, accrued_interest, status, version FROM security_deposits").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"amount", "accrued_interest", "status", "version"}).
				AddRow(100000, 2000, "HELD", 3))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM deposit_deductions").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10000))
		mock.ExpectQuery("INSERT INTO deposit_refunds").
			WithArgs("rfd-1", "dep-1", int64(92000), "GHS", "BANK_TRANSFER", "RFD-x", int64(10000)).
			WillReturnRows(sqlmock.NewRows([]string{"processed_at"}).AddRow(time.Now()))
		mock.ExpectExec("UPDATE security_deposits SET status").
			WithArgs(domain.DepositStatusClosed, "dep-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		refund := &domain.Refund{
			ID:        "rfd-1",
			DepositID: "dep-1",
			Amount:    92000,
			Currency:  "GHS",
			Method:    domain.PaymentMethodBankTransfer,
			Reference: "RFD-x",
		}
		err = repo.AppendRefund(ctx, refund, 3)
		assert.NoError(t, err)
		assert.Equal(t, int64(10000), refund.DeductionsSnapshot)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ExceedsRefundable", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewDepositRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT amount, accrued_interest, status, version FROM security_deposits").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"amount", "accrued_interest", "status", "version"}).
				AddRow(100000, 2000, "HELD", 3))
		mock.ExpectQuery("SELECT COALESCE\\(SUM\\(amount\\), 0\\) FROM deposit_deductions").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"sum"}).AddRow(10000))
		mock.ExpectRollback()

		refund := &domain.Refund{ID: "rfd-1", DepositID: "dep-1", Amount: 92001, Currency: "GHS"}
		err = repo.AppendRefund(ctx, refund, 3)
		assert.True(t, domain.IsStateConflict(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("AlreadyClosed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewDepositRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT amount, accrued_interest, status, version FROM security_deposits").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"amount", "accrued_interest", "status", "version"}).
				AddRow(100000, 2000, "CLOSED", 4))
		mock.ExpectRollback()

		refund := &domain.Refund{ID: "rfd-2", DepositID: "dep-1", Amount: 1000, Currency: "GHS"}
		err = repo.AppendRefund(ctx, refund, 4)
		assert.True(t, domain.IsStateConflict(err))
	})

	t.Run("VersionConflict", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewDepositRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT amount, accrued_interest, status, version FROM security_deposits").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"amount", "accrued_interest", "status", "version"}).
				AddRow(100000, 2000, "HELD", 5))
		mock.ExpectRollback()

		refund := &domain.Refund{ID: "rfd-3", DepositID: "dep-1", Amount: 1000, Currency: "GHS"}
		err = repo.AppendRefund(ctx, refund, 3)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}

func TestDepositRepository_AppendDeduction(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewDepositRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status, version FROM security_deposits").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "version"}).AddRow("HELD", 2))
		mock.ExpectQuery("INSERT INTO deposit_deductions").
			WithArgs("ded-1", "dep-1", "broken window", int64(5000), sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))
		mock.ExpectExec("UPDATE security_deposits SET updated_at").
			WithArgs("dep-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		ded := &domain.Deduction{
			ID:             "ded-1",
			DepositID:      "dep-1",
			Reason:         "broken window",
			Amount:         5000,
			AttachmentURLs: []string{"https://files.example.com/a.jpg"},
		}
		err = repo.AppendDeduction(ctx, ded, 2)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("DepositClosed", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		if err != nil {
			t.Fatalf("error opening mock database: %v", err)
		}
		defer db.Close()
		repo := NewDepositRepository(db)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT status, version FROM security_deposits").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"status", "version"}).AddRow("CLOSED", 4))
		mock.ExpectRollback()

		ded := &domain.Deduction{ID: "ded-2", DepositID: "dep-1", Reason: "late fee", Amount: 1000}
		err = repo.AppendDeduction(ctx, ded, 4)
		assert.True(t, domain.IsStateConflict(err))
	})
}

func TestDepositRepository_UpdateAccruedInterest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("error opening mock database: %v", err)
	}
	defer db.Close()

	repo := NewDepositRepository(db)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("UPDATE security_deposits SET accrued_interest").
			WithArgs(int64(2000), "dep-1", int32(1), domain.DepositStatusHeld).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.UpdateAccruedInterest(ctx, "dep-1", 2000, 1)
		assert.NoError(t, err)
	})

	t.Run("StaleVersion", func(t *testing.T) {
		mock.ExpectExec("UPDATE security_deposits SET accrued_interest").
			WithArgs(int64(2000), "dep-1", int32(1), domain.DepositStatusHeld).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("dep-1").
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		err := repo.UpdateAccruedInterest(ctx, "dep-1", 2000, 1)
		assert.ErrorIs(t, err, domain.ErrVersionConflict)
	})
}
