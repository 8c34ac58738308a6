package repository

import (
	"context"
	"time"

	"propertypay-backend/internal/domain"
)

// PaymentRepository owns the canonical payment records. Update enforces the
// single-writer discipline through an optimistic version check: a stale
// expectedVersion yields domain.ErrVersionConflict and no write.
type PaymentRepository interface {
	Create(ctx context.Context, payment *domain.PaymentResult) error
	GetByID(ctx context.Context, id string) (*domain.PaymentResult, error)
	GetByReference(ctx context.Context, reference string) (*domain.PaymentResult, error)
	Update(ctx context.Context, payment *domain.PaymentResult, expectedVersion int32) error
	ListByLease(ctx context.Context, leaseID string, page, pageSize int32) ([]domain.PaymentResult, int32, error)
	ListStalePending(ctx context.Context, olderThan time.Time, limit int32) ([]domain.PaymentResult, error)
}

// DepositRepository owns security deposits with their deductions and
// refunds. AppendRefund revalidates the refundable amount inside the same
// transaction that writes the refund, so a concurrent deduction can never
// slip in between validation and commit.
type DepositRepository interface {
	Create(ctx context.Context, deposit *domain.SecurityDeposit) error
	GetByID(ctx context.Context, id string) (*domain.SecurityDeposit, error)
	UpdateAccruedInterest(ctx context.Context, depositID string, accrued int64, expectedVersion int32) error
	AppendDeduction(ctx context.Context, deduction *domain.Deduction, expectedVersion int32) error
	AppendRefund(ctx context.Context, refund *domain.Refund, expectedVersion int32) error
}

// ScheduleRepository owns recurring payment schedules.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.RecurringSchedule) error
	GetByID(ctx context.Context, id string) (*domain.RecurringSchedule, error)
	Update(ctx context.Context, schedule *domain.RecurringSchedule, expectedVersion int32) error
	ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringSchedule, error)
	ListDueSoon(ctx context.Context, from, to time.Time) ([]domain.RecurringSchedule, error)
}

// NotificationRepository stores in-app notification records.
type NotificationRepository interface {
	Create(ctx context.Context, note *domain.Notification) error
	List(ctx context.Context, tenantID string, limit, offset int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, id int32, tenantID string) error
}
