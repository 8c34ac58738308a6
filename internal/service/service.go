package service

import (
	"context"
	"time"

	"propertypay-backend/internal/domain"
)

type PaymentService interface {
	CreatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error)
	ConfirmPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error)
	CancelPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error)
	RefundPayment(ctx context.Context, paymentID string, amount *domain.Amount) (*domain.PaymentResult, error)
	GetPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error)
	ListLeasePayments(ctx context.Context, leaseID string, page, pageSize int32) ([]domain.PaymentResult, int32, error)
	ApplyProviderStatus(ctx context.Context, reference string, providerStatus domain.PaymentStatus) (*domain.PaymentResult, error)
}

type DepositService interface {
	CreateDeposit(ctx context.Context, deposit *domain.SecurityDeposit) (*domain.SecurityDeposit, error)
	GetDeposit(ctx context.Context, depositID string) (*domain.SecurityDeposit, error)
	RecalculateInterest(ctx context.Context, depositID string, asOf time.Time) (*domain.SecurityDeposit, error)
	AddDeduction(ctx context.Context, depositID, reason string, amount int64, attachmentURLs []string) (*domain.SecurityDeposit, error)
	RefundDeposit(ctx context.Context, depositID string, amount int64, method domain.PaymentMethod) (*domain.SecurityDeposit, error)
}

type RecurringService interface {
	ScheduleRecurring(ctx context.Context, schedule *domain.RecurringSchedule) (*domain.RecurringSchedule, error)
	GetSchedule(ctx context.Context, scheduleID string) (*domain.RecurringSchedule, error)
	CancelSchedule(ctx context.Context, scheduleID string) (*domain.RecurringSchedule, error)
	CollectDuePayments(ctx context.Context, asOf time.Time) (int, error)
	ListDueSoon(ctx context.Context, from, to time.Time) ([]domain.RecurringSchedule, error)
}

type NotificationService interface {
	Notify(ctx context.Context, tenantID, title, message string, attributes map[string]string) error
	GetNotifications(ctx context.Context, tenantID string, page, pageSize int32) ([]domain.Notification, int32, error)
	MarkAsRead(ctx context.Context, tenantID string, notificationID int32) error
}

type EmailService interface {
	SendPaymentReceipt(ctx context.Context, email, name, reference string, amount domain.Amount) error
	SendPaymentFailure(ctx context.Context, email, name, reference, reason string) error
	SendPaymentReminder(ctx context.Context, email, name string, amount domain.Amount, dueDate time.Time) error
	SendRefundNotification(ctx context.Context, email, name string, amount domain.Amount, reference string) error
}
