package service

import (
	"context"
	"time"

	"propertypay-backend/internal/domain"

	"github.com/stretchr/testify/mock"
)

// MockPaymentRepo
type MockPaymentRepo struct {
	mock.Mock
}

func (m *MockPaymentRepo) Create(ctx context.Context, payment *domain.PaymentResult) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}
func (m *MockPaymentRepo) GetByID(ctx context.Context, id string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentRepo) GetByReference(ctx context.Context, reference string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentRepo) Update(ctx context.Context, payment *domain.PaymentResult, expectedVersion int32) error {
	args := m.Called(ctx, payment, expectedVersion)
	return args.Error(0)
}
func (m *MockPaymentRepo) ListByLease(ctx context.Context, leaseID string, page, pageSize int32) ([]domain.PaymentResult, int32, error) {
	args := m.Called(ctx, leaseID, page, pageSize)
	return args.Get(0).([]domain.PaymentResult), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentRepo) ListStalePending(ctx context.Context, olderThan time.Time, limit int32) ([]domain.PaymentResult, error) {
	args := m.Called(ctx, olderThan, limit)
	return args.Get(0).([]domain.PaymentResult), args.Error(1)
}

// MockDepositRepo
type MockDepositRepo struct {
	mock.Mock
}

func (m *MockDepositRepo) Create(ctx context.Context, deposit *domain.SecurityDeposit) error {
	args := m.Called(ctx, deposit)
	return args.Error(0)
}
func (m *MockDepositRepo) GetByID(ctx context.Context, id string) (*domain.SecurityDeposit, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDeposit), args.Error(1)
}
func (m *MockDepositRepo) UpdateAccruedInterest(ctx context.Context, depositID string, accrued int64, expectedVersion int32) error {
	args := m.Called(ctx, depositID, accrued, expectedVersion)
	return args.Error(0)
}
func (m *MockDepositRepo) AppendDeduction(ctx context.Context, deduction *domain.Deduction, expectedVersion int32) error {
	args := m.Called(ctx, deduction, expectedVersion)
	return args.Error(0)
}
func (m *MockDepositRepo) AppendRefund(ctx context.Context, refund *domain.Refund, expectedVersion int32) error {
	args := m.Called(ctx, refund, expectedVersion)
	return args.Error(0)
}

// MockScheduleRepo
type MockScheduleRepo struct {
	mock.Mock
}

func (m *MockScheduleRepo) Create(ctx context.Context, schedule *domain.RecurringSchedule) error {
	args := m.Called(ctx, schedule)
	return args.Error(0)
}
func (m *MockScheduleRepo) GetByID(ctx context.Context, id string) (*domain.RecurringSchedule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RecurringSchedule), args.Error(1)
}
func (m *MockScheduleRepo) Update(ctx context.Context, schedule *domain.RecurringSchedule, expectedVersion int32) error {
	args := m.Called(ctx, schedule, expectedVersion)
	return args.Error(0)
}
func (m *MockScheduleRepo) ListDue(ctx context.Context, asOf time.Time) ([]domain.RecurringSchedule, error) {
	args := m.Called(ctx, asOf)
	return args.Get(0).([]domain.RecurringSchedule), args.Error(1)
}
func (m *MockScheduleRepo) ListDueSoon(ctx context.Context, from, to time.Time) ([]domain.RecurringSchedule, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.RecurringSchedule), args.Error(1)
}

// MockNotificationRepo
type MockNotificationRepo struct {
	mock.Mock
}

func (m *MockNotificationRepo) Create(ctx context.Context, note *domain.Notification) error {
	args := m.Called(ctx, note)
	return args.Error(0)
}
func (m *MockNotificationRepo) List(ctx context.Context, tenantID string, limit, offset int32) ([]domain.Notification, int32, error) {
	args := m.Called(ctx, tenantID, limit, offset)
	return args.Get(0).([]domain.Notification), args.Get(1).(int32), args.Error(2)
}
func (m *MockNotificationRepo) MarkAsRead(ctx context.Context, id int32, tenantID string) error {
	args := m.Called(ctx, id, tenantID)
	return args.Error(0)
}

// MockGateway implements gateway.PaymentGateway
type MockGateway struct {
	mock.Mock
	name string
}

func (m *MockGateway) CreatePaymentIntent(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockGateway) ConfirmPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockGateway) CancelPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockGateway) GetPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, providerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockGateway) RefundPayment(ctx context.Context, providerID string, amount *domain.Amount) (*domain.PaymentResult, error) {
	args := m.Called(ctx, providerID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockGateway) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

// MockEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPaymentReceipt(ctx context.Context, email, name, reference string, amount domain.Amount) error {
	args := m.Called(ctx, email, name, reference, amount)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentFailure(ctx context.Context, email, name, reference, reason string) error {
	args := m.Called(ctx, email, name, reference, reason)
	return args.Error(0)
}
func (m *MockEmailService) SendPaymentReminder(ctx context.Context, email, name string, amount domain.Amount, dueDate time.Time) error {
	args := m.Called(ctx, email, name, amount, dueDate)
	return args.Error(0)
}
func (m *MockEmailService) SendRefundNotification(ctx context.Context, email, name string, amount domain.Amount, reference string) error {
	args := m.Called(ctx, email, name, amount, reference)
	return args.Error(0)
}

// MockPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentService) ConfirmPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentService) CancelPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentService) RefundPayment(ctx context.Context, paymentID string, amount *domain.Amount) (*domain.PaymentResult, error) {
	args := m.Called(ctx, paymentID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentService) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
func (m *MockPaymentService) ListLeasePayments(ctx context.Context, leaseID string, page, pageSize int32) ([]domain.PaymentResult, int32, error) {
	args := m.Called(ctx, leaseID, page, pageSize)
	return args.Get(0).([]domain.PaymentResult), args.Get(1).(int32), args.Error(2)
}
func (m *MockPaymentService) ApplyProviderStatus(ctx context.Context, reference string, providerStatus domain.PaymentStatus) (*domain.PaymentResult, error) {
	args := m.Called(ctx, reference, providerStatus)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentResult), args.Error(1)
}
