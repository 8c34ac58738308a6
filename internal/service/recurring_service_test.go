package service

import (
	"context"
	"testing"
	"time"

	"propertypay-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func activeSchedule() domain.RecurringSchedule {
	return domain.RecurringSchedule{
		ID:              "sch-1",
		LeaseID:         "lease-9",
		Amount:          domain.Amount{Value: 150000, Currency: "GHS"},
		Method:          domain.PaymentMethodMobileMoney,
		Customer:        domain.Customer{Name: "Ama Mensah", Email: "ama@example.com", Phone: "0241234567"},
		Frequency:       domain.FrequencyMonthly,
		StartDate:       time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		NextPaymentDate: time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC),
		IsActive:        true,
		Version:         1,
	}
}

func TestRecurringService_ScheduleRecurring(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		svc := NewRecurringService(repo, nil)

		repo.On("Create", ctx, mock.AnythingOfType("*domain.RecurringSchedule")).Return(nil)

		s := activeSchedule()
		s.ID = ""
		created, err := svc.ScheduleRecurring(ctx, &s)
		assert.NoError(t, err)
		assert.NotEmpty(t, created.ID)
		assert.Equal(t, created.StartDate, created.NextPaymentDate)
		repo.AssertExpectations(t)
	})

	t.Run("InvalidFrequency", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		svc := NewRecurringService(repo, nil)

		s := activeSchedule()
		s.Frequency = "FORTNIGHTLY"
		_, err := svc.ScheduleRecurring(ctx, &s)
		assert.True(t, domain.IsValidationError(err))
		repo.AssertNotCalled(t, "Create")
	})

	t.Run("EndBeforeStart", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		svc := NewRecurringService(repo, nil)

		s := activeSchedule()
		end := s.StartDate.AddDate(0, 0, -1)
		s.EndDate = &end
		_, err := svc.ScheduleRecurring(ctx, &s)
		assert.True(t, domain.IsValidationError(err))
	})
}

func TestRecurringService_CollectDuePayments(t *testing.T) {
	ctx := context.Background()
	asOf := time.Date(2026, 1, 31, 6, 0, 0, 0, time.UTC)

	t.Run("PendingIntentAdvancesDateWithoutCompleting", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{activeSchedule()}, nil)
		paymentSvc.On("CreatePayment", ctx, mock.MatchedBy(func(req *domain.PaymentRequest) bool {
			return req.ScheduleID == "sch-1" && req.LeaseID == "lease-9" &&
				req.MobileMoney != nil && req.MobileMoney.Network == domain.MobileNetworkMTN &&
				req.Metadata["schedule_id"] == "sch-1" &&
				req.Metadata["schedule_due_date"] == "2026-01-31T00:00:00Z"
		})).Return(&domain.PaymentResult{
			ID:        "pmt-1",
			Reference: "PAY-x",
			Status:    domain.PaymentStatusPending,
		}, nil)
		// A charge that is still pending reserves the period but is not yet a
		// completed payment: the date moves so the next sweep skips it, the
		// completion count waits for the terminal status.
		repo.On("Update", ctx, mock.MatchedBy(func(s *domain.RecurringSchedule) bool {
			// Jan 31 + 1 month clamps to Feb 28 (2026 is not a leap year)
			return s.CompletedPayments == 0 &&
				s.NextPaymentDate.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) &&
				s.IsActive
		}), int32(1)).Return(nil)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, collected)
		repo.AssertExpectations(t)
		paymentSvc.AssertExpectations(t)
	})

	t.Run("SucceededIntentCompletesImmediately", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{activeSchedule()}, nil)
		paymentSvc.On("CreatePayment", ctx, mock.AnythingOfType("*domain.PaymentRequest")).
			Return(&domain.PaymentResult{
				ID:        "pmt-1",
				Reference: "PAY-x",
				Status:    domain.PaymentStatusSucceeded,
			}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(s *domain.RecurringSchedule) bool {
			return s.CompletedPayments == 1 &&
				s.NextPaymentDate.Equal(time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC)) &&
				s.IsActive
		}), int32(1)).Return(nil)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, collected)
		repo.AssertExpectations(t)
	})

	t.Run("FailedIntentLeavesScheduleUntouched", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{activeSchedule()}, nil)
		paymentSvc.On("CreatePayment", ctx, mock.AnythingOfType("*domain.PaymentRequest")).
			Return(&domain.PaymentResult{
				ID:        "pmt-1",
				Reference: "PAY-x",
				Status:    domain.PaymentStatusFailed,
			}, nil)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, collected)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("FirstCollectionMidMonthIsProRated", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		s := activeSchedule()
		s.Amount = domain.Amount{Value: 310000, Currency: "GHS"}
		s.StartDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		s.NextPaymentDate = s.StartDate

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{s}, nil)
		// 17 active days of 31 at 310000 minor units
		paymentSvc.On("CreatePayment", ctx, mock.MatchedBy(func(req *domain.PaymentRequest) bool {
			return req.Amount.Value == 170000
		})).Return(&domain.PaymentResult{ID: "pmt-1", Status: domain.PaymentStatusPending}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.RecurringSchedule"), int32(1)).Return(nil)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, collected)
		paymentSvc.AssertExpectations(t)
	})

	t.Run("SecondCollectionPaysInFull", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		s := activeSchedule()
		s.StartDate = time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
		s.CompletedPayments = 1

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{s}, nil)
		paymentSvc.On("CreatePayment", ctx, mock.MatchedBy(func(req *domain.PaymentRequest) bool {
			return req.Amount.Value == 150000
		})).Return(&domain.PaymentResult{ID: "pmt-2", Status: domain.PaymentStatusPending}, nil)
		repo.On("Update", ctx, mock.AnythingOfType("*domain.RecurringSchedule"), int32(1)).Return(nil)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, collected)
		paymentSvc.AssertExpectations(t)
	})

	t.Run("FailedCollectionDoesNotAdvance", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{activeSchedule()}, nil)
		paymentSvc.On("CreatePayment", ctx, mock.AnythingOfType("*domain.PaymentRequest")).
			Return(nil, domain.ErrProviderUnavailable)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 0, collected)
		repo.AssertNotCalled(t, "Update")
	})

	t.Run("FinalPaymentDeactivates", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		paymentSvc := new(MockPaymentService)
		svc := NewRecurringService(repo, paymentSvc)

		s := activeSchedule()
		total := int32(12)
		s.TotalPayments = &total
		s.CompletedPayments = 11

		repo.On("ListDue", ctx, asOf).Return([]domain.RecurringSchedule{s}, nil)
		paymentSvc.On("CreatePayment", ctx, mock.AnythingOfType("*domain.PaymentRequest")).
			Return(&domain.PaymentResult{ID: "pmt-12", Status: domain.PaymentStatusSucceeded}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(s *domain.RecurringSchedule) bool {
			return s.CompletedPayments == 12 && !s.IsActive
		}), int32(1)).Return(nil)

		collected, err := svc.CollectDuePayments(ctx, asOf)
		assert.NoError(t, err)
		assert.Equal(t, 1, collected)
		repo.AssertExpectations(t)
	})
}

func TestRecurringService_CancelSchedule(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		svc := NewRecurringService(repo, nil)

		s := activeSchedule()
		repo.On("GetByID", ctx, "sch-1").Return(&s, nil)
		repo.On("Update", ctx, &s, int32(1)).Return(nil)

		cancelled, err := svc.CancelSchedule(ctx, "sch-1")
		assert.NoError(t, err)
		assert.False(t, cancelled.IsActive)
		repo.AssertExpectations(t)
	})

	t.Run("AlreadyInactiveIsNoOp", func(t *testing.T) {
		repo := new(MockScheduleRepo)
		svc := NewRecurringService(repo, nil)

		s := activeSchedule()
		s.IsActive = false
		repo.On("GetByID", ctx, "sch-1").Return(&s, nil)

		cancelled, err := svc.CancelSchedule(ctx, "sch-1")
		assert.NoError(t, err)
		assert.False(t, cancelled.IsActive)
		repo.AssertNotCalled(t, "Update")
	})
}
