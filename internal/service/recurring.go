package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/repository"
	"propertypay-backend/internal/utils"
	"propertypay-backend/internal/validation"
)

type recurringService struct {
	scheduleRepo repository.ScheduleRepository
	paymentSvc   PaymentService
}

func NewRecurringService(scheduleRepo repository.ScheduleRepository, paymentSvc PaymentService) RecurringService {
	return &recurringService{
		scheduleRepo: scheduleRepo,
		paymentSvc:   paymentSvc,
	}
}

func (s *recurringService) ScheduleRecurring(ctx context.Context, schedule *domain.RecurringSchedule) (*domain.RecurringSchedule, error) {
	if !schedule.Frequency.IsValid() {
		return nil, &domain.ValidationError{Field: "frequency", Code: "INVALID_FREQUENCY"}
	}
	if schedule.Amount.Value <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Code: "INVALID_AMOUNT"}
	}
	if schedule.LeaseID == "" {
		return nil, &domain.ValidationError{Field: "lease_id", Code: "LEASE_REQUIRED"}
	}
	if schedule.StartDate.IsZero() {
		return nil, &domain.ValidationError{Field: "start_date", Code: "START_DATE_REQUIRED"}
	}
	if schedule.EndDate != nil && schedule.EndDate.Before(schedule.StartDate) {
		return nil, &domain.ValidationError{Field: "end_date", Code: "END_BEFORE_START"}
	}
	if schedule.TotalPayments != nil && *schedule.TotalPayments <= 0 {
		return nil, &domain.ValidationError{Field: "total_payments", Code: "INVALID_TOTAL_PAYMENTS"}
	}

	if schedule.ID == "" {
		schedule.ID = uuid.New().String()
	}
	schedule.NextPaymentDate = schedule.StartDate

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}

	logger.Info("recurring schedule created",
		"schedule_id", schedule.ID,
		"lease_id", schedule.LeaseID,
		"frequency", schedule.Frequency,
		"next_payment_date", schedule.NextPaymentDate)
	return schedule, nil
}

func (s *recurringService) GetSchedule(ctx context.Context, scheduleID string) (*domain.RecurringSchedule, error) {
	return s.scheduleRepo.GetByID(ctx, scheduleID)
}

func (s *recurringService) CancelSchedule(ctx context.Context, scheduleID string) (*domain.RecurringSchedule, error) {
	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if !schedule.IsActive {
		return schedule, nil
	}

	schedule.IsActive = false
	if err := s.scheduleRepo.Update(ctx, schedule, schedule.Version); err != nil {
		return nil, err
	}

	logger.Info("recurring schedule cancelled", "schedule_id", scheduleID)
	return schedule, nil
}

// CollectDuePayments runs one collection sweep: every active schedule whose
// next payment date has arrived gets one charge attempt. An initiated charge
// advances the next payment date; a failed attempt leaves the date in place
// for the next sweep. Returns the number of payments initiated.
func (s *recurringService) CollectDuePayments(ctx context.Context, asOf time.Time) (int, error) {
	due, err := s.scheduleRepo.ListDue(ctx, asOf)
	if err != nil {
		return 0, fmt.Errorf("failed to list due schedules: %w", err)
	}

	collected := 0
	for i := range due {
		schedule := &due[i]
		if err := s.collectOne(ctx, schedule, asOf); err != nil {
			logger.Error("failed to collect scheduled payment",
				"schedule_id", schedule.ID,
				"lease_id", schedule.LeaseID,
				"error", err)
			continue
		}
		collected++
	}

	logger.Info("collection sweep finished", "due", len(due), "collected", collected)
	return collected, nil
}

func (s *recurringService) collectOne(ctx context.Context, schedule *domain.RecurringSchedule, asOf time.Time) error {
	amount, err := firstPeriodAmount(schedule)
	if err != nil {
		return err
	}
	dueDate := schedule.NextPaymentDate
	req := &domain.PaymentRequest{
		Amount:      amount,
		Method:      schedule.Method,
		Customer:    schedule.Customer,
		Description: fmt.Sprintf("Scheduled rent payment for lease %s", schedule.LeaseID),
		LeaseID:     schedule.LeaseID,
		ScheduleID:  schedule.ID,
		Metadata: map[string]string{
			"schedule_id":       schedule.ID,
			"schedule_due_date": dueDate.Format(time.RFC3339),
		},
	}
	if schedule.Method == domain.PaymentMethodMobileMoney {
		network, err := validation.NetworkForPhone(schedule.Customer.Phone)
		if err != nil {
			return err
		}
		req.MobileMoney = &domain.MobileMoneyDetails{Network: network, Phone: schedule.Customer.Phone}
	}

	// A failed attempt leaves the schedule untouched; the next sweep retries.
	result, err := s.paymentSvc.CreatePayment(ctx, req)
	if err != nil {
		return err
	}
	// An intent that comes back already failed does not advance the plan.
	if result.Status == domain.PaymentStatusFailed {
		logger.Warn("scheduled payment failed at initiation",
			"schedule_id", schedule.ID,
			"payment_id", result.ID,
			"reference", result.Reference)
		return nil
	}

	// The charge date moves now so the next sweep cannot charge the same
	// period twice. Completion is counted only once the charge resolves:
	// immediately here for an already-succeeded intent, otherwise when the
	// reconciler or a webhook lands the terminal status.
	if err := utils.AdvanceNextPaymentDate(schedule); err != nil {
		return fmt.Errorf("failed to advance schedule: %w", err)
	}
	if result.Status == domain.PaymentStatusSucceeded {
		utils.SettleCollection(schedule, true, dueDate, asOf)
	}
	if err := s.scheduleRepo.Update(ctx, schedule, schedule.Version); err != nil {
		return fmt.Errorf("failed to update schedule: %w", err)
	}

	logger.Info("scheduled payment initiated",
		"schedule_id", schedule.ID,
		"payment_id", result.ID,
		"reference", result.Reference,
		"status", result.Status,
		"completed_payments", schedule.CompletedPayments,
		"is_active", schedule.IsActive)
	return nil
}

func (s *recurringService) ListDueSoon(ctx context.Context, from, to time.Time) ([]domain.RecurringSchedule, error) {
	return s.scheduleRepo.ListDueSoon(ctx, from, to)
}

// firstPeriodAmount pro-rates the first charge of a monthly plan that begins
// mid-month. Every later charge, and every non-monthly plan, pays in full.
func firstPeriodAmount(schedule *domain.RecurringSchedule) (domain.Amount, error) {
	amount := schedule.Amount
	if schedule.CompletedPayments > 0 ||
		schedule.Frequency != domain.FrequencyMonthly ||
		schedule.StartDate.Day() == 1 {
		return amount, nil
	}

	start := schedule.StartDate
	periodStart := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	lastDay := utils.DaysInMonth(start.Year(), int(start.Month()))
	periodEnd := time.Date(start.Year(), start.Month(), lastDay, 0, 0, 0, 0, start.Location())

	prorated, err := utils.ProRatedAmount(amount.Value, periodStart, periodEnd, start)
	if err != nil {
		return amount, err
	}
	amount.Value = prorated
	return amount, nil
}
