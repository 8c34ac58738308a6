package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/gateway"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/reference"
	"propertypay-backend/internal/repository"
	"propertypay-backend/internal/utils"
	"propertypay-backend/internal/validation"
)

type paymentService struct {
	paymentRepo  repository.PaymentRepository
	scheduleRepo repository.ScheduleRepository
	gateways     *gateway.Registry
	emailSvc     EmailService
	noteSvc      NotificationService
}

func NewPaymentService(paymentRepo repository.PaymentRepository, scheduleRepo repository.ScheduleRepository, gateways *gateway.Registry, emailSvc EmailService, noteSvc NotificationService) PaymentService {
	return &paymentService{
		paymentRepo:  paymentRepo,
		scheduleRepo: scheduleRepo,
		gateways:     gateways,
		emailSvc:     emailSvc,
		noteSvc:      noteSvc,
	}
}

// CreatePayment validates the request, assigns the idempotency reference if
// the caller did not supply one, and creates the provider intent. Retrying
// with an existing reference resolves to the stored record, never a second
// charge.
func (s *paymentService) CreatePayment(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	if err := validation.ValidateRequest(req); err != nil {
		return nil, err
	}

	if req.Reference != "" {
		existing, err := s.paymentRepo.GetByReference(ctx, req.Reference)
		if err == nil {
			return existing, nil
		}
		if !domain.IsNotFound(err) {
			return nil, fmt.Errorf("failed to check reference: %w", err)
		}
	} else {
		req.Reference = reference.New()
	}
	if req.ID == "" {
		req.ID = uuid.New().String()
	}

	gw, err := s.gateways.ForMethod(req.Method)
	if err != nil {
		return nil, err
	}

	result, err := gw.CreatePaymentIntent(ctx, req)
	if err != nil {
		return nil, err
	}
	// The provider echoes reference, amount and status; the rest of the
	// record comes from the request.
	result.ID = req.ID
	result.LeaseID = req.LeaseID
	result.Method = req.Method
	result.Customer = req.Customer
	if len(req.Metadata) > 0 {
		if result.Metadata == nil {
			result.Metadata = make(map[string]string)
		}
		for k, v := range req.Metadata {
			result.Metadata[k] = v
		}
	}

	if err := s.paymentRepo.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to persist payment: %w", err)
	}

	logger.Info("payment created",
		"payment_id", result.ID,
		"reference", result.Reference,
		"provider", result.Provider,
		"status", result.Status)
	return result, nil
}

// ConfirmPayment polls the provider for the current status and reconciles it
// onto the stored record. Confirming an already-terminal payment returns the
// record unchanged.
func (s *paymentService) ConfirmPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status.IsTerminal() {
		return p, nil
	}

	gw, err := s.gateways.ForMethod(p.Method)
	if err != nil {
		return nil, err
	}

	observed, err := gw.ConfirmPayment(ctx, p.Reference)
	if err != nil {
		return nil, err
	}

	return s.applyStatus(ctx, p, observed.Status, observed.Metadata)
}

// CancelPayment asks the provider to cancel a pending payment. Cancelling an
// already-cancelled payment is a no-op; any other terminal state conflicts.
func (s *paymentService) CancelPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status == domain.PaymentStatusCancelled {
		return p, nil
	}
	if p.Status.IsTerminal() {
		return nil, &domain.StateConflictError{
			Reason: "payment already " + string(p.Status) + ", cannot cancel",
		}
	}

	gw, err := s.gateways.ForMethod(p.Method)
	if err != nil {
		return nil, err
	}

	observed, err := gw.CancelPayment(ctx, p.Reference)
	if err != nil {
		return nil, err
	}

	return s.applyStatus(ctx, p, observed.Status, observed.Metadata)
}

// RefundPayment issues a provider refund against a succeeded payment. A nil
// amount refunds whatever remains; partial refunds accumulate and are
// validated against the unrefunded remainder, never the original total.
func (s *paymentService) RefundPayment(ctx context.Context, paymentID string, amount *domain.Amount) (*domain.PaymentResult, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if p.Status != domain.PaymentStatusSucceeded {
		return nil, &domain.StateConflictError{
			Reason: "only succeeded payments can be refunded, payment is " + string(p.Status),
		}
	}

	remaining := p.Amount.Value - refundedTotal(p)
	if remaining <= 0 {
		return nil, &domain.StateConflictError{Reason: "payment already fully refunded"}
	}
	if amount != nil {
		if amount.Currency != p.Amount.Currency {
			return nil, &domain.ValidationError{Field: "amount.currency", Code: "CURRENCY_MISMATCH"}
		}
		if amount.Value <= 0 || amount.Value > remaining {
			return nil, &domain.ValidationError{Field: "amount", Code: "INVALID_REFUND_AMOUNT"}
		}
	}

	gw, err := s.gateways.ForMethod(p.Method)
	if err != nil {
		return nil, err
	}

	refunded, err := gw.RefundPayment(ctx, p.Reference, amount)
	if err != nil {
		return nil, err
	}

	refundValue := remaining
	if amount != nil {
		refundValue = amount.Value
	}

	if p.Metadata == nil {
		p.Metadata = make(map[string]string)
	}
	p.Metadata["refund_reference"] = reference.NewRefund()
	p.Metadata["refunded_total"] = strconv.FormatInt(refundedTotal(p)+refundValue, 10)
	for k, v := range refunded.Metadata {
		p.Metadata[k] = v
	}
	if err := s.paymentRepo.Update(ctx, p, p.Version); err != nil {
		return nil, err
	}

	if s.emailSvc != nil && p.Customer.Email != "" {
		refundAmount := domain.NewAmount(refundValue, p.Amount.Currency)
		if err := s.emailSvc.SendRefundNotification(ctx, p.Customer.Email, p.Customer.Name, refundAmount, p.Metadata["refund_reference"]); err != nil {
			logger.Warn("failed to send refund notification", "payment_id", p.ID, "error", err)
		}
	}

	logger.Info("payment refunded",
		"payment_id", p.ID,
		"reference", p.Reference,
		"refund_value", refundValue,
		"refunded_total", p.Metadata["refunded_total"])
	return p, nil
}

// refundedTotal reads the cumulative refunded amount recorded on the payment.
func refundedTotal(p *domain.PaymentResult) int64 {
	v, _ := strconv.ParseInt(p.Metadata["refunded_total"], 10, 64)
	return v
}

func (s *paymentService) GetPayment(ctx context.Context, paymentID string) (*domain.PaymentResult, error) {
	return s.paymentRepo.GetByID(ctx, paymentID)
}

func (s *paymentService) ListLeasePayments(ctx context.Context, leaseID string, page, pageSize int32) ([]domain.PaymentResult, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return s.paymentRepo.ListByLease(ctx, leaseID, page, pageSize)
}

// ApplyProviderStatus feeds a webhook-observed status through the reconciler.
// Repeated terminal callbacks are no-ops.
func (s *paymentService) ApplyProviderStatus(ctx context.Context, ref string, providerStatus domain.PaymentStatus) (*domain.PaymentResult, error) {
	p, err := s.paymentRepo.GetByReference(ctx, ref)
	if err != nil {
		return nil, err
	}
	return s.applyStatus(ctx, p, providerStatus, nil)
}

// applyStatus runs the state machine and persists the transition under the
// optimistic version check. Reaching a terminal status fans out notifications.
func (s *paymentService) applyStatus(ctx context.Context, p *domain.PaymentResult, observed domain.PaymentStatus, metadata map[string]string) (*domain.PaymentResult, error) {
	next, err := domain.ReconcileStatus(p.Status, observed)
	if err != nil {
		return nil, err
	}
	if next == p.Status {
		return p, nil
	}

	p.Status = next
	if len(metadata) > 0 {
		if p.Metadata == nil {
			p.Metadata = make(map[string]string)
		}
		for k, v := range metadata {
			p.Metadata[k] = v
		}
	}
	if err := s.paymentRepo.Update(ctx, p, p.Version); err != nil {
		return nil, err
	}

	logger.Info("payment status updated", "payment_id", p.ID, "reference", p.Reference, "status", p.Status)
	s.settleSchedule(ctx, p)
	s.notifyTerminal(ctx, p)
	return p, nil
}

// settleSchedule propagates the terminal outcome of a scheduled charge back
// onto its recurring plan: success counts the payment, failure or
// cancellation re-arms the plan at the charge's due date so the missed
// period is retried. A still-pending charge never counts as completed.
// Settlement failures are logged; the payment transition already committed.
func (s *paymentService) settleSchedule(ctx context.Context, p *domain.PaymentResult) {
	scheduleID := p.Metadata["schedule_id"]
	if s.scheduleRepo == nil || scheduleID == "" || !p.Status.IsTerminal() {
		return
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		logger.Error("failed to load schedule for settlement",
			"payment_id", p.ID, "schedule_id", scheduleID, "error", err)
		return
	}

	dueDate := schedule.NextPaymentDate
	if raw := p.Metadata["schedule_due_date"]; raw != "" {
		if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
			dueDate = parsed
		}
	}

	utils.SettleCollection(schedule, p.Status == domain.PaymentStatusSucceeded, dueDate, time.Now().UTC())
	if err := s.scheduleRepo.Update(ctx, schedule, schedule.Version); err != nil {
		logger.Error("failed to settle schedule",
			"payment_id", p.ID, "schedule_id", scheduleID, "error", err)
		return
	}

	logger.Info("schedule settled",
		"schedule_id", scheduleID,
		"payment_id", p.ID,
		"status", p.Status,
		"completed_payments", schedule.CompletedPayments,
		"is_active", schedule.IsActive)
}

// notifyTerminal dispatches email and in-app records for terminal outcomes.
// Dispatch failures are logged, never surfaced to the payment flow.
func (s *paymentService) notifyTerminal(ctx context.Context, p *domain.PaymentResult) {
	attrs := map[string]string{
		"payment_id": p.ID,
		"reference":  p.Reference,
		"status":     string(p.Status),
	}

	switch p.Status {
	case domain.PaymentStatusSucceeded:
		if s.emailSvc != nil && p.Customer.Email != "" {
			if err := s.emailSvc.SendPaymentReceipt(ctx, p.Customer.Email, p.Customer.Name, p.Reference, p.Amount); err != nil {
				logger.Warn("failed to send payment receipt", "payment_id", p.ID, "error", err)
			}
		}
		if s.noteSvc != nil && p.LeaseID != "" {
			if err := s.noteSvc.Notify(ctx, p.LeaseID, "Payment received", fmt.Sprintf("Payment %s of %s received", p.Reference, p.Amount.String()), attrs); err != nil {
				logger.Warn("failed to record payment notification", "payment_id", p.ID, "error", err)
			}
		}
	case domain.PaymentStatusFailed:
		if s.emailSvc != nil && p.Customer.Email != "" {
			reason := p.Metadata["failure_reason"]
			if err := s.emailSvc.SendPaymentFailure(ctx, p.Customer.Email, p.Customer.Name, p.Reference, reason); err != nil {
				logger.Warn("failed to send payment failure notice", "payment_id", p.ID, "error", err)
			}
		}
		if s.noteSvc != nil && p.LeaseID != "" {
			if err := s.noteSvc.Notify(ctx, p.LeaseID, "Payment failed", fmt.Sprintf("Payment %s of %s failed", p.Reference, p.Amount.String()), attrs); err != nil {
				logger.Warn("failed to record payment notification", "payment_id", p.ID, "error", err)
			}
		}
	}
}
