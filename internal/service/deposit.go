package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/reference"
	"propertypay-backend/internal/repository"
	"propertypay-backend/internal/utils"
)

type depositService struct {
	depositRepo repository.DepositRepository
	emailSvc    EmailService
	noteSvc     NotificationService
}

func NewDepositService(depositRepo repository.DepositRepository, emailSvc EmailService, noteSvc NotificationService) DepositService {
	return &depositService{
		depositRepo: depositRepo,
		emailSvc:    emailSvc,
		noteSvc:     noteSvc,
	}
}

func (s *depositService) CreateDeposit(ctx context.Context, deposit *domain.SecurityDeposit) (*domain.SecurityDeposit, error) {
	if deposit.Amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Code: "INVALID_AMOUNT"}
	}
	if deposit.Currency == "" {
		return nil, &domain.ValidationError{Field: "currency", Code: "CURRENCY_REQUIRED"}
	}
	if deposit.InterestRate < 0 {
		return nil, &domain.ValidationError{Field: "interest_rate", Code: "INVALID_INTEREST_RATE"}
	}
	if deposit.LeaseID == "" {
		return nil, &domain.ValidationError{Field: "lease_id", Code: "LEASE_REQUIRED"}
	}
	if deposit.ID == "" {
		deposit.ID = uuid.New().String()
	}
	if deposit.ReceivedAt.IsZero() {
		deposit.ReceivedAt = time.Now().UTC()
	}

	if err := s.depositRepo.Create(ctx, deposit); err != nil {
		return nil, fmt.Errorf("failed to create deposit: %w", err)
	}

	logger.Info("deposit created",
		"deposit_id", deposit.ID,
		"lease_id", deposit.LeaseID,
		"amount", deposit.Amount,
		"currency", deposit.Currency)
	return deposit, nil
}

func (s *depositService) GetDeposit(ctx context.Context, depositID string) (*domain.SecurityDeposit, error) {
	return s.depositRepo.GetByID(ctx, depositID)
}

// RecalculateInterest overwrites the stored accrued interest with the simple
// daily accrual as of the given instant. Safe to repeat; the result depends
// only on the receipt data and asOf.
func (s *depositService) RecalculateInterest(ctx context.Context, depositID string, asOf time.Time) (*domain.SecurityDeposit, error) {
	d, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DepositStatusClosed {
		return nil, &domain.StateConflictError{Reason: "deposit is closed, interest no longer accrues"}
	}

	accrued := utils.AccruedInterest(d.Amount, d.InterestRate, d.ReceivedAt, asOf)
	if accrued == d.AccruedInterest {
		return d, nil
	}

	if err := s.depositRepo.UpdateAccruedInterest(ctx, depositID, accrued, d.Version); err != nil {
		return nil, err
	}
	d.AccruedInterest = accrued
	d.Version++

	logger.Info("deposit interest recalculated", "deposit_id", d.ID, "accrued_interest", accrued)
	return d, nil
}

func (s *depositService) AddDeduction(ctx context.Context, depositID, reason string, amount int64, attachmentURLs []string) (*domain.SecurityDeposit, error) {
	if amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Code: "INVALID_AMOUNT"}
	}
	if reason == "" {
		return nil, &domain.ValidationError{Field: "reason", Code: "REASON_REQUIRED"}
	}

	d, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}

	ded := &domain.Deduction{
		ID:             uuid.New().String(),
		DepositID:      depositID,
		Reason:         reason,
		Amount:         amount,
		AttachmentURLs: attachmentURLs,
	}
	if err := s.depositRepo.AppendDeduction(ctx, ded, d.Version); err != nil {
		return nil, err
	}

	logger.Info("deduction recorded", "deposit_id", depositID, "deduction_id", ded.ID, "amount", amount)
	if s.noteSvc != nil && d.TenantID != "" {
		attrs := map[string]string{"deposit_id": depositID, "deduction_id": ded.ID}
		if err := s.noteSvc.Notify(ctx, d.TenantID, "Deposit deduction", fmt.Sprintf("A deduction of %d %s was recorded: %s", amount, d.Currency, reason), attrs); err != nil {
			logger.Warn("failed to record deduction notification", "deposit_id", depositID, "error", err)
		}
	}

	return s.depositRepo.GetByID(ctx, depositID)
}

// RefundDeposit finalizes the deposit. The repository revalidates the
// refundable amount inside the refund transaction, so the precheck here only
// produces a friendlier early error.
func (s *depositService) RefundDeposit(ctx context.Context, depositID string, amount int64, method domain.PaymentMethod) (*domain.SecurityDeposit, error) {
	if amount <= 0 {
		return nil, &domain.ValidationError{Field: "amount", Code: "INVALID_AMOUNT"}
	}

	d, err := s.depositRepo.GetByID(ctx, depositID)
	if err != nil {
		return nil, err
	}
	if d.Status == domain.DepositStatusClosed {
		return nil, &domain.StateConflictError{Reason: "deposit already refunded"}
	}
	if refundable := utils.RefundableAmount(d); amount > refundable {
		return nil, &domain.StateConflictError{
			Reason: fmt.Sprintf("refund of %d exceeds refundable amount %d", amount, refundable),
		}
	}

	refund := &domain.Refund{
		ID:        uuid.New().String(),
		DepositID: depositID,
		Amount:    amount,
		Currency:  d.Currency,
		Method:    method,
		Reference: reference.NewRefund(),
	}
	if err := s.depositRepo.AppendRefund(ctx, refund, d.Version); err != nil {
		return nil, err
	}

	logger.Info("deposit refunded",
		"deposit_id", depositID,
		"refund_id", refund.ID,
		"amount", amount,
		"reference", refund.Reference)
	if s.noteSvc != nil && d.TenantID != "" {
		attrs := map[string]string{"deposit_id": depositID, "refund_id": refund.ID, "reference": refund.Reference}
		if err := s.noteSvc.Notify(ctx, d.TenantID, "Deposit refunded", fmt.Sprintf("Your deposit refund of %d %s is being processed", amount, d.Currency), attrs); err != nil {
			logger.Warn("failed to record refund notification", "deposit_id", depositID, "error", err)
		}
	}

	return s.depositRepo.GetByID(ctx, depositID)
}
