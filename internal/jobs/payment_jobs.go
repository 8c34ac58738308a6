package jobs

import (
	"context"
	"time"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
)

// reminderWindow is how far ahead the reminder job looks for upcoming
// scheduled payments.
const reminderWindow = 3 * 24 * time.Hour

// reconcileAfter is how long a payment may sit pending before the
// reconciliation sweep polls the provider for it.
const reconcileAfter = 30 * time.Minute

const reconcileBatchSize = 100

// CollectDuePayments initiates one charge per active schedule whose next
// payment date has arrived.
func (jr *JobRunner) CollectDuePayments() {
	jr.runWithRecovery("CollectDuePayments", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		collected, err := jr.services.Recurring.CollectDuePayments(ctx, time.Now().UTC())
		if err != nil {
			logger.Error("Failed to collect due payments", "error", err)
			return
		}

		logger.Info("Collected due payments", "count", collected)
	})
}

// SendPaymentReminders emails tenants whose next scheduled payment falls
// inside the reminder window.
func (jr *JobRunner) SendPaymentReminders() {
	jr.runWithRecovery("SendPaymentReminders", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		now := time.Now().UTC()
		upcoming, err := jr.services.Recurring.ListDueSoon(ctx, now, now.Add(reminderWindow))
		if err != nil {
			logger.Error("Failed to list upcoming schedules", "error", err)
			return
		}

		sent := 0
		for _, s := range upcoming {
			if s.Customer.Email == "" {
				continue
			}
			if err := jr.services.Email.SendPaymentReminder(ctx, s.Customer.Email, s.Customer.Name, s.Amount, s.NextPaymentDate); err != nil {
				logger.Error("Failed to send payment reminder",
					"schedule_id", s.ID,
					"error", err)
				continue
			}
			sent++
		}

		logger.Info("Sent payment reminders", "upcoming", len(upcoming), "sent", sent)
	})
}

// ReconcilePendingPayments polls the provider for payments stuck in pending.
// Terminal observations move the record through the state machine; repeated
// terminal observations are no-ops.
func (jr *JobRunner) ReconcilePendingPayments() {
	jr.runWithRecovery("ReconcilePendingPayments", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		cutoff := time.Now().UTC().Add(-reconcileAfter)
		stale, err := jr.store.PaymentRepository.ListStalePending(ctx, cutoff, reconcileBatchSize)
		if err != nil {
			logger.Error("Failed to list stale pending payments", "error", err)
			return
		}

		resolved := 0
		for _, p := range stale {
			result, err := jr.services.Payments.ConfirmPayment(ctx, p.ID)
			if err != nil {
				if domain.IsStateConflict(err) {
					logger.Warn("Reconciliation state conflict", "payment_id", p.ID, "error", err)
					continue
				}
				logger.Error("Failed to reconcile payment",
					"payment_id", p.ID,
					"reference", p.Reference,
					"error", err)
				continue
			}
			if result.Status.IsTerminal() {
				resolved++
			}
		}

		logger.Info("Reconciled pending payments", "stale", len(stale), "resolved", resolved)
	})
}
