package utils

import (
	"time"

	"propertypay-backend/internal/domain"
)

// AccruedInterest computes simple daily interest on a deposit:
// amount × rate / 365 × wholeDaysElapsed, truncated to whole minor units.
// The calculation is idempotent: the same inputs always give the same result,
// and callers overwrite the stored value rather than adding to it.
func AccruedInterest(amount int64, annualRate float64, receivedAt, asOf time.Time) int64 {
	days := wholeDaysBetween(receivedAt, asOf)
	if days <= 0 || annualRate <= 0 {
		return 0
	}
	return int64(float64(amount) * annualRate / 365.0 * float64(days))
}

// RefundableAmount is the ledger invariant for a deposit:
// amount + accrued interest − total deductions, in minor units.
// Any accepted refund must leave this value non-negative.
func RefundableAmount(d *domain.SecurityDeposit) int64 {
	return d.Amount + d.AccruedInterest - d.TotalDeductions()
}
