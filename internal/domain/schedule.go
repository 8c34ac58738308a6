package domain

import "time"

type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
	FrequencyYearly    Frequency = "YEARLY"
)

func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly, FrequencyQuarterly, FrequencyYearly:
		return true
	}
	return false
}

// RecurringSchedule drives repeated rent collection for a lease.
//
// Invariants: CompletedPayments never exceeds TotalPayments when the latter
// is set; NextPaymentDate strictly advances after each successful collection;
// IsActive drops to false once TotalPayments is reached or EndDate has passed.
type RecurringSchedule struct {
	ID                string        `json:"id"`
	LeaseID           string        `json:"lease_id"`
	Amount            Amount        `json:"amount"`
	Method            PaymentMethod `json:"method"`
	Customer          Customer      `json:"customer"`
	Frequency         Frequency     `json:"frequency"`
	StartDate         time.Time     `json:"start_date"`
	EndDate           *time.Time    `json:"end_date,omitempty"`
	NextPaymentDate   time.Time     `json:"next_payment_date"`
	TotalPayments     *int32        `json:"total_payments,omitempty"`
	CompletedPayments int32         `json:"completed_payments"`
	IsActive          bool          `json:"is_active"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
	Version           int32         `json:"version"`
}

// Finished reports whether the plan has met a termination condition as of now.
func (s *RecurringSchedule) Finished(now time.Time) bool {
	if s.TotalPayments != nil && s.CompletedPayments >= *s.TotalPayments {
		return true
	}
	if s.EndDate != nil && now.After(*s.EndDate) {
		return true
	}
	return false
}
