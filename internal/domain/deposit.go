package domain

import "time"

type DepositStatus string

const (
	DepositStatusHeld   DepositStatus = "HELD"
	DepositStatusClosed DepositStatus = "CLOSED"
)

// SecurityDeposit tracks one tenancy deposit through receipt, interest
// accrual, deductions and refund. Amount, Currency and ReceivedAt are fixed
// at receipt and never mutated afterwards.
type SecurityDeposit struct {
	ID              string        `json:"id"`
	LeaseID         string        `json:"lease_id"`
	TenantID        string        `json:"tenant_id"`
	Amount          int64         `json:"amount"` // minor units
	Currency        string        `json:"currency"`
	InterestRate    float64       `json:"interest_rate"` // annual, e.g. 0.02
	ReceivedAt      time.Time     `json:"received_at"`
	AccruedInterest int64         `json:"accrued_interest"` // minor units
	Status          DepositStatus `json:"status"`
	Deductions      []Deduction   `json:"deductions"`
	Refunds         []Refund      `json:"refunds"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
	Version         int32         `json:"version"`
}

// TotalDeductions sums all deduction amounts in minor units.
func (d *SecurityDeposit) TotalDeductions() int64 {
	var total int64
	for _, ded := range d.Deductions {
		total += ded.Amount
	}
	return total
}

// Deduction is a charge against the deposit, appendable only while no refund
// has been finalized. AttachmentURLs reference evidence uploaded through the
// object-storage collaborator.
type Deduction struct {
	ID             string    `json:"id"`
	DepositID      string    `json:"deposit_id"`
	Reason         string    `json:"reason"`
	Amount         int64     `json:"amount"` // minor units
	AttachmentURLs []string  `json:"attachment_urls,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Refund is the final payout against a deposit, immutable once created.
// DeductionsSnapshot preserves the deduction total the refund was validated
// against.
type Refund struct {
	ID                 string        `json:"id"`
	DepositID          string        `json:"deposit_id"`
	Amount             int64         `json:"amount"` // minor units
	Currency           string        `json:"currency"`
	Method             PaymentMethod `json:"method"`
	Reference          string        `json:"reference"`
	DeductionsSnapshot int64         `json:"deductions_snapshot"`
	ProcessedAt        time.Time     `json:"processed_at"`
}
