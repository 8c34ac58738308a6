package domain

import "time"

type PaymentMethod string

const (
	PaymentMethodMobileMoney  PaymentMethod = "MOBILE_MONEY"
	PaymentMethodBankTransfer PaymentMethod = "BANK_TRANSFER"
	PaymentMethodCard         PaymentMethod = "CARD"
	PaymentMethodQR           PaymentMethod = "QR"
	PaymentMethodUSSD         PaymentMethod = "USSD"
)

type MobileNetwork string

const (
	MobileNetworkMTN        MobileNetwork = "MTN"
	MobileNetworkVodafone   MobileNetwork = "VODAFONE"
	MobileNetworkAirtelTigo MobileNetwork = "AIRTELTIGO"
)

// PaymentStatus is the canonical gateway-agnostic status. Every provider
// adapter maps its native vocabulary onto these four values.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusSucceeded PaymentStatus = "SUCCEEDED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is allowed out of s.
func (s PaymentStatus) IsTerminal() bool {
	switch s {
	case PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// IsValid reports whether s is one of the canonical statuses.
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusSucceeded, PaymentStatusFailed, PaymentStatusCancelled:
		return true
	}
	return false
}

// ReconcileStatus applies an observed status against the current one and
// returns the status the record should hold afterwards.
//
// Re-applying an already-observed terminal status is a no-op so that repeated
// polling stays idempotent. Any other transition out of a terminal state is a
// state conflict.
func ReconcileStatus(current, observed PaymentStatus) (PaymentStatus, error) {
	if !observed.IsValid() {
		return current, &StateConflictError{
			Reason: "unknown status " + string(observed),
		}
	}
	if current == observed {
		return current, nil
	}
	if current.IsTerminal() {
		return current, &StateConflictError{
			Reason: "payment already " + string(current) + ", cannot transition to " + string(observed),
		}
	}
	return observed, nil
}

// Customer identifies the paying party as the provider needs to see it.
type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// MobileMoneyDetails carries the wallet being charged.
type MobileMoneyDetails struct {
	Network MobileNetwork `json:"network"`
	Phone   string        `json:"phone"`
}

// BankAccountDetails carries the account for a bank transfer.
type BankAccountDetails struct {
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
}

// CardDetails carries the card being charged. The number never persists
// beyond validation and the provider call.
type CardDetails struct {
	Number      string `json:"number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
}

// PaymentRequest is the canonical charge request handed to a gateway adapter.
// Reference is the idempotency key: it is assigned once, globally unique, and
// immutable afterwards. Retrying with the same reference must resolve to the
// original intent, never a second charge.
type PaymentRequest struct {
	ID          string              `json:"id"`
	Amount      Amount              `json:"amount"`
	Method      PaymentMethod       `json:"method"`
	Description string              `json:"description"`
	Reference   string              `json:"reference"`
	Customer    Customer            `json:"customer"`
	MobileMoney *MobileMoneyDetails `json:"mobile_money,omitempty"`
	BankAccount *BankAccountDetails `json:"bank_account,omitempty"`
	Card        *CardDetails        `json:"card,omitempty"`
	LeaseID     string              `json:"lease_id,omitempty"`
	ScheduleID  string              `json:"schedule_id,omitempty"`
	Metadata    map[string]string   `json:"metadata,omitempty"`
}

// PaymentResult is the canonical record of a payment attempt. Version backs
// the optimistic-concurrency check on every update.
type PaymentResult struct {
	ID        string            `json:"id"`
	Reference string            `json:"reference"`
	Status    PaymentStatus     `json:"status"`
	Amount    Amount            `json:"amount"`
	Method    PaymentMethod     `json:"method"`
	Customer  Customer          `json:"customer"`
	Provider  string            `json:"provider"`
	LeaseID   string            `json:"lease_id,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Version   int32             `json:"version"`
}
