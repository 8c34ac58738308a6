package reference

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// New produces a payment reference unique with overwhelming probability:
// a UTC timestamp for operator readability plus a random 122-bit suffix.
// The reference doubles as the idempotency key handed to gateway adapters.
func New() string {
	ts := time.Now().UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "PAY-" + ts + "-" + suffix[:16]
}

// NewRefund produces a reference for a deposit refund payout.
func NewRefund() string {
	ts := time.Now().UTC().Format("20060102150405")
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "RFD-" + ts + "-" + suffix[:16]
}
