package domain

import "fmt"

// Amount is a monetary value in minor currency units (pesewas, kobo, cents).
// Major-unit decimal formatting happens at the UI boundary, never here.
type Amount struct {
	Value    int64  `json:"value"`
	Currency string `json:"currency"`
}

func NewAmount(value int64, currency string) Amount {
	return Amount{Value: value, Currency: currency}
}

// Add returns the sum of two amounts. Mixing currencies is a programming error.
func (a Amount) Add(b Amount) (Amount, error) {
	if a.Currency != b.Currency {
		return Amount{}, fmt.Errorf("currency mismatch: %s vs %s", a.Currency, b.Currency)
	}
	return Amount{Value: a.Value + b.Value, Currency: a.Currency}, nil
}

func (a Amount) IsZero() bool {
	return a.Value == 0
}

func (a Amount) IsNegative() bool {
	return a.Value < 0
}

func (a Amount) String() string {
	return fmt.Sprintf("%d %s", a.Value, a.Currency)
}
