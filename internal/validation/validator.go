package validation

import (
	"strings"
	"time"

	"propertypay-backend/internal/domain"
)

// mobileMoneyRule describes the dial-prefix and length rules for one network.
type mobileMoneyRule struct {
	prefixes []string
	length   int
}

// Ghanaian mobile money numbering plan, local format (leading zero).
var mobileMoneyRules = map[domain.MobileNetwork]mobileMoneyRule{
	domain.MobileNetworkMTN: {
		prefixes: []string{"024", "025", "053", "054", "055", "059"},
		length:   10,
	},
	domain.MobileNetworkVodafone: {
		prefixes: []string{"020", "050"},
		length:   10,
	},
	domain.MobileNetworkAirtelTigo: {
		prefixes: []string{"026", "027", "056", "057"},
		length:   10,
	},
}

// bankAccountRule describes account number length per bank code.
type bankAccountRule struct {
	minLength int
	maxLength int
}

var bankAccountRules = map[string]bankAccountRule{
	"GCB": {minLength: 13, maxLength: 13},
	"ECO": {minLength: 13, maxLength: 13},
	"SCB": {minLength: 13, maxLength: 13},
	"ABS": {minLength: 10, maxLength: 14},
	"CAL": {minLength: 10, maxLength: 16},
	"FID": {minLength: 10, maxLength: 14},
}

// ValidateRequest checks the method-specific payload of a payment request.
// It performs no network I/O and mutates nothing; the result is nil or a
// *domain.ValidationError with a machine-readable code.
func ValidateRequest(req *domain.PaymentRequest) error {
	if req.Amount.Value <= 0 {
		return &domain.ValidationError{Field: "amount", Code: "AMOUNT_NOT_POSITIVE"}
	}
	if req.Amount.Currency == "" {
		return &domain.ValidationError{Field: "currency", Code: "CURRENCY_REQUIRED"}
	}

	switch req.Method {
	case domain.PaymentMethodMobileMoney:
		if req.MobileMoney == nil {
			return &domain.ValidationError{Field: "mobile_money", Code: "DETAILS_REQUIRED"}
		}
		return ValidateMobileMoneyNumber(req.MobileMoney.Network, req.MobileMoney.Phone)
	case domain.PaymentMethodBankTransfer:
		if req.BankAccount == nil {
			return &domain.ValidationError{Field: "bank_account", Code: "DETAILS_REQUIRED"}
		}
		return ValidateBankAccount(req.BankAccount.BankCode, req.BankAccount.AccountNumber)
	case domain.PaymentMethodCard:
		if req.Card == nil {
			return &domain.ValidationError{Field: "card", Code: "DETAILS_REQUIRED"}
		}
		return ValidateCard(req.Card)
	case domain.PaymentMethodQR, domain.PaymentMethodUSSD:
		// QR and USSD charges are completed on the customer's device; the
		// only local precondition is a reachable phone number.
		if req.Customer.Phone == "" {
			return &domain.ValidationError{Field: "customer.phone", Code: "PHONE_REQUIRED"}
		}
		return nil
	default:
		return &domain.ValidationError{Field: "method", Code: "UNSUPPORTED_METHOD"}
	}
}

// ValidateMobileMoneyNumber checks a wallet number against the per-network
// prefix and length tables.
func ValidateMobileMoneyNumber(network domain.MobileNetwork, phone string) error {
	rule, ok := mobileMoneyRules[network]
	if !ok {
		return &domain.ValidationError{Field: "mobile_money.network", Code: "UNKNOWN_NETWORK"}
	}
	if !isDigits(phone) {
		return &domain.ValidationError{Field: "mobile_money.phone", Code: "NOT_NUMERIC"}
	}
	if len(phone) != rule.length {
		return &domain.ValidationError{Field: "mobile_money.phone", Code: "WRONG_LENGTH"}
	}
	for _, p := range rule.prefixes {
		if strings.HasPrefix(phone, p) {
			return nil
		}
	}
	return &domain.ValidationError{Field: "mobile_money.phone", Code: "PREFIX_NETWORK_MISMATCH"}
}

// NetworkForPhone resolves the network a wallet number belongs to from its
// dial prefix. Used when a stored schedule carries only the phone number.
func NetworkForPhone(phone string) (domain.MobileNetwork, error) {
	for network := range mobileMoneyRules {
		if ValidateMobileMoneyNumber(network, phone) == nil {
			return network, nil
		}
	}
	return "", &domain.ValidationError{Field: "phone", Code: "UNKNOWN_NETWORK"}
}

// ValidateBankAccount checks an account number against the bank-code-keyed
// length table.
func ValidateBankAccount(bankCode, accountNumber string) error {
	rule, ok := bankAccountRules[bankCode]
	if !ok {
		return &domain.ValidationError{Field: "bank_account.bank_code", Code: "UNKNOWN_BANK"}
	}
	if !isDigits(accountNumber) {
		return &domain.ValidationError{Field: "bank_account.account_number", Code: "NOT_NUMERIC"}
	}
	if len(accountNumber) < rule.minLength || len(accountNumber) > rule.maxLength {
		return &domain.ValidationError{Field: "bank_account.account_number", Code: "WRONG_LENGTH"}
	}
	return nil
}

// ValidateCard checks the card number with the Luhn algorithm and requires
// the expiry to be the current month or later.
func ValidateCard(card *domain.CardDetails) error {
	number := strings.ReplaceAll(card.Number, " ", "")
	if !isDigits(number) || len(number) < 12 || len(number) > 19 {
		return &domain.ValidationError{Field: "card.number", Code: "INVALID_NUMBER"}
	}
	if !luhnValid(number) {
		return &domain.ValidationError{Field: "card.number", Code: "LUHN_CHECK_FAILED"}
	}
	if card.ExpiryMonth < 1 || card.ExpiryMonth > 12 {
		return &domain.ValidationError{Field: "card.expiry_month", Code: "INVALID_MONTH"}
	}
	now := time.Now().UTC()
	if card.ExpiryYear < now.Year() ||
		(card.ExpiryYear == now.Year() && time.Month(card.ExpiryMonth) < now.Month()) {
		return &domain.ValidationError{Field: "card.expiry", Code: "CARD_EXPIRED"}
	}
	if len(card.CVV) != 3 && len(card.CVV) != 4 {
		return &domain.ValidationError{Field: "card.cvv", Code: "INVALID_CVV"}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// luhnValid implements the standard Luhn checksum over a digit string.
func luhnValid(number string) bool {
	sum := 0
	double := false
	for i := len(number) - 1; i >= 0; i-- {
		d := int(number[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}
