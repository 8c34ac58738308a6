package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
)

const bankProviderName = "bankpartner"

// bankStatusMap covers the transfer partner's documented status vocabulary.
var bankStatusMap = map[string]domain.PaymentStatus{
	"INITIATED":  domain.PaymentStatusPending,
	"PROCESSING": domain.PaymentStatusPending,
	"COMPLETED":  domain.PaymentStatusSucceeded,
	"REJECTED":   domain.PaymentStatusFailed,
	"RETURNED":   domain.PaymentStatusFailed,
	"RECALLED":   domain.PaymentStatusCancelled,
}

// BankTransferGateway drives direct bank transfers through a clearing
// partner. The partner API speaks major-unit decimal strings ("1234.50"),
// so amounts are converted from minor units on the way out and back on read.
type BankTransferGateway struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewBankTransferGateway(baseURL, apiKey string, timeout time.Duration) *BankTransferGateway {
	return &BankTransferGateway{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *BankTransferGateway) Name() string { return bankProviderName }

type bankTransferRequest struct {
	Amount        string `json:"amount"` // major units, 2 decimal places
	Currency      string `json:"currency"`
	Reference     string `json:"client_reference"`
	BankCode      string `json:"bank_code"`
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Narration     string `json:"narration"`
}

type bankTransfer struct {
	TransferID string    `json:"transfer_id"`
	Reference  string    `json:"client_reference"`
	Status     string    `json:"status"`
	Amount     string    `json:"amount"`
	Currency   string    `json:"currency"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type bankEnvelope struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Code    string       `json:"code"`
	Data    bankTransfer `json:"data"`
}

func (g *BankTransferGateway) CreatePaymentIntent(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	if req.BankAccount == nil {
		return nil, &domain.ValidationError{Field: "bank_account", Code: "DETAILS_REQUIRED"}
	}

	transfer := bankTransferRequest{
		Amount:        minorToMajor(req.Amount.Value),
		Currency:      req.Amount.Currency,
		Reference:     req.Reference,
		BankCode:      req.BankAccount.BankCode,
		AccountNumber: req.BankAccount.AccountNumber,
		AccountName:   req.BankAccount.AccountName,
		Narration:     req.Description,
	}

	var resp bankEnvelope
	err := withRetry(ctx, bankProviderName, "CreatePaymentIntent", func() error {
		return g.do(ctx, http.MethodPost, "/v1/transfers", transfer, &resp)
	})
	if err != nil {
		// The partner rejects reused client references with a dedicated
		// code; resolve to the transfer already created for it.
		var pe *domain.ProviderError
		if errors.As(err, &pe) && pe.Code == "DUPLICATE_REFERENCE" {
			logger.Info("Duplicate reference on transfer, fetching existing",
				"provider", bankProviderName, "reference", req.Reference)
			return g.GetPayment(ctx, req.Reference)
		}
		return nil, err
	}

	return g.toResult(&resp.Data)
}

func (g *BankTransferGateway) ConfirmPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	return g.fetch(ctx, providerID, "ConfirmPayment")
}

func (g *BankTransferGateway) GetPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	return g.fetch(ctx, providerID, "GetPayment")
}

func (g *BankTransferGateway) fetch(ctx context.Context, reference, operation string) (*domain.PaymentResult, error) {
	var resp bankEnvelope
	err := withRetry(ctx, bankProviderName, operation, func() error {
		return g.do(ctx, http.MethodGet, "/v1/transfers/"+reference, nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return g.toResult(&resp.Data)
}

func (g *BankTransferGateway) CancelPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	var resp bankEnvelope
	err := withRetry(ctx, bankProviderName, "CancelPayment", func() error {
		return g.do(ctx, http.MethodPost, "/v1/transfers/"+providerID+"/recall", nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return g.toResult(&resp.Data)
}

func (g *BankTransferGateway) RefundPayment(ctx context.Context, providerID string, amount *domain.Amount) (*domain.PaymentResult, error) {
	body := map[string]string{}
	if amount != nil {
		body["amount"] = minorToMajor(amount.Value)
	}
	var resp bankEnvelope
	err := withRetry(ctx, bankProviderName, "RefundPayment", func() error {
		return g.do(ctx, http.MethodPost, "/v1/transfers/"+providerID+"/reverse", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	return g.toResult(&resp.Data)
}

func (g *BankTransferGateway) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("X-Api-Key", g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	logger.GatewayCall(bankProviderName, method, path)
	resp, err := g.client.Do(req)
	if err != nil {
		return classifyTransportError(bankProviderName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(bankProviderName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope bankEnvelope
		if json.Unmarshal(raw, &envelope) == nil && envelope.Code != "" {
			return &domain.ProviderError{
				Provider:  bankProviderName,
				Code:      envelope.Code,
				Message:   envelope.Error,
				Retryable: resp.StatusCode >= 500,
			}
		}
		return classifyHTTPStatus(bankProviderName, resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ProviderError{
			Provider:  bankProviderName,
			Code:      "MALFORMED_RESPONSE",
			Message:   err.Error(),
			Retryable: false,
		}
	}
	return nil
}

func (g *BankTransferGateway) toResult(t *bankTransfer) (*domain.PaymentResult, error) {
	status, err := mapProviderStatus(bankProviderName, bankStatusMap, t.Status)
	if err != nil {
		return nil, err
	}

	minor, err := majorToMinor(t.Amount)
	if err != nil {
		return nil, &domain.ProviderError{
			Provider:  bankProviderName,
			Code:      "MALFORMED_AMOUNT",
			Message:   err.Error(),
			Retryable: false,
		}
	}

	return &domain.PaymentResult{
		Reference: t.Reference,
		Status:    status,
		Amount:    domain.NewAmount(minor, t.Currency),
		Provider:  bankProviderName,
		Metadata:  map[string]string{"transfer_id": t.TransferID},
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	}, nil
}

// minorToMajor renders minor units as the partner's two-decimal string.
func minorToMajor(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

// majorToMinor parses the partner's decimal string back into minor units.
func majorToMinor(major string) (int64, error) {
	parts := strings.SplitN(major, ".", 2)
	whole, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", major)
	}
	negative := strings.HasPrefix(parts[0], "-")

	var frac int64
	if len(parts) == 2 {
		f := parts[1]
		if len(f) > 2 {
			return 0, fmt.Errorf("amount %q has more than two decimal places", major)
		}
		for len(f) < 2 {
			f += "0"
		}
		frac, err = strconv.ParseInt(f, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid amount %q", major)
		}
	}

	minor := whole * 100
	if negative {
		minor -= frac
	} else {
		minor += frac
	}
	return minor, nil
}
