package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
)

const paystackProviderName = "paystack"

// paystackStatusMap is the exhaustive mapping from Paystack's documented
// transaction statuses onto the canonical enum. Anything outside this table
// is rejected as a fatal provider error (see mapProviderStatus).
var paystackStatusMap = map[string]domain.PaymentStatus{
	"pending":    domain.PaymentStatusPending,
	"ongoing":    domain.PaymentStatusPending,
	"processing": domain.PaymentStatusPending,
	"queued":     domain.PaymentStatusPending,
	"success":    domain.PaymentStatusSucceeded,
	"failed":     domain.PaymentStatusFailed,
	"abandoned":  domain.PaymentStatusCancelled,
	"reversed":   domain.PaymentStatusCancelled,
}

// PaystackGateway charges mobile money, card, QR and USSD through a
// Paystack-style aggregator API. Amounts are sent in subunits (pesewas),
// which match our internal minor units one-to-one for GHS.
type PaystackGateway struct {
	baseURL   string
	secretKey string
	client    *http.Client
}

func NewPaystackGateway(baseURL, secretKey string, timeout time.Duration) *PaystackGateway {
	return &PaystackGateway{
		baseURL:   baseURL,
		secretKey: secretKey,
		client:    &http.Client{Timeout: timeout},
	}
}

func (g *PaystackGateway) Name() string { return paystackProviderName }

type paystackMobileMoney struct {
	Phone    string `json:"phone"`
	Provider string `json:"provider"`
}

type paystackCard struct {
	Number      string `json:"number"`
	CVV         string `json:"cvv"`
	ExpiryMonth string `json:"expiry_month"`
	ExpiryYear  string `json:"expiry_year"`
}

type paystackChargeRequest struct {
	Amount      int64                `json:"amount"`
	Currency    string               `json:"currency"`
	Email       string               `json:"email"`
	Reference   string               `json:"reference"`
	Channel     string               `json:"channel,omitempty"`
	MobileMoney *paystackMobileMoney `json:"mobile_money,omitempty"`
	Card        *paystackCard        `json:"card,omitempty"`
	Metadata    map[string]string    `json:"metadata,omitempty"`
}

type paystackTransaction struct {
	ID        int64             `json:"id"`
	Reference string            `json:"reference"`
	Status    string            `json:"status"`
	Amount    int64             `json:"amount"`
	Currency  string            `json:"currency"`
	Channel   string            `json:"channel"`
	Metadata  map[string]string `json:"metadata"`
	CreatedAt time.Time         `json:"created_at"`
	PaidAt    *time.Time        `json:"paid_at"`
}

type paystackResponse struct {
	Status  bool                `json:"status"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Data    paystackTransaction `json:"data"`
}

var errDuplicateReference = errors.New("duplicate transaction reference")

func (g *PaystackGateway) CreatePaymentIntent(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error) {
	charge := paystackChargeRequest{
		Amount:    req.Amount.Value,
		Currency:  req.Amount.Currency,
		Email:     req.Customer.Email,
		Reference: req.Reference,
		Metadata:  map[string]string{"payment_id": req.ID, "description": req.Description},
	}

	switch req.Method {
	case domain.PaymentMethodMobileMoney:
		charge.Channel = "mobile_money"
		charge.MobileMoney = &paystackMobileMoney{
			Phone:    req.MobileMoney.Phone,
			Provider: paystackNetworkCode(req.MobileMoney.Network),
		}
	case domain.PaymentMethodCard:
		charge.Channel = "card"
		charge.Card = &paystackCard{
			Number:      req.Card.Number,
			CVV:         req.Card.CVV,
			ExpiryMonth: fmt.Sprintf("%02d", req.Card.ExpiryMonth),
			ExpiryYear:  fmt.Sprintf("%d", req.Card.ExpiryYear),
		}
	case domain.PaymentMethodQR:
		charge.Channel = "qr"
	case domain.PaymentMethodUSSD:
		charge.Channel = "ussd"
	default:
		return nil, &domain.ValidationError{Field: "method", Code: "UNSUPPORTED_METHOD"}
	}

	var resp paystackResponse
	err := withRetry(ctx, paystackProviderName, "CreatePaymentIntent", func() error {
		return g.do(ctx, http.MethodPost, "/charge", charge, &resp)
	})
	if errors.Is(err, errDuplicateReference) {
		// The reference has already been charged. Return the existing
		// intent instead of creating a second one.
		logger.Info("Duplicate reference on charge, fetching existing intent",
			"provider", paystackProviderName, "reference", req.Reference)
		return g.GetPayment(ctx, req.Reference)
	}
	if err != nil {
		return nil, err
	}

	return g.toResult(&resp.Data)
}

func (g *PaystackGateway) ConfirmPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	return g.verify(ctx, providerID, "ConfirmPayment")
}

func (g *PaystackGateway) GetPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	return g.verify(ctx, providerID, "GetPayment")
}

func (g *PaystackGateway) verify(ctx context.Context, reference, operation string) (*domain.PaymentResult, error) {
	var resp paystackResponse
	err := withRetry(ctx, paystackProviderName, operation, func() error {
		return g.do(ctx, http.MethodGet, "/transaction/verify/"+reference, nil, &resp)
	})
	if err != nil {
		return nil, err
	}
	return g.toResult(&resp.Data)
}

func (g *PaystackGateway) CancelPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error) {
	body := map[string]string{"reference": providerID}
	var resp paystackResponse
	err := withRetry(ctx, paystackProviderName, "CancelPayment", func() error {
		return g.do(ctx, http.MethodPost, "/charge/cancel", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	return g.toResult(&resp.Data)
}

func (g *PaystackGateway) RefundPayment(ctx context.Context, providerID string, amount *domain.Amount) (*domain.PaymentResult, error) {
	body := map[string]interface{}{"transaction": providerID}
	if amount != nil {
		body["amount"] = amount.Value
	}
	var resp paystackResponse
	err := withRetry(ctx, paystackProviderName, "RefundPayment", func() error {
		return g.do(ctx, http.MethodPost, "/refund", body, &resp)
	})
	if err != nil {
		return nil, err
	}
	return g.toResult(&resp.Data)
}

// do executes one HTTP round trip against the aggregator and decodes the
// envelope. Transport failures and HTTP statuses are classified into the
// retryable/fatal provider error taxonomy.
func (g *PaystackGateway) do(ctx context.Context, method, path string, body, out interface{}) error {
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
	req.Header.Set("Authorization", "Bearer "+g.secretKey)
	req.Header.Set("Content-Type", "application/json")

	logger.GatewayCall(paystackProviderName, method, path)
	resp, err := g.client.Do(req)
	if err != nil {
		return classifyTransportError(paystackProviderName, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return classifyTransportError(paystackProviderName, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope paystackResponse
		if json.Unmarshal(raw, &envelope) == nil && envelope.Code == "duplicate_reference" {
			return errDuplicateReference
		}
		return classifyHTTPStatus(paystackProviderName, resp.StatusCode, string(raw))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.ProviderError{
			Provider:  paystackProviderName,
			Code:      "MALFORMED_RESPONSE",
			Message:   err.Error(),
			Retryable: false,
		}
	}
	return nil
}

// toResult normalizes a provider transaction into the canonical model.
func (g *PaystackGateway) toResult(tx *paystackTransaction) (*domain.PaymentResult, error) {
	status, err := mapProviderStatus(paystackProviderName, paystackStatusMap, tx.Status)
	if err != nil {
		return nil, err
	}

	updatedAt := tx.CreatedAt
	if tx.PaidAt != nil {
		updatedAt = *tx.PaidAt
	}

	metadata := map[string]string{"channel": tx.Channel, "provider_id": fmt.Sprintf("%d", tx.ID)}
	for k, v := range tx.Metadata {
		metadata[k] = v
	}

	return &domain.PaymentResult{
		Reference: tx.Reference,
		Status:    status,
		Amount:    domain.NewAmount(tx.Amount, tx.Currency),
		Provider:  paystackProviderName,
		Metadata:  metadata,
		CreatedAt: tx.CreatedAt,
		UpdatedAt: updatedAt,
	}, nil
}

func paystackNetworkCode(network domain.MobileNetwork) string {
	switch network {
	case domain.MobileNetworkMTN:
		return "mtn"
	case domain.MobileNetworkVodafone:
		return "vod"
	case domain.MobileNetworkAirtelTigo:
		return "atl"
	}
	return ""
}
