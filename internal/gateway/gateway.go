package gateway

import (
	"context"
	"errors"
	"fmt"
	"net"

	"propertypay-backend/internal/domain"
)

// PaymentGateway is the contract every provider adapter implements. Adapters
// translate the canonical request into provider calls and normalize provider
// responses back into canonical PaymentResults.
//
// CreatePaymentIntent must treat a duplicate reference as "return the
// existing intent", never as a second charge; the reference is the
// idempotency key.
type PaymentGateway interface {
	CreatePaymentIntent(ctx context.Context, req *domain.PaymentRequest) (*domain.PaymentResult, error)
	ConfirmPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error)
	CancelPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error)
	GetPayment(ctx context.Context, providerID string) (*domain.PaymentResult, error)
	RefundPayment(ctx context.Context, providerID string, amount *domain.Amount) (*domain.PaymentResult, error)
	Name() string
}

// Registry routes each payment method to the adapter that serves it.
type Registry struct {
	byMethod map[domain.PaymentMethod]PaymentGateway
}

func NewRegistry() *Registry {
	return &Registry{byMethod: make(map[domain.PaymentMethod]PaymentGateway)}
}

func (r *Registry) Register(method domain.PaymentMethod, gw PaymentGateway) {
	r.byMethod[method] = gw
}

func (r *Registry) ForMethod(method domain.PaymentMethod) (PaymentGateway, error) {
	gw, ok := r.byMethod[method]
	if !ok {
		return nil, &domain.ValidationError{Field: "method", Code: "UNSUPPORTED_METHOD"}
	}
	return gw, nil
}

// classifyHTTPStatus turns a provider HTTP status into a typed ProviderError.
// 5xx is worth retrying; 4xx means the request itself is wrong and a retry
// would only repeat the rejection.
func classifyHTTPStatus(provider string, status int, body string) error {
	if status >= 500 {
		return &domain.ProviderError{
			Provider:  provider,
			Code:      fmt.Sprintf("HTTP_%d", status),
			Message:   body,
			Retryable: true,
		}
	}
	return &domain.ProviderError{
		Provider:  provider,
		Code:      fmt.Sprintf("HTTP_%d", status),
		Message:   body,
		Retryable: false,
	}
}

// classifyTransportError wraps network-level failures. Timeouts and dropped
// connections are retryable; caller cancellation is passed through untouched.
func classifyTransportError(provider string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.ProviderError{
			Provider:  provider,
			Code:      "TIMEOUT",
			Message:   err.Error(),
			Retryable: true,
		}
	}
	return &domain.ProviderError{
		Provider:  provider,
		Code:      "NETWORK",
		Message:   err.Error(),
		Retryable: true,
	}
}

// StatusFromWebhook resolves a provider-native status reported on a webhook
// callback through the same mapping tables the adapters use for polling.
func StatusFromWebhook(provider, native string) (domain.PaymentStatus, error) {
	switch provider {
	case paystackProviderName:
		return mapProviderStatus(provider, paystackStatusMap, native)
	case bankProviderName:
		return mapProviderStatus(provider, bankStatusMap, native)
	default:
		return "", &domain.ProviderError{
			Provider:  provider,
			Code:      "UNKNOWN_PROVIDER",
			Message:   fmt.Sprintf("no adapter registered for provider %q", provider),
			Retryable: false,
		}
	}
}

// mapProviderStatus resolves a provider-native status through the adapter's
// mapping table. Unmapped values are a fatal provider error, never silently
// coerced onto the canonical enum.
func mapProviderStatus(provider string, table map[string]domain.PaymentStatus, native string) (domain.PaymentStatus, error) {
	status, ok := table[native]
	if !ok {
		return "", &domain.ProviderError{
			Provider:  provider,
			Code:      "UNMAPPED_STATUS",
			Message:   fmt.Sprintf("provider returned unknown status %q", native),
			Retryable: false,
		}
	}
	return status, nil
}
