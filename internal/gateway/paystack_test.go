package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"propertypay-backend/internal/domain"
)

func momoRequest(reference string) *domain.PaymentRequest {
	return &domain.PaymentRequest{
		ID:        "pmt_1",
		Amount:    domain.NewAmount(50000, "GHS"),
		Method:    domain.PaymentMethodMobileMoney,
		Reference: reference,
		Customer:  domain.Customer{Email: "tenant@example.com", Phone: "0241234567"},
		MobileMoney: &domain.MobileMoneyDetails{
			Network: domain.MobileNetworkMTN,
			Phone:   "0241234567",
		},
	}
}

func paystackOK(t *testing.T, w http.ResponseWriter, tx paystackTransaction) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(paystackResponse{Status: true, Data: tx})
	assert.NoError(t, err)
}

func TestPaystackGateway_CreatePaymentIntent(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/charge", r.URL.Path)
			assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

			var charge paystackChargeRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&charge))
			assert.Equal(t, int64(50000), charge.Amount)
			assert.Equal(t, "REF-1", charge.Reference)
			assert.Equal(t, "mtn", charge.MobileMoney.Provider)

			paystackOK(t, w, paystackTransaction{
				ID: 42, Reference: "REF-1", Status: "pending",
				Amount: 50000, Currency: "GHS", Channel: "mobile_money",
			})
		}))
		defer srv.Close()

		gw := NewPaystackGateway(srv.URL, "sk_test", 5*time.Second)
		result, err := gw.CreatePaymentIntent(context.Background(), momoRequest("REF-1"))
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, result.Status)
		assert.Equal(t, int64(50000), result.Amount.Value)
		assert.Equal(t, "paystack", result.Provider)
	})

	t.Run("DuplicateReferenceReturnsExisting", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/charge":
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(paystackResponse{
					Status: false, Code: "duplicate_reference", Message: "Duplicate Transaction Reference",
				})
			case "/transaction/verify/REF-1":
				paystackOK(t, w, paystackTransaction{
					ID: 42, Reference: "REF-1", Status: "success",
					Amount: 50000, Currency: "GHS",
				})
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		gw := NewPaystackGateway(srv.URL, "sk_test", 5*time.Second)
		result, err := gw.CreatePaymentIntent(context.Background(), momoRequest("REF-1"))
		assert.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusSucceeded, result.Status)
		assert.Equal(t, "REF-1", result.Reference)
	})

	t.Run("RetriesOn5xxThenSucceeds", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			if calls == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			paystackOK(t, w, paystackTransaction{
				Reference: "REF-1", Status: "pending", Amount: 50000, Currency: "GHS",
			})
		}))
		defer srv.Close()

		gw := NewPaystackGateway(srv.URL, "sk_test", 5*time.Second)
		result, err := gw.CreatePaymentIntent(context.Background(), momoRequest("REF-1"))
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.Equal(t, domain.PaymentStatusPending, result.Status)
	})

	t.Run("ExhaustedRetriesSurfaceProviderUnavailable", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		gw := NewPaystackGateway(srv.URL, "sk_test", 5*time.Second)
		_, err := gw.CreatePaymentIntent(context.Background(), momoRequest("REF-1"))
		assert.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrProviderUnavailable))
		assert.Equal(t, maxAttempts, calls)
	})

	t.Run("FatalOn4xxWithoutRetry", func(t *testing.T) {
		calls := 0
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		gw := NewPaystackGateway(srv.URL, "sk_test", 5*time.Second)
		_, err := gw.CreatePaymentIntent(context.Background(), momoRequest("REF-1"))
		assert.Error(t, err)
		assert.False(t, domain.IsRetryable(err))
		assert.Equal(t, 1, calls)

		var pe *domain.ProviderError
		assert.True(t, errors.As(err, &pe))
		assert.Equal(t, "HTTP_401", pe.Code)
	})
}

func TestPaystackGateway_ConfirmPayment(t *testing.T) {
	t.Run("UnmappedStatusIsFatal", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			paystackOK(t, w, paystackTransaction{
				Reference: "REF-1", Status: "mystery", Amount: 50000, Currency: "GHS",
			})
		}))
		defer srv.Close()

		gw := NewPaystackGateway(srv.URL, "sk_test", 5*time.Second)
		_, err := gw.ConfirmPayment(context.Background(), "REF-1")
		assert.Error(t, err)

		var pe *domain.ProviderError
		assert.True(t, errors.As(err, &pe))
		assert.Equal(t, "UNMAPPED_STATUS", pe.Code)
		assert.False(t, pe.Retryable)
	})

	t.Run("MapsEveryDocumentedStatus", func(t *testing.T) {
		// The mapping table must be exhaustive over the provider's
		// documented status set and land only on canonical values.
		for native, canonical := range paystackStatusMap {
			assert.True(t, canonical.IsValid(), "status %q maps to invalid %q", native, canonical)
		}
		assert.Equal(t, domain.PaymentStatusSucceeded, paystackStatusMap["success"])
		assert.Equal(t, domain.PaymentStatusCancelled, paystackStatusMap["abandoned"])
		assert.Equal(t, domain.PaymentStatusFailed, paystackStatusMap["failed"])
		assert.Equal(t, domain.PaymentStatusPending, paystackStatusMap["pending"])
	})
}
