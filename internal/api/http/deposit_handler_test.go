package http

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"propertypay-backend/internal/domain"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockDepositService struct {
	mock.Mock
}

func (m *mockDepositService) CreateDeposit(ctx context.Context, deposit *domain.SecurityDeposit) (*domain.SecurityDeposit, error) {
	args := m.Called(ctx, deposit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDeposit), args.Error(1)
}
func (m *mockDepositService) GetDeposit(ctx context.Context, depositID string) (*domain.SecurityDeposit, error) {
	args := m.Called(ctx, depositID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDeposit), args.Error(1)
}
func (m *mockDepositService) RecalculateInterest(ctx context.Context, depositID string, asOf time.Time) (*domain.SecurityDeposit, error) {
	args := m.Called(ctx, depositID, asOf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDeposit), args.Error(1)
}
func (m *mockDepositService) AddDeduction(ctx context.Context, depositID, reason string, amount int64, attachmentURLs []string) (*domain.SecurityDeposit, error) {
	args := m.Called(ctx, depositID, reason, amount, attachmentURLs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDeposit), args.Error(1)
}
func (m *mockDepositService) RefundDeposit(ctx context.Context, depositID string, amount int64, method domain.PaymentMethod) (*domain.SecurityDeposit, error) {
	args := m.Called(ctx, depositID, amount, method)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SecurityDeposit), args.Error(1)
}

func deductionRequest(t *testing.T, reason, amount string) *http.Request {
	var buf bytes.Buffer
	form := multipart.NewWriter(&buf)
	assert.NoError(t, form.WriteField("reason", reason))
	assert.NoError(t, form.WriteField("amount", amount))
	assert.NoError(t, form.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits/dep-1/deductions", &buf)
	req.Header.Set("Content-Type", form.FormDataContentType())
	return mux.SetURLVars(req, map[string]string{"id": "dep-1"})
}

func TestDepositHandler_AddDeduction(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(mockDepositService)
		handler := NewDepositHandler(svc, nil, 10)

		svc.On("AddDeduction", mock.Anything, "dep-1", "broken window", int64(12000), []string(nil)).
			Return(&domain.SecurityDeposit{ID: "dep-1"}, nil)

		rec := httptest.NewRecorder()
		handler.AddDeduction(rec, deductionRequest(t, "broken window", "12000"))

		assert.Equal(t, http.StatusOK, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("MalformedAmountRejected", func(t *testing.T) {
		svc := new(mockDepositService)
		handler := NewDepositHandler(svc, nil, 10)

		rec := httptest.NewRecorder()
		handler.AddDeduction(rec, deductionRequest(t, "broken window", "12x00"))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp errorResponse
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "INVALID_AMOUNT_FORMAT", resp.Code)
		svc.AssertNotCalled(t, "AddDeduction")
	})

	t.Run("MissingAmountRejected", func(t *testing.T) {
		svc := new(mockDepositService)
		handler := NewDepositHandler(svc, nil, 10)

		var buf bytes.Buffer
		form := multipart.NewWriter(&buf)
		assert.NoError(t, form.WriteField("reason", "broken window"))
		assert.NoError(t, form.Close())
		req := httptest.NewRequest(http.MethodPost, "/api/v1/deposits/dep-1/deductions", &buf)
		req.Header.Set("Content-Type", form.FormDataContentType())

		rec := httptest.NewRecorder()
		handler.AddDeduction(rec, mux.SetURLVars(req, map[string]string{"id": "dep-1"}))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "AddDeduction")
	})
}
