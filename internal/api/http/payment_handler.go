package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/service"
)

// PaymentHandler exposes the payment lifecycle over JSON.
type PaymentHandler struct {
	payments service.PaymentService
}

func NewPaymentHandler(payments service.PaymentService) *PaymentHandler {
	return &PaymentHandler{payments: payments}
}

func (h *PaymentHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.PaymentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.payments.CreatePayment(r.Context(), &req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *PaymentHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.payments.GetPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	result, err := h.payments.ConfirmPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	result, err := h.payments.CancelPayment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount *domain.Amount `json:"amount,omitempty"`
	}
	if r.ContentLength > 0 {
		if err := decodeBody(r, &body); err != nil {
			writeError(w, err)
			return
		}
	}

	result, err := h.payments.RefundPayment(r.Context(), mux.Vars(r)["id"], body.Amount)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *PaymentHandler) ListByLease(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	payments, total, err := h.payments.ListLeasePayments(r.Context(), mux.Vars(r)["leaseID"], page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
		"page":     page,
	})
}

func queryInt32(r *http.Request, name string, fallback int32) int32 {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return fallback
	}
	return int32(v)
}
