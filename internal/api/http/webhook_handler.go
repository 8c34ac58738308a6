package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"propertypay-backend/internal/gateway"
	"propertypay-backend/internal/logger"
	"propertypay-backend/internal/service"
)

// WebhookHandler receives provider status callbacks and feeds them through
// the reconciler. Repeated terminal callbacks answer 200 without a write.
type WebhookHandler struct {
	payments service.PaymentService
}

func NewWebhookHandler(payments service.PaymentService) *WebhookHandler {
	return &WebhookHandler{payments: payments}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]

	var body struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	status, err := gateway.StatusFromWebhook(provider, body.Status)
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.payments.ApplyProviderStatus(r.Context(), body.Reference, status)
	if err != nil {
		writeError(w, err)
		return
	}

	logger.Info("webhook processed",
		"provider", provider,
		"reference", body.Reference,
		"status", result.Status)
	writeJSON(w, http.StatusOK, map[string]string{"status": string(result.Status)})
}
