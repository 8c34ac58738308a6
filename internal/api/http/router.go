package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"propertypay-backend/internal/security"
	"propertypay-backend/internal/service"
	"propertypay-backend/internal/storage"
)

// RouterConfig carries everything the API surface needs.
type RouterConfig struct {
	Payments      service.PaymentService
	Deposits      service.DepositService
	Recurring     service.RecurringService
	Notifications service.NotificationService
	Attachments   storage.StorageInterface
	Tokens        security.TokenManager
	MaxFileSizeMB int64
}

// NewRouter builds the full route table. All /api/v1 routes sit behind the
// bearer-token middleware except the provider webhook, which authenticates
// by provider signature at the gateway edge instead.
func NewRouter(cfg RouterConfig) *mux.Router {
	root := mux.NewRouter()
	root.Use(LoggingMiddleware)

	root.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	webhooks := NewWebhookHandler(cfg.Payments)
	root.HandleFunc("/api/v1/webhooks/{provider}", webhooks.Handle).Methods("POST")

	api := root.PathPrefix("/api/v1").Subrouter()
	api.Use(AuthMiddleware(cfg.Tokens))

	payments := NewPaymentHandler(cfg.Payments)
	api.HandleFunc("/payments", payments.Create).Methods("POST")
	api.HandleFunc("/payments/{id}", payments.Get).Methods("GET")
	api.HandleFunc("/payments/{id}/confirm", payments.Confirm).Methods("POST")
	api.HandleFunc("/payments/{id}/cancel", payments.Cancel).Methods("POST")
	api.HandleFunc("/payments/{id}/refund", payments.Refund).Methods("POST")
	api.HandleFunc("/leases/{leaseID}/payments", payments.ListByLease).Methods("GET")

	deposits := NewDepositHandler(cfg.Deposits, cfg.Attachments, cfg.MaxFileSizeMB)
	api.HandleFunc("/deposits", deposits.Create).Methods("POST")
	api.HandleFunc("/deposits/{id}", deposits.Get).Methods("GET")
	api.HandleFunc("/deposits/{id}/interest/recalculate", deposits.RecalculateInterest).Methods("POST")
	api.HandleFunc("/deposits/{id}/deductions", deposits.AddDeduction).Methods("POST")
	api.HandleFunc("/deposits/{id}/refund", deposits.Refund).Methods("POST")

	schedules := NewScheduleHandler(cfg.Recurring)
	api.HandleFunc("/schedules", schedules.Create).Methods("POST")
	api.HandleFunc("/schedules/{id}", schedules.Get).Methods("GET")
	api.HandleFunc("/schedules/{id}", schedules.Cancel).Methods("DELETE")

	notes := NewNotificationHandler(cfg.Notifications)
	api.HandleFunc("/notifications", notes.List).Methods("GET")
	api.HandleFunc("/notifications/{id}/read", notes.MarkAsRead).Methods("POST")

	attachments := NewAttachmentHandler(cfg.Attachments)
	api.HandleFunc("/attachments/{depositID}/{file}", attachments.Download).Methods("GET")

	return root
}
