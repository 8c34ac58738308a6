package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/service"
)

type ScheduleHandler struct {
	recurring service.RecurringService
}

func NewScheduleHandler(recurring service.RecurringService) *ScheduleHandler {
	return &ScheduleHandler{recurring: recurring}
}

func (h *ScheduleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LeaseID       string               `json:"lease_id"`
		Amount        domain.Amount        `json:"amount"`
		Method        domain.PaymentMethod `json:"method"`
		Customer      domain.Customer      `json:"customer"`
		Frequency     domain.Frequency     `json:"frequency"`
		StartDate     time.Time            `json:"start_date"`
		EndDate       *time.Time           `json:"end_date,omitempty"`
		TotalPayments *int32               `json:"total_payments,omitempty"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	schedule, err := h.recurring.ScheduleRecurring(r.Context(), &domain.RecurringSchedule{
		LeaseID:       body.LeaseID,
		Amount:        body.Amount,
		Method:        body.Method,
		Customer:      body.Customer,
		Frequency:     body.Frequency,
		StartDate:     body.StartDate,
		EndDate:       body.EndDate,
		TotalPayments: body.TotalPayments,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, schedule)
}

func (h *ScheduleHandler) Get(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.recurring.GetSchedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}

func (h *ScheduleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.recurring.CancelSchedule(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, schedule)
}
