package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/service"
	"propertypay-backend/internal/storage"
)

// DepositHandler exposes the security deposit ledger over JSON. Deduction
// evidence arrives as multipart uploads and is pushed through the storage
// collaborator before the deduction is recorded.
type DepositHandler struct {
	deposits    service.DepositService
	attachments storage.StorageInterface
	maxFileSize int64
}

func NewDepositHandler(deposits service.DepositService, attachments storage.StorageInterface, maxFileSizeMB int64) *DepositHandler {
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = 10
	}
	return &DepositHandler{
		deposits:    deposits,
		attachments: attachments,
		maxFileSize: maxFileSizeMB << 20,
	}
}

func (h *DepositHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LeaseID      string    `json:"lease_id"`
		TenantID     string    `json:"tenant_id"`
		Amount       int64     `json:"amount"`
		Currency     string    `json:"currency"`
		InterestRate float64   `json:"interest_rate"`
		ReceivedAt   time.Time `json:"received_at"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}

	deposit, err := h.deposits.CreateDeposit(r.Context(), &domain.SecurityDeposit{
		LeaseID:      body.LeaseID,
		TenantID:     body.TenantID,
		Amount:       body.Amount,
		Currency:     body.Currency,
		InterestRate: body.InterestRate,
		ReceivedAt:   body.ReceivedAt,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, deposit)
}

func (h *DepositHandler) Get(w http.ResponseWriter, r *http.Request) {
	deposit, err := h.deposits.GetDeposit(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deposit)
}

func (h *DepositHandler) RecalculateInterest(w http.ResponseWriter, r *http.Request) {
	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, &domain.ValidationError{Field: "as_of", Code: "INVALID_TIMESTAMP"})
			return
		}
		asOf = parsed
	}

	deposit, err := h.deposits.RecalculateInterest(r.Context(), mux.Vars(r)["id"], asOf)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deposit)
}

// AddDeduction accepts multipart form data: a "reason" field, an "amount"
// field in minor units, and zero or more "attachments" files.
func (h *DepositHandler) AddDeduction(w http.ResponseWriter, r *http.Request) {
	depositID := mux.Vars(r)["id"]

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		writeError(w, &domain.ValidationError{Field: "body", Code: "INVALID_MULTIPART"})
		return
	}

	reason := r.FormValue("reason")
	amount, err := formInt64(r, "amount")
	if err != nil {
		writeError(w, err)
		return
	}

	var urls []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["attachments"] {
			if header.Size > h.maxFileSize {
				writeError(w, &domain.ValidationError{Field: "attachments", Code: "FILE_TOO_LARGE"})
				return
			}
			file, err := header.Open()
			if err != nil {
				writeError(w, fmt.Errorf("failed to open attachment: %w", err))
				return
			}

			key := fmt.Sprintf("%s/%s%s", depositID, uuid.New().String(), filepath.Ext(header.Filename))
			url, err := h.attachments.Upload(r.Context(), key, header.Header.Get("Content-Type"), file)
			file.Close()
			if err != nil {
				writeError(w, fmt.Errorf("failed to store attachment: %w", err))
				return
			}
			urls = append(urls, url)
		}
	}

	deposit, err := h.deposits.AddDeduction(r.Context(), depositID, reason, amount, urls)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deposit)
}

func (h *DepositHandler) Refund(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount int64                `json:"amount"`
		Method domain.PaymentMethod `json:"method"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeError(w, err)
		return
	}
	if body.Method == "" {
		body.Method = domain.PaymentMethodBankTransfer
	}

	deposit, err := h.deposits.RefundDeposit(r.Context(), mux.Vars(r)["id"], body.Amount, body.Method)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, deposit)
}

func formInt64(r *http.Request, name string) (int64, error) {
	v, err := strconv.ParseInt(r.FormValue(name), 10, 64)
	if err != nil {
		return 0, &domain.ValidationError{Field: name, Code: "INVALID_AMOUNT_FORMAT"}
	}
	return v, nil
}
