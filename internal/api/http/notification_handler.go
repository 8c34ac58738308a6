package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/service"
)

type NotificationHandler struct {
	notes service.NotificationService
}

func NewNotificationHandler(notes service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, &domain.ValidationError{Field: "tenant_id", Code: "TENANT_REQUIRED"})
		return
	}

	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	notes, total, err := h.notes.GetNotifications(r.Context(), tenantID, page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"notifications": notes,
		"total":         total,
		"page":          page,
	})
}

func (h *NotificationHandler) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	tenantID := r.URL.Query().Get("tenant_id")
	if tenantID == "" {
		writeError(w, &domain.ValidationError{Field: "tenant_id", Code: "TENANT_REQUIRED"})
		return
	}

	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		writeError(w, &domain.ValidationError{Field: "id", Code: "INVALID_ID"})
		return
	}

	if err := h.notes.MarkAsRead(r.Context(), tenantID, int32(id)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
