package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		if err := json.NewEncoder(w).Encode(body); err != nil {
			logger.Error("failed to encode response", "error", err)
		}
	}
}

// writeError maps the domain error taxonomy onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: ve.Error(), Code: ve.Code})
		return
	}

	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: nf.Error()})
		return
	}

	var sc *domain.StateConflictError
	if errors.As(err, &sc) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: sc.Error(), Code: "STATE_CONFLICT"})
		return
	}

	if errors.Is(err, domain.ErrVersionConflict) {
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error(), Code: "VERSION_CONFLICT"})
		return
	}

	if errors.Is(err, domain.ErrProviderUnavailable) {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error(), Code: "PROVIDER_UNAVAILABLE"})
		return
	}

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: pe.Error(), Code: pe.Code})
		return
	}

	logger.Error("unhandled error", "error", err)
	writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &domain.ValidationError{Field: "body", Code: "INVALID_JSON"}
	}
	return nil
}
