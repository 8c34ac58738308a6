package http

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"propertypay-backend/internal/storage"
)

// AttachmentHandler serves deduction evidence stored through the local
// storage backend. A cloud backend would serve objects directly instead.
type AttachmentHandler struct {
	store storage.StorageInterface
}

func NewAttachmentHandler(store storage.StorageInterface) *AttachmentHandler {
	return &AttachmentHandler{store: store}
}

func (h *AttachmentHandler) Download(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["depositID"] + "/" + vars["file"]

	file, err := h.store.Open(key)
	if err != nil {
		http.Error(w, "file not found", http.StatusNotFound)
		return
	}
	defer file.Close()

	contentType := "application/octet-stream"
	switch filepath.Ext(key) {
	case ".jpg", ".jpeg":
		contentType = "image/jpeg"
	case ".png":
		contentType = "image/png"
	case ".pdf":
		contentType = "application/pdf"
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", "private, max-age=3600")
	io.Copy(w, file)
}
