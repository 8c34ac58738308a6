package storage

import (
	"context"
	"io"
)

// StorageInterface is the object-storage collaborator for deduction evidence.
// Implementations return a stable URL for the stored object; only that URL is
// persisted on the ledger side.
type StorageInterface interface {
	// Upload stores the object under key and returns its public URL.
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (string, error)

	// Open reads a stored object back, used by the attachment download handler.
	Open(key string) (io.ReadCloser, error)

	// Delete removes an object. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
}
