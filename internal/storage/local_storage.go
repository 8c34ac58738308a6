package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorageService stores attachments on the local filesystem. It stands in
// for a cloud object store in demos and tests; the URL shape matches what the
// attachment download handler serves.
type LocalStorageService struct {
	baseURL        string
	attachmentsDir string
}

func NewLocalStorageService(baseURL, uploadsDir string) (*LocalStorageService, error) {
	attachmentsDir := filepath.Join(uploadsDir, "attachments")
	if err := os.MkdirAll(attachmentsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create attachments directory: %w", err)
	}

	return &LocalStorageService{
		baseURL:        baseURL,
		attachmentsDir: attachmentsDir,
	}, nil
}

func (s *LocalStorageService) Upload(ctx context.Context, key string, contentType string, reader io.Reader) (string, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directories: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	if _, err := io.Copy(file, reader); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return fmt.Sprintf("%s/api/v1/attachments/%s", s.baseURL, key), nil
}

func (s *LocalStorageService) Open(key string) (io.ReadCloser, error) {
	fullPath, err := s.resolve(key)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	return file, nil
}

func (s *LocalStorageService) Delete(ctx context.Context, key string) error {
	fullPath, err := s.resolve(key)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// resolve maps a key onto the attachments directory, rejecting path escapes.
func (s *LocalStorageService) resolve(key string) (string, error) {
	cleaned := filepath.Clean(key)
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("invalid storage key: %s", key)
	}
	return filepath.Join(s.attachmentsDir, cleaned), nil
}
