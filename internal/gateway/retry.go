package gateway

import (
	"context"
	"fmt"
	"time"

	"propertypay-backend/internal/domain"
	"propertypay-backend/internal/logger"
)

const (
	maxAttempts    = 3
	initialBackoff = 200 * time.Millisecond
)

// withRetry runs call with bounded exponential backoff. Only retryable
// provider errors are retried; fatal errors surface immediately. When the
// budget is exhausted the last error is wrapped in ErrProviderUnavailable so
// callers can distinguish "provider down" from "request rejected".
func withRetry(ctx context.Context, provider, operation string, call func() error) error {
	backoff := initialBackoff
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		lastErr = call()
		if lastErr == nil {
			return nil
		}
		if !domain.IsRetryable(lastErr) {
			return lastErr
		}

		logger.Warn("Provider call failed, will retry",
			"provider", provider,
			"operation", operation,
			"attempt", attempt,
			"error", lastErr)

		if attempt == maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	return fmt.Errorf("%w: %s %s after %d attempts: %w",
		domain.ErrProviderUnavailable, provider, operation, maxAttempts, lastErr)
}
