// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"context"
	"fmt"
	"math"
	"time"
)

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

const defaultMaxRetries = 3

// Retrying wraps a backend with bounded exponential backoff. Transient
// failures (unavailable, transport) are retried; authentication failures
// and context cancellation are returned immediately.
type Retrying struct {
	Backend    Client
	MaxRetries int
}

// Complete calls the backend, retrying transient failures with delays of
// backoffBase, 2x, 4x, ... up to MaxRetries additional attempts.
func (r *Retrying) Complete(ctx context.Context, req Request) (string, error) {
	maxRetries := r.MaxRetries
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := r.Backend.Complete(ctx, req)
		if err == nil {
			return text, nil
		}
		if !retryable(err) {
			return "", err
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}

// retryable reports whether a failure is worth another attempt.
func retryable(err error) bool {
	switch KindOf(err) {
	case KindUnavailable, KindTransportFailed:
		return true
	default:
		return false
	}
}
