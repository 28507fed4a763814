package persistence

import (
	"context"
	"time"
)

// Retry runs fn up to maxAttempts times with linear backoff. It is meant for
// idempotent reads against the backend; the context deadline still bounds the
// whole sequence. A nil error or a context error stops the loop immediately.
func Retry(ctx context.Context, maxAttempts int, backoff time.Duration, fn func(context.Context) error) error {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = fn(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if attempt == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}
	return err
}
