package assistant

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// SanitizeJSONResponse strips whitespace and markdown code fences models
// sometimes wrap JSON in.
func SanitizeJSONResponse(b []byte) []byte {
	s := strings.TrimSpace(string(b))
	originalLen := len(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	slog.Debug("sanitized response", "original_length", originalLen, "final_length", len(s))
	return []byte(s)
}

// retryable executes call with exponential backoff. It gives up early when
// ctx is done.
func retryable(ctx context.Context, call func() error, max int, backoff time.Duration, log *slog.Logger) error {
	if max <= 0 {
		return call() // no retry
	}

	delay := backoff
	for i := 0; ; i++ {
		err := call()
		if err == nil {
			if i > 0 {
				log.Debug("attempt succeeded", "attempt", i+1)
			}
			return nil
		}
		if i == max {
			log.Debug("final attempt failed", "attempt", i+1, "error", err)
			return err
		}
		log.Debug("attempt failed, retrying", "attempt", i+1, "error", err, "delay", delay)

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
		delay *= 2
	}
}
