package genai

import (
	"context"
	"math/rand/v2"
	"time"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/metrics"
)

// RetryingClient retries retryable model failures with jittered exponential backoff.
// Callers still see one logical call.
type RetryingClient struct {
	next           Client
	provider       string
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	logger         logger.Logger
	sleep          func(ctx context.Context, d time.Duration) error
}

func NewRetryingClient(next Client, cfg Config, log logger.Logger) *RetryingClient {
	return &RetryingClient{
		next:           next,
		provider:       cfg.Provider,
		maxRetries:     cfg.MaxRetries,
		initialBackoff: cfg.InitialBackoff,
		maxBackoff:     cfg.MaxBackoff,
		logger:         log,
		sleep:          sleepContext,
	}
}

func (r *RetryingClient) Generate(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; ; attempt++ {
		text, err := r.next.Generate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if attempt >= r.maxRetries || ctx.Err() != nil || !apperrors.IsRetryable(err) {
			return "", lastErr
		}

		delay := r.backoff(attempt)
		r.logger.Warn("retrying model call", map[string]interface{}{
			"attempt":   attempt + 1,
			"delay":     delay.String(),
			"errorCode": string(apperrors.CodeOf(err)),
		})
		metrics.ModelRetries.WithLabelValues(r.provider).Inc()

		if err := r.sleep(ctx, delay); err != nil {
			return "", lastErr
		}
	}
}

// backoff returns an equal-jitter delay: half of the exponential step plus a random share of the other half.
func (r *RetryingClient) backoff(attempt int) time.Duration {
	step := r.initialBackoff << attempt
	if step <= 0 || (r.maxBackoff > 0 && step > r.maxBackoff) {
		step = r.maxBackoff
	}
	if step <= 0 {
		return 0
	}
	half := step / 2
	return half + rand.N(step-half+1)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
