// Package genai submits a prompt to an external generative model and returns its raw text.
package genai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	apperrors "trip-planner/internal/common/errors"
	commonhttp "trip-planner/internal/common/http"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/common/observability"
)

// ErrEmptyCompletion is the cause attached when the model answers with no text.
var ErrEmptyCompletion = errors.New("empty completion")

// Client is one blocking round trip to the model. Every failure is a StandardError
// with code MODEL_INVOCATION_FAILED or MODEL_TIMEOUT.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// New builds the provider client for cfg, wrapped with retries when cfg.MaxRetries > 0.
// obs may be nil.
func New(cfg Config, log logger.Logger, obs *observability.Observability) (Client, error) {
	if cfg.Model == "" {
		return nil, fmt.Errorf("genai: model is required")
	}
	log = log.With(map[string]interface{}{
		"provider": cfg.Provider,
		"model":    cfg.Model,
	})

	httpClient := commonhttp.NewClient(cfg.Timeout).HTTPClient()
	inst := &instrumentation{provider: cfg.Provider, model: cfg.Model, obs: obs}

	var client Client
	var err error
	switch cfg.Provider {
	case ProviderGemini, ProviderOpenAI:
		client = newOpenAIClient(cfg, httpClient, inst)
	case ProviderOllama:
		client, err = newOllamaClient(cfg, httpClient, inst)
	default:
		return nil, fmt.Errorf("genai: unknown provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	log.Info("model client created", map[string]interface{}{
		"baseUrl":    cfg.baseURL(),
		"timeout":    cfg.Timeout.String(),
		"maxRetries": cfg.MaxRetries,
	})

	if cfg.MaxRetries > 0 {
		client = NewRetryingClient(client, cfg, log)
	}
	return client, nil
}

// withTimeout bounds a single attempt.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// classifyError maps a provider failure onto the model error family.
// Status 401/403 and other 4xx except 408/429 are not retryable.
func classifyError(provider string, timeout time.Duration, statusCode int, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperrors.NewModelTimeoutError(provider, timeout)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperrors.NewModelTimeoutError(provider, timeout)
	}
	if errors.Is(err, context.Canceled) {
		return apperrors.NewModelInvocationError(provider, err, false)
	}

	if statusCode > 0 {
		retryable := statusCode >= 500 || statusCode == 408 || statusCode == 429
		return apperrors.NewModelInvocationError(provider, err, retryable).
			WithMetadata("statusCode", statusCode)
	}
	return apperrors.NewModelInvocationError(provider, err, true)
}

type instrumentation struct {
	provider string
	model    string
	obs      *observability.Observability
}

func (i *instrumentation) record(ctx context.Context, start time.Time, err error) {
	duration := time.Since(start)
	status := "success"
	if err != nil {
		status = string(apperrors.CodeOf(err))
	}
	metrics.ModelRequests.WithLabelValues(i.provider, i.model, status).Inc()
	metrics.ModelRequestDuration.WithLabelValues(i.provider, i.model).Observe(duration.Seconds())
	i.obs.RecordModelDuration(ctx, duration, i.provider)
}
