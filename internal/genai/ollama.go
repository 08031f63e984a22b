package genai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	apperrors "trip-planner/internal/common/errors"
)

// ollamaClient uses the native Ollama chat API for locally hosted models.
type ollamaClient struct {
	client      *api.Client
	model       string
	timeout     time.Duration
	temperature float32
	maxTokens   int
	inst        *instrumentation
}

func newOllamaClient(cfg Config, httpClient *http.Client, inst *instrumentation) (*ollamaClient, error) {
	base := strings.TrimSuffix(cfg.baseURL(), "/v1")
	base = strings.TrimSuffix(base, "/")

	parsed, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("genai: invalid ollama base url %q: %w", base, err)
	}

	return &ollamaClient{
		client:      api.NewClient(parsed, httpClient),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		inst:        inst,
	}, nil
}

func (c *ollamaClient) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { c.inst.record(ctx, start, err) }()

	callCtx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	stream := false
	req := &api.ChatRequest{
		Model:    c.model,
		Messages: []api.Message{{Role: "user", Content: prompt}},
		Stream:   &stream,
		Options: map[string]interface{}{
			"temperature": c.temperature,
			"num_predict": c.maxTokens,
		},
	}

	var content strings.Builder
	err = c.client.Chat(callCtx, req, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		statusCode := 0
		var statusErr api.StatusError
		if errors.As(err, &statusErr) {
			statusCode = statusErr.StatusCode
		}
		return "", classifyError(ProviderOllama, c.timeout, statusCode, err)
	}

	if strings.TrimSpace(content.String()) == "" {
		return "", apperrors.NewModelInvocationError(ProviderOllama, ErrEmptyCompletion, true)
	}
	return content.String(), nil
}
