package genai

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	apperrors "trip-planner/internal/common/errors"
)

// openAIClient talks to any OpenAI-compatible chat completions endpoint, Gemini included.
type openAIClient struct {
	client      *openai.Client
	provider    string
	model       string
	timeout     time.Duration
	temperature float32
	maxTokens   int
	inst        *instrumentation
}

func newOpenAIClient(cfg Config, httpClient *http.Client, inst *instrumentation) *openAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = cfg.baseURL()
	clientConfig.HTTPClient = httpClient

	return &openAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		provider:    cfg.Provider,
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		inst:        inst,
	}
}

func (c *openAIClient) Generate(ctx context.Context, prompt string) (text string, err error) {
	start := time.Now()
	defer func() { c.inst.record(ctx, start, err) }()

	callCtx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	})
	if err != nil {
		return "", classifyError(c.provider, c.timeout, openAIStatusCode(err), err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", apperrors.NewModelInvocationError(c.provider, ErrEmptyCompletion, true)
	}
	return resp.Choices[0].Message.Content, nil
}

func openAIStatusCode(err error) int {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}
