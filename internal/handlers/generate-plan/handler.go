// internal/handlers/generate-plan/handler.go
package generateplan

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/common/observability"
	"trip-planner/internal/genai"
	"trip-planner/internal/normalize"
	"trip-planner/internal/transport"
)

const (
	Route = "/api/generate-plan"

	// ResultTokenHeader carries the store token when results are also kept server-side.
	ResultTokenHeader     = "X-Result-Token"
	// ResultsLocationHeader carries the results view URL for this plan.
	ResultsLocationHeader = "X-Results-Location"
)

type PromptBuilder interface {
	Build(userPrompt string) (string, error)
}

type ResultStore interface {
	Save(ctx context.Context, result *Output) (string, error)
}

type Handler struct {
	config  *Config
	builder PromptBuilder
	client  genai.Client
	store   ResultStore
	codec   *transport.Codec
	errors  *apperrors.ErrorHandler
	logger  logger.Logger
	obs     *observability.Observability
}

// NewHandler wires the plan pipeline. store and obs may be nil.
func NewHandler(config *Config, builder PromptBuilder, client genai.Client, store ResultStore, log logger.Logger, obs *observability.Observability) *Handler {
	log = log.With(map[string]interface{}{
		"handler": "generate-plan",
	})
	return &Handler{
		config:  config,
		builder: builder,
		client:  client,
		store:   store,
		codec:   transport.NewCodec(),
		errors:  apperrors.NewErrorHandler(log),
		logger:  log,
		obs:     obs,
	}
}

func (h *Handler) Handle(c *gin.Context) {
	start := time.Now()
	requestID := c.GetString("requestId")

	var input Input
	if err := c.ShouldBindJSON(&input); err != nil {
		h.fail(c, start, apperrors.NewMissingPromptError(fmt.Sprintf("invalid body: %v", err)))
		return
	}
	if strings.TrimSpace(input.UserPrompt) == "" {
		h.fail(c, start, apperrors.NewMissingPromptError("userPrompt is empty"))
		return
	}

	h.logger.Info("generating plan", map[string]interface{}{
		"requestId":    requestID,
		"promptLength": len([]rune(input.UserPrompt)),
	})

	// the model call is not tied to the client connection
	ctx := context.WithoutCancel(c.Request.Context())

	output, err := h.Execute(ctx, input.UserPrompt)
	if err != nil {
		h.fail(c, start, apperrors.NewPlanGenerationError(err))
		return
	}

	var token string
	if h.store != nil {
		if token, err = h.saveResult(ctx, output); err != nil {
			h.logger.Warn("result store save failed", map[string]interface{}{
				"requestId": requestID,
				"error":     err,
			})
			token = ""
		} else {
			c.Header(ResultTokenHeader, token)
		}
	}
	h.setResultsLocation(c, output, token)

	h.recordOutcome(ctx, start, "success", "")
	metrics.PlanRecommendations.Observe(float64(len(output.Recommendations)))
	h.logger.Info("plan generated", map[string]interface{}{
		"requestId":       requestID,
		"recommendations": len(output.Recommendations),
		"durationMs":      time.Since(start).Milliseconds(),
	})

	c.JSON(http.StatusOK, output)
}

// Execute runs builder, model and normalizer in order under the configured timeout.
// Panics inside the pipeline are returned as INTERNAL_ERROR.
func (h *Handler) Execute(ctx context.Context, userPrompt string) (output *Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			output = nil
			err = apperrors.NewInternalError(fmt.Errorf("panic in plan pipeline: %v", r))
		}
	}()

	if h.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.Timeout)
		defer cancel()
	}

	ctx, span := h.obs.StartSpan(ctx, "plan.generate")
	defer span.End()

	prompt, err := h.builder.Build(userPrompt)
	if err != nil {
		span.SetStatus(codes.Error, "build prompt")
		return nil, err
	}

	raw, err := h.client.Generate(ctx, prompt)
	if err != nil {
		span.SetStatus(codes.Error, "model invocation")
		return nil, err
	}

	output, err = normalize.Normalize(raw)
	if err != nil {
		span.SetStatus(codes.Error, "normalize")
		return nil, err
	}

	span.SetAttributes(attribute.Int("plan.recommendations", len(output.Recommendations)))
	return output, nil
}

// setResultsLocation points the caller at the results view: by token when the store kept
// the result, otherwise with the whole plan in the data parameter.
func (h *Handler) setResultsLocation(c *gin.Context, output *Output, token string) {
	if h.config.ResultsPath == "" {
		return
	}
	if token != "" {
		c.Header(ResultsLocationHeader, h.config.ResultsPath+"?"+transport.TokenParam+"="+url.QueryEscape(token))
		return
	}
	location, err := h.codec.ResultsURL(h.config.ResultsPath, output)
	if err != nil {
		h.logger.Warn("results location encode failed", map[string]interface{}{"error": err})
		return
	}
	c.Header(ResultsLocationHeader, location)
}

func (h *Handler) saveResult(ctx context.Context, output *Output) (string, error) {
	if h.config.StoreTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.config.StoreTimeout)
		defer cancel()
	}
	return h.store.Save(ctx, output)
}

func (h *Handler) fail(c *gin.Context, start time.Time, err *apperrors.StandardError) {
	code := err.Code
	if cause := err.Unwrap(); cause != nil {
		code = apperrors.CodeOf(cause)
	}
	h.recordOutcome(c.Request.Context(), start, outcomeFor(err.Code), string(code))
	h.errors.HandleHTTPError(c, err)
}

func (h *Handler) recordOutcome(ctx context.Context, start time.Time, outcome, code string) {
	duration := time.Since(start)
	metrics.PlansGenerated.WithLabelValues(outcome, code).Inc()
	metrics.PlanDuration.WithLabelValues(outcome).Observe(duration.Seconds())
	h.obs.RecordPlanProcessed(ctx, outcome)
	h.obs.RecordPlanDuration(ctx, duration, outcome)
}

func outcomeFor(code apperrors.ErrorCode) string {
	if code == apperrors.ErrCodeMissingPrompt {
		return "rejected"
	}
	return "failure"
}
