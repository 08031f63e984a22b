// internal/handlers/results-view/handler.go
package resultsview

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/metrics"
	"trip-planner/internal/models"
	"trip-planner/internal/transport"
	"trip-planner/internal/web"
)

const Route = "/results"

type Decoder interface {
	Decode(encoded string) (*models.PlanResult, error)
}

type ResultLoader interface {
	Load(ctx context.Context, token string) (*models.PlanResult, error)
}

type Handler struct {
	codec    Decoder
	store    ResultLoader
	homePath string
	logger   logger.Logger
}

// NewHandler builds the results view. store may be nil when results travel only in the URL.
func NewHandler(codec Decoder, store ResultLoader, homePath string, log logger.Logger) *Handler {
	return &Handler{
		codec:    codec,
		store:    store,
		homePath: homePath,
		logger: log.With(map[string]interface{}{
			"handler": "results-view",
		}),
	}
}

func (h *Handler) Handle(c *gin.Context) {
	plan, source, err := h.load(c)
	if err != nil {
		h.renderError(c, source, err)
		return
	}

	page := Page{
		State:    StateOK,
		HomePath: h.homePath,
		Plan:     plan,
		ShowMap:  plan.HasRecommendations(),
		Map:      NewMapView(plan),
	}
	metrics.ResultViews.WithLabelValues(StateOK, source).Inc()
	c.HTML(http.StatusOK, web.ResultsTemplate, page)
}

// load prefers the URL payload and falls back to a store token.
func (h *Handler) load(c *gin.Context) (*models.PlanResult, string, error) {
	if raw, ok := transport.RawQueryValue(c.Request.URL.RawQuery, transport.DataParam); ok && raw != "" {
		plan, err := h.codec.Decode(raw)
		return plan, "url", err
	}
	if token := c.Query(transport.TokenParam); token != "" && h.store != nil {
		plan, err := h.store.Load(c.Request.Context(), token)
		return plan, "store", err
	}
	return nil, "none", apperrors.NewNoPayloadError("no data parameter")
}

func (h *Handler) renderError(c *gin.Context, source string, err error) {
	code := apperrors.CodeOf(err)
	state := StateParseError
	if code == apperrors.ErrCodeNoPayload {
		state = StateNoData
	} else {
		h.logger.Warn("could not load result", map[string]interface{}{
			"requestId": c.GetString("requestId"),
			"source":    source,
			"errorCode": string(code),
			"error":     err,
		})
	}

	metrics.ResultViews.WithLabelValues(state, source).Inc()
	c.HTML(apperrors.HTTPStatus(code), web.ResultsTemplate, Page{
		State:    state,
		HomePath: h.homePath,
	})
}
