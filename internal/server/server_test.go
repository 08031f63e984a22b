// internal/server/server_test.go
package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"trip-planner/internal/common/config"
	"trip-planner/internal/common/logger"
	generateplan "trip-planner/internal/handlers/generate-plan"
	homeview "trip-planner/internal/handlers/home-view"
	resultsview "trip-planner/internal/handlers/results-view"
	"trip-planner/internal/prompt"
	"trip-planner/internal/transport"
)

type fixedModel struct {
	reply string
}

func (m fixedModel) Generate(context.Context, string) (string, error) {
	return m.reply, nil
}

type pinger struct {
	err error
}

func (p pinger) Ping(context.Context) error {
	return p.err
}

const onePlace = `{"planTitle":"Quick stop","summary":"One place.","recommendations":[{"placeName":"Gwangjang Market","category":"Food","reason":"Mung bean pancakes","address":"88 Changgyeonggung-ro","latitude":37.5700,"longitude":126.9996}]}`

func newTestRouter(t *testing.T, origins []string, ready Pinger) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	builder, err := prompt.NewBuilder(prompt.VariantCompact)
	require.NoError(t, err)
	log := logger.NewTestLogger(t)

	routes := Routes{
		Home: homeview.NewHandler(&homeview.Config{
			AppName:        "Trip Planner",
			Endpoint:       generateplan.Route,
			ResultsPath:    resultsview.Route,
			LocationHeader: generateplan.ResultsLocationHeader,
		}),
		Plan:    generateplan.NewHandler(generateplan.LoadConfig(), builder, fixedModel{reply: onePlace}, nil, log, nil),
		Results: resultsview.NewHandler(transport.NewCodec(), nil, homeview.Route, log),
		Ready:   ready,
	}

	core, logs := observer.New(zapcore.DebugLevel)
	return NewRouter(config.ServerConfig{AllowedOrigins: origins}, routes, zap.New(core)), logs
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	router, logs := newTestRouter(t, nil, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
	assert.Zero(t, logs.Len())
}

func TestRouter_Ready(t *testing.T) {
	tests := []struct {
		name   string
		dep    Pinger
		status int
	}{
		{"no dependency", nil, http.StatusOK},
		{"dependency up", pinger{}, http.StatusOK},
		{"dependency down", pinger{err: errors.New("connection refused")}, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, nil, tt.dep)
			w := serve(router, httptest.NewRequest(http.MethodGet, "/ready", nil))
			assert.Equal(t, tt.status, w.Code)
		})
	}
}

func TestRouter_GeneratePlanToResults(t *testing.T) {
	router, logs := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, generateplan.Route, strings.NewReader(`{"userPrompt":"Seoul street food"}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	target := w.Header().Get(generateplan.ResultsLocationHeader)
	require.True(t, strings.HasPrefix(target, resultsview.Route+"?data="), target)
	w = serve(router, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Gwangjang Market")

	entries := logs.FilterMessage("Request completed").All()
	require.Len(t, entries, 2)
	assert.Equal(t, generateplan.Route, entries[0].ContextMap()["path"])
}

func TestRouter_RequestIDPassthrough(t *testing.T) {
	router, logs := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := serve(router, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "req-123", logs.All()[0].ContextMap()["request_id"])
}

func TestRouter_ClientErrorsLogAsWarn(t *testing.T) {
	router, logs := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, generateplan.Route, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := serve(router, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, 1, logs.FilterMessage("Client error").Len())
	assert.Equal(t, zapcore.WarnLevel, logs.FilterMessage("Client error").All()[0].Level)
}

func TestRouter_CORS(t *testing.T) {
	preflight := func(router *gin.Engine, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, generateplan.Route, nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		return serve(router, req)
	}

	open, _ := newTestRouter(t, nil, nil)
	w := preflight(open, "https://anywhere.example")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	restricted, _ := newTestRouter(t, []string{"https://planner.example"}, nil)
	w = preflight(restricted, "https://planner.example")
	assert.Equal(t, "https://planner.example", w.Header().Get("Access-Control-Allow-Origin"))

	w = preflight(restricted, "https://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRouter_Metrics(t *testing.T) {
	router, _ := newTestRouter(t, nil, nil)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestCorsConfig(t *testing.T) {
	assert.True(t, corsConfig(nil).AllowAllOrigins)
	assert.True(t, corsConfig([]string{"*"}).AllowAllOrigins)

	cfg := corsConfig([]string{"https://a.example"})
	assert.False(t, cfg.AllowAllOrigins)
	assert.Equal(t, []string{"https://a.example"}, cfg.AllowOrigins)
	assert.False(t, cfg.AllowCredentials)
	assert.Contains(t, cfg.ExposeHeaders, generateplan.ResultsLocationHeader)
	assert.NoError(t, cfg.Validate())
}
