// internal/handlers/generate-plan/handler_test.go
package generateplan

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "trip-planner/internal/common/errors"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/prompt"
	"trip-planner/internal/transport"
)

// ==========================
// Test doubles
// ==========================

type stubModel struct {
	mu       sync.Mutex
	calls    int
	prompts  []string
	generate func(ctx context.Context, prompt string) (string, error)
}

func (s *stubModel) Generate(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()
	return s.generate(ctx, prompt)
}

func (s *stubModel) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func replying(text string) *stubModel {
	return &stubModel{generate: func(context.Context, string) (string, error) { return text, nil }}
}

type stubStore struct {
	token string
	err   error
	saved []*Output
}

func (s *stubStore) Save(ctx context.Context, result *Output) (string, error) {
	s.saved = append(s.saved, result)
	return s.token, s.err
}

const fourPlaces = "```json\n" + `{
  "planTitle": "홍대 데이트 코스",
  "summary": "Coffee, art, food and a view.",
  "recommendations": [
    {"placeName": "Anthracite", "category": "Cafe", "reason": "Roastery in an old shoe factory", "address": "10 Tojeong-ro 5-gil", "latitude": 37.5478, "longitude": 126.9176},
    {"placeName": "Sangsangmadang", "category": "Activity", "reason": "Indie art and film", "address": "65 Eoulmadang-ro", "latitude": 37.5510, "longitude": 126.9215},
    {"placeName": "Yeonnam-dong Gyeongui Line Forest Park", "category": "Sightseeing", "reason": "Walk along the old rail line", "address": "Yeonnam-dong", "latitude": 37.5601, "longitude": 126.9244},
    {"placeName": "Hongdae Dakgalbi", "category": "Restaurant", "reason": "Spicy chicken to share", "address": "Wausan-ro 21-gil", "latitude": 37.5552, "longitude": 126.9230}
  ]
}` + "\n```"

func newTestHandler(t *testing.T, cfg *Config, model *stubModel, store ResultStore) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	builder, err := prompt.NewBuilder(prompt.VariantCompact)
	require.NoError(t, err)

	if cfg == nil {
		cfg = LoadConfig()
	}

	h := NewHandler(cfg, builder, model, store, logger.NewTestLogger(t), nil)

	router := gin.New()
	router.POST(Route, h.Handle)
	return router
}

func post(router *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

// ==========================
// Tests
// ==========================

func TestHandle_Success(t *testing.T) {
	model := replying(fourPlaces)
	router := newTestHandler(t, nil, model, nil)

	w := post(router, `{"userPrompt": "서울 홍대 데이트 코스"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var out Output
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	assert.Equal(t, "홍대 데이트 코스", out.PlanTitle)
	require.Len(t, out.Recommendations, 4)
	assert.Equal(t, "Anthracite", out.Recommendations[0].PlaceName)
	assert.Equal(t, "Sangsangmadang", out.Recommendations[1].PlaceName)
	assert.Equal(t, "Yeonnam-dong Gyeongui Line Forest Park", out.Recommendations[2].PlaceName)
	assert.Equal(t, "Hongdae Dakgalbi", out.Recommendations[3].PlaceName)

	assert.Equal(t, 1, model.Calls())
	assert.Contains(t, model.prompts[0], "서울 홍대 데이트 코스")
	assert.Empty(t, w.Header().Get(ResultTokenHeader))
}

func TestHandle_MissingPrompt(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "empty string", body: `{"userPrompt": ""}`},
		{name: "whitespace only", body: `{"userPrompt": "  \n\t "}`},
		{name: "field absent", body: `{}`},
		{name: "null", body: `{"userPrompt": null}`},
		{name: "wrong type", body: `{"userPrompt": 42}`},
		{name: "invalid json", body: `{"userPrompt":`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := replying(fourPlaces)
			router := newTestHandler(t, nil, model, nil)

			w := post(router, tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "Prompt is required", decodeError(t, w))
			assert.Equal(t, 0, model.Calls(), "model must not be invoked")
		})
	}
}

func TestHandle_Failures(t *testing.T) {
	tests := []struct {
		name     string
		generate func(ctx context.Context, prompt string) (string, error)
		secret   string
	}{
		{
			name: "transport failure",
			generate: func(context.Context, string) (string, error) {
				return "", apperrors.NewModelInvocationError("gemini", errors.New("dial tcp 10.0.0.7:443: connection refused"), true)
			},
			secret: "connection refused",
		},
		{
			name: "auth failure",
			generate: func(context.Context, string) (string, error) {
				return "", apperrors.NewModelInvocationError("gemini", errors.New("API key not valid: AIzaSy-secret"), false)
			},
			secret: "AIzaSy-secret",
		},
		{
			name: "malformed output",
			generate: func(context.Context, string) (string, error) {
				return "Sorry, I cannot plan trips to the moon.", nil
			},
			secret: "moon",
		},
		{
			name: "wrong shape",
			generate: func(context.Context, string) (string, error) {
				return `{"planTitle":"t","summary":"s","recommendations":[{"placeName":"p","latitude":"north"}]}`, nil
			},
			secret: "north",
		},
		{
			name: "unexpected error",
			generate: func(context.Context, string) (string, error) {
				return "", errors.New("something odd at /srv/app/internal")
			},
			secret: "/srv/app",
		},
		{
			name: "panic",
			generate: func(context.Context, string) (string, error) {
				panic("nil map write in provider")
			},
			secret: "nil map",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &stubModel{generate: tt.generate}
			router := newTestHandler(t, nil, model, nil)

			w := post(router, `{"userPrompt": "Busan"}`)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
			assert.Equal(t, "Failed to generate plan", decodeError(t, w))
			assert.NotContains(t, w.Body.String(), tt.secret)
			assert.Equal(t, 1, model.Calls())
		})
	}
}

func TestHandle_DetachedFromClientCancellation(t *testing.T) {
	model := &stubModel{generate: func(ctx context.Context, _ string) (string, error) {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		return fourPlaces, nil
	}}
	router := newTestHandler(t, nil, model, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req := httptest.NewRequest(http.MethodPost, Route, strings.NewReader(`{"userPrompt":"Jeonju"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandle_Timeout(t *testing.T) {
	model := &stubModel{generate: func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", apperrors.NewModelTimeoutError("gemini", 20*time.Millisecond)
	}}
	cfg := &Config{Timeout: 20 * time.Millisecond}
	router := newTestHandler(t, cfg, model, nil)

	start := time.Now()
	w := post(router, `{"userPrompt":"Gangneung"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Failed to generate plan", decodeError(t, w))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestHandle_ResultStore(t *testing.T) {
	t.Run("token header on save", func(t *testing.T) {
		store := &stubStore{token: "5f0c6c8e-9a55-4a43-9a7e-0c1f6f3a2b10"}
		router := newTestHandler(t, nil, replying(fourPlaces), store)

		w := post(router, `{"userPrompt":"Hongdae"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, store.token, w.Header().Get(ResultTokenHeader))
		require.Len(t, store.saved, 1)
		assert.Len(t, store.saved[0].Recommendations, 4)
	})

	t.Run("store failure does not fail the request", func(t *testing.T) {
		store := &stubStore{err: apperrors.NewResultStoreError("save", errors.New("redis down"))}
		router := newTestHandler(t, nil, replying(fourPlaces), store)

		w := post(router, `{"userPrompt":"Hongdae"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Header().Get(ResultTokenHeader))

		var out Output
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Len(t, out.Recommendations, 4)
	})
}

func TestHandle_ResultsLocation(t *testing.T) {
	t.Run("data location decodes back to the plan", func(t *testing.T) {
		router := newTestHandler(t, nil, replying(fourPlaces), nil)

		w := post(router, `{"userPrompt":"Hongdae"}`)
		require.Equal(t, http.StatusOK, w.Code)

		location := w.Header().Get(ResultsLocationHeader)
		require.True(t, strings.HasPrefix(location, "/results?data="), location)

		plan, err := transport.NewCodec().Decode(strings.TrimPrefix(location, "/results?data="))
		require.NoError(t, err)
		var out Output
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
		assert.Equal(t, &out, plan)
	})

	t.Run("token location when the store saved", func(t *testing.T) {
		store := &stubStore{token: "5f0c6c8e-9a55-4a43-9a7e-0c1f6f3a2b10"}
		router := newTestHandler(t, nil, replying(fourPlaces), store)

		w := post(router, `{"userPrompt":"Hongdae"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "/results?token="+store.token, w.Header().Get(ResultsLocationHeader))
	})

	t.Run("falls back to data when the store fails", func(t *testing.T) {
		store := &stubStore{err: errors.New("redis down")}
		router := newTestHandler(t, nil, replying(fourPlaces), store)

		w := post(router, `{"userPrompt":"Hongdae"}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, strings.HasPrefix(w.Header().Get(ResultsLocationHeader), "/results?data="))
	})

	t.Run("no header on failure", func(t *testing.T) {
		router := newTestHandler(t, nil, replying("no json here"), nil)

		w := post(router, `{"userPrompt":"Hongdae"}`)
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Empty(t, w.Header().Get(ResultsLocationHeader))
	})
}

func TestExecute_Sequence(t *testing.T) {
	builder, err := prompt.NewBuilder(prompt.VariantExtended)
	require.NoError(t, err)
	model := replying(fourPlaces)
	h := NewHandler(LoadConfig(), builder, model, nil, logger.NewNoOpLogger(), nil)

	out, err := h.Execute(context.Background(), "Jeju")
	require.NoError(t, err)
	assert.Len(t, out.Recommendations, 4)
	assert.Contains(t, model.prompts[0], "Provide 6-8 recommendations")

	_, err = h.Execute(context.Background(), " ")
	assert.True(t, errors.Is(err, apperrors.ErrMissingPrompt))
	assert.Equal(t, 1, model.Calls())
}
