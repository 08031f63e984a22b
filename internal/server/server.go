// internal/server/server.go
package server

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	ginprometheus "github.com/zsais/go-gin-prometheus"
	"go.uber.org/zap"

	"trip-planner/internal/common/config"
	generateplan "trip-planner/internal/handlers/generate-plan"
	homeview "trip-planner/internal/handlers/home-view"
	resultsview "trip-planner/internal/handlers/results-view"
	"trip-planner/internal/web"
)

// Pinger is a dependency checked by /ready.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Routes collects the handlers mounted on the router.
// Ready may be nil when the service has no external dependency to check.
type Routes struct {
	Home    *homeview.Handler
	Plan    *generateplan.Handler
	Results *resultsview.Handler
	Ready   Pinger
}

// NewRouter builds the gin engine with logging, recovery, CORS and request metrics.
func NewRouter(cfg config.ServerConfig, routes Routes, log *zap.Logger) *gin.Engine {
	router := gin.New()
	router.RedirectTrailingSlash = true
	router.Use(RequestID())
	router.Use(ZapLogger(log))
	router.Use(gin.Recovery())
	router.Use(cors.New(corsConfig(cfg.AllowedOrigins)))
	router.SetHTMLTemplate(web.MustTemplates())

	healthHandler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
	router.GET("/health", healthHandler)
	router.HEAD("/health", healthHandler)
	router.GET("/ready", readyHandler(routes.Ready))

	router.GET(homeview.Route, routes.Home.Handle)
	router.GET(resultsview.Route, routes.Results.Handle)
	router.POST(generateplan.Route, routes.Plan.Handle)

	// registers its middleware and GET /metrics
	p := ginprometheus.NewPrometheus("gin")
	p.Use(router)

	return router
}

func readyHandler(dep Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if dep != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := dep.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unavailable",
					"time":   time.Now().Format(time.RFC3339),
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

// corsConfig allows every origin when none are configured or "*" is listed.
// The API carries no credentials so AllowCredentials stays off.
func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", RequestIDHeader}
	cfg.ExposeHeaders = []string{generateplan.ResultTokenHeader, generateplan.ResultsLocationHeader, RequestIDHeader}
	cfg.MaxAge = 12 * time.Hour
	return cfg
}

// Server owns the HTTP listener.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

func New(cfg config.ServerConfig, handler http.Handler, log *zap.Logger) *Server {
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      handler,
			ReadTimeout:  config.GetDuration(cfg.ReadTimeout),
			WriteTimeout: config.GetDuration(cfg.WriteTimeout),
			IdleTimeout:  120 * time.Second,
		},
		log: log,
	}
}

// Start serves until Shutdown is called. It returns nil after a graceful shutdown.
func (s *Server) Start() error {
	s.log.Info("HTTP server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting connections and waits for in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
