// cmd/trip-planner/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"trip-planner/internal/common/config"
	"trip-planner/internal/common/database"
	"trip-planner/internal/common/logger"
	"trip-planner/internal/common/observability"
	"trip-planner/internal/genai"
	generateplan "trip-planner/internal/handlers/generate-plan"
	homeview "trip-planner/internal/handlers/home-view"
	resultsview "trip-planner/internal/handlers/results-view"
	"trip-planner/internal/prompt"
	"trip-planner/internal/server"
	"trip-planner/internal/transport"
	"trip-planner/pkg/registry"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		// the logger is configured from the file, so this one goes to stderr as-is
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.FromConfig(cfg.Logging, cfg.App)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting trip planner...",
		zap.String("provider", cfg.GenAI.Provider),
		zap.String("model", cfg.GenAI.Model),
		zap.String("transport", cfg.Transport.Mode),
	)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	obs := observability.New(cfg.Observability.ServiceName, cfg.Observability.JaegerEndpoint)
	defer obs.Shutdown()

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// --- Prompt builder ---
	builder, err := prompt.NewBuilder(cfg.Prompt.Variant)
	if err != nil {
		zapLog.Fatal("prompt builder init failed", zap.Error(err))
	}
	if path := cfg.Prompt.RegistryPath; path != "" {
		reg, err := registry.LoadRegistry(path)
		if err != nil {
			zapLog.Fatal("prompt registry load failed", zap.String("path", path), zap.Error(err))
		}
		if err := builder.ApplyRegistry(reg); err != nil {
			zapLog.Fatal("prompt registry rejected", zap.String("path", path), zap.Error(err))
		}
		zapLog.Info("Prompt registry loaded",
			zap.String("path", path),
			zap.String("version", reg.Version),
			zap.Strings("variants", builder.Variants()),
		)

		if cfg.Prompt.WatchChanges {
			go watchRegistry(ctx, path, builder, zapLog)
		}
	}
	zapLog.Info("Prompt variant selected", zap.String("variant", builder.Variant().ID))

	// --- Model client ---
	genaiCfg := genai.ConfigFromApp(cfg.GenAI)
	client, err := genai.New(genaiCfg, log, obs)
	if err != nil {
		zapLog.Fatal("model client init failed", zap.Error(err))
	}

	// --- Result store (optional) ---
	var (
		store     generateplan.ResultStore
		loader    resultsview.ResultLoader
		readiness server.Pinger
	)
	if cfg.Transport.UsesStore() {
		rdb := database.NewRedis(cfg.Database.Redis)
		err = retryWithBackoff(func() error {
			return rdb.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer rdb.Close()
		zapLog.Info("Redis connected successfully")

		resultStore := transport.NewStore(rdb.Client, config.GetDuration(cfg.Transport.TTL), cfg.Transport.KeyPrefix)
		store, loader, readiness = resultStore, resultStore, resultStore
	}

	// --- Handlers ---
	planHandler := generateplan.NewHandler(
		&generateplan.Config{
			Timeout:      cfg.GenAI.CallBudget(),
			StoreTimeout: generateplan.LoadConfig().StoreTimeout,
			ResultsPath:  resultsview.Route,
		},
		builder, client, store, log, obs,
	)
	router := server.NewRouter(cfg.Server, server.Routes{
		Home: homeview.NewHandler(&homeview.Config{
			AppName:        cfg.App.Name,
			Endpoint:       generateplan.Route,
			ResultsPath:    resultsview.Route,
			LocationHeader: generateplan.ResultsLocationHeader,
		}),
		Plan:    planHandler,
		Results: resultsview.NewHandler(transport.NewCodec(), loader, homeview.Route, log),
		Ready:   readiness,
	}, zapLog)

	srv := server.New(cfg.Server, router, zapLog)
	go func() {
		if err := srv.Start(); err != nil {
			zapLog.Fatal("HTTP server listen error", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server forced to shutdown", zap.Error(err))
	}

	zapLog.Info("Trip planner stopped gracefully")
}

func watchRegistry(ctx context.Context, path string, builder *prompt.Builder, log *zap.Logger) {
	err := registry.Watch(ctx, path,
		func(reg *registry.PromptRegistry) {
			if err := builder.ApplyRegistry(reg); err != nil {
				log.Warn("prompt registry reload rejected", zap.String("path", path), zap.Error(err))
				return
			}
			log.Info("Prompt registry reloaded",
				zap.String("version", reg.Version),
				zap.Strings("variants", builder.Variants()),
			)
		},
		func(err error) {
			log.Warn("prompt registry reload failed", zap.String("path", path), zap.Error(err))
		},
	)
	if err != nil {
		log.Error("prompt registry watcher stopped", zap.Error(err))
	}
}
