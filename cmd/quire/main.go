package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/scriptorium-dev/quire/internal/composer"
	"github.com/scriptorium-dev/quire/internal/config"
	"github.com/scriptorium-dev/quire/internal/domain"
	"github.com/scriptorium-dev/quire/internal/domain/search/blend"
	"github.com/scriptorium-dev/quire/internal/engine"
	"github.com/scriptorium-dev/quire/internal/engine/redisearch"
	logpkg "github.com/scriptorium-dev/quire/internal/logger"
	"github.com/scriptorium-dev/quire/internal/metrics"
	"github.com/scriptorium-dev/quire/internal/textnorm"
	"github.com/scriptorium-dev/quire/internal/transport/httpapi"
	openaiEmb "github.com/scriptorium-dev/quire/internal/transport/openai"
	"github.com/scriptorium-dev/quire/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting quire API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("engine_addrs", cfg.Engine.Addrs),
		zap.String("index", cfg.Engine.Index),
	)

	store, err := redisearch.NewStore(redisearch.Config{
		Addrs:    cfg.Engine.Addrs,
		Username: cfg.Engine.Username,
		Password: cfg.Engine.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create engine store", zap.Error(err))
	}
	defer store.Close()

	// Wait for the engine to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Engine.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Engine not ready", zap.Error(err))
	}
	logger.Info("Connected to engine")

	// Register domain metrics explicitly (no init())
	metrics.RegisterSearchMetrics()
	metrics.RegisterEmbeddingMetrics()

	// Embedding transport is optional: keyword_only deployments run without
	// a model and semantic requests fail before dispatch.
	var embedder engine.Embedder
	var embHealth func(ctx context.Context) error
	if cfg.Embedding.Model != "" {
		emb, err := openaiEmb.New(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		if err != nil {
			logger.Fatal("Failed to create embedder", zap.Error(err))
		}
		embedder = emb
		embHealth = emb.HealthCheck
		logger.Info("Embedder created",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	schema := domain.CollectedWorks(cfg.Engine.Index)

	eng := redisearch.New(store, embedder, cfg.Engine.KeyPrefix, logger)
	if err := eng.VerifySchema(ctx, schema); err != nil {
		logger.Fatal("Engine index does not match the expected schema", zap.Error(err))
	}
	logger.Info("Index schema verified", zap.String("index", schema.Index()))

	weights, err := domain.NewFieldWeights(schema, cfg.Search.FieldWeights)
	if err != nil {
		logger.Fatal("Invalid field weights", zap.Error(err))
	}

	blendCfg, err := blend.New(
		blend.Mode(cfg.Search.Blend.Mode),
		cfg.Search.Blend.KeywordWeight,
		cfg.Search.Blend.SemanticWeight,
		blend.Normalization(cfg.Search.Blend.Normalization),
	)
	if err != nil {
		logger.Fatal("Invalid blend configuration", zap.Error(err))
	}

	normalizer, err := textnorm.New(cfg.Search.Analyzer)
	if err != nil {
		logger.Fatal("Failed to create text normalizer", zap.Error(err))
	}

	search, err := composer.New(composer.Config{
		Schema:        schema,
		Weights:       weights,
		Blend:         blendCfg,
		VectorField:   cfg.Search.VectorField,
		ModelID:       cfg.Embedding.Model,
		CandidatePool: cfg.Search.CandidatePool,
		SnippetLength: cfg.Search.SnippetLength,
		Normalizer:    normalizer,
		Engine:        eng,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatal("Failed to create composer", zap.Error(err))
	}

	server := httpapi.NewServer(search, blendCfg.Mode(), logger).
		WithPageLimits(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize).
		WithHealthCheck("engine", store.Ping)
	if embHealth != nil {
		server.WithHealthCheck("embedding", embHealth)
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
