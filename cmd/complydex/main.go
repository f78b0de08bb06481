package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/complydex/internal/config"
	dbRedis "github.com/kailas-cloud/complydex/internal/db/redis"
	logpkg "github.com/kailas-cloud/complydex/internal/logger"
	"github.com/kailas-cloud/complydex/internal/metrics"
	historyrepo "github.com/kailas-cloud/complydex/internal/repository/history"
	recordrepo "github.com/kailas-cloud/complydex/internal/repository/record"
	savedrepo "github.com/kailas-cloud/complydex/internal/repository/saved"
	"github.com/kailas-cloud/complydex/internal/repository/suggestcache"
	chiTransport "github.com/kailas-cloud/complydex/internal/transport/chi"
	batchuc "github.com/kailas-cloud/complydex/internal/usecase/batch"
	healthuc "github.com/kailas-cloud/complydex/internal/usecase/health"
	historyuc "github.com/kailas-cloud/complydex/internal/usecase/history"
	recorduc "github.com/kailas-cloud/complydex/internal/usecase/record"
	saveduc "github.com/kailas-cloud/complydex/internal/usecase/saved"
	searchuc "github.com/kailas-cloud/complydex/internal/usecase/search"
	"github.com/kailas-cloud/complydex/internal/version"
	"github.com/kailas-cloud/complydex/internal/worker"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting complydex API server",
		append(version.Fields(),
			zap.String("env", env),
			zap.Int("http_port", cfg.HTTP.Port),
			zap.Strings("db_addrs", cfg.Database.Addrs),
		)...,
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics(prometheus.DefaultRegisterer)
	metrics.RegisterSearchMetrics(prometheus.DefaultRegisterer)

	// Repositories
	recordRepo := recordrepo.New(store)
	if err := recordRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to ensure search indexes", zap.Error(err))
	}
	historyRepo := historyrepo.New(store, cfg.History.Retention)
	savedRepo := savedrepo.New(store, logger)

	// Background pool for history writes and telemetry
	dispatcher, err := worker.New(
		cfg.Worker.PoolSize, cfg.Worker.TaskTimeout(), metrics.BackgroundFailuresTotal, logger,
	)
	if err != nil {
		logger.Fatal("Failed to create worker pool", zap.Error(err))
	}

	// Use cases
	historySvc := historyuc.New(historyRepo)
	searchSvc := searchuc.New(
		recordRepo, dispatcher, historySvc, metrics.NewSearchRecorder(nil), logger,
	).WithCandidateLimit(cfg.Search.CandidateLimit)
	engine := searchuc.NewInstrumentedEngine(searchSvc, logger)

	// Suggest chain: engine -> cached (outermost)
	var suggester chiTransport.Suggester = engine
	if ttl := cfg.Search.SuggestCacheTTL(); ttl > 0 {
		suggester = suggestcache.New(engine, store, ttl, metrics.SuggestCacheTotal, logger)
	}

	healthSvc := healthuc.New(store).
		WithChecker("indexes", recordRepo)

	server := chiTransport.NewServer(chiTransport.Deps{
		Search:  engine,
		Suggest: suggester,
		Recent:  historySvc,
		Saved:   saveduc.New(savedRepo),
		Records: recorduc.New(recordRepo),
		Batch:   batchuc.New(recordRepo, recordRepo).WithMaxBatchSize(cfg.Search.MaxBatchSize),
		Health:  healthSvc,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
	// Let in-flight history writes finish before the store closes.
	if err := dispatcher.Close(shutdownCtx); err != nil {
		logger.Warn("Background tasks did not drain", zap.Error(err))
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line: one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_id", r.Header.Get(chiTransport.UserIDHeader)),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
