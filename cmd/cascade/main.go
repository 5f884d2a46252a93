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

	"github.com/kailas-cloud/cascade/internal/config"
	"github.com/kailas-cloud/cascade/internal/db/elastic"
	"github.com/kailas-cloud/cascade/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/cascade/internal/db/redis"
	logpkg "github.com/kailas-cloud/cascade/internal/logger"
	"github.com/kailas-cloud/cascade/internal/metrics"
	activeindexrepo "github.com/kailas-cloud/cascade/internal/repository/activeindex"
	entityrepo "github.com/kailas-cloud/cascade/internal/repository/entity"
	"github.com/kailas-cloud/cascade/internal/repository/entitycache"
	recordrepo "github.com/kailas-cloud/cascade/internal/repository/record"
	searchrepo "github.com/kailas-cloud/cascade/internal/repository/search"
	"github.com/kailas-cloud/cascade/internal/tracing"
	chiTransport "github.com/kailas-cloud/cascade/internal/transport/chi"
	"github.com/kailas-cloud/cascade/internal/usecase/compiler"
	healthuc "github.com/kailas-cloud/cascade/internal/usecase/health"
	"github.com/kailas-cloud/cascade/internal/usecase/hierarchy"
	indexuc "github.com/kailas-cloud/cascade/internal/usecase/index"
	searchuc "github.com/kailas-cloud/cascade/internal/usecase/search"
	"github.com/kailas-cloud/cascade/internal/version"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting cascade search API",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("elastic_addrs", cfg.Elastic.Addrs),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	ctx := context.Background()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		ServiceName:    "cascade",
		ServiceVersion: version.Version,
		Environment:    env,
		Endpoint:       cfg.Tracing.Endpoint,
		Insecure:       cfg.Tracing.Insecure,
		Enabled:        cfg.Tracing.Enabled,
		SampleRatio:    cfg.Tracing.SampleRatio,
	})
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	// Search backend
	es, err := elastic.NewStore(elastic.Config{
		Addrs:    cfg.Elastic.Addrs,
		Username: cfg.Elastic.Username,
		Password: cfg.Elastic.Password,
		APIKey:   cfg.Elastic.APIKey,
	})
	if err != nil {
		logger.Fatal("Failed to create elasticsearch store", zap.Error(err))
	}
	if err := es.WaitForReady(ctx, seconds(cfg.Elastic.ReadinessTimeout)); err != nil {
		logger.Fatal("Elasticsearch not ready", zap.Error(err))
	}
	logger.Info("Connected to elasticsearch")

	// Entity hierarchy and canonical records
	pool, err := postgres.NewPool(ctx, postgres.Config{
		DSN:      cfg.Postgres.DSN,
		MaxConns: cfg.Postgres.MaxConns,
		MinConns: cfg.Postgres.MinConns,
	})
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()
	if err := pool.WaitForReady(ctx, seconds(cfg.Postgres.ReadinessTimeout)); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	logger.Info("Connected to postgres")

	// Active index pointer and entity cache
	kv, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:          cfg.Redis.Addrs,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		DB:             cfg.Redis.DB,
		ClientCacheTTL: seconds(cfg.Redis.ClientCacheTTL),
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer kv.Close()
	if err := kv.WaitForReady(ctx, seconds(cfg.Redis.ReadinessTimeout)); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	// Register metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Repositories
	var entities hierarchy.EntityStore = entityrepo.New(pool)
	if cfg.Cache.Enabled {
		entities = entitycache.New(entities, kv, seconds(cfg.Cache.TTLSec), logger)
	}
	searchRepo := searchrepo.New(es)
	recordRepo := recordrepo.New(pool, cfg.Postgres.RecordTables)
	indexRepo := activeindexrepo.New(kv, env, cfg.Elastic.DefaultIndex)

	// Use cases
	resolver := hierarchy.New(entities)

	cleaner, err := searchuc.NewCleaner(searchRepo, cfg.Search.StaleWorkers, cfg.Search.RemoveStale, logger)
	if err != nil {
		logger.Fatal("Failed to create stale cleaner", zap.Error(err))
	}

	searchSvc := searchuc.New(
		searchRepo,
		indexRepo,
		resolver,
		compiler.New(compiler.NewSessionSeeder()),
		recordRepo,
		cleaner,
		searchuc.Options{
			Defaults:     cfg.CriteriaDefaults(),
			LandingSlugs: cfg.Search.LandingSlugs,
			InferFacets:  cfg.Search.InferFacets,
		},
	)
	indexSvc := indexuc.New(indexRepo, es)
	healthSvc := healthuc.New(
		healthuc.Component{Name: "elasticsearch", Pinger: es},
		healthuc.Component{Name: "postgres", Pinger: pool},
		healthuc.Component{Name: "redis", Pinger: kv},
	)

	// Create chi server
	server := chiTransport.NewServer(
		searchSvc, resolver, indexSvc, healthSvc,
		seconds(cfg.Search.TimeoutSec), logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys, cfg.Auth.AdminKeys))
	r.Use(metrics.Middleware("/metrics", "/health"))
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  seconds(cfg.HTTP.ReadTimeoutSec),
		WriteTimeout: seconds(cfg.HTTP.WriteTimeoutSec),
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), seconds(cfg.HTTP.ShutdownSec))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	// In-flight stale removals finish before the stores close.
	cleaner.Close()

	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
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
						Code:    chiTransport.CodeInternal,
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

			ctx := logpkg.ContextWithLogger(r.Context(), logger)
			ctx = logpkg.With(ctx, zap.String("request_id", requestID))
			reqLogger := logpkg.FromContext(ctx)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
