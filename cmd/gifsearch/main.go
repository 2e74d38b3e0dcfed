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

	"github.com/gifexplorer/gifsearch/internal/cache"
	"github.com/gifexplorer/gifsearch/internal/config"
	"github.com/gifexplorer/gifsearch/internal/db"
	dbRedis "github.com/gifexplorer/gifsearch/internal/db/redis"
	"github.com/gifexplorer/gifsearch/internal/domain"
	logpkg "github.com/gifexplorer/gifsearch/internal/logger"
	"github.com/gifexplorer/gifsearch/internal/metrics"
	contentrepo "github.com/gifexplorer/gifsearch/internal/repository/content"
	profilerepo "github.com/gifexplorer/gifsearch/internal/repository/profile"
	chiTransport "github.com/gifexplorer/gifsearch/internal/transport/chi"
	"github.com/gifexplorer/gifsearch/internal/transport/elastic"
	recommenduc "github.com/gifexplorer/gifsearch/internal/usecase/recommend"
	searchuc "github.com/gifexplorer/gifsearch/internal/usecase/search"
	suggestuc "github.com/gifexplorer/gifsearch/internal/usecase/suggest"
	"github.com/gifexplorer/gifsearch/internal/version"
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

	logger.Info("Starting gifsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Strings("elastic_addrs", cfg.Elastic.Addrs),
	)

	// Create database store based on driver. Valkey speaks the same wire
	// protocol for the commands this service issues, so one client serves both.
	var store db.Store
	switch cfg.Database.Driver {
	case "redis", "valkey":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Username: cfg.Database.Username,
			Password: cfg.Database.Password,
			DB:       cfg.Database.DB,
		})
	default:
		logger.Fatal("Unknown database driver", zap.String("driver", cfg.Database.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	// Search index client
	index, err := elastic.NewClient(elastic.Config{
		Addrs:        cfg.Elastic.Addrs,
		Username:     cfg.Elastic.Username,
		Password:     cfg.Elastic.Password,
		ContentIndex: cfg.Elastic.ContentIndex,
		LogIndex:     cfg.Elastic.LogIndex,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to create index client", zap.Error(err))
	}
	if err := index.Ping(ctx); err != nil {
		logger.Warn("Search index not reachable at startup", zap.Error(err))
	}

	// Create repositories (domain-native, no adapters)
	contentRepo := contentrepo.New(store)
	profileRepo := profilerepo.New(store).WithMaxHistory(cfg.Search.MaxHistory)

	resultCache := cache.New(
		time.Duration(cfg.Search.CacheTTLSec)*time.Second,
		cfg.Search.CacheMaxEntries,
	).WithMetrics(metrics.SearchCacheTotal)

	// Create use case services
	searchSvc := searchuc.New(index, index, contentRepo, profileRepo, resultCache).
		WithPageSize(cfg.Search.PageSize).
		WithHistoryPageSize(cfg.Search.HistoryPageSize).
		WithLogger(logger)
	recommendSvc := recommenduc.New(index, profileRepo, contentRepo)
	suggestSvc := suggestuc.New(index)

	// Create chi server
	server := chiTransport.NewServer(searchSvc, recommendSvc, suggestSvc, store, index, logger)

	tokens := make(map[string]domain.Principal, len(cfg.Auth.Tokens))
	for token, p := range cfg.Auth.Tokens {
		tokens[token] = domain.Principal{ID: p.ID, Name: p.Name}
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.PrincipalMiddleware(chiTransport.NewStaticResolver(tokens)))
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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"code": 1,
						"info": "internal error",
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
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
