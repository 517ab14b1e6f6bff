// Package main is the entrypoint for the Dropline API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/dropline/dropline/internal/cache"
	"github.com/dropline/dropline/internal/config"
	"github.com/dropline/dropline/internal/docstore"
	"github.com/dropline/dropline/internal/handler"
	"github.com/dropline/dropline/internal/metrics"
	"github.com/dropline/dropline/internal/middleware"
	"github.com/dropline/dropline/internal/server"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	// The API keeps serving without a database; store-backed endpoints
	// report it as unavailable.
	store := openStore(ctx, cfg, logger)

	// Redis only backs rate limiting and is optional.
	cacheClient := openCache(ctx, cfg, logger)

	recorder := metrics.NewInMemory()

	routerCfg := handler.RouterConfig{
		Logger:         logger,
		Store:          store,
		DatabaseURLSet: cfg.DatabaseURL != "",
		Metrics:        recorder,
		RateLimit: middleware.RateLimitConfig{
			Enabled: cfg.RateLimitActive(),
			RPS:     cfg.RateLimitRPS,
			Burst:   cfg.RateLimitBurst,
		},
		IsDevelopment:      cfg.IsDevelopment(),
		CORSAllowedOrigins: cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}
	// Interfaces stay nil when Redis is absent.
	if cacheClient != nil {
		routerCfg.Cache = cacheClient
		routerCfg.RateLimit.Limiter = cacheClient
	}

	r := handler.NewRouter(routerCfg)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("store", store.Close)
	if cacheClient != nil {
		srv.OnShutdown("redis", func(context.Context) error {
			return cacheClient.Close()
		})
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"store_backend", cfg.StoreBackend,
		"store_available", store.Available(),
		"rate_limit", routerCfg.RateLimit.Enabled && cacheClient != nil,
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// openStore connects the configured document store. Failures are logged and
// yield an unavailable store instead of stopping the process.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) docstore.Store {
	store, err := docstore.Open(ctx, docstore.Options{
		Backend:        cfg.StoreBackend,
		URL:            cfg.DatabaseURL,
		Database:       cfg.DatabaseName,
		SQLitePath:     cfg.SQLitePath,
		ConnectTimeout: cfg.StoreConnectTimeout,
	})
	if err != nil {
		logger.Warn(
			"document store unavailable",
			slog.String("backend", cfg.StoreBackend),
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return docstore.Unavailable(err)
	}

	logger.Info("connected to document store",
		slog.String("backend", cfg.StoreBackend),
		slog.String("database", store.Name()),
	)
	return store
}

// openCache connects to Redis when REDIS_URL is set. It returns nil when
// Redis is not configured or cannot be reached.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) *cache.Cache {
	if cfg.RedisURL == "" {
		logger.Info("redis not configured, rate limiting disabled")
		return nil
	}

	cacheClient, err := cache.New(ctx, cache.Options{
		URL:       cfg.RedisURL,
		KeyPrefix: cfg.RedisKeyPrefix,
	})
	if err != nil {
		logger.Warn(
			"failed to connect to Redis, rate limiting disabled",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		return nil
	}

	logger.Info("connected to Redis")
	return cacheClient
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	opts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s&]+`)

// redactURL drops the password from a connection URL.
func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

// sanitizeError removes connection secrets from driver error messages.
func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
