package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dropline/dropline/internal/docstore"
	"github.com/dropline/dropline/internal/metrics"
	"github.com/dropline/dropline/internal/middleware"
	"github.com/dropline/dropline/internal/repository"
	"github.com/dropline/dropline/internal/service"
)

// RouterConfig collects everything the HTTP router needs.
type RouterConfig struct {
	Logger         *slog.Logger
	Store          docstore.Store
	DatabaseURLSet bool
	Metrics        *metrics.InMemoryRecorder

	// Cache is pinged by /readyz. Leave nil when Redis is not configured.
	Cache HealthChecker

	// RateLimit guards the write endpoints.
	RateLimit middleware.RateLimitConfig

	IsDevelopment      bool
	CORSAllowedOrigins []string
	MaxRequestBodySize int64
}

// NewRouter wires services, handlers and middleware into a chi router.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewInMemory()
	}

	repo := repository.New(cfg.Store)
	accountService := service.NewAccountService(repo, logger, recorder)
	requestService := service.NewRequestService(repo, recorder)

	h := New()
	healthHandler := NewHealthHandler(cfg.Store, cfg.Cache)
	metricsHandler := NewMetricsHandler(recorder)
	diagnosticsHandler := NewDiagnosticsHandler(cfg.Store, cfg.DatabaseURLSet)
	accountHandler := NewAccountHandler(accountService, logger)
	requestHandler := NewRequestHandler(requestService, logger)

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.CORSAllowedOrigins

	rateLimitCfg := cfg.RateLimit
	rateLimitCfg.Logger = logger
	rateLimitCfg.Metrics = recorder

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment}))
	r.Use(middleware.CORS(corsCfg))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	}

	// Operational endpoints
	r.Get("/", h.Root)
	r.Get("/test", diagnosticsHandler.Test)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Reads
	r.Get("/profile", accountHandler.GetProfile)
	r.Get("/requests", requestHandler.List)

	// Writes are rate limited per IP when Redis is available.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitIP(rateLimitCfg))

		r.Post("/auth/signup", accountHandler.Signup)
		r.Post("/auth/login", accountHandler.Login)
		r.Put("/profile", accountHandler.UpdateProfile)
		r.Post("/request", requestHandler.Create)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}
