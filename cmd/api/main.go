// Package main is the entrypoint for the AutoFlow API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/billing"
	"github.com/autoflow/autoflow/internal/blueprint"
	"github.com/autoflow/autoflow/internal/cache"
	"github.com/autoflow/autoflow/internal/catalog"
	"github.com/autoflow/autoflow/internal/config"
	"github.com/autoflow/autoflow/internal/handler"
	"github.com/autoflow/autoflow/internal/llm"
	"github.com/autoflow/autoflow/internal/metrics"
	"github.com/autoflow/autoflow/internal/middleware"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/quota"
	"github.com/autoflow/autoflow/internal/repository"
	"github.com/autoflow/autoflow/internal/server"
	"github.com/autoflow/autoflow/internal/service"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := initLogger(cfg)

	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	logger.Info("connected to database")

	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		repo.Close()
		os.Exit(1)
	}
	logger.Info("connected to Redis")

	app, err := buildApp(ctx, cfg, repo, cacheClient, logger)
	if err != nil {
		logger.Error("failed to initialize application", "error", err)
		_ = cacheClient.Close()
		repo.Close()
		os.Exit(1)
	}

	srv := server.New(app.router, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger)

	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})
	srv.OnShutdown("redis", func(context.Context) error {
		return cacheClient.Close()
	})
	for _, c := range app.closers {
		srv.OnShutdown(c.name, func(context.Context) error { return c.close() })
	}

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"models", app.models,
		"billing", cfg.BillingEnabled(),
	)

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

type closer struct {
	name  string
	close func() error
}

type app struct {
	router  *chi.Mux
	closers []closer
	models  []model.AIModel
}

// buildApp wires services and handlers on top of the shared stores.
func buildApp(ctx context.Context, cfg *config.Config, repo *repository.Repository, cacheClient *cache.Cache, logger *slog.Logger) (*app, error) {
	recorder := metrics.NewInMemory()

	templates, err := catalog.Default()
	if err != nil {
		return nil, err
	}
	validator, err := blueprint.NewValidator()
	if err != nil {
		return nil, err
	}
	limits, err := cfg.QuotaLimits()
	if err != nil {
		return nil, err
	}
	policy := quota.NewPolicy(limits)

	models, closers, err := buildModelRouter(ctx, cfg, recorder)
	if err != nil {
		return nil, err
	}

	tokens := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	authService := service.NewAuthService(repo, tokens)
	generationService := service.NewGenerationService(repo, templates, models, validator, policy, logger, recorder)
	conversionService := service.NewConversionService(repo, models, validator, policy, logger, recorder)
	statsService := service.NewStatsService(repo, cacheClient, cfg.StatsCacheTTL, cfg.SatisfactionRate, logger)
	billingService := billing.New(billing.Config{
		SecretKey:     cfg.StripeSecretKey,
		WebhookSecret: cfg.StripeWebhookSecret,
		PriceIDs:      cfg.StripePriceIDs(),
		FrontendURL:   cfg.FrontendURL,
	}, repo, logger)

	h := routes{
		base:        handler.New(),
		health:      handler.NewHealthHandler(repo, cacheClient),
		metrics:     handler.NewMetricsHandler(recorder),
		auth:        handler.NewAuthHandler(authService, policy, logger),
		automations: handler.NewAutomationHandler(generationService, logger),
		templates:   handler.NewTemplateHandler(templates, generationService, logger),
		conversions: handler.NewConversionHandler(conversionService, logger),
		billing:     handler.NewBillingHandler(billingService, logger),
		stats:       handler.NewStatsHandler(statsService, logger),
		authCfg: middleware.AuthConfig{
			Logger:        logger,
			Authenticator: authService,
		},
		rateLimitCfg: middleware.RateLimitConfig{
			Logger:     logger,
			Limiter:    cacheClient,
			Recorder:   recorder,
			Enabled:    cfg.RateLimitEnabled,
			GuestRPM:   cfg.RateLimitGuestRPM,
			GuestBurst: cfg.RateLimitGuestBurst,
		},
	}

	var available []model.AIModel
	for _, m := range model.AIModels {
		if models.Available(m) {
			available = append(available, m)
		}
	}
	if len(available) == 0 {
		logger.Warn("no AI provider keys configured, only templates can be served")
	}

	return &app{
		router:  setupRouter(h, cfg, logger),
		closers: closers,
		models:  available,
	}, nil
}

// buildModelRouter registers a client for every model whose key is set.
func buildModelRouter(ctx context.Context, cfg *config.Config, recorder metrics.Recorder) (*llm.Router, []closer, error) {
	router := llm.NewRouter(cfg.AITimeout, recorder)
	var closers []closer

	if cfg.OpenAIAPIKey != "" {
		router.Register(model.ModelGPT4, llm.NewChatClient(llm.ChatConfig{
			APIKey: cfg.OpenAIAPIKey,
			Model:  string(model.ModelGPT4),
		}))
	}
	if cfg.AnthropicAPIKey != "" {
		router.Register(model.ModelClaude, llm.NewChatClient(llm.ChatConfig{
			APIKey:  cfg.AnthropicAPIKey,
			BaseURL: cfg.AnthropicBaseURL,
			Model:   string(model.ModelClaude),
		}))
	}
	if cfg.GeminiAPIKey != "" {
		gemini, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, string(model.ModelGemini))
		if err != nil {
			return nil, nil, err
		}
		router.Register(model.ModelGemini, gemini)
		closers = append(closers, closer{name: "gemini", close: gemini.Close})
	}

	return router, closers, nil
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)}

	var h slog.Handler
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h).With("service", "autoflow")
	slog.SetDefault(logger)
	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type routes struct {
	base        *handler.Handler
	health      *handler.HealthHandler
	metrics     *handler.MetricsHandler
	auth        *handler.AuthHandler
	automations *handler.AutomationHandler
	templates   *handler.TemplateHandler
	conversions *handler.ConversionHandler
	billing     *handler.BillingHandler
	stats       *handler.StatsHandler

	authCfg      middleware.AuthConfig
	rateLimitCfg middleware.RateLimitConfig
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(h routes, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{IsDevelopment: cfg.IsDevelopment()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))
	r.Use(middleware.CORS(corsCfg))

	r.Get("/healthz", h.health.Healthz)
	r.Get("/readyz", h.health.Readyz)
	r.Get("/metrics", h.metrics.Metrics)

	mountAPI(r, h)
	r.Route("/api", func(r chi.Router) {
		mountAPI(r, h)
	})

	r.NotFound(h.base.NotFound)
	r.MethodNotAllowed(h.base.MethodNotAllowed)

	return r
}

// mountAPI registers the public API on r.
func mountAPI(r chi.Router, h routes) {
	r.Get("/", h.stats.Stats)
	r.Get("/stats", h.stats.Stats)

	r.Get("/templates", h.templates.List)
	r.Get("/templates/{name}", h.templates.Get)
	r.Get("/templates/{name}/preview", h.templates.Preview)

	r.Post("/stripe/webhook", h.billing.Webhook)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireJSON)
		r.Post("/auth/register", h.auth.Register)
		r.Post("/auth/login", h.auth.Login)
		r.With(middleware.RateLimitGuest(h.rateLimitCfg)).
			Post("/generate-automation-guest", h.automations.GenerateGuest)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.authCfg))
		r.Use(middleware.RateLimitUser(h.rateLimitCfg))

		r.Get("/me", h.auth.Me)
		r.Get("/my-automations", h.automations.List)
		r.Get("/my-automations/{id}", h.automations.Get)
		r.Get("/my-conversions", h.conversions.List)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireJSON)
			r.Post("/generate-automation", h.automations.Generate)
			r.With(middleware.RequirePaid()).Post("/convert-blueprint", h.conversions.Convert)
			r.Post("/create-checkout-session", h.billing.CreateCheckoutSession)
		})
	})
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

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
