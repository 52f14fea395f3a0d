// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"

	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/quota"
)

// minJWTSecretLen is enforced outside development.
const minJWTSecretLen = 32

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"APP_PORT" envDefault:"8080"`

	// Database (PostgreSQL)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Cache (Redis)
	RedisURL string `env:"REDIS_URL,required,notEmpty"`

	// Front end origin used for checkout redirects
	FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts. WriteTimeout must cover a full model call.
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"90s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// Bearer tokens
	JWTSecret string        `env:"JWT_SECRET,required,notEmpty"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"24h"`

	// Model providers. A model whose key is empty is reported unavailable.
	OpenAIAPIKey     string        `env:"OPENAI_API_KEY"`
	AnthropicAPIKey  string        `env:"ANTHROPIC_API_KEY"`
	AnthropicBaseURL string        `env:"ANTHROPIC_BASE_URL" envDefault:"https://api.anthropic.com/v1"`
	GeminiAPIKey     string        `env:"GEMINI_API_KEY"`
	AITimeout        time.Duration `env:"AI_TIMEOUT" envDefault:"60s"`

	// Generation allowance per tier, e.g. "free:1,pro:5,creator:50".
	// Tiers not listed keep their default.
	TierLimits map[string]int `env:"TIER_LIMITS" envKeyValSeparator:":"`

	// Rate limiting
	RateLimitEnabled    bool `env:"RATE_LIMIT_ENABLED" envDefault:"true"`
	RateLimitGuestRPM   int  `env:"RATE_LIMIT_GUEST_RPM" envDefault:"10"`
	RateLimitGuestBurst int  `env:"RATE_LIMIT_GUEST_BURST" envDefault:"3"`

	// Billing (Stripe). Billing routes answer 503 when the secret key is empty.
	StripeSecretKey      string `env:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret  string `env:"STRIPE_WEBHOOK_SECRET"`
	StripePriceIDPro     string `env:"STRIPE_PRICE_ID_PRO"`
	StripePriceIDCreator string `env:"STRIPE_PRICE_ID_CREATOR"`

	// Public stats
	StatsCacheTTL    time.Duration `env:"STATS_CACHE_TTL" envDefault:"60s"`
	SatisfactionRate float64       `env:"SATISFACTION_RATE" envDefault:"4.9"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// BillingEnabled reports whether Stripe is configured.
func (c *Config) BillingEnabled() bool {
	return c.StripeSecretKey != ""
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// QuotaLimits merges TIER_LIMITS over the default allowance table.
func (c *Config) QuotaLimits() (quota.Limits, error) {
	limits := quota.DefaultLimits()
	for name, n := range c.TierLimits {
		tier := model.Tier(strings.ToLower(strings.TrimSpace(name)))
		if !tier.IsValid() {
			return nil, fmt.Errorf("TIER_LIMITS: unknown tier %q", name)
		}
		if n < 0 {
			return nil, fmt.Errorf("TIER_LIMITS: negative limit for %s", tier)
		}
		limits[tier] = n
	}
	return limits, nil
}

// StripePriceIDs maps paid tiers to their Stripe price IDs.
func (c *Config) StripePriceIDs() map[model.Tier]string {
	return map[model.Tier]string{
		model.TierPro:     c.StripePriceIDPro,
		model.TierCreator: c.StripePriceIDCreator,
	}
}

// Validate checks cross-field constraints env tags cannot express.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET must not be empty"))
	} else if !c.IsDevelopment() && len(c.JWTSecret) < minJWTSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters outside development", minJWTSecretLen))
	}
	if c.AITimeout <= 0 {
		errs = append(errs, errors.New("AI_TIMEOUT must be positive"))
	}
	if c.WriteTimeout <= c.AITimeout {
		errs = append(errs, errors.New("WRITE_TIMEOUT must exceed AI_TIMEOUT"))
	}
	if c.BillingEnabled() && c.StripeWebhookSecret == "" {
		errs = append(errs, errors.New("STRIPE_WEBHOOK_SECRET is required when STRIPE_SECRET_KEY is set"))
	}
	if c.SatisfactionRate < 0 || c.SatisfactionRate > 5 {
		errs = append(errs, errors.New("SATISFACTION_RATE must be between 0 and 5"))
	}
	if _, err := c.QuotaLimits(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Load parses environment variables and returns a validated Config.
// Returns an error if required variables are missing or empty.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
