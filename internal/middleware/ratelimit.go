package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/cache"
	"github.com/autoflow/autoflow/internal/metrics"
	"github.com/autoflow/autoflow/internal/model"
)

// RateLimiter checks token buckets. Implementations fail open.
type RateLimiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, ratePerMinute, burst int) *cache.RateLimitResult
	CheckGuestRateLimit(ctx context.Context, ip string, ratePerMinute, burst int) *cache.RateLimitResult
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger   *slog.Logger
	Limiter  RateLimiter
	Recorder metrics.Recorder
	Enabled  bool
	// Guest limits apply per client IP on unauthenticated generation.
	GuestRPM   int
	GuestBurst int
}

func (cfg RateLimitConfig) recorder() metrics.Recorder {
	if cfg.Recorder == nil {
		return metrics.NewNoop()
	}
	return cfg.Recorder
}

// RateLimitUser returns middleware that rate limits requests per user, using the tier's limits.
// Must be applied after Auth middleware.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	rec := cfg.recorder()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			user := auth.UserFromContext(r.Context())
			if user == nil {
				// No user - should not happen if Auth middleware ran first
				next.ServeHTTP(w, r)
				return
			}

			tierConfig := model.TierConfigs[user.Tier]
			result := cfg.Limiter.CheckUserRateLimit(r.Context(), user.ID, tierConfig.RequestsPerMinute, tierConfig.Burst)
			if result.Degraded {
				cfg.Logger.Error("rate limit check failed, allowing request",
					slog.String("user_id", user.ID),
					slog.String("request_id", GetRequestID(r.Context())),
				)
			}

			setRateLimitHeaders(w, tierConfig.RequestsPerMinute, result.Remaining, result.ResetAt)

			if !result.Allowed {
				rec.IncRateLimited()
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("user_id", user.ID),
					slog.String("type", "user"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RateLimitGuest returns middleware that rate limits requests per client IP.
// Used for guest generation, which calls a paid model without an account.
func RateLimitGuest(cfg RateLimitConfig) func(http.Handler) http.Handler {
	rec := cfg.recorder()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			result := cfg.Limiter.CheckGuestRateLimit(r.Context(), ip, cfg.GuestRPM, cfg.GuestBurst)
			if result.Degraded {
				cfg.Logger.Error("guest rate limit check failed, allowing request",
					slog.String("request_id", GetRequestID(r.Context())),
				)
			}

			setRateLimitHeaders(w, cfg.GuestRPM, result.Remaining, result.ResetAt)

			if !result.Allowed {
				rec.IncRateLimited()
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", "guest"),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int64("retry_after_seconds", int64(result.RetryAfter.Seconds())),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeRateLimitError(w, result.RetryAfter)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders sets standard rate limit response headers.
func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	if limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
	}
}

// writeRateLimitError writes a 429 Too Many Requests response.
func writeRateLimitError(w http.ResponseWriter, retryAfter time.Duration) {
	seconds := int(retryAfter.Seconds())
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeError(w, http.StatusTooManyRequests, "RATE_LIMITED",
		fmt.Sprintf("Rate limit exceeded. Retry after %d seconds.", seconds))
}

// clientIP returns the request's remote host. chi's RealIP middleware has
// already replaced RemoteAddr with the forwarded client address.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
