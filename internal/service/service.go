// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/autoflow/autoflow/internal/llm"
)

// Service errors.
var (
	ErrValidation          = errors.New("validation failed")
	ErrUpstream            = errors.New("ai provider failed to produce a usable automation")
	ErrModelUnavailable    = errors.New("ai model is not configured")
	ErrAutomationNotFound  = errors.New("automation not found")
	ErrConversionForbidden = errors.New("blueprint conversion requires a paid plan")
	ErrSamePlatform        = errors.New("source and target platform must differ")
	ErrEmailExists         = errors.New("email already registered")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrUnauthorized        = errors.New("unauthorized")
)

func validationError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// upstreamError folds gateway failures into the service's sentinels.
func upstreamError(err error) error {
	if errors.Is(err, llm.ErrModelUnavailable) {
		return fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

// normalizeEmail lower-cases and validates an address. The domain must contain a dot.
func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" || strings.Count(email, "@") != 1 {
		return "", false
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", false
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	if !strings.Contains(domain, ".") || strings.HasPrefix(domain, ".") || strings.HasSuffix(domain, ".") {
		return "", false
	}
	return email, true
}

func newID() string {
	return ulid.Make().String()
}

// storedTime is t at the precision a TIMESTAMPTZ column keeps.
func storedTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
