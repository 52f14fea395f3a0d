package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/service"
)

// Accounts registers and signs in users.
type Accounts interface {
	Register(ctx context.Context, email, password string) (*service.Session, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
}

// LimitLookup resolves a tier's generation limit.
type LimitLookup interface {
	Limit(tier model.Tier) int
}

// AuthHandler serves registration, login and the current account.
type AuthHandler struct {
	accounts Accounts
	limits   LimitLookup
	logger   *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(accounts Accounts, limits LimitLookup, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		accounts: accounts,
		limits:   limits,
		logger:   loggerOrDiscard(logger).With("component", "auth_handler"),
	}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.accounts.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	h.logger.Info("user registered", "user_id", sess.User.ID)
	writeJSON(w, http.StatusOK, h.tokenResponse(sess))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.CredentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	sess, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, h.tokenResponse(sess))
}

// Me handles GET /me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, dto.NewUserResponse(user, h.limits.Limit(user.Tier)))
}

func (h *AuthHandler) tokenResponse(sess *service.Session) dto.TokenResponse {
	return dto.TokenResponse{
		AccessToken: sess.AccessToken,
		TokenType:   "bearer",
		ExpiresAt:   sess.ExpiresAt,
		User:        dto.NewUserResponse(sess.User, h.limits.Limit(sess.User.Tier)),
	}
}
