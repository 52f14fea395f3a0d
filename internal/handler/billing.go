package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/autoflow/autoflow/internal/auth"
	"github.com/autoflow/autoflow/internal/billing"
	"github.com/autoflow/autoflow/internal/handler/dto"
	"github.com/autoflow/autoflow/internal/model"
)

// Billing starts checkouts and applies Stripe events.
type Billing interface {
	Enabled() bool
	CreateSession(ctx context.Context, user *model.User, tier string) (string, error)
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

// BillingHandler serves the subscription endpoints.
type BillingHandler struct {
	billing Billing
	logger  *slog.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(b Billing, logger *slog.Logger) *BillingHandler {
	return &BillingHandler{
		billing: b,
		logger:  loggerOrDiscard(logger).With("component", "billing_handler"),
	}
}

// CreateCheckoutSession handles POST /create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	user := auth.UserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}
	if !h.billing.Enabled() {
		respondError(w, r, h.logger, billing.ErrNotConfigured)
		return
	}

	var req dto.CheckoutRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	url, err := h.billing.CreateSession(r.Context(), user, req.Tier)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.CheckoutResponse{CheckoutURL: url})
}

// Webhook handles POST /stripe/webhook
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	if !h.billing.Enabled() {
		respondError(w, r, h.logger, billing.ErrNotConfigured)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "INVALID_REQUEST", "failed to read request body")
		return
	}

	if err := h.billing.HandleWebhook(r.Context(), payload, r.Header.Get("Stripe-Signature")); err != nil {
		respondError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.StatusResponse{Status: "ok"})
}
