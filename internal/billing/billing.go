// Package billing sells paid tiers through Stripe Checkout and applies subscription events.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"
	"github.com/stripe/stripe-go/v79/customer"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/repository"
)

// Billing errors.
var (
	ErrNotConfigured    = errors.New("billing is not configured")
	ErrInvalidTier      = errors.New("tier must be pro or creator")
	ErrInvalidSignature = errors.New("webhook signature verification failed")
	ErrInvalidEvent     = errors.New("invalid webhook event")
)

// Stripe event types the webhook acts on.
const (
	eventCheckoutCompleted   = "checkout.session.completed"
	eventSubscriptionDeleted = "customer.subscription.deleted"
)

// UserStore is the slice of the repository billing needs.
type UserStore interface {
	GetUserByStripeCustomerID(ctx context.Context, customerID string) (*model.User, error)
	SetUserTier(ctx context.Context, id string, tier model.Tier) error
	SetStripeCustomerID(ctx context.Context, id, customerID string) error
}

// Config holds Stripe credentials and the checkout redirect base.
type Config struct {
	SecretKey     string
	WebhookSecret string
	PriceIDs      map[model.Tier]string
	FrontendURL   string
}

// Service creates checkout sessions and handles webhooks.
type Service struct {
	cfg    Config
	users  UserStore
	logger *slog.Logger

	newCustomer func(*stripe.CustomerParams) (*stripe.Customer, error)
	newSession  func(*stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

// New creates a billing Service and sets the Stripe API key.
func New(cfg Config, users UserStore, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if cfg.SecretKey != "" {
		stripe.Key = cfg.SecretKey
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	return &Service{
		cfg:         cfg,
		users:       users,
		logger:      logger.With("component", "billing"),
		newCustomer: customer.New,
		newSession:  session.New,
	}
}

// Enabled reports whether a Stripe secret key is configured.
func (s *Service) Enabled() bool {
	return s.cfg.SecretKey != ""
}

// CreateSession starts a subscription checkout for tier and returns its URL.
func (s *Service) CreateSession(ctx context.Context, user *model.User, tierName string) (string, error) {
	if !s.Enabled() {
		return "", ErrNotConfigured
	}

	tier := model.Tier(strings.ToLower(strings.TrimSpace(tierName)))
	if !tier.IsPaid() {
		return "", ErrInvalidTier
	}
	priceID := s.cfg.PriceIDs[tier]
	if priceID == "" {
		return "", fmt.Errorf("%w: no price for %s", ErrNotConfigured, tier)
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:     stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		Customer: stripe.String(customerID),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(priceID),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(s.cfg.FrontendURL + "/success?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.FrontendURL + "/pricing"),
		Metadata: map[string]string{
			"tier":       string(tier),
			"user_id":    user.ID,
			"user_email": user.Email,
		},
	}
	params.Context = ctx

	sess, err := s.newSession(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return sess.URL, nil
}

// ensureCustomer returns the user's Stripe customer, creating and storing one if needed.
func (s *Service) ensureCustomer(ctx context.Context, user *model.User) (string, error) {
	if user.StripeCustomerID != "" {
		return user.StripeCustomerID, nil
	}

	params := &stripe.CustomerParams{
		Email: stripe.String(user.Email),
		Metadata: map[string]string{
			"user_id": user.ID,
		},
	}
	params.Context = ctx

	cust, err := s.newCustomer(params)
	if err != nil {
		return "", fmt.Errorf("failed to create stripe customer: %w", err)
	}
	if err := s.users.SetStripeCustomerID(ctx, user.ID, cust.ID); err != nil {
		return "", fmt.Errorf("failed to store stripe customer: %w", err)
	}
	user.StripeCustomerID = cust.ID
	return cust.ID, nil
}

// HandleWebhook verifies a Stripe event and applies tier changes. Unhandled event types are ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if !s.Enabled() || s.cfg.WebhookSecret == "" {
		return ErrNotConfigured
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, s.cfg.WebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case eventCheckoutCompleted:
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return s.applyCheckout(ctx, &sess)
	case eventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidEvent, err)
		}
		return s.applyCancellation(ctx, &sub)
	default:
		s.logger.Debug("ignoring stripe event", "type", event.Type, "id", event.ID)
		return nil
	}
}

func (s *Service) applyCheckout(ctx context.Context, sess *stripe.CheckoutSession) error {
	tier := model.Tier(sess.Metadata["tier"])
	if !tier.IsPaid() {
		return fmt.Errorf("%w: checkout session without a paid tier", ErrInvalidEvent)
	}

	var customerID string
	if sess.Customer != nil {
		customerID = sess.Customer.ID
	}

	userID := sess.Metadata["user_id"]
	if userID == "" {
		if customerID == "" {
			return fmt.Errorf("%w: checkout session without user or customer", ErrInvalidEvent)
		}
		user, err := s.users.GetUserByStripeCustomerID(ctx, customerID)
		if err != nil {
			return fmt.Errorf("failed to resolve customer: %w", err)
		}
		userID = user.ID
	}

	if err := s.users.SetUserTier(ctx, userID, tier); err != nil {
		return fmt.Errorf("failed to upgrade user: %w", err)
	}
	s.logger.Info("subscription started", "user_id", userID, "tier", tier)
	return nil
}

func (s *Service) applyCancellation(ctx context.Context, sub *stripe.Subscription) error {
	if sub.Customer == nil || sub.Customer.ID == "" {
		return fmt.Errorf("%w: subscription without customer", ErrInvalidEvent)
	}

	user, err := s.users.GetUserByStripeCustomerID(ctx, sub.Customer.ID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.logger.Warn("subscription deleted for unknown customer", "customer_id", sub.Customer.ID)
			return nil
		}
		return fmt.Errorf("failed to resolve customer: %w", err)
	}

	if err := s.users.SetUserTier(ctx, user.ID, model.TierFree); err != nil {
		return fmt.Errorf("failed to downgrade user: %w", err)
	}
	s.logger.Info("subscription ended", "user_id", user.ID)
	return nil
}
