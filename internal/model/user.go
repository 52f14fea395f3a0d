// Package model defines domain entities for the application.
package model

import "time"

// Tier is a subscription level.
type Tier string

// Subscription tiers.
const (
	TierFree    Tier = "free"
	TierPro     Tier = "pro"
	TierCreator Tier = "creator"
)

// ValidTiers contains all valid tier values.
var ValidTiers = []Tier{TierFree, TierPro, TierCreator}

// IsValid reports whether t is a known tier.
func (t Tier) IsValid() bool {
	switch t {
	case TierFree, TierPro, TierCreator:
		return true
	}
	return false
}

// IsPaid returns true for tiers bought through checkout.
func (t Tier) IsPaid() bool {
	return t == TierPro || t == TierCreator
}

// RateLimitConfig defines request rate parameters per tier.
type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

// TierConfigs maps tiers to their request rate limits on authenticated routes.
var TierConfigs = map[Tier]RateLimitConfig{
	TierFree:    {RequestsPerMinute: 30, Burst: 5},
	TierPro:     {RequestsPerMinute: 120, Burst: 20},
	TierCreator: {RequestsPerMinute: 600, Burst: 50},
}

// User represents an account holder.
type User struct {
	ID               string    `json:"id"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"` // Never serialize
	Tier             Tier      `json:"subscription_tier"`
	AutomationsUsed  int       `json:"automations_used"`
	StripeCustomerID string    `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
