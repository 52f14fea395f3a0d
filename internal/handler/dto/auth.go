package dto

import (
	"time"

	"github.com/autoflow/autoflow/internal/model"
)

// CredentialsRequest is the body of register and login.
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID               string     `json:"id"`
	Email            string     `json:"email"`
	SubscriptionTier model.Tier `json:"subscription_tier"`
	AutomationsUsed  int        `json:"automations_used"`
	AutomationsLimit int        `json:"automations_limit"`
	CreatedAt        time.Time  `json:"created_at"`
}

// NewUserResponse builds a UserResponse with the tier's generation limit.
func NewUserResponse(u *model.User, limit int) UserResponse {
	return UserResponse{
		ID:               u.ID,
		Email:            u.Email,
		SubscriptionTier: u.Tier,
		AutomationsUsed:  u.AutomationsUsed,
		AutomationsLimit: limit,
		CreatedAt:        u.CreatedAt,
	}
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        UserResponse `json:"user"`
}
