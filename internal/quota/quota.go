// Package quota decides whether a user may run another AI generation.
package quota

import (
	"errors"
	"fmt"

	"github.com/autoflow/autoflow/internal/model"
)

// ErrQuotaExceeded is matched by every *ExceededError.
var ErrQuotaExceeded = errors.New("automation quota exceeded")

// Limits maps a tier to the number of AI generations it allows.
type Limits map[model.Tier]int

// DefaultLimits returns the standard tier table.
func DefaultLimits() Limits {
	return Limits{
		model.TierFree:    1,
		model.TierPro:     5,
		model.TierCreator: 50,
	}
}

// Decision is the outcome of a quota check.
type Decision struct {
	Allowed   bool
	Remaining int
	Limit     int
}

// ExceededError names the tier and limit that blocked a generation.
type ExceededError struct {
	Tier  model.Tier
	Limit int
}

func (e *ExceededError) Error() string {
	return fmt.Sprintf("automation limit reached: %s plan allows %d automation(s), upgrade to generate more", e.Tier, e.Limit)
}

// Is lets errors.Is match ErrQuotaExceeded.
func (e *ExceededError) Is(target error) bool {
	return target == ErrQuotaExceeded
}

// Policy applies a Limits table. The zero value denies everything.
type Policy struct {
	limits Limits
}

// NewPolicy creates a Policy. A nil table falls back to DefaultLimits.
func NewPolicy(limits Limits) *Policy {
	if limits == nil {
		limits = DefaultLimits()
	}
	copied := make(Limits, len(limits))
	for tier, limit := range limits {
		copied[tier] = limit
	}
	return &Policy{limits: copied}
}

// Limit returns the generation limit for a tier. Unknown tiers get 0.
func (p *Policy) Limit(tier model.Tier) int {
	return p.limits[tier]
}

// Check reports whether a user on tier who has used `used` generations may run one more.
func (p *Policy) Check(tier model.Tier, used int) Decision {
	limit := p.Limit(tier)
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   used < limit,
		Remaining: remaining,
		Limit:     limit,
	}
}

// Exceeded builds the error returned when Check denies a generation.
func (p *Policy) Exceeded(tier model.Tier) *ExceededError {
	return &ExceededError{Tier: tier, Limit: p.Limit(tier)}
}

// CanConvert reports whether the tier may use the blueprint converter.
func (p *Policy) CanConvert(tier model.Tier) bool {
	return tier.IsPaid()
}
