package quota

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/autoflow/autoflow/internal/model"
)

func TestPolicy_Check(t *testing.T) {
	t.Parallel()

	p := NewPolicy(nil)

	testCases := []struct {
		name      string
		tier      model.Tier
		used      int
		allowed   bool
		remaining int
		limit     int
	}{
		{"free unused", model.TierFree, 0, true, 1, 1},
		{"free at limit", model.TierFree, 1, false, 0, 1},
		{"pro below limit", model.TierPro, 4, true, 1, 5},
		{"pro at limit", model.TierPro, 5, false, 0, 5},
		{"creator unused", model.TierCreator, 0, true, 50, 50},
		{"creator over limit", model.TierCreator, 70, false, 0, 50},
		{"unknown tier", model.Tier("enterprise"), 0, false, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			d := p.Check(tc.tier, tc.used)
			if d.Allowed != tc.allowed || d.Remaining != tc.remaining || d.Limit != tc.limit {
				t.Errorf("Check(%s, %d) = %+v, want allowed=%v remaining=%d limit=%d",
					tc.tier, tc.used, d, tc.allowed, tc.remaining, tc.limit)
			}
		})
	}
}

func TestPolicy_ExactlyLimitGenerations(t *testing.T) {
	t.Parallel()

	p := NewPolicy(nil)
	for tier, limit := range DefaultLimits() {
		used := 0
		for p.Check(tier, used).Allowed {
			used++
		}
		if used != limit {
			t.Errorf("tier %s allowed %d generations, want %d", tier, used, limit)
		}
	}
}

func TestPolicy_InjectedLimits(t *testing.T) {
	t.Parallel()

	limits := Limits{model.TierFree: 3}
	p := NewPolicy(limits)
	limits[model.TierFree] = 0

	if !p.Check(model.TierFree, 2).Allowed {
		t.Error("expected injected limit of 3 to allow a third generation")
	}
	if p.Limit(model.TierPro) != 0 {
		t.Error("tiers missing from the table should have limit 0")
	}
}

func TestExceededError(t *testing.T) {
	t.Parallel()

	err := error(NewPolicy(nil).Exceeded(model.TierPro))

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Fatal("expected errors.Is(err, ErrQuotaExceeded)")
	}
	wrapped := fmt.Errorf("generate: %w", err)
	var exceeded *ExceededError
	if !errors.As(wrapped, &exceeded) {
		t.Fatal("expected errors.As to find *ExceededError")
	}
	if exceeded.Limit != 5 {
		t.Errorf("Limit = %d, want 5", exceeded.Limit)
	}
	msg := err.Error()
	if !strings.Contains(msg, "pro") || !strings.Contains(msg, "5") {
		t.Errorf("message %q must name tier and limit", msg)
	}
}

func TestPolicy_CanConvert(t *testing.T) {
	t.Parallel()

	p := NewPolicy(nil)
	if p.CanConvert(model.TierFree) {
		t.Error("free tier must not convert")
	}
	if !p.CanConvert(model.TierPro) || !p.CanConvert(model.TierCreator) {
		t.Error("paid tiers must convert")
	}
}
