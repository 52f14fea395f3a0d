// Command set-tier changes a user's subscription tier without going through
// Stripe, for comped accounts and local testing.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/autoflow/autoflow/internal/model"
	"github.com/autoflow/autoflow/internal/repository"
)

type output struct {
	UserID          string     `json:"user_id"`
	Email           string     `json:"email"`
	PreviousTier    model.Tier `json:"previous_tier"`
	Tier            model.Tier `json:"tier"`
	AutomationsUsed int        `json:"automations_used"`
}

func main() {
	var (
		databaseURL = flag.String("database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection string")
		email       = flag.String("email", "", "Email of the account to change")
		tierInput   = flag.String("tier", string(model.TierPro), "Tier to set (free, pro, creator)")
		format      = flag.String("format", "plain", "Output format: plain or json")
	)
	flag.Parse()

	if *databaseURL == "" {
		fmt.Fprintln(os.Stderr, "DATABASE_URL is required")
		os.Exit(1)
	}
	if strings.TrimSpace(*email) == "" {
		fmt.Fprintln(os.Stderr, "-email is required")
		os.Exit(1)
	}

	tier := model.Tier(strings.ToLower(strings.TrimSpace(*tierInput)))
	if !tier.IsValid() {
		fmt.Fprintf(os.Stderr, "invalid tier %q; use free, pro or creator\n", *tierInput)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	repo, err := repository.New(ctx, *databaseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "connect database:", err)
		os.Exit(1)
	}
	defer repo.Close()

	user, err := repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(*email)))
	if err != nil {
		fmt.Fprintln(os.Stderr, "find user:", err)
		os.Exit(1)
	}

	if err := repo.SetUserTier(ctx, user.ID, tier); err != nil {
		fmt.Fprintln(os.Stderr, "set tier:", err)
		os.Exit(1)
	}

	out := output{
		UserID:          user.ID,
		Email:           user.Email,
		PreviousTier:    user.Tier,
		Tier:            tier,
		AutomationsUsed: user.AutomationsUsed,
	}

	switch strings.ToLower(*format) {
	case "plain":
		fmt.Printf("%s: %s -> %s\n", out.Email, out.PreviousTier, out.Tier)
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
	default:
		fmt.Fprintln(os.Stderr, "invalid format; use plain or json")
		os.Exit(1)
	}
}
