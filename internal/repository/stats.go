package repository

import (
	"context"
	"fmt"

	"github.com/autoflow/autoflow/internal/model"
)

// Stats counts automations, leads and users. SatisfactionRate is left to the caller.
func (r *Repository) Stats(ctx context.Context) (*model.Stats, error) {
	var s model.Stats
	err := r.pool.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM automations),
			(SELECT COUNT(*) FROM leads),
			(SELECT COUNT(*) FROM users)
	`).Scan(&s.TotalAutomations, &s.TotalLeads, &s.TotalUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to count stats: %w", err)
	}
	return &s, nil
}
