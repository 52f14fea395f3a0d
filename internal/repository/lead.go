package repository

import (
	"context"
	"fmt"

	"github.com/autoflow/autoflow/internal/model"
)

// CreateLead records a guest lead.
func (r *Repository) CreateLead(ctx context.Context, lead *model.Lead) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO leads (id, email, task_description, platform, ai_model, source, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`,
		lead.ID,
		lead.Email,
		lead.TaskDescription,
		lead.Platform,
		lead.AIModel,
		lead.Source,
		lead.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}
