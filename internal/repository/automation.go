package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/autoflow/autoflow/internal/model"
)

// Common errors for automation repository operations.
var (
	ErrAutomationNotFound = errors.New("automation not found")
	ErrUsageLimitReached  = errors.New("usage limit reached")
)

// AutomationListLimit caps automation history reads.
const AutomationListLimit = 100

const automationColumns = `id, user_id, COALESCE(guest_email, ''), task_description, platform, ai_model,
	automation_summary, required_tools, workflow_steps, automation_json, setup_instructions,
	bonus_content, is_template, template_id, created_at`

const insertAutomation = `
	INSERT INTO automations (
		id, user_id, guest_email, task_description, platform, ai_model,
		automation_summary, required_tools, workflow_steps, automation_json, setup_instructions,
		bonus_content, is_template, template_id, created_at
	) VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
`

func automationArgs(a *model.Automation) []any {
	return []any{
		a.ID,
		a.UserID,
		a.GuestEmail,
		a.TaskDescription,
		a.Platform,
		a.AIModel,
		a.Summary,
		pq.Array(nonNil(a.RequiredTools)),
		pq.Array(nonNil(a.WorkflowSteps)),
		a.AutomationJSON,
		a.SetupInstructions,
		a.BonusContent,
		a.IsTemplate,
		a.TemplateID,
		a.CreatedAt,
	}
}

// CreateAutomation inserts an automation without touching usage counters.
func (r *Repository) CreateAutomation(ctx context.Context, a *model.Automation) error {
	if _, err := r.pool.Exec(ctx, insertAutomation, automationArgs(a)...); err != nil {
		return fmt.Errorf("failed to create automation: %w", err)
	}
	return nil
}

// CreateAutomationWithUsage increments the owner's usage counter and inserts the
// automation in one transaction. The increment only applies while usage is
// below limit; otherwise nothing is written and ErrUsageLimitReached is returned.
func (r *Repository) CreateAutomationWithUsage(ctx context.Context, a *model.Automation, limit int) error {
	if a.UserID == nil {
		return fmt.Errorf("failed to create automation: usage requires an owner")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, `
		UPDATE users
		SET automations_used = automations_used + 1, updated_at = NOW()
		WHERE id = $1 AND automations_used < $2
	`, *a.UserID, limit)
	if err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUsageLimitReached
	}

	if _, err := tx.Exec(ctx, insertAutomation, automationArgs(a)...); err != nil {
		return fmt.Errorf("failed to create automation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit automation: %w", err)
	}
	return nil
}

// ListAutomationsByUser returns a user's newest automations first.
func (r *Repository) ListAutomationsByUser(ctx context.Context, userID string) ([]*model.Automation, error) {
	query := `SELECT ` + automationColumns + `
		FROM automations
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, userID, AutomationListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list automations: %w", err)
	}
	defer rows.Close()

	automations := make([]*model.Automation, 0)
	for rows.Next() {
		a, err := scanAutomation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan automation: %w", err)
		}
		automations = append(automations, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate automations: %w", err)
	}
	return automations, nil
}

// GetAutomationForUser reads one automation owned by userID.
func (r *Repository) GetAutomationForUser(ctx context.Context, userID, id string) (*model.Automation, error) {
	query := `SELECT ` + automationColumns + ` FROM automations WHERE id = $1 AND user_id = $2`

	a, err := scanAutomation(r.pool.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAutomationNotFound
		}
		return nil, fmt.Errorf("failed to get automation: %w", err)
	}
	return a, nil
}

func scanAutomation(row pgx.Row) (*model.Automation, error) {
	var (
		a     model.Automation
		tools []string
		steps []string
	)
	err := row.Scan(
		&a.ID,
		&a.UserID,
		&a.GuestEmail,
		&a.TaskDescription,
		&a.Platform,
		&a.AIModel,
		&a.Summary,
		pq.Array(&tools),
		pq.Array(&steps),
		&a.AutomationJSON,
		&a.SetupInstructions,
		&a.BonusContent,
		&a.IsTemplate,
		&a.TemplateID,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.RequiredTools = nonNil(tools)
	a.WorkflowSteps = nonNil(steps)
	return &a, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
