package repository

import (
	"context"
	"fmt"

	"github.com/autoflow/autoflow/internal/model"
)

// ConversionListLimit caps conversion history reads.
const ConversionListLimit = 50

// CreateConversion stores a converted blueprint.
func (r *Repository) CreateConversion(ctx context.Context, c *model.Conversion) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO conversions (
			id, user_id, source_platform, target_platform, ai_model,
			original_json, converted_json, conversion_notes, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		c.ID,
		c.UserID,
		c.SourcePlatform,
		c.TargetPlatform,
		c.AIModel,
		c.OriginalJSON,
		c.ConvertedJSON,
		c.ConversionNotes,
		c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create conversion: %w", err)
	}
	return nil
}

// ListConversionsByUser returns a user's newest conversions first.
func (r *Repository) ListConversionsByUser(ctx context.Context, userID string) ([]*model.Conversion, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, source_platform, target_platform, ai_model,
		       original_json, converted_json, conversion_notes, created_at
		FROM conversions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, ConversionListLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversions: %w", err)
	}
	defer rows.Close()

	conversions := make([]*model.Conversion, 0)
	for rows.Next() {
		var c model.Conversion
		if err := rows.Scan(
			&c.ID,
			&c.UserID,
			&c.SourcePlatform,
			&c.TargetPlatform,
			&c.AIModel,
			&c.OriginalJSON,
			&c.ConvertedJSON,
			&c.ConversionNotes,
			&c.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan conversion: %w", err)
		}
		conversions = append(conversions, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate conversions: %w", err)
	}
	return conversions, nil
}
