package dto

import "github.com/autoflow/autoflow/internal/catalog"

// TemplateListResponse is the body of GET /templates.
type TemplateListResponse struct {
	Templates []catalog.Summary `json:"templates"`
}
