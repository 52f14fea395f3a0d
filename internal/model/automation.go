package model

import "time"

// Automation is a generated (or template-sourced) automation.
// Records are created once and never modified.
type Automation struct {
	ID                string    `json:"id"`
	UserID            *string   `json:"user_id"`
	GuestEmail        string    `json:"-"`
	TaskDescription   string    `json:"task_description"`
	Platform          Platform  `json:"platform"`
	AIModel           AIModel   `json:"ai_model"`
	Summary           string    `json:"automation_summary"`
	RequiredTools     []string  `json:"required_tools"`
	WorkflowSteps     []string  `json:"workflow_steps"`
	AutomationJSON    string    `json:"automation_json"`
	SetupInstructions string    `json:"setup_instructions"`
	BonusContent      *string   `json:"bonus_content"`
	IsTemplate        bool      `json:"is_template"`
	TemplateID        *string   `json:"template_id"`
	CreatedAt         time.Time `json:"created_at"`
}

// IsGuest reports whether the automation was generated without an account.
func (a *Automation) IsGuest() bool {
	return a.UserID == nil
}

// LeadSourceGuestAutomation tags leads captured from guest generation.
const LeadSourceGuestAutomation = "guest_automation"

// Lead is a marketing record captured from a guest generation.
type Lead struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	TaskDescription string    `json:"task_description"`
	Platform        Platform  `json:"platform"`
	AIModel         AIModel   `json:"ai_model"`
	Source          string    `json:"source"`
	CreatedAt       time.Time `json:"created_at"`
}

// Conversion is a blueprint translated from one platform to the other.
type Conversion struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	SourcePlatform  Platform  `json:"source_platform"`
	TargetPlatform  Platform  `json:"target_platform"`
	AIModel         AIModel   `json:"ai_model"`
	OriginalJSON    string    `json:"original_json"`
	ConvertedJSON   string    `json:"converted_json"`
	ConversionNotes string    `json:"conversion_notes"`
	CreatedAt       time.Time `json:"created_at"`
}

// Stats are the public counters shown on the landing page.
type Stats struct {
	TotalAutomations int64   `json:"total_automations"`
	TotalLeads       int64   `json:"total_leads"`
	TotalUsers       int64   `json:"total_users"`
	SatisfactionRate float64 `json:"satisfaction_rate"`
}
