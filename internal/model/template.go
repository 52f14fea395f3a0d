package model

// Template is a pre-authored automation served verbatim instead of generated.
type Template struct {
	ID                string   `json:"id"`
	Name              string   `json:"name"`
	Category          string   `json:"category"`
	Description       string   `json:"description"`
	Tags              []string `json:"tags"`
	Summary           string   `json:"automation_summary"`
	RequiredTools     []string `json:"required_tools"`
	WorkflowSteps     []string `json:"workflow_steps"`
	SetupInstructions string   `json:"setup_instructions"`
	BonusContent      string   `json:"bonus_content,omitempty"`
	MakeJSON          string   `json:"make_json"`
	N8nJSON           string   `json:"n8n_json"`
}

// Blueprint returns the pre-authored JSON body for the given platform.
func (t *Template) Blueprint(p Platform) string {
	if p == PlatformN8n {
		return t.N8nJSON
	}
	return t.MakeJSON
}
