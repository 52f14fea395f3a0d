package dto

// GenerateRequest is the body of both generation endpoints. UserEmail is
// required on the guest route and ignored otherwise.
type GenerateRequest struct {
	TaskDescription string `json:"task_description"`
	Platform        string `json:"platform"`
	AIModel         string `json:"ai_model"`
	UserEmail       string `json:"user_email"`
}

// ConvertRequest is the body of POST /convert-blueprint.
type ConvertRequest struct {
	BlueprintJSON  string `json:"blueprint_json"`
	SourcePlatform string `json:"source_platform"`
	TargetPlatform string `json:"target_platform"`
	AIModel        string `json:"ai_model"`
}
