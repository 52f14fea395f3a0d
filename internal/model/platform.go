package model

import (
	"errors"
	"fmt"
)

// ErrUnsupportedValue is returned when a platform or model identifier is unknown.
var ErrUnsupportedValue = errors.New("unsupported value")

// Platform identifies a no-code automation platform.
type Platform string

// Supported platforms. The string values are part of the public API.
const (
	PlatformMake Platform = "Make.com"
	PlatformN8n  Platform = "n8n"
)

// Platforms lists every supported platform.
var Platforms = []Platform{PlatformMake, PlatformN8n}

// ParsePlatform validates a platform identifier.
func ParsePlatform(s string) (Platform, error) {
	switch p := Platform(s); p {
	case PlatformMake, PlatformN8n:
		return p, nil
	}
	return "", fmt.Errorf("platform %q: %w", s, ErrUnsupportedValue)
}

// AIModel identifies an LLM used for generation.
type AIModel string

// Supported models.
const (
	ModelGPT4   AIModel = "gpt-4"
	ModelClaude AIModel = "claude-3-5-sonnet-20241022"
	ModelGemini AIModel = "gemini-1.5-pro"
)

// DefaultAIModel is used when a request omits ai_model.
const DefaultAIModel = ModelGPT4

// AIModels lists every supported model.
var AIModels = []AIModel{ModelGPT4, ModelClaude, ModelGemini}

// ParseAIModel validates a model identifier. Empty input yields DefaultAIModel.
func ParseAIModel(s string) (AIModel, error) {
	if s == "" {
		return DefaultAIModel, nil
	}
	switch m := AIModel(s); m {
	case ModelGPT4, ModelClaude, ModelGemini:
		return m, nil
	}
	return "", fmt.Errorf("ai_model %q: %w", s, ErrUnsupportedValue)
}
