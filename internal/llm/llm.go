// Package llm talks to the hosted language models that write automations.
package llm

import (
	"context"
	"errors"
)

// Gateway errors.
var (
	ErrUpstream         = errors.New("upstream model error")
	ErrModelUnavailable = errors.New("model not configured")
)

// Request is one completion call.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float32
}

// Completer returns the text a model produced for a request.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}
