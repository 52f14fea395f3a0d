package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/autoflow/autoflow/internal/metrics"
	"github.com/autoflow/autoflow/internal/model"
)

// DefaultTimeout bounds a single model call.
const DefaultTimeout = 60 * time.Second

// Router dispatches requests to the client configured for each model.
// Calls are not retried.
type Router struct {
	clients map[model.AIModel]Completer
	timeout time.Duration
	metrics metrics.Recorder
}

// NewRouter creates an empty Router.
func NewRouter(timeout time.Duration, recorder metrics.Recorder) *Router {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Router{
		clients: make(map[model.AIModel]Completer),
		timeout: timeout,
		metrics: recorder,
	}
}

// Register sets the client for a model. It is not safe to call after serving starts.
func (r *Router) Register(m model.AIModel, c Completer) {
	r.clients[m] = c
}

// Available reports whether a client is configured for the model.
func (r *Router) Available(m model.AIModel) bool {
	_, ok := r.clients[m]
	return ok
}

// Complete runs req against the model's client within the router timeout.
func (r *Router) Complete(ctx context.Context, m model.AIModel, req Request) (string, error) {
	c, ok := r.clients[m]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrModelUnavailable, m)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	text, err := c.Complete(ctx, req)
	r.metrics.ObserveLLMDuration(string(m), time.Since(start))
	if err != nil {
		r.metrics.IncLLMError(string(m))
		return "", fmt.Errorf("%w: %s: %v", ErrUpstream, m, err)
	}
	if strings.TrimSpace(text) == "" {
		r.metrics.IncLLMError(string(m))
		return "", fmt.Errorf("%w: %s: empty response", ErrUpstream, m)
	}
	return text, nil
}
