// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
type Recorder interface {
	// Generation metrics
	IncGeneration(source string) // source: "ai" or "template"
	IncGenerationFailed(reason string)
	IncQuotaRejected()

	// Converter metrics
	IncConversion(status string) // status: "success" or "failed"

	// Guest lead capture
	IncLead(status string) // status: "captured" or "dropped"

	// Upstream model calls
	ObserveLLMDuration(model string, duration time.Duration)
	IncLLMError(model string)

	IncRateLimited()
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Generation sources.
const (
	SourceAI       = "ai"
	SourceTemplate = "template"
)
