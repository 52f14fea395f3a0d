package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

func (n *NoopRecorder) IncGeneration(string) {}
func (n *NoopRecorder) IncGenerationFailed(string) {}
func (n *NoopRecorder) IncQuotaRejected() {}
func (n *NoopRecorder) IncConversion(string) {}
func (n *NoopRecorder) IncLead(string) {}
func (n *NoopRecorder) ObserveLLMDuration(string, time.Duration) {}
func (n *NoopRecorder) IncLLMError(string) {}
func (n *NoopRecorder) IncRateLimited() {}
