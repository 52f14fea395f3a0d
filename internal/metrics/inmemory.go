package metrics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	GenerationsAI       uint64
	GenerationsTemplate uint64
	GenerationFailures  map[string]uint64
	QuotaRejections     uint64
	ConversionsSuccess  uint64
	ConversionsFailed   uint64
	LeadsCaptured       uint64
	LeadsDropped        uint64
	RateLimited         uint64
	LLM                 []LLMStats
}

// LLMStats aggregates upstream calls for one model.
type LLMStats struct {
	Model           string
	Calls           uint64
	Errors          uint64
	DurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory. It backs the /metrics endpoint.
type InMemoryRecorder struct {
	generationsAI       uint64
	generationsTemplate uint64
	quotaRejections     uint64
	conversionsSuccess  uint64
	conversionsFailed   uint64
	leadsCaptured       uint64
	leadsDropped        uint64
	rateLimited         uint64

	mu       sync.Mutex
	failures map[string]uint64
	llm      map[string]*LLMStats
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		failures: make(map[string]uint64),
		llm:      make(map[string]*LLMStats),
	}
}

// Snapshot returns a copy of the counters. LLM stats are sorted by model.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	snap := Snapshot{
		GenerationsAI:       atomic.LoadUint64(&m.generationsAI),
		GenerationsTemplate: atomic.LoadUint64(&m.generationsTemplate),
		QuotaRejections:     atomic.LoadUint64(&m.quotaRejections),
		ConversionsSuccess:  atomic.LoadUint64(&m.conversionsSuccess),
		ConversionsFailed:   atomic.LoadUint64(&m.conversionsFailed),
		LeadsCaptured:       atomic.LoadUint64(&m.leadsCaptured),
		LeadsDropped:        atomic.LoadUint64(&m.leadsDropped),
		RateLimited:         atomic.LoadUint64(&m.rateLimited),
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	snap.GenerationFailures = make(map[string]uint64, len(m.failures))
	for reason, n := range m.failures {
		snap.GenerationFailures[reason] = n
	}
	for _, s := range m.llm {
		snap.LLM = append(snap.LLM, *s)
	}
	sort.Slice(snap.LLM, func(i, j int) bool { return snap.LLM[i].Model < snap.LLM[j].Model })
	return snap
}

// IncGeneration counts a successful generation by source.
func (m *InMemoryRecorder) IncGeneration(source string) {
	if source == SourceTemplate {
		atomic.AddUint64(&m.generationsTemplate, 1)
		return
	}
	atomic.AddUint64(&m.generationsAI, 1)
}

// IncGenerationFailed counts a failed generation by reason.
func (m *InMemoryRecorder) IncGenerationFailed(reason string) {
	m.mu.Lock()
	m.failures[reason]++
	m.mu.Unlock()
}

// IncQuotaRejected increments the quota rejection counter.
func (m *InMemoryRecorder) IncQuotaRejected() {
	atomic.AddUint64(&m.quotaRejections, 1)
}

// IncConversion counts converter outcomes.
func (m *InMemoryRecorder) IncConversion(status string) {
	if status == "success" {
		atomic.AddUint64(&m.conversionsSuccess, 1)
		return
	}
	atomic.AddUint64(&m.conversionsFailed, 1)
}

// IncLead counts guest lead writes.
func (m *InMemoryRecorder) IncLead(status string) {
	if status == "captured" {
		atomic.AddUint64(&m.leadsCaptured, 1)
		return
	}
	atomic.AddUint64(&m.leadsDropped, 1)
}

// ObserveLLMDuration records one upstream call.
func (m *InMemoryRecorder) ObserveLLMDuration(model string, duration time.Duration) {
	m.mu.Lock()
	s := m.llmStats(model)
	s.Calls++
	s.DurationTotalNs += duration.Nanoseconds()
	m.mu.Unlock()
}

// IncLLMError counts a failed upstream call.
func (m *InMemoryRecorder) IncLLMError(model string) {
	m.mu.Lock()
	m.llmStats(model).Errors++
	m.mu.Unlock()
}

// IncRateLimited counts requests rejected by the rate limiter.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// llmStats must be called with mu held.
func (m *InMemoryRecorder) llmStats(model string) *LLMStats {
	s, ok := m.llm[model]
	if !ok {
		s = &LLMStats{Model: model}
		m.llm[model] = s
	}
	return s
}
