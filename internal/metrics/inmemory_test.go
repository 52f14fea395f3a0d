package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestInMemoryRecorder_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	m.IncGeneration(SourceAI)
	m.IncGeneration(SourceAI)
	m.IncGeneration(SourceTemplate)
	m.IncGenerationFailed("upstream")
	m.IncGenerationFailed("upstream")
	m.IncQuotaRejected()
	m.IncConversion("success")
	m.IncConversion("failed")
	m.IncLead("captured")
	m.IncLead("dropped")
	m.ObserveLLMDuration("gpt-4", 2*time.Second)
	m.ObserveLLMDuration("gemini-1.5-pro", time.Second)
	m.IncLLMError("gpt-4")

	snap := m.Snapshot()
	if snap.GenerationsAI != 2 || snap.GenerationsTemplate != 1 {
		t.Errorf("generations = %d/%d", snap.GenerationsAI, snap.GenerationsTemplate)
	}
	if snap.GenerationFailures["upstream"] != 2 {
		t.Errorf("failures = %v", snap.GenerationFailures)
	}
	if snap.QuotaRejections != 1 || snap.ConversionsSuccess != 1 || snap.ConversionsFailed != 1 {
		t.Errorf("unexpected snapshot: %+v", snap)
	}
	if snap.LeadsCaptured != 1 || snap.LeadsDropped != 1 {
		t.Errorf("leads = %d/%d", snap.LeadsCaptured, snap.LeadsDropped)
	}
	if len(snap.LLM) != 2 || snap.LLM[0].Model != "gemini-1.5-pro" {
		t.Fatalf("llm stats = %+v", snap.LLM)
	}
	gpt := snap.LLM[1]
	if gpt.Calls != 1 || gpt.Errors != 1 || gpt.DurationTotalNs != int64(2*time.Second) {
		t.Errorf("gpt-4 stats = %+v", gpt)
	}
}

func TestInMemoryRecorder_Concurrent(t *testing.T) {
	t.Parallel()

	m := NewInMemory()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.IncGeneration(SourceAI)
			m.ObserveLLMDuration("gpt-4", time.Millisecond)
		}()
	}
	wg.Wait()

	snap := m.Snapshot()
	if snap.GenerationsAI != 50 || snap.LLM[0].Calls != 50 {
		t.Errorf("snapshot = %+v", snap)
	}
}
