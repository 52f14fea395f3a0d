package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/autoflow/autoflow/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	t.Parallel()

	rec := metrics.NewInMemory()
	rec.IncGeneration(metrics.SourceAI)
	rec.IncGeneration(metrics.SourceTemplate)
	rec.IncGenerationFailed("schema")
	rec.IncConversion("success")
	rec.IncLead("captured")
	rec.ObserveLLMDuration("gpt-4", 1500*time.Millisecond)

	h := NewMetricsHandler(rec)
	w := httptest.NewRecorder()
	h.Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	for _, want := range []string{
		`autoflow_generations_total{source="ai"} 1`,
		`autoflow_generations_total{source="template"} 1`,
		`autoflow_generation_failures_total{reason="schema"} 1`,
		`autoflow_conversions_total{status="success"} 1`,
		`autoflow_leads_total{status="captured"} 1`,
		`autoflow_llm_requests_total{model="gpt-4"} 1`,
		`autoflow_llm_duration_seconds_sum{model="gpt-4"} 1.500000`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\n%s", want, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	t.Parallel()

	w := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}
