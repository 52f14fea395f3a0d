package handler

import (
	"fmt"
	"net/http"
	"sort"

	"github.com/autoflow/autoflow/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "autoflow_generations_total{source=\"ai\"} %d\n", snap.GenerationsAI)
	writeMetric(w, "autoflow_generations_total{source=\"template\"} %d\n", snap.GenerationsTemplate)

	reasons := make([]string, 0, len(snap.GenerationFailures))
	for reason := range snap.GenerationFailures {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		writeMetric(w, "autoflow_generation_failures_total{reason=%q} %d\n", reason, snap.GenerationFailures[reason])
	}

	writeMetric(w, "autoflow_quota_rejections_total %d\n", snap.QuotaRejections)

	writeMetric(w, "autoflow_conversions_total{status=\"success\"} %d\n", snap.ConversionsSuccess)
	writeMetric(w, "autoflow_conversions_total{status=\"failed\"} %d\n", snap.ConversionsFailed)

	writeMetric(w, "autoflow_leads_total{status=\"captured\"} %d\n", snap.LeadsCaptured)
	writeMetric(w, "autoflow_leads_total{status=\"dropped\"} %d\n", snap.LeadsDropped)

	writeMetric(w, "autoflow_rate_limited_total %d\n", snap.RateLimited)

	for _, s := range snap.LLM {
		writeMetric(w, "autoflow_llm_requests_total{model=%q} %d\n", s.Model, s.Calls)
		writeMetric(w, "autoflow_llm_errors_total{model=%q} %d\n", s.Model, s.Errors)
		writeMetric(w, "autoflow_llm_duration_seconds_sum{model=%q} %.6f\n", s.Model, float64(s.DurationTotalNs)/1e9)
	}
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
