// Package metrics holds the Prometheus collectors for conversation turns,
// tool dispatch and model latency. Collectors live on a private registry.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Turn outcomes
const (
	OutcomeNarrated = "narrated"
	OutcomeDirect   = "direct"
	OutcomeGuidance = "guidance"
	OutcomeFailed   = "failed"
)

// Metrics bundles the collectors recorded by the orchestrator and API
type Metrics struct {
	Registry *prometheus.Registry

	Turns        *prometheus.CounterVec
	ToolCalls    *prometheus.CounterVec
	ModelLatency *prometheus.HistogramVec
	DatasetLoads *prometheus.CounterVec
}

// New creates and registers the collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aistats",
			Name:      "conversation_turns_total",
			Help:      "Conversation turns by outcome.",
		}, []string{"outcome"}),
		ToolCalls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aistats",
			Name:      "tool_calls_total",
			Help:      "Tool calls dispatched to the statistics engine.",
		}, []string{"tool", "outcome"}),
		ModelLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "aistats",
			Name:      "model_request_seconds",
			Help:      "Latency of chat-completion requests.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
		}, []string{"phase"}),
		DatasetLoads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aistats",
			Name:      "dataset_loads_total",
			Help:      "Dataset imports by file format and outcome.",
		}, []string{"format", "outcome"}),
	}
	reg.MustRegister(
		m.Turns, m.ToolCalls, m.ModelLatency, m.DatasetLoads,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveModel records one model call's latency for a phase ("intent" or "narration")
func (m *Metrics) ObserveModel(phase string, started time.Time) {
	if m == nil {
		return
	}
	m.ModelLatency.WithLabelValues(phase).Observe(time.Since(started).Seconds())
}

// CountTurn records a finished turn
func (m *Metrics) CountTurn(outcome string) {
	if m == nil {
		return
	}
	m.Turns.WithLabelValues(outcome).Inc()
}

// CountToolCall records one dispatched tool call
func (m *Metrics) CountToolCall(tool string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.ToolCalls.WithLabelValues(tool, outcome).Inc()
}

// CountDatasetLoad records one import attempt
func (m *Metrics) CountDatasetLoad(format string, ok bool) {
	if m == nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	m.DatasetLoads.WithLabelValues(format, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
