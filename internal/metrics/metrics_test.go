package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.CountTurn(OutcomeNarrated)
	m.CountTurn(OutcomeNarrated)
	m.CountToolCall("descriptive_stats", true)
	m.CountToolCall("independent_t_test", false)
	m.CountDatasetLoad("xlsx", true)
	m.ObserveModel("intent", time.Now())

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Turns.WithLabelValues(OutcomeNarrated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ToolCalls.WithLabelValues("independent_t_test", "error")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DatasetLoads.WithLabelValues("xlsx", "ok")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CountTurn(OutcomeFailed)
		m.CountToolCall("x", true)
		m.CountDatasetLoad("csv", false)
		m.ObserveModel("narration", time.Now())
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.CountTurn(OutcomeGuidance)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `aistats_conversation_turns_total{outcome="guidance"} 1`)
}
