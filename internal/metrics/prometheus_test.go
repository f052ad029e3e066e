package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewPrometheusRecorder(reg)

	r.ObserveEvent("create")
	r.ObserveEvent("create")
	r.ObserveEvent("text")
	r.ObserveTurn("success")
	r.ObserveTransition("AWAITING_NAME")
	r.IncBacklogRejected()
	r.ObserveAIRequest("openai", "complete", "success", 150*time.Millisecond)

	assert.InDelta(t, 2, testutil.ToFloat64(r.eventsTotal.WithLabelValues("create")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.eventsTotal.WithLabelValues("text")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.turnsTotal.WithLabelValues("success")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.transitionsTotal.WithLabelValues("AWAITING_NAME")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(r.backlogRejected), 0)

	count, err := testutil.GatherAndCount(reg, "characterai_ai_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRecordersAreIndependentPerRegistry(t *testing.T) {
	assert.NotPanics(t, func() {
		NewPrometheusRecorder(prometheus.NewRegistry())
		NewPrometheusRecorder(prometheus.NewRegistry())
	})
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "success", Outcome(nil))
	assert.Equal(t, "error", Outcome(errors.New("x")))
}
