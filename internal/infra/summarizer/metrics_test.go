package summarizer

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusSummaryMetrics_Singleton(t *testing.T) {
	m1 := NewPrometheusSummaryMetrics()
	m2 := NewPrometheusSummaryMetrics()

	require.NotNil(t, m1)
	assert.Same(t, m1, m2)
}

func TestPrometheusSummaryMetrics_Record(t *testing.T) {
	m := NewPrometheusSummaryMetrics()

	before := testutil.ToFloat64(m.outcomeCounter.WithLabelValues("test-backend", "success"))
	m.RecordOutcome("test-backend", "success")
	assert.Equal(t, before+1, testutil.ToFloat64(m.outcomeCounter.WithLabelValues("test-backend", "success")))

	failedBefore := testutil.ToFloat64(m.chunkFailures)
	m.RecordChunks(4, 2)
	assert.Equal(t, failedBefore+2, testutil.ToFloat64(m.chunkFailures))

	assert.NotPanics(t, func() {
		m.RecordLength(120)
		m.RecordDuration("test-backend", 1500*time.Millisecond)
	})
}

func TestRecorderOrDiscard(t *testing.T) {
	r := recorderOrDiscard(nil)
	assert.IsType(t, discardMetrics{}, r)
	assert.NotPanics(t, func() {
		r.RecordLength(1)
		r.RecordOutcome("x", "y")
		r.RecordChunks(1, 0)
		r.RecordDuration("x", time.Second)
	})
}
