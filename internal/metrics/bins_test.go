package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBinMetrics(t *testing.T) {
	collector := NewCollector()
	m := NewBinMetrics(collector)
	require.NotNil(t, m)

	m.RecordOp("test", "users", "get", "success", 5*time.Millisecond)
	m.RecordOp("test", "users", "get", "success", 2*time.Millisecond)
	m.RecordOp("test", "users", "put", "error", time.Millisecond)

	got := testutil.ToFloat64(m.binOps.WithLabelValues("test", "users", "get", "success"))
	assert.Equal(t, 2.0, got)
	got = testutil.ToFloat64(m.binOps.WithLabelValues("test", "users", "put", "error"))
	assert.Equal(t, 1.0, got)
}

func TestBinMetrics_Counters(t *testing.T) {
	collector := NewCollector()
	m := NewBinMetrics(collector)

	m.RecordExpiredOnRead("test", "users", 3)
	m.RecordBinsWritten("test", "users", 2)
	m.RecordBinsTouched("test", "users", 1)

	assert.Equal(t, 3.0, testutil.ToFloat64(m.binsExpiredOnRead.WithLabelValues("test", "users")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.binsWritten.WithLabelValues("test", "users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.binsTouched.WithLabelValues("test", "users")))

	// Zero counts must not create series
	m.RecordExpiredOnRead("test", "empty", 0)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.binsExpiredOnRead.WithLabelValues("test", "empty")))
}

func TestBinMetrics_RecordReap(t *testing.T) {
	collector := NewCollector()
	m := NewBinMetrics(collector)

	m.RecordReap("test", "users", "success", 10, 1, 4, 50*time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.reapRuns.WithLabelValues("test", "users", "success")))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.reapRecordsVisited.WithLabelValues("test", "users")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.reapRecordFailures.WithLabelValues("test", "users")))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.binsReaped.WithLabelValues("test", "users")))
}

func TestBinMetrics_NilReceiver(t *testing.T) {
	// Metrics are optional; a nil receiver must be safe
	var m *BinMetrics
	assert.NotPanics(t, func() {
		m.RecordOp("test", "users", "get", "success", time.Millisecond)
		m.RecordExpiredOnRead("test", "users", 1)
		m.RecordReap("test", "users", "success", 1, 0, 0, time.Millisecond)
	})
}
