package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// BinMetrics tracks per-bin expiration metrics
type BinMetrics struct {
	binOps            *prometheus.CounterVec
	binOpDuration     *prometheus.HistogramVec
	binsExpiredOnRead *prometheus.CounterVec
	binsWritten       *prometheus.CounterVec
	binsTouched       *prometheus.CounterVec

	reapRuns           *prometheus.CounterVec
	reapDuration       *prometheus.HistogramVec
	binsReaped         *prometheus.CounterVec
	reapRecordsVisited *prometheus.CounterVec
	reapRecordFailures *prometheus.CounterVec
}

// NewBinMetrics initializes bin metrics with the collector
func NewBinMetrics(collector *Collector) *BinMetrics {
	return &BinMetrics{
		binOps: collector.RegisterCounter(
			MetricBinOpsTotal,
			"Total number of bin operations",
			[]string{LabelNamespace, LabelSet, LabelOperation, LabelStatus},
		),
		binOpDuration: collector.RegisterHistogram(
			MetricBinOpDuration,
			"Duration of bin operations in seconds",
			[]string{LabelNamespace, LabelSet, LabelOperation},
			prometheus.DefBuckets,
		),
		binsExpiredOnRead: collector.RegisterCounter(
			MetricBinsExpiredOnRead,
			"Number of bins observed expired during get operations",
			[]string{LabelNamespace, LabelSet},
		),
		binsWritten: collector.RegisterCounter(
			MetricBinsWrittenTotal,
			"Number of bins written by put operations",
			[]string{LabelNamespace, LabelSet},
		),
		binsTouched: collector.RegisterCounter(
			MetricBinsTouchedTotal,
			"Number of expire-bins whose TTL was refreshed",
			[]string{LabelNamespace, LabelSet},
		),
		reapRuns: collector.RegisterCounter(
			MetricReapRunsTotal,
			"Total number of reap sweeps",
			[]string{LabelNamespace, LabelSet, LabelStatus},
		),
		reapDuration: collector.RegisterHistogram(
			MetricReapDuration,
			"Duration of reap sweeps in seconds",
			[]string{LabelNamespace, LabelSet},
			prometheus.DefBuckets,
		),
		binsReaped: collector.RegisterCounter(
			MetricBinsReapedTotal,
			"Number of expired bins physically removed",
			[]string{LabelNamespace, LabelSet},
		),
		reapRecordsVisited: collector.RegisterCounter(
			MetricReapRecordsVisited,
			"Number of records visited by reap sweeps",
			[]string{LabelNamespace, LabelSet},
		),
		reapRecordFailures: collector.RegisterCounter(
			MetricReapRecordFailures,
			"Number of records whose clean failed during reap sweeps",
			[]string{LabelNamespace, LabelSet},
		),
	}
}

// RecordOp records a single bin operation outcome
func (m *BinMetrics) RecordOp(namespace, set, operation, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.binOps.WithLabelValues(namespace, set, operation, status).Inc()
	m.binOpDuration.WithLabelValues(namespace, set, operation).Observe(duration.Seconds())
}

// RecordExpiredOnRead records bins found expired while serving a get
func (m *BinMetrics) RecordExpiredOnRead(namespace, set string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.binsExpiredOnRead.WithLabelValues(namespace, set).Add(float64(count))
}

// RecordBinsWritten records bins written by put/puts
func (m *BinMetrics) RecordBinsWritten(namespace, set string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.binsWritten.WithLabelValues(namespace, set).Add(float64(count))
}

// RecordBinsTouched records TTL refreshes applied by touch
func (m *BinMetrics) RecordBinsTouched(namespace, set string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.binsTouched.WithLabelValues(namespace, set).Add(float64(count))
}

// RecordReap records the outcome of one reap sweep
func (m *BinMetrics) RecordReap(namespace, set, status string, visited, failed, reaped int, duration time.Duration) {
	if m == nil {
		return
	}
	m.reapRuns.WithLabelValues(namespace, set, status).Inc()
	m.reapDuration.WithLabelValues(namespace, set).Observe(duration.Seconds())
	m.reapRecordsVisited.WithLabelValues(namespace, set).Add(float64(visited))
	if failed > 0 {
		m.reapRecordFailures.WithLabelValues(namespace, set).Add(float64(failed))
	}
	if reaped > 0 {
		m.binsReaped.WithLabelValues(namespace, set).Add(float64(reaped))
	}
}
