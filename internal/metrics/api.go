package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics tracks HTTP API metrics
type APIMetrics struct {
	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewAPIMetrics initializes API metrics with the collector
func NewAPIMetrics(collector *Collector) *APIMetrics {
	return &APIMetrics{
		requests: collector.RegisterCounter(
			MetricAPIRequestsTotal,
			"Total number of API requests",
			[]string{LabelMethod, LabelEndpoint, LabelStatus},
		),
		duration: collector.RegisterHistogram(
			MetricAPIRequestDuration,
			"Duration of API requests in seconds",
			[]string{LabelMethod, LabelEndpoint},
			prometheus.DefBuckets,
		),
	}
}

// RecordRequest records one API request outcome
func (m *APIMetrics) RecordRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.duration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}
