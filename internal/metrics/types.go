package metrics

// Metric name constants following Prometheus naming conventions
// Format: expirebin_{component}_{metric}_{unit}

// Bin operation metrics
const (
	MetricBinOpsTotal       = "expirebin_bin_ops_total"
	MetricBinOpDuration     = "expirebin_bin_op_duration_seconds"
	MetricBinsExpiredOnRead = "expirebin_bins_expired_on_read_total"
	MetricBinsWrittenTotal  = "expirebin_bins_written_total"
	MetricBinsTouchedTotal  = "expirebin_bins_touched_total"
)

// Reaper metrics
const (
	MetricReapRunsTotal      = "expirebin_reap_runs_total"
	MetricReapDuration       = "expirebin_reap_duration_seconds"
	MetricBinsReapedTotal    = "expirebin_bins_reaped_total"
	MetricReapRecordsVisited = "expirebin_reap_records_visited_total"
	MetricReapRecordFailures = "expirebin_reap_record_failures_total"
)

// HTTP API metrics
const (
	MetricAPIRequestsTotal   = "expirebin_api_requests_total"
	MetricAPIRequestDuration = "expirebin_api_request_duration_seconds"
)

// Label name constants
const (
	LabelNamespace = "namespace"
	LabelSet       = "set"
	LabelOperation = "operation"
	LabelStatus    = "status"
	LabelMethod    = "method"
	LabelEndpoint  = "endpoint"
)
