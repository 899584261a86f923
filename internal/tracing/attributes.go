package tracing

// Span attribute keys following OpenTelemetry semantic conventions
const (
	// Record addressing attributes
	AttrNamespace = "expirebin.namespace"
	AttrSet       = "expirebin.set"
	AttrRecordID  = "expirebin.record_id"

	// Bin attributes
	AttrBin      = "expirebin.bin"
	AttrBinCount = "expirebin.bin.count"
	AttrTTL      = "expirebin.ttl_seconds"
	AttrCreate   = "expirebin.create"

	// Reaper attributes
	AttrReapRunID      = "expirebin.reap.run_id"
	AttrRecordsVisited = "expirebin.reap.records_visited"
	AttrBinsReaped     = "expirebin.reap.bins_reaped"

	// Operation attributes
	AttrOperation = "expirebin.operation"
	AttrStatus    = "expirebin.status"

	// HTTP attributes (OpenTelemetry semantic conventions)
	AttrHTTPMethod     = "http.method"
	AttrHTTPRoute      = "http.route"
	AttrHTTPStatusCode = "http.status_code"
)
