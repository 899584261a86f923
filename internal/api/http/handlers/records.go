package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/expirebin/engine/internal/api/validation"
	"github.com/expirebin/engine/internal/expirebin"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

// RecordHandlers provides HTTP handlers for bin operations on records
type RecordHandlers struct {
	client   *expirebin.Client
	store    *record.Store
	registry *metastore.Store
}

// NewRecordHandlers creates new record handlers
func NewRecordHandlers(client *expirebin.Client, store *record.Store, registry *metastore.Store) *RecordHandlers {
	return &RecordHandlers{
		client:   client,
		store:    store,
		registry: registry,
	}
}

// BinValue is one bin in a read response. Value is null for bins that are
// missing or expired.
type BinValue struct {
	Bin     string `json:"bin"`
	Value   []byte `json:"value"`
	Present bool   `json:"present"`
}

// GetBinsResponse represents a response to reading bins
type GetBinsResponse struct {
	Status string     `json:"status"`
	Bins   []BinValue `json:"bins"`
}

// PutBinRequest represents a request to write one bin.
//
// TTLSeconds uses the wire convention: a positive value is a lifetime in
// seconds, -1 means no expiration, and 0 falls back to the set's default
// TTL (no expiration if the set has none).
type PutBinRequest struct {
	Value      []byte `json:"value"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
	Create     bool   `json:"create,omitempty"`
}

// PutBinResponse represents a response to writing one bin
type PutBinResponse struct {
	Status     string `json:"status"`
	StatusCode int    `json:"status_code"`
	Message    string `json:"message,omitempty"`
}

// BatchPutEntry is one element of a batch write request. A zero
// TTLSeconds writes the bin under the plain-write policy.
type BatchPutEntry struct {
	Bin        string `json:"bin"`
	Value      []byte `json:"value"`
	TTLSeconds int64  `json:"ttl_seconds,omitempty"`
}

// PutBinsRequest represents a batch write request
type PutBinsRequest struct {
	Entries []BatchPutEntry `json:"entries"`
}

// BatchTouchEntry is one element of a batch TTL refresh request
type BatchTouchEntry struct {
	Bin        string `json:"bin"`
	TTLSeconds int64  `json:"ttl_seconds"`
}

// TouchBinsRequest represents a batch TTL refresh request
type TouchBinsRequest struct {
	Entries []BatchTouchEntry `json:"entries"`
}

// BatchEntryResult is one per-entry outcome in a batch response
type BatchEntryResult struct {
	Bin     string `json:"bin"`
	Applied bool   `json:"applied"`
	Error   string `json:"error,omitempty"`
}

// BatchResponse represents a batch operation response. StatusCode 0 means
// every entry applied; 1 means the batch stopped early, with entries
// before the failure still applied.
type BatchResponse struct {
	Status     string             `json:"status"`
	StatusCode int                `json:"status_code"`
	Message    string             `json:"message,omitempty"`
	Entries    []BatchEntryResult `json:"entries"`
}

// TTLResponse represents a response to a remaining-TTL query
type TTLResponse struct {
	Status     string `json:"status"`
	TTLSeconds int64  `json:"ttl_seconds"`
	Never      bool   `json:"never"`
}

// CleanBinsRequest represents a request to remove expired bins
type CleanBinsRequest struct {
	Bins []string `json:"bins"`
}

// CleanBinsResponse represents a response to removing expired bins
type CleanBinsResponse struct {
	Status  string `json:"status"`
	Removed int    `json:"removed"`
}

// DeleteRecordResponse represents a response to deleting a record
type DeleteRecordResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// GetBins handles GET /api/v1/records/{namespace}/{set}/{id}/bins?bins=a,b
func (h *RecordHandlers) GetBins(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	binNames := splitBinNames(r.URL.Query().Get("bins"))
	if err := validation.ValidateBinNames(binNames); err != nil {
		writeError(w, err)
		return
	}

	values, err := h.client.Get(r.Context(), key, binNames...)
	if err != nil {
		writeError(w, err)
		return
	}

	bins := make([]BinValue, len(binNames))
	for i, name := range binNames {
		bins[i] = BinValue{
			Bin:     name,
			Value:   values[i],
			Present: values[i] != nil,
		}
	}
	writeJSON(w, http.StatusOK, GetBinsResponse{Status: "success", Bins: bins})
}

// PutBin handles PUT /api/v1/records/{namespace}/{set}/{id}/bins/{bin}
func (h *RecordHandlers) PutBin(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bin := mux.Vars(r)["bin"]
	if err := validation.ValidateBinName(bin); err != nil {
		writeError(w, err)
		return
	}

	var req PutBinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if err := validation.ValidateTTLSeconds(req.TTLSeconds); err != nil {
		writeError(w, err)
		return
	}

	ttl := wireTTL(req.TTLSeconds)
	if req.TTLSeconds == 0 {
		ttl = h.defaultTTL(key.Namespace, key.Set)
	}

	statusCode, err := h.client.Put(r.Context(), key, bin, req.Value, ttl, req.Create)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, PutBinResponse{
		Status:     "success",
		StatusCode: statusCode,
		Message:    "bin written successfully",
	})
}

// PutBins handles POST /api/v1/records/{namespace}/{set}/{id}/bins
func (h *RecordHandlers) PutBins(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req PutBinsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if err := validation.ValidateBatchSize(len(req.Entries)); err != nil {
		writeError(w, err)
		return
	}

	entries := make([]expirebin.PutEntry, len(req.Entries))
	for i, entry := range req.Entries {
		if err := validation.ValidateBinName(entry.Bin); err != nil {
			writeError(w, err)
			return
		}
		if err := validation.ValidateTTLSeconds(entry.TTLSeconds); err != nil {
			writeError(w, err)
			return
		}
		entries[i] = expirebin.PutEntry{
			Bin:   entry.Bin,
			Value: entry.Value,
			TTL:   wireTTL(entry.TTLSeconds),
		}
	}

	result, err := h.client.Puts(r.Context(), key, entries...)
	writeBatch(w, result, err, "all bins written successfully")
}

// TouchBins handles POST /api/v1/records/{namespace}/{set}/{id}/bins/touch
func (h *RecordHandlers) TouchBins(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req TouchBinsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if err := validation.ValidateBatchSize(len(req.Entries)); err != nil {
		writeError(w, err)
		return
	}

	entries := make([]expirebin.TouchEntry, len(req.Entries))
	for i, entry := range req.Entries {
		if err := validation.ValidateBinName(entry.Bin); err != nil {
			writeError(w, err)
			return
		}
		if err := validation.ValidateTTLSeconds(entry.TTLSeconds); err != nil {
			writeError(w, err)
			return
		}
		entries[i] = expirebin.TouchEntry{
			Bin: entry.Bin,
			TTL: wireTTL(entry.TTLSeconds),
		}
	}

	result, err := h.client.Touch(r.Context(), key, entries...)
	writeBatch(w, result, err, "TTLs refreshed successfully")
}

// GetTTL handles GET /api/v1/records/{namespace}/{set}/{id}/bins/{bin}/ttl
func (h *RecordHandlers) GetTTL(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}
	bin := mux.Vars(r)["bin"]
	if err := validation.ValidateBinName(bin); err != nil {
		writeError(w, err)
		return
	}

	remaining, never, err := h.client.TTL(r.Context(), key, bin)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, TTLResponse{
		Status:     "success",
		TTLSeconds: int64(remaining.Seconds()),
		Never:      never,
	})
}

// CleanBins handles POST /api/v1/records/{namespace}/{set}/{id}/bins/clean
func (h *RecordHandlers) CleanBins(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req CleanBinsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	if err := validation.ValidateBinNames(req.Bins); err != nil {
		writeError(w, err)
		return
	}

	removed, err := h.client.Clean(r.Context(), key, req.Bins...)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, CleanBinsResponse{Status: "success", Removed: removed})
}

// DeleteRecord handles DELETE /api/v1/records/{namespace}/{set}/{id}
func (h *RecordHandlers) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	key, err := recordKey(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteRecordResponse{
		Status:  "success",
		Message: "record deleted successfully",
	})
}

// recordKey extracts and validates the record key from path variables
func recordKey(r *http.Request) (record.Key, error) {
	vars := mux.Vars(r)
	namespace, set, id := vars["namespace"], vars["set"], vars["id"]
	if err := validation.ValidateRecordPath(namespace, set, id); err != nil {
		return record.Key{}, err
	}
	return record.NewKey(namespace, set, id), nil
}

// wireTTL converts a wire-format TTL to the core duration convention
func wireTTL(ttlSeconds int64) time.Duration {
	if ttlSeconds < 0 {
		return expirebin.NoExpiry
	}
	return time.Duration(ttlSeconds) * time.Second
}

// defaultTTL resolves the registered default TTL for a set, if any
func (h *RecordHandlers) defaultTTL(namespace, set string) time.Duration {
	if h.registry == nil {
		return expirebin.NoExpiry
	}
	config, err := h.registry.GetSet(namespace, set)
	if err != nil || config.DefaultTTL <= 0 {
		return expirebin.NoExpiry
	}
	return config.DefaultTTL
}

// writeBatch writes a batch result, preserving per-entry outcomes even
// when the batch stopped early.
func writeBatch(w http.ResponseWriter, result expirebin.BatchResult, err error, okMessage string) {
	entries := make([]BatchEntryResult, len(result.Entries))
	for i, entry := range result.Entries {
		entries[i] = BatchEntryResult{
			Bin:     entry.Bin,
			Applied: entry.Applied,
		}
		if entry.Err != nil {
			entries[i].Error = entry.Err.Error()
		}
	}

	resp := BatchResponse{
		Status:     "success",
		StatusCode: result.Status,
		Message:    okMessage,
		Entries:    entries,
	}
	statusCode := http.StatusOK
	if err != nil {
		resp.Status = "error"
		resp.Message = err.Error()
		statusCode = errorStatusCode(err)
	}
	writeJSON(w, statusCode, resp)
}

// splitBinNames parses a comma separated bin list
func splitBinNames(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			names = append(names, trimmed)
		}
	}
	return names
}
