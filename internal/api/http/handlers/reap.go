package handlers

import (
	"net/http"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/expirebin/engine/internal/api/validation"
	"github.com/expirebin/engine/internal/expirebin"
	"github.com/expirebin/engine/internal/storage/metastore"
)

// ReapHandlers provides HTTP handlers for on-demand reap sweeps
type ReapHandlers struct {
	reaper   *expirebin.Reaper
	registry *metastore.Store
}

// NewReapHandlers creates new reap handlers
func NewReapHandlers(reaper *expirebin.Reaper, registry *metastore.Store) *ReapHandlers {
	return &ReapHandlers{
		reaper:   reaper,
		registry: registry,
	}
}

// ReapRequest represents a sweep request. With no bins the set's tracked
// bins are swept.
type ReapRequest struct {
	Bins []string `json:"bins,omitempty"`
}

// ReapResponse represents a sweep response
type ReapResponse struct {
	Status         string `json:"status"`
	RecordsVisited int    `json:"records_visited"`
	RecordsFailed  int    `json:"records_failed"`
	BinsRemoved    int    `json:"bins_removed"`
}

// Sweep handles POST /api/v1/reap/{namespace}/{set}
func (h *ReapHandlers) Sweep(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	namespace, set := vars["namespace"], vars["set"]
	if err := validation.ValidateIdentifier("namespace", namespace); err != nil {
		writeError(w, err)
		return
	}
	if err := validation.ValidateIdentifier("set", set); err != nil {
		writeError(w, err)
		return
	}

	var req ReapRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
			return
		}
	}

	binNames := req.Bins
	if len(binNames) == 0 {
		config, err := h.registry.GetSet(namespace, set)
		if err != nil {
			writeError(w, err)
			return
		}
		binNames = config.TrackedBins
	}
	if err := validation.ValidateBinNames(binNames); err != nil {
		writeError(w, err)
		return
	}

	stats, err := h.reaper.Sweep(r.Context(), namespace, set, binNames)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ReapResponse{
		Status:         "success",
		RecordsVisited: stats.RecordsVisited,
		RecordsFailed:  stats.RecordsFailed,
		BinsRemoved:    stats.BinsRemoved,
	})
}
