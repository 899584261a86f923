package handlers

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/expirebin/engine/internal/api/validation"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/schema"
)

// SetHandlers provides HTTP handlers for the set registry
type SetHandlers struct {
	registry  *metastore.Store
	validator *schema.Validator
}

// NewSetHandlers creates new set handlers
func NewSetHandlers(registry *metastore.Store) *SetHandlers {
	return &SetHandlers{
		registry:  registry,
		validator: schema.NewValidator(),
	}
}

// SchemaPayload is the wire form of a set's value schema
type SchemaPayload struct {
	ID         string          `json:"id"`
	Definition json.RawMessage `json:"definition"`
}

// SetPayload is the wire form of a set configuration
type SetPayload struct {
	Namespace         string         `json:"namespace"`
	Set               string         `json:"set"`
	TrackedBins       []string       `json:"tracked_bins,omitempty"`
	DefaultTTLSeconds int64          `json:"default_ttl_seconds,omitempty"`
	Schema            *SchemaPayload `json:"schema,omitempty"`
}

// SetResponse represents a single-set response
type SetResponse struct {
	Status  string     `json:"status"`
	Message string     `json:"message,omitempty"`
	Set     SetPayload `json:"set"`
}

// ListSetsResponse represents a response to listing sets
type ListSetsResponse struct {
	Status string       `json:"status"`
	Sets   []SetPayload `json:"sets"`
}

// DeleteSetResponse represents a response to deleting a set
type DeleteSetResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// CreateSet handles POST /api/v1/sets
func (h *SetHandlers) CreateSet(w http.ResponseWriter, r *http.Request) {
	var payload SetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
		return
	}

	config, err := h.configFromPayload(payload)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.registry.CreateSet(config); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, SetResponse{
		Status:  "success",
		Message: "set created successfully",
		Set:     payloadFromConfig(config),
	})
}

// GetSet handles GET /api/v1/sets/{namespace}/{set}
func (h *SetHandlers) GetSet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	config, err := h.registry.GetSet(vars["namespace"], vars["set"])
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, SetResponse{
		Status: "success",
		Set:    payloadFromConfig(config),
	})
}

// ListSets handles GET /api/v1/sets?namespace=...
func (h *SetHandlers) ListSets(w http.ResponseWriter, r *http.Request) {
	configs, err := h.registry.ListSets(r.URL.Query().Get("namespace"))
	if err != nil {
		writeError(w, err)
		return
	}

	sets := make([]SetPayload, len(configs))
	for i, config := range configs {
		sets[i] = payloadFromConfig(config)
	}
	writeJSON(w, http.StatusOK, ListSetsResponse{Status: "success", Sets: sets})
}

// UpdateSet handles PUT /api/v1/sets/{namespace}/{set}
func (h *SetHandlers) UpdateSet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	var payload SetPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, validation.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	payload.Namespace = vars["namespace"]
	payload.Set = vars["set"]

	update, err := h.configFromPayload(payload)
	if err != nil {
		writeError(w, err)
		return
	}

	err = h.registry.UpdateSet(vars["namespace"], vars["set"], func(config *metastore.SetConfig) error {
		config.TrackedBins = update.TrackedBins
		config.DefaultTTL = update.DefaultTTL
		config.Schema = update.Schema
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	config, err := h.registry.GetSet(vars["namespace"], vars["set"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SetResponse{
		Status:  "success",
		Message: "set updated successfully",
		Set:     payloadFromConfig(config),
	})
}

// DeleteSet handles DELETE /api/v1/sets/{namespace}/{set}
func (h *SetHandlers) DeleteSet(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := h.registry.DeleteSet(vars["namespace"], vars["set"]); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DeleteSetResponse{
		Status:  "success",
		Message: "set deleted successfully",
	})
}

// configFromPayload converts and validates a wire payload. Schemas are
// compiled up front so a broken schema is rejected at registration, not
// on the first write.
func (h *SetHandlers) configFromPayload(payload SetPayload) (*metastore.SetConfig, error) {
	if err := validation.ValidateIdentifier("namespace", payload.Namespace); err != nil {
		return nil, err
	}
	if err := validation.ValidateIdentifier("set", payload.Set); err != nil {
		return nil, err
	}
	if payload.DefaultTTLSeconds < 0 {
		return nil, validation.ValidationError{Field: "default_ttl_seconds", Reason: "cannot be negative"}
	}
	for _, bin := range payload.TrackedBins {
		if err := validation.ValidateBinName(bin); err != nil {
			return nil, err
		}
	}

	config := &metastore.SetConfig{
		Namespace:   payload.Namespace,
		Set:         payload.Set,
		TrackedBins: payload.TrackedBins,
		DefaultTTL:  time.Duration(payload.DefaultTTLSeconds) * time.Second,
	}
	if payload.Schema != nil {
		if _, err := h.validator.CompileSchema(payload.Schema.Definition); err != nil {
			return nil, validation.ValidationError{Field: "schema", Reason: err.Error()}
		}
		config.Schema = &metastore.SchemaRef{
			ID:         payload.Schema.ID,
			Definition: payload.Schema.Definition,
		}
	}
	return config, nil
}

func payloadFromConfig(config *metastore.SetConfig) SetPayload {
	payload := SetPayload{
		Namespace:         config.Namespace,
		Set:               config.Set,
		TrackedBins:       config.TrackedBins,
		DefaultTTLSeconds: int64(config.DefaultTTL.Seconds()),
	}
	if config.Schema != nil {
		payload.Schema = &SchemaPayload{
			ID:         config.Schema.ID,
			Definition: config.Schema.Definition,
		}
	}
	return payload
}
