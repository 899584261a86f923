package handlers

import (
	"errors"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/expirebin/engine/internal/api/validation"
	"github.com/expirebin/engine/internal/expirebin"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// writeError maps typed errors to HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errorStatusCode(err), ErrorResponse{
		Status:  "error",
		Message: err.Error(),
	})
}

func errorStatusCode(err error) int {
	switch {
	case errors.As(err, &record.RecordNotFoundError{}),
		errors.As(err, &metastore.SetNotFoundError{}),
		errors.As(err, &expirebin.BinNotTrackedError{}):
		return http.StatusNotFound
	case errors.As(err, &metastore.SetExistsError{}):
		return http.StatusConflict
	case errors.As(err, &record.InvalidKeyError{}),
		errors.As(err, &validation.ValidationError{}),
		errors.As(err, &expirebin.SchemaViolationError{}),
		errors.As(err, &metastore.InvalidConfigError{}):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
