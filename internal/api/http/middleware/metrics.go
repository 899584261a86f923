package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/expirebin/engine/internal/metrics"
)

// Metrics records per-endpoint request metrics. The endpoint label uses
// the matched route template so record IDs do not explode cardinality.
func Metrics(api *metrics.APIMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &responseWriter{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(ww, r)

			endpoint := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if template, err := route.GetPathTemplate(); err == nil {
					endpoint = template
				}
			}

			api.RecordRequest(r.Method, endpoint, ww.statusCode, time.Since(start))
		})
	}
}
