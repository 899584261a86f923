package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/expirebin/engine/internal/api/http/handlers"
	"github.com/expirebin/engine/internal/api/http/middleware"
	"github.com/expirebin/engine/internal/expirebin"
	"github.com/expirebin/engine/internal/logger"
	"github.com/expirebin/engine/internal/metrics"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

// RouterDeps carries the collaborators the router's handlers run against
type RouterDeps struct {
	Client   *expirebin.Client
	Store    *record.Store
	Registry *metastore.Store
	Reaper   *expirebin.Reaper

	// AuthToken guards /api/v1 routes; empty disables auth
	AuthToken string
	// Metrics is optional
	Metrics *metrics.APIMetrics
	// Ready gates the readiness endpoint
	Ready handlers.ReadyChecker
}

// Router manages HTTP routes and middleware
type Router struct {
	mux            *mux.Router
	recordHandlers *handlers.RecordHandlers
	setHandlers    *handlers.SetHandlers
	reapHandlers   *handlers.ReapHandlers
}

// NewRouter creates a new router
func NewRouter(deps RouterDeps) *Router {
	r := &Router{
		mux:            mux.NewRouter(),
		recordHandlers: handlers.NewRecordHandlers(deps.Client, deps.Store, deps.Registry),
		setHandlers:    handlers.NewSetHandlers(deps.Registry),
		reapHandlers:   handlers.NewReapHandlers(deps.Reaper, deps.Registry),
	}

	r.setupRoutes(deps)

	return r
}

// setupRoutes sets up all HTTP routes
func (r *Router) setupRoutes(deps RouterDeps) {
	log := logger.WithComponent("http.middleware")
	r.mux.Use(
		middleware.Recovery(log),
		middleware.Logging(log),
		middleware.Tracing(),
		middleware.Metrics(deps.Metrics),
	)

	// Health check endpoints (no auth required)
	r.mux.HandleFunc("/health", handlers.HealthCheck).Methods(http.MethodGet)
	r.mux.HandleFunc("/ready", handlers.ReadinessCheck(deps.Ready)).Methods(http.MethodGet)

	api := r.mux.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Auth(deps.AuthToken))

	// Bin operations on one record
	records := api.PathPrefix("/records/{namespace}/{set}/{id}").Subrouter()
	records.HandleFunc("/bins", r.recordHandlers.GetBins).Methods(http.MethodGet)
	records.HandleFunc("/bins", r.recordHandlers.PutBins).Methods(http.MethodPost)
	records.HandleFunc("/bins/touch", r.recordHandlers.TouchBins).Methods(http.MethodPost)
	records.HandleFunc("/bins/clean", r.recordHandlers.CleanBins).Methods(http.MethodPost)
	records.HandleFunc("/bins/{bin}", r.recordHandlers.PutBin).Methods(http.MethodPut)
	records.HandleFunc("/bins/{bin}/ttl", r.recordHandlers.GetTTL).Methods(http.MethodGet)
	api.HandleFunc("/records/{namespace}/{set}/{id}", r.recordHandlers.DeleteRecord).Methods(http.MethodDelete)

	// Set registry
	api.HandleFunc("/sets", r.setHandlers.CreateSet).Methods(http.MethodPost)
	api.HandleFunc("/sets", r.setHandlers.ListSets).Methods(http.MethodGet)
	api.HandleFunc("/sets/{namespace}/{set}", r.setHandlers.GetSet).Methods(http.MethodGet)
	api.HandleFunc("/sets/{namespace}/{set}", r.setHandlers.UpdateSet).Methods(http.MethodPut)
	api.HandleFunc("/sets/{namespace}/{set}", r.setHandlers.DeleteSet).Methods(http.MethodDelete)

	// On-demand reap
	api.HandleFunc("/reap/{namespace}/{set}", r.reapHandlers.Sweep).Methods(http.MethodPost)
}

// Handler returns the root HTTP handler
func (r *Router) Handler() http.Handler {
	return r.mux
}
