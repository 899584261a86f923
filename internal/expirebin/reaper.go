package expirebin

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/expirebin/engine/internal/logger"
	"github.com/expirebin/engine/internal/metrics"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
)

const (
	// DefaultReapInterval is the default interval between reap sweeps
	DefaultReapInterval = 60 * time.Second
)

// Scanner supplies the record iteration a sweep is driven by.
// *record.Store satisfies it.
type Scanner interface {
	Scan(ctx context.Context, namespace, set string, visit record.VisitFunc) (record.ScanStats, error)
}

// Cleaner removes expired bins from one record. *Client satisfies it.
type Cleaner interface {
	Clean(ctx context.Context, key record.Key, binNames ...string) (int, error)
}

// SweepStats reports one reap sweep of a set
type SweepStats struct {
	// RecordsVisited is the number of records the sweep examined
	RecordsVisited int
	// RecordsFailed is the number of records whose clean failed
	RecordsFailed int
	// BinsRemoved is the number of expired bins physically removed
	BinsRemoved int
}

// Reaper periodically sweeps registered sets and physically removes
// expired bins. Sweeps run full scans through the cleaner's per-record
// clean, so reaping never races in-flight operations on the same record.
// A failing record is logged and counted; the sweep continues.
type Reaper struct {
	scanner  Scanner
	cleaner  Cleaner
	registry *metastore.Store
	interval time.Duration
	metrics  *metrics.BinMetrics
	log      zerolog.Logger

	mu      sync.Mutex
	stopCh  chan struct{}
	doneCh  chan struct{}
	running bool
}

// ReaperOption configures a Reaper
type ReaperOption func(*Reaper)

// WithReapInterval overrides the sweep interval
func WithReapInterval(interval time.Duration) ReaperOption {
	return func(r *Reaper) {
		if interval > 0 {
			r.interval = interval
		}
	}
}

// WithReapMetrics attaches sweep metrics
func WithReapMetrics(m *metrics.BinMetrics) ReaperOption {
	return func(r *Reaper) {
		r.metrics = m
	}
}

// NewReaper creates a reaper sweeping the registry's sets through cleaner
func NewReaper(scanner Scanner, cleaner Cleaner, registry *metastore.Store, opts ...ReaperOption) *Reaper {
	r := &Reaper{
		scanner:  scanner,
		cleaner:  cleaner,
		registry: registry,
		interval: DefaultReapInterval,
		log:      logger.WithComponent("reaper"),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Start launches the background sweep loop. It is a no-op if the loop is
// already running.
func (r *Reaper) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return
	}
	r.running = true
	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})

	go r.run(ctx, r.stopCh, r.doneCh)
}

// Stop stops the sweep loop and waits for an in-flight sweep to finish
func (r *Reaper) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	close(r.stopCh)
	doneCh := r.doneCh
	r.mu.Unlock()

	<-doneCh
}

func (r *Reaper) run(ctx context.Context, stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.log.Info().Dur("interval", r.interval).Msg("Reaper started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("Reaper stopped due to context cancellation")
			return
		case <-stopCh:
			r.log.Info().Msg("Reaper stopped")
			return
		case <-ticker.C:
			r.SweepAll(ctx)
		}
	}
}

// SweepAll sweeps every registered set that tracks bins. Sets without
// tracked bins are skipped; a failing sweep is logged and the rest of the
// sets still run.
func (r *Reaper) SweepAll(ctx context.Context) {
	configs, err := r.registry.ListSets("")
	if err != nil {
		r.log.Error().Err(err).Msg("Failed to list sets for reap")
		return
	}

	for _, config := range configs {
		if len(config.TrackedBins) == 0 {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if _, err := r.Sweep(ctx, config.Namespace, config.Set, config.TrackedBins); err != nil {
			r.log.Error().
				Err(err).
				Str("namespace", config.Namespace).
				Str("set", config.Set).
				Msg("Reap sweep failed")
		}
	}
}

// Sweep scans one set and cleans the named bins on every record. Records
// whose clean fails are counted and skipped; the scan keeps going. The
// returned stats are complete even when the scan itself errors out.
func (r *Reaper) Sweep(ctx context.Context, namespace, set string, binNames []string) (SweepStats, error) {
	runID := uuid.NewString()
	ctx, span := StartSweepSpan(ctx, runID, namespace, set)
	defer span.End()
	start := time.Now()

	var stats SweepStats
	scanStats, err := r.scanner.Scan(ctx, namespace, set, func(key record.Key, _ record.Metadata, _ record.Bins) error {
		removed, cleanErr := r.cleaner.Clean(ctx, key, binNames...)
		if cleanErr != nil {
			r.log.Warn().
				Err(cleanErr).
				Str("run_id", runID).
				Str("key", key.String()).
				Msg("Failed to clean record during reap")
			return cleanErr
		}
		stats.BinsRemoved += removed
		return nil
	})

	stats.RecordsVisited = scanStats.Visited
	stats.RecordsFailed = scanStats.Failed

	duration := time.Since(start)
	r.metrics.RecordReap(namespace, set, statusLabel(err), stats.RecordsVisited, stats.RecordsFailed, stats.BinsRemoved, duration)

	if err != nil {
		span.RecordError(err)
		return stats, err
	}

	r.log.Info().
		Str("run_id", runID).
		Str("namespace", namespace).
		Str("set", set).
		Int("visited", stats.RecordsVisited).
		Int("failed", stats.RecordsFailed).
		Int("removed", stats.BinsRemoved).
		Dur("duration", duration).
		Msg("Reap sweep completed")
	return stats, nil
}
