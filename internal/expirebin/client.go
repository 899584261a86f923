package expirebin

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/expirebin/engine/internal/logger"
	"github.com/expirebin/engine/internal/metrics"
	"github.com/expirebin/engine/internal/storage/metastore"
	"github.com/expirebin/engine/internal/storage/record"
	"github.com/expirebin/engine/internal/storage/schema"
)

// Executor is the per-key atomic execution primitive the client runs bin
// operations through. *record.Store satisfies it.
type Executor interface {
	Apply(ctx context.Context, key record.Key, createIfMissing bool, op record.ApplyFunc) error
	ApplySteps(ctx context.Context, key record.Key, createIfMissing bool, steps []record.ApplyFunc) (int, error)
}

// Client is the bin-level expiration facade over a record store. It wraps
// every operation in the store's key lock, so concurrent operations on the
// same record serialize; operations on different records do not.
type Client struct {
	exec      Executor
	registry  *metastore.Store
	validator *schema.Validator
	metrics   *metrics.BinMetrics
	log       zerolog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithRegistry attaches a set registry. When present, put values are
// validated against the target set's schema if it has one.
func WithRegistry(registry *metastore.Store) Option {
	return func(c *Client) {
		c.registry = registry
	}
}

// WithMetrics attaches operation metrics
func WithMetrics(m *metrics.BinMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// NewClient creates a bin expiration client over exec
func NewClient(exec Executor, opts ...Option) *Client {
	c := &Client{
		exec:      exec,
		validator: schema.NewValidator(),
		log:       logger.WithComponent("expirebin"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get reads the named bins from the record at key. Results align
// positionally with binNames: nil for bins that are missing or whose
// expiry has passed, the inner value for live expire-bins, and the raw
// content for plain bins. Expired bins are masked, not removed.
func (c *Client) Get(ctx context.Context, key record.Key, binNames ...string) ([][]byte, error) {
	ctx, span := StartGetSpan(ctx, key, len(binNames))
	defer span.End()
	start := time.Now()

	var values [][]byte
	var expired int
	err := c.exec.Apply(ctx, key, false, func(now time.Time, bins record.Bins) (bool, error) {
		values, expired = getBins(bins, now, binNames)
		return false, nil
	})

	c.metrics.RecordOp(key.Namespace, key.Set, "get", statusLabel(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	c.metrics.RecordExpiredOnRead(key.Namespace, key.Set, expired)
	if expired > 0 {
		c.log.Debug().
			Str("key", key.String()).
			Int("expired", expired).
			Msg("Masked expired bins on read")
	}
	return values, nil
}

// Put writes one bin to the record at key, creating the record if needed.
// With create=true the bin is written as an expire-bin lapsing at now+ttl
// (never, for a negative ttl). With create=false an existing expire-bin is
// updated in place and anything else is written plain; ttl only applies
// when the bin is already tracked. Returns OpStatusOK on success and
// OpStatusFailed with the error otherwise.
func (c *Client) Put(ctx context.Context, key record.Key, bin string, value []byte, ttl time.Duration, create bool) (int, error) {
	ctx, span := StartPutSpan(ctx, key, bin, create)
	defer span.End()
	start := time.Now()

	err := c.exec.Apply(ctx, key, true, func(now time.Time, bins record.Bins) (bool, error) {
		if err := c.validateValue(key, bin, value); err != nil {
			return false, err
		}
		putBin(bins, now, bin, value, ttl, create)
		return true, nil
	})

	c.metrics.RecordOp(key.Namespace, key.Set, "put", statusLabel(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		return OpStatusFailed, err
	}

	c.metrics.RecordBinsWritten(key.Namespace, key.Set, 1)
	return OpStatusOK, nil
}

// Puts writes a batch of bins to the record at key under one key lock.
// Entries apply in order and each is persisted as it lands; a failing
// entry stops the batch but does not undo earlier entries. The result
// carries the aggregate status plus per-entry outcomes, with the error
// attached to the entry that caused it.
func (c *Client) Puts(ctx context.Context, key record.Key, entries ...PutEntry) (BatchResult, error) {
	ctx, span := StartPutsSpan(ctx, key, len(entries))
	defer span.End()
	start := time.Now()

	steps := make([]record.ApplyFunc, len(entries))
	for i, entry := range entries {
		entry := entry
		steps[i] = func(now time.Time, bins record.Bins) (bool, error) {
			if err := c.validateValue(key, entry.Bin, entry.Value); err != nil {
				return false, err
			}
			if entry.TTL == 0 {
				putBin(bins, now, entry.Bin, entry.Value, 0, false)
			} else {
				putBin(bins, now, entry.Bin, entry.Value, entry.TTL, true)
			}
			return true, nil
		}
	}

	applied, err := c.exec.ApplySteps(ctx, key, true, steps)

	result := BatchResult{Entries: make([]EntryResult, len(entries))}
	for i, entry := range entries {
		result.Entries[i] = EntryResult{Bin: entry.Bin, Applied: i < applied}
	}
	if err != nil {
		result.Status = OpStatusFailed
		if applied < len(result.Entries) {
			result.Entries[applied].Err = err
		}
		span.RecordError(err)
		c.log.Warn().
			Err(err).
			Str("key", key.String()).
			Int("applied", applied).
			Int("requested", len(entries)).
			Msg("Batch put partially applied")
	}

	c.metrics.RecordOp(key.Namespace, key.Set, "puts", statusLabel(err), time.Since(start))
	c.metrics.RecordBinsWritten(key.Namespace, key.Set, applied)
	return result, err
}

// Touch refreshes the expiry of a batch of expire-bins to now+ttl per
// entry (never, for a negative ttl), keeping stored values. Entries
// targeting missing or plain bins are successful no-ops. Only store
// failures, including a missing record, fail the call.
func (c *Client) Touch(ctx context.Context, key record.Key, entries ...TouchEntry) (BatchResult, error) {
	ctx, span := StartTouchSpan(ctx, key, len(entries))
	defer span.End()
	start := time.Now()

	result := BatchResult{Entries: make([]EntryResult, len(entries))}
	steps := make([]record.ApplyFunc, len(entries))
	refreshed := 0
	for i, entry := range entries {
		i, entry := i, entry
		result.Entries[i].Bin = entry.Bin
		steps[i] = func(now time.Time, bins record.Bins) (bool, error) {
			ok := touchBin(bins, now, entry.Bin, entry.TTL)
			result.Entries[i].Applied = ok
			if ok {
				refreshed++
			}
			return ok, nil
		}
	}

	applied, err := c.exec.ApplySteps(ctx, key, false, steps)
	if err != nil {
		result.Status = OpStatusFailed
		if applied < len(result.Entries) {
			result.Entries[applied].Err = err
			result.Entries[applied].Applied = false
		}
		span.RecordError(err)
	}

	c.metrics.RecordOp(key.Namespace, key.Set, "touch", statusLabel(err), time.Since(start))
	c.metrics.RecordBinsTouched(key.Namespace, key.Set, refreshed)
	return result, err
}

// TTL reports the time remaining until the named expire-bin lapses. never
// is true for expire-bins with no expiry. Bins that are missing, plain,
// or expired report BinNotTrackedError.
func (c *Client) TTL(ctx context.Context, key record.Key, bin string) (remaining time.Duration, never bool, err error) {
	ctx, span := StartTTLSpan(ctx, key, bin)
	defer span.End()
	start := time.Now()

	err = c.exec.Apply(ctx, key, false, func(now time.Time, bins record.Bins) (bool, error) {
		remaining, never, err = binTTL(bins, now, bin)
		return false, err
	})

	c.metrics.RecordOp(key.Namespace, key.Set, "ttl", statusLabel(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		return 0, false, err
	}
	return remaining, never, nil
}

// Clean physically removes the named bins whose expiry has passed,
// leaving plain bins and live expire-bins untouched. Returns the number
// of bins removed.
func (c *Client) Clean(ctx context.Context, key record.Key, binNames ...string) (int, error) {
	ctx, span := StartCleanSpan(ctx, key, len(binNames))
	defer span.End()
	start := time.Now()

	removed := 0
	err := c.exec.Apply(ctx, key, false, func(now time.Time, bins record.Bins) (bool, error) {
		removed = cleanBins(bins, now, binNames)
		return removed > 0, nil
	})

	c.metrics.RecordOp(key.Namespace, key.Set, "clean", statusLabel(err), time.Since(start))
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	return removed, nil
}

// validateValue checks value against the target set's schema, if the
// client carries a registry and the set has one registered.
func (c *Client) validateValue(key record.Key, bin string, value []byte) error {
	if c.registry == nil {
		return nil
	}
	config, err := c.registry.GetSet(key.Namespace, key.Set)
	if err != nil {
		// Unregistered sets are not schema-constrained
		if errors.As(err, &metastore.SetNotFoundError{}) {
			return nil
		}
		return err
	}
	if config.Schema == nil {
		return nil
	}
	if err := c.validator.Validate(value, config.Schema.Definition); err != nil {
		return SchemaViolationError{Bin: bin, Reason: err.Error()}
	}
	return nil
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
