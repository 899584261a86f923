package record

import (
	"context"
	"fmt"

	"github.com/cockroachdb/pebble"
)

// Scan visits every record in a namespace/set and hands a snapshot of each
// to visit. A visit error is reported per record and the scan continues; the
// returned stats carry the failure count. Scan itself only fails on iterator
// or context errors.
func (s *Store) Scan(ctx context.Context, namespace, set string, visit VisitFunc) (ScanStats, error) {
	var stats ScanStats

	if namespace == "" || set == "" {
		return stats, fmt.Errorf("scan requires namespace and set")
	}

	prefix := []byte(namespace + keySeparator + set + keySeparator)

	// Build upper bound for the prefix (lexicographic successor)
	upperBound := make([]byte, len(prefix))
	copy(upperBound, prefix)
	for i := len(upperBound) - 1; i >= 0; i-- {
		if upperBound[i] < 0xff {
			upperBound[i]++
			upperBound = upperBound[:i+1]
			break
		}
	}

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: upperBound,
	})
	if err != nil {
		return stats, fmt.Errorf("failed to create scan iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		key, err := decodeKey(iter.Key())
		if err != nil {
			s.log.Warn().Err(err).Msg("Skipping malformed key during scan")
			continue
		}

		data, err := iter.ValueAndErr()
		if err != nil {
			s.log.Warn().Err(err).Str("key", key.String()).Msg("Failed to read record during scan")
			continue
		}

		env, err := decodeRecord(data)
		if err != nil {
			s.log.Warn().Err(err).Str("key", key.String()).Msg("Failed to decode record during scan")
			continue
		}

		meta := Metadata{Generation: env.Generation, UpdatedAt: env.UpdatedAt}

		stats.Visited++
		if err := visit(key, meta, Bins(env.Bins).Clone()); err != nil {
			stats.Failed++
			s.log.Warn().Err(err).Str("key", key.String()).Msg("Record visit failed, continuing scan")
		}
	}

	return stats, nil
}
