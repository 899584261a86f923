package expirebin

import (
	"time"

	"github.com/expirebin/engine/internal/storage/record"
)

// The functions below are the bin-level operation engine. They mutate a
// record's bin map in place against a caller-supplied instant and are run
// by the client facade inside the store's per-key execution primitive, so
// each invocation observes and produces a consistent record state.

// getBins resolves the named bins positionally. Missing bins and expired
// expire-bins yield nil; live expire-bins yield their inner value; plain
// bins yield their raw content. expired counts the expire-bins observed
// past their expiry.
func getBins(bins record.Bins, now time.Time, names []string) (values [][]byte, expired int) {
	values = make([][]byte, len(names))
	for i, name := range names {
		content, ok := bins[name]
		if !ok {
			continue
		}
		d := Decode(content)
		switch Eval(d, now) {
		case Live, NotTracked:
			values[i] = d.Value
		case Expired:
			expired++
		}
	}
	return values, expired
}

// putBin writes one bin. A positive ttl sets an expiry of now+ttl and
// NoExpiry sets none. With create=false an existing expire-bin keeps its
// tracking (value and expiry both update in place, never a downgrade) and
// everything else is written plain; with create=true the bin is written
// as an expire-bin regardless of its previous shape.
func putBin(bins record.Bins, now time.Time, name string, value []byte, ttl time.Duration, create bool) {
	if !create {
		if content, ok := bins[name]; ok && Decode(content).Tracked {
			bins[name] = EncodeTTL(value, ttl, now)
			return
		}
		bins[name] = value
		return
	}
	bins[name] = EncodeTTL(value, ttl, now)
}

// touchBin refreshes an expire-bin's expiry to now+ttl (or clears it for
// NoExpiry), keeping the stored value. Missing and plain bins are left
// untouched and reported as not refreshed.
func touchBin(bins record.Bins, now time.Time, name string, ttl time.Duration) (refreshed bool) {
	content, ok := bins[name]
	if !ok {
		return false
	}
	d := Decode(content)
	if !d.Tracked {
		return false
	}
	bins[name] = Encode(d.Value, expiryFromTTL(ttl, now))
	return true
}

// cleanBins removes the named bins that are expire-bins past their
// expiry. Missing bins, plain bins and live expire-bins are untouched.
func cleanBins(bins record.Bins, now time.Time, names []string) (removed int) {
	for _, name := range names {
		content, ok := bins[name]
		if !ok {
			continue
		}
		if Eval(Decode(content), now) == Expired {
			delete(bins, name)
			removed++
		}
	}
	return removed
}

// binTTL reports the time remaining until an expire-bin lapses. never is
// true for expire-bins with no expiry. Bins that are missing, plain or
// already expired report BinNotTrackedError.
func binTTL(bins record.Bins, now time.Time, name string) (remaining time.Duration, never bool, err error) {
	content, ok := bins[name]
	if !ok {
		return 0, false, BinNotTrackedError{Bin: name}
	}
	d := Decode(content)
	if Eval(d, now) != Live {
		return 0, false, BinNotTrackedError{Bin: name}
	}
	if d.ExpiresAt == NeverExpires {
		return 0, true, nil
	}
	return time.Duration(d.ExpiresAt - now.UnixNano()), false, nil
}
