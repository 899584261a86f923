package expirebin

import (
	"time"
)

// NoExpiry is the TTL value marking an expire-bin that never lapses
const NoExpiry time.Duration = -1

// NeverExpires is the stored expiration sentinel for bins with no expiry
const NeverExpires int64 = 0

// Operation status codes reported to callers
const (
	// OpStatusOK means every requested write was applied
	OpStatusOK = 0
	// OpStatusFailed means at least one requested write was not applied
	OpStatusFailed = 1
)

// Decoded is the result of decoding one bin's content
type Decoded struct {
	// Tracked reports whether the content structurally matched the
	// expire-bin encoding
	Tracked bool
	// Value is the logical payload (the raw content for plain bins)
	Value []byte
	// ExpiresAt is the absolute expiration in unix nanoseconds;
	// NeverExpires means no expiry. Only meaningful when Tracked.
	ExpiresAt int64
}

// PutEntry is one element of a batch put.
//
// TTL selects the write policy for the entry: a positive TTL creates or
// updates an expire-bin lapsing at now+TTL, NoExpiry creates or updates an
// expire-bin that never lapses, and zero applies the plain-write policy
// (equivalent to put with create=false).
type PutEntry struct {
	Bin   string
	Value []byte
	TTL   time.Duration
}

// TouchEntry is one element of a batch TTL refresh
type TouchEntry struct {
	Bin string
	TTL time.Duration
}

// EntryResult is the outcome of one batch entry
type EntryResult struct {
	// Bin is the entry's bin name
	Bin string
	// Applied reports whether the entry changed the record. Touch entries
	// targeting missing or plain bins are successful no-ops with
	// Applied=false.
	Applied bool
	// Err is the entry's failure, if any
	Err error
}

// BatchResult reports a batch operation: an aggregate status code plus
// per-entry outcomes. Batches are not transactional - entries applied
// before a failing entry remain applied.
type BatchResult struct {
	Status  int
	Entries []EntryResult
}

// Failed returns true if the batch did not fully apply
func (r BatchResult) Failed() bool {
	return r.Status != OpStatusOK
}
