package expirebin

import "time"

// BinStatus classifies a bin at a given instant
type BinStatus int

const (
	// NotTracked means the bin is a plain bin outside expiration tracking
	NotTracked BinStatus = iota
	// Live means the bin is an expire-bin whose expiry has not passed
	Live
	// Expired means the bin is an expire-bin whose expiry has passed
	Expired
)

func (s BinStatus) String() string {
	switch s {
	case NotTracked:
		return "not_tracked"
	case Live:
		return "live"
	case Expired:
		return "expired"
	default:
		return "unknown"
	}
}

// Eval classifies decoded bin content against a reference instant. A
// tracked bin is Expired once its expiration is at or before now; plain
// bins are never expired.
func Eval(d Decoded, now time.Time) BinStatus {
	if !d.Tracked {
		return NotTracked
	}
	if d.ExpiresAt != NeverExpires && d.ExpiresAt <= now.UnixNano() {
		return Expired
	}
	return Live
}
