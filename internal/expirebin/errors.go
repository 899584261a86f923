package expirebin

import "fmt"

// BinNotTrackedError is returned by TTL queries against bins that are
// missing, plain, or already expired.
type BinNotTrackedError struct {
	Bin string
}

func (e BinNotTrackedError) Error() string {
	return fmt.Sprintf("bin %q is not a live expire-bin", e.Bin)
}

// SchemaViolationError is returned when a put value fails the set's
// registered value schema.
type SchemaViolationError struct {
	Bin    string
	Reason string
}

func (e SchemaViolationError) Error() string {
	return fmt.Sprintf("value for bin %q rejected by set schema: %s", e.Bin, e.Reason)
}
