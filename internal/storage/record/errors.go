package record

import "fmt"

// RecordNotFoundError indicates no record exists at a key
type RecordNotFoundError struct {
	Key Key
}

func (e RecordNotFoundError) Error() string {
	return fmt.Sprintf("record not found: %s", e.Key)
}

// InvalidKeyError indicates a malformed record key
type InvalidKeyError struct {
	Key    Key
	Reason string
}

func (e InvalidKeyError) Error() string {
	return fmt.Sprintf("invalid key %q: %s", e.Key.String(), e.Reason)
}

// StoreClosedError indicates an operation against a closed store
type StoreClosedError struct{}

func (e StoreClosedError) Error() string {
	return "record store is closed"
}
