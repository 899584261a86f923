package schema

import "fmt"

// ValidationError indicates a bin value failed schema validation
type ValidationError struct {
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("schema validation failed: %s", e.Reason)
}
