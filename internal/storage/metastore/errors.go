package metastore

import "fmt"

// SetNotFoundError indicates a set was not registered
type SetNotFoundError struct {
	Path string
}

func (e SetNotFoundError) Error() string {
	return fmt.Sprintf("set not found: %s", e.Path)
}

// SetExistsError indicates a set is already registered
type SetExistsError struct {
	Path string
}

func (e SetExistsError) Error() string {
	return fmt.Sprintf("set already exists: %s", e.Path)
}

// InvalidConfigError indicates an invalid set configuration
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config field '%s': %s", e.Field, e.Reason)
}
