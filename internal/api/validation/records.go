package validation

import (
	"fmt"
	"strings"
)

const (
	maxIdentifierLength = 256
	maxBinNameLength    = 64
	maxBatchEntries     = 128
)

// ValidateNonEmpty validates that a string is not empty
func ValidateNonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return ValidationError{Field: field, Reason: "cannot be empty"}
	}
	return nil
}

// ValidateIdentifier validates a namespace, set, or record identifier.
// The storage key encoding reserves "/" as a separator.
func ValidateIdentifier(field, value string) error {
	if err := ValidateNonEmpty(field, value); err != nil {
		return err
	}
	if len(value) > maxIdentifierLength {
		return ValidationError{Field: field, Reason: fmt.Sprintf("cannot exceed %d characters", maxIdentifierLength)}
	}
	if strings.Contains(value, "/") {
		return ValidationError{Field: field, Reason: "cannot contain '/'"}
	}
	return nil
}

// ValidateRecordPath validates the namespace/set/id triple addressing a record
func ValidateRecordPath(namespace, set, id string) error {
	if err := ValidateIdentifier("namespace", namespace); err != nil {
		return err
	}
	if err := ValidateIdentifier("set", set); err != nil {
		return err
	}
	return ValidateIdentifier("id", id)
}

// ValidateBinName validates a bin name
func ValidateBinName(name string) error {
	if err := ValidateNonEmpty("bin", name); err != nil {
		return err
	}
	if len(name) > maxBinNameLength {
		return ValidationError{Field: "bin", Reason: fmt.Sprintf("cannot exceed %d characters", maxBinNameLength)}
	}
	return nil
}

// ValidateBinNames validates a non-empty list of bin names
func ValidateBinNames(names []string) error {
	if len(names) == 0 {
		return ValidationError{Field: "bins", Reason: "at least one bin name is required"}
	}
	if len(names) > maxBatchEntries {
		return ValidationError{Field: "bins", Reason: fmt.Sprintf("cannot exceed %d names", maxBatchEntries)}
	}
	for _, name := range names {
		if err := ValidateBinName(name); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBatchSize validates a batch entry count
func ValidateBatchSize(count int) error {
	if count == 0 {
		return ValidationError{Field: "entries", Reason: "at least one entry is required"}
	}
	if count > maxBatchEntries {
		return ValidationError{Field: "entries", Reason: fmt.Sprintf("cannot exceed %d entries", maxBatchEntries)}
	}
	return nil
}

// ValidateTTLSeconds validates a wire-format TTL. Positive values are a
// lifetime in seconds and -1 means no expiration.
func ValidateTTLSeconds(ttlSeconds int64) error {
	if ttlSeconds < -1 {
		return ValidationError{Field: "ttl_seconds", Reason: "must be -1 (no expiration), 0, or a positive lifetime in seconds"}
	}
	const maxTTLSeconds = 10 * 365 * 24 * 60 * 60
	if ttlSeconds > maxTTLSeconds {
		return ValidationError{Field: "ttl_seconds", Reason: "cannot exceed 10 years"}
	}
	return nil
}
