package common

import (
	"strconv"
	"strings"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

// ParseInt parses an optional integer query parameter. Empty yields fallback.
func ParseInt(field, value string, fallback int) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, domain.NewValidationError(field, "must be an integer")
	}
	return parsed, nil
}

// ParseOptionalBool parses an optional boolean query parameter. Empty yields nil.
func ParseOptionalBool(field, value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return nil, domain.NewValidationError(field, "must be true or false")
	}
	return &parsed, nil
}

// IntPtr returns pointer helper for ints.
func IntPtr(v int) *int {
	return &v
}
