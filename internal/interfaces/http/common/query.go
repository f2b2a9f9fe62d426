package common

import (
	"net/url"
	"strings"
	"time"

	"github.com/sngm3741/makoto-club-services/triage/internal/triage/domain"
)

const (
	// MaxRequestBody limits JSON request bodies.
	MaxRequestBody = 1 << 20
	// RequestTimeout bounds the work of a single request.
	RequestTimeout = 5 * time.Second
)

// ParseWindow reads from/to (RFC3339) when either is present, otherwise the
// range preset.
func ParseWindow(query url.Values, now time.Time) (domain.TimeWindow, error) {
	fromRaw := strings.TrimSpace(query.Get("from"))
	toRaw := strings.TrimSpace(query.Get("to"))
	if fromRaw == "" && toRaw == "" {
		return domain.ParseWindow(query.Get("range"), now)
	}
	var from, to time.Time
	var err error
	if fromRaw != "" {
		if from, err = time.Parse(time.RFC3339, fromRaw); err != nil {
			return domain.TimeWindow{}, domain.NewValidationError("from", "must be an RFC3339 timestamp")
		}
	}
	if toRaw != "" {
		if to, err = time.Parse(time.RFC3339, toRaw); err != nil {
			return domain.TimeWindow{}, domain.NewValidationError("to", "must be an RFC3339 timestamp")
		}
	}
	return domain.NewTimeWindow(from, to)
}
