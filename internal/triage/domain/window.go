package domain

import (
	"strings"
	"time"
)

// TimeWindow is the half-open interval [From, To). A zero bound is open.
type TimeWindow struct {
	From time.Time
	To   time.Time
}

// DefaultWindowPreset is used when a request names no range.
const DefaultWindowPreset = "30d"

var windowPresets = map[string]time.Duration{
	"24h": 24 * time.Hour,
	"7d":  7 * 24 * time.Hour,
	"30d": 30 * 24 * time.Hour,
	"90d": 90 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
}

// ParseWindow resolves a preset such as "7d" relative to now. "all" yields an
// unbounded window and an empty preset falls back to DefaultWindowPreset.
func ParseWindow(preset string, now time.Time) (TimeWindow, error) {
	preset = strings.ToLower(strings.TrimSpace(preset))
	if preset == "" {
		preset = DefaultWindowPreset
	}
	if preset == "all" {
		return TimeWindow{}, nil
	}
	d, ok := windowPresets[preset]
	if !ok {
		return TimeWindow{}, NewValidationError("range", "unknown preset %q", preset)
	}
	now = now.UTC()
	return TimeWindow{From: now.Add(-d), To: now}, nil
}

// NewTimeWindow validates explicit bounds.
func NewTimeWindow(from, to time.Time) (TimeWindow, error) {
	if !from.IsZero() && !to.IsZero() && !from.Before(to) {
		return TimeWindow{}, NewValidationError("range", "from must be before to")
	}
	return TimeWindow{From: from.UTC(), To: to.UTC()}, nil
}

func (w TimeWindow) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}

func (w TimeWindow) IsUnbounded() bool {
	return w.From.IsZero() && w.To.IsZero()
}
