package util

import (
	"errors"
	"time"
)

// istZone is the default zone for admin-supplied timestamps that carry no
// explicit offset.
var istZone = time.FixedZone("IST", 5*60*60+30*60)

// Remaining computes the seconds left in a timed session. The returned
// seconds are clamped at 0; expired reports whether the raw remaining time
// is <= 0. Callers must pass one consistently-read now per request.
func Remaining(startedAt time.Time, durationMinutes int, now time.Time) (int, bool) {
	raw := durationMinutes*60 - int(now.Sub(startedAt).Seconds())
	if raw <= 0 {
		return 0, true
	}
	return raw, false
}

// CanStartNow reports whether an availability window permits starting at
// now. Either bound may be nil, leaving that side unconstrained.
func CanStartNow(availableFrom, availableUntil *time.Time, now time.Time) bool {
	if availableFrom != nil && now.Before(*availableFrom) {
		return false
	}
	if availableUntil != nil && now.After(*availableUntil) {
		return false
	}
	return true
}

var flexibleLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseFlexibleTime parses an admin-supplied timestamp and normalizes it to
// UTC. Inputs with a Z suffix or an explicit offset are converted as-is;
// inputs without a zone are interpreted as IST (+05:30).
func ParseFlexibleTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	for _, layout := range flexibleLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, istZone); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.New("unrecognized timestamp format: " + s)
}
