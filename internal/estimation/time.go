package estimation

import (
	"strconv"
	"strings"
	"time"

	"github.com/techb2bnew/coconut-delivery/pkg/errors"
)

// orderTimeLayouts are tried in order. Layouts without a zone offset are
// interpreted as UTC so that two clients sending the same wall-clock string
// always resolve to the same instant.
var orderTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseOrderTime parses a client-supplied order timestamp. Offset-less
// timestamps are treated as UTC.
func ParseOrderTime(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, errors.New(errors.CodeValidation, "order timestamp is required")
	}
	for _, layout := range orderTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New(errors.CodeValidation, "unrecognized order timestamp format").
		WithDetails(map[string]any{"value": raw})
}

// parseCutoff converts "HH:MM" or "HH:MM:SS" into minutes past midnight.
// Seconds are ignored for the comparison.
func parseCutoff(raw string) (int, bool) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	if len(parts) == 3 {
		if _, err := strconv.Atoi(parts[2]); err != nil {
			return 0, false
		}
	}
	return hours*60 + minutes, true
}

// resolveLocation loads the franchise's configured IANA timezone, falling
// back to the order timestamp's own location when the name is blank or
// unknown.
func resolveLocation(tzName string, orderTime time.Time) *time.Location {
	if tzName == "" {
		return orderTime.Location()
	}
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return orderTime.Location()
	}
	return loc
}

// midnight truncates t to the start of its day in loc.
func midnight(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}
