package alarm

import (
	"errors"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("expected HH:MM")

// ParseTimeOfDay parses "HH:MM" into a timestamp on today's date in loc.
// Only the hour/minute component is meaningful downstream.
func ParseTimeOfDay(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 {
		return time.Time{}, ErrInvalidTimeOfDay
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return time.Time{}, errors.New("invalid hour")
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return time.Time{}, errors.New("invalid minute")
	}
	now := time.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), h, m, 0, 0, loc), nil
}

// ParseRepeatDays parses a comma-separated list of weekday indices, e.g.
// "1,2,3,4,5". Empty input means one-shot.
func ParseRepeatDays(s string) ([]int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	days := make([]int, 0, len(parts))
	for _, p := range parts {
		d, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, ErrInvalidRepeatDay
		}
		days = append(days, d)
	}
	if err := ValidateRepeatDays(days); err != nil {
		return nil, err
	}
	return days, nil
}
