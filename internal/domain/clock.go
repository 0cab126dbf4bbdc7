package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const MinutesPerDay = 1440

// ErrInvalidClock is returned for time-of-day strings that are not HH:MM.
var ErrInvalidClock = errors.New("invalid HH:MM time")

// ParseClock converts "HH:MM" into minutes since midnight. "24:00" is
// accepted as the end of the day.
func ParseClock(s string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	h, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	m, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	if h < 0 || m < 0 || m > 59 || h > 24 || (h == 24 && m != 0) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM". Values at or past
// the end of the day are not wrapped, so 1440 renders as "24:00".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ZoneOf returns the time-of-day zone that contains the given minute.
func ZoneOf(minute int) TimeZone {
	m := ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	switch {
	case m >= 480 && m < 720:
		return ZoneMorning
	case m >= 720 && m < 1080:
		return ZoneAfternoon
	case m >= 1080 && m < 1260:
		return ZoneEvening
	default:
		return ZoneNight
	}
}
