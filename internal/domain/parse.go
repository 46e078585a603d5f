package domain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidClock = errors.New("invalid time, expected HH:MM")
	ErrInvalidDate  = errors.New("invalid date, expected DD.MM.YYYY")
)

// ParseClock validates a "HH:MM" string (hour 0..23, minute 0..59) and returns
// it zero-padded. Anything else is rejected.
func ParseClock(s string) (string, error) {
	s = strings.TrimSpace(s)
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return "", ErrInvalidClock
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return "", ErrInvalidClock
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return "", ErrInvalidClock
	}
	return fmt.Sprintf("%02d:%02d", h, m), nil
}

// ParsePlanItems splits a free-text line on ';' and parses each raw item for an
// optional leading time prefix: exactly 5 characters, colon in the middle, both
// halves numeric and in range. On match the prefix becomes the item's Time and
// the remainder its Text; otherwise the whole item is stored untimed. Blank
// fragments are dropped; order is preserved.
func ParsePlanItems(line string) []PlanItem {
	var items []PlanItem
	for _, raw := range strings.Split(line, ";") {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		prefix, rest, ok := strings.Cut(raw, " ")
		if ok && isClockPrefix(prefix) {
			if rest = strings.TrimSpace(rest); rest != "" {
				items = append(items, PlanItem{Time: prefix, Text: rest})
				continue
			}
		}
		items = append(items, PlanItem{Text: raw})
	}
	return items
}

// isClockPrefix reports whether s is exactly "HH:MM" with valid hour/minute.
func isClockPrefix(s string) bool {
	if len(s) != 5 || s[2] != ':' {
		return false
	}
	h, err := strconv.Atoi(s[:2])
	if err != nil || h < 0 || h > 23 {
		return false
	}
	m, err := strconv.Atoi(s[3:])
	if err != nil || m < 0 || m > 59 {
		return false
	}
	return true
}

// ParseGlobalPlans splits a free-text line on ';' into trimmed non-empty
// strings. Global plans carry no time prefix.
func ParseGlobalPlans(line string) []string {
	var out []string
	for _, raw := range strings.Split(line, ";") {
		if raw = strings.TrimSpace(raw); raw != "" {
			out = append(out, raw)
		}
	}
	return out
}

// ParseDate parses "DD.MM.YYYY".
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("02.01.2006", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ValidateTZ checks that tz is a loadable IANA location.
func ValidateTZ(tz string) (string, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return "", err
	}
	return loc.String(), nil
}

// OffsetLabel renders the current UTC offset of a zone, e.g. "UTC+08:00".
// An unknown zone falls back to the zone name itself.
func OffsetLabel(tz string) string {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return tz
	}
	_, off := time.Now().In(loc).Zone()
	sign := "+"
	if off < 0 {
		sign = "-"
		off = -off
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, off/3600, off%3600/60)
}

// LocalNow projects now into the profile's timezone; an invalid zone falls back
// to fallbackTZ, and failing that to UTC, so one bad profile never fails a tick.
func LocalNow(now time.Time, tz, fallbackTZ string) time.Time {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		if loc, err = time.LoadLocation(fallbackTZ); err != nil {
			loc = time.UTC
		}
	}
	return now.In(loc)
}

// DayName maps a time.Weekday to the canonical Monday-first name.
func DayName(wd time.Weekday) string {
	return Days[(int(wd)+6)%7]
}

// FormatPlanLine renders an item as "time — text" or bare text when untimed.
func FormatPlanLine(it PlanItem) string {
	if it.Time != "" {
		return it.Time + " — " + it.Text
	}
	return it.Text
}
