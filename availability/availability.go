// Package availability resolves which time slots can be booked for a sport on
// a date and tracks the user's pick among them.
package availability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"campus-sports-cli/api"
)

const DateLayout = "2006-01-02"

// SlotSource is the remote view of free slots for a (sport, date) pair.
type SlotSource interface {
	AvailableTimeSlots(ctx context.Context, sport api.Sport, date string) ([]string, error)
}

// Phase is where the availability for the current inputs stands.
type Phase int

const (
	AwaitingInput Phase = iota
	Loading
	Loaded
	Failed
)

func (p Phase) String() string {
	switch p {
	case AwaitingInput:
		return "awaiting_input"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Result is the outcome of one resolution. Loaded with no slots is a valid
// empty answer; Failed means the request itself did not succeed.
type Result struct {
	Phase Phase
	Slots []string
	Err   error
}

// ParseDate accepts a YYYY-MM-DD calendar date.
func ParseDate(input string) (time.Time, bool) {
	parsed, err := time.Parse(DateLayout, strings.TrimSpace(input))
	if err != nil {
		return time.Time{}, false
	}
	return parsed, true
}

// ready reports whether both inputs are present and usable.
func ready(sport api.Sport, date string) bool {
	if _, ok := api.ParseSport(string(sport)); !ok {
		return false
	}
	_, ok := ParseDate(date)
	return ok
}

// Resolve fetches the slots for one pair and drops the ones already past.
// Missing or invalid inputs never reach the network.
func Resolve(ctx context.Context, src SlotSource, sport api.Sport, date string, now time.Time) Result {
	if !ready(sport, date) {
		return Result{Phase: AwaitingInput}
	}
	slots, err := src.AvailableTimeSlots(ctx, sport, date)
	if err != nil {
		return Result{Phase: Failed, Err: err}
	}
	return Result{Phase: Loaded, Slots: FilterPast(slots, date, now)}
}

// FilterPast removes slots starting at or before the current minute when date
// is today in now's location. Other dates pass through untouched, and order
// is preserved.
func FilterPast(slots []string, date string, now time.Time) []string {
	filtered := make([]string, 0, len(slots))
	if strings.TrimSpace(date) != now.Format(DateLayout) {
		return append(filtered, slots...)
	}

	current := now.Hour()*60 + now.Minute()
	for _, slot := range slots {
		minutes, ok := slotMinutes(slot)
		if ok && minutes <= current {
			continue
		}
		filtered = append(filtered, slot)
	}
	return filtered
}

// slotMinutes reads the leading HH:MM of a slot label. Labels that do not
// start with a valid clock time are reported as unparseable.
func slotMinutes(slot string) (int, bool) {
	parts := strings.SplitN(strings.TrimSpace(slot), ":", 3)
	if len(parts) < 2 {
		return 0, false
	}
	minuteText := parts[1]
	if len(minuteText) > 2 {
		minuteText = minuteText[:2]
	}
	hours, ok := clockField(parts[0], 1, 24)
	if !ok {
		return 0, false
	}
	minutes, ok := clockField(minuteText, 2, 60)
	if !ok {
		return 0, false
	}
	return hours*60 + minutes, true
}

// clockField parses an unsigned field of minDigits to 2 digits below limit.
func clockField(text string, minDigits, limit int) (int, bool) {
	if len(text) < minDigits || len(text) > 2 {
		return 0, false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	value, err := strconv.Atoi(text)
	if err != nil || value >= limit {
		return 0, false
	}
	return value, true
}

// BookableDates lists the dates a booking may be made for: today and tomorrow.
func BookableDates(now time.Time) []string {
	return []string{now.Format(DateLayout), now.AddDate(0, 0, 1).Format(DateLayout)}
}

// ParseBookableDate turns "today", "tomorrow" or YYYY-MM-DD into a date string
// and rejects anything outside today and tomorrow.
func ParseBookableDate(input string, now time.Time) (string, error) {
	dates := BookableDates(now)
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "":
		return "", fmt.Errorf("date is required")
	case "today":
		return dates[0], nil
	case "tomorrow":
		return dates[1], nil
	}
	parsed, ok := ParseDate(input)
	if !ok {
		return "", fmt.Errorf("invalid date %q (expected YYYY-MM-DD)", input)
	}
	date := parsed.Format(DateLayout)
	for _, allowed := range dates {
		if date == allowed {
			return date, nil
		}
	}
	return "", fmt.Errorf("bookings can only be made for %s or %s", dates[0], dates[1])
}
