// Package schedule computes delivery dates and time slots for the
// storefront. Everything here is a pure function over wall-clock input; the
// caller supplies now in the shop's local timezone.
package schedule

import (
	"math"
	"time"
)

const (
	OpenHour  = 10
	CloseHour = 19

	SlotInterval = 30 * time.Minute

	// MinLeadHours is the floor applied regardless of product preparation
	// time.
	MinLeadHours = 3.0

	ClosedWeekday = time.Sunday

	searchHorizonDays = 30

	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Supported delivery cities, the shop's coverage area around Guadalajara.
var cities = []string{
	"Guadalajara",
	"Zapopan",
	"Tlaquepaque",
	"Tonala",
	"Tlajomulco",
}

func Cities() []string {
	out := make([]string, len(cities))
	copy(out, cities)
	return out
}

func IsSupportedCity(city string) bool {
	for _, c := range cities {
		if c == city {
			return true
		}
	}
	return false
}

type Slot struct {
	Time     string `json:"time"`
	Disabled bool   `json:"disabled"`
}

type Selection struct {
	City string `json:"city"`
	Date string `json:"date"`
	Time string `json:"time"`
}

// EffectiveLeadHours floors the cart's aggregate preparation time at
// MinLeadHours. Non-finite and non-positive input collapses to the floor.
func EffectiveLeadHours(prepHours float64) float64 {
	if math.IsNaN(prepHours) || math.IsInf(prepHours, 0) || prepHours <= 0 {
		return MinLeadHours
	}
	return math.Max(prepHours, MinLeadHours)
}

// EarliestInstant is the first moment delivery is permissible.
func EarliestInstant(now time.Time, prepHours float64) time.Time {
	lead := EffectiveLeadHours(prepHours)
	return now.Add(time.Duration(lead * float64(time.Hour)))
}

// EarliestDate is the midnight of the earliest instant's calendar day. It is
// the lower bound for date selection; slot eligibility on that day is still
// governed by the full earliest instant.
func EarliestDate(now time.Time, prepHours float64) time.Time {
	return DateOf(EarliestInstant(now, prepHours))
}

// DateOf truncates an instant to midnight in its own location.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// ceilToGrid rounds an instant up to the next slot boundary. Instants
// already on a boundary stay put.
func ceilToGrid(t time.Time) time.Time {
	truncated := t.Truncate(SlotInterval)
	if truncated.Equal(t) {
		return t
	}
	return truncated.Add(SlotInterval)
}

// SlotsFor enumerates the delivery grid for a calendar date. Sundays have no
// slots. On the earliest instant's own day, grid points before the instant
// rounded up to the next boundary are disabled; later days are never
// lead-time-disabled.
func SlotsFor(date time.Time, earliest time.Time) []Slot {
	if date.Weekday() == ClosedWeekday {
		return []Slot{}
	}

	cutoff := ceilToGrid(earliest)
	leadApplies := sameDay(date, earliest)

	slots := []Slot{}
	open := time.Date(date.Year(), date.Month(), date.Day(), OpenHour, 0, 0, 0, date.Location())
	close := time.Date(date.Year(), date.Month(), date.Day(), CloseHour, 0, 0, 0, date.Location())
	for at := open; !at.After(close); at = at.Add(SlotInterval) {
		slots = append(slots, Slot{
			Time:     at.Format(TimeLayout),
			Disabled: leadApplies && at.Before(cutoff),
		})
	}
	return slots
}

// IsDateAvailable reports whether a date has at least one enabled slot.
func IsDateAvailable(date time.Time, earliest time.Time) bool {
	for _, slot := range SlotsFor(date, earliest) {
		if !slot.Disabled {
			return true
		}
	}
	return false
}

// FirstEnabledSlot returns the earliest enabled slot of a date.
func FirstEnabledSlot(date time.Time, earliest time.Time) (string, bool) {
	for _, slot := range SlotsFor(date, earliest) {
		if !slot.Disabled {
			return slot.Time, true
		}
	}
	return "", false
}

// NextAvailableDate scans forward from the later of start and the earliest
// day, up to 30 days, and returns the first date with an enabled slot. When
// the horizon is exhausted the last date scanned is returned rather than an
// error.
func NextAvailableDate(start time.Time, earliest time.Time) time.Time {
	candidate := DateOf(start)
	if floor := DateOf(earliest); candidate.Before(floor) {
		candidate = floor
	}
	for i := 0; i < searchHorizonDays; i++ {
		if IsDateAvailable(candidate, earliest) {
			return candidate
		}
		if i < searchHorizonDays-1 {
			candidate = candidate.AddDate(0, 0, 1)
		}
	}
	return candidate
}

// ClampSelection re-validates a delivery selection against the current cart
// lead time. A stale date or slot is silently corrected: the date is pushed
// to the next available one and, when the chosen slot is no longer enabled
// there, the first enabled slot takes its place. The city passes through
// untouched; unsupported cities are rejected at the request boundary.
func ClampSelection(sel Selection, now time.Time, prepHours float64) Selection {
	earliest := EarliestInstant(now, prepHours)

	requested, err := time.ParseInLocation(DateLayout, sel.Date, now.Location())
	if err != nil {
		requested = DateOf(earliest)
	}

	effective := NextAvailableDate(requested, earliest)

	chosen := ""
	if sel.Time != "" && effective.Equal(DateOf(requested)) {
		for _, slot := range SlotsFor(effective, earliest) {
			if slot.Time == sel.Time && !slot.Disabled {
				chosen = slot.Time
				break
			}
		}
	}
	if chosen == "" {
		if first, ok := FirstEnabledSlot(effective, earliest); ok {
			chosen = first
		}
	}

	return Selection{
		City: sel.City,
		Date: effective.Format(DateLayout),
		Time: chosen,
	}
}
