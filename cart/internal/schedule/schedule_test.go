package schedule

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// Guadalajara offset, no half-hour weirdness.
var loc = time.FixedZone("CST", -6*60*60)

// 2025-03-15 is a Saturday, 2025-03-16 a Sunday.
func saturday(hour, minute int) time.Time {
	return time.Date(2025, time.March, 15, hour, minute, 0, 0, loc)
}

func TestEffectiveLeadHours(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "above floor stays", input: 48, expected: 48},
		{name: "below floor is floored", input: 1, expected: 3},
		{name: "zero is floored", input: 0, expected: 3},
		{name: "negative is floored", input: -5, expected: 3},
		{name: "NaN is floored", input: math.NaN(), expected: 3},
		{name: "Inf is floored", input: math.Inf(1), expected: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveLeadHours(tt.input))
		})
	}
}

func TestEarliestInstant(t *testing.T) {
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, loc)

	assert.Equal(t, now.Add(48*time.Hour), EarliestInstant(now, 48))
	assert.Equal(t, now.Add(3*time.Hour), EarliestInstant(now, 1))
	assert.Equal(t, now.Add(3*time.Hour), EarliestInstant(now, math.NaN()))
}

func TestSlotsForSundayIsEmpty(t *testing.T) {
	sunday := time.Date(2025, time.March, 16, 0, 0, 0, 0, loc)

	assert.Empty(t, SlotsFor(sunday, saturday(8, 0)))
	assert.Empty(t, SlotsFor(sunday, sunday.Add(-200*time.Hour)))
	assert.False(t, IsDateAvailable(sunday, saturday(8, 0)))
}

func TestSlotsForCoversBusinessHoursInclusive(t *testing.T) {
	monday := time.Date(2025, time.March, 17, 0, 0, 0, 0, loc)
	slots := SlotsFor(monday, saturday(14, 20))

	// 10:00 through 19:00 on a 30 minute grid, both endpoints included.
	assert.Len(t, slots, 19)
	assert.Equal(t, "10:00", slots[0].Time)
	assert.Equal(t, "19:00", slots[len(slots)-1].Time)
}

func TestSlotsForEarliestDayDisablesBeforeRoundedCutoff(t *testing.T) {
	earliest := saturday(14, 20)
	slots := SlotsFor(DateOf(earliest), earliest)

	firstEnabled := ""
	for _, slot := range slots {
		at, err := time.ParseInLocation(TimeLayout, slot.Time, loc)
		assert.NoError(t, err)
		cutoff := time.Date(0, time.January, 1, 14, 30, 0, 0, loc)
		if at.Before(cutoff) {
			assert.True(t, slot.Disabled, "slot %s should be disabled", slot.Time)
		} else {
			assert.False(t, slot.Disabled, "slot %s should be enabled", slot.Time)
		}
		if firstEnabled == "" && !slot.Disabled {
			firstEnabled = slot.Time
		}
	}
	assert.Equal(t, "14:30", firstEnabled)
}

func TestSlotsForGridAlignedEarliestKeepsItsSlot(t *testing.T) {
	earliest := saturday(14, 30)
	slots := SlotsFor(DateOf(earliest), earliest)

	for _, slot := range slots {
		switch slot.Time {
		case "14:00":
			assert.True(t, slot.Disabled)
		case "14:30":
			assert.False(t, slot.Disabled)
		}
	}
}

func TestSlotsForLaterDaysIgnoreLeadTime(t *testing.T) {
	earliest := saturday(14, 20)
	monday := time.Date(2025, time.March, 17, 0, 0, 0, 0, loc)

	for _, slot := range SlotsFor(monday, earliest) {
		assert.False(t, slot.Disabled, "slot %s on a later day should be enabled", slot.Time)
	}
}

func TestSlotsForEarliestAfterCloseDisablesWholeDay(t *testing.T) {
	earliest := saturday(20, 0)

	assert.False(t, IsDateAvailable(DateOf(earliest), earliest))
	_, ok := FirstEnabledSlot(DateOf(earliest), earliest)
	assert.False(t, ok)
}

func TestNextAvailableDateSkipsSundayAndFullDays(t *testing.T) {
	// Earliest instant after close on Saturday: Saturday is full, Sunday is
	// closed, so the next available date is Monday.
	earliest := saturday(20, 0)
	next := NextAvailableDate(DateOf(earliest), earliest)

	assert.Equal(t, time.Monday, next.Weekday())
	assert.Equal(t, 17, next.Day())
}

func TestNextAvailableDateNeverReturnsSundayWithinHorizon(t *testing.T) {
	earliest := saturday(14, 20)
	start := time.Date(2025, time.March, 10, 0, 0, 0, 0, loc)

	for i := 0; i < 30; i++ {
		candidate := start.AddDate(0, 0, i)
		result := NextAvailableDate(candidate, earliest)

		assert.NotEqual(t, time.Sunday, result.Weekday())
		assert.True(t, IsDateAvailable(result, earliest))
		assert.False(t, result.Before(DateOf(earliest)))
	}
}

func TestNextAvailableDateFloorsAtEarliestDay(t *testing.T) {
	earliest := saturday(14, 20)
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, loc)

	result := NextAvailableDate(monday, earliest)
	assert.Equal(t, DateOf(earliest), result)
}

func TestClampSelectionKeepsValidSelection(t *testing.T) {
	now := time.Date(2025, time.March, 12, 14, 20, 0, 0, loc)

	sel := Selection{City: "Guadalajara", Date: "2025-03-15", Time: "15:00"}
	clamped := ClampSelection(sel, now, 72)

	assert.Equal(t, sel, clamped)
}

func TestClampSelectionCorrectsStaleSlot(t *testing.T) {
	// With 72h of preparation the earliest instant is Saturday 14:20, so a
	// previously valid 11:00 Saturday slot is no longer enabled.
	now := time.Date(2025, time.March, 12, 14, 20, 0, 0, loc)

	sel := Selection{City: "Zapopan", Date: "2025-03-15", Time: "11:00"}
	clamped := ClampSelection(sel, now, 72)

	assert.Equal(t, "2025-03-15", clamped.Date)
	assert.Equal(t, "14:30", clamped.Time)
	assert.Equal(t, "Zapopan", clamped.City)
}

func TestClampSelectionPushesSundayToMonday(t *testing.T) {
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, loc)

	sel := Selection{City: "Guadalajara", Date: "2025-03-16", Time: "12:00"}
	clamped := ClampSelection(sel, now, 24)

	assert.Equal(t, "2025-03-17", clamped.Date)
	assert.Equal(t, "10:00", clamped.Time)
}

func TestClampSelectionDefaultsMissingDate(t *testing.T) {
	now := time.Date(2025, time.March, 12, 9, 0, 0, 0, loc)

	clamped := ClampSelection(Selection{City: "Tonala"}, now, 1)

	// 3 hour floor lands at 12:00 the same day.
	assert.Equal(t, "2025-03-12", clamped.Date)
	assert.Equal(t, "12:00", clamped.Time)
}

func TestEndToEndSeventyTwoHourExample(t *testing.T) {
	// Cart prepared in 72h from Wednesday 14:20 lands on Saturday 14:20; the
	// 14:30 slot is the first enabled one and Sunday stays fully closed.
	now := time.Date(2025, time.March, 12, 14, 20, 0, 0, loc)
	earliest := EarliestInstant(now, 72)

	assert.Equal(t, saturday(14, 20), earliest)

	first, ok := FirstEnabledSlot(DateOf(earliest), earliest)
	assert.True(t, ok)
	assert.Equal(t, "14:30", first)

	sunday := DateOf(earliest).AddDate(0, 0, 1)
	assert.Empty(t, SlotsFor(sunday, earliest))
}

func TestIsSupportedCity(t *testing.T) {
	assert.True(t, IsSupportedCity("Guadalajara"))
	assert.True(t, IsSupportedCity("Zapopan"))
	assert.False(t, IsSupportedCity("Monterrey"))
	assert.Len(t, Cities(), 5)
}
