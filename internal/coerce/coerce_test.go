package coerce

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPriceOrZero(t *testing.T) {
	price := decimal.NewFromInt(500)
	negative := decimal.NewFromInt(-1)

	tests := []struct {
		name     string
		input    *decimal.Decimal
		expected decimal.Decimal
	}{
		{name: "given nil price should return zero", input: nil, expected: decimal.Zero},
		{name: "given negative price should return zero", input: &negative, expected: decimal.Zero},
		{name: "given valid price should return price", input: &price, expected: price},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.expected.Equal(PriceOrZero(tt.input)))
		})
	}
}

func TestPreparationHoursOrDefault(t *testing.T) {
	valid := 72.0
	zero := 0.0
	negative := -3.0
	nan := math.NaN()
	inf := math.Inf(1)

	tests := []struct {
		name     string
		input    *float64
		expected float64
	}{
		{name: "given nil should return default", input: nil, expected: 24},
		{name: "given zero should return default", input: &zero, expected: 24},
		{name: "given negative should return default", input: &negative, expected: 24},
		{name: "given NaN should return default", input: &nan, expected: 24},
		{name: "given Inf should return default", input: &inf, expected: 24},
		{name: "given valid hours should return hours", input: &valid, expected: 72},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PreparationHoursOrDefault(tt.input))
		})
	}
}

func TestResolvePreparationHours(t *testing.T) {
	hours := 48.0
	days := 2.0

	tests := []struct {
		name     string
		hours    *float64
		days     *float64
		expected float64
	}{
		{name: "given both nil should return default", hours: nil, days: nil, expected: 24},
		{name: "given hours should return hours", hours: &hours, days: nil, expected: 48},
		{name: "given days should convert to hours", hours: nil, days: &days, expected: 48},
		{name: "given both should prefer hours", hours: &hours, days: &days, expected: 48},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ResolvePreparationHours(tt.hours, tt.days))
		})
	}
}
