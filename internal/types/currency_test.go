package types

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		amount   string
		currency string
		expected int64
	}{
		{"BRL_Standard", "99.90", "brl", 9990},
		{"BRL_Annual", "999.00", "brl", 99900},
		{"BRL_HalfUp", "10.125", "brl", 1013},
		{"BRL_BelowHalf", "10.124", "brl", 1012},
		{"USD_Uppercase", "12.34", "USD", 1234},
		{"JPY_NoDecimals", "1000.5", "jpy", 1001},
		{"JPY_Whole", "980", "jpy", 980},
		{"KWD_ThreeDecimals", "1.2345", "kwd", 1235},
		{"Zero", "0", "brl", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToMinorUnits(decimal.RequireFromString(tt.amount), tt.currency)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFromMinorUnits(t *testing.T) {
	assert.True(t, FromMinorUnits(9990, "brl").Equal(decimal.RequireFromString("99.90")))
	assert.True(t, FromMinorUnits(1001, "jpy").Equal(decimal.RequireFromString("1001")))
}

func TestCurrencyRounding_EdgeCases(t *testing.T) {
	t.Run("SubCent_BRL", func(t *testing.T) {
		tests := []struct {
			amount   string
			expected string
		}{
			{"0.001", "0.00"},
			{"0.004", "0.00"},
			{"0.005", "0.01"},
			{"0.015", "0.02"},
		}

		for _, tt := range tests {
			rounded := RoundToCurrencyPrecision(decimal.RequireFromString(tt.amount), "brl")
			assert.True(t, rounded.Equal(decimal.RequireFromString(tt.expected)),
				"BRL %s should round to %s, got %s", tt.amount, tt.expected, rounded.String())
		}
	})

	t.Run("UnknownCurrencyDefaultsToTwo", func(t *testing.T) {
		assert.Equal(t, int32(2), GetCurrencyPrecision("xyz"))
	})
}

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency("brl"))
	assert.True(t, IsValidCurrency(" USD "))
	assert.False(t, IsValidCurrency("br"))
	assert.False(t, IsValidCurrency("b1l"))
	assert.False(t, IsValidCurrency(""))
}
