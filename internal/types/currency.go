package types

import (
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultCurrency = "brl"

// currencyPrecision lists currencies whose minor unit is not 1/100.
var currencyPrecision = map[string]int32{
	"jpy": 0,
	"krw": 0,
	"vnd": 0,
	"clp": 0,
	"pyg": 0,
	"isk": 0,
	"ugx": 0,
	"xaf": 0,
	"xof": 0,
	"bhd": 3,
	"jod": 3,
	"kwd": 3,
	"omr": 3,
	"tnd": 3,
}

// GetCurrencyPrecision returns the number of decimal places of the currency's
// minor unit. Unknown currencies use 2.
func GetCurrencyPrecision(currency string) int32 {
	if p, ok := currencyPrecision[NormalizeCurrency(currency)]; ok {
		return p
	}
	return 2
}

func NormalizeCurrency(currency string) string {
	return strings.ToLower(strings.TrimSpace(currency))
}

// IsValidCurrency checks for a three letter ISO 4217 style code.
func IsValidCurrency(currency string) bool {
	c := NormalizeCurrency(currency)
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

// RoundToCurrencyPrecision rounds half away from zero at the currency's precision.
func RoundToCurrencyPrecision(amount decimal.Decimal, currency string) decimal.Decimal {
	return amount.Round(GetCurrencyPrecision(currency))
}

// ToMinorUnits converts a major-unit amount to integer minor units, rounding
// half up (99.90 brl -> 9990, 1000.5 jpy -> 1001).
func ToMinorUnits(amount decimal.Decimal, currency string) int64 {
	p := GetCurrencyPrecision(currency)
	return amount.Shift(p).Round(0).IntPart()
}

// FromMinorUnits is the inverse of ToMinorUnits.
func FromMinorUnits(amount int64, currency string) decimal.Decimal {
	return decimal.NewFromInt(amount).Shift(-GetCurrencyPrecision(currency))
}
