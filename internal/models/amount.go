package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of decimals kept for cash counts, earnings and report amounts.
const MoneyPlaces int32 = 2

// ReductionPlaces is the number of decimals a reduced transaction value is rounded to.
// The register has always rounded reductions to one decimal (value * factor, to the
// nearest ten cents, ties to even) while every other amount keeps two. Changing the
// policy means changing this constant only.
const ReductionPlaces int32 = 1

// RoundMoney rounds an amount to MoneyPlaces decimals.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPlaces)
}

// ReduceAmount applies a reduction factor with the ReductionPlaces rounding policy.
func ReduceAmount(value, factor decimal.Decimal) decimal.Decimal {
	return value.Mul(factor).RoundBank(ReductionPlaces)
}

// FormatAmount renders an amount with MoneyPlaces decimals, e.g. "11.00".
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(MoneyPlaces)
}

// ParseAmount parses an amount typed by an operator or read from a report.
// A comma decimal separator, a euro sign and surrounding spaces are tolerated.
func ParseAmount(amountStr string) (decimal.Decimal, error) {
	amount := strings.TrimSpace(amountStr)
	amount = strings.ReplaceAll(amount, "€", "")
	amount = strings.ReplaceAll(amount, "â‚¬", "")
	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, ",", ".")

	dec, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount string '%s': %w", amountStr, err)
	}
	return dec, nil
}
