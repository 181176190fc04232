package models

import "github.com/shopspring/decimal"

func init() {
	// Persisted documents keep amounts as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// FormatAmount renders a currency amount with two decimals.
func FormatAmount(currency string, amount decimal.Decimal) string {
	if currency == "" {
		return amount.StringFixed(2)
	}
	return currency + " " + amount.StringFixed(2)
}
