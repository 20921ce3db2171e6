package utils

import "github.com/shopspring/decimal"

// MoneyPlaces is the number of decimal places amounts are stored with.
const MoneyPlaces = 2

// RoundMoney rounds an amount half away from zero to MoneyPlaces.
// Example: 4.995 returns 5.00, 1.234 returns 1.23
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MoneyPlaces)
}

// PercentOf returns rate × amount rounded to MoneyPlaces.
func PercentOf(amount, rate decimal.Decimal) decimal.Decimal {
	return RoundMoney(amount.Mul(rate))
}

// FormatMoney renders an amount with exactly MoneyPlaces digits.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(MoneyPlaces)
}
