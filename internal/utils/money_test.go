package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPercentOf(t *testing.T) {
	rate := decimal.RequireFromString("0.25")

	assert.Equal(t, "5.00", FormatMoney(PercentOf(decimal.NewFromInt(20), rate)))
	assert.Equal(t, "3.33", FormatMoney(PercentOf(decimal.RequireFromString("13.33"), rate)))
	assert.Equal(t, "0.00", FormatMoney(PercentOf(decimal.Zero, rate)))
}

func TestRoundMoney(t *testing.T) {
	assert.True(t, decimal.RequireFromString("5.00").Equal(RoundMoney(decimal.RequireFromString("4.995"))))
	assert.True(t, decimal.RequireFromString("1.23").Equal(RoundMoney(decimal.RequireFromString("1.234"))))
}
