package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromCentsDecimal(t *testing.T) {
	tests := []struct {
		name     string
		cents    int64
		currency string
		want     string
	}{
		{name: "whole dollars", cents: 3500, currency: "USD", want: "35"},
		{name: "with cents", cents: 1099, currency: "USD", want: "10.99"},
		{name: "zero", cents: 0, currency: "USD", want: "0"},
		{name: "negative", cents: -250, currency: "EUR", want: "-2.5"},
		{name: "zero-decimal currency", cents: 3500, currency: "JPY", want: "3500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := FromCents(tt.cents, tt.currency)
			assert.Equal(t, tt.want, a.Decimal().String())
		})
	}
}

func TestFromDecimal(t *testing.T) {
	t.Run("round trips exactly", func(t *testing.T) {
		a, err := FromDecimal(decimal.RequireFromString("10.99"), "USD")
		require.NoError(t, err)
		assert.Equal(t, int64(1099), a.Cents)
	})

	t.Run("rejects sub-minor-unit precision", func(t *testing.T) {
		_, err := FromDecimal(decimal.RequireFromString("10.005"), "USD")
		assert.Error(t, err)
	})

	t.Run("JPY has no minor unit", func(t *testing.T) {
		a, err := FromDecimal(decimal.RequireFromString("3500"), "JPY")
		require.NoError(t, err)
		assert.Equal(t, int64(3500), a.Cents)

		_, err = FromDecimal(decimal.RequireFromString("35.5"), "JPY")
		assert.Error(t, err)
	})

	t.Run("normalizes currency to upper case", func(t *testing.T) {
		a, err := FromDecimal(decimal.RequireFromString("1"), "usd")
		require.NoError(t, err)
		assert.Equal(t, "USD", a.Currency)
	})
}

func TestAdd(t *testing.T) {
	t.Run("same currency", func(t *testing.T) {
		sum, err := FromCents(1000, "USD").Add(FromCents(2500, "USD"))
		require.NoError(t, err)
		assert.Equal(t, int64(3500), sum.Cents)
	})

	t.Run("currency mismatch", func(t *testing.T) {
		_, err := FromCents(1000, "USD").Add(FromCents(2500, "EUR"))
		assert.Error(t, err)
	})
}

func TestConsistent(t *testing.T) {
	assert.True(t, Consistent(3500, decimal.RequireFromString("35.00"), "USD"))
	assert.True(t, Consistent(3500, decimal.RequireFromString("3500"), "JPY"))
	assert.False(t, Consistent(3500, decimal.RequireFromString("35.01"), "USD"))
	assert.False(t, Consistent(3500, decimal.RequireFromString("35.005"), "USD"))
}

func TestString(t *testing.T) {
	assert.Equal(t, "35.00 USD", FromCents(3500, "USD").String())
	assert.Equal(t, "3500 JPY", FromCents(3500, "JPY").String())
}
