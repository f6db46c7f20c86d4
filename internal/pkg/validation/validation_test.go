package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidCurrency(t *testing.T) {
	assert.True(t, IsValidCurrency("USD"))
	assert.True(t, IsValidCurrency("EUR"))
	assert.False(t, IsValidCurrency("usd"))
	assert.False(t, IsValidCurrency("US"))
	assert.False(t, IsValidCurrency("USDT"))
	assert.False(t, IsValidCurrency(""))
}

func TestIsValidPeriod(t *testing.T) {
	for _, p := range []string{"1d", "7d", "1m", "3m", "1y", "all"} {
		assert.True(t, IsValidPeriod(p), p)
	}
	assert.False(t, IsValidPeriod("2w"))
	assert.False(t, IsValidPeriod(""))
}
