package main

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBTCToSatoshis(t *testing.T) {
	tests := []struct {
		btc  float64
		sats int64
	}{
		{0.08, 8_000_000},
		{0.008, 800_000},
		{1, 100_000_000},
		{0.00000001, 1},
		{0.1 + 0.2, 30_000_000},
		{0, 0},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.sats, BTCToSatoshis(tc.btc), "%v BTC", tc.btc)
	}
}

func TestSatoshiFormatting(t *testing.T) {
	assert.Equal(t, "8,000,000", FormatThousands(BTCToSatoshis(0.08)))
	assert.Equal(t, "999", FormatThousands(999))
	assert.Equal(t, "-1,234", FormatThousands(-1234))
	assert.Equal(t, "800,000 Satoshis (0.008 BTC)", HoldingsLabel(0.008))
	assert.Equal(t, "0.5 BTC", FormatBTC(0.5))
}

func TestSatoshisToBTC(t *testing.T) {
	assert.Equal(t, 0.08, SatoshisToBTC(8_000_000))
	assert.Equal(t, 21_000_000.0, SatoshisToBTC(2_100_000_000_000_000))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{1234567.6, "1,234,568"},
		{999.4, "999"},
		{0, "0"},
		{-2500, "-2,500"},
		{math.NaN(), "-"},
		{math.Inf(1), "-"},
		{1e19, "10,000,000,000,000,000,000"},
		{-1e19, "-10,000,000,000,000,000,000"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatAmount(tc.in), "%v", tc.in)
	}
	assert.Equal(t, "650,000 SEK", FormatCurrency(650000, "sek"))
}

func TestFormatAmount_BeyondInt64(t *testing.T) {
	// 1,000,000 at +1000% for 21 years is about 7.4e27
	last := Trajectory(1e6, 10, 22)[21]
	got := FormatAmount(last)

	assert.False(t, strings.HasPrefix(got, "-"), got)
	assert.True(t, strings.HasPrefix(got, "7,400,249,944,"), got)
	assert.Len(t, strings.Split(got, ","), 10)
}
