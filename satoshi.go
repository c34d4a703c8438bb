package main

import (
	"math"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// SatoshisPerBTC is the number of satoshis in one bitcoin
const SatoshisPerBTC = 100_000_000

var satoshisPerBTC = decimal.NewFromInt(SatoshisPerBTC)

// BTCToSatoshis converts a BTC amount to satoshis, rounding to the nearest satoshi
func BTCToSatoshis(btc float64) int64 {
	return decimal.NewFromFloat(btc).Mul(satoshisPerBTC).Round(0).IntPart()
}

// SatoshisToBTC converts satoshis back to BTC
func SatoshisToBTC(sats int64) float64 {
	return decimal.NewFromInt(sats).Div(satoshisPerBTC).InexactFloat64()
}

// FormatThousands renders n with comma thousands separators (8000000 -> "8,000,000")
func FormatThousands(n int64) string {
	return humanize.Comma(n)
}

// FormatAmount rounds a value to whole units and renders it with thousands separators
func FormatAmount(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	v = math.Round(v)
	// Beyond int64 range, e.g. 22 years at +1000%
	if math.Abs(v) >= math.MaxInt64 {
		n, _ := big.NewFloat(v).Int(nil)
		return humanize.BigComma(n)
	}
	return humanize.Comma(int64(v))
}

// FormatCurrency renders a rounded amount followed by the currency code
func FormatCurrency(v float64, currency string) string {
	return FormatAmount(v) + " " + strings.ToUpper(currency)
}

// FormatBTC renders a BTC amount without trailing zeros (0.008 -> "0.008 BTC")
func FormatBTC(btc float64) string {
	return decimal.NewFromFloat(btc).String() + " BTC"
}

// HoldingsLabel describes a holding in satoshis and BTC, e.g. "800,000 Satoshis (0.008 BTC)"
func HoldingsLabel(btc float64) string {
	return FormatThousands(BTCToSatoshis(btc)) + " Satoshis (" + FormatBTC(btc) + ")"
}
