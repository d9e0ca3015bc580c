package utils

import (
	"strings"
)

// quoteCurrencies are the quote legs recognised after a "/" or "-" separator,
// as they appear in exchange pair listings (BTC/USD, ETH-USDT, SOL/EUR).
// XBT is Kraken's code for bitcoin.
var quoteCurrencies = map[string]struct{}{
	"USD":   {},
	"USDT":  {},
	"USDC":  {},
	"USDG":  {},
	"PYUSD": {},
	"DAI":   {},
	"EUR":   {},
	"GBP":   {},
	"JPY":   {},
	"CAD":   {},
	"AUD":   {},
	"CHF":   {},
	"BTC":   {},
	"XBT":   {},
	"ETH":   {},
}

const tickerCutset = " \t\r\n"

// NormalizeTicker turns a raw spreadsheet ticker into the symbol used for news
// lookup. It uppercases, trims whitespace and any "$" prefix, and removes one
// trailing quote-currency suffix ("BTC/USD" -> "BTC", "eth-usd" -> "ETH").
//
// A value whose base still carries a quote suffix after stripping
// ("ETH-USD-USD") is returned as-is, so NormalizeTicker is idempotent.
// A bare suffix ("/USD") normalizes to the empty string.
func NormalizeTicker(raw string) string {
	t := strings.ToUpper(raw)
	t = strings.TrimLeft(t, "$"+tickerCutset)
	t = strings.TrimRight(t, tickerCutset)

	base, ok := splitQuote(t)
	if !ok {
		return t
	}
	if _, nested := splitQuote(base); nested {
		return t
	}
	return base
}

// splitQuote splits "BASE/QUOTE" or "BASE-QUOTE" at the last separator when
// QUOTE is a known quote currency.
func splitQuote(t string) (string, bool) {
	i := strings.LastIndexAny(t, "/-")
	if i < 0 {
		return t, false
	}
	quote := strings.TrimLeft(t[i+1:], tickerCutset)
	if _, ok := quoteCurrencies[quote]; !ok {
		return t, false
	}
	return strings.TrimRight(t[:i], tickerCutset), true
}
