package utils

import "testing"

func TestNormalizeTicker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BTC/USD", "BTC"},
		{"ETH-USD", "ETH"},
		{"eth-usd", "ETH"},
		{"sol/usdt", "SOL"},
		{" btc / usd ", "BTC"},
		{"$AAPL", "AAPL"},
		{"aapl", "AAPL"},
		{"  tsla  ", "TSLA"},
		{"ETH/BTC", "ETH"},
		{"ETH/XBT", "ETH"},
		{"sol-xbt", "SOL"},
		{"BTC/PYUSD", "BTC"},
		{"ETH/USDG", "ETH"},
		{"XBT/USD", "XBT"},
		{"BRK-B", "BRK-B"},
		{"XYZ", "XYZ"},
		{"BTC/", "BTC/"},
		{"/USD", ""},
		{"ETH-USD-USD", "ETH-USD-USD"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := NormalizeTicker(tt.input)
			if got != tt.expected {
				t.Errorf("NormalizeTicker(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeTickerIdempotent(t *testing.T) {
	inputs := []string{
		"BTC/USD", "eth-usd", "$$BTC", "$ $doge/eur", "BRK-B", "ETH-USD-USD",
		"/USD", "ada - usdc", "X", "LINK/ETH", "USD", "  ", "ETH/XBT", "XBT-XBT",
	}
	for _, in := range inputs {
		once := NormalizeTicker(in)
		if twice := NormalizeTicker(once); twice != once {
			t.Errorf("NormalizeTicker not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeTickerStripsAtMostOneSuffix(t *testing.T) {
	for _, in := range []string{"BTC/USD", "ETH-EUR", "DOGE/USDT", "ADA/XBT"} {
		got := NormalizeTicker(in)
		if _, ok := splitQuote(got); ok {
			t.Errorf("NormalizeTicker(%q) = %q, still has a quote suffix", in, got)
		}
		if len(got) >= len(in) {
			t.Errorf("NormalizeTicker(%q) = %q, expected a suffix to be removed", in, got)
		}
	}
}

func TestSplitQuote(t *testing.T) {
	tests := []struct {
		input string
		base  string
		ok    bool
	}{
		{"BTC/USD", "BTC", true},
		{"ETH-USDC", "ETH", true},
		{"DOT/XBT", "DOT", true},
		{"BRK-B", "BRK-B", false},
		{"AAPL", "AAPL", false},
	}
	for _, tt := range tests {
		base, ok := splitQuote(tt.input)
		if base != tt.base || ok != tt.ok {
			t.Errorf("splitQuote(%q) = (%q, %v), want (%q, %v)", tt.input, base, ok, tt.base, tt.ok)
		}
	}
}
