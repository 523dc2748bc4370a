package utils

import (
	"testing"

	"github.com/seenimoa/marketdata/pkg/models"
)

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		market   models.Market
		input    float64
		expected string
	}{
		{models.MarketEquityIN, 500, "₹500.00"},
		{models.MarketEquityIN, 100000, "₹1 L"},
		{models.MarketEquityIN, 1500000, "₹15 L"},
		{models.MarketEquityIN, 10000000, "₹1 Cr"},
		{models.MarketEquityIN, 192734500000, "₹19273.45 Cr"},
		{models.MarketEquityIN, 1000000000000, "₹1 L Cr"},
		{models.MarketEquityUS, 1500, "$1.5 K"},
		{models.MarketEquityUS, 2500000, "$2.5 M"},
		{models.MarketCrypto, 1.93e12, "$1.93 T"},
		{models.MarketCrypto, -4.2e9, "-$4.2 B"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatCompact(tt.market, tt.input)
			if result != tt.expected {
				t.Errorf("FormatCompact(%s, %f) = %s, want %s", tt.market, tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		market   models.Market
		input    float64
		expected string
	}{
		{models.MarketEquityIN, 1458, "₹1458.00"},
		{models.MarketEquityUS, 195.5, "$195.50"},
		{models.MarketCrypto, 0.42, "$0.4200"},
		{models.MarketEquityUS, -3, "-$3.00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatPrice(tt.market, tt.input)
			if result != tt.expected {
				t.Errorf("FormatPrice(%s, %f) = %s, want %s", tt.market, tt.input, result, tt.expected)
			}
		})
	}
}

func TestFormatPct(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{2.45, "+2.45%"},
		{-1.23, "-1.23%"},
		{0.0, "+0.00%"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := FormatPct(tt.input)
			if result != tt.expected {
				t.Errorf("FormatPct(%f) = %s, want %s", tt.input, result, tt.expected)
			}
		})
	}
}
