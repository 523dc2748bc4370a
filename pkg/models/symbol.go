// Package models defines the core data structures shared by the resolution
// engine, its source adapters and its callers.
package models

import "strings"

// Market classifies an instrument for source selection.
type Market string

const (
	MarketEquityIN Market = "equity-IN"
	MarketEquityUS Market = "equity-US"
	MarketCrypto   Market = "crypto"
)

// Symbol is a normalized instrument identifier with its market class.
// It is a value type and never changes after classification.
type Symbol struct {
	Raw    string `json:"raw"`    // as supplied by the caller
	Ticker string `json:"ticker"` // e.g. "RELIANCE.NS", "AAPL", "BTC"
	Market Market `json:"market"`
}

// String returns the normalized ticker.
func (s Symbol) String() string { return s.Ticker }

// IsZero reports whether the symbol is empty.
func (s Symbol) IsZero() bool { return s.Ticker == "" }

// Base returns the ticker without exchange or quote-currency suffixes
// (".NS", ".BO", "-USD", "-USDT").
func (s Symbol) Base() string {
	t := s.Ticker
	for _, suffix := range []string{".NS", ".BO", "-USDT", "-USD"} {
		if strings.HasSuffix(t, suffix) {
			return strings.TrimSuffix(t, suffix)
		}
	}
	return t
}

// DisplayName is the fallback name used when no source supplies one.
func (s Symbol) DisplayName() string {
	return s.Base()
}
