// Package utils provides symbol classification, ticker conversions and
// display helpers shared by the engine and its callers.
package utils

import (
	"strings"

	"github.com/seenimoa/marketdata/pkg/models"
)

// Common NSE ticker aliases and normalizations. A bare ticker found here is
// treated as an NSE listing.
var tickerAliases = map[string]string{
	"RELIANCE":      "RELIANCE",
	"RIL":           "RELIANCE",
	"TCS":           "TCS",
	"INFOSYS":       "INFY",
	"INFY":          "INFY",
	"HDFCBANK":      "HDFCBANK",
	"HDFC BANK":     "HDFCBANK",
	"ICICIBANK":     "ICICIBANK",
	"ICICI BANK":    "ICICIBANK",
	"SBIN":          "SBIN",
	"SBI":           "SBIN",
	"BHARTIARTL":    "BHARTIARTL",
	"AIRTEL":        "BHARTIARTL",
	"BAJFINANCE":    "BAJFINANCE",
	"BAJAJ FIN":     "BAJFINANCE",
	"ITC":           "ITC",
	"LT":            "LT",
	"L&T":           "LT",
	"TATAMOTORS":    "TATAMOTORS",
	"TATA MOTORS":   "TATAMOTORS",
	"TATASTEEL":     "TATASTEEL",
	"TATA STEEL":    "TATASTEEL",
	"JSWSTEEL":      "JSWSTEEL",
	"WIPRO":         "WIPRO",
	"HCLTECH":       "HCLTECH",
	"HCL TECH":      "HCLTECH",
	"MARUTI":        "MARUTI",
	"KOTAKBANK":     "KOTAKBANK",
	"KOTAK":         "KOTAKBANK",
	"AXISBANK":      "AXISBANK",
	"AXIS BANK":     "AXISBANK",
	"SUNPHARMA":     "SUNPHARMA",
	"SUN PHARMA":    "SUNPHARMA",
	"ASIANPAINT":    "ASIANPAINT",
	"ASIAN PAINTS":  "ASIANPAINT",
	"TITAN":         "TITAN",
	"NESTLEIND":     "NESTLEIND",
	"NESTLE":        "NESTLEIND",
	"ULTRACEMCO":    "ULTRACEMCO",
	"ULTRATECH":     "ULTRACEMCO",
	"POWERGRID":     "POWERGRID",
	"NTPC":          "NTPC",
	"TECHM":         "TECHM",
	"TECH MAHINDRA": "TECHM",
	"ADANIENT":      "ADANIENT",
	"ADANI":         "ADANIENT",
	"HINDUNILVR":    "HINDUNILVR",
	"HUL":           "HINDUNILVR",
	"DRREDDY":       "DRREDDY",
	"CIPLA":         "CIPLA",
	"COALINDIA":     "COALINDIA",
	"COAL INDIA":    "COALINDIA",
	"ONGC":          "ONGC",
	"IOC":           "IOC",
	"BPCL":          "BPCL",
}

// NSE/BSE index tickers mapped to their Yahoo Finance symbols.
var indexTickers = map[string]string{
	"NIFTY":      "^NSEI",
	"NIFTY50":    "^NSEI",
	"NIFTY 50":   "^NSEI",
	"BANKNIFTY":  "^NSEBANK",
	"NIFTYBANK":  "^NSEBANK",
	"NIFTY BANK": "^NSEBANK",
	"FINNIFTY":   "^CNXFIN",
	"NIFTYIT":    "^CNXIT",
	"NIFTY IT":   "^CNXIT",
	"SENSEX":     "^BSESN",
}

// cryptoIDs maps crypto tickers to CoinGecko coin identifiers.
var cryptoIDs = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"ADA":   "cardano",
	"DOT":   "polkadot",
	"SOL":   "solana",
	"MATIC": "polygon",
	"AVAX":  "avalanche-2",
	"LINK":  "chainlink",
	"UNI":   "uniswap",
}

// NormalizeTicker uppercases and trims user input and resolves NSE aliases.
// Exchange suffixes are preserved.
func NormalizeTicker(ticker string) string {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))

	// Remove $ prefix if present (common in chat)
	ticker = strings.TrimPrefix(ticker, "$")

	base, suffix := splitSuffix(ticker)
	if canonical, ok := tickerAliases[base]; ok {
		return canonical + suffix
	}
	return ticker
}

// ClassifySymbol normalizes raw input and assigns its market:
//   - ".NS"/".BO" suffix, a known NSE ticker or an index ⇒ equity-IN
//   - a known crypto ticker, or any ticker quoted in "-USD"/"-USDT" ⇒ crypto
//   - anything else ⇒ equity-US
func ClassifySymbol(raw string) models.Symbol {
	ticker := NormalizeTicker(raw)
	sym := models.Symbol{Raw: raw, Ticker: ticker}

	switch {
	case ticker == "":
		sym.Market = models.MarketEquityUS
	case strings.HasSuffix(ticker, ".NS") || strings.HasSuffix(ticker, ".BO"):
		sym.Market = models.MarketEquityIN
	case IsCrypto(ticker) || strings.HasSuffix(ticker, "-USD") || strings.HasSuffix(ticker, "-USDT"):
		sym.Ticker = cryptoBase(ticker)
		sym.Market = models.MarketCrypto
	case IsIndex(ticker):
		if yf, ok := indexTickers[ticker]; ok {
			sym.Ticker = yf
		}
		sym.Market = models.MarketEquityIN
	case isNSEListed(ticker):
		sym.Ticker = ticker + ".NS"
		sym.Market = models.MarketEquityIN
	default:
		sym.Market = models.MarketEquityUS
	}
	return sym
}

// IsCrypto reports whether ticker names a known cryptocurrency.
func IsCrypto(ticker string) bool {
	_, ok := cryptoIDs[cryptoBase(strings.ToUpper(ticker))]
	return ok
}

// CoinGeckoID resolves a crypto symbol to its CoinGecko coin id. Unknown
// tickers fall back to the lower-cased ticker.
func CoinGeckoID(sym models.Symbol) string {
	base := cryptoBase(sym.Ticker)
	if id, ok := cryptoIDs[base]; ok {
		return id
	}
	return strings.ToLower(base)
}

// IsIndex checks if the ticker is an index (not a stock).
func IsIndex(ticker string) bool {
	ticker = strings.TrimSpace(strings.ToUpper(ticker))
	if _, ok := indexTickers[ticker]; ok {
		return true
	}
	return strings.HasPrefix(ticker, "^")
}

// ToYFinanceTicker converts a classified symbol to Yahoo Finance format.
func ToYFinanceTicker(sym models.Symbol) string {
	if sym.Market == models.MarketCrypto {
		return sym.Base() + "-USD"
	}
	return sym.Ticker
}

// ToNSESymbol returns the bare exchange symbol used by NSE and Screener.in
// ("RELIANCE.NS" ⇒ "RELIANCE").
func ToNSESymbol(sym models.Symbol) string {
	return FromYFinanceTicker(sym.Ticker)
}

// FromYFinanceTicker strips the .NS or .BO suffix to get the NSE/BSE ticker.
func FromYFinanceTicker(yfTicker string) string {
	yfTicker = strings.TrimSuffix(yfTicker, ".NS")
	yfTicker = strings.TrimSuffix(yfTicker, ".BO")
	return yfTicker
}

func isNSEListed(ticker string) bool {
	for _, v := range tickerAliases {
		if v == ticker {
			return true
		}
	}
	return false
}

func cryptoBase(ticker string) string {
	ticker = strings.TrimSuffix(ticker, "-USDT")
	return strings.TrimSuffix(ticker, "-USD")
}

func splitSuffix(ticker string) (string, string) {
	for _, suffix := range []string{".NS", ".BO"} {
		if strings.HasSuffix(ticker, suffix) {
			return strings.TrimSuffix(ticker, suffix), suffix
		}
	}
	return ticker, ""
}
