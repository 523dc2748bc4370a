package utils

import (
	"fmt"
	"math"
	"strings"

	"github.com/seenimoa/marketdata/pkg/models"
)

// CurrencySymbol returns the display symbol for prices in the given market.
func CurrencySymbol(m models.Market) string {
	if m == models.MarketEquityIN {
		return "₹"
	}
	return "$"
}

// FormatPrice formats a price with the market's currency symbol. Sub-unit
// prices (small-cap crypto) keep four decimals.
func FormatPrice(m models.Market, price float64) string {
	prefix := CurrencySymbol(m)
	if price < 0 {
		prefix = "-" + prefix
		price = math.Abs(price)
	}
	if price > 0 && price < 1 {
		return fmt.Sprintf("%s%.4f", prefix, price)
	}
	return fmt.Sprintf("%s%.2f", prefix, price)
}

// FormatCompact formats a large amount in compact notation: Indian
// lakh/crore units for NSE listings, K/M/B/T elsewhere.
// e.g., 1927345 → "₹19.27 L", 2.9e12 → "$2.9 T"
func FormatCompact(m models.Market, amount float64) string {
	negative := amount < 0
	amount = math.Abs(amount)

	prefix := CurrencySymbol(m)
	if negative {
		prefix = "-" + prefix
	}

	if m == models.MarketEquityIN {
		switch {
		case amount >= 1e12:
			// Lakh crores
			return fmt.Sprintf("%s%s L Cr", prefix, formatWithDecimals(amount/1e12))
		case amount >= 1e7:
			return fmt.Sprintf("%s%s Cr", prefix, formatWithDecimals(amount/1e7))
		case amount >= 1e5:
			return fmt.Sprintf("%s%s L", prefix, formatWithDecimals(amount/1e5))
		}
	} else {
		switch {
		case amount >= 1e12:
			return fmt.Sprintf("%s%s T", prefix, formatWithDecimals(amount/1e12))
		case amount >= 1e9:
			return fmt.Sprintf("%s%s B", prefix, formatWithDecimals(amount/1e9))
		case amount >= 1e6:
			return fmt.Sprintf("%s%s M", prefix, formatWithDecimals(amount/1e6))
		}
	}
	if amount >= 1e3 {
		return fmt.Sprintf("%s%s K", prefix, formatWithDecimals(amount/1e3))
	}
	return fmt.Sprintf("%s%.2f", prefix, amount)
}

// FormatPct formats a percentage value with sign and suffix.
// e.g., 2.45 → "+2.45%", -1.23 → "-1.23%"
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// formatWithDecimals formats a number with up to 2 decimal places,
// removing trailing zeros.
func formatWithDecimals(n float64) string {
	s := fmt.Sprintf("%.2f", n)
	s = strings.TrimRight(s, "0")
	s = strings.TrimRight(s, ".")
	return s
}
