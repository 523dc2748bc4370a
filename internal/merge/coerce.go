package merge

import (
	"math"
	"strconv"
	"strings"
)

// Unit suffixes in the order they must be tried ("Cr." before "Cr",
// "Lakh" before "L").
var suffixMultipliers = []struct {
	suffix string
	mult   float64
}{
	{"Cr.", 1e7},
	{"Cr", 1e7},
	{"Lakh", 1e5},
	{"L", 1e5},
	{"T", 1e12},
	{"B", 1e9},
	{"M", 1e6},
	{"K", 1e3},
}

// ParseNumber parses a provider-formatted number such as "1,234.5",
// "₹ 19,27,345 Cr.", "12.5%" or "$2.9T". Percent strings keep percentage
// points ("12.5%" → 12.5). It reports false for blanks and placeholders
// like "-" or "N/A".
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	for _, r := range []string{",", "%", "₹", "$", "Rs."} {
		s = strings.ReplaceAll(s, r, "")
	}
	s = strings.TrimSpace(s)

	multiplier := 1.0
	for _, sm := range suffixMultipliers {
		if strings.HasSuffix(s, sm.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, sm.suffix))
			multiplier = sm.mult
			break
		}
	}

	if s == "" || s == "-" {
		return 0, false
	}
	val, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(val) || math.IsInf(val, 0) {
		return 0, false
	}
	return val * multiplier, true
}
