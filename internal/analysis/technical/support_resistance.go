package technical

import "math"

// SupportResistance scans the last lookback closes for local minima and
// maxima, where a point must be strictly below (or above) the neighbors
// closes on each side. Support is the highest local minimum and resistance
// the lowest local maximum, so both sit nearest the current price. With no
// local extremum the series minimum and maximum are used. Both are nil for
// an empty series.
func SupportResistance(closes []float64, lookback, neighbors int) (support, resistance *float64) {
	if lookback <= 0 {
		lookback = LevelsLookback
	}
	if neighbors <= 0 {
		neighbors = LevelsNeighbors
	}
	if len(closes) == 0 {
		return nil, nil
	}
	if len(closes) > lookback {
		closes = closes[len(closes)-lookback:]
	}

	lowest, highest := closes[0], closes[0]
	for _, c := range closes {
		lowest = math.Min(lowest, c)
		highest = math.Max(highest, c)
	}

	s, r := math.Inf(-1), math.Inf(1)
	for i := neighbors; i < len(closes)-neighbors; i++ {
		isHigh, isLow := true, true
		for j := i - neighbors; j <= i+neighbors; j++ {
			if j == i {
				continue
			}
			if closes[j] >= closes[i] {
				isHigh = false
			}
			if closes[j] <= closes[i] {
				isLow = false
			}
		}
		if isLow && closes[i] > s {
			s = closes[i]
		}
		if isHigh && closes[i] < r {
			r = closes[i]
		}
	}

	if math.IsInf(s, -1) {
		s = lowest
	}
	if math.IsInf(r, 1) {
		r = highest
	}
	return &s, &r
}
