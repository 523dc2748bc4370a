// Package technical computes technical indicators from a candle series. An
// indicator whose look-back window is not met is reported as nil rather
// than estimated from a shorter window.
package technical

import (
	"math"

	"github.com/seenimoa/marketdata/pkg/models"
)

// Default windows.
const (
	SMAShortPeriod  = 20
	SMALongPeriod   = 50
	RSIPeriod       = 14
	MACDFastPeriod  = 12
	MACDSlowPeriod  = 26
	BollingerPeriod = 20
	BollingerMult   = 2.0
	LevelsLookback  = 50
	LevelsNeighbors = 2
)

// Compute derives the standard IndicatorSet from candles, which must be
// time-ascending.
func Compute(candles []models.Candle) models.IndicatorSet {
	closes := extractCloses(candles)
	support, resistance := SupportResistance(closes, LevelsLookback, LevelsNeighbors)

	return models.IndicatorSet{
		SMA20:      SMA(closes, SMAShortPeriod),
		SMA50:      SMA(closes, SMALongPeriod),
		RSI14:      RSI(closes, RSIPeriod),
		MACD:       MACD(closes, MACDFastPeriod, MACDSlowPeriod),
		Bollinger:  BollingerBands(closes, BollingerPeriod, BollingerMult),
		Support:    support,
		Resistance: resistance,
	}
}

// RSI calculates the Relative Strength Index from the simple average gain
// and loss over the last period deltas. It needs period+1 closes and
// saturates at 100 when there are no losses.
func RSI(closes []float64, period int) *float64 {
	if period <= 0 {
		period = RSIPeriod
	}
	n := len(closes)
	if n < period+1 {
		return nil
	}

	var avgGain, avgLoss float64
	for i := n - period; i < n; i++ {
		change := closes[i] - closes[i-1]
		if change > 0 {
			avgGain += change
		} else {
			avgLoss += -change
		}
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	rsi := 100.0
	if avgLoss != 0 {
		rs := avgGain / avgLoss
		rsi = 100 - (100 / (1 + rs))
	}
	return &rsi
}

// MACD returns the latest MACD line, EMA(fast) − EMA(slow). It needs at
// least slow closes.
func MACD(closes []float64, fast, slow int) *float64 {
	if fast <= 0 {
		fast = MACDFastPeriod
	}
	if slow <= 0 {
		slow = MACDSlowPeriod
	}
	if len(closes) < slow || len(closes) < fast {
		return nil
	}

	fastEMA := EMA(closes, fast)
	slowEMA := EMA(closes, slow)
	v := *fastEMA - *slowEMA
	return &v
}

// BollingerBands calculates the latest bands as SMA ± mult population
// standard deviations of the last period closes.
func BollingerBands(closes []float64, period int, mult float64) *models.Bollinger {
	if period <= 0 {
		period = BollingerPeriod
	}
	if mult <= 0 {
		mult = BollingerMult
	}
	n := len(closes)
	if n < period {
		return nil
	}

	window := closes[n-period:]
	mean := avg(window)
	sd := stddev(window, mean)
	return &models.Bollinger{
		Upper:  mean + mult*sd,
		Middle: mean,
		Lower:  mean - mult*sd,
	}
}

// --- helper functions ---

func extractCloses(candles []models.Candle) []float64 {
	closes := make([]float64, len(candles))
	for i, c := range candles {
		closes[i] = c.Close
	}
	return closes
}

func avg(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64, mean float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sumSq := 0.0
	for _, v := range data {
		d := v - mean
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(data)))
}
