package models

import (
	"fmt"
	"time"
)

// Candle represents a single OHLCV bar.
type Candle struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Series is a time-ascending run of candles from a single origin. Live and
// synthetic candles are never mixed in one Series.
type Series struct {
	Candles []Candle   `json:"candles"`
	Source  DataSource `json:"source"`
}

// Len returns the number of candles.
func (s Series) Len() int { return len(s.Candles) }

// Last returns the final candle and false when the series is empty.
func (s Series) Last() (Candle, bool) {
	if len(s.Candles) == 0 {
		return Candle{}, false
	}
	return s.Candles[len(s.Candles)-1], true
}

// Closes extracts the close prices in order.
func (s Series) Closes() []float64 {
	closes := make([]float64, len(s.Candles))
	for i, c := range s.Candles {
		closes[i] = c.Close
	}
	return closes
}

// Period is a chart look-back window.
type Period string

const (
	Period1D Period = "1d"
	Period5D Period = "5d"
	Period1M Period = "1mo"
	Period3M Period = "3mo"
	Period6M Period = "6mo"
	Period1Y Period = "1y"
	Period5Y Period = "5y"
)

var periodDays = map[Period]int{
	Period1D: 1,
	Period5D: 5,
	Period1M: 30,
	Period3M: 90,
	Period6M: 180,
	Period1Y: 365,
	Period5Y: 1825,
}

// ParsePeriod validates a period string.
func ParsePeriod(s string) (Period, error) {
	p := Period(s)
	if _, ok := periodDays[p]; !ok {
		return "", fmt.Errorf("unknown period %q (want 1d, 5d, 1mo, 3mo, 6mo, 1y or 5y)", s)
	}
	return p, nil
}

// Days returns the calendar days covered by the period. Unknown periods
// count as one day.
func (p Period) Days() int {
	if d, ok := periodDays[p]; ok {
		return d
	}
	return 1
}

// Duration returns the period length.
func (p Period) Duration() time.Duration {
	return time.Duration(p.Days()) * 24 * time.Hour
}

// DefaultInterval returns the candle interval used when the caller gives none.
func (p Period) DefaultInterval() string {
	switch p {
	case Period1D, Period5D:
		return "5m"
	case Period1M:
		return "1h"
	case Period5Y:
		return "1wk"
	default:
		return "1d"
	}
}

// Bollinger holds one Bollinger Bands reading.
type Bollinger struct {
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorSet holds indicators derived from exactly one Series. An indicator
// whose look-back window is not met is nil.
type IndicatorSet struct {
	SMA20      *float64   `json:"sma20"`
	SMA50      *float64   `json:"sma50"`
	RSI14      *float64   `json:"rsi14"`
	MACD       *float64   `json:"macd"`
	Bollinger  *Bollinger `json:"bollinger"`
	Support    *float64   `json:"support"`
	Resistance *float64   `json:"resistance"`
}

// Chart is the result of a chart request.
type Chart struct {
	Symbol        string       `json:"symbol"`
	Market        Market       `json:"market"`
	Period        Period       `json:"period"`
	Interval      string       `json:"interval"`
	Series        Series       `json:"series"`
	Indicators    IndicatorSet `json:"indicators"`
	DataSource    DataSource   `json:"data_source"`
	CurrentPrice  *float64     `json:"current_price"`
	PreviousClose *float64     `json:"previous_close"`
	GeneratedAt   time.Time    `json:"generated_at"`
}
