// Package synthetic fabricates plausible prices and candle series for
// symbols no live source could price. Everything it produces must be tagged
// synthetic by the caller.
package synthetic

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seenimoa/marketdata/pkg/models"
)

// Quote is a fabricated current price.
type Quote struct {
	Price         float64
	PreviousClose float64
	Change        float64
	ChangePercent float64
	Name          string
}

// Generator produces synthetic quotes and series from an injectable random
// source. It is safe for concurrent use.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Generator seeded with seed. A zero seed uses the clock.
func New(seed int64) *Generator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return NewWithRand(rand.New(rand.NewSource(seed)))
}

// NewWithRand creates a Generator drawing from rng.
func NewWithRand(rng *rand.Rand) *Generator {
	return &Generator{rng: rng}
}

// Quote fabricates a current price for sym from the anchor table, or a
// sector price band when the symbol is not anchored, with a day change
// drawn uniformly from ±1.5%.
func (g *Generator) Quote(sym models.Symbol) Quote {
	g.mu.Lock()
	defer g.mu.Unlock()

	key := anchorKey(sym)
	price, ok := anchorPrices[key]
	if !ok {
		band := bandFor(sym)
		price = band.min + g.rng.Float64()*band.spread
	}
	price = round(price)

	pct := (g.rng.Float64()*2 - 1) * maxDayChangePct
	prev := round(price / (1 + pct/100))
	change := round(price - prev)

	name, ok := anchorNames[key]
	if !ok {
		name = sym.DisplayName()
	}
	return Quote{
		Price:         price,
		PreviousClose: prev,
		Change:        change,
		ChangePercent: change / prev * 100,
		Name:          name,
	}
}

// Series fabricates n candles ending at end, spaced step apart. The walk
// starts at previousClose and drifts linearly toward currentPrice; the
// final close equals currentPrice exactly. Every candle satisfies
// low ≤ min(open, close) and high ≥ max(open, close).
func (g *Generator) Series(sym models.Symbol, previousClose, currentPrice float64, n int, end time.Time, step time.Duration) []models.Candle {
	if n <= 0 || currentPrice <= 0 {
		return nil
	}
	if previousClose <= 0 {
		previousClose = currentPrice
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	vol := Volatility(sym)
	trend := (currentPrice - previousClose) / float64(n)
	price := round(previousClose)

	candles := make([]models.Candle, n)
	for i := range candles {
		randomChange := (g.rng.Float64() - 0.5) * vol * price
		trendChange := trend * (1 + (g.rng.Float64()-0.5)*0.5)

		open := price
		closePrice := round(math.Max(0.01, price+randomChange+trendChange))

		wick := vol * price * 0.5
		high := round(math.Max(open, closePrice) + g.rng.Float64()*wick)
		low := round(math.Max(0.01, math.Min(open, closePrice)-g.rng.Float64()*wick))

		candles[i] = models.Candle{
			Timestamp: end.Add(-time.Duration(n-1-i) * step),
			Open:      open,
			High:      math.Max(high, math.Max(open, closePrice)),
			Low:       math.Min(low, math.Min(open, closePrice)),
			Close:     closePrice,
			Volume:    int64(g.baseVolume(sym) * (0.5 + g.rng.Float64())),
		}
		price = closePrice
	}

	last := &candles[n-1]
	last.Close = currentPrice
	last.High = math.Max(last.High, currentPrice)
	last.Low = math.Min(last.Low, currentPrice)
	return candles
}

// CandleCount returns the number of hourly candles fabricated for period,
// capped at 1000.
func CandleCount(period models.Period) int {
	return min(period.Days()*24, maxCandles)
}

// Step returns the spacing between fabricated candles for period.
func Step(period models.Period) time.Duration {
	return period.Duration() / time.Duration(CandleCount(period))
}

// Volatility returns the per-step volatility used for sym's random walk.
func Volatility(sym models.Symbol) float64 {
	if sym.Market == models.MarketCrypto {
		return cryptoVolatility
	}
	base := sym.Base()
	for _, kv := range volatilityByKeyword {
		if strings.Contains(base, kv.keyword) {
			return kv.vol
		}
	}
	return defaultVolatility
}

// baseVolume must be called with g.mu held.
func (g *Generator) baseVolume(sym models.Symbol) float64 {
	if largeCaps[sym.Base()] {
		return 5e6 + g.rng.Float64()*1e7
	}
	return 1e6 + g.rng.Float64()*3e6
}

func anchorKey(sym models.Symbol) string {
	if sym.Market == models.MarketCrypto {
		return sym.Base()
	}
	if strings.HasSuffix(sym.Ticker, ".BO") {
		return sym.Base() + ".NS"
	}
	return sym.Ticker
}

func bandFor(sym models.Symbol) priceBand {
	base := sym.Base()
	for _, b := range priceBands {
		if strings.Contains(base, b.keyword) {
			return b
		}
	}
	return defaultBand
}

// round rounds to cents, or to four places for sub-unit prices.
func round(v float64) float64 {
	places := int32(2)
	if math.Abs(v) < 1 {
		places = 4
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}
