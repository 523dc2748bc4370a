package resolver

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/seenimoa/marketdata/internal/analysis/technical"
	"github.com/seenimoa/marketdata/internal/datasource"
	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/internal/synthetic"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

// GetChart returns price history and indicators for symbol. A live series
// is used when the market's series source answers and the snapshot is
// live; otherwise a synthetic series is walked from the snapshot's previous
// close to its price. Either way the last candle closes at the snapshot
// price. An unknown period falls back to one day and an empty interval to
// the period's default.
func (r *Resolver) GetChart(ctx context.Context, symbol string, period models.Period, interval string) *models.Chart {
	if _, err := models.ParsePeriod(string(period)); err != nil {
		period = models.Period1D
	}
	if interval == "" {
		interval = period.DefaultInterval()
	}

	sym := utils.ClassifySymbol(symbol)
	if sym.IsZero() {
		return &models.Chart{
			Period:      period,
			Interval:    interval,
			Series:      models.Series{Candles: []models.Candle{}, Source: models.SourceSynthetic},
			DataSource:  models.SourceSynthetic,
			GeneratedAt: r.now(),
		}
	}

	key := chartKey(sym, period, interval)
	if chart, ok := r.cachedChart(key); ok {
		return chart
	}

	v, _, _ := r.group.Do(key.String(), func() (any, error) {
		if chart, ok := r.cachedChart(key); ok {
			return chart, nil
		}
		chart := r.buildChart(ctx, sym, symbol, period, interval)
		if ctx.Err() == nil {
			r.cache.Put(key, chart)
		}
		return chart, nil
	})
	return v.(*models.Chart)
}

func (r *Resolver) buildChart(ctx context.Context, sym models.Symbol, symbol string, period models.Period, interval string) *models.Chart {
	snap := r.GetSnapshot(ctx, symbol)
	price := snap.Price()

	chart := &models.Chart{
		Symbol:        sym.Ticker,
		Market:        sym.Market,
		Period:        period,
		Interval:      interval,
		CurrentPrice:  snap.LastTradedPrice,
		PreviousClose: snap.PreviousClose,
		GeneratedAt:   r.now(),
	}

	var candles []models.Candle
	source := models.SourceSynthetic
	if snap.DataSource == models.SourceLive {
		live, err := r.fetchSeries(ctx, sym, period, interval)
		if err == nil {
			candles, source = live, models.SourceLive
			reconcileLast(candles, price)
		} else {
			r.logger.Warn("no live series, using synthetic history",
				"symbol", sym.Ticker, "period", period, "err", err)
		}
	}
	if candles == nil {
		prev := price * 0.98
		if snap.PreviousClose != nil && *snap.PreviousClose > 0 {
			prev = *snap.PreviousClose
		}
		candles = r.gen.Series(sym, prev, price, synthetic.CandleCount(period), chart.GeneratedAt, synthetic.Step(period))
		if candles == nil {
			candles = []models.Candle{}
		}
	}

	chart.Series = models.Series{Candles: candles, Source: source}
	chart.DataSource = source
	chart.Indicators = technical.Compute(candles)
	return chart
}

func (r *Resolver) fetchSeries(ctx context.Context, sym models.Symbol, period models.Period, interval string) ([]models.Candle, error) {
	src := r.series[sym.Market]
	if src == nil {
		return nil, datasource.ErrNotSupported
	}

	start := time.Now()
	candles, err := src.FetchSeries(ctx, sym, period, interval)
	latency := time.Since(start)
	if err == nil && len(candles) == 0 {
		err = errors.New("empty series")
	}
	if err != nil {
		return nil, err
	}
	r.logger.Debug("series fetched",
		"symbol", sym.Ticker, "period", period, "interval", interval, "candles", len(candles), "latency", latency)
	return candles, nil
}

func (r *Resolver) cachedChart(key infra.Key) (*models.Chart, bool) {
	v, ok := r.cache.Get(key)
	if !ok {
		return nil, false
	}
	chart, ok := v.(*models.Chart)
	return chart, ok
}

func chartKey(sym models.Symbol, period models.Period, interval string) infra.Key {
	return infra.Key{Op: infra.OpChart, Symbol: sym.Ticker, Params: string(period) + ":" + interval}
}

// reconcileLast pins the final close to price so the chart agrees with the
// snapshot, widening the candle's range to keep it consistent.
func reconcileLast(candles []models.Candle, price float64) {
	if len(candles) == 0 || price <= 0 {
		return
	}
	last := &candles[len(candles)-1]
	last.Close = price
	last.High = math.Max(last.High, price)
	last.Low = math.Min(last.Low, price)
}
