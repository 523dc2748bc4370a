// Package resolver is the entry point of the market-data engine. It walks a
// per-market chain of source adapters, merges what they return, caches the
// result and falls back to synthetic data so that every call returns a
// value.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/seenimoa/marketdata/internal/analysis/technical"
	"github.com/seenimoa/marketdata/internal/datasource"
	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/internal/merge"
	"github.com/seenimoa/marketdata/internal/synthetic"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

// ErrAllSourcesExhausted is logged when no adapter in a chain produced a
// usable price. It never reaches the caller; the snapshot is tagged
// estimated instead.
var ErrAllSourcesExhausted = errors.New("all sources exhausted")

const (
	DefaultSnapshotTTL    = 5 * time.Minute
	DefaultChartTTL       = 2 * time.Minute
	DefaultMaxConcurrency = 8
)

// Resolver resolves symbols to snapshots and charts. It is safe for
// concurrent use.
type Resolver struct {
	chains         map[models.Market][]datasource.Adapter
	series         map[models.Market]datasource.SeriesSource
	cache          *infra.Cache
	gen            *synthetic.Generator
	logger         *slog.Logger
	now            func() time.Time
	maxConcurrency int

	group singleflight.Group
}

// Option configures a Resolver.
type Option func(*Resolver)

// Sources holds the per-adapter options used to build the default chains.
type Sources struct {
	NSE       datasource.Options
	Yahoo     datasource.Options
	Screener  datasource.Options
	CoinGecko datasource.Options
}

// WithSources builds the standard chains: NSE, Yahoo then Screener for
// Indian equities, Yahoo for US equities and CoinGecko for crypto. Yahoo
// and CoinGecko also serve price history.
func WithSources(s Sources) Option {
	return func(r *Resolver) {
		yahoo := datasource.NewYFinance(s.Yahoo)
		coingecko := datasource.NewCoinGecko(s.CoinGecko)

		r.chains[models.MarketEquityIN] = []datasource.Adapter{
			datasource.NewNSE(s.NSE), yahoo, datasource.NewScreener(s.Screener),
		}
		r.chains[models.MarketEquityUS] = []datasource.Adapter{yahoo}
		r.chains[models.MarketCrypto] = []datasource.Adapter{coingecko}

		r.series[models.MarketEquityIN] = yahoo
		r.series[models.MarketEquityUS] = yahoo
		r.series[models.MarketCrypto] = coingecko
	}
}

// WithChain replaces the adapter chain for market. Adapters are consulted
// and merged in the order given.
func WithChain(market models.Market, adapters ...datasource.Adapter) Option {
	return func(r *Resolver) {
		r.chains[market] = adapters
	}
}

// WithSeriesSource sets the price-history source for market. A nil source
// makes every chart for the market synthetic.
func WithSeriesSource(market models.Market, src datasource.SeriesSource) Option {
	return func(r *Resolver) {
		r.series[market] = src
	}
}

// WithCache sets the result cache.
func WithCache(c *infra.Cache) Option {
	return func(r *Resolver) {
		r.cache = c
	}
}

// WithGenerator sets the synthetic data generator.
func WithGenerator(g *synthetic.Generator) Option {
	return func(r *Resolver) {
		r.gen = g
	}
}

// WithLogger sets the logger used for per-attempt logging.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// WithClock sets the clock used to timestamp charts.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithMaxConcurrency bounds the number of symbols CompareSnapshots resolves
// at once.
func WithMaxConcurrency(n int) Option {
	return func(r *Resolver) {
		if n > 0 {
			r.maxConcurrency = n
		}
	}
}

// New creates a Resolver with the standard chains, a fresh cache and a
// time-seeded generator, then applies opts.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		chains:         make(map[models.Market][]datasource.Adapter),
		series:         make(map[models.Market]datasource.SeriesSource),
		logger:         slog.Default(),
		now:            time.Now,
		maxConcurrency: DefaultMaxConcurrency,
	}
	WithSources(Sources{})(r)
	for _, opt := range opts {
		opt(r)
	}
	if r.cache == nil {
		r.cache = infra.NewCache(DefaultSnapshotTTL, infra.WithTTL(infra.OpChart, DefaultChartTTL))
	}
	if r.gen == nil {
		r.gen = synthetic.New(0)
	}
	return r
}

// Cache returns the resolver's cache.
func (r *Resolver) Cache() *infra.Cache { return r.cache }

// Chain returns the adapter names consulted for market, in order.
func (r *Resolver) Chain(market models.Market) []string {
	chain := r.chains[market]
	names := make([]string, len(chain))
	for i, a := range chain {
		names[i] = a.Name()
	}
	return names
}

// GetSnapshot resolves symbol to a Snapshot. It never fails: when no source
// can price the symbol the snapshot carries a synthetic price and is tagged
// estimated, and an empty symbol yields an unavailable snapshot.
//
// The returned Snapshot may be shared with other callers and must not be
// modified.
func (r *Resolver) GetSnapshot(ctx context.Context, symbol string) *models.Snapshot {
	sym := utils.ClassifySymbol(symbol)
	if sym.IsZero() {
		return merge.Merge(sym, nil)
	}

	key := infra.Key{Op: infra.OpSnapshot, Symbol: sym.Ticker}
	if snap, ok := r.cachedSnapshot(key); ok {
		return snap
	}

	v, _, _ := r.group.Do(key.String(), func() (any, error) {
		if snap, ok := r.cachedSnapshot(key); ok {
			return snap, nil
		}
		snap := r.resolve(ctx, sym)
		// A cancelled caller fails every adapter; its estimate is not cached.
		if ctx.Err() == nil {
			r.cache.Put(key, snap)
		}
		return snap, nil
	})
	return v.(*models.Snapshot)
}

// Resolve is GetSnapshot.
func (r *Resolver) Resolve(ctx context.Context, symbol string) *models.Snapshot {
	return r.GetSnapshot(ctx, symbol)
}

func (r *Resolver) cachedSnapshot(key infra.Key) (*models.Snapshot, bool) {
	v, ok := r.cache.Get(key)
	if !ok {
		return nil, false
	}
	snap, ok := v.(*models.Snapshot)
	return snap, ok
}

// resolve consults the chain for sym. The primary adapter is awaited first,
// then the rest run concurrently. Records keep their chain position so the
// merge does not depend on completion order.
func (r *Resolver) resolve(ctx context.Context, sym models.Symbol) *models.Snapshot {
	chain := r.chains[sym.Market]
	records := make([]*models.PartialRecord, len(chain))
	errs := make([]error, len(chain))

	if len(chain) > 0 {
		records[0], errs[0] = r.attempt(ctx, chain[0], sym)

		g, gctx := errgroup.WithContext(ctx)
		for i := 1; i < len(chain); i++ {
			i := i
			g.Go(func() error {
				records[i], errs[i] = r.attempt(gctx, chain[i], sym)
				return nil // non-fatal
			})
		}
		_ = g.Wait()
	}

	snap := merge.Merge(sym, records)
	if snap.Price() <= 0 {
		err := ErrAllSourcesExhausted
		if joined := errors.Join(errs...); joined != nil {
			err = fmt.Errorf("%w: %w", ErrAllSourcesExhausted, joined)
		}
		r.logger.Warn("no live price, using synthetic estimate",
			"symbol", sym.Ticker, "market", sym.Market, "err", err)
		r.fillSynthetic(snap, sym)
	}
	r.fillTechnicals(snap, sym)
	return snap
}

func (r *Resolver) attempt(ctx context.Context, a datasource.Adapter, sym models.Symbol) (*models.PartialRecord, error) {
	start := time.Now()
	rec, err := a.Fetch(ctx, sym)
	latency := time.Since(start)

	if err != nil {
		r.logger.Warn("source attempt failed",
			"source", a.Name(), "symbol", sym.Ticker, "latency", latency, "err", err)
		return nil, err
	}
	r.logger.Debug("source attempt succeeded",
		"source", a.Name(), "symbol", sym.Ticker, "latency", latency, "fields", rec.Len())
	return rec, nil
}

// fillSynthetic overwrites the price fields with a generated quote. Fields
// merged from price-less live records are kept.
func (r *Resolver) fillSynthetic(snap *models.Snapshot, sym models.Symbol) {
	q := r.gen.Quote(sym)

	snap.SetNumber(models.FieldPrice, q.Price)
	snap.SetNumber(models.FieldPreviousClose, q.PreviousClose)
	snap.SetNumber(models.FieldChange, q.Change)
	snap.SetNumber(models.FieldChangePercent, q.ChangePercent)
	snap.SetNumber(models.FieldOpen, q.PreviousClose)
	snap.SetNumber(models.FieldDayHigh, math.Max(q.Price, q.PreviousClose))
	snap.SetNumber(models.FieldDayLow, math.Min(q.Price, q.PreviousClose))

	if snap.Name == nil || *snap.Name == sym.DisplayName() {
		snap.SetText(models.FieldName, q.Name)
	}
	snap.DataQuality = models.QualityEstimated
	snap.DataSource = models.SourceSynthetic
}

// technicalPeriods are searched longest first when filling snapshot
// technical levels from a cached chart.
var technicalPeriods = []models.Period{
	models.Period5Y, models.Period1Y, models.Period6M, models.Period3M,
	models.Period1M, models.Period5D, models.Period1D,
}

// fillTechnicals copies indicator levels from a chart already cached for
// sym. Values supplied by a source are kept.
func (r *Resolver) fillTechnicals(snap *models.Snapshot, sym models.Symbol) {
	chart, ok := r.cachedChartFor(sym)
	if !ok {
		return
	}
	closes := chart.Series.Closes()
	ind := chart.Indicators

	fill := func(f models.Field, v *float64) {
		if v != nil && snap.Number(f) == nil {
			snap.SetNumber(f, *v)
		}
	}
	fill(models.FieldFiftyDMA, ind.SMA50)
	fill(models.FieldTwoHundredDMA, technical.SMA(closes, 200))
	fill(models.FieldRSI, ind.RSI14)
	fill(models.FieldMACD, ind.MACD)
	fill(models.FieldSupport, ind.Support)
	fill(models.FieldResistance, ind.Resistance)
}

func (r *Resolver) cachedChartFor(sym models.Symbol) (*models.Chart, bool) {
	for _, p := range technicalPeriods {
		v, ok := r.cache.Get(chartKey(sym, p, p.DefaultInterval()))
		if !ok {
			continue
		}
		if chart, ok := v.(*models.Chart); ok && chart.Series.Len() > 0 {
			return chart, true
		}
	}
	return nil, false
}
