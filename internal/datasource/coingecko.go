package datasource

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

const (
	coinGeckoBaseURL     = "https://api.coingecko.com/api/v3"
	coinGeckoTimeout     = 8 * time.Second
	coinGeckoDefaultRate = 2 // public tier allows ~30 req/min
)

// CoinGecko is the crypto adapter. Tickers are resolved to coin ids through
// a static alias table; prices are quoted in USD.
type CoinGecko struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	limiter *infra.RateLimiter
	client  *http.Client
	now     func() time.Time
}

// NewCoinGecko creates the CoinGecko adapter. A non-empty APIKey is sent as
// a demo-plan key.
func NewCoinGecko(opts Options) *CoinGecko {
	opts = opts.withDefaults(coinGeckoBaseURL, coinGeckoTimeout, coinGeckoDefaultRate)
	return &CoinGecko{
		baseURL: opts.BaseURL,
		apiKey:  opts.APIKey,
		timeout: opts.Timeout,
		limiter: opts.limiter(),
		client:  opts.Client,
		now:     opts.Now,
	}
}

// Name returns the data source name.
func (c *CoinGecko) Name() string { return "coingecko" }

// --- CoinGecko JSON response types ---

type cgCoinResponse struct {
	ID          string        `json:"id"`
	Symbol      string        `json:"symbol"`
	Name        string        `json:"name"`
	Description cgDescription `json:"description"`
	Links       cgLinks       `json:"links"`
	MarketData  *cgMarketData `json:"market_data"`
}

type cgDescription struct {
	En string `json:"en"`
}

type cgLinks struct {
	Homepage []string `json:"homepage"`
}

type cgMarketData struct {
	CurrentPrice             cgCurrency `json:"current_price"`
	High24h                  cgCurrency `json:"high_24h"`
	Low24h                   cgCurrency `json:"low_24h"`
	MarketCap                cgCurrency `json:"market_cap"`
	TotalVolume              cgCurrency `json:"total_volume"`
	PriceChange24h           *float64   `json:"price_change_24h"`
	PriceChangePercentage24h *float64   `json:"price_change_percentage_24h"`
	CirculatingSupply        *float64   `json:"circulating_supply"`
	TotalSupply              *float64   `json:"total_supply"`
	MaxSupply                *float64   `json:"max_supply"`
}

type cgCurrency struct {
	USD *float64 `json:"usd"`
}

type cgMarketChart struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// Fetch returns price, 24h change, market cap and supply metrics.
func (c *CoinGecko) Fetch(ctx context.Context, sym models.Symbol) (*models.PartialRecord, error) {
	return guard(c.Name(), func() (*models.PartialRecord, error) {
		if sym.Market != models.MarketCrypto {
			return nil, fmt.Errorf("%w: %s", ErrNotSupported, sym)
		}

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		id := utils.CoinGeckoID(sym)
		coinURL := fmt.Sprintf("%s/coins/%s?localization=false&tickers=false&community_data=false&developer_data=false&sparkline=false",
			c.baseURL, url.PathEscape(id))

		var resp cgCoinResponse
		if err := getJSON(ctx, c.client, coinURL, c.headers(), &resp); err != nil {
			return nil, fmt.Errorf("coingecko coin %s: %w", id, err)
		}
		return c.toRecord(resp)
	})
}

func (c *CoinGecko) toRecord(resp cgCoinResponse) (*models.PartialRecord, error) {
	md := resp.MarketData
	if md == nil || md.CurrentPrice.USD == nil || *md.CurrentPrice.USD <= 0 {
		return nil, fmt.Errorf("%w: coingecko %s has no market_data price", ErrBadShape, resp.ID)
	}

	rec := models.NewPartialRecord(c.Name(), c.now())
	price := *md.CurrentPrice.USD
	rec.Set(models.FieldPrice, price)
	rec.SetPtr(models.FieldChange, md.PriceChange24h)
	rec.SetPtr(models.FieldChangePercent, md.PriceChangePercentage24h)
	if md.PriceChange24h != nil {
		rec.Set(models.FieldPreviousClose, price-*md.PriceChange24h)
	}
	rec.SetPtr(models.FieldDayHigh, md.High24h.USD)
	rec.SetPtr(models.FieldDayLow, md.Low24h.USD)
	rec.SetPtr(models.FieldMarketCap, md.MarketCap.USD)
	rec.SetPtr(models.FieldVolume, md.TotalVolume.USD)
	rec.SetPtr(models.FieldCirculatingSupply, md.CirculatingSupply)
	rec.SetPtr(models.FieldTotalSupply, md.TotalSupply)
	rec.SetPtr(models.FieldMaxSupply, md.MaxSupply)

	rec.SetText(models.FieldName, resp.Name)
	rec.SetText(models.FieldDescription, resp.Description.En)
	if len(resp.Links.Homepage) > 0 {
		rec.SetText(models.FieldWebsite, resp.Links.Homepage[0])
	}
	rec.SetText(models.FieldCurrency, "USD")
	rec.SetText(models.FieldSector, "Cryptocurrency")
	return rec, nil
}

// FetchSeries builds candles from the market_chart price points. CoinGecko
// returns only closes, so each candle opens at the previous point's close.
// The interval is chosen by CoinGecko from the day count and is ignored.
func (c *CoinGecko) FetchSeries(ctx context.Context, sym models.Symbol, period models.Period, _ string) ([]models.Candle, error) {
	return guard(c.Name(), func() ([]models.Candle, error) {
		if sym.Market != models.MarketCrypto {
			return nil, fmt.Errorf("%w: %s", ErrNotSupported, sym)
		}

		ctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		id := utils.CoinGeckoID(sym)
		chartURL := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%d",
			c.baseURL, url.PathEscape(id), period.Days())

		var resp cgMarketChart
		if err := getJSON(ctx, c.client, chartURL, c.headers(), &resp); err != nil {
			return nil, fmt.Errorf("coingecko chart %s: %w", id, err)
		}

		candles := parseMarketChart(resp)
		if len(candles) == 0 {
			return nil, fmt.Errorf("%w: empty market_chart for %s", ErrBadShape, id)
		}
		return candles, nil
	})
}

func (c *CoinGecko) headers() map[string]string {
	h := map[string]string{"Accept": "application/json"}
	if c.apiKey != "" {
		h["x-cg-demo-api-key"] = c.apiKey
	}
	return h
}

// parseMarketChart turns [timestamp_ms, value] pairs into candles. Volumes
// are matched by position.
func parseMarketChart(mc cgMarketChart) []models.Candle {
	candles := make([]models.Candle, 0, len(mc.Prices))
	for i, point := range mc.Prices {
		if len(point) < 2 || point[1] <= 0 {
			continue
		}
		closePrice := point[1]
		open := closePrice
		if n := len(candles); n > 0 {
			open = candles[n-1].Close
		}

		c := models.Candle{
			Timestamp: time.UnixMilli(int64(point[0])).UTC(),
			Open:      open,
			High:      math.Max(open, closePrice),
			Low:       math.Min(open, closePrice),
			Close:     closePrice,
		}
		if i < len(mc.TotalVolumes) && len(mc.TotalVolumes[i]) >= 2 {
			c.Volume = int64(mc.TotalVolumes[i][1])
		}
		candles = append(candles, c)
	}
	return candles
}
