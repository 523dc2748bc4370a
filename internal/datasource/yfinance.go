package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

const (
	yfBaseURL     = "https://query1.finance.yahoo.com"
	yfTimeout     = 12 * time.Second
	yfDefaultRate = 5

	yfSummaryModules = "summaryDetail,financialData,defaultKeyStatistics,assetProfile," +
		"incomeStatementHistory,balanceSheetHistory,cashflowStatementHistory"
)

// YFinance is the generic finance adapter backed by the Yahoo Finance API.
// It is the primary source for US equities and the second source for
// Indian ones, and serves price history for both.
type YFinance struct {
	baseURL string
	timeout time.Duration
	limiter *infra.RateLimiter
	client  *http.Client
	now     func() time.Time
}

// NewYFinance creates the Yahoo Finance adapter.
func NewYFinance(opts Options) *YFinance {
	opts = opts.withDefaults(yfBaseURL, yfTimeout, yfDefaultRate)
	return &YFinance{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		limiter: opts.limiter(),
		client:  opts.Client,
		now:     opts.Now,
	}
}

// Name returns the data source name.
func (y *YFinance) Name() string { return "yahoo" }

// --- Yahoo Finance API types ---

type yfQuoteResponse struct {
	QuoteResponse struct {
		Result []yfQuoteResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"quoteResponse"`
}

type yfQuoteResult struct {
	Symbol                     string   `json:"symbol"`
	ShortName                  string   `json:"shortName"`
	LongName                   string   `json:"longName"`
	Currency                   string   `json:"currency"`
	FullExchangeName           string   `json:"fullExchangeName"`
	RegularMarketPrice         *float64 `json:"regularMarketPrice"`
	RegularMarketChange        *float64 `json:"regularMarketChange"`
	RegularMarketChangePercent *float64 `json:"regularMarketChangePercent"`
	RegularMarketOpen          *float64 `json:"regularMarketOpen"`
	RegularMarketDayHigh       *float64 `json:"regularMarketDayHigh"`
	RegularMarketDayLow        *float64 `json:"regularMarketDayLow"`
	RegularMarketPreviousClose *float64 `json:"regularMarketPreviousClose"`
	RegularMarketVolume        *float64 `json:"regularMarketVolume"`
	AverageDailyVolume3Month   *float64 `json:"averageDailyVolume3Month"`
	MarketCap                  *float64 `json:"marketCap"`
	FiftyTwoWeekHigh           *float64 `json:"fiftyTwoWeekHigh"`
	FiftyTwoWeekLow            *float64 `json:"fiftyTwoWeekLow"`
	TrailingPE                 *float64 `json:"trailingPE"`
	PriceToBook                *float64 `json:"priceToBook"`
	EpsTrailingTwelveMonths    *float64 `json:"epsTrailingTwelveMonths"`
}

type yfSummaryResponse struct {
	QuoteSummary struct {
		Result []yfSummaryResult `json:"result"`
		Error  *yfError          `json:"error"`
	} `json:"quoteSummary"`
}

type yfSummaryResult struct {
	SummaryDetail            yfModule           `json:"summaryDetail"`
	FinancialData            yfModule           `json:"financialData"`
	DefaultKeyStatistics     yfModule           `json:"defaultKeyStatistics"`
	AssetProfile             yfModule           `json:"assetProfile"`
	IncomeStatementHistory   *yfIncomeHistory   `json:"incomeStatementHistory"`
	BalanceSheetHistory      *yfBalanceHistory  `json:"balanceSheetHistory"`
	CashflowStatementHistory *yfCashflowHistory `json:"cashflowStatementHistory"`
}

type yfIncomeHistory struct {
	Statements []yfModule `json:"incomeStatementHistory"`
}

type yfBalanceHistory struct {
	Statements []yfModule `json:"balanceSheetStatements"`
}

type yfCashflowHistory struct {
	Statements []yfModule `json:"cashflowStatements"`
}

// yfModule is one quoteSummary module keyed by Yahoo field name.
type yfModule map[string]yfValue

// yfValue decodes Yahoo's {raw, fmt} number objects as well as bare numbers
// and strings. Arrays and nested objects without "raw" decode as empty.
type yfValue struct {
	Raw  *float64
	Text string
}

func (v *yfValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil
	}
	switch b[0] {
	case '{':
		var obj struct {
			Raw *float64 `json:"raw"`
			Fmt string   `json:"fmt"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil
		}
		v.Raw, v.Text = obj.Raw, obj.Fmt
	case '"':
		return json.Unmarshal(b, &v.Text)
	case '[', 'n', 't', 'f':
		// arrays, null and booleans carry nothing we map
	default:
		var f float64
		if err := json.Unmarshal(b, &f); err != nil {
			return err
		}
		v.Raw = &f
	}
	return nil
}

func (m yfModule) num(key string) *float64 {
	if m == nil {
		return nil
	}
	return m[key].Raw
}

func (m yfModule) text(key string) string {
	if m == nil {
		return ""
	}
	return m[key].Text
}

type yfChartResponse struct {
	Chart struct {
		Result []yfChartResult `json:"result"`
		Error  *yfError        `json:"error"`
	} `json:"chart"`
}

type yfChartResult struct {
	Meta       yfChartMeta  `json:"meta"`
	Timestamp  []int64      `json:"timestamp"`
	Indicators yfIndicators `json:"indicators"`
}

type yfChartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type yfIndicators struct {
	Quote []yfOHLCV `json:"quote"`
}

type yfOHLCV struct {
	Open   []*float64 `json:"open"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
}

type yfError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// --- Adapter ---

// Fetch runs the quote and quoteSummary calls concurrently. Either one
// succeeding is a success: a summary-only record carries fundamentals
// without a price.
func (y *YFinance) Fetch(ctx context.Context, sym models.Symbol) (*models.PartialRecord, error) {
	return guard(y.Name(), func() (*models.PartialRecord, error) {
		ctx, cancel := context.WithTimeout(ctx, y.timeout)
		defer cancel()

		yfTicker := utils.ToYFinanceTicker(sym)

		var (
			mu      sync.Mutex
			errs    []error
			quote   *yfQuoteResult
			summary *yfSummaryResult
		)
		g, gctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			q, err := y.fetchQuote(gctx, yfTicker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("quote: %w", err))
				return nil // non-fatal
			}
			quote = q
			return nil
		})

		g.Go(func() error {
			s, err := y.fetchSummary(gctx, yfTicker)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("quoteSummary: %w", err))
				return nil
			}
			summary = s
			return nil
		})

		_ = g.Wait()

		if quote == nil && summary == nil {
			return nil, errors.Join(errs...)
		}

		rec := models.NewPartialRecord(y.Name(), y.now())
		if summary != nil {
			applySummary(rec, summary)
		}
		// The quote endpoint is fresher than the summary modules, so its
		// fields are applied last.
		if quote != nil {
			applyQuote(rec, quote)
		}
		return rec, nil
	})
}

// FetchSeries returns OHLCV candles from the v8 chart endpoint.
func (y *YFinance) FetchSeries(ctx context.Context, sym models.Symbol, period models.Period, interval string) ([]models.Candle, error) {
	return guard(y.Name(), func() ([]models.Candle, error) {
		ctx, cancel := context.WithTimeout(ctx, y.timeout)
		defer cancel()

		if interval == "" {
			interval = period.DefaultInterval()
		}
		if err := y.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		yfTicker := utils.ToYFinanceTicker(sym)
		chartURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
			y.baseURL, url.PathEscape(yfTicker), period, url.QueryEscape(interval))

		var resp yfChartResponse
		if err := getJSON(ctx, y.client, chartURL, nil, &resp); err != nil {
			return nil, fmt.Errorf("yfinance chart %s: %w", yfTicker, err)
		}
		if resp.Chart.Error != nil {
			return nil, fmt.Errorf("yfinance chart error: %s", resp.Chart.Error.Description)
		}
		if len(resp.Chart.Result) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, yfTicker)
		}

		candles := parseYFCandles(resp.Chart.Result[0])
		if len(candles) == 0 {
			return nil, fmt.Errorf("%w: empty chart for %s", ErrBadShape, yfTicker)
		}
		return candles, nil
	})
}

func (y *YFinance) fetchQuote(ctx context.Context, yfTicker string) (*yfQuoteResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	quoteURL := fmt.Sprintf("%s/v7/finance/quote?symbols=%s", y.baseURL, url.QueryEscape(yfTicker))
	var resp yfQuoteResponse
	if err := getJSON(ctx, y.client, quoteURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("yfinance quote %s: %w", yfTicker, err)
	}
	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, yfTicker)
	}
	return &resp.QuoteResponse.Result[0], nil
}

func (y *YFinance) fetchSummary(ctx context.Context, yfTicker string) (*yfSummaryResult, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	summaryURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		y.baseURL, url.PathEscape(yfTicker), yfSummaryModules)
	var resp yfSummaryResponse
	if err := getJSON(ctx, y.client, summaryURL, nil, &resp); err != nil {
		return nil, fmt.Errorf("yfinance summary %s: %w", yfTicker, err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("yfinance API error: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrTickerNotFound, yfTicker)
	}
	return &resp.QuoteSummary.Result[0], nil
}

// --- Mapping ---

func applyQuote(rec *models.PartialRecord, q *yfQuoteResult) {
	if q.RegularMarketPrice != nil && *q.RegularMarketPrice > 0 {
		rec.Set(models.FieldPrice, *q.RegularMarketPrice)
	}
	rec.SetPtr(models.FieldChange, q.RegularMarketChange)
	rec.SetPtr(models.FieldChangePercent, q.RegularMarketChangePercent)
	rec.SetPtr(models.FieldOpen, q.RegularMarketOpen)
	rec.SetPtr(models.FieldDayHigh, q.RegularMarketDayHigh)
	rec.SetPtr(models.FieldDayLow, q.RegularMarketDayLow)
	rec.SetPtr(models.FieldPreviousClose, q.RegularMarketPreviousClose)
	rec.SetPtr(models.FieldVolume, q.RegularMarketVolume)
	rec.SetPtr(models.FieldAvgVolume, q.AverageDailyVolume3Month)
	rec.SetPtr(models.FieldMarketCap, q.MarketCap)
	rec.SetPtr(models.FieldFiftyTwoWeekHigh, q.FiftyTwoWeekHigh)
	rec.SetPtr(models.FieldFiftyTwoWeekLow, q.FiftyTwoWeekLow)
	rec.SetPtr(models.FieldPE, q.TrailingPE)
	rec.SetPtr(models.FieldPB, q.PriceToBook)
	rec.SetPtr(models.FieldEPS, q.EpsTrailingTwelveMonths)

	rec.SetText(models.FieldName, coalesce(q.LongName, q.ShortName))
	rec.SetText(models.FieldCurrency, q.Currency)
	rec.SetText(models.FieldExchange, q.FullExchangeName)
}

func applySummary(rec *models.PartialRecord, s *yfSummaryResult) {
	sd, fd, ks, ap := s.SummaryDetail, s.FinancialData, s.DefaultKeyStatistics, s.AssetProfile

	if p := fd.num("currentPrice"); p != nil && *p > 0 {
		rec.Set(models.FieldPrice, *p)
	}
	rec.SetPtr(models.FieldPreviousClose, sd.num("previousClose"))
	rec.SetPtr(models.FieldOpen, sd.num("open"))
	rec.SetPtr(models.FieldDayHigh, sd.num("dayHigh"))
	rec.SetPtr(models.FieldDayLow, sd.num("dayLow"))
	rec.SetPtr(models.FieldFiftyTwoWeekHigh, sd.num("fiftyTwoWeekHigh"))
	rec.SetPtr(models.FieldFiftyTwoWeekLow, sd.num("fiftyTwoWeekLow"))
	rec.SetPtr(models.FieldVolume, sd.num("volume"))
	rec.SetPtr(models.FieldAvgVolume, sd.num("averageVolume"))
	rec.SetPtr(models.FieldMarketCap, sd.num("marketCap"))
	rec.SetPtr(models.FieldPE, sd.num("trailingPE"))
	rec.SetPtr(models.FieldDividendYield, percent(sd.num("dividendYield")))
	rec.SetPtr(models.FieldBeta, sd.num("beta"))
	rec.SetPtr(models.FieldFiftyDMA, sd.num("fiftyDayAverage"))
	rec.SetPtr(models.FieldTwoHundredDMA, sd.num("twoHundredDayAverage"))

	rec.SetPtr(models.FieldPEG, ks.num("pegRatio"))
	rec.SetPtr(models.FieldBookValue, ks.num("bookValue"))
	rec.SetPtr(models.FieldPB, ks.num("priceToBook"))
	rec.SetPtr(models.FieldEPS, ks.num("trailingEps"))
	rec.SetPtr(models.FieldNetIncome, ks.num("netIncomeToCommon"))

	rec.SetPtr(models.FieldTargetPrice, fd.num("targetMeanPrice"))
	rec.SetPtr(models.FieldROE, percent(fd.num("returnOnEquity")))
	rec.SetPtr(models.FieldROA, percent(fd.num("returnOnAssets")))
	rec.SetPtr(models.FieldGrossMargin, percent(fd.num("grossMargins")))
	rec.SetPtr(models.FieldOperatingMargin, percent(fd.num("operatingMargins")))
	rec.SetPtr(models.FieldProfitMargin, percent(fd.num("profitMargins")))
	rec.SetPtr(models.FieldRevenueGrowth, percent(fd.num("revenueGrowth")))
	rec.SetPtr(models.FieldEarningsGrowth, percent(fd.num("earningsGrowth")))
	rec.SetPtr(models.FieldDebtToEquity, ratio(fd.num("debtToEquity")))
	rec.SetPtr(models.FieldCurrentRatio, fd.num("currentRatio"))
	rec.SetPtr(models.FieldQuickRatio, fd.num("quickRatio"))
	rec.SetPtr(models.FieldRevenue, fd.num("totalRevenue"))
	rec.SetPtr(models.FieldGrossProfit, fd.num("grossProfits"))
	rec.SetPtr(models.FieldEBITDA, fd.num("ebitda"))
	rec.SetPtr(models.FieldTotalDebt, fd.num("totalDebt"))
	rec.SetPtr(models.FieldCash, fd.num("totalCash"))
	rec.SetPtr(models.FieldFreeCashFlow, fd.num("freeCashflow"))
	rec.SetPtr(models.FieldOperatingCashFlow, fd.num("operatingCashflow"))
	rec.SetText(models.FieldRecommendation, fd.text("recommendationKey"))

	rec.SetText(models.FieldSector, ap.text("sector"))
	rec.SetText(models.FieldIndustry, ap.text("industry"))
	rec.SetText(models.FieldDescription, ap.text("longBusinessSummary"))
	rec.SetText(models.FieldWebsite, ap.text("website"))
	rec.SetPtr(models.FieldEmployees, ap.num("fullTimeEmployees"))
	rec.SetText(models.FieldCurrency, sd.text("currency"))

	// Statement histories are newest first.
	if h := s.IncomeStatementHistory; h != nil && len(h.Statements) > 0 {
		is := h.Statements[0]
		if _, ok := rec.Number(models.FieldRevenue); !ok {
			rec.SetPtr(models.FieldRevenue, is.num("totalRevenue"))
		}
		rec.SetPtr(models.FieldOperatingIncome, is.num("operatingIncome"))
		if _, ok := rec.Number(models.FieldNetIncome); !ok {
			rec.SetPtr(models.FieldNetIncome, is.num("netIncome"))
		}
	}
	if h := s.BalanceSheetHistory; h != nil && len(h.Statements) > 0 {
		bs := h.Statements[0]
		rec.SetPtr(models.FieldTotalAssets, bs.num("totalAssets"))
		rec.SetPtr(models.FieldTotalLiabilities, bs.num("totalLiab"))
		rec.SetPtr(models.FieldTotalEquity, bs.num("totalStockholderEquity"))
		if _, ok := rec.Number(models.FieldCash); !ok {
			rec.SetPtr(models.FieldCash, bs.num("cash"))
		}
	}
	if h := s.CashflowStatementHistory; h != nil && len(h.Statements) > 0 {
		cf := h.Statements[0]
		if _, ok := rec.Number(models.FieldOperatingCashFlow); !ok {
			rec.SetPtr(models.FieldOperatingCashFlow, cf.num("totalCashFromOperatingActivities"))
		}
	}
}

// percent converts a Yahoo ratio (0.125) to percentage points (12.5).
func percent(ratio *float64) *float64 {
	if ratio == nil {
		return nil
	}
	v := decimal.NewFromFloat(*ratio).Shift(2).InexactFloat64()
	return &v
}

// ratio converts a Yahoo percentage (41.5) to a plain ratio (0.415).
// Yahoo reports debtToEquity this way; Screener reports the ratio.
func ratio(pct *float64) *float64 {
	if pct == nil {
		return nil
	}
	v := decimal.NewFromFloat(*pct).Shift(-2).InexactFloat64()
	return &v
}

// --- Helpers ---

// parseYFCandles converts the chart arrays into candles, skipping bars
// Yahoo reports with a null close (halted or not yet traded).
func parseYFCandles(result yfChartResult) []models.Candle {
	if len(result.Indicators.Quote) == 0 {
		return nil
	}

	q := result.Indicators.Quote[0]
	candles := make([]models.Candle, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(q.Close) || q.Close[i] == nil {
			continue
		}
		c := models.Candle{
			Timestamp: time.Unix(ts, 0).UTC(),
			Close:     *q.Close[i],
		}
		c.Open = valueOr(q.Open, i, c.Close)
		c.High = max(valueOr(q.High, i, c.Close), c.Open, c.Close)
		c.Low = min(valueOr(q.Low, i, c.Close), c.Open, c.Close)
		if i < len(q.Volume) && q.Volume[i] != nil {
			c.Volume = *q.Volume[i]
		}
		candles = append(candles, c)
	}
	return candles
}

func valueOr(values []*float64, i int, fallback float64) float64 {
	if i < len(values) && values[i] != nil {
		return *values[i]
	}
	return fallback
}

func coalesce(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
