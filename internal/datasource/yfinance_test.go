package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/seenimoa/marketdata/pkg/models"
)

const yfQuoteJSON = `{"quoteResponse": {"result": [{
  "symbol": "AAPL", "shortName": "Apple Inc.", "longName": "Apple Inc.",
  "currency": "USD", "fullExchangeName": "NasdaqGS",
  "regularMarketPrice": 195.5, "regularMarketChange": 1.5,
  "regularMarketChangePercent": 0.77, "regularMarketPreviousClose": 194.0,
  "regularMarketVolume": 51234000, "marketCap": 2.9e12, "trailingPE": 31.2
}], "error": null}}`

const yfSummaryJSON = `{"quoteSummary": {"result": [{
  "summaryDetail": {"dividendYield": {"raw": 0.0051, "fmt": "0.51%"}, "beta": {"raw": 1.24, "fmt": "1.24"}, "trailingPE": {"raw": 30.9, "fmt": "30.90"}},
  "financialData": {
    "currentPrice": {"raw": 195.1, "fmt": "195.10"},
    "profitMargins": {"raw": 0.25, "fmt": "25.00%"},
    "returnOnEquity": {"raw": 1.47, "fmt": "147.00%"},
    "debtToEquity": {"raw": 41.5, "fmt": "41.50"},
    "revenueGrowth": {"raw": 0.06, "fmt": "6.00%"},
    "targetMeanPrice": {"raw": 210.0, "fmt": "210.00"},
    "recommendationKey": "buy",
    "totalRevenue": {"raw": 3.9e11, "fmt": "390B"}
  },
  "defaultKeyStatistics": {"pegRatio": {"raw": 2.9, "fmt": "2.90"}, "bookValue": {"raw": 4.0, "fmt": "4.00"}},
  "assetProfile": {"sector": "Technology", "industry": "Consumer Electronics", "fullTimeEmployees": 161000,
    "companyOfficers": [{"name": "Tim Cook"}], "website": "https://www.apple.com"},
  "incomeStatementHistory": {"incomeStatementHistory": [{"operatingIncome": {"raw": 1.23e11}, "netIncome": {"raw": 9.7e10}}]},
  "balanceSheetHistory": {"balanceSheetStatements": [{"totalAssets": {"raw": 3.5e11}, "totalLiab": {"raw": 2.9e11}}]},
  "cashflowStatementHistory": {"cashflowStatements": [{"totalCashFromOperatingActivities": {"raw": 1.1e11}}]}
}], "error": null}}`

const yfChartJSON = `{"chart": {"result": [{
  "meta": {"symbol": "AAPL", "currency": "USD", "regularMarketPrice": 195.5},
  "timestamp": [1771400000, 1771403600, 1771407200],
  "indicators": {"quote": [{
    "open": [194.0, 194.5, null],
    "high": [195.0, 195.8, null],
    "low": [193.5, 194.2, null],
    "close": [194.6, 195.5, null],
    "volume": [1000, 2000, null]
  }]}
}], "error": null}}`

func newYFServer(t *testing.T, quoteStatus, summaryStatus int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v7/finance/quote", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(quoteStatus)
		w.Write([]byte(yfQuoteJSON))
	})
	mux.HandleFunc("/v10/finance/quoteSummary/", func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Query().Get("modules"), "financialData") {
			http.Error(w, "missing modules", http.StatusBadRequest)
			return
		}
		w.WriteHeader(summaryStatus)
		w.Write([]byte(yfSummaryJSON))
	})
	mux.HandleFunc("/v8/finance/chart/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("range") == "" {
			http.Error(w, "missing range", http.StatusBadRequest)
			return
		}
		w.Write([]byte(yfChartJSON))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

var appleSym = models.Symbol{Raw: "AAPL", Ticker: "AAPL", Market: models.MarketEquityUS}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestYFinanceFetchMergesQuoteAndSummary(t *testing.T) {
	srv := newYFServer(t, http.StatusOK, http.StatusOK)
	rec, err := NewYFinance(testOptions(srv)).Fetch(context.Background(), appleSym)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	tests := []struct {
		field models.Field
		want  float64
	}{
		// Quote fields win over financialData and summaryDetail.
		{models.FieldPrice, 195.5},
		{models.FieldPE, 31.2},
		{models.FieldDividendYield, 0.51},
		{models.FieldProfitMargin, 25},
		{models.FieldROE, 147},
		{models.FieldRevenueGrowth, 6},
		{models.FieldDebtToEquity, 0.415},
		{models.FieldTargetPrice, 210},
		{models.FieldPEG, 2.9},
		{models.FieldBookValue, 4},
		{models.FieldEmployees, 161000},
		{models.FieldOperatingIncome, 1.23e11},
		{models.FieldTotalAssets, 3.5e11},
		{models.FieldOperatingCashFlow, 1.1e11},
	}
	for _, tt := range tests {
		got, ok := rec.Number(tt.field)
		if !ok || !approx(got, tt.want) {
			t.Errorf("%s = %v (ok=%v), want %v", tt.field, got, ok, tt.want)
		}
	}
	if reco, _ := rec.Text(models.FieldRecommendation); reco != "buy" {
		t.Errorf("recommendation = %q, want buy", reco)
	}
	if sector, _ := rec.Text(models.FieldSector); sector != "Technology" {
		t.Errorf("sector = %q, want Technology", sector)
	}
}

func TestYFinanceSummaryOnly(t *testing.T) {
	srv := newYFServer(t, http.StatusInternalServerError, http.StatusOK)
	rec, err := NewYFinance(testOptions(srv)).Fetch(context.Background(), appleSym)
	if err != nil {
		t.Fatalf("summary-only fetch should succeed, got %v", err)
	}
	if got, _ := rec.Number(models.FieldPrice); got != 195.1 {
		t.Errorf("price = %v, want financialData.currentPrice 195.1", got)
	}
}

func TestYFinanceBothFail(t *testing.T) {
	srv := newYFServer(t, http.StatusInternalServerError, http.StatusTooManyRequests)
	_, err := NewYFinance(testOptions(srv)).Fetch(context.Background(), appleSym)
	if err == nil {
		t.Fatal("expected failure when both calls fail")
	}
	var httpErr *ErrHTTP
	if !errors.As(err, &httpErr) {
		t.Errorf("expected ErrHTTP in chain, got %v", err)
	}
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited joined in chain, got %v", err)
	}
}

func TestYFinanceFetchSeries(t *testing.T) {
	srv := newYFServer(t, http.StatusOK, http.StatusOK)
	candles, err := NewYFinance(testOptions(srv)).FetchSeries(context.Background(), appleSym, models.Period1D, "")
	if err != nil {
		t.Fatalf("FetchSeries() error = %v", err)
	}
	if len(candles) != 2 {
		t.Fatalf("expected 2 candles (null bar skipped), got %d", len(candles))
	}
	last := candles[1]
	if last.Close != 195.5 || last.Volume != 2000 {
		t.Errorf("last candle = %+v", last)
	}
}

func TestParseYFCandlesEmpty(t *testing.T) {
	result := yfChartResult{}
	candles := parseYFCandles(result)
	if candles != nil {
		t.Fatalf("expected nil candles for empty result, got %d", len(candles))
	}
}

func TestParseYFCandlesBoundsOpenClose(t *testing.T) {
	open, high, low, closePrice := 100.0, 99.0, 101.0, 103.0
	result := yfChartResult{
		Timestamp: []int64{1700000000},
		Indicators: yfIndicators{Quote: []yfOHLCV{{
			Open:  []*float64{&open},
			High:  []*float64{&high},
			Low:   []*float64{&low},
			Close: []*float64{&closePrice},
		}}},
	}
	c := parseYFCandles(result)[0]
	if c.High != 103 || c.Low != 100 {
		t.Errorf("high/low = %v/%v, want bounded to 103/100", c.High, c.Low)
	}
}

func TestYFValueDecoding(t *testing.T) {
	var m yfModule
	body := `{"a": {"raw": 1.5, "fmt": "1.50"}, "b": 7, "c": "text", "d": [1, 2], "e": {}, "f": null}`
	if err := json.Unmarshal([]byte(body), &m); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v := m.num("a"); v == nil || *v != 1.5 {
		t.Errorf("a = %v, want 1.5", v)
	}
	if v := m.num("b"); v == nil || *v != 7 {
		t.Errorf("b = %v, want 7", v)
	}
	if m.text("c") != "text" {
		t.Errorf("c = %q, want text", m.text("c"))
	}
	for _, k := range []string{"d", "e", "f", "missing"} {
		if m.num(k) != nil {
			t.Errorf("%s should decode to nil", k)
		}
	}
}

func TestCoalesce(t *testing.T) {
	tests := []struct {
		input []string
		want  string
	}{
		{[]string{"", "", "hello"}, "hello"},
		{[]string{"first", "second"}, "first"},
		{[]string{"", ""}, ""},
		{[]string{"  ", "actual"}, "actual"},
	}
	for _, tt := range tests {
		got := coalesce(tt.input...)
		if got != tt.want {
			t.Errorf("coalesce(%v) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
