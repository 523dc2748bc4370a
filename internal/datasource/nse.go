package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

const (
	nseBaseURL     = "https://www.nseindia.com"
	nseTimeout     = 10 * time.Second
	nseCookieTTL   = 5 * time.Minute
	nseDefaultRate = 3 // max requests per second
)

// NSE is the primary exchange adapter for Indian equities. It is
// authoritative for last traded price, the intraday and 52-week ranges, and
// the symbol P/E.
type NSE struct {
	baseURL string
	timeout time.Duration
	limiter *infra.RateLimiter
	client  *http.Client
	now     func() time.Time

	mu           sync.Mutex
	cookieExpiry time.Time
}

// NewNSE creates the NSE India adapter. NSE rejects API calls without the
// session cookies set by its homepage, so the adapter keeps its own jar.
func NewNSE(opts Options) *NSE {
	opts = opts.withDefaults(nseBaseURL, nseTimeout, nseDefaultRate)
	jar, _ := cookiejar.New(nil)

	client := *opts.Client
	client.Jar = jar
	return &NSE{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		limiter: opts.limiter(),
		client:  &client,
		now:     opts.Now,
	}
}

// Name returns the data source name.
func (n *NSE) Name() string { return "nse" }

// --- NSE JSON response types ---

type nseQuoteResponse struct {
	Info         nseStockInfo    `json:"info"`
	Metadata     nseMetadata     `json:"metadata"`
	SecurityInfo nseSecurityInfo `json:"securityInfo"`
	PriceInfo    *nsePriceInfo   `json:"priceInfo"`
	IndustryInfo nseIndustryInfo `json:"industryInfo"`
}

type nseStockInfo struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"companyName"`
	Industry    string `json:"industry"`
}

type nsePriceInfo struct {
	LastPrice       float64    `json:"lastPrice"`
	Change          *float64   `json:"change"`
	PChange         *float64   `json:"pChange"`
	Open            float64    `json:"open"`
	PreviousClose   float64    `json:"previousClose"`
	IntraDayHighLow nseHighLow `json:"intraDayHighLow"`
	WeekHighLow     nseHighLow `json:"weekHighLow"`
}

type nseHighLow struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

type nseSecurityInfo struct {
	FaceValue float64 `json:"faceValue"`
}

type nseMetadata struct {
	Industry   string   `json:"industry"`
	Sector     string   `json:"pdSectorInd"`
	SymbolPE   *float64 `json:"pdSymbolPe"`
	SectorPE   *float64 `json:"pdSectorPe"`
	LastUpdate string   `json:"lastUpdateTime"`
}

type nseIndustryInfo struct {
	Sector   string `json:"sector"`
	Industry string `json:"industry"`
}

// Fetch returns the exchange quote for an NSE-listed equity.
func (n *NSE) Fetch(ctx context.Context, sym models.Symbol) (*models.PartialRecord, error) {
	return guard(n.Name(), func() (*models.PartialRecord, error) {
		if sym.Market != models.MarketEquityIN || utils.IsIndex(sym.Ticker) {
			return nil, fmt.Errorf("%w: %s", ErrNotSupported, sym)
		}

		ctx, cancel := context.WithTimeout(ctx, n.timeout)
		defer cancel()

		if err := n.ensureCookies(ctx); err != nil {
			return nil, fmt.Errorf("NSE cookie refresh: %w", err)
		}
		if err := n.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		symbol := utils.ToNSESymbol(sym)
		var resp nseQuoteResponse
		quoteURL := fmt.Sprintf("%s/api/quote-equity?symbol=%s", n.baseURL, url.QueryEscape(symbol))
		if err := getJSON(ctx, n.client, quoteURL, n.apiHeaders(), &resp); err != nil {
			return nil, fmt.Errorf("NSE quote %s: %w", symbol, err)
		}
		return n.toRecord(resp)
	})
}

func (n *NSE) toRecord(resp nseQuoteResponse) (*models.PartialRecord, error) {
	p := resp.PriceInfo
	if p == nil || p.LastPrice <= 0 {
		return nil, fmt.Errorf("%w: NSE quote has no positive lastPrice", ErrBadShape)
	}

	rec := models.NewPartialRecord(n.Name(), n.now())
	rec.Set(models.FieldPrice, p.LastPrice)
	rec.SetPtr(models.FieldChange, p.Change)
	rec.SetPtr(models.FieldChangePercent, p.PChange)
	rec.SetNonZero(models.FieldOpen, p.Open)
	rec.SetNonZero(models.FieldPreviousClose, p.PreviousClose)
	rec.SetNonZero(models.FieldDayHigh, p.IntraDayHighLow.Max)
	rec.SetNonZero(models.FieldDayLow, p.IntraDayHighLow.Min)
	rec.SetNonZero(models.FieldFiftyTwoWeekHigh, p.WeekHighLow.Max)
	rec.SetNonZero(models.FieldFiftyTwoWeekLow, p.WeekHighLow.Min)
	rec.SetPtr(models.FieldPE, resp.Metadata.SymbolPE)
	rec.SetNonZero(models.FieldFaceValue, resp.SecurityInfo.FaceValue)

	rec.SetText(models.FieldName, resp.Info.CompanyName)
	rec.SetText(models.FieldSector, coalesce(resp.IndustryInfo.Sector, resp.Metadata.Sector))
	rec.SetText(models.FieldIndustry, coalesce(resp.IndustryInfo.Industry, resp.Metadata.Industry, resp.Info.Industry))
	rec.SetText(models.FieldExchange, "NSE")
	rec.SetText(models.FieldCurrency, "INR")
	return rec, nil
}

// --- Internal helpers ---

// ensureCookies visits the NSE homepage to get session cookies.
func (n *NSE) ensureCookies(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.now().Before(n.cookieExpiry) {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch NSE homepage for cookies: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck // drain body

	n.cookieExpiry = n.now().Add(nseCookieTTL)
	return nil
}

func (n *NSE) apiHeaders() map[string]string {
	return map[string]string{
		"Accept":           "application/json",
		"Referer":          n.baseURL,
		"X-Requested-With": "XMLHttpRequest",
	}
}
