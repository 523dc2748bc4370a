package datasource

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/internal/merge"
	"github.com/seenimoa/marketdata/pkg/models"
	"github.com/seenimoa/marketdata/pkg/utils"
)

const (
	screenerBaseURL     = "https://www.screener.in"
	screenerTimeout     = 15 * time.Second
	screenerDefaultRate = 1 // conservative: 1 req/s
)

// Screener is the regional fundamentals adapter. It scrapes the Screener.in
// company page for ratios and the shareholding split that other sources
// lack.
type Screener struct {
	baseURL string
	timeout time.Duration
	limiter *infra.RateLimiter
	client  *http.Client
	now     func() time.Time
}

// NewScreener creates the Screener.in adapter.
func NewScreener(opts Options) *Screener {
	opts = opts.withDefaults(screenerBaseURL, screenerTimeout, screenerDefaultRate)
	return &Screener{
		baseURL: opts.BaseURL,
		timeout: opts.Timeout,
		limiter: opts.limiter(),
		client:  opts.Client,
		now:     opts.Now,
	}
}

// Name returns the data source name.
func (s *Screener) Name() string { return "screener" }

// Fetch scrapes the top ratios and latest shareholding pattern.
func (s *Screener) Fetch(ctx context.Context, sym models.Symbol) (*models.PartialRecord, error) {
	return guard(s.Name(), func() (*models.PartialRecord, error) {
		if sym.Market != models.MarketEquityIN || utils.IsIndex(sym.Ticker) {
			return nil, fmt.Errorf("%w: %s", ErrNotSupported, sym)
		}

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		doc, err := s.fetchPage(ctx, utils.ToNSESymbol(sym))
		if err != nil {
			return nil, err
		}

		rec := models.NewPartialRecord(s.Name(), s.now())
		parseTopRatios(doc, rec)
		parseShareholding(doc, rec)
		rec.SetText(models.FieldName, doc.Find("#top h1").First().Text())

		if rec.Len() == 0 {
			return nil, fmt.Errorf("%w: no ratios on screener page for %s", ErrBadShape, sym)
		}
		return rec, nil
	})
}

// --- Internal helpers ---

// fetchPage downloads and parses the company page, preferring the
// consolidated view and falling back to standalone.
func (s *Screener) fetchPage(ctx context.Context, symbol string) (*goquery.Document, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	headers := map[string]string{"Accept": "text/html"}
	url := fmt.Sprintf("%s/company/%s/consolidated/", s.baseURL, symbol)
	body, _, err := doGet(ctx, s.client, url, headers)
	if err != nil && ctx.Err() == nil {
		url = fmt.Sprintf("%s/company/%s/", s.baseURL, symbol)
		var standaloneErr error
		body, _, standaloneErr = doGet(ctx, s.client, url, headers)
		if standaloneErr != nil {
			err = errors.Join(err, standaloneErr)
		} else {
			err = nil
		}
	}
	if err != nil {
		return nil, fmt.Errorf("screener.in %s: %w", symbol, err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse screener HTML: %v", ErrBadShape, err)
	}
	return doc, nil
}

// parseTopRatios reads the "#top-ratios" list. Screener shows money in
// crores and percentages as plain numbers with a "%" suffix.
func parseTopRatios(doc *goquery.Document, rec *models.PartialRecord) {
	doc.Find("#top-ratios li").Each(func(_ int, sel *goquery.Selection) {
		name := strings.TrimSpace(sel.Find(".name").Text())
		numbers := sel.Find(".number")

		if strings.Contains(name, "High / Low") {
			if high, ok := merge.ParseNumber(numbers.Eq(0).Text()); ok {
				rec.Set(models.FieldFiftyTwoWeekHigh, high)
			}
			if low, ok := merge.ParseNumber(numbers.Eq(1).Text()); ok {
				rec.Set(models.FieldFiftyTwoWeekLow, low)
			}
			return
		}

		val, ok := merge.ParseNumber(numbers.First().Text())
		if !ok {
			return
		}
		switch {
		case strings.Contains(name, "Market Cap"):
			rec.Set(models.FieldMarketCap, val*1e7) // crores
		case strings.Contains(name, "Current Price"):
			if val > 0 {
				rec.Set(models.FieldPrice, val)
			}
		case strings.Contains(name, "Stock P/E"):
			rec.Set(models.FieldPE, val)
		case strings.Contains(name, "Book Value"):
			rec.Set(models.FieldBookValue, val)
		case strings.Contains(name, "Price to book"):
			rec.Set(models.FieldPB, val)
		case strings.Contains(name, "Dividend Yield"):
			rec.Set(models.FieldDividendYield, val)
		case strings.Contains(name, "ROCE"):
			rec.Set(models.FieldROCE, val)
		case strings.Contains(name, "ROE"):
			rec.Set(models.FieldROE, val)
		case strings.Contains(name, "Face Value"):
			rec.Set(models.FieldFaceValue, val)
		case strings.Contains(name, "Debt to equity"):
			rec.Set(models.FieldDebtToEquity, val)
		case strings.Contains(name, "Current ratio"):
			rec.Set(models.FieldCurrentRatio, val)
		case strings.Contains(name, "EPS"):
			rec.Set(models.FieldEPS, val)
		case strings.Contains(name, "PEG"):
			rec.Set(models.FieldPEG, val)
		}
	})
}

// parseShareholding reads the latest (right-most) quarter of the
// shareholding pattern table.
func parseShareholding(doc *goquery.Document, rec *models.PartialRecord) {
	doc.Find("#shareholding table").First().Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		label := strings.TrimSpace(row.Find("td").First().Text())
		val, ok := merge.ParseNumber(row.Find("td").Last().Text())
		if !ok {
			return
		}
		switch {
		case strings.HasPrefix(label, "Promoters"):
			rec.Set(models.FieldPromoters, val)
		case strings.HasPrefix(label, "FIIs"):
			rec.Set(models.FieldFII, val)
		case strings.HasPrefix(label, "DIIs"):
			rec.Set(models.FieldDII, val)
		case strings.HasPrefix(label, "Government"):
			rec.Set(models.FieldGovernment, val)
		case strings.HasPrefix(label, "Public"):
			rec.Set(models.FieldPublic, val)
		}
	})
}
