// Package datasource provides the source adapters used by the resolver.
// Each adapter turns one provider's API or page into a sparse
// models.PartialRecord: NSE India, Yahoo Finance, Screener.in and CoinGecko.
package datasource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/seenimoa/marketdata/internal/infra"
	"github.com/seenimoa/marketdata/pkg/models"
)

//go:generate mockgen -package=resolver_test -destination=../resolver/mock_datasource_test.go -source=datasource.go

// Adapter fetches one provider's view of a symbol. Implementations never
// panic out of Fetch; every failure is returned as an *AdapterFailure.
type Adapter interface {
	// Name returns the short source name recorded in Snapshot.Sources.
	Name() string

	// Fetch returns the fields this provider knows about the symbol.
	Fetch(ctx context.Context, sym models.Symbol) (*models.PartialRecord, error)
}

// SeriesSource is implemented by adapters that can serve price history.
type SeriesSource interface {
	FetchSeries(ctx context.Context, sym models.Symbol, period models.Period, interval string) ([]models.Candle, error)
}

// --- Sentinel errors ---

// ErrNotSupported is returned when a source cannot serve a symbol's market.
var ErrNotSupported = fmt.Errorf("operation not supported by this data source")

// ErrTickerNotFound is returned when a ticker cannot be resolved.
var ErrTickerNotFound = fmt.Errorf("ticker not found")

// ErrRateLimited is returned when a source rate-limits the request.
var ErrRateLimited = fmt.Errorf("rate limited by data source")

// ErrBadShape is returned when a response decodes but lacks required data.
var ErrBadShape = fmt.Errorf("unexpected response shape")

// ErrHTTP wraps an HTTP error with status code.
type ErrHTTP struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *ErrHTTP) Error() string {
	return fmt.Sprintf("HTTP %d %s: %s", e.StatusCode, e.Status, e.Body)
}

// AdapterFailure records a failed fetch at a single source. The resolver
// logs it and moves on to the next source in the chain.
type AdapterFailure struct {
	Source string
	Err    error
}

func (f *AdapterFailure) Error() string {
	return fmt.Sprintf("%s: %v", f.Source, f.Err)
}

func (f *AdapterFailure) Unwrap() error { return f.Err }

// guard runs fn, converting a returned error or a panic raised while parsing
// a provider response into an *AdapterFailure.
func guard[T any](source string, fn func() (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			result = zero
			err = &AdapterFailure{Source: source, Err: fmt.Errorf("%w: panic: %v", ErrBadShape, r)}
		}
	}()

	result, err = fn()
	if err != nil {
		var zero T
		var af *AdapterFailure
		if errors.As(err, &af) {
			return zero, err
		}
		return zero, &AdapterFailure{Source: source, Err: err}
	}
	return result, nil
}

// --- Adapter configuration ---

// Options configures an adapter. Zero values take the adapter's defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Rate is the number of requests allowed per second. Negative disables
	// limiting.
	Rate   int
	APIKey string
	Client *http.Client
	Now    func() time.Time
}

func (o Options) withDefaults(baseURL string, timeout time.Duration, rate int) Options {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.Timeout <= 0 {
		o.Timeout = timeout
	}
	if o.Rate == 0 {
		o.Rate = rate
	}
	if o.Client == nil {
		o.Client = HTTPClient
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

func (o Options) limiter() *infra.RateLimiter {
	return infra.NewRateLimiter(o.Rate, time.Second)
}

// --- Shared HTTP client helpers ---

// DefaultUserAgent is the user agent string used for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// HTTPClient is the shared client. Per-call deadlines come from the
// adapter's context, so the client timeout is only a backstop.
var HTTPClient = &http.Client{
	Timeout: 30 * time.Second,
}

// doGet performs a GET request with the given URL and headers, returning the response body.
// The caller is responsible for closing the returned ReadCloser.
func doGet(ctx context.Context, client *http.Client, url string, headers map[string]string) (io.ReadCloser, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", DefaultUserAgent)
	req.Header.Set("Accept", "application/json, text/html, */*")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP GET %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		httpErr := &ErrHTTP{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			return nil, resp.StatusCode, fmt.Errorf("%w: %w", ErrRateLimited, httpErr)
		case http.StatusNotFound:
			return nil, resp.StatusCode, fmt.Errorf("%w: %w", ErrTickerNotFound, httpErr)
		}
		return nil, resp.StatusCode, httpErr
	}

	return resp.Body, resp.StatusCode, nil
}

// getJSON GETs url and decodes the JSON body into out.
func getJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, out any) error {
	body, _, err := doGet(ctx, client, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrBadShape, url, err)
	}
	return nil
}
