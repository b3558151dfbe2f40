// Package marketdata fetches instrument quotes from the Alpha Vantage
// daily time series API.
package marketdata

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/finmetrics/portfolio-api/internal/common"
)

// PriceType selects which field of a daily candle to read.
type PriceType string

const (
	PriceOpen          PriceType = "1. open"
	PriceHigh          PriceType = "2. high"
	PriceLow           PriceType = "3. low"
	PriceClose         PriceType = "4. close"
	PriceAdjustedClose PriceType = "5. adjusted close"
)

const (
	seriesKey  = "Time Series (Daily)"
	dateLayout = "2006-01-02"
)

// Quote is one daily observation for a symbol.
type Quote struct {
	Symbol string    `json:"symbol"`
	Date   time.Time `json:"date"`
	Price  float64   `json:"price"`
}

// Client calls the quote provider over HTTP. The zero value is not
// usable, construct it with NewClient.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

func NewClient(baseURL string, apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

func (c *Client) fetchSeries(ctx context.Context, symbol string) (gjson.Result, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("apikey", c.apiKey)
	q.Set("outputsize", "compact")
	q.Set("symbol", symbol)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("building quote request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("quote request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, fmt.Errorf("%w: quote provider returned %s", common.ErrorInternal, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("reading quote response: %w", err)
	}

	if msg := gjson.GetBytes(body, "Error Message"); msg.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: unknown symbol %q", common.ErrorNotFound, symbol)
	}

	series := gjson.GetBytes(body, escapeKey(seriesKey))
	if !series.Exists() {
		return gjson.Result{}, fmt.Errorf("%w: quote response missing daily series", common.ErrorInternal)
	}
	return series, nil
}

// DailyPrice returns the requested price field for symbol on the given day.
func (c *Client) DailyPrice(ctx context.Context, symbol string, day time.Time, pt PriceType) (float64, error) {
	series, err := c.fetchSeries(ctx, symbol)
	if err != nil {
		return 0, err
	}

	candle := series.Get(escapeKey(day.Format(dateLayout)))
	if !candle.Exists() {
		return 0, fmt.Errorf("%w: no quote for %s on %s", common.ErrorNotFound, symbol, day.Format(dateLayout))
	}

	value := candle.Get(escapeKey(string(pt)))
	if !value.Exists() {
		return 0, fmt.Errorf("%w: quote for %s is missing %q", common.ErrorInternal, symbol, string(pt))
	}
	return value.Float(), nil
}

// LatestClose returns the most recent closing price for symbol.
func (c *Client) LatestClose(ctx context.Context, symbol string) (*Quote, error) {
	series, err := c.fetchSeries(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// dates in ISO form sort lexicographically
	var latest string
	series.ForEach(func(key, _ gjson.Result) bool {
		if key.String() > latest {
			latest = key.String()
		}
		return true
	})
	if latest == "" {
		return nil, fmt.Errorf("%w: empty daily series for %s", common.ErrorNotFound, symbol)
	}

	day, err := time.Parse(dateLayout, latest)
	if err != nil {
		return nil, fmt.Errorf("%w: bad date %q in daily series", common.ErrorInternal, latest)
	}

	value := series.Get(escapeKey(latest)).Get(escapeKey(string(PriceClose)))
	if !value.Exists() {
		return nil, fmt.Errorf("%w: quote for %s is missing close price", common.ErrorInternal, symbol)
	}

	return &Quote{Symbol: symbol, Date: day, Price: value.Float()}, nil
}

// escapeKey makes a literal object key usable as a gjson path segment.
func escapeKey(key string) string {
	return strings.ReplaceAll(key, ".", `\.`)
}
