package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
)

// Default Yahoo Finance endpoints.
const (
	DefaultChartURL  = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultSearchURL = "https://finance.yahoo.com/_finance_doubledown/api/resource/searchassist;searchTerm="
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/104.0.0.0 Safari/537.36"

// Client is the Yahoo Finance API surface used by the price sources and the search service.
// FinanceClient implements it; tests substitute testutil.MockYahooClient.
type Client interface {
	QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error)
	ParseChart(yahooResult Response) (PriceChart, error)
	SearchSymbols(ctx context.Context, query string) ([]SearchItem, error)
}

// FinanceClient provides methods for fetching financial data from Yahoo Finance API.
// It wraps an HTTP client and provides convenient methods for querying daily price
// history and the symbol search assist endpoint.
type FinanceClient struct {
	httpClient *http.Client
	chartURL   string
	searchURL  string
}

// NewFinanceClient creates a new Yahoo Finance client against the public endpoints.
func NewFinanceClient() *FinanceClient {
	return NewFinanceClientWithURLs("", "")
}

// NewFinanceClientWithURLs creates a client against custom endpoints.
// Empty values fall back to the public endpoints.
//
// Parameters:
//   - chartURL: Base URL of the chart API; the symbol is appended as a path segment
//   - searchURL: Prefix of the search assist URL; the escaped query is appended
func NewFinanceClientWithURLs(chartURL, searchURL string) *FinanceClient {
	if chartURL == "" {
		chartURL = DefaultChartURL
	}
	if searchURL == "" {
		searchURL = DefaultSearchURL
	}
	return &FinanceClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		chartURL:   strings.TrimRight(chartURL, "/"),
		searchURL:  searchURL,
	}
}

// ParseChart converts a raw Yahoo Finance API response into a structured price chart.
//
// Dates are the trading day in the exchange's own calendar: the timestamp is shifted
// by the exchange gmtoffset and truncated to midnight UTC. Null array entries stay nil.
//
// The method performs validation to ensure:
//   - A result is present
//   - Timestamp data is present
//   - Close price data is present and matches the timestamp length
//
// Returns:
//   - PriceChart: Structured chart with indicators and metadata
//   - error: If data is missing, malformed, or arrays have mismatched lengths
func (c *FinanceClient) ParseChart(yahooResult Response) (PriceChart, error) {
	if len(yahooResult.Chart.Result) == 0 {
		return PriceChart{}, fmt.Errorf("no results returned")
	}
	result := yahooResult.Chart.Result[0]

	if len(result.Timestamp) == 0 {
		return PriceChart{}, fmt.Errorf("no price data returned")
	}
	if len(result.Indicators.Quote) == 0 || len(result.Indicators.Quote[0].Close) == 0 {
		return PriceChart{}, fmt.Errorf("no close prices returned")
	}

	quote := result.Indicators.Quote[0]
	if len(quote.Close) != len(result.Timestamp) {
		return PriceChart{}, fmt.Errorf("mismatched data lengths")
	}

	var adjusted []*float64
	if len(result.Indicators.AdjClose) > 0 && len(result.Indicators.AdjClose[0].AdjClose) == len(result.Timestamp) {
		adjusted = result.Indicators.AdjClose[0].AdjClose
	}

	indicators := make([]Indicators, len(result.Timestamp))
	for i, v := range result.Timestamp {
		indicators[i].Date = tradingDay(v, result.Meta.GmtOffset)
		indicators[i].PriceClose = quote.Close[i]
		indicators[i].PriceOpen = floatAt(quote.Open, i)
		indicators[i].PriceHigh = floatAt(quote.High, i)
		indicators[i].PriceLow = floatAt(quote.Low, i)
		if i < len(quote.Volume) {
			indicators[i].Volume = quote.Volume[i]
		}
		if adjusted != nil {
			indicators[i].AdjClose = adjusted[i]
		}
	}

	return PriceChart{
		Symbol:           result.Meta.Symbol,
		Currency:         result.Meta.Currency,
		ExchangeName:     result.Meta.ExchangeName,
		FullExchangeName: result.Meta.FullExchangeName,
		LongName:         result.Meta.LongName,
		Shortname:        result.Meta.Shortname,
		Indicators:       indicators,
	}, nil
}

func floatAt(values []*float64, i int) *float64 {
	if i < len(values) {
		return values[i]
	}
	return nil
}

func tradingDay(timestamp, gmtOffset int64) time.Time {
	local := time.Unix(timestamp+gmtOffset, 0).UTC()
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

// GetIndicatorForDate searches for price data matching a specific date.
// The method performs date-only comparison, ignoring time components.
func (c PriceChart) GetIndicatorForDate(target time.Time) (Indicators, bool) {
	targetDay := target.UTC().Truncate(24 * time.Hour)
	for _, ind := range c.Indicators {
		if ind.Date.UTC().Truncate(24 * time.Hour).Equal(targetDay) {
			return ind, true
		}
	}
	return Indicators{}, false
}

// QueryYahooSymbolByDateRange fetches daily price data for a symbol within a date range.
//
// The method uses Yahoo Finance's period-based query format with Unix timestamps.
// Both ends are inclusive: period2 is set to the day after endDate. Adjusted close
// prices are always requested.
//
// Parameters:
//   - ctx: Cancels the HTTP request
//   - symbol: Yahoo ticker symbol (e.g., "AAPL", "GC=F", "^GSPC")
//   - startDate: Beginning of date range (inclusive)
//   - endDate: End of date range (inclusive)
//
// Returns:
//   - Response: Raw API response containing price data for the range
//   - error: ErrSymbolNotFound for unknown symbols, otherwise the transport or API error
func (c *FinanceClient) QueryYahooSymbolByDateRange(ctx context.Context, symbol string, startDate, endDate time.Time) (Response, error) {
	query := url.Values{}
	query.Set("interval", "1d")
	query.Set("includeAdjustedClose", "true")
	query.Set("events", "div,splits")
	query.Set("period1", fmt.Sprintf("%d", startDate.Unix()))
	query.Set("period2", fmt.Sprintf("%d", endDate.AddDate(0, 0, 1).Unix()))

	endpoint := fmt.Sprintf("%s/%s?%s", c.chartURL, url.PathEscape(symbol), query.Encode())

	var result Response
	status, err := c.getJSON(ctx, endpoint, &result)
	if status == http.StatusNotFound {
		return Response{}, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, symbol)
	}
	if err != nil {
		return Response{}, err
	}
	if result.Chart.Error != nil {
		return Response{}, fmt.Errorf("yahoo error for %s: %s", symbol, result.Chart.Error.Description)
	}
	if len(result.Chart.Result) == 0 {
		return Response{}, fmt.Errorf("%w: no results returned for symbol %s", apperrors.ErrSymbolNotFound, symbol)
	}

	return result, nil
}

// SearchSymbols queries the Yahoo search assist endpoint and returns its suggestions.
func (c *FinanceClient) SearchSymbols(ctx context.Context, query string) ([]SearchItem, error) {
	var result SearchResponse
	if _, err := c.getJSON(ctx, c.searchURL+url.PathEscape(query), &result); err != nil {
		return nil, err
	}
	if result.Items == nil {
		return []SearchItem{}, nil
	}
	return result.Items, nil
}

// getJSON executes a GET request and decodes the JSON body into out.
// The HTTP status is returned alongside any error so callers can map it.
//
// The method sets required headers:
//   - User-Agent: Mimics a browser to avoid API blocking
//   - Accept: Requests JSON response format
func (c *FinanceClient) getJSON(ctx context.Context, endpoint string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, err
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if err := json.Unmarshal(data, out); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return resp.StatusCode, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
		}
		return resp.StatusCode, err
	}
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		return resp.StatusCode, fmt.Errorf("yahoo returned status %d", resp.StatusCode)
	}

	return resp.StatusCode, nil
}
