package yahoo

import "time"

// Response represents the raw JSON response structure from the Yahoo Finance chart API.
//
// The structure includes:
//   - Chart.Result: Array of result objects (typically contains one element)
//   - Chart.Result[].Meta: Symbol metadata (name, currency, exchange, gmt offset)
//   - Chart.Result[].Timestamp: Unix timestamps for each data point
//   - Chart.Result[].Indicators: Price arrays; individual entries may be null
//   - Chart.Error: Optional error object from the Yahoo API
type Response struct {
	Chart Chart `json:"chart"`
}

// Chart is the top-level chart object of a Response.
type Chart struct {
	Result []Result `json:"result"`
	Error  *Error   `json:"error"`
}

// Error is the error object Yahoo returns for unknown symbols or bad ranges.
type Error struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// Result holds the data of one symbol.
type Result struct {
	Meta       Meta                `json:"meta"`
	Timestamp  []int64             `json:"timestamp"`
	Indicators IndicatorsContainer `json:"indicators"`
}

// Meta describes the symbol and the exchange it trades on.
type Meta struct {
	Currency         string `json:"currency"`
	Symbol           string `json:"symbol"`
	ExchangeName     string `json:"exchangeName"`
	FullExchangeName string `json:"fullExchangeName"`
	LongName         string `json:"longName"`
	Shortname        string `json:"shortName"`
	GmtOffset        int64  `json:"gmtoffset"`
}

// IndicatorsContainer groups the quote and adjusted close arrays.
type IndicatorsContainer struct {
	Quote    []Quote    `json:"quote"`
	AdjClose []AdjClose `json:"adjclose"`
}

// Quote holds the OHLCV arrays. Yahoo emits null for days without trading,
// hence the pointer elements.
type Quote struct {
	Open   []*float64 `json:"open"`
	Close  []*float64 `json:"close"`
	Volume []*int64   `json:"volume"`
	High   []*float64 `json:"high"`
	Low    []*float64 `json:"low"`
}

// AdjClose holds the dividend and split adjusted close prices.
type AdjClose struct {
	AdjClose []*float64 `json:"adjclose"`
}

// PriceChart represents a parsed and structured price chart from Yahoo Finance.
// This is the application's internal representation after parsing the raw Response.
type PriceChart struct {
	Currency         string       `json:"currency"`
	Symbol           string       `json:"symbol"`
	ExchangeName     string       `json:"exchangeName"`
	FullExchangeName string       `json:"fullExchangeName"`
	LongName         string       `json:"longName"`
	Shortname        string       `json:"shortName"`
	Indicators       []Indicators `json:"indicators"`
}

// Indicators represents a single day's price data for a financial instrument.
//
// Fields:
//   - Date: Trading date in the exchange's calendar, at midnight UTC
//   - PriceOpen, PriceClose, PriceHigh, PriceLow: nil when Yahoo reported no value
//   - AdjClose: Adjusted close, nil when missing or not requested
//   - Volume: Number of shares traded, nil when missing
type Indicators struct {
	Date       time.Time
	PriceOpen  *float64
	PriceClose *float64
	Volume     *int64
	PriceHigh  *float64
	PriceLow   *float64
	AdjClose   *float64
}

// SearchResponse is the body of the Yahoo search assist endpoint.
type SearchResponse struct {
	Items []SearchItem `json:"items"`
}

// SearchItem is one symbol suggestion.
type SearchItem struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}
