package testutil

import (
	"math"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/portfolio"
)

// Dates parses "2006-01-02" strings into midnight UTC dates.
// It panics on malformed input, which only happens in broken test code.
func Dates(days ...string) []time.Time {
	dates := make([]time.Time, len(days))
	for i, d := range days {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			panic(err)
		}
		dates[i] = t.UTC()
	}
	return dates
}

// PriceTableBuilder provides a fluent interface for creating aligned price tables.
//
// Example usage:
//
//	table := testutil.NewPriceTable(testutil.Dates("2020-01-02", "2020-01-03")).
//	    WithColumn("AAPL", 100, 101).
//	    WithColumn("MSFT", 50, math.NaN()).
//	    Build()
type PriceTableBuilder struct {
	table model.PriceTable
}

// NewPriceTable creates a PriceTableBuilder over the given dates.
func NewPriceTable(dates []time.Time) *PriceTableBuilder {
	return &PriceTableBuilder{table: model.PriceTable{Dates: dates}}
}

// WithColumn adds a column for a raw ticker. The symbol is canonicalized the same
// way request tickers are. Missing trailing values are filled with NaN.
func (b *PriceTableBuilder) WithColumn(ticker string, values ...float64) *PriceTableBuilder {
	aligned := make([]float64, len(b.table.Dates))
	for i := range aligned {
		if i < len(values) {
			aligned[i] = values[i]
		} else {
			aligned[i] = math.NaN()
		}
	}
	b.table.Columns = append(b.table.Columns, model.PriceColumn{
		Symbol: portfolio.Canonicalize(ticker),
		Ticker: ticker,
		Values: aligned,
	})
	return b
}

// WithUnavailable records a ticker without price history.
func (b *PriceTableBuilder) WithUnavailable(ticker string, err error) *PriceTableBuilder {
	b.table.Unavailable = append(b.table.Unavailable, model.UnavailableSymbol{Ticker: ticker, Err: err})
	return b
}

// Build returns the table.
func (b *PriceTableBuilder) Build() *model.PriceTable {
	table := b.table
	return &table
}

// PortfolioBuilder provides a fluent interface for creating request portfolios.
//
// Example usage:
//
//	p := testutil.NewPortfolio("Growth").
//	    WithAsset("AAPL", 0.6).
//	    WithAsset("MSFT", 0.4).
//	    Build()
type PortfolioBuilder struct {
	p model.Portfolio
}

// NewPortfolio creates a PortfolioBuilder with the given display name.
func NewPortfolio(name string) *PortfolioBuilder {
	return &PortfolioBuilder{p: model.Portfolio{Name: name, Assets: []model.Asset{}}}
}

// WithAsset adds a raw ticker with its allocation.
func (b *PortfolioBuilder) WithAsset(ticker string, allocation float64) *PortfolioBuilder {
	b.p.Assets = append(b.p.Assets, model.Asset{Ticker: ticker, Allocation: allocation})
	return b
}

// Build returns the portfolio.
func (b *PortfolioBuilder) Build() model.Portfolio {
	return b.p
}

// DailyPrices returns one price point per calendar day from start, compounding
// each step by the given daily return.
func DailyPrices(t *testing.T, start time.Time, days int, first, dailyReturn float64) []model.PricePoint {
	t.Helper()
	points := make([]model.PricePoint, days)
	price := first
	for i := range points {
		points[i] = model.PricePoint{Date: start.AddDate(0, 0, i), Close: price}
		price *= 1 + dailyReturn
	}
	return points
}
