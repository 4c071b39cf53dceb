package model

import (
	"math"
	"time"
)

// PricePoint represents a single adjusted close for a calendar date.
// Date is always midnight UTC.
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceColumn holds the aligned price history of one ticker.
// Values has one entry per PriceTable date; NaN marks a day without a price.
type PriceColumn struct {
	Symbol string    // Canonical symbol, used as the join key with weight maps
	Ticker string    // Raw ticker as submitted, used as display label
	Values []float64 // Adjusted close per table date
}

// UnavailableSymbol records a ticker for which no price history could be obtained.
// The ticker has no column in the PriceTable.
type UnavailableSymbol struct {
	Ticker string
	Err    error
}

// PriceTable is the aligned, per-symbol price history for one request.
// It is built once by the price provider and shared read-only by every
// simulation of the request.
type PriceTable struct {
	Dates       []time.Time
	Columns     []PriceColumn
	Unavailable []UnavailableSymbol
}

// Len returns the number of dates in the table.
func (t *PriceTable) Len() int {
	return len(t.Dates)
}

// Column looks up a column by canonical symbol.
func (t *PriceTable) Column(symbol string) (PriceColumn, bool) {
	for _, c := range t.Columns {
		if c.Symbol == symbol {
			return c, true
		}
	}
	return PriceColumn{}, false
}

// Symbols returns the canonical symbols of all columns in column order.
func (t *PriceTable) Symbols() []string {
	symbols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		symbols[i] = c.Symbol
	}
	return symbols
}

// ValidPrice reports whether v is a usable price.
func ValidPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
