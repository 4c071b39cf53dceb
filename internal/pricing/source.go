// Package pricing acquires daily adjusted close histories and aligns them into
// the price table shared by every simulation of a backtest request.
package pricing

import (
	"context"
	"fmt"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/yahoo"
)

// Source yields the daily close history of one ticker between start and end (inclusive).
type Source interface {
	FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error)
}

// YahooSource reads adjusted closes from the Yahoo chart API.
type YahooSource struct {
	client yahoo.Client
}

// NewYahooSource creates a Source backed by the given Yahoo client.
func NewYahooSource(client yahoo.Client) *YahooSource {
	return &YahooSource{client: client}
}

// FetchHistory returns the adjusted closes of ticker, falling back to the plain close
// for days without an adjusted value. Days with no usable price are skipped.
func (s *YahooSource) FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	resp, err := s.client.QueryYahooSymbolByDateRange(ctx, ticker, start, end)
	if err != nil {
		return nil, err
	}

	chart, err := s.client.ParseChart(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrDataUnavailable, ticker, err)
	}

	points := make([]model.PricePoint, 0, len(chart.Indicators))
	for _, ind := range chart.Indicators {
		if ind.Date.Before(start) || ind.Date.After(end) {
			continue
		}
		price := ind.AdjClose
		if price == nil {
			price = ind.PriceClose
		}
		if price == nil || !model.ValidPrice(*price) {
			continue
		}
		// Intraday quotes for the current session share the date of the last bar
		if n := len(points); n > 0 && points[n-1].Date.Equal(ind.Date) {
			points[n-1].Close = *price
			continue
		}
		points = append(points, model.PricePoint{Date: ind.Date, Close: *price})
	}

	return points, nil
}
