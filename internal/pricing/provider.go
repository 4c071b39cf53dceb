package pricing

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/portfolio"
)

// DefaultConcurrency is the number of tickers fetched at the same time.
const DefaultConcurrency = 4

// Provider downloads the histories of a request's tickers and aligns them on a
// common date index.
type Provider struct {
	source      Source
	concurrency int
}

// NewProvider creates a Provider. A non-positive concurrency uses DefaultConcurrency.
func NewProvider(source Source, concurrency int) *Provider {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Provider{source: source, concurrency: concurrency}
}

type fetchResult struct {
	points []model.PricePoint
	err    error
}

// Fetch retrieves the histories of tickers between start and end (inclusive).
//
// Columns follow the order of tickers and are keyed by canonical symbol. A ticker that
// fails or has no data gets no column and is listed in Unavailable instead. Dates are
// the sorted union of all histories; a column without a price on a date holds NaN.
//
// Returns:
//   - apperrors.ErrInvalidDateRange when start is after end
//   - apperrors.ErrPriceFetchFailed when no ticker yields any data
//   - the context error when ctx ends before every fetch completes
func (p *Provider) Fetch(ctx context.Context, tickers []string, start, end time.Time) (*model.PriceTable, error) {
	if start.After(end) {
		return nil, fmt.Errorf("%w: start %s is after end %s",
			apperrors.ErrInvalidDateRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	if len(tickers) == 0 {
		return nil, fmt.Errorf("%w: no tickers requested", apperrors.ErrPriceFetchFailed)
	}

	results := make([]fetchResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)

	for i, ticker := range tickers {
		g.Go(func() error {
			points, err := p.source.FetchHistory(gctx, ticker, start, end)
			results[i] = fetchResult{points: points, err: err}
			// A failing ticker must not cancel its siblings
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	return align(tickers, results)
}

func align(tickers []string, results []fetchResult) (*model.PriceTable, error) {
	table := &model.PriceTable{}

	index := map[int64]int{}
	var errs []error
	for i, res := range results {
		if res.err == nil && len(res.points) == 0 {
			res.err = fmt.Errorf("no prices in range")
		}
		if res.err != nil {
			err := fmt.Errorf("%w: %s: %w", apperrors.ErrDataUnavailable, tickers[i], res.err)
			table.Unavailable = append(table.Unavailable, model.UnavailableSymbol{Ticker: tickers[i], Err: err})
			errs = append(errs, err)
			log.Printf("price data unavailable for %s: %v", tickers[i], res.err)
			continue
		}
		for _, pt := range res.points {
			if _, ok := index[pt.Date.Unix()]; !ok {
				index[pt.Date.Unix()] = 0
				table.Dates = append(table.Dates, pt.Date)
			}
		}
	}

	if len(table.Dates) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrPriceFetchFailed, errors.Join(errs...))
	}

	slices.SortFunc(table.Dates, func(a, b time.Time) int { return a.Compare(b) })
	for i, d := range table.Dates {
		index[d.Unix()] = i
	}

	for i, res := range results {
		if res.err != nil || len(res.points) == 0 {
			continue
		}
		values := make([]float64, len(table.Dates))
		for j := range values {
			values[j] = math.NaN()
		}
		for _, pt := range res.points {
			if model.ValidPrice(pt.Close) {
				values[index[pt.Date.Unix()]] = pt.Close
			}
		}
		table.Columns = append(table.Columns, model.PriceColumn{
			Symbol: portfolio.Canonicalize(tickers[i]),
			Ticker: tickers[i],
			Values: values,
		})
	}

	return table, nil
}
