package testutil

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/backtest"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/pricing"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/service"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/stats"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/yahoo"
)

// FakeSource is an in-memory price source for testing the provider and the
// backtest pipeline without network access. It is safe for concurrent use.
type FakeSource struct {
	mu     sync.Mutex
	prices map[string][]model.PricePoint
	errors map[string]error
	calls  map[string]int
}

// NewFakeSource creates an empty FakeSource. Unknown tickers return ErrSymbolNotFound.
func NewFakeSource() *FakeSource {
	return &FakeSource{
		prices: map[string][]model.PricePoint{},
		errors: map[string]error{},
		calls:  map[string]int{},
	}
}

// WithPrices configures the history returned for ticker.
func (f *FakeSource) WithPrices(ticker string, points []model.PricePoint) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prices[ticker] = points
	return f
}

// WithCloses configures one close per date for ticker.
func (f *FakeSource) WithCloses(ticker string, dates []time.Time, closes ...float64) *FakeSource {
	points := make([]model.PricePoint, 0, len(closes))
	for i, c := range closes {
		if i >= len(dates) {
			break
		}
		points = append(points, model.PricePoint{Date: dates[i], Close: c})
	}
	return f.WithPrices(ticker, points)
}

// WithError configures the error returned for ticker.
func (f *FakeSource) WithError(ticker string, err error) *FakeSource {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errors[ticker] = err
	return f
}

// FetchHistory returns the configured points of ticker within [start, end].
func (f *FakeSource) FetchHistory(ctx context.Context, ticker string, start, end time.Time) ([]model.PricePoint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls[ticker]++

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err, ok := f.errors[ticker]; ok {
		return nil, err
	}
	points, ok := f.prices[ticker]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrSymbolNotFound, ticker)
	}

	out := []model.PricePoint{}
	for _, p := range points {
		if p.Date.Before(start) || p.Date.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// CallCount returns how often ticker was fetched.
func (f *FakeSource) CallCount(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

// DataDir returns the absolute path of the shipped data directory.
func DataDir(t *testing.T) string {
	t.Helper()
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		t.Fatal("Failed to locate testutil source file")
	}
	return filepath.Join(filepath.Dir(file), "..", "..", "data")
}

// LoadCatalog loads the shipped metric catalog.
func LoadCatalog(t *testing.T) *metrics.Catalog {
	t.Helper()
	catalog, err := metrics.Load(DataDir(t))
	if err != nil {
		t.Fatalf("Failed to load metric catalog: %v", err)
	}
	return catalog
}

// NewTestBacktestService wires a BacktestService over source with the shipped
// catalog and default parameters.
func NewTestBacktestService(t *testing.T, source pricing.Source, timeout time.Duration) *service.BacktestService {
	t.Helper()
	return service.NewBacktestService(
		pricing.NewProvider(source, 2),
		backtest.NewSimulator(backtest.DefaultInitialCapital),
		stats.NewEngine(stats.DefaultRiskFreeRate),
		LoadCatalog(t),
		timeout,
	)
}

// NewTestSearchService wires a SearchService over the shipped ticker list.
func NewTestSearchService(t *testing.T, client yahoo.Client) *service.SearchService {
	t.Helper()
	tickers, err := service.LoadTickers(filepath.Join(DataDir(t), "simpleStockList.json"))
	if err != nil {
		t.Fatalf("Failed to load ticker list: %v", err)
	}
	return service.NewSearchService(tickers, client)
}
