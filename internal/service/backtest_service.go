package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/api/request"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/backtest"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/portfolio"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/shaper"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/stats"
)

// PerfChartBase is the value every performance chart series starts at.
const PerfChartBase = 100.0

// PriceFetcher builds the aligned price table of a request. pricing.Provider implements it.
type PriceFetcher interface {
	Fetch(ctx context.Context, tickers []string, start, end time.Time) (*model.PriceTable, error)
}

// BacktestService runs the backtest pipeline for one request:
// normalize, fetch, simulate, compute statistics and shape the response tables.
type BacktestService struct {
	prices    PriceFetcher
	simulator backtest.Simulator
	engine    stats.Engine
	catalog   *metrics.Catalog
	timeout   time.Duration
}

// NewBacktestService creates a new BacktestService. A non-positive timeout disables
// the request deadline.
func NewBacktestService(
	prices PriceFetcher,
	simulator backtest.Simulator,
	engine stats.Engine,
	catalog *metrics.Catalog,
	timeout time.Duration,
) *BacktestService {
	return &BacktestService{
		prices:    prices,
		simulator: simulator,
		engine:    engine,
		catalog:   catalog,
		timeout:   timeout,
	}
}

// Run executes a backtest request.
//
// Portfolios whose allocations are all zero are not simulated, but their tickers are
// still downloaded and appear in the asset statistics. A portfolio that cannot be
// simulated is logged and left out of the response.
//
// Returns:
//   - apperrors.ErrInvalidTicker / ErrSymbolCollision / ErrNoPortfolios from normalization
//   - apperrors.ErrInvalidDateRange or ErrPriceFetchFailed from the price provider
//   - apperrors.ErrSimulation when no portfolio could be simulated
//   - context.DeadlineExceeded when the request timeout elapses
func (s *BacktestService) Run(ctx context.Context, req request.BacktestRequest) (model.ResultBundle, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	normalized, err := portfolio.Normalize(req.Portfolios)
	if err != nil {
		return model.ResultBundle{}, err
	}

	prices, err := s.prices.Fetch(ctx, normalized.Universe, req.StartDate, req.EndDate)
	if err != nil {
		return model.ResultBundle{}, err
	}

	results, err := s.simulateAll(ctx, normalized, prices)
	if err != nil {
		return model.ResultBundle{}, err
	}

	return shaper.Shape(s.catalog, s.shaperInputs(results, prices)), nil
}

// simulateAll runs every retained portfolio against the shared price table.
// Each worker writes only its own slot; Wait is the only synchronization point.
func (s *BacktestService) simulateAll(ctx context.Context, normalized portfolio.Normalized, prices *model.PriceTable) ([]model.BacktestResult, error) {
	n := len(normalized.Portfolios)
	results := make([]model.BacktestResult, n)
	errs := make([]error, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i], errs[i] = s.simulator.Run(normalized.Portfolios[i].Name, prices, normalized.Weights[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	succeeded := make([]model.BacktestResult, 0, n)
	for i, err := range errs {
		if err != nil {
			log.Printf("backtest: dropping portfolio %q: %v", normalized.Portfolios[i].Name, err)
			continue
		}
		succeeded = append(succeeded, results[i])
	}

	if len(succeeded) == 0 {
		return nil, fmt.Errorf("%w: no portfolio could be simulated: %w", apperrors.ErrSimulation, errors.Join(errs...))
	}
	return succeeded, nil
}

func (s *BacktestService) shaperInputs(results []model.BacktestResult, prices *model.PriceTable) shaper.Inputs {
	equity := stats.FromBacktests(results)
	rebased := stats.RebaseAll(equity, PerfChartBase)

	drawdowns := make([]shaper.PortfolioDrawdowns, len(results))
	for i, r := range results {
		drawdowns[i] = shaper.PortfolioDrawdowns{Name: r.Name, Episodes: r.Drawdowns}
	}

	return shaper.Inputs{
		PortfolioStats: s.engine.Table(model.SubjectPortfolio, equity),
		AssetStats:     s.engine.Table(model.SubjectAsset, stats.FromPriceTable(prices)),
		Performance:    stats.SeriesTable(rebased),
		Drawdown:       stats.SeriesTable(stats.DrawdownSeries(rebased)),
		Drawdowns:      drawdowns,
		Correlation:    stats.CorrelationMatrix(prices),
	}
}
