// Package backtest simulates fixed-weight portfolios that are rebalanced once a
// calendar year and drift with market prices in between.
package backtest

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// DefaultInitialCapital is the starting value of every simulated portfolio.
const DefaultInitialCapital = 1_000_000.0

// Simulator runs yearly-rebalanced, fixed-weight backtests.
// A Simulator holds no per-run state and may be shared between goroutines.
type Simulator struct {
	InitialCapital float64
}

// NewSimulator creates a Simulator. A non-positive capital falls back to DefaultInitialCapital.
func NewSimulator(initialCapital float64) Simulator {
	if initialCapital <= 0 || math.IsNaN(initialCapital) || math.IsInf(initialCapital, 0) {
		initialCapital = DefaultInitialCapital
	}
	return Simulator{InitialCapital: initialCapital}
}

// holding tracks one weighted symbol during a run.
type holding struct {
	symbol    string
	weight    float64
	prices    []float64
	quantity  float64
	lastPrice float64
	pending   float64 // value set aside in cash until the first valid price
}

func (h *holding) observe(i int) {
	if p := h.prices[i]; model.ValidPrice(p) {
		h.lastPrice = p
	}
}

func (h *holding) value() float64 {
	if h.quantity == 0 || h.lastPrice == 0 {
		return 0
	}
	return h.quantity * h.lastPrice
}

// Run simulates one portfolio over the shared price table.
//
// The portfolio starts fully in cash and is rebalanced on the first date of the
// table and on the first trading date of every following calendar year. At a
// rebalance each symbol is bought or sold to equity * weight using that day's
// price; weights are used as given and any remainder stays in cash. A symbol
// that does not trade on the rebalance date is rebalanced at its last known
// price. A symbol that has never traded yet keeps its target value in cash and
// is bought on its first valid price within the period. Between rebalances
// holdings are valued at the last known price.
//
// Errors wrap apperrors.ErrSimulation: an empty table, an empty weight map or a
// weight referencing a symbol that is not a column of the table.
func (s Simulator) Run(name string, prices *model.PriceTable, weights map[string]float64) (model.BacktestResult, error) {
	if prices == nil || prices.Len() == 0 {
		return model.BacktestResult{}, fmt.Errorf("%w: portfolio %q: empty price table", apperrors.ErrSimulation, name)
	}
	if len(weights) == 0 {
		return model.BacktestResult{}, fmt.Errorf("%w: portfolio %q: no weights", apperrors.ErrSimulation, name)
	}

	symbols := make([]string, 0, len(weights))
	for symbol := range weights {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)

	holdings := make([]*holding, 0, len(symbols))
	for _, symbol := range symbols {
		col, ok := prices.Column(symbol)
		if !ok {
			return model.BacktestResult{}, fmt.Errorf("%w: portfolio %q: symbol %q has no price data", apperrors.ErrSimulation, name, symbol)
		}
		w := weights[symbol]
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return model.BacktestResult{}, fmt.Errorf("%w: portfolio %q: invalid weight for %q", apperrors.ErrSimulation, name, symbol)
		}
		holdings = append(holdings, &holding{symbol: symbol, weight: w, prices: col.Values})
	}

	capital := s.InitialCapital
	if capital <= 0 {
		capital = DefaultInitialCapital
	}

	result := model.BacktestResult{
		Name:   name,
		Dates:  prices.Dates,
		Equity: make([]float64, prices.Len()),
	}

	cash := capital
	var lastYear int
	for i, date := range prices.Dates {
		for _, h := range holdings {
			h.observe(i)
		}

		if i == 0 || date.Year() != lastYear {
			cash = s.rebalance(&result, date, i, cash, holdings)
		} else {
			cash = settle(&result, date, i, cash, holdings)
		}
		lastYear = date.Year()

		equity := cash
		for _, h := range holdings {
			equity += h.value()
		}
		result.Equity[i] = equity
	}

	result.Drawdowns = DrawdownEpisodes(result.Dates, result.Equity)
	return result, nil
}

// rebalance moves every holding to its target value and returns the new cash balance.
func (s Simulator) rebalance(result *model.BacktestResult, date time.Time, i int, cash float64, holdings []*holding) float64 {
	equity := cash
	for _, h := range holdings {
		equity += h.value()
		h.pending = 0
	}

	// Liquidate everything at the last known price, then buy back at today's
	// price or, failing that, the last known one.
	cash = equity
	snapshot := model.WeightSnapshot{Date: date, Weights: make(map[string]float64, len(holdings))}
	for _, h := range holdings {
		price := h.prices[i]
		if !model.ValidPrice(price) {
			price = h.lastPrice
		}
		if !model.ValidPrice(price) {
			h.quantity = 0
			h.pending = equity * h.weight
			continue
		}

		target := equity * h.weight / price
		if delta := target - h.quantity; delta != 0 {
			result.Trades = append(result.Trades, model.Trade{
				Date:     date,
				Symbol:   h.symbol,
				Quantity: delta,
				Price:    price,
			})
		}

		h.quantity = target
		cash -= h.value()
	}

	if equity != 0 {
		for _, h := range holdings {
			snapshot.Weights[h.symbol] = h.value() / equity
		}
	}
	result.Weights = append(result.Weights, snapshot)
	return cash
}

// settle buys the pending holdings that have a valid price on day i and returns
// the new cash balance.
func settle(result *model.BacktestResult, date time.Time, i int, cash float64, holdings []*holding) float64 {
	for _, h := range holdings {
		price := h.prices[i]
		if h.pending == 0 || !model.ValidPrice(price) {
			continue
		}
		quantity := h.pending / price
		result.Trades = append(result.Trades, model.Trade{
			Date:     date,
			Symbol:   h.symbol,
			Quantity: quantity,
			Price:    price,
		})
		h.quantity += quantity
		cash -= h.pending
		h.pending = 0
	}
	return cash
}
