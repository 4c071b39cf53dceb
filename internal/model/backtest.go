package model

import "time"

// BacktestResult is the outcome of simulating one portfolio over a PriceTable.
// It lives only for the duration of the request that produced it.
type BacktestResult struct {
	Name      string
	Dates     []time.Time
	Equity    []float64         // Portfolio value per date, starting at the initial capital
	Weights   []WeightSnapshot  // Realized weights right after each rebalance
	Trades    []Trade           // Quantity changes executed at rebalances
	Drawdowns []DrawdownEpisode // Every drawdown episode in chronological order
}

// WeightSnapshot holds the realized weight per canonical symbol after a rebalance.
type WeightSnapshot struct {
	Date    time.Time
	Weights map[string]float64
}

// Trade is a quantity change of a single symbol at a rebalance date.
type Trade struct {
	Date     time.Time
	Symbol   string
	Quantity float64 // Positive buys, negative sells
	Price    float64
}

// DrawdownEpisode is a maximal peak-to-trough-to-recovery interval of an equity curve.
//
// Start is the date of the peak before the decline, Trough the date of the lowest
// point and End the first date the previous peak was regained. When the curve never
// recovers End is the last date of the series and Recovered is false.
type DrawdownEpisode struct {
	Start     time.Time
	Trough    time.Time
	End       time.Time
	Depth     float64 // Most negative drawdown, e.g. -0.25 for a 25% decline
	Length    int     // Calendar days from Start to End
	Recovered bool
}
