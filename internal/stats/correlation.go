package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// PercentChange returns the period-over-period returns of values after carrying
// the last valid price forward over gaps. The first point and every point before
// the first valid price are NaN.
func PercentChange(values []float64) []float64 {
	out := make([]float64, len(values))
	prev := math.NaN()
	for i, v := range values {
		if !model.ValidPrice(v) {
			if math.IsNaN(prev) {
				out[i] = math.NaN()
			} else {
				out[i] = 0
			}
			continue
		}
		if math.IsNaN(prev) {
			out[i] = math.NaN()
		} else {
			out[i] = v/prev - 1
		}
		prev = v
	}
	return out
}

// CorrelationMatrix computes the Pearson correlation of the percentage-change
// returns of every column pair, using the dates on which both returns exist.
// Rows and columns are labelled with raw tickers. The matrix is symmetric; the
// diagonal is 1 for every column whose returns vary and null otherwise.
func CorrelationMatrix(t *model.PriceTable) model.Table {
	n := len(t.Columns)
	names := make([]string, n)
	returns := make([][]float64, n)
	for i, c := range t.Columns {
		names[i] = c.Ticker
		returns[i] = PercentChange(c.Values)
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			c := pairCorrelation(returns[i], returns[j])
			if i == j && !math.IsNaN(c) {
				c = 1
			}
			matrix[i][j] = c
			matrix[j][i] = c
		}
	}

	table := model.NewTable(names)
	for i := 0; i < n; i++ {
		row := make([]model.Cell, n)
		for j := 0; j < n; j++ {
			row[j] = model.Num(matrix[i][j])
		}
		table.AppendRow(model.Str(names[i]), row)
	}
	return table
}

func pairCorrelation(a, b []float64) float64 {
	var x, y []float64
	for k := range a {
		if math.IsNaN(a[k]) || math.IsNaN(b[k]) {
			continue
		}
		x = append(x, a[k])
		y = append(y, b[k])
	}
	if len(x) < 2 {
		return math.NaN()
	}
	if stat.StdDev(x, nil) == 0 || stat.StdDev(y, nil) == 0 {
		return math.NaN()
	}
	return stat.Correlation(x, y, nil)
}
