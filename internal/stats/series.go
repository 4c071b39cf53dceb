package stats

import (
	"math"
	"sort"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/backtest"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// Series is a named, dated value series: an equity curve or a price history.
type Series struct {
	Name   string
	Dates  []time.Time
	Values []float64
}

// valid returns the series without NaN or infinite points.
func (s Series) valid() Series {
	out := Series{Name: s.Name}
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		out.Dates = append(out.Dates, s.Dates[i])
		out.Values = append(out.Values, v)
	}
	return out
}

// FromBacktests turns simulation results into equity series named after their portfolio.
func FromBacktests(results []model.BacktestResult) []Series {
	series := make([]Series, len(results))
	for i, r := range results {
		series[i] = Series{Name: r.Name, Dates: r.Dates, Values: r.Equity}
	}
	return series
}

// FromPriceTable turns every column of a price table into a series labelled with
// its raw ticker.
func FromPriceTable(t *model.PriceTable) []Series {
	series := make([]Series, len(t.Columns))
	for i, c := range t.Columns {
		series[i] = Series{Name: c.Ticker, Dates: t.Dates, Values: c.Values}
	}
	return series
}

// Rebase scales a series so its first valid value equals base.
// Points before the first valid value stay NaN.
func Rebase(s Series, base float64) Series {
	out := Series{Name: s.Name, Dates: s.Dates, Values: make([]float64, len(s.Values))}
	first := math.NaN()
	for i, v := range s.Values {
		if math.IsNaN(first) && !math.IsNaN(v) && !math.IsInf(v, 0) && v != 0 {
			first = v
		}
		if math.IsNaN(first) {
			out.Values[i] = math.NaN()
			continue
		}
		out.Values[i] = v / first * base
	}
	return out
}

// RebaseAll rebases every series to base.
func RebaseAll(series []Series, base float64) []Series {
	out := make([]Series, len(series))
	for i, s := range series {
		out[i] = Rebase(s, base)
	}
	return out
}

// DrawdownSeries maps every series onto its drawdown series.
func DrawdownSeries(series []Series) []Series {
	out := make([]Series, len(series))
	for i, s := range series {
		out[i] = Series{Name: s.Name, Dates: s.Dates, Values: backtest.DrawdownSeries(s.Values)}
	}
	return out
}

// SeriesTable lays series out as a dated table: one row per date in the union of
// all series dates, one column per series. Missing points are null.
func SeriesTable(series []Series) model.Table {
	columns := make([]string, len(series))
	lookup := make([]map[int64]float64, len(series))
	dateSet := make(map[int64]time.Time)

	for i, s := range series {
		columns[i] = s.Name
		lookup[i] = make(map[int64]float64, len(s.Dates))
		for j, d := range s.Dates {
			key := d.Unix()
			lookup[i][key] = s.Values[j]
			dateSet[key] = d
		}
	}

	keys := make([]int64, 0, len(dateSet))
	for k := range dateSet {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(a, b int) bool { return keys[a] < keys[b] })

	table := model.NewTable(columns)
	for _, k := range keys {
		row := make([]model.Cell, len(series))
		for i := range series {
			if v, ok := lookup[i][k]; ok {
				row[i] = model.Num(v)
			} else {
				row[i] = model.Null
			}
		}
		table.AppendRow(model.Date(dateSet[k]), row)
	}
	return table
}
