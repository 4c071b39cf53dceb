package stats_test

import (
	"math"
	"testing"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/stats"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/testutil"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

// seriesFromReturns builds a daily price series starting at 100 on 2020-01-01.
func seriesFromReturns(name string, r []float64) stats.Series {
	s := stats.Series{Name: name}
	price := 100.0
	day := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	s.Dates = append(s.Dates, day)
	s.Values = append(s.Values, price)
	for _, v := range r {
		day = day.AddDate(0, 0, 1)
		price *= 1 + v
		s.Dates = append(s.Dates, day)
		s.Values = append(s.Values, price)
	}
	return s
}

// TestEngine_Sharpe tests the risk-adjusted return calculation.
//
// WHY: The Sharpe ratio is the headline metric of the comparison tables. It must
// move in the same direction as returns when risk and the risk-free rate are fixed.
func TestEngine_Sharpe(t *testing.T) {
	engine := stats.NewEngine(stats.DefaultRiskFreeRate)
	base := []float64{0.01, -0.005, 0.012, -0.008, 0.003, 0.007, -0.002, 0.004}

	t.Run("increases strictly with mean return", func(t *testing.T) {
		prev := math.Inf(-1)
		for _, shift := range []float64{-0.002, 0, 0.001, 0.003} {
			r := make([]float64, len(base))
			for i, v := range base {
				r[i] = v + shift
			}
			s, ok := engine.Sharpe(r, 252)
			if !ok {
				t.Fatalf("Sharpe() not computable for shift %v", shift)
			}
			if s <= prev {
				t.Errorf("Sharpe did not increase: shift %v gave %v after %v", shift, s, prev)
			}
			prev = s
		}
	})

	t.Run("decreases with the risk-free rate", func(t *testing.T) {
		low, _ := stats.NewEngine(0).Sharpe(base, 252)
		high, _ := stats.NewEngine(0.05).Sharpe(base, 252)
		if high >= low {
			t.Errorf("Expected higher risk-free rate to lower Sharpe: %v vs %v", high, low)
		}
	})

	t.Run("not computable for constant returns", func(t *testing.T) {
		if _, ok := engine.Sharpe([]float64{0.01, 0.01, 0.01}, 252); ok {
			t.Error("Expected Sharpe to be undefined for zero volatility")
		}
	})
}

// TestEngine_Compute tests the metric battery on a known series.
//
// WHY: These numbers are shown to users as-is. Fractions must not be scaled to
// percentages and unknowable metrics must be absent instead of zero.
func TestEngine_Compute(t *testing.T) {
	engine := stats.NewEngine(0.01)

	t.Run("total return, drawdown and volatility", func(t *testing.T) {
		s := seriesFromReturns("x", []float64{0.10, -0.20, 0.05, 0.10})
		p := engine.Compute(s)

		total, ok := p.Get(stats.MetricTotalReturn)
		want := 1.10*0.80*1.05*1.10 - 1
		if !ok || !almostEqual(total, want, 1e-12) {
			t.Errorf("total_return = %v, want %v", total, want)
		}

		mdd, ok := p.Get(stats.MetricMaxDrawdown)
		if !ok || !almostEqual(mdd, -0.20, 1e-12) {
			t.Errorf("max_drawdown = %v, want -0.2", mdd)
		}

		if rf, _ := p.Get(stats.MetricRiskFree); rf != 0.01 {
			t.Errorf("rf = %v, want 0.01", rf)
		}

		vol, ok := p.Get(stats.MetricDailyVol)
		if !ok || vol <= 0 {
			t.Errorf("daily_vol = %v, want positive", vol)
		}

		if _, ok := p.Get(stats.MetricFiveYear); ok {
			t.Error("five_year must be omitted for a five day series")
		}
		if !p.Start.Equal(s.Dates[0]) || !p.End.Equal(s.Dates[len(s.Dates)-1]) {
			t.Errorf("Unexpected start/end %v %v", p.Start, p.End)
		}
	})

	t.Run("single point only reports dates and rf", func(t *testing.T) {
		p := engine.Compute(seriesFromReturns("one", nil))
		if len(p.Values) != 1 {
			t.Errorf("Expected only rf, got %v", p.Values)
		}
	})

	t.Run("skips NaN points", func(t *testing.T) {
		s := seriesFromReturns("gap", []float64{0.1, 0.1})
		s.Values = append([]float64{math.NaN()}, s.Values...)
		s.Dates = append([]time.Time{s.Dates[0].AddDate(0, 0, -1)}, s.Dates...)

		p := engine.Compute(s)
		total, ok := p.Get(stats.MetricTotalReturn)
		if !ok || !almostEqual(total, 0.21, 1e-12) {
			t.Errorf("total_return = %v, want 0.21", total)
		}
	})

	t.Run("multi-year series reports yearly metrics", func(t *testing.T) {
		dates := []time.Time{}
		values := []float64{}
		day := time.Date(2018, 1, 2, 0, 0, 0, 0, time.UTC)
		price := 100.0
		for i := 0; i < 3*365; i++ {
			dates = append(dates, day)
			values = append(values, price)
			day = day.AddDate(0, 0, 1)
			price *= 1 + 0.0005*math.Sin(float64(i)/7) + 0.0002
		}
		p := engine.Compute(stats.Series{Name: "long", Dates: dates, Values: values})

		for _, m := range []string{
			stats.MetricCAGR, stats.MetricYearlyMean, stats.MetricMonthlySharpe,
			stats.MetricOneYear, stats.MetricYTD, stats.MetricTwelveMonthWinPerc, stats.MetricWinYearPerc,
		} {
			if _, ok := p.Get(m); !ok {
				t.Errorf("Expected %s to be computed", m)
			}
		}
		cagr, _ := p.Get(stats.MetricCAGR)
		incep, _ := p.Get(stats.MetricIncep)
		if cagr != incep {
			t.Errorf("incep %v should equal cagr %v", incep, cagr)
		}
	})
}

func TestEngine_Table(t *testing.T) {
	engine := stats.NewEngine(0.01)
	a := seriesFromReturns("A", []float64{0.01, 0.02, -0.01})
	b := seriesFromReturns("B", nil)

	table := engine.Table(model.SubjectPortfolio, []stats.Series{a, b})

	if table.Subject != model.SubjectPortfolio {
		t.Errorf("Expected portfolio subject, got %v", table.Subject)
	}
	if len(table.Columns) != 2 || table.Columns[0] != "A" || table.Columns[1] != "B" {
		t.Errorf("Unexpected columns %v", table.Columns)
	}

	row, ok := table.Row(stats.MetricTotalReturn)
	if !ok {
		t.Fatal("Expected total_return row")
	}
	if row[0].IsNull() || !row[1].IsNull() {
		t.Errorf("Expected value for A and null for B, got %v", row)
	}

	if _, ok := table.Row(stats.MetricTenYear); ok {
		t.Error("ten_year row must be omitted when no series can compute it")
	}

	start, ok := table.Cell(stats.MetricStart, "A")
	if d, isDate := start.Time(); !ok || !isDate || !d.Equal(a.Dates[0]) {
		t.Errorf("Expected start date cell, got %v", start)
	}

	// Row order follows the engine's metric order.
	last := -1
	for _, idx := range table.Index {
		pos := -1
		for i, m := range stats.Metrics {
			if m == idx.String() {
				pos = i
			}
		}
		if pos <= last {
			t.Errorf("Row %q out of order", idx.String())
		}
		last = pos
	}
}

// TestCorrelationMatrix tests the asset return correlation matrix.
//
// WHY: The matrix is rendered as a heatmap; asymmetry or a diagonal other than
// 1 is immediately visible to users.
func TestCorrelationMatrix(t *testing.T) {
	nan := math.NaN()
	dates := testutil.Dates("2020-01-01", "2020-01-02", "2020-01-03", "2020-01-04", "2020-01-05", "2020-01-06")
	table := testutil.NewPriceTable(dates).
		WithColumn("AAPL", 100, 101, 99, 104, 103, 107).
		WithColumn("MSFT", 50, 51, 50.5, 52, 51, 53).
		WithColumn("INV", 10, 9.9, 10.1, 9.6, 9.8, 9.3).
		WithColumn("FLAT", 5, 5, 5, 5, 5, 5).
		WithColumn("GAP", nan, 20, nan, 21, 20, 22).
		Build()

	corr := stats.CorrelationMatrix(table)

	names := []string{"AAPL", "MSFT", "INV", "FLAT", "GAP"}
	for i, n := range names {
		if corr.Columns[i] != n || corr.Index[i].String() != n {
			t.Fatalf("Expected raw ticker labels, got %v / %v", corr.Columns, corr.Index)
		}
	}

	t.Run("is symmetric", func(t *testing.T) {
		for i := range names {
			for j := range names {
				a, aok := corr.Data[i][j].Float()
				b, bok := corr.Data[j][i].Float()
				if aok != bok || (aok && !almostEqual(a, b, 1e-12)) {
					t.Errorf("corr[%d][%d]=%v != corr[%d][%d]=%v", i, j, a, j, i, b)
				}
			}
		}
	})

	t.Run("has unit diagonal for varying series", func(t *testing.T) {
		for _, i := range []int{0, 1, 2, 4} {
			v, ok := corr.Data[i][i].Float()
			if !ok || v != 1 {
				t.Errorf("corr[%s][%s] = %v, want 1", names[i], names[i], v)
			}
		}
		if !corr.Data[3][3].IsNull() {
			t.Errorf("Expected null diagonal for a flat series, got %v", corr.Data[3][3])
		}
	})

	t.Run("captures direction", func(t *testing.T) {
		pos, _ := corr.Data[0][1].Float()
		neg, _ := corr.Data[0][2].Float()
		if pos <= 0 || neg >= 0 {
			t.Errorf("Expected AAPL/MSFT > 0 and AAPL/INV < 0, got %v and %v", pos, neg)
		}
	})
}

func TestPercentChange(t *testing.T) {
	got := stats.PercentChange([]float64{math.NaN(), 10, math.NaN(), 12})
	if !math.IsNaN(got[0]) || !math.IsNaN(got[1]) {
		t.Errorf("Expected leading NaNs, got %v", got)
	}
	if got[2] != 0 {
		t.Errorf("Expected forward-filled gap to yield 0, got %v", got[2])
	}
	if !almostEqual(got[3], 0.2, 1e-12) {
		t.Errorf("Expected 0.2, got %v", got[3])
	}
}

func TestRebaseAndSeriesTable(t *testing.T) {
	dates := testutil.Dates("2020-01-01", "2020-01-02")
	a := stats.Series{Name: "A", Dates: dates, Values: []float64{1_000_000, 1_100_000}}
	b := stats.Series{Name: "B", Dates: dates[1:], Values: []float64{50}}

	table := stats.SeriesTable(stats.RebaseAll([]stats.Series{a, b}, 100))
	if len(table.Index) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(table.Index))
	}
	if v, _ := table.Data[1][0].Float(); !almostEqual(v, 110, 1e-9) {
		t.Errorf("Expected rebased 110, got %v", v)
	}
	if !table.Data[0][1].IsNull() {
		t.Errorf("Expected null for missing B point, got %v", table.Data[0][1])
	}
	if v, _ := table.Data[1][1].Float(); v != 100 {
		t.Errorf("Expected B rebased to 100, got %v", v)
	}
}
