// Package stats computes performance and risk statistics for equity curves and
// price series.
//
// All returns and ratios are fractions (0.05 is 5%). Daily figures are annualized
// with 252 periods, monthly with 12 and yearly with 1. A metric that cannot be
// computed for a series, typically because the series is too short, is omitted
// rather than reported as zero.
package stats

import (
	"math"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/backtest"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// DefaultRiskFreeRate is the annual risk-free rate used in Sharpe and Sortino ratios.
const DefaultRiskFreeRate = 0.01

const (
	tradingDaysPerYear = 252
	monthsPerYear      = 12
	daysPerYear        = 365.0
)

// Metric names, in the row order of every statistics table.
const (
	MetricStart              = "start"
	MetricEnd                = "end"
	MetricRiskFree           = "rf"
	MetricTotalReturn        = "total_return"
	MetricCAGR               = "cagr"
	MetricMaxDrawdown        = "max_drawdown"
	MetricCalmar             = "calmar"
	MetricMTD                = "mtd"
	MetricThreeMonth         = "three_month"
	MetricSixMonth           = "six_month"
	MetricYTD                = "ytd"
	MetricOneYear            = "one_year"
	MetricThreeYear          = "three_year"
	MetricFiveYear           = "five_year"
	MetricTenYear            = "ten_year"
	MetricIncep              = "incep"
	MetricDailySharpe        = "daily_sharpe"
	MetricDailySortino       = "daily_sortino"
	MetricDailyMean          = "daily_mean"
	MetricDailyVol           = "daily_vol"
	MetricDailySkew          = "daily_skew"
	MetricDailyKurt          = "daily_kurt"
	MetricBestDay            = "best_day"
	MetricWorstDay           = "worst_day"
	MetricMonthlySharpe      = "monthly_sharpe"
	MetricMonthlySortino     = "monthly_sortino"
	MetricMonthlyMean        = "monthly_mean"
	MetricMonthlyVol         = "monthly_vol"
	MetricMonthlySkew        = "monthly_skew"
	MetricMonthlyKurt        = "monthly_kurt"
	MetricBestMonth          = "best_month"
	MetricWorstMonth         = "worst_month"
	MetricYearlySharpe       = "yearly_sharpe"
	MetricYearlySortino      = "yearly_sortino"
	MetricYearlyMean         = "yearly_mean"
	MetricYearlyVol          = "yearly_vol"
	MetricYearlySkew         = "yearly_skew"
	MetricYearlyKurt         = "yearly_kurt"
	MetricBestYear           = "best_year"
	MetricWorstYear          = "worst_year"
	MetricAvgDrawdown        = "avg_drawdown"
	MetricAvgDrawdownDays    = "avg_drawdown_days"
	MetricAvgUpMonth         = "avg_up_month"
	MetricAvgDownMonth       = "avg_down_month"
	MetricWinYearPerc        = "win_year_perc"
	MetricTwelveMonthWinPerc = "twelve_month_win_perc"
)

// Metrics lists every metric the engine computes, in table row order.
var Metrics = []string{
	MetricStart, MetricEnd, MetricRiskFree,
	MetricTotalReturn, MetricCAGR, MetricMaxDrawdown, MetricCalmar,
	MetricMTD, MetricThreeMonth, MetricSixMonth, MetricYTD, MetricOneYear,
	MetricThreeYear, MetricFiveYear, MetricTenYear, MetricIncep,
	MetricDailySharpe, MetricDailySortino, MetricDailyMean, MetricDailyVol,
	MetricDailySkew, MetricDailyKurt, MetricBestDay, MetricWorstDay,
	MetricMonthlySharpe, MetricMonthlySortino, MetricMonthlyMean, MetricMonthlyVol,
	MetricMonthlySkew, MetricMonthlyKurt, MetricBestMonth, MetricWorstMonth,
	MetricYearlySharpe, MetricYearlySortino, MetricYearlyMean, MetricYearlyVol,
	MetricYearlySkew, MetricYearlyKurt, MetricBestYear, MetricWorstYear,
	MetricAvgDrawdown, MetricAvgDrawdownDays, MetricAvgUpMonth, MetricAvgDownMonth,
	MetricWinYearPerc, MetricTwelveMonthWinPerc,
}

// Engine computes statistics against a fixed annual risk-free rate.
type Engine struct {
	RiskFreeRate float64
}

// NewEngine creates an Engine with the given annual risk-free rate.
func NewEngine(riskFreeRate float64) Engine {
	return Engine{RiskFreeRate: riskFreeRate}
}

// Performance holds the computed metrics of one series.
type Performance struct {
	Name   string
	Start  time.Time
	End    time.Time
	Values map[string]float64
}

// Get returns a numeric metric.
func (p Performance) Get(metric string) (float64, bool) {
	v, ok := p.Values[metric]
	return v, ok
}

func (p Performance) cell(metric string) (model.Cell, bool) {
	switch metric {
	case MetricStart:
		if p.Start.IsZero() {
			return model.Null, false
		}
		return model.Date(p.Start), true
	case MetricEnd:
		if p.End.IsZero() {
			return model.Null, false
		}
		return model.Date(p.End), true
	}
	v, ok := p.Values[metric]
	if !ok || math.IsNaN(v) || math.IsInf(v, 0) {
		return model.Null, false
	}
	return model.Num(v), true
}

func (p Performance) set(metric string, v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	p.Values[metric] = v
}

// Table computes every series and lays the result out with metrics as rows and
// series as columns. Rows not computable for any series are left out.
func (e Engine) Table(subject model.Subject, series []Series) model.StatsTable {
	perfs := make([]Performance, len(series))
	columns := make([]string, len(series))
	for i, s := range series {
		perfs[i] = e.Compute(s)
		columns[i] = s.Name
	}

	table := model.NewTable(columns)
	for _, metric := range Metrics {
		row := make([]model.Cell, len(perfs))
		present := false
		for j, p := range perfs {
			c, ok := p.cell(metric)
			row[j] = c
			present = present || ok
		}
		if present {
			table.AppendRow(model.Str(metric), row)
		}
	}
	return model.StatsTable{Subject: subject, Table: table}
}

// Compute calculates the full metric battery for one series.
func (e Engine) Compute(series Series) Performance {
	s := series.valid()
	p := Performance{Name: series.Name, Values: make(map[string]float64)}
	if len(s.Values) == 0 {
		return p
	}

	p.Start = s.Dates[0]
	p.End = s.Dates[len(s.Dates)-1]
	p.set(MetricRiskFree, e.RiskFreeRate)

	if len(s.Values) < 2 {
		return p
	}

	first, last := s.Values[0], s.Values[len(s.Values)-1]
	if first > 0 {
		p.set(MetricTotalReturn, last/first-1)
	}

	cagr := math.NaN()
	if years := p.End.Sub(p.Start).Hours() / 24 / daysPerYear; years > 0 && first > 0 && last > 0 {
		cagr = math.Pow(last/first, 1/years) - 1
	}
	p.set(MetricCAGR, cagr)
	p.set(MetricIncep, cagr)

	maxDD := 0.0
	for _, d := range backtest.DrawdownSeries(s.Values) {
		if d < maxDD {
			maxDD = d
		}
	}
	p.set(MetricMaxDrawdown, maxDD)
	if maxDD < 0 {
		p.set(MetricCalmar, cagr/math.Abs(maxDD))
	}

	e.lookbacks(p, s)

	daily := returns(s.Values)
	e.periodStats(p, daily, tradingDaysPerYear, MetricDailySharpe, MetricDailySortino,
		MetricDailyMean, MetricDailyVol, MetricDailySkew, MetricDailyKurt, MetricBestDay, MetricWorstDay)

	monthlyPrices := resample(s, func(t time.Time) int { return t.Year()*12 + int(t.Month()) })
	monthly := returns(monthlyPrices)
	e.periodStats(p, monthly, monthsPerYear, MetricMonthlySharpe, MetricMonthlySortino,
		MetricMonthlyMean, MetricMonthlyVol, MetricMonthlySkew, MetricMonthlyKurt, MetricBestMonth, MetricWorstMonth)

	yearly := returns(resample(s, func(t time.Time) int { return t.Year() }))
	e.periodStats(p, yearly, 1, MetricYearlySharpe, MetricYearlySortino,
		MetricYearlyMean, MetricYearlyVol, MetricYearlySkew, MetricYearlyKurt, MetricBestYear, MetricWorstYear)

	up, down := splitSigns(monthly)
	if len(up) > 0 {
		p.set(MetricAvgUpMonth, stat.Mean(up, nil))
	}
	if len(down) > 0 {
		p.set(MetricAvgDownMonth, stat.Mean(down, nil))
	}

	if len(yearly) > 0 {
		p.set(MetricWinYearPerc, winRate(yearly))
	}

	// Month-end prices without the leading start value, for rolling windows.
	monthEnds := monthlyPrices[1:]
	if len(monthEnds) > monthsPerYear {
		rolling := make([]float64, 0, len(monthEnds)-monthsPerYear)
		for i := monthsPerYear; i < len(monthEnds); i++ {
			if monthEnds[i-monthsPerYear] > 0 {
				rolling = append(rolling, monthEnds[i]/monthEnds[i-monthsPerYear]-1)
			}
		}
		if len(rolling) > 0 {
			p.set(MetricTwelveMonthWinPerc, winRate(rolling))
		}
	}

	if episodes := backtest.DrawdownEpisodes(s.Dates, s.Values); len(episodes) > 0 {
		depths := make([]float64, len(episodes))
		lengths := make([]float64, len(episodes))
		for i, ep := range episodes {
			depths[i] = ep.Depth
			lengths[i] = float64(ep.Length)
		}
		p.set(MetricAvgDrawdown, stat.Mean(depths, nil))
		p.set(MetricAvgDrawdownDays, stat.Mean(lengths, nil))
	}

	return p
}

// lookbacks sets the trailing-period returns measured back from the last date.
// A period is only reported when the series reaches back far enough.
func (e Engine) lookbacks(p Performance, s Series) {
	last := s.Values[len(s.Values)-1]
	end := p.End

	trailing := func(metric string, ref time.Time, years float64) {
		v, ok := valueAsOf(s, ref)
		if !ok || v <= 0 {
			return
		}
		r := last/v - 1
		if years > 1 {
			if last <= 0 {
				return
			}
			r = math.Pow(last/v, 1/years) - 1
		}
		p.set(metric, r)
	}

	monthStart := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	trailing(MetricMTD, monthStart.AddDate(0, 0, -1), 1)
	trailing(MetricYTD, time.Date(end.Year()-1, time.December, 31, 0, 0, 0, 0, time.UTC), 1)
	trailing(MetricThreeMonth, end.AddDate(0, -3, 0), 1)
	trailing(MetricSixMonth, end.AddDate(0, -6, 0), 1)
	trailing(MetricOneYear, end.AddDate(-1, 0, 0), 1)
	trailing(MetricThreeYear, end.AddDate(-3, 0, 0), 3)
	trailing(MetricFiveYear, end.AddDate(-5, 0, 0), 5)
	trailing(MetricTenYear, end.AddDate(-10, 0, 0), 10)
}

// periodStats sets the return-distribution metrics of one sampling frequency.
func (e Engine) periodStats(p Performance, r []float64, periods float64, sharpe, sortino, mean, vol, skew, kurt, best, worst string) {
	if len(r) == 0 {
		return
	}

	bestV, worstV := r[0], r[0]
	for _, v := range r[1:] {
		bestV = math.Max(bestV, v)
		worstV = math.Min(worstV, v)
	}
	p.set(best, bestV)
	p.set(worst, worstV)
	p.set(mean, stat.Mean(r, nil)*periods)

	if len(r) < 2 {
		return
	}

	std := stat.StdDev(r, nil)
	p.set(vol, std*math.Sqrt(periods))

	if v, ok := e.Sharpe(r, periods); ok {
		p.set(sharpe, v)
	}

	excess := e.excessReturns(r, periods)
	downside := make([]float64, len(excess))
	for i, v := range excess {
		downside[i] = math.Min(v, 0)
	}
	if s := stat.StdDev(downside, nil); s > 0 {
		p.set(sortino, stat.Mean(excess, nil)/s*math.Sqrt(periods))
	}

	if len(r) >= 3 && std > 0 {
		p.set(skew, stat.Skew(r, nil))
	}
	if len(r) >= 4 && std > 0 {
		p.set(kurt, stat.ExKurtosis(r, nil))
	}
}

// excessReturns subtracts the per-period equivalent of the annual risk-free rate.
func (e Engine) excessReturns(r []float64, periods float64) []float64 {
	rf := math.Pow(1+e.RiskFreeRate, 1/periods) - 1
	out := make([]float64, len(r))
	for i, v := range r {
		out[i] = v - rf
	}
	return out
}

// Sharpe returns the annualized Sharpe ratio of a return series sampled periods
// times a year, and false when the excess returns do not vary.
func (e Engine) Sharpe(r []float64, periods float64) (float64, bool) {
	if len(r) < 2 {
		return 0, false
	}
	excess := e.excessReturns(r, periods)
	s := stat.StdDev(excess, nil)
	if s == 0 {
		return 0, false
	}
	return stat.Mean(excess, nil) / s * math.Sqrt(periods), true
}

func returns(values []float64) []float64 {
	if len(values) < 2 {
		return nil
	}
	out := make([]float64, 0, len(values)-1)
	for i := 1; i < len(values); i++ {
		if values[i-1] == 0 {
			continue
		}
		out = append(out, values[i]/values[i-1]-1)
	}
	return out
}

// resample returns the first value followed by the last value of every bucket.
func resample(s Series, bucket func(time.Time) int) []float64 {
	out := []float64{s.Values[0]}
	current := bucket(s.Dates[0])
	lastValue := s.Values[0]
	for i, d := range s.Dates {
		if b := bucket(d); b != current {
			out = append(out, lastValue)
			current = b
		}
		lastValue = s.Values[i]
	}
	return append(out, lastValue)
}

func valueAsOf(s Series, ref time.Time) (float64, bool) {
	if ref.Before(s.Dates[0]) {
		return 0, false
	}
	v, ok := 0.0, false
	for i, d := range s.Dates {
		if d.After(ref) {
			break
		}
		v, ok = s.Values[i], true
	}
	return v, ok
}

func splitSigns(r []float64) (up, down []float64) {
	for _, v := range r {
		switch {
		case v > 0:
			up = append(up, v)
		case v < 0:
			down = append(down, v)
		}
	}
	return up, down
}

func winRate(r []float64) float64 {
	wins := 0
	for _, v := range r {
		if v > 0 {
			wins++
		}
	}
	return float64(wins) / float64(len(r))
}
