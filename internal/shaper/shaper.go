// Package shaper assembles the response tables of a backtest from the
// statistics engine outputs, following the result list of the metric catalog.
package shaper

import (
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/backtest"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// MaxDrawdowns is the number of drawdown episodes reported per portfolio.
const MaxDrawdowns = 5

// Result names dispatched on name when no metric group is set.
const (
	ResultPerfChart     = "port_perf_chart"
	ResultDrawdownChart = "drawdown_chart"
	ResultDrawdowns     = "drawdowns"
	ResultAssetCorr     = "asset_corr"
)

// Kind is how a catalog result is built.
type Kind int

const (
	KindSkip Kind = iota
	KindMetricGroup
	KindPerfChart
	KindDrawdownChart
	KindDrawdowns
	KindAssetCorr
)

func (k Kind) String() string {
	switch k {
	case KindMetricGroup:
		return "metric_group"
	case KindPerfChart:
		return ResultPerfChart
	case KindDrawdownChart:
		return ResultDrawdownChart
	case KindDrawdowns:
		return ResultDrawdowns
	case KindAssetCorr:
		return ResultAssetCorr
	default:
		return "skip"
	}
}

// Classify decides how a result is built. A set metric group takes precedence
// over the result name; unrecognized names are skipped.
func Classify(meta metrics.ResultMeta) Kind {
	if meta.MetricGroup != nil {
		return KindMetricGroup
	}
	switch meta.Name {
	case ResultPerfChart:
		return KindPerfChart
	case ResultDrawdownChart:
		return KindDrawdownChart
	case ResultDrawdowns:
		return KindDrawdowns
	case ResultAssetCorr:
		return KindAssetCorr
	default:
		return KindSkip
	}
}

// PortfolioDrawdowns holds every drawdown episode of one simulated portfolio.
type PortfolioDrawdowns struct {
	Name     string
	Episodes []model.DrawdownEpisode
}

// Inputs are the pipeline outputs the shaper draws from.
type Inputs struct {
	PortfolioStats model.StatsTable
	AssetStats     model.StatsTable
	Performance    model.Table // Rebased portfolio equity, one column per portfolio
	Drawdown       model.Table // Drawdown series of Performance
	Drawdowns      []PortfolioDrawdowns
	Correlation    model.Table // Asset return correlation matrix
}

// Shape builds one table per catalog result, in catalog order.
// Results that cannot be built are skipped without error.
func Shape(catalog *metrics.Catalog, in Inputs) model.ResultBundle {
	var bundle model.ResultBundle

	for _, meta := range catalog.Results {
		switch Classify(meta) {
		case KindMetricGroup:
			var source model.StatsTable
			switch model.ParseSubject(meta.Subject) {
			case model.SubjectPortfolio:
				source = in.PortfolioStats
			case model.SubjectAsset:
				source = in.AssetStats
			default:
				continue
			}
			bundle.Add(meta.Name, source.FilterRows(catalog.Group(*meta.MetricGroup)))

		case KindPerfChart:
			bundle.Add(meta.Name, in.Performance)

		case KindDrawdownChart:
			bundle.Add(meta.Name, in.Drawdown)

		case KindDrawdowns:
			for _, pd := range in.Drawdowns {
				if len(pd.Episodes) == 0 {
					continue
				}
				bundle.Add(pd.Name+" "+meta.Name, DrawdownTable(backtest.TopDrawdowns(pd.Episodes, MaxDrawdowns)))
			}

		case KindAssetCorr:
			bundle.Add(meta.Name, in.Correlation)

		case KindSkip:
			continue
		}
	}

	return bundle
}

// DrawdownTable lays drawdown episodes out with a positional index.
func DrawdownTable(episodes []model.DrawdownEpisode) model.Table {
	table := model.NewTable([]string{"Start", "Trough", "End", "Length", "drawdown", "recovered"})
	for i, ep := range episodes {
		table.AppendRow(model.Num(float64(i)), []model.Cell{
			model.Date(ep.Start),
			model.Date(ep.Trough),
			model.Date(ep.End),
			model.Num(float64(ep.Length)),
			model.Num(ep.Depth),
			model.Bool(ep.Recovered),
		})
	}
	return table
}
