package backtest

import (
	"math"
	"sort"
	"time"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/model"
)

// DrawdownSeries returns value / running maximum - 1 for every point.
// Points before the first valid value, and invalid points, yield NaN.
func DrawdownSeries(values []float64) []float64 {
	out := make([]float64, len(values))
	peak := math.NaN()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			out[i] = math.NaN()
			continue
		}
		if math.IsNaN(peak) || v > peak {
			peak = v
		}
		if peak <= 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = v/peak - 1
	}
	return out
}

// DrawdownEpisodes splits a value series into maximal peak-to-trough-to-recovery
// intervals, in chronological order.
func DrawdownEpisodes(dates []time.Time, values []float64) []model.DrawdownEpisode {
	dd := DrawdownSeries(values)

	var episodes []model.DrawdownEpisode
	var current *model.DrawdownEpisode
	lastPeak := -1
	lastValid := -1

	for i, d := range dd {
		if math.IsNaN(d) {
			continue
		}
		lastValid = i

		if d >= 0 {
			if current != nil {
				current.End = dates[i]
				current.Recovered = true
				current.Length = days(current.Start, current.End)
				episodes = append(episodes, *current)
				current = nil
			}
			lastPeak = i
			continue
		}

		if current == nil {
			start := i
			if lastPeak >= 0 {
				start = lastPeak
			}
			current = &model.DrawdownEpisode{
				Start:  dates[start],
				Trough: dates[i],
				Depth:  d,
			}
		}
		if d < current.Depth {
			current.Depth = d
			current.Trough = dates[i]
		}
	}

	if current != nil {
		current.End = dates[lastValid]
		current.Length = days(current.Start, current.End)
		episodes = append(episodes, *current)
	}

	return episodes
}

// TopDrawdowns returns at most n episodes ordered by depth, deepest first.
// The input slice is not modified.
func TopDrawdowns(episodes []model.DrawdownEpisode, n int) []model.DrawdownEpisode {
	sorted := make([]model.DrawdownEpisode, len(episodes))
	copy(sorted, episodes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Depth < sorted[j].Depth
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func days(from, to time.Time) int {
	return int(math.Round(to.Sub(from).Hours() / 24))
}
