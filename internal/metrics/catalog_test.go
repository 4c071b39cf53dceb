package metrics_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/metrics"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
}

// TestLoad tests reading the catalog files.
//
// WHY: The order of result_metadata entries is the order of the response
// tables. Decoding into a Go map would shuffle it.
func TestLoad(t *testing.T) {
	t.Run("preserves result order and null groups", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "metric_info.json", `{"cagr": {"label": "CAGR", "format": "percent"}}`)
		writeFile(t, dir, "metric_groups.json", `{"summary": ["total_return", "cagr"]}`)
		writeFile(t, dir, "result_metadata.json", `{
  "zeta": {"metricGroup": "summary", "subject": "portfolio"},
  "port_perf_chart": {"metricGroup": null, "subject": null},
  "alpha": {"metricGroup": "summary", "subject": "asset"},
  "mystery": {"metricGroup": null}
}`)

		catalog, err := metrics.Load(dir)
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}

		want := []string{"zeta", "port_perf_chart", "alpha", "mystery"}
		if len(catalog.Results) != len(want) {
			t.Fatalf("Expected %d results, got %d", len(want), len(catalog.Results))
		}
		for i, name := range want {
			if catalog.Results[i].Name != name {
				t.Errorf("Result %d = %q, want %q", i, catalog.Results[i].Name, name)
			}
		}

		if g := catalog.Results[0].MetricGroup; g == nil || *g != "summary" {
			t.Errorf("Expected metricGroup summary, got %v", g)
		}
		if catalog.Results[1].MetricGroup != nil || catalog.Results[1].Subject != "" {
			t.Errorf("Expected null group and subject, got %+v", catalog.Results[1])
		}
		if catalog.Results[3].Subject != "" {
			t.Errorf("Expected missing subject to be empty, got %q", catalog.Results[3].Subject)
		}

		if got := catalog.Group("summary"); len(got) != 2 || got[0] != "total_return" {
			t.Errorf("Unexpected group %v", got)
		}
		if catalog.Info["cagr"].Label != "CAGR" {
			t.Errorf("Unexpected info %+v", catalog.Info["cagr"])
		}
	})

	t.Run("accepts yaml files", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "metric_info.yaml", "cagr:\n  label: CAGR\n")
		writeFile(t, dir, "metric_groups.yml", "summary:\n  - cagr\n")
		writeFile(t, dir, "result_metadata.yaml", "b:\n  metricGroup: summary\n  subject: asset\na:\n  metricGroup: ~\n")

		catalog, err := metrics.Load(dir)
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		if len(catalog.Results) != 2 || catalog.Results[0].Name != "b" || catalog.Results[1].Name != "a" {
			t.Errorf("Unexpected results %+v", catalog.Results)
		}
	})

	t.Run("fails when a file is missing", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, "metric_info.json", `{}`)

		_, err := metrics.Load(dir)
		if !errors.Is(err, apperrors.ErrFailedToLoadCatalog) {
			t.Errorf("Expected ErrFailedToLoadCatalog, got %v", err)
		}
	})

	t.Run("fails when results are not a mapping", func(t *testing.T) {
		_, err := metrics.Parse([]byte(`{}`), []byte(`{}`), []byte(`["a", "b"]`))
		if !errors.Is(err, apperrors.ErrFailedToLoadCatalog) {
			t.Errorf("Expected ErrFailedToLoadCatalog, got %v", err)
		}
	})

	t.Run("loads the shipped catalog", func(t *testing.T) {
		catalog, err := metrics.Load(filepath.Join("..", "..", "data"))
		if err != nil {
			t.Fatalf("Load() returned unexpected error: %v", err)
		}
		for _, r := range catalog.Results {
			if r.MetricGroup == nil {
				continue
			}
			names := catalog.Group(*r.MetricGroup)
			if len(names) == 0 {
				t.Errorf("Result %q references unknown group %q", r.Name, *r.MetricGroup)
			}
			for _, m := range names {
				if _, ok := catalog.Info[m]; !ok {
					t.Errorf("Metric %q of group %q has no info", m, *r.MetricGroup)
				}
			}
		}
	})
}
