// Package metrics loads the metric catalog: descriptive metric metadata, the
// metric groups and the ordered list of results a backtest response contains.
//
// The catalog files are plain JSON (YAML variants are accepted as well) and are
// read once at startup. A loaded Catalog is never mutated.
package metrics

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ndewijer/Portfolio-Backtest-Backend/internal/apperrors"
)

// Catalog file base names, looked up with .json, .yaml and .yml extensions.
const (
	InfoFile    = "metric_info"
	GroupsFile  = "metric_groups"
	ResultsFile = "result_metadata"
)

// Info describes a metric for display purposes only.
type Info struct {
	Label       string `yaml:"label" json:"label"`
	LabelCn     string `yaml:"labelCn" json:"labelCn,omitempty"`
	Format      string `yaml:"format" json:"format,omitempty"`
	Description string `yaml:"description" json:"description,omitempty"`
}

// ResultMeta declares how one output table is assembled.
// MetricGroup is nil when the result is dispatched on its name.
type ResultMeta struct {
	Name        string  `json:"name"`
	MetricGroup *string `json:"metricGroup"`
	Subject     string  `json:"subject"`
}

// Catalog holds the immutable lookup tables consumed by the result shaper.
type Catalog struct {
	Info    map[string]Info     `json:"info"`
	Groups  map[string][]string `json:"groups"`
	Results []ResultMeta        `json:"results"`
}

// Group returns the ordered metric names of a group.
func (c *Catalog) Group(name string) []string {
	return c.Groups[name]
}

// Load reads the three catalog files from dir.
func Load(dir string) (*Catalog, error) {
	catalog := &Catalog{
		Info:   map[string]Info{},
		Groups: map[string][]string{},
	}

	if err := decodeFile(dir, InfoFile, &catalog.Info); err != nil {
		return nil, err
	}
	if err := decodeFile(dir, GroupsFile, &catalog.Groups); err != nil {
		return nil, err
	}

	var results yaml.Node
	if err := decodeFile(dir, ResultsFile, &results); err != nil {
		return nil, err
	}
	parsed, err := parseResults(&results)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, ResultsFile, err)
	}
	catalog.Results = parsed

	return catalog, nil
}

// Parse builds a catalog from in-memory documents.
func Parse(info, groups, results []byte) (*Catalog, error) {
	catalog := &Catalog{
		Info:   map[string]Info{},
		Groups: map[string][]string{},
	}
	if err := yaml.Unmarshal(info, &catalog.Info); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, InfoFile, err)
	}
	if err := yaml.Unmarshal(groups, &catalog.Groups); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, GroupsFile, err)
	}
	var node yaml.Node
	if err := yaml.Unmarshal(results, &node); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, ResultsFile, err)
	}
	parsed, err := parseResults(&node)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, ResultsFile, err)
	}
	catalog.Results = parsed
	return catalog, nil
}

func decodeFile(dir, base string, out any) error {
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		path := filepath.Join(dir, base+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, path, err)
		}
		if err := yaml.Unmarshal(data, out); err != nil {
			return fmt.Errorf("%w: %s: %w", apperrors.ErrFailedToLoadCatalog, path, err)
		}
		return nil
	}
	return fmt.Errorf("%w: %s not found in %s", apperrors.ErrFailedToLoadCatalog, base, dir)
}

// parseResults walks the result mapping in document order.
func parseResults(doc *yaml.Node) ([]ResultMeta, error) {
	node := doc
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil, nil
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of result names, got node kind %d", node.Kind)
	}

	results := make([]ResultMeta, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		var body struct {
			MetricGroup *string `yaml:"metricGroup"`
			Subject     *string `yaml:"subject"`
		}
		if err := node.Content[i+1].Decode(&body); err != nil {
			return nil, fmt.Errorf("result %q: %w", node.Content[i].Value, err)
		}

		meta := ResultMeta{Name: node.Content[i].Value, MetricGroup: body.MetricGroup}
		if body.Subject != nil {
			meta.Subject = *body.Subject
		}
		results = append(results, meta)
	}
	return results, nil
}
