package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lemmareport/pkg/lemmareport/analytics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/report"
	"github.com/cognicore/lemmareport/pkg/lemmareport/stoplist"
)

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// Stops builds the stop-lemma manager from inline terms, the optional
// stoplist file and the punctuation switch.
func (c *Config) Stops() (*stoplist.Manager, error) {
	terms := append([]string(nil), c.Report.StopTerms...)
	if c.Report.StoplistPath != "" {
		sl, err := LoadStoplist(c.Report.StoplistPath)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		terms = append(terms, sl.Terms...)
	}
	var opts []stoplist.Option
	if c.Report.IgnorePunctuation {
		opts = append(opts, stoplist.WithPunctuation())
	}
	return stoplist.NewManager(terms, opts...), nil
}

// AssemblerOptions turns the report section into assembler options.
// Validate should have been called first.
func (c *Config) AssemblerOptions(logger *slog.Logger) (report.Options, error) {
	dims, err := analytics.ParseDimensions(c.Report.Dimensions)
	if err != nil {
		return report.Options{}, err
	}
	windows, err := c.WindowSpecs()
	if err != nil {
		return report.Options{}, err
	}
	stops, err := c.Stops()
	if err != nil {
		return report.Options{}, err
	}
	return report.Options{
		Title:      c.Report.Title,
		Watermark:  c.Report.Watermark,
		Categories: c.CategorySpecs(),
		Windows:    windows,
		Dimensions: dims,
		Limit:      c.Report.Limit,
		ChartLimit: c.Report.ChartLimit,
		Stops:      stops,
		Logger:     logger,
	}, nil
}
