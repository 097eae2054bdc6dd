// Package config holds the YAML job configuration for a report run.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/lemmareport/pkg/lemmareport/analytics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/category"
	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/report"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// Source drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config is the complete job configuration.
type Config struct {
	Source  Source  `yaml:"source" json:"source"`
	Report  Report  `yaml:"report" json:"report"`
	Publish Publish `yaml:"publish" json:"publish"`
	Logging Logging `yaml:"logging" json:"logging"`
	Metrics Metrics `yaml:"metrics" json:"metrics"`
}

// Source selects the token store.
type Source struct {
	Driver   string `yaml:"driver" json:"driver" jsonschema:"enum=sqlite,enum=postgres"`
	DSN      string `yaml:"dsn" json:"dsn" jsonschema:"description=SQLite file path or Postgres connection string"`
	Table    string `yaml:"table" json:"table,omitempty"`
	Timezone string `yaml:"timezone" json:"timezone,omitempty" jsonschema:"description=IANA zone of stored timestamps that carry no offset"`
}

// Report describes what goes into the document.
type Report struct {
	Title             string     `yaml:"title" json:"title,omitempty"`
	Limit             int        `yaml:"limit" json:"limit,omitempty" jsonschema:"minimum=1"`
	ChartLimit        int        `yaml:"chart_limit" json:"chart_limit,omitempty" jsonschema:"minimum=1"`
	Dimensions        []string   `yaml:"dimensions" json:"dimensions,omitempty"`
	Categories        []Category `yaml:"categories" json:"categories,omitempty"`
	Windows           []Window   `yaml:"windows" json:"windows,omitempty"`
	StopTerms         []string   `yaml:"stop_terms" json:"stop_terms,omitempty"`
	StoplistPath      string     `yaml:"stoplist_path" json:"stoplist_path,omitempty"`
	IgnorePunctuation bool       `yaml:"ignore_punctuation" json:"ignore_punctuation,omitempty"`
	Watermark         string     `yaml:"watermark" json:"watermark,omitempty"`
	Timezone          string     `yaml:"timezone" json:"timezone,omitempty" jsonschema:"description=IANA zone for the displayed generation time"`
}

// Category is a named POS tag or union of tags.
type Category struct {
	Name string   `yaml:"name" json:"name"`
	Tags []string `yaml:"tags" json:"tags,omitempty"`
}

// Window is a named time window. An empty span means all time.
type Window struct {
	Name string `yaml:"name" json:"name"`
	Span string `yaml:"span" json:"span,omitempty" jsonschema:"description=Go duration or whole days such as 7d; empty for all time"`
}

// Publish controls where the report goes.
type Publish struct {
	Template    string   `yaml:"template" json:"template,omitempty" jsonschema:"description=host page containing the placeholder comment"`
	Output      string   `yaml:"output" json:"output"`
	Placeholder string   `yaml:"placeholder" json:"placeholder,omitempty"`
	Hook        []string `yaml:"hook" json:"hook,omitempty" jsonschema:"description=command run after a successful write"`
}

// Logging configures the process logger and the diagnostic error log.
type Logging struct {
	Level    string `yaml:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format   string `yaml:"format" json:"format,omitempty" jsonschema:"enum=text,enum=json"`
	ErrorLog string `yaml:"error_log" json:"error_log,omitempty"`
}

// Metrics configures the optional Pushgateway push.
type Metrics struct {
	Pushgateway string `yaml:"pushgateway" json:"pushgateway,omitempty"`
	Job         string `yaml:"job" json:"job,omitempty"`
}

// Default returns the configuration of the original report: the four
// default categories over all time, 24 hours and 7 days, 50 table rows and
// 15 chart bars, read from tokens.db.
func Default() *Config {
	cfg := &Config{
		Source: Source{Driver: DriverSQLite, DSN: "tokens.db", Table: "tokens"},
		Report: Report{
			Title:      "Lemma frequencies",
			Limit:      report.DefaultLimit,
			ChartLimit: report.DefaultChartLimit,
			Dimensions: []string{analytics.DimLemma, analytics.DimPOS, analytics.DimSurface},
		},
		Publish: Publish{Output: "index.html"},
		Logging: Logging{Level: "info", Format: "text", ErrorLog: "error_log.txt"},
		Metrics: Metrics{Job: "lemma_report"},
	}
	for _, c := range category.Defaults() {
		cfg.Report.Categories = append(cfg.Report.Categories, Category{Name: c.Name, Tags: c.Tags})
	}
	for _, w := range window.Defaults() {
		cfg.Report.Windows = append(cfg.Report.Windows, Window{Name: w.Name, Span: formatSpan(w.Span)})
	}
	return cfg
}

// Load reads a YAML file over the defaults. Keys absent from the file keep
// their default value; lists present in the file replace the default list.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w: %w", internalerr.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// ApplyEnv overrides selected fields from the environment.
func (c *Config) ApplyEnv() {
	c.Source.Driver = getenv("LEMMA_REPORT_SOURCE_DRIVER", c.Source.Driver)
	c.Source.DSN = getenv("LEMMA_REPORT_DSN", c.Source.DSN)
	c.Publish.Output = getenv("LEMMA_REPORT_OUTPUT", c.Publish.Output)
	c.Metrics.Pushgateway = getenv("LEMMA_REPORT_PUSHGATEWAY", c.Metrics.Pushgateway)
	c.Logging.Level = getenv("LEMMA_REPORT_LOG_LEVEL", c.Logging.Level)
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// Validate checks the configuration without touching the source.
func (c *Config) Validate() error {
	switch c.Source.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return invalid("unknown source driver %q", c.Source.Driver)
	}
	if c.Source.DSN == "" {
		return invalid("source.dsn is required")
	}
	if c.Report.Limit <= 0 {
		return invalid("report.limit must be positive, got %d", c.Report.Limit)
	}
	if c.Report.ChartLimit < 0 {
		return invalid("report.chart_limit must not be negative, got %d", c.Report.ChartLimit)
	}
	if _, err := analytics.ParseDimensions(c.Report.Dimensions); err != nil {
		return err
	}
	if len(c.Report.Categories) == 0 {
		return invalid("at least one category is required")
	}
	seen := make(map[string]bool)
	for _, cat := range c.CategorySpecs() {
		if seen[cat.Name] {
			return invalid("duplicate category %q", cat.Name)
		}
		seen[cat.Name] = true
		if err := cat.Validate(); err != nil {
			return err
		}
	}
	if _, err := c.WindowSpecs(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.SourceLocation(); err != nil {
		return err
	}
	if c.Publish.Output == "" {
		return invalid("publish.output is required")
	}
	return nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), internalerr.ErrInvalidConfig)
}

// CategorySpecs converts the configured categories. A category without tags
// is the single POS tag of the same name.
func (c *Config) CategorySpecs() []category.Spec {
	specs := make([]category.Spec, 0, len(c.Report.Categories))
	for _, cat := range c.Report.Categories {
		if len(cat.Tags) == 0 {
			specs = append(specs, category.Single(cat.Name))
			continue
		}
		specs = append(specs, category.Union(cat.Name, cat.Tags...))
	}
	return specs
}

// WindowSpecs converts the configured windows, parsing their spans.
func (c *Config) WindowSpecs() ([]window.Spec, error) {
	specs := make([]window.Spec, 0, len(c.Report.Windows))
	for _, w := range c.Report.Windows {
		span, err := ParseSpan(w.Span)
		if err != nil {
			return nil, invalid("window %s: %v", w.Name, err)
		}
		specs = append(specs, window.Spec{Name: w.Name, Span: span})
	}
	return specs, nil
}

// Location resolves report.timezone; empty means UTC.
func (c *Config) Location() (*time.Location, error) {
	return loadZone("report.timezone", c.Report.Timezone)
}

// SourceLocation resolves source.timezone, the zone of zone-less stored
// timestamps; empty means UTC.
func (c *Config) SourceLocation() (*time.Location, error) {
	return loadZone("source.timezone", c.Source.Timezone)
}

func loadZone(key, name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, invalid("%s: %v", key, err)
	}
	return loc, nil
}

// ParseSpan accepts a Go duration ("24h") or whole days ("7d").
// The empty string is an unbounded span.
func ParseSpan(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid day span %q", s)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("span must be positive, got %s", s)
	}
	return d, nil
}

func formatSpan(d time.Duration) string {
	switch {
	case d == 0:
		return ""
	case d%(24*time.Hour) == 0:
		return strconv.Itoa(int(d/(24*time.Hour))) + "d"
	default:
		return d.String()
	}
}
