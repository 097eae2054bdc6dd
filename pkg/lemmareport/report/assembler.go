package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/analytics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/category"
	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/rank"
	"github.com/cognicore/lemmareport/pkg/lemmareport/stoplist"
	"github.com/cognicore/lemmareport/pkg/lemmareport/store"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// Default cut-offs, as in the original report: 50 table rows, 15 chart bars.
const (
	DefaultLimit      = 50
	DefaultChartLimit = 15
)

// Options configures an Assembler.
type Options struct {
	Title      string
	Watermark  string
	Categories []category.Spec
	Windows    []window.Spec
	Dimensions analytics.Dimensions
	Limit      int
	ChartLimit int
	Stops      *stoplist.Manager
	Logger     *slog.Logger
}

// Assembler runs aggregation, combination and ranking for every configured
// (category, window) pair and collects the results into one Document.
type Assembler struct {
	source store.Source
	opts   Options
	log    *slog.Logger
}

// NewAssembler validates opts and binds them to a token source.
func NewAssembler(source store.Source, opts Options) (*Assembler, error) {
	if source == nil {
		return nil, fmt.Errorf("nil token source: %w", internalerr.ErrInvalidConfig)
	}
	if len(opts.Categories) == 0 {
		return nil, fmt.Errorf("no categories configured: %w", internalerr.ErrInvalidConfig)
	}
	for _, c := range opts.Categories {
		if err := c.Validate(); err != nil {
			return nil, err
		}
	}
	if opts.Limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d: %w", opts.Limit, internalerr.ErrInvalidConfig)
	}
	if opts.ChartLimit <= 0 || opts.ChartLimit > opts.Limit {
		opts.ChartLimit = opts.Limit
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Assembler{source: source, opts: opts, log: log}, nil
}

// Assemble builds the document for the given reference time. Window bounds
// are resolved once from now. Any source failure aborts the whole document.
func (a *Assembler) Assemble(ctx context.Context, now time.Time) (*Document, error) {
	bounds, err := window.Resolve(a.opts.Windows, now)
	if err != nil {
		return nil, err
	}

	tags := category.AllTags(a.opts.Categories)
	fetched := make(map[string][]token.Record, len(bounds))
	doc := &Document{
		Title:       a.opts.Title,
		GeneratedAt: now,
		Watermark:   a.opts.Watermark,
		Sections:    make([]Section, 0, len(a.opts.Categories)*len(bounds)),
	}

	for _, spec := range a.opts.Categories {
		for _, b := range bounds {
			records, ok := fetched[b.Name]
			if !ok {
				records, err = a.fetch(ctx, b, tags)
				if err != nil {
					return nil, err
				}
				fetched[b.Name] = records
				doc.RecordsRead += int64(len(records))
			}

			sec, err := a.section(spec, b, records)
			if err != nil {
				return nil, fmt.Errorf("section %s/%s: %w", spec.Name, b.Name, err)
			}
			if sec.Empty() {
				a.log.Info("empty section", "category", spec.Name, "window", b.Name)
			}
			doc.Sections = append(doc.Sections, sec)
		}
	}
	return doc, nil
}

func (a *Assembler) fetch(ctx context.Context, b window.Bound, tags []string) ([]token.Record, error) {
	records, err := a.source.Query(ctx, b.Range, tags)
	if err != nil {
		if errors.Is(err, internalerr.ErrMissingField) {
			return nil, fmt.Errorf("query window %s: %w", b.Name, err)
		}
		return nil, fmt.Errorf("query window %s: %w: %w", b.Name, internalerr.ErrSourceUnavailable, err)
	}
	a.log.Debug("fetched tokens", "window", b.Name, "records", len(records))
	return records, nil
}

func (a *Assembler) section(spec category.Spec, b window.Bound, records []token.Record) (Section, error) {
	rows, err := analytics.Aggregate(records, analytics.Options{
		Dimensions: a.opts.Dimensions,
		Window:     b.Range,
		Allow:      spec.Tags,
		Stops:      a.opts.Stops,
	})
	if err != nil {
		return Section{}, err
	}
	combined := category.Combine(rows, spec)
	table, err := rank.SelectTopN(rank.Fold(combined), a.opts.Limit)
	if err != nil {
		return Section{}, err
	}
	return Section{
		Category: spec,
		Window:   b,
		Records:  analytics.Total(combined),
		Table:    table,
		Chart:    ChartFrom(table, a.opts.ChartLimit),
	}, nil
}
