package analytics

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/stoplist"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// Dimension names accepted in configuration.
const (
	DimLemma   = "lemma"
	DimPOS     = "pos"
	DimSurface = "surface"
)

// Dimensions selects the grouping key. Lemma and POS are always part of it.
type Dimensions struct {
	Surface bool
}

// ParseDimensions validates configured dimension names.
func ParseDimensions(names []string) (Dimensions, error) {
	var d Dimensions
	for _, n := range names {
		switch strings.ToLower(strings.TrimSpace(n)) {
		case DimLemma, DimPOS:
		case DimSurface:
			d.Surface = true
		default:
			return Dimensions{}, fmt.Errorf("unknown dimension %q: %w", n, internalerr.ErrInvalidConfig)
		}
	}
	return d, nil
}

// Names lists the active dimensions in canonical order.
func (d Dimensions) Names() []string {
	names := []string{DimLemma, DimPOS}
	if d.Surface {
		names = append(names, DimSurface)
	}
	return names
}

// Row is one group of the aggregation: how many records share the key.
// Category holds the POS tag until a combiner relabels it.
type Row struct {
	Lemma    string
	Category string
	Surface  string
	Count    int64
}

// Options controls which records are counted and how they are grouped.
type Options struct {
	Dimensions Dimensions
	Window     window.Range
	// Allow restricts counting to these POS tags; empty allows every tag.
	Allow []string
	Stops *stoplist.Manager
}

// Aggregator groups token records into frequency rows.
type Aggregator struct {
	dims  Dimensions
	rng   window.Range
	allow map[string]struct{}
	stops *stoplist.Manager
}

// NewAggregator creates an aggregator for one (window, allow-list) combination.
func NewAggregator(opts Options) *Aggregator {
	a := &Aggregator{
		dims:  opts.Dimensions,
		rng:   opts.Window,
		stops: opts.Stops,
	}
	if len(opts.Allow) > 0 {
		a.allow = make(map[string]struct{}, len(opts.Allow))
		for _, tag := range opts.Allow {
			a.allow[token.NormalizePOS(tag)] = struct{}{}
		}
	}
	return a
}

type key struct {
	lemma   string
	pos     string
	surface string
}

// Aggregate counts records per grouping key. Records outside the window, with
// a POS tag outside the allow-list, or with a stop lemma are skipped before
// grouping. The result is ordered by category, lemma, surface.
func (a *Aggregator) Aggregate(records []token.Record) ([]Row, error) {
	counts := make(map[key]int64)
	for i, rec := range records {
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if !a.rng.Contains(rec.Timestamp) {
			continue
		}
		pos := token.NormalizePOS(rec.POS)
		if a.allow != nil {
			if _, ok := a.allow[pos]; !ok {
				continue
			}
		}
		lemma := normalize(rec.Lemma)
		if a.stops.IsStop(lemma) {
			continue
		}
		k := key{lemma: lemma, pos: pos}
		if a.dims.Surface {
			k.surface = normalize(rec.Surface)
		}
		counts[k]++
	}

	rows := make([]Row, 0, len(counts))
	for k, c := range counts {
		rows = append(rows, Row{Lemma: k.lemma, Category: k.pos, Surface: k.surface, Count: c})
	}
	SortRows(rows)
	return rows, nil
}

// Aggregate is a convenience wrapper around NewAggregator(opts).Aggregate.
func Aggregate(records []token.Record, opts Options) ([]Row, error) {
	return NewAggregator(opts).Aggregate(records)
}

// SortRows orders rows by category, lemma, surface.
func SortRows(rows []Row) {
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Category != rows[j].Category {
			return rows[i].Category < rows[j].Category
		}
		if rows[i].Lemma != rows[j].Lemma {
			return rows[i].Lemma < rows[j].Lemma
		}
		return rows[i].Surface < rows[j].Surface
	})
}

// Total sums the counts of rows.
func Total(rows []Row) int64 {
	var n int64
	for _, r := range rows {
		n += r.Count
	}
	return n
}

// normalize maps canonically equivalent spellings ("å" precomposed or as
// a + combining ring) onto one NFC key.
func normalize(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
