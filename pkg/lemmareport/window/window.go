// Package window resolves named time windows against a single reference time.
package window

import (
	"fmt"
	"strings"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

// Well-known window names.
const (
	AllTime = "ALL_TIME"
	Last24H = "LAST_24H"
	Last7D  = "LAST_7D"
)

// Spec is a configured window. A zero Span means unbounded.
type Spec struct {
	Name string
	Span time.Duration
}

// Defaults returns the all-time, last-24h and last-7-days windows in that order.
func Defaults() []Spec {
	return []Spec{
		{Name: AllTime},
		{Name: Last24H, Span: 24 * time.Hour},
		{Name: Last7D, Span: 7 * 24 * time.Hour},
	}
}

// Range is a timestamp range handed to a token source.
// A zero From or To leaves that side open.
type Range struct {
	From time.Time
	To   time.Time
}

// Unbounded reports whether the range places no constraint at all.
func (r Range) Unbounded() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// Contains reports whether t lies within the range, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	if !r.From.IsZero() && t.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && t.After(r.To) {
		return false
	}
	return true
}

// Bound is a window resolved against a reference time. Bounds are computed
// once per run and never re-evaluated.
type Bound struct {
	Name string
	Range
}

// Label is a human-readable description used in report headings.
func (b Bound) Label() string {
	switch b.Name {
	case AllTime:
		return "all time"
	case Last24H:
		return "last 24 hours"
	case Last7D:
		return "last 7 days"
	}
	return strings.ToLower(strings.ReplaceAll(b.Name, "_", " "))
}

// Resolve fixes every spec against now.
func Resolve(specs []Spec, now time.Time) ([]Bound, error) {
	if len(specs) == 0 {
		return nil, fmt.Errorf("no windows configured: %w", internalerr.ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(specs))
	bounds := make([]Bound, 0, len(specs))
	for _, s := range specs {
		if s.Name == "" {
			return nil, fmt.Errorf("window without name: %w", internalerr.ErrInvalidConfig)
		}
		if s.Span < 0 {
			return nil, fmt.Errorf("window %s: negative span: %w", s.Name, internalerr.ErrInvalidConfig)
		}
		if _, dup := seen[s.Name]; dup {
			return nil, fmt.Errorf("window %s declared twice: %w", s.Name, internalerr.ErrInvalidConfig)
		}
		seen[s.Name] = struct{}{}

		b := Bound{Name: s.Name}
		if s.Span > 0 {
			b.From = now.Add(-s.Span)
			b.To = now
		}
		bounds = append(bounds, b)
	}
	return bounds, nil
}
