// Package category describes reporting buckets: single POS tags or named
// unions of tags such as VERB_AUX.
package category

import (
	"fmt"
	"strings"

	"github.com/cognicore/lemmareport/pkg/lemmareport/analytics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
	"github.com/cognicore/lemmareport/pkg/lemmareport/token"
)

// Spec is a configured category. A spec with a single tag named after that
// tag is a plain category; anything else is a union.
type Spec struct {
	Name string
	Tags []string
}

// Single returns the spec for one POS tag.
func Single(tag string) Spec {
	tag = token.NormalizePOS(tag)
	return Spec{Name: tag, Tags: []string{tag}}
}

// Union returns a named union of tags.
func Union(name string, tags ...string) Spec {
	norm := make([]string, len(tags))
	for i, t := range tags {
		norm[i] = token.NormalizePOS(t)
	}
	return Spec{Name: name, Tags: norm}
}

// Defaults mirrors the original report: verbs merged with auxiliaries, then
// nouns, adpositions and adverbs on their own.
func Defaults() []Spec {
	return []Spec{
		Union("VERB_AUX", token.VERB, token.AUX),
		Single(token.NOUN),
		Single(token.ADP),
		Single(token.ADV),
	}
}

// IsUnion reports whether rows must be merged across member tags.
func (s Spec) IsUnion() bool {
	return !(len(s.Tags) == 1 && s.Tags[0] == s.Name)
}

// Has reports whether tag belongs to the spec.
func (s Spec) Has(tag string) bool {
	tag = token.NormalizePOS(tag)
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Label is the heading text, e.g. "VERB + AUX".
func (s Spec) Label() string {
	if !s.IsUnion() {
		return s.Name
	}
	return strings.Join(s.Tags, " + ")
}

// Validate checks a spec in isolation.
func (s Spec) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("category without name: %w", internalerr.ErrInvalidConfig)
	}
	if len(s.Tags) == 0 {
		return fmt.Errorf("category %s has no tags: %w", s.Name, internalerr.ErrInvalidConfig)
	}
	seen := make(map[string]struct{}, len(s.Tags))
	for _, t := range s.Tags {
		if t == "" {
			return fmt.Errorf("category %s has an empty tag: %w", s.Name, internalerr.ErrInvalidConfig)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("category %s lists %s twice: %w", s.Name, t, internalerr.ErrInvalidConfig)
		}
		seen[t] = struct{}{}
	}
	return nil
}

// AllTags returns the distinct tags of specs in first-seen order.
func AllTags(specs []Spec) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, s := range specs {
		for _, t := range s.Tags {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// Combine merges rows into the category described by spec.
//
// For a single tag the rows are returned unchanged. For a union the rows of
// member tags are re-grouped by lemma (and surface form, when present),
// summed, and relabelled with the union name; rows of other tags are
// dropped. The total count over member tags is preserved.
func Combine(rows []analytics.Row, spec Spec) []analytics.Row {
	if !spec.IsUnion() {
		return rows
	}

	type key struct{ lemma, surface string }
	sums := make(map[key]int64)
	for _, r := range rows {
		if !spec.Has(r.Category) {
			continue
		}
		sums[key{r.Lemma, r.Surface}] += r.Count
	}

	out := make([]analytics.Row, 0, len(sums))
	for k, c := range sums {
		out = append(out, analytics.Row{Lemma: k.lemma, Category: spec.Name, Surface: k.surface, Count: c})
	}
	analytics.SortRows(out)
	return out
}
