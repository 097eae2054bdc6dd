package rank

import (
	"fmt"
	"sort"

	"github.com/cognicore/lemmareport/pkg/lemmareport/analytics"
	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

// FormCount is the share of one surface form within a ranked lemma.
type FormCount struct {
	Form  string
	Count int64
}

// Entry is a lemma's total within a category, with its surface-form breakdown.
type Entry struct {
	Lemma    string
	Category string
	Count    int64
	Forms    []FormCount
}

// RankedSet is an ordered, bounded list of entries: count descending, then
// lemma ascending.
type RankedSet []Entry

// Fold collapses surface-form rows into one entry per (lemma, category).
// Rows without a surface form contribute to the total only.
func Fold(rows []analytics.Row) []Entry {
	type key struct{ lemma, category string }
	index := make(map[key]int)
	var entries []Entry
	for _, r := range rows {
		k := key{r.Lemma, r.Category}
		i, ok := index[k]
		if !ok {
			i = len(entries)
			index[k] = i
			entries = append(entries, Entry{Lemma: r.Lemma, Category: r.Category})
		}
		entries[i].Count += r.Count
		if r.Surface != "" {
			entries[i].Forms = addForm(entries[i].Forms, r.Surface, r.Count)
		}
	}
	for i := range entries {
		sortForms(entries[i].Forms)
	}
	return entries
}

func addForm(forms []FormCount, form string, n int64) []FormCount {
	for i := range forms {
		if forms[i].Form == form {
			forms[i].Count += n
			return forms
		}
	}
	return append(forms, FormCount{Form: form, Count: n})
}

func sortForms(forms []FormCount) {
	sort.Slice(forms, func(i, j int) bool {
		if forms[i].Count != forms[j].Count {
			return forms[i].Count > forms[j].Count
		}
		return forms[i].Form < forms[j].Form
	})
}

// Less is the ranking order: count descending, lemma ascending, then
// category ascending so that the order is total.
func Less(a, b Entry) bool {
	if a.Count != b.Count {
		return a.Count > b.Count
	}
	if a.Lemma != b.Lemma {
		return a.Lemma < b.Lemma
	}
	return a.Category < b.Category
}

// SelectTopN ranks entries and keeps the first n. Fewer than n entries are
// returned as-is, never padded. The input slice is not modified.
func SelectTopN(entries []Entry, n int) (RankedSet, error) {
	if n <= 0 {
		return nil, fmt.Errorf("top-n limit %d: %w", n, internalerr.ErrInvalidInput)
	}
	sorted := make([]Entry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return Less(sorted[i], sorted[j]) })

	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return RankedSet(sorted), nil
}

// Head returns at most n leading entries of the set.
func (s RankedSet) Head(n int) RankedSet {
	if n < 0 || n >= len(s) {
		return s
	}
	return s[:n]
}

// Total sums the entry counts.
func (s RankedSet) Total() int64 {
	var n int64
	for _, e := range s {
		n += e.Count
	}
	return n
}
