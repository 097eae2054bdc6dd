package report

import (
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/category"
	"github.com/cognicore/lemmareport/pkg/lemmareport/rank"
	"github.com/cognicore/lemmareport/pkg/lemmareport/window"
)

// Document is the complete, ordered report handed to the renderer.
type Document struct {
	Title       string
	GeneratedAt time.Time
	Watermark   string
	Sections    []Section
	// RecordsRead is the number of records fetched over all windows.
	RecordsRead int64
}

// Section is the result for one (category, window) pair.
type Section struct {
	Category category.Spec
	Window   window.Bound
	// Records is how many records passed the filters before ranking.
	Records int64
	Table   rank.RankedSet
	Chart   Chart
}

// Empty reports whether the section has nothing to show.
func (s Section) Empty() bool {
	return len(s.Table) == 0
}

// Chart is a bar chart derived from a section's table: one bar per lemma in
// table order, stacked by surface form when forms are known.
type Chart struct {
	Bars []Bar
}

// Bar is one lemma.
type Bar struct {
	Label    string
	Total    int64
	Segments []Segment
}

// Segment is one stacked part of a bar.
type Segment struct {
	Label string
	Value int64
}

// Max returns the tallest bar total.
func (c Chart) Max() int64 {
	var m int64
	for _, b := range c.Bars {
		if b.Total > m {
			m = b.Total
		}
	}
	return m
}

// ChartFrom derives a chart from the first limit entries of table.
// A limit <= 0 keeps every entry.
func ChartFrom(table rank.RankedSet, limit int) Chart {
	head := table
	if limit > 0 {
		head = table.Head(limit)
	}
	c := Chart{Bars: make([]Bar, 0, len(head))}
	for _, e := range head {
		bar := Bar{Label: e.Lemma, Total: e.Count}
		if len(e.Forms) == 0 {
			bar.Segments = []Segment{{Label: e.Lemma, Value: e.Count}}
		} else {
			bar.Segments = make([]Segment, len(e.Forms))
			for i, f := range e.Forms {
				bar.Segments[i] = Segment{Label: f.Form, Value: f.Count}
			}
		}
		c.Bars = append(c.Bars, bar)
	}
	return c
}
