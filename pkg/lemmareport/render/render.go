// Package render turns a report.Document into HTML: a ranked table and an
// inline SVG bar chart per section.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/cognicore/lemmareport/pkg/lemmareport/report"
)

// TimestampLayout is the day-month-year format used for the generation time.
const TimestampLayout = "02-01-2006 15:04:05"

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// Renderer is stateless after construction; the same document always
// renders to the same bytes.
type Renderer struct {
	tmpl *template.Template
	loc  *time.Location
	geo  geometry
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLocation renders the generation time in loc instead of UTC.
func WithLocation(loc *time.Location) Option {
	return func(r *Renderer) {
		if loc != nil {
			r.loc = loc
		}
	}
}

// WithChartHeight sets the plot height of every chart in pixels.
func WithChartHeight(px int) Option {
	return func(r *Renderer) {
		if px > 0 {
			r.geo.plotHeight = float64(px)
		}
	}
}

// New parses the embedded templates.
func New(opts ...Option) (*Renderer, error) {
	tmpl, err := template.New("report").Funcs(template.FuncMap{
		"add1": func(i int) int { return i + 1 },
	}).ParseFS(templateFS, "templates/*.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r := &Renderer{tmpl: tmpl, loc: time.UTC, geo: defaultGeometry()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Fragment renders the dynamic section only, for injection into a page.
func (r *Renderer) Fragment(doc *report.Document) ([]byte, error) {
	return r.execute("fragment", doc)
}

// Page renders a complete standalone HTML document.
func (r *Renderer) Page(doc *report.Document) ([]byte, error) {
	return r.execute("page", doc)
}

func (r *Renderer) execute(name string, doc *report.Document) ([]byte, error) {
	if doc == nil {
		return nil, fmt.Errorf("render %s: nil document", name)
	}
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name+".html.tmpl", r.view(doc)); err != nil {
		return nil, fmt.Errorf("render %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

type docView struct {
	Title     string
	Generated string
	Sections  []sectionView
}

type sectionView struct {
	ID       string
	Heading  string
	Category string
	Window   string
	Records  int64
	Rows     []rowView
	Chart    chartView
}

type rowView struct {
	Lemma string
	Count int64
	Forms string
}

func (r *Renderer) view(doc *report.Document) docView {
	title := doc.Title
	if title == "" {
		title = "Lemma frequencies"
	}
	v := docView{
		Title:     title,
		Generated: doc.GeneratedAt.In(r.loc).Format(TimestampLayout),
		Sections:  make([]sectionView, 0, len(doc.Sections)),
	}
	for _, s := range doc.Sections {
		sv := sectionView{
			ID:       strings.ToLower(s.Category.Name + "-" + s.Window.Name),
			Heading:  fmt.Sprintf("Top %s lemmas, %s", s.Category.Label(), s.Window.Label()),
			Category: s.Category.Name,
			Window:   s.Window.Name,
			Records:  s.Records,
			Rows:     make([]rowView, 0, len(s.Table)),
			Chart:    r.geo.layout(s.Chart, doc.Watermark),
		}
		for _, e := range s.Table {
			forms := make([]string, len(e.Forms))
			for i, f := range e.Forms {
				forms[i] = fmt.Sprintf("%s (%d)", f.Form, f.Count)
			}
			sv.Rows = append(sv.Rows, rowView{Lemma: e.Lemma, Count: e.Count, Forms: strings.Join(forms, ", ")})
		}
		v.Sections = append(v.Sections, sv)
	}
	return v
}
