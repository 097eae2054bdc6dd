package render

import (
	"strconv"

	"github.com/cognicore/lemmareport/pkg/lemmareport/report"
)

// palette is cycled per bar; stacked segments of one lemma share its colour.
var palette = []string{
	"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd",
	"#8c564b", "#e377c2", "#7f7f7f", "#bcbd22", "#17becf",
}

type geometry struct {
	plotHeight float64
	barWidth   float64
	gap        float64
	left       float64
	top        float64
	bottom     float64
	minWidth   float64
}

func defaultGeometry() geometry {
	return geometry{
		plotHeight: 320,
		barWidth:   32,
		gap:        16,
		left:       48,
		top:        24,
		bottom:     110,
		minWidth:   480,
	}
}

type chartView struct {
	Width     string
	Height    string
	AxisX1    string
	AxisX2    string
	AxisY     string
	PlotTop   string
	MaxLabel  string
	Bars      []barView
	Watermark watermarkView
}

type barView struct {
	Label  string
	Total  int64
	LabelX string
	LabelY string
	Segs   []segView
}

type segView struct {
	X, Y, W, H string
	Fill       string
	Title      string
}

type watermarkView struct {
	Text string
	X, Y string
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// layout computes every coordinate up front so the template only prints
// strings and the output is byte-stable.
func (g geometry) layout(c report.Chart, watermark string) chartView {
	width := g.left + float64(len(c.Bars))*(g.barWidth+g.gap) + g.gap
	if width < g.minWidth {
		width = g.minWidth
	}
	height := g.top + g.plotHeight + g.bottom
	baseline := g.top + g.plotHeight

	v := chartView{
		Width:    px(width),
		Height:   px(height),
		AxisX1:   px(g.left),
		AxisX2:   px(width - g.gap),
		AxisY:    px(baseline),
		PlotTop:  px(g.top),
		MaxLabel: strconv.FormatInt(c.Max(), 10),
		Bars:     make([]barView, 0, len(c.Bars)),
	}
	if watermark != "" {
		v.Watermark = watermarkView{Text: watermark, X: px(width / 2), Y: px(g.top + g.plotHeight/2)}
	}

	max := c.Max()
	for i, b := range c.Bars {
		x := g.left + g.gap + float64(i)*(g.barWidth+g.gap)
		bv := barView{
			Label:  b.Label,
			Total:  b.Total,
			LabelX: px(x + g.barWidth/2),
			LabelY: px(baseline + 12),
		}
		fill := palette[i%len(palette)]
		y := baseline
		for _, s := range b.Segments {
			h := 0.0
			if max > 0 {
				h = float64(s.Value) / float64(max) * g.plotHeight
			}
			y -= h
			bv.Segs = append(bv.Segs, segView{
				X:     px(x),
				Y:     px(y),
				W:     px(g.barWidth),
				H:     px(h),
				Fill:  fill,
				Title: b.Label + " · " + s.Label + ": " + strconv.FormatInt(s.Value, 10),
			})
		}
		v.Bars = append(v.Bars, bv)
	}
	return v
}
