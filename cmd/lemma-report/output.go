package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/cognicore/lemmareport/pkg/lemmareport/report"
)

// printer writes status lines, colored unless disabled.
type printer struct {
	out       io.Writer
	useColors bool
}

func newPrinter(out io.Writer, noColor bool) *printer {
	use := !noColor
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		use = false
	}
	if os.Getenv("TERM") == "dumb" {
		use = false
	}
	return &printer{out: out, useColors: use}
}

func (p *printer) success(format string, args ...any) {
	if p.useColors {
		color.New(color.FgGreen).Fprintf(p.out, "✓ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[OK] "+format+"\n", args...)
}

func (p *printer) failure(format string, args ...any) {
	if p.useColors {
		color.New(color.FgRed).Fprintf(p.out, "✗ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[ERROR] "+format+"\n", args...)
}

func (p *printer) warning(format string, args ...any) {
	if p.useColors {
		color.New(color.FgYellow).Fprintf(p.out, "⚠ "+format+"\n", args...)
		return
	}
	fmt.Fprintf(p.out, "[WARN] "+format+"\n", args...)
}

// writeSummary prints one row per section of doc.
func writeSummary(w io.Writer, doc *report.Document) {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.On},
				Alignment:  tw.CellAlignment{Global: tw.AlignLeft},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Borders: tw.BorderNone,
			Settings: tw.Settings{
				Separators: tw.Separators{ShowHeader: tw.Off},
			},
		}),
	)

	rows := make([][]string, 0, len(doc.Sections))
	for _, s := range doc.Sections {
		top := "-"
		if !s.Empty() {
			top = fmt.Sprintf("%s (%d)", s.Table[0].Lemma, s.Table[0].Count)
		}
		rows = append(rows, []string{
			s.Category.Name,
			s.Window.Name,
			strconv.FormatInt(s.Records, 10),
			strconv.Itoa(len(s.Table)),
			top,
		})
	}
	table.Header([]string{"category", "window", "records", "entries", "top lemma"})
	table.Bulk(rows)
	table.Render()
}
