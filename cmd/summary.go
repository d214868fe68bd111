package cmd

import (
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/JakeFAU/clubs-crawler/internal/crawler"
)

// renderSummary prints one row per letter plus run totals.
func renderSummary(w io.Writer, result crawler.RunResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Run " + displayRunID(result.RunID))
	t.AppendHeader(table.Row{"Letter", "URL", "Clubs", "Partial", "Unreachable", "Duration"})
	partial, unreachable := 0, 0
	for _, p := range result.Partitions {
		partial += p.Partial
		unreachable += p.Unreachable
		t.AppendRow(table.Row{strings.ToUpper(p.Letter), p.URL, p.Stubs, p.Partial, p.Unreachable, p.Duration.Round(time.Millisecond)})
	}
	t.AppendFooter(table.Row{"Total", "", result.TotalStubs(), partial, unreachable, result.Duration.Round(time.Millisecond)})
	t.AppendFooter(table.Row{"Avg / club", "", "", "", "", result.AveragePerClub().Round(time.Millisecond)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 4, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 5, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 6, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
}

func displayRunID(id string) string {
	if id == "" {
		return "-"
	}
	return id
}
