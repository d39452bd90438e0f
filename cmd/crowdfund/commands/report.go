package commands

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"crowdfund-scraper/internal/app"
	"crowdfund-scraper/internal/storage"
)

func newTable(out io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(out)
	return t
}

func formatMoney(currency string, amount float64) string {
	return fmt.Sprintf("%s %.2f", currency, amount)
}

func renderSource(out io.Writer, currency string, minDays int, r app.SourceReport) {
	fmt.Fprintf(out, "%s %s: %d scraped, %d in store\n",
		text.FgGreen.Sprint("✓"), r.Source, r.Scraped, r.Stored)
	if r.Stats != nil && r.Stats.StoppedReason != "" {
		fmt.Fprintf(out, "  %s\n", text.FgHiBlack.Sprint(r.Stats.StoppedReason))
	}
	renderAggregates(out, currency, minDays, r.InProcess, r.Native)
}

func renderAggregates(out io.Writer, currency string, minDays int, results ...storage.AggregateResult) {
	t := newTable(out)
	t.SetTitle(fmt.Sprintf("Raised by campaigns with at least %d days left", minDays))
	t.AppendHeader(table.Row{"Method", "Sum", "Elapsed"})
	for _, res := range results {
		t.AppendRow(table.Row{res.Method, formatMoney(currency, res.Sum), res.Elapsed.String()})
	}
	t.Render()
}

func renderRun(out io.Writer, currency string, report *app.RunReport) {
	fmt.Fprintf(out, "Run %s: cleared %d stale records\n", report.RunID, report.Cleared)
	for _, src := range report.Sources {
		renderSource(out, currency, report.MinDaysLeft, src)
	}
}
