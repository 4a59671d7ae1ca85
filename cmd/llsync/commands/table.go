package commands

import (
	"io"
	"ll-analytics/services/leaguesync"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

var output io.Writer = os.Stdout

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(output)
	return t
}

func printResult(result leaguesync.RunResult) {
	t := newTable()
	t.SetTitle("run finished in %s", result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond))
	t.AppendHeader(table.Row{"Stage", "Written", "Skipped", "Errors"})
	for _, stage := range leaguesync.StageOrder {
		t.AppendRow(table.Row{
			stage,
			result.Counts[stage],
			result.Skipped[stage],
			len(result.StageErrors(stage)),
		})
	}
	t.AppendFooter(table.Row{"", "", "Total", result.ErrorCount()})
	t.Render()

	if result.ErrorCount() == 0 {
		return
	}
	printErrors(result.Errors)
}

func printErrors(errs []leaguesync.RunError) {
	t := newTable()
	t.AppendHeader(table.Row{"Stage", "Kind", "Detail"})
	for _, e := range errs {
		t.AppendRow(table.Row{e.Stage, e.Kind, e.Detail})
	}
	t.Render()
}
