package learnedleague

import (
	"github.com/PuerkitoBio/goquery"
)

// ParseRundleGrid reads the per-question results of every rundle member for
// one match day. Cells without a correctness mark are left out.
func ParseRundleGrid(doc *goquery.Document) (RundleGrid, bool) {
	var table questionTable
	found := false
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Find("table").Length() > 0 {
			return true
		}
		parsed := parseQuestionTable(sel)
		if len(parsed.players) == 0 {
			return true
		}
		table = parsed
		found = true
		return false
	})
	if !found {
		return RundleGrid{}, false
	}

	grid := RundleGrid{}
	for _, n := range table.numbers {
		category, raw := table.category(n)
		grid.Columns = append(grid.Columns, GridColumn{
			Number:           n,
			Category:         category,
			RawCategory:      raw,
			RundleCorrectPct: table.pcts[n],
		})
	}
	for _, row := range table.players {
		gridRow := GridRow{Player: row.player}
		for _, n := range table.numbers {
			cell := table.cell(row, n)
			if cell == nil {
				continue
			}
			correct := cellCorrect(cell)
			if correct == nil {
				continue
			}
			gridRow.Cells = append(gridRow.Cells, GridCell{
				QuestionNumber: n,
				Correct:        *correct,
				DefensePoints:  intOrNil(cell.Text()),
			})
		}
		if len(gridRow.Cells) > 0 {
			grid.Rows = append(grid.Rows, gridRow)
		}
	}

	return grid, len(grid.Rows) > 0
}
