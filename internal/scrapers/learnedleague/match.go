package learnedleague

import (
	"github.com/PuerkitoBio/goquery"
)

// ParseMatchDetail reads the single match page. Each player row carries a
// correctness class per question and the defense points that player
// assigned to it. ok is false unless both players were found.
func ParseMatchDetail(doc *goquery.Document) (MatchDetail, bool) {
	var table questionTable
	found := false
	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if sel.Find("table").Length() > 0 {
			return true
		}
		parsed := parseQuestionTable(sel)
		if len(parsed.players) < 2 {
			return true
		}
		table = parsed
		found = true
		return false
	})
	if !found {
		return MatchDetail{}, false
	}

	p1 := table.players[0]
	p2 := table.players[1]
	detail := MatchDetail{Player1: p1.player, Player2: p2.player}
	for _, n := range table.numbers {
		category, raw := table.category(n)
		result := MatchQuestionResult{
			Number:           n,
			Category:         category,
			RawCategory:      raw,
			RundleCorrectPct: table.pcts[n],
		}
		if cell := table.cell(p1, n); cell != nil {
			result.Player1Correct = cellCorrect(cell)
			result.Player1Defense = intOrNil(cell.Text())
		}
		if cell := table.cell(p2, n); cell != nil {
			result.Player2Correct = cellCorrect(cell)
			result.Player2Defense = intOrNil(cell.Text())
		}
		if result.Player1Correct == nil && result.Player2Correct == nil {
			continue
		}
		detail.Questions = append(detail.Questions, result)
	}

	return detail, len(detail.Questions) > 0
}
