package learnedleague

import (
	"ll-analytics/lib/htmlutil"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

// scoreRegex matches "4(4)  5(4)", a forfeited side shows F instead of a score.
var scoreRegex = regexp.MustCompile(`(-?\d+|F)\s*\((\d+)\)\s+(-?\d+|F)\s*\((\d+)\)`)
var matchIdRegex = regexp.MustCompile(`[?&]id=(\d+)`)

func scoreOrNil(s string) *int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &n
}

func matchIdFromRow(row *goquery.Selection) *int64 {
	var id *int64
	row.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		match := matchIdRegex.FindStringSubmatch(a.AttrOr("href", ""))
		if len(match) < 2 {
			return true
		}
		n, err := strconv.ParseInt(match[1], 10, 64)
		if err != nil {
			return true
		}
		id = &n
		return false
	})
	return id
}

// scoreText prefers the cell holding the score over the whole row so
// usernames ending in digits cannot be read as scores.
func scoreText(row *goquery.Selection) []string {
	for _, cell := range rowCells(row) {
		match := scoreRegex.FindStringSubmatch(htmlutil.Text(cell))
		if match != nil {
			return match
		}
	}
	return scoreRegex.FindStringSubmatch(htmlutil.Text(row))
}

// ParseMatchRoster reads every match of a rundle's match day. Rows whose
// score cannot be read are kept with nil scores.
func ParseMatchRoster(doc *goquery.Document) ([]MatchResult, bool) {
	var results []MatchResult
	seen := map[[2]string]bool{}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		// nested tables repeat their rows in the parent
		if row.Find("tr").Length() > 0 {
			return
		}
		anchors := profileAnchors(row)
		if anchors.Length() < 2 {
			return
		}
		p1, ok1 := playerFromAnchor(anchors.Eq(0))
		p2, ok2 := playerFromAnchor(anchors.Eq(1))
		if !ok1 || !ok2 || p1.Username == p2.Username {
			return
		}
		key := [2]string{p1.Username, p2.Username}
		if seen[key] {
			return
		}
		seen[key] = true

		result := MatchResult{
			Player1:   p1,
			Player2:   p2,
			LLMatchID: matchIdFromRow(row),
		}
		if match := scoreText(row); len(match) == 5 {
			result.Player1Score = scoreOrNil(match[1])
			result.Player1TCA = scoreOrNil(match[2])
			result.Player2Score = scoreOrNil(match[3])
			result.Player2TCA = scoreOrNil(match[4])
		}
		results = append(results, result)
	})

	return results, len(results) > 0
}
