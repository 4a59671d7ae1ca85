package learnedleague

import (
	"ll-analytics/internal/db"
	"ll-analytics/lib/htmlutil"
	"ll-analytics/lib/textutil"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var questionRegex = regexp.MustCompile(`(?s)^Q(\d+)\.\s*([A-Z][A-Z\s/&.]*?)\s*-\s*(.+)$`)

// leagueRowLabels are the first cells of the row averaging every rundle.
var leagueRowLabels = []string{"all", "league", "total", "ll"}

// ParseQuestionDay reads the six questions of a match day page with their
// answers, and the rundle and league correct percentages from the stats
// table. ok is false when no question was found.
func ParseQuestionDay(doc *goquery.Document, rundle string) (QuestionDay, bool) {
	byNumber := map[int]*Question{}

	doc.Find("div.ind-Q20").Each(func(_ int, div *goquery.Selection) {
		match := questionRegex.FindStringSubmatch(htmlutil.Text(div))
		if len(match) < 4 {
			return
		}
		n, err := strconv.Atoi(match[1])
		if err != nil || n < 1 || n > db.QuestionsPerDay {
			return
		}
		if _, exists := byNumber[n]; exists {
			return
		}
		raw := strings.TrimSpace(match[2])
		q := &Question{
			Number: n,
			Text:   strings.TrimSpace(match[3]),
		}
		if canonical, ok := NormalizeCategory(raw); ok {
			q.Category = canonical
			q.RawCategory = raw
		} else {
			q.RawCategory = canonical
		}
		byNumber[n] = q
	})
	if len(byNumber) == 0 {
		return QuestionDay{}, false
	}

	// answers are listed in question order
	doc.Find("div.a-red").Each(func(i int, div *goquery.Selection) {
		q, ok := byNumber[i+1]
		if ok {
			q.Answer = htmlutil.Text(div)
		}
	})

	rundleKey := textutil.NormalizeName(rundle)
	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		// name | forfeit % | Q1..Q6
		if len(cells) < 2+db.QuestionsPerDay {
			return
		}
		label := textutil.NormalizeName(cellText(cells, 0))
		isRundle := label != "" && label == rundleKey
		isLeague := false
		for _, l := range leagueRowLabels {
			if label == l {
				isLeague = true
			}
		}
		if !isRundle && !isLeague {
			return
		}
		for n, q := range byNumber {
			pct := percentOrNil(cellText(cells, 1+n))
			if isRundle && q.RundleCorrectPct == nil {
				q.RundleCorrectPct = pct
			}
			if isLeague && q.LeagueCorrectPct == nil {
				q.LeagueCorrectPct = pct
			}
		}
	})

	day := QuestionDay{}
	for _, q := range byNumber {
		day.Questions = append(day.Questions, *q)
	}
	sort.Slice(day.Questions, func(i, j int) bool {
		return day.Questions[i].Number < day.Questions[j].Number
	})
	return day, true
}
