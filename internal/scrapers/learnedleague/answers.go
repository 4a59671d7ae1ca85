package learnedleague

import (
	"ll-analytics/internal/db"
	"ll-analytics/lib/htmlutil"
	"ll-analytics/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// ParseAnswerHistory reads the logged in player's own answers from the
// answer history form of a match day page. ok is false when the page has no
// such form, which is the case when the player did not play that day.
func ParseAnswerHistory(doc *goquery.Document) ([]OwnAnswer, bool) {
	form := doc.Find("form#answerhistory, form.answerhistory").First()
	if form.Length() == 0 {
		return nil, false
	}
	table := form.Find("table").First()
	headers := headerColumns(table)
	question, ok := findColumn(headers, "q", "question", "qn")
	if !ok {
		question = 0
	}
	answer, hasAnswer := findColumn(headers, "youranswer", "answer")
	result, hasResult := findColumn(headers, "result", "correct")
	defense, hasDefense := findColumn(headers, "defense", "def", "dp")

	var answers []OwnAnswer
	seen := map[int]bool{}
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("th").Length() > 0 {
			return
		}
		cells := rowCells(row)
		n, ok := textutil.ParseInt(cellText(cells, question))
		if !ok || n < 1 || n > db.QuestionsPerDay || seen[n] {
			return
		}

		var correct *bool
		if hasResult && result < len(cells) {
			correct = cellCorrect(cells[result])
		}
		if correct == nil {
			for _, cell := range cells {
				correct = cellCorrect(cell)
				if correct != nil {
					break
				}
			}
		}
		if correct == nil {
			return
		}

		own := OwnAnswer{QuestionNumber: n, Correct: *correct}
		if hasAnswer {
			own.Answer = htmlutil.NormalizeSpace(cellText(cells, answer))
		}
		if hasDefense {
			own.DefensePoints = intOrNil(cellText(cells, defense))
		}
		seen[n] = true
		answers = append(answers, own)
	})

	return answers, len(answers) > 0
}
