package learnedleague

import (
	"ll-analytics/internal/db"
	"ll-analytics/lib/htmlutil"
	"ll-analytics/lib/textutil"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var profileIdRegex = regexp.MustCompile(`profiles\.php\?(\d+)(?:&|$)`)
var profileNameRegex = regexp.MustCompile(`profiles\.php\?([A-Za-z0-9_.\-]+)`)

func ptr[T any](v T) *T {
	return &v
}

func intOrNil(s string) *int {
	n, ok := textutil.ParseInt(s)
	if !ok {
		return nil
	}
	return &n
}

func percentOrNil(s string) *float64 {
	n, ok := textutil.ParsePercent(s)
	if !ok {
		return nil
	}
	return &n
}

func llIdFromHref(href string) *int64 {
	match := profileIdRegex.FindStringSubmatch(href)
	if len(match) < 2 {
		return nil
	}
	id, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func profileAnchors(sel *goquery.Selection) *goquery.Selection {
	return sel.Find(`a[href*="profiles.php"]`)
}

// playerFromAnchor reads a profile link. Links by id carry the username as
// their text, links by name carry it in the query.
func playerFromAnchor(a *goquery.Selection) (PlayerRef, bool) {
	href := a.AttrOr("href", "")
	username := htmlutil.Text(a)
	llid := llIdFromHref(href)
	if username == "" && llid == nil {
		match := profileNameRegex.FindStringSubmatch(href)
		if len(match) == 2 {
			username = match[1]
		}
	}
	if username == "" {
		return PlayerRef{}, false
	}
	return PlayerRef{Username: username, LLID: llid}, true
}

// cellCorrect reads correctness from the cell's class, falling back on the
// marks the site uses as text.
func cellCorrect(cell *goquery.Selection) *bool {
	for _, class := range strings.Fields(cell.AttrOr("class", "")) {
		switch strings.ToLower(class) {
		case "c0", "incorrect", "wrong":
			return ptr(false)
		case "c1", "correct", "right":
			return ptr(true)
		}
	}
	switch htmlutil.Text(cell) {
	case "✓", "✔", "Y", "yes":
		return ptr(true)
	case "✗", "✘", "X", "N", "no":
		return ptr(false)
	}
	return nil
}

func rowCells(row *goquery.Selection) []*goquery.Selection {
	var cells []*goquery.Selection
	row.Children().Each(func(_ int, cell *goquery.Selection) {
		if goquery.NodeName(cell) == "td" || goquery.NodeName(cell) == "th" {
			cells = append(cells, cell)
		}
	})
	return cells
}

// headerColumns maps normalized header labels to their column index.
func headerColumns(table *goquery.Selection) map[string]int {
	columns := map[string]int{}
	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		if row.Find("th").Length() == 0 {
			return true
		}
		for i, cell := range rowCells(row) {
			key := textutil.NormalizeName(htmlutil.Text(cell))
			if _, exists := columns[key]; !exists && key != "" {
				columns[key] = i
			}
		}
		return false
	})
	return columns
}

func findColumn(columns map[string]int, names ...string) (int, bool) {
	for _, name := range names {
		if i, ok := columns[name]; ok {
			return i, true
		}
	}
	return 0, false
}

func cellText(cells []*goquery.Selection, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return htmlutil.Text(cells[i])
}

var questionHeaderRegex = regexp.MustCompile(`^Q\s*(\d+)$`)

// questionTable is the shape shared by the single match page and the
// rundle grid: a header of question columns, a category row, a rundle
// percentage row and one row per player.
type questionTable struct {
	// columns maps a question number to its cell index
	columns    map[int]int
	numbers    []int
	categories map[int]string
	pcts       map[int]*float64
	players    []questionTableRow
}

type questionTableRow struct {
	player PlayerRef
	cells  []*goquery.Selection
}

func rowLabel(cells []*goquery.Selection) string {
	if len(cells) == 0 {
		return ""
	}
	return strings.ToLower(htmlutil.Text(cells[0]))
}

func parseQuestionTable(table *goquery.Selection) questionTable {
	out := questionTable{
		columns:    map[int]int{},
		categories: map[int]string{},
		pcts:       map[int]*float64{},
	}

	var categoryRow, pctRow []*goquery.Selection
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		anchor := profileAnchors(row).First()
		if anchor.Length() > 0 {
			player, ok := playerFromAnchor(anchor)
			if ok {
				out.players = append(out.players, questionTableRow{player: player, cells: cells})
			}
			return
		}

		label := rowLabel(cells)
		switch {
		case len(out.columns) == 0 && row.Find("th").Length() > 0:
			for i, cell := range cells {
				match := questionHeaderRegex.FindStringSubmatch(htmlutil.Text(cell))
				if len(match) < 2 {
					continue
				}
				n, _ := strconv.Atoi(match[1])
				if n >= 1 && n <= db.QuestionsPerDay {
					if _, exists := out.columns[n]; !exists {
						out.columns[n] = i
						out.numbers = append(out.numbers, n)
					}
				}
			}
		case strings.Contains(label, "categ"):
			categoryRow = cells
		case strings.Contains(label, "%") || strings.Contains(label, "pct") || strings.Contains(label, "rundle"):
			pctRow = cells
		}
	})

	// without a header the six question cells follow the label cell
	if len(out.columns) == 0 {
		for n := 1; n <= db.QuestionsPerDay; n++ {
			out.columns[n] = n
			out.numbers = append(out.numbers, n)
		}
	}

	for _, n := range out.numbers {
		i := out.columns[n]
		if categoryRow != nil {
			out.categories[n] = cellText(categoryRow, i)
		}
		if pctRow != nil {
			out.pcts[n] = percentOrNil(cellText(pctRow, i))
		}
	}
	return out
}

func (t questionTable) cell(row questionTableRow, n int) *goquery.Selection {
	i, ok := t.columns[n]
	if !ok || i >= len(row.cells) {
		return nil
	}
	return row.cells[i]
}

// category returns the canonical and raw category of question n.
func (t questionTable) category(n int) (string, string) {
	raw := t.categories[n]
	if raw == "" {
		return "", ""
	}
	canonical, ok := NormalizeCategory(raw)
	if !ok {
		return "", canonical
	}
	return canonical, raw
}
