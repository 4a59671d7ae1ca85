package learnedleague

import (
	"ll-analytics/lib/htmlutil"
	"ll-analytics/lib/textutil"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

func profileDisplayName(doc *goquery.Document) string {
	for _, selector := range []string{"h1.namecss", "div.namecss", "h1"} {
		name := htmlutil.Text(doc.Find(selector).First())
		if name != "" {
			return name
		}
	}
	// titles read "LearnedLeague - <name>"
	title := htmlutil.Text(doc.Find("title").First())
	if i := strings.LastIndex(title, " - "); i >= 0 {
		return strings.TrimSpace(title[i+3:])
	}
	return ""
}

func profileLLID(doc *goquery.Document) *int64 {
	if id := llIdFromHref(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")); id != nil {
		return id
	}
	var id *int64
	doc.Find(`a[href*="profiles.php"]`).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		id = llIdFromHref(sel.AttrOr("href", ""))
		return id == nil
	})
	return id
}

// parseCategoryRow reads "<category> | correct | total | pct" in any of the
// forms the profile tabs use, "45-70" and "45/70" included.
func parseCategoryRow(cells []*goquery.Selection, columns map[string]int) CategoryStat {
	stat := CategoryStat{}
	if i, ok := findColumn(columns, "correct", "right"); ok {
		stat.Correct = intOrNil(cellText(cells, i))
	}
	if i, ok := findColumn(columns, "total", "asked", "questions"); ok {
		stat.Total = intOrNil(cellText(cells, i))
	}
	if i, ok := findColumn(columns, "pct", "percent", "correctpct"); ok {
		stat.CorrectPct = percentOrNil(cellText(cells, i))
	}
	if stat.Correct != nil || stat.Total != nil || stat.CorrectPct != nil {
		return stat
	}

	var ints []int
	for _, cell := range cells[1:] {
		text := htmlutil.Text(cell)
		if strings.Contains(text, "%") || strings.HasPrefix(text, ".") || strings.Contains(text, "0.") {
			stat.CorrectPct = percentOrNil(text)
			continue
		}
		for _, part := range strings.FieldsFunc(text, func(r rune) bool { return r == '-' || r == '/' || r == ' ' }) {
			if n, ok := textutil.ParseInt(part); ok {
				ints = append(ints, n)
			}
		}
	}
	if len(ints) >= 1 {
		stat.Correct = &ints[0]
	}
	if len(ints) >= 2 {
		stat.Total = &ints[1]
	}
	return stat
}

// ParseProfile reads the lifetime category breakdown of a profile. Rows
// whose label does not map to a category are returned in Unmapped. ok is
// false when no category row was found.
func ParseProfile(doc *goquery.Document) (Profile, bool) {
	profile := Profile{
		DisplayName: profileDisplayName(doc),
		LLID:        profileLLID(doc),
	}

	seen := map[string]bool{}
	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		if table.Find("table").Length() > 0 {
			return
		}
		columns := headerColumns(table)
		_, hasCategoryHeader := findColumn(columns, "category", "cat")

		table.Find("tr").Each(func(_ int, row *goquery.Selection) {
			if row.Find("th").Length() > 0 && row.Find("td").Length() == 0 {
				return
			}
			cells := rowCells(row)
			if len(cells) < 2 {
				return
			}
			label := cellText(cells, 0)
			category, ok := NormalizeCategory(label)
			if !ok {
				if hasCategoryHeader && label != "" {
					profile.Unmapped = append(profile.Unmapped, label)
				}
				return
			}
			if seen[category] {
				return
			}

			stat := parseCategoryRow(cells, columns)
			if stat.Correct == nil && stat.Total == nil && stat.CorrectPct == nil {
				return
			}
			if stat.CorrectPct == nil && stat.Correct != nil && stat.Total != nil && *stat.Total > 0 {
				stat.CorrectPct = ptr(float64(*stat.Correct) / float64(*stat.Total))
			}
			stat.Category = category
			seen[category] = true
			profile.Stats = append(profile.Stats, stat)
		})
	})

	return profile, len(profile.Stats) > 0
}
