package learnedleague

import (
	"ll-analytics/internal/db"
	"ll-analytics/lib/htmlutil"
	"ll-analytics/lib/textutil"
	"strings"

	"github.com/antzucaro/matchr"
)

// categoryAliases maps normalized abbreviations the site uses in page
// headers to canonical category names.
var categoryAliases = map[string]string{
	"amhist":       "American History",
	"amhistory":    "American History",
	"amerhist":     "American History",
	"amerhistory":  "American History",
	"americanhist": "American History",
	"ushistory":    "American History",
	"worldhist":    "World History",
	"wldhist":      "World History",
	"bus":          "Business/Economics",
	"business":     "Business/Economics",
	"busecon":      "Business/Economics",
	"econ":         "Business/Economics",
	"economics":    "Business/Economics",
	"food":         "Food/Drink",
	"drink":        "Food/Drink",
	"games":        "Games/Sport",
	"sport":        "Games/Sport",
	"sports":       "Games/Sport",
	"pop":          "Pop Music",
	"classical":    "Classical Music",
	"classmusic":   "Classical Music",
	"misc":         "Miscellaneous",
	"tv":           "Television",
	"theater":      "Theatre",
	"lit":          "Literature",
	"geo":          "Geography",
	"sci":          "Science",
	"lang":         "Language",
	"life":         "Lifestyle",
}

// categoryFragments catches longer labels that embed a known abbreviation,
// "AM. HISTORY (US)" or "TV/FILM". Checked in order.
var categoryFragments = []struct {
	name     string
	matchers []string
}{
	{name: "American History", matchers: []string{"amhistory", "americanhist"}},
	{name: "World History", matchers: []string{"worldhist"}},
	{name: "Business/Economics", matchers: []string{"busecon", "business"}},
	{name: "Food/Drink", matchers: []string{"food"}},
	{name: "Games/Sport", matchers: []string{"games", "sport"}},
	{name: "Pop Music", matchers: []string{"pop"}},
	{name: "Classical Music", matchers: []string{"classical"}},
	{name: "Miscellaneous", matchers: []string{"misc"}},
	{name: "Television", matchers: []string{"tv"}},
}

const fuzzyCategoryThreshold = 0.93

// NormalizeCategory maps a category label as it appears on a page onto one
// of the canonical names. When nothing matches it returns the trimmed label
// and false so the caller can keep the raw text.
func NormalizeCategory(raw string) (string, bool) {
	trimmed := htmlutil.NormalizeSpace(raw)
	key := textutil.NormalizeName(trimmed)
	if key == "" {
		return trimmed, false
	}

	for _, name := range db.Categories {
		if textutil.NormalizeName(name) == key {
			return name, true
		}
	}
	if name, ok := categoryAliases[key]; ok {
		return name, true
	}
	if len(key) >= 4 {
		for _, name := range db.Categories {
			canonical := textutil.NormalizeName(name)
			if strings.HasPrefix(canonical, key) || strings.HasPrefix(key, canonical) {
				return name, true
			}
		}
	}

	for _, fragment := range categoryFragments {
		if textutil.MatchName(trimmed, fragment.matchers) {
			return fragment.name, true
		}
	}

	best := ""
	bestScore := 0.0
	for _, name := range db.Categories {
		score := matchr.JaroWinkler(key, textutil.NormalizeName(name), false)
		if score > bestScore {
			best = name
			bestScore = score
		}
	}
	if bestScore >= fuzzyCategoryThreshold {
		return best, true
	}
	return trimmed, false
}
