package learnedleague

import (
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

var trackerStandingsRegex = regexp.MustCompile(`standings\.php\?(\d+)&([A-Za-z0-9_]+)`)

// ParseTracker reads the players followed on the tracker page and the
// rundle each of them plays in during `season`.
func ParseTracker(doc *goquery.Document, season int) ([]TrackedPlayer, bool) {
	var tracked []TrackedPlayer
	seen := map[string]bool{}

	doc.Find("tr").Each(func(_ int, row *goquery.Selection) {
		if row.Find("tr").Length() > 0 {
			return
		}
		var rundle string
		row.Find(`a[href*="standings.php"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
			match := trackerStandingsRegex.FindStringSubmatch(a.AttrOr("href", ""))
			if len(match) < 3 {
				return true
			}
			n, err := strconv.Atoi(match[1])
			if err != nil || n != season {
				return true
			}
			rundle = match[2]
			return false
		})
		if rundle == "" {
			return
		}

		anchor := profileAnchors(row).First()
		if anchor.Length() == 0 {
			return
		}
		player, ok := playerFromAnchor(anchor)
		if !ok || seen[player.Username] {
			return
		}
		seen[player.Username] = true
		tracked = append(tracked, TrackedPlayer{
			Username: player.Username,
			Rundle:   rundle,
			LLID:     player.LLID,
		})
	})

	return tracked, len(tracked) > 0
}
