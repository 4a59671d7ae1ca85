package learnedleague

import (
	"ll-analytics/lib/textutil"
	"regexp"
	"strconv"

	"github.com/PuerkitoBio/goquery"
)

var recordRegex = regexp.MustCompile(`(\d+)\s*-\s*(\d+)\s*-\s*(\d+)`)

type standingsColumns struct {
	rank, player, record, points, tca int
	hasRecord, hasPoints, hasTca      bool
}

// standingsTable picks the table with rank and player headers, or failing
// that the first table whose rows look like standings.
func standingsTable(doc *goquery.Document) (*goquery.Selection, standingsColumns, bool) {
	var found *goquery.Selection
	var columns standingsColumns

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		headers := headerColumns(table)
		rank, hasRank := findColumn(headers, "rank", "rk")
		player, hasPlayer := findColumn(headers, "player", "name", "username")
		if !hasRank || !hasPlayer {
			return true
		}
		found = table
		columns = standingsColumns{rank: rank, player: player}
		columns.record, columns.hasRecord = findColumn(headers, "wlt", "record", "wl")
		columns.points, columns.hasPoints = findColumn(headers, "pts", "points")
		columns.tca, columns.hasTca = findColumn(headers, "tca")
		return false
	})
	if found != nil {
		return found, columns, true
	}

	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		ok := false
		table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
			cells := rowCells(row)
			if len(cells) < 2 {
				return true
			}
			_, isRank := textutil.ParseInt(cellText(cells, 0))
			ok = isRank && profileAnchors(cells[1]).Length() > 0
			return false
		})
		if ok {
			found = table
			columns = standingsColumns{rank: 0, player: 1}
		}
		return !ok
	})
	return found, columns, found != nil
}

// ParseStandings reads the final standings of a rundle, ok is false when
// the page has no standings rows.
func ParseStandings(doc *goquery.Document) ([]Standing, bool) {
	table, columns, ok := standingsTable(doc)
	if !ok {
		return nil, false
	}

	var standings []Standing
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := rowCells(row)
		if columns.player >= len(cells) || row.Find("th").Length() > 0 {
			return
		}
		rank, ok := textutil.ParseInt(cellText(cells, columns.rank))
		if !ok {
			return
		}

		var player PlayerRef
		anchor := profileAnchors(cells[columns.player]).First()
		if anchor.Length() > 0 {
			player, ok = playerFromAnchor(anchor)
		} else {
			player = PlayerRef{Username: cellText(cells, columns.player)}
			ok = player.Username != ""
		}
		if !ok {
			return
		}

		standing := Standing{Rank: rank, Player: player}
		if columns.hasRecord {
			match := recordRegex.FindStringSubmatch(cellText(cells, columns.record))
			if len(match) == 4 {
				w, _ := strconv.Atoi(match[1])
				l, _ := strconv.Atoi(match[2])
				t, _ := strconv.Atoi(match[3])
				standing.Wins, standing.Losses, standing.Ties = &w, &l, &t
			}
		}
		if columns.hasPoints {
			standing.Points = intOrNil(cellText(cells, columns.points))
		}
		if columns.hasTca {
			standing.TCA = intOrNil(cellText(cells, columns.tca))
		}
		standings = append(standings, standing)
	})

	return standings, len(standings) > 0
}
