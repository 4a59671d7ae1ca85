package learnedleague

import "fmt"

// every path the site exposes to the pipeline is built here so a change to
// the site's url scheme is a change to this file only.

const (
	FirstMatchDay = 1
	LastMatchDay  = 25
)

func LoginPath() string {
	return "/ucp.php?mode=login"
}

func LogoutPath() string {
	return "/ucp.php?mode=logout"
}

func IndexPath() string {
	return "/index.php"
}

func StandingsPath(season int, rundle string) string {
	return fmt.Sprintf("/standings.php?%d&%s", season, rundle)
}

// QuestionDayPath is the match day page with the six questions, their
// answers and the logged in player's own answer history.
func QuestionDayPath(season, day int) string {
	return fmt.Sprintf("/match.php?%d&%d", season, day)
}

// RosterPath lists every match of a rundle on one match day.
func RosterPath(season, day int, rundle string) string {
	return fmt.Sprintf("/match.php?%d&%d&%s", season, day, rundle)
}

func MatchDetailPath(llMatchID int64) string {
	return fmt.Sprintf("/match.php?id=%d", llMatchID)
}

func RundleGridPath(season, day int, rundle string) string {
	return fmt.Sprintf("/rundlegrid.php?%d&%d&%s", season, day, rundle)
}

// ProfilePath is the category breakdown tab of a profile.
func ProfilePath(llID int64) string {
	return fmt.Sprintf("/profiles.php?%d&9", llID)
}

func ProfilePathByUsername(username string) string {
	return fmt.Sprintf("/profiles.php?%s", username)
}

func TrackerPath() string {
	return "/tracker/tracker.php"
}
