package learnedleague

import (
	"context"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague/llsitetest"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

// TestSitePages reads every page shape from the fake site through a logged
// in client.
func TestSitePages(t *testing.T) {
	site := llsitetest.New(107, "C_Skyline", 6, 2)
	site.Players[2].LinkByName = true
	site.Days[1].Matches[0].Forfeit = true
	baseUrl := site.Start()
	defer site.Close()
	ctx := context.Background()

	client, _ := newTestClient(t, baseUrl, llsitetest.DefaultUsername, llsitetest.DefaultPassword, time.Millisecond)
	err := client.Login(ctx)
	if err != nil {
		t.Fatal(err)
	}
	fetch := func(path string) *goquery.Document {
		doc, err := client.Fetch(ctx, path)
		if err != nil {
			t.Fatal(err)
		}
		return doc
	}

	standings, ok := ParseStandings(fetch(StandingsPath(107, "C_Skyline")))
	require.True(t, ok)
	require.Len(t, standings, 6)
	for i, standing := range standings {
		require.Equal(t, i+1, standing.Rank)
		require.Equal(t, site.Players[i].Username, standing.Player.Username)
	}
	require.Nil(t, standings[2].Player.LLID)
	require.Equal(t, site.Players[0].LLID, *standings[0].Player.LLID)

	page := fetch(QuestionDayPath(107, 2))
	day, ok := ParseQuestionDay(page, "C_Skyline")
	require.True(t, ok)
	require.Len(t, day.Questions, db.QuestionsPerDay)
	for i, q := range day.Questions {
		expected := site.Days[2].Questions[i]
		require.Equal(t, llsitetest.CategoryFor(expected.Label), q.Category)
		require.Equal(t, expected.Text, q.Text)
		require.Equal(t, expected.Answer, q.Answer)
		require.InDelta(t, float64(site.RundlePct(2, i+1))/100, *q.RundleCorrectPct, 0.0001)
		require.InDelta(t, float64(site.LeaguePct(2, i+1))/100, *q.LeagueCorrectPct, 0.0001)
	}
	answers, ok := ParseAnswerHistory(page)
	require.True(t, ok)
	require.Len(t, answers, db.QuestionsPerDay)
	for _, answer := range answers {
		require.Equal(t, site.Correct(0, 2, answer.QuestionNumber), answer.Correct)
		require.Equal(t, site.Defense(0, 2, answer.QuestionNumber), *answer.DefensePoints)
	}

	roster, ok := ParseMatchRoster(fetch(RosterPath(107, 1, "C_Skyline")))
	require.True(t, ok)
	require.Len(t, roster, 3)
	require.Nil(t, roster[0].Player1Score)
	for i, result := range roster {
		expected := site.Days[1].Matches[i]
		require.Equal(t, expected.Player1, result.Player1.Username)
		require.Equal(t, expected.Player2, result.Player2.Username)
		require.Equal(t, expected.LLMatchID, *result.LLMatchID)
		require.Equal(t, expected.Score2, *result.Player2Score)
	}

	match := site.Days[1].Matches[1]
	detail, ok := ParseMatchDetail(fetch(MatchDetailPath(match.LLMatchID)))
	require.True(t, ok)
	require.Equal(t, match.Player1, detail.Player1.Username)
	require.Len(t, detail.Questions, db.QuestionsPerDay)
	p2 := site.PlayerIndex(match.Player2)
	for _, q := range detail.Questions {
		require.Equal(t, site.Correct(p2, 1, q.Number), *q.Player2Correct)
		require.Equal(t, site.Defense(p2, 1, q.Number), *q.Player2Defense)
	}

	grid, ok := ParseRundleGrid(fetch(RundleGridPath(107, 1, "C_Skyline")))
	require.True(t, ok)
	require.Len(t, grid.Rows, 6)
	require.Len(t, grid.Columns, db.QuestionsPerDay)

	profile, ok := ParseProfile(fetch(ProfilePath(site.Players[1].LLID)))
	require.True(t, ok)
	require.Equal(t, site.Players[1].DisplayName, profile.DisplayName)
	require.Len(t, profile.Stats, len(db.Categories))
	correct, total := site.LifetimeStat(1, 0)
	require.Equal(t, correct, *profile.Stats[0].Correct)
	require.Equal(t, total, *profile.Stats[0].Total)

	byName, ok := ParseProfile(fetch(ProfilePathByUsername(site.Players[2].Username)))
	require.True(t, ok)
	require.Equal(t, site.Players[2].LLID, *byName.LLID)

	tracked, ok := ParseTracker(fetch(TrackerPath()), 107)
	require.True(t, ok)
	require.Len(t, tracked, 6)
	for _, p := range tracked {
		require.Equal(t, "C_Skyline", p.Rundle)
		require.True(t, strings.HasPrefix(p.Username, "player"))
	}
}
