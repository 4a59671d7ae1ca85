package leaguesync

import (
	"context"
	"fmt"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
	"ll-analytics/internal/scrapers/learnedleague/llsitetest"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

type matchRow struct {
	ID           int64
	Player1Score int64
	Player2Score int64
	Player1TCA   int64
	Player2TCA   int64
	LLMatchID    int64
}

func (h *harness) match(t testing.TB, day int, player1, player2 string) matchRow {
	var row matchRow
	err := h.db.QueryRow(`
		SELECT matches.id, player1_score, player2_score, player1_tca, player2_tca, ll_match_id
		FROM matches
		INNER JOIN players p1 ON p1.id = matches.player1_id
		INNER JOIN players p2 ON p2.id = matches.player2_id
		WHERE match_day = ? AND p1.ll_username = ? AND p2.ll_username = ?`,
		day, player1, player2,
	).Scan(&row.ID, &row.Player1Score, &row.Player2Score, &row.Player1TCA, &row.Player2TCA, &row.LLMatchID)
	if err != nil {
		t.Fatal(err)
	}
	return row
}

// requested counts requests for exactly this path.
func (h *harness) requested(path string) int {
	count := 0
	for _, r := range h.site.Requests() {
		if r == path {
			count++
		}
	}
	return count
}

func TestScrapeFull(t *testing.T) {
	const players = 18
	const days = 3

	site := llsitetest.New(testSeason, testRundle, players, days)
	first := &site.Days[1].Matches[0]
	require.Equal(t, "player01", first.Player1)
	require.Equal(t, "player18", first.Player2)
	first.Score1, first.TCA1, first.Score2, first.TCA2 = 4, 4, 5, 4
	site.Days[2].Matches[3].LLMatchID = 0
	site.Players[5].LinkByName = true

	h, cleanup := newHarness(t, site)
	defer cleanup()
	ctx := context.Background()

	result, err := h.syncer.ScrapeFull(ctx, request(days))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, result.Errors)

	rows, err := h.db.Query(`
		SELECT players.ll_username, player_rundles.final_rank
		FROM player_rundles
		INNER JOIN players ON players.id = player_rundles.player_id
		ORDER BY player_rundles.final_rank`)
	if err != nil {
		t.Fatal(err)
	}
	var ranks []string
	for rows.Next() {
		var username string
		var rank int
		err := rows.Scan(&username, &rank)
		if err != nil {
			t.Fatal(err)
		}
		ranks = append(ranks, fmt.Sprintf("%s:%d", username, rank))
	}
	rows.Close()
	require.Len(t, ranks, players)
	for i, entry := range ranks {
		require.Equal(t, fmt.Sprintf("player%02d:%d", i+1, i+1), entry)
	}

	match := h.match(t, 1, "player01", "player18")
	require.Equal(t, matchRow{
		ID:           match.ID,
		Player1Score: 4,
		Player2Score: 5,
		Player1TCA:   4,
		Player2TCA:   4,
		LLMatchID:    1070101,
	}, match)

	require.Equal(t, int64(days*players/2), h.count(t, `SELECT count(*) FROM matches`))
	require.Equal(t, int64(1), h.count(t, `SELECT count(*) FROM matches WHERE ll_match_id IS NULL`))
	require.Equal(t, int64(0), h.count(t, `
		SELECT count(*) FROM match_questions
		INNER JOIN matches ON matches.id = match_questions.match_id
		WHERE matches.ll_match_id IS NULL`))
	require.Equal(t, int64((days*players/2-1)*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM match_questions`))
	require.Equal(t, 1, result.Skipped[StageMatchDetails])

	require.Equal(t, int64(days*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM questions WHERE question_text IS NOT NULL`))
	require.Equal(t, int64(days*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM questions WHERE league_correct_pct IS NOT NULL`))
	require.Equal(t, int64(0), h.count(t, `SELECT count(*) FROM questions WHERE category_id IS NULL`))
	require.Equal(t, int64(players*len(db.Categories)), h.count(t, `SELECT count(*) FROM player_lifetime_stats`))
	require.Equal(t, int64(players*len(db.Categories)), h.count(t, `SELECT count(*) FROM player_lifetime_stats WHERE updated_at = ?`, int64(1700000000)))

	// the one player the standings only linked by name is found through the tracker
	require.Equal(t, 1, site.CountRequests(learnedleague.TrackerPath()))
	player06, err := db.New(h.db).GetPlayerByUsername(ctx, "player06")
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, player06.LlID.Valid)
	require.Equal(t, int64(10006), player06.LlID.Int64)
	require.Equal(t, "Player 6", player06.DisplayName.String)

	// match pages answer for every member on every day, the grids are not needed
	require.Equal(t, days, result.Skipped[StageRundleAnswers])
	require.Equal(t, 0, site.CountRequests("/rundlegrid.php"))

	before := snapshot(t, h.db)
	site.ResetRequests()

	second, err := h.newSyncer(t, llsitetest.DefaultPassword).ScrapeFull(ctx, request(days))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, second.Errors)

	if diff := cmp.Diff(before, snapshot(t, h.db)); diff != "" {
		t.Fatal("second run changed the database:", diff)
	}
	require.Equal(t, match, h.match(t, 1, "player01", "player18"))

	require.Equal(t, players, second.Counts[StageStandings])
	for _, stage := range StageOrder[1:] {
		require.Zero(t, second.Counts[stage], stage)
	}
	require.Equal(t, days, second.Skipped[StageMyAnswers])
	require.Equal(t, days, second.Skipped[StageMatchResults])
	require.Equal(t, players, second.Skipped[StageProfiles])
	require.Equal(t, 1, site.CountRequests(learnedleague.StandingsPath(testSeason, testRundle)))
	require.Equal(t, 0, site.CountRequests("/match.php"))
	require.Equal(t, 0, site.CountRequests("/profiles.php"))
	require.Equal(t, 0, site.CountRequests(learnedleague.TrackerPath()))

	require.NotEmpty(t, h.tel.Reports("count", "stage.standings"))
}

var matchDayPathRegex = regexp.MustCompile(`^/(?:match|rundlegrid)\.php\?\d+&(\d+)(?:&|$)`)

func matchDay(path string) int {
	match := matchDayPathRegex.FindStringSubmatch(path)
	if match == nil {
		return 0
	}
	day, _ := strconv.Atoi(match[1])
	return day
}

func TestMyAnswersWithoutMembership(t *testing.T) {
	const players = 6
	const days = 3

	site := llsitetest.New(testSeason, testRundle, players, days)
	site.Username = "outsider"

	h, cleanup := newHarness(t, site)
	defer cleanup()
	ctx := context.Background()

	first, err := h.newSyncerAs(t, "outsider", llsitetest.DefaultPassword).ScrapeFull(ctx, request(days))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, first.Errors)
	require.Equal(t, int64(0), h.count(t, `SELECT count(*) FROM players WHERE ll_username = 'outsider'`))
	require.Equal(t, int64(days*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM questions WHERE question_text IS NOT NULL`))

	site.ResetRequests()
	second, err := h.newSyncerAs(t, "outsider", llsitetest.DefaultPassword).ScrapeFull(ctx, request(days))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, second.Errors)
	require.Equal(t, days, second.Skipped[StageMyAnswers])
	for day := 1; day <= days; day++ {
		require.Zero(t, h.requested(learnedleague.QuestionDayPath(testSeason, day)), day)
	}
}

func TestResumability(t *testing.T) {
	const players = 6
	const days = 4

	reference, cleanup := newHarness(t, llsitetest.New(testSeason, testRundle, players, days))
	_, err := reference.syncer.ScrapeFull(context.Background(), request(days))
	if err != nil {
		t.Fatal(err)
	}
	expected := snapshot(t, reference.db)
	cleanup()

	for k := 0; k <= days; k++ {
		t.Run(fmt.Sprintf("interrupted after day %d", k), func(t *testing.T) {
			site := llsitetest.New(testSeason, testRundle, players, days)
			h, cleanup := newHarness(t, site)
			defer cleanup()
			ctx := context.Background()

			site.Fail = func(path string) int {
				if matchDay(path) > k {
					return http.StatusInternalServerError
				}
				return 0
			}
			partial, err := h.syncer.ScrapeFull(ctx, request(days))
			if err != nil {
				t.Fatal(err)
			}
			if k < days {
				require.NotEmpty(t, partial.StageErrors(StageMyAnswers))
				require.NotEmpty(t, partial.StageErrors(StageMatchResults))
			} else {
				require.Empty(t, partial.Errors)
			}
			for _, e := range partial.Errors {
				require.Equal(t, KindFetch, e.Kind, e)
			}

			site.Fail = nil
			site.ResetRequests()
			resumed, err := h.newSyncer(t, llsitetest.DefaultPassword).ScrapeFull(ctx, request(days))
			if err != nil {
				t.Fatal(err)
			}
			require.Empty(t, resumed.Errors)

			for day := 1; day <= days; day++ {
				fetches := 0
				if day > k {
					fetches = 1
				}
				require.Equal(t, fetches, h.requested(learnedleague.QuestionDayPath(testSeason, day)), "day %d", day)
				require.Equal(t, fetches, h.requested(learnedleague.RosterPath(testSeason, day, testRundle)), "day %d", day)
			}
			require.Equal(t, 0, site.CountRequests("/profiles.php"))

			if diff := cmp.Diff(expected, snapshot(t, h.db)); diff != "" {
				t.Fatal("resumed run differs from an uninterrupted one:", diff)
			}
		})
	}
}

func TestAuthFailure(t *testing.T) {
	site := llsitetest.New(testSeason, testRundle, 4, 1)
	h, cleanup := newHarness(t, site)
	defer cleanup()
	ctx := context.Background()

	result, err := h.newSyncer(t, "wrong").ScrapeFull(ctx, request(1))
	require.ErrorIs(t, err, learnedleague.ErrAuthFailed)
	require.Empty(t, result.Errors)
	require.Empty(t, result.Counts)

	for _, path := range site.Requests() {
		require.Equal(t, 0, matchDay(path), path)
	}
	require.Equal(t, 0, site.CountRequests("/standings.php"))
	require.Equal(t, int64(0), h.count(t, `SELECT count(*) FROM seasons`))
	require.Equal(t, int64(0), h.count(t, `SELECT count(*) FROM players`))
}

func TestCancellation(t *testing.T) {
	const days = 3
	site := llsitetest.New(testSeason, testRundle, 4, days)
	h, cleanup := newHarness(t, site)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	site.OnRequest = func(path string) {
		if path == learnedleague.QuestionDayPath(testSeason, 2) {
			cancel()
		}
	}

	result, err := h.syncer.ScrapeFull(ctx, request(days))
	require.ErrorIs(t, err, context.Canceled)
	require.Empty(t, result.Errors)

	require.Equal(t, int64(db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM questions WHERE question_text IS NOT NULL AND match_day = 1`))
	require.Equal(t, int64(0), h.count(t, `SELECT count(*) FROM questions WHERE match_day = 2`))
	require.Equal(t, 0, h.requested(learnedleague.QuestionDayPath(testSeason, 3)))
	require.Equal(t, 0, site.CountRequests("/profiles.php"))

	// the run is still recorded
	runs, err := h.syncer.ListRuns(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 1)
}

func TestUnitFailures(t *testing.T) {
	const players = 6
	const days = 2

	site := llsitetest.New(testSeason, testRundle, players, days)
	broken := learnedleague.MatchDetailPath(site.Days[1].Matches[1].LLMatchID)
	site.Fail = func(path string) int {
		if path == broken {
			return http.StatusServiceUnavailable
		}
		return 0
	}
	site.Days[2].Matches = nil

	h, cleanup := newHarness(t, site)
	defer cleanup()
	ctx := context.Background()

	result, err := h.syncer.ScrapeFull(ctx, request(days))
	if err != nil {
		t.Fatal(err)
	}

	detailErrors := result.StageErrors(StageMatchDetails)
	require.Len(t, detailErrors, 1)
	require.Equal(t, KindFetch, detailErrors[0].Kind)
	require.Contains(t, detailErrors[0].Detail, broken)

	rosterErrors := result.StageErrors(StageMatchResults)
	require.Len(t, rosterErrors, 1)
	require.Equal(t, KindParse, rosterErrors[0].Kind)
	require.Contains(t, rosterErrors[0].Detail, learnedleague.RosterPath(testSeason, 2, testRundle))

	// the other units of both stages went through
	require.Equal(t, int64(players/2), h.count(t, `SELECT count(*) FROM matches`))
	require.Equal(t, int64((players/2-1)*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM match_questions`))
	require.Empty(t, result.StageErrors(StageProfiles))
	require.Equal(t, int64(players*len(db.Categories)), h.count(t, `SELECT count(*) FROM player_lifetime_stats`))

	runs, err := h.syncer.ListRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 1)
	require.Equal(t, result.Errors, runs[0].Errors)

	site.Fail = nil
	site.ResetRequests()
	retry, err := h.newSyncer(t, llsitetest.DefaultPassword).ScrapeFull(ctx, request(days))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, retry.StageErrors(StageMatchDetails))
	require.Equal(t, 1, site.CountRequests("/match.php?id="))
	require.Equal(t, 1, h.requested(broken))
	require.Equal(t, int64(players/2*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM match_questions`))
}

func TestRundleAnswers(t *testing.T) {
	const players = 6
	const days = 2

	site := llsitetest.New(testSeason, testRundle, players, days)
	h, cleanup := newHarness(t, site)
	defer cleanup()
	ctx := context.Background()

	result, err := h.syncer.ScrapeFull(ctx, request(days, WithoutStages(StageMatchDetails)...))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, result.Errors)
	require.Equal(t, 0, site.CountRequests("/match.php?id="))
	require.Equal(t, days, site.CountRequests("/rundlegrid.php"))
	require.Equal(t, int64(players*days*db.QuestionsPerDay), h.count(t, `SELECT count(*) FROM answers`))
	require.Equal(t, int64(0), h.count(t, `SELECT count(*) FROM match_questions`))

	removeAnswers := func(usernames ...any) {
		_, err := h.db.Exec(fmt.Sprintf(`
			DELETE FROM answers
			WHERE player_id IN (SELECT id FROM players WHERE ll_username IN (?%s))
				AND question_id IN (SELECT id FROM questions WHERE match_day = 1)`,
			strings.Repeat(",?", len(usernames)-1),
		), usernames...)
		if err != nil {
			t.Fatal(err)
		}
	}
	gridOnly := request(days, StageRundleAnswers)
	grid := learnedleague.RundleGridPath(testSeason, 1, testRundle)

	testCases := []struct {
		name    string
		remove  []any
		fetches int
	}{
		{name: "two members missing is tolerated", remove: []any{"player02", "player03"}, fetches: 0},
		{name: "three members missing is refetched", remove: []any{"player02", "player03", "player04"}, fetches: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			removeAnswers(tc.remove...)
			site.ResetRequests()

			result, err := h.newSyncer(t, llsitetest.DefaultPassword).ScrapeFull(ctx, gridOnly)
			if err != nil {
				t.Fatal(err)
			}
			require.Empty(t, result.Errors)
			require.Equal(t, tc.fetches, h.requested(grid))
			require.Equal(t, 0, h.requested(learnedleague.RundleGridPath(testSeason, 2, testRundle)))

			// refill the day for the next case
			_, err = h.newSyncer(t, llsitetest.DefaultPassword).ScrapeFull(ctx, gridOnly)
			if err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestUnmappedProfileCategory(t *testing.T) {
	const players = 4

	site := llsitetest.New(testSeason, testRundle, players, 1)
	site.ProfileExtraRow = "Astrology"
	h, cleanup := newHarness(t, site)
	defer cleanup()

	result, err := h.syncer.ScrapeFull(context.Background(), request(1, StageStandings, StageProfiles))
	if err != nil {
		t.Fatal(err)
	}
	require.Empty(t, result.Errors)
	require.Equal(t, int64(players*len(db.Categories)), h.count(t, `SELECT count(*) FROM player_lifetime_stats`))

	warnings := h.tel.Reports("warning", "stage.profiles")
	require.Len(t, warnings, players)
	for _, w := range warnings {
		require.Contains(t, w.Params, "Astrology")
	}
}

func TestListRuns(t *testing.T) {
	const players = 4

	site := llsitetest.New(testSeason, testRundle, players, 1)
	h, cleanup := newHarness(t, site)
	defer cleanup()
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := h.newSyncer(t, llsitetest.DefaultPassword).ScrapeFull(ctx, request(1, StageStandings))
		if err != nil {
			t.Fatal(err)
		}
	}

	runs, err := h.syncer.ListRuns(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 2)
	require.Greater(t, runs[0].ID, runs[1].ID)
	for _, run := range runs {
		require.Equal(t, int64(testSeason), run.SeasonNumber)
		require.Equal(t, testRundle, run.Rundle)
		require.Equal(t, map[Stage]int{StageStandings: players}, run.Counts)
		require.Empty(t, run.Errors)
	}

	limited, err := h.syncer.ListRuns(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, limited, 1)
	require.Equal(t, runs[0].ID, limited[0].ID)
}
