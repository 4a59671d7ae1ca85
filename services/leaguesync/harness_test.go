package leaguesync

import (
	"database/sql"
	"fmt"
	"ll-analytics/internal/components/chrono"
	"ll-analytics/internal/components/telemetry"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
	"ll-analytics/internal/scrapers/learnedleague/llsitetest"
	"ll-analytics/lib/testutil"
	"slices"
	"strings"
	"testing"
	"time"
)

const (
	testSeason = 107
	testRundle = "C_Skyline"
)

type harness struct {
	site    *llsitetest.Site
	baseUrl string
	db      *sql.DB
	tel     *telemetry.Recorder
	syncer  Syncer
}

func newHarness(t testing.TB, site *llsitetest.Site) (*harness, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "leaguesync",
		DbSchema: db.Schema,
	})
	h := &harness{
		site:    site,
		baseUrl: site.Start(),
		db:      res.DB,
		tel:     &telemetry.Recorder{},
	}
	h.syncer = h.newSyncer(t, llsitetest.DefaultPassword)

	return h, func() {
		site.Close()
		cleanup()
	}
}

// newSyncer gives every run its own session, like separate invocations of
// the cli would.
func (h *harness) newSyncer(t testing.TB, password string) Syncer {
	return h.newSyncerAs(t, llsitetest.DefaultUsername, password)
}

func (h *harness) newSyncerAs(t testing.TB, username, password string) Syncer {
	client, err := learnedleague.NewClient(learnedleague.ClientOptions{
		BaseUrl:  h.baseUrl,
		Username: username,
		Password: password,
		Delay:    time.Millisecond,
		Timeout:  5 * time.Second,
	}, h.tel)
	if err != nil {
		t.Fatal(err)
	}
	return NewSyncer(client, h.db, chrono.FixedImpl{At: time.Unix(1700000000, 0)}, h.tel)
}

func request(days int, stages ...Stage) Request {
	return Request{
		Season:  testSeason,
		Rundle:  testRundle,
		Stages:  stages,
		LastDay: days,
	}
}

func (h *harness) count(t testing.TB, query string, args ...any) int64 {
	var n int64
	err := h.db.QueryRow(query, args...).Scan(&n)
	if err != nil {
		t.Fatal(err)
	}
	return n
}

// snapshotQueries select every table by natural key so two databases built
// in a different order compare equal.
var snapshotQueries = map[string]string{
	"seasons": `SELECT season_number FROM seasons`,
	"rundles": `SELECT league, level, name FROM rundles`,
	"players": `SELECT ll_username, ll_id, display_name FROM players`,
	"player_rundles": `
		SELECT players.ll_username, rundles.name, player_rundles.final_rank
		FROM player_rundles
		INNER JOIN players ON players.id = player_rundles.player_id
		INNER JOIN rundles ON rundles.id = player_rundles.rundle_id`,
	"questions": `
		SELECT match_day, question_number, category_id, raw_category,
			rundle_correct_pct, league_correct_pct, question_text, correct_answer
		FROM questions`,
	"answers": `
		SELECT players.ll_username, questions.match_day, questions.question_number,
			answers.correct, answers.defense_points_assigned
		FROM answers
		INNER JOIN players ON players.id = answers.player_id
		INNER JOIN questions ON questions.id = answers.question_id`,
	"matches": `
		SELECT matches.match_day, p1.ll_username, p2.ll_username,
			player1_score, player2_score, player1_tca, player2_tca, ll_match_id
		FROM matches
		INNER JOIN players p1 ON p1.id = matches.player1_id
		INNER JOIN players p2 ON p2.id = matches.player2_id`,
	"match_questions": `
		SELECT matches.ll_match_id, question_num, questions.question_number,
			player1_correct, player2_correct, player1_defense, player2_defense,
			match_questions.category_id, match_questions.raw_category, difficulty
		FROM match_questions
		INNER JOIN matches ON matches.id = match_questions.match_id
		LEFT JOIN questions ON questions.id = match_questions.question_id`,
	"player_lifetime_stats": `
		SELECT players.ll_username, category_id, correct, total, correct_pct
		FROM player_lifetime_stats
		INNER JOIN players ON players.id = player_lifetime_stats.player_id`,
}

func snapshot(t testing.TB, database *sql.DB) map[string][]string {
	out := map[string][]string{}
	for table, query := range snapshotQueries {
		rows, err := database.Query(query)
		if err != nil {
			t.Fatal(table, err)
		}
		columns, err := rows.Columns()
		if err != nil {
			t.Fatal(err)
		}
		lines := []string{}
		for rows.Next() {
			values := make([]any, len(columns))
			pointers := make([]any, len(columns))
			for i := range values {
				pointers[i] = &values[i]
			}
			err := rows.Scan(pointers...)
			if err != nil {
				t.Fatal(err)
			}
			parts := make([]string, len(values))
			for i, v := range values {
				if b, ok := v.([]byte); ok {
					v = string(b)
				}
				parts[i] = fmt.Sprint(v)
			}
			lines = append(lines, strings.Join(parts, "|"))
		}
		rows.Close()
		slices.Sort(lines)
		out[table] = lines
	}
	return out
}
