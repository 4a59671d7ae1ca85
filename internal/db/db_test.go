package db

import (
	"context"
	"database/sql"
	"ll-analytics/lib/testutil"
	"testing"

	"github.com/stretchr/testify/require"
)

func setup(t testing.TB) (*sql.DB, *Queries, func()) {
	res, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "db",
		DbSchema: Schema,
	})
	return res.DB, New(res.DB), cleanup
}

type fixture struct {
	seasonID int64
	rundleID int64
	players  []int64
}

func seed(t testing.TB, qry *Queries, players int) fixture {
	ctx := context.Background()
	seasonID, err := qry.EnsureSeason(ctx, 107)
	if err != nil {
		t.Fatal(err)
	}
	rundleID, err := qry.EnsureRundle(ctx, EnsureRundleParams{
		SeasonID: seasonID,
		League:   "Skyline",
		Level:    "C",
		Name:     "C_Skyline",
	})
	if err != nil {
		t.Fatal(err)
	}
	f := fixture{seasonID: seasonID, rundleID: rundleID}
	for i := 0; i < players; i++ {
		id, err := qry.EnsurePlayer(ctx, string(rune('a'+i))+"_player")
		if err != nil {
			t.Fatal(err)
		}
		err = qry.UpsertMembership(ctx, UpsertMembershipParams{
			PlayerID:  id,
			RundleID:  rundleID,
			FinalRank: sql.NullInt64{Int64: int64(i + 1), Valid: true},
		})
		if err != nil {
			t.Fatal(err)
		}
		f.players = append(f.players, id)
	}
	return f
}

func TestSchemaIsIdempotent(t *testing.T) {
	db, qry, cleanup := setup(t)
	defer cleanup()

	_, err := db.Exec(Schema)
	if err != nil {
		t.Fatal(err)
	}
	categories, err := qry.ListCategories(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, categories, len(Categories))
	for i, c := range categories {
		require.Equal(t, Categories[i], c.Name)
	}
}

func TestEnsureKeepsIdentity(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	first, err := qry.EnsureSeason(ctx, 107)
	if err != nil {
		t.Fatal(err)
	}
	second, err := qry.EnsureSeason(ctx, 107)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, first, second)

	player, err := qry.EnsurePlayer(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	err = qry.EnrichPlayer(ctx, EnrichPlayerParams{
		ID:          player,
		LlID:        sql.NullInt64{Int64: 10001, Valid: true},
		DisplayName: sql.NullString{String: "Alpha", Valid: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	// a later page without the id or name must not erase them
	err = qry.EnrichPlayer(ctx, EnrichPlayerParams{ID: player, DisplayName: sql.NullString{Valid: true}})
	if err != nil {
		t.Fatal(err)
	}
	again, err := qry.EnsurePlayer(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, player, again)

	row, err := qry.GetPlayerByUsername(ctx, "alpha")
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, sql.NullInt64{Int64: 10001, Valid: true}, row.LlID)
	require.Equal(t, sql.NullString{String: "Alpha", Valid: true}, row.DisplayName)
}

func TestQuestionCoalesce(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()
	f := seed(t, qry, 0)

	key := GetQuestionParams{SeasonID: f.seasonID, MatchDay: 3, QuestionNumber: 2}

	// the grid only knows the category and percentage
	id, err := qry.UpsertQuestion(ctx, UpsertQuestionParams{
		SeasonID:         f.seasonID,
		MatchDay:         3,
		QuestionNumber:   2,
		CategoryID:       sql.NullInt64{Int64: 14, Valid: true},
		RawCategory:      "SCIENCE",
		RundleCorrectPct: sql.NullFloat64{Float64: 0.4, Valid: true},
	})
	if err != nil {
		t.Fatal(err)
	}

	// the match day page adds text and answer but its category did not map
	again, err := qry.UpsertQuestion(ctx, UpsertQuestionParams{
		SeasonID:         f.seasonID,
		MatchDay:         3,
		QuestionNumber:   2,
		LeagueCorrectPct: sql.NullFloat64{Float64: 0.44, Valid: true},
		QuestionText:     "What does an X-ray tube accelerate?",
		CorrectAnswer:    "Electrons",
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, id, again)

	q, err := qry.GetQuestion(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, Question{
		ID:               id,
		SeasonID:         f.seasonID,
		MatchDay:         3,
		QuestionNumber:   2,
		CategoryID:       sql.NullInt64{Int64: 14, Valid: true},
		RawCategory:      sql.NullString{String: "SCIENCE", Valid: true},
		RundleCorrectPct: sql.NullFloat64{Float64: 0.4, Valid: true},
		LeagueCorrectPct: sql.NullFloat64{Float64: 0.44, Valid: true},
		QuestionText:     sql.NullString{String: "What does an X-ray tube accelerate?", Valid: true},
		CorrectAnswer:    sql.NullString{String: "Electrons", Valid: true},
	}, q)

	// an empty rewrite changes nothing
	_, err = qry.UpsertQuestion(ctx, UpsertQuestionParams{SeasonID: f.seasonID, MatchDay: 3, QuestionNumber: 2})
	if err != nil {
		t.Fatal(err)
	}
	unchanged, err := qry.GetQuestion(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, q, unchanged)

	count, err := qry.CountQuestionsWithText(ctx, CountQuestionsWithTextParams{SeasonID: f.seasonID, MatchDay: 3})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(1), count)
}

func TestMatchUpsertKeepsPrimaryKey(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()
	f := seed(t, qry, 2)

	params := UpsertMatchParams{
		SeasonID:     f.seasonID,
		RundleID:     sql.NullInt64{Int64: f.rundleID, Valid: true},
		MatchDay:     1,
		Player1ID:    f.players[0],
		Player2ID:    f.players[1],
		Player1Score: sql.NullInt64{Int64: 4, Valid: true},
		Player1Tca:   sql.NullInt64{Int64: 4, Valid: true},
		Player2Score: sql.NullInt64{Int64: 5, Valid: true},
		Player2Tca:   sql.NullInt64{Int64: 4, Valid: true},
	}
	id, err := qry.UpsertMatch(ctx, params)
	if err != nil {
		t.Fatal(err)
	}

	params.Player1Score = sql.NullInt64{Int64: 3, Valid: true}
	params.Player2Score = sql.NullInt64{}
	params.LlMatchID = sql.NullInt64{Int64: 1070101, Valid: true}
	again, err := qry.UpsertMatch(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, id, again)

	match, err := qry.GetMatch(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(3), match.Player1Score.Int64)
	require.Equal(t, int64(5), match.Player2Score.Int64)
	require.Equal(t, int64(1070101), match.LlMatchID.Int64)

	count, err := qry.CountMembersWithMatches(ctx, CountMembersWithMatchesParams{
		RundleID: f.rundleID,
		SeasonID: f.seasonID,
		MatchDay: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(2), count)
}

func TestMatchesNeedingDetails(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()
	f := seed(t, qry, 6)

	var ids []int64
	for i := 0; i < 3; i++ {
		params := UpsertMatchParams{
			SeasonID:  f.seasonID,
			RundleID:  sql.NullInt64{Int64: f.rundleID, Valid: true},
			MatchDay:  1,
			Player1ID: f.players[i*2],
			Player2ID: f.players[i*2+1],
		}
		// the last match has no link to its detail page
		if i < 2 {
			params.LlMatchID = sql.NullInt64{Int64: int64(100 + i), Valid: true}
		}
		id, err := qry.UpsertMatch(ctx, params)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id)
	}

	for n := int64(1); n <= QuestionsPerDay; n++ {
		err := qry.UpsertMatchQuestion(ctx, UpsertMatchQuestionParams{
			MatchID:        ids[0],
			QuestionNum:    n,
			Player1Correct: sql.NullBool{Bool: true, Valid: true},
		})
		if err != nil {
			t.Fatal(err)
		}
	}

	pending, err := qry.ListMatchesNeedingDetails(ctx, ListMatchesNeedingDetailsParams{
		SeasonID: f.seasonID,
		RundleID: f.rundleID,
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, []MatchNeedingDetails{{
		ID:        ids[1],
		MatchDay:  1,
		Player1ID: f.players[2],
		Player2ID: f.players[3],
		LlMatchID: 101,
	}}, pending)

	missing, err := qry.CountMatchesWithoutExternalID(ctx, CountMatchesWithoutExternalIDParams{
		SeasonID: f.seasonID,
		RundleID: f.rundleID,
	})
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(1), missing)

	err = qry.UpsertMatchQuestion(ctx, UpsertMatchQuestionParams{MatchID: ids[1], QuestionNum: 7})
	require.Error(t, err)
}

func TestSatisfied(t *testing.T) {
	testCases := []struct {
		have      int64
		expected  int64
		satisfied bool
	}{
		{have: 18, expected: 18, satisfied: true},
		{have: 16, expected: 18, satisfied: true},
		{have: 15, expected: 18, satisfied: false},
		{have: 0, expected: 18, satisfied: false},
		{have: 0, expected: 2, satisfied: true},
		{have: 0, expected: 0, satisfied: false},
		{have: 3, expected: 0, satisfied: false},
	}
	for _, test := range testCases {
		require.Equal(t, test.satisfied, Satisfied(test.have, test.expected), "%d of %d", test.have, test.expected)
	}
}

func TestMemberCheckpoint(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()
	f := seed(t, qry, 18)

	members, err := qry.CountRundleMembers(ctx, f.rundleID)
	if err != nil {
		t.Fatal(err)
	}
	require.Equal(t, int64(18), members)

	questionID, err := qry.UpsertQuestion(ctx, UpsertQuestionParams{SeasonID: f.seasonID, MatchDay: 1, QuestionNumber: 1})
	if err != nil {
		t.Fatal(err)
	}

	answered := func() int64 {
		count, err := qry.CountMembersWithAnswers(ctx, CountMembersWithAnswersParams{
			RundleID: f.rundleID,
			SeasonID: f.seasonID,
			MatchDay: 1,
		})
		if err != nil {
			t.Fatal(err)
		}
		return count
	}

	// N-3 is not enough, N-2 is
	for _, player := range f.players[:15] {
		err := qry.UpsertAnswer(ctx, UpsertAnswerParams{PlayerID: player, QuestionID: questionID, Correct: true})
		if err != nil {
			t.Fatal(err)
		}
	}
	require.False(t, Satisfied(answered(), members))

	err = qry.UpsertAnswer(ctx, UpsertAnswerParams{PlayerID: f.players[15], QuestionID: questionID})
	if err != nil {
		t.Fatal(err)
	}
	require.True(t, Satisfied(answered(), members))
}

func TestForeignKeys(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()
	f := seed(t, qry, 1)

	err := qry.UpsertAnswer(ctx, UpsertAnswerParams{PlayerID: f.players[0], QuestionID: 9999, Correct: true})
	require.Error(t, err)

	err = qry.UpsertLifetimeStat(ctx, UpsertLifetimeStatParams{PlayerID: 9999, CategoryID: 1})
	require.Error(t, err)
}

func TestMakeTx(t *testing.T) {
	db, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()
	makeTx := NewMakeTx(db)

	tx, discard, commit, err := makeTx()
	if err != nil {
		t.Fatal(err)
	}
	_, err = tx.EnsurePlayer(ctx, "discarded")
	if err != nil {
		t.Fatal(err)
	}
	err = discard()
	if err != nil {
		t.Fatal(err)
	}
	_, err = qry.GetPlayerByUsername(ctx, "discarded")
	require.ErrorIs(t, err, sql.ErrNoRows)

	tx, discard, commit, err = makeTx()
	if err != nil {
		t.Fatal(err)
	}
	_, err = tx.EnsurePlayer(ctx, "kept")
	if err != nil {
		t.Fatal(err)
	}
	err = commit()
	if err != nil {
		t.Fatal(err)
	}
	// discarding after a commit is a no-op
	err = discard()
	if err != nil {
		t.Fatal(err)
	}
	_, err = qry.GetPlayerByUsername(ctx, "kept")
	if err != nil {
		t.Fatal(err)
	}
}

func TestScrapeRuns(t *testing.T) {
	_, qry, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	for i := int64(1); i <= 3; i++ {
		_, err := qry.CreateScrapeRun(ctx, CreateScrapeRunParams{
			SeasonNumber: 107,
			Rundle:       "C_Skyline",
			StartedAt:    i * 100,
			FinishedAt:   i*100 + 50,
			Counts:       `{"standings":18}`,
			ErrorCount:   i - 1,
			Errors:       "[]",
		})
		if err != nil {
			t.Fatal(err)
		}
	}
	runs, err := qry.ListScrapeRuns(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	require.Len(t, runs, 2)
	require.Equal(t, int64(300), runs[0].StartedAt)
	require.Equal(t, int64(2), runs[0].ErrorCount)
}
