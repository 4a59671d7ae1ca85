package db

import (
	"context"
	"database/sql"
)

const ensureSeason = `-- name: EnsureSeason :one
INSERT INTO seasons(season_number) VALUES (?)
ON CONFLICT(season_number) DO UPDATE SET season_number = excluded.season_number
RETURNING id
`

func (q *Queries) EnsureSeason(ctx context.Context, seasonNumber int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, ensureSeason, seasonNumber)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const ensureRundle = `-- name: EnsureRundle :one
INSERT INTO rundles(season_id, league, level, name) VALUES (?, ?, ?, ?)
ON CONFLICT(season_id, league, level, name) DO UPDATE SET name = excluded.name
RETURNING id
`

type EnsureRundleParams struct {
	SeasonID int64
	League   string
	Level    string
	Name     string
}

func (q *Queries) EnsureRundle(ctx context.Context, arg EnsureRundleParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, ensureRundle,
		arg.SeasonID,
		arg.League,
		arg.Level,
		arg.Name,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const ensurePlayer = `-- name: EnsurePlayer :one
INSERT INTO players(ll_username) VALUES (?)
ON CONFLICT(ll_username) DO UPDATE SET ll_username = excluded.ll_username
RETURNING id
`

func (q *Queries) EnsurePlayer(ctx context.Context, llUsername string) (int64, error) {
	row := q.db.QueryRowContext(ctx, ensurePlayer, llUsername)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const enrichPlayer = `-- name: EnrichPlayer :exec
UPDATE players SET
    ll_id = coalesce(?, ll_id),
    display_name = coalesce(nullif(?, ''), display_name)
WHERE id = ?
`

type EnrichPlayerParams struct {
	LlID        sql.NullInt64
	DisplayName sql.NullString
	ID          int64
}

func (q *Queries) EnrichPlayer(ctx context.Context, arg EnrichPlayerParams) error {
	_, err := q.db.ExecContext(ctx, enrichPlayer, arg.LlID, arg.DisplayName, arg.ID)
	return err
}

const getPlayerByUsername = `-- name: GetPlayerByUsername :one
SELECT id, ll_username, ll_id, display_name FROM players
WHERE ll_username = ?
`

func (q *Queries) GetPlayerByUsername(ctx context.Context, llUsername string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayerByUsername, llUsername)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.LlUsername,
		&i.LlID,
		&i.DisplayName,
	)
	return i, err
}

const upsertMembership = `-- name: UpsertMembership :exec
INSERT INTO player_rundles(player_id, rundle_id, final_rank) VALUES (?, ?, ?)
ON CONFLICT(player_id, rundle_id) DO UPDATE SET final_rank = excluded.final_rank
`

type UpsertMembershipParams struct {
	PlayerID  int64
	RundleID  int64
	FinalRank sql.NullInt64
}

func (q *Queries) UpsertMembership(ctx context.Context, arg UpsertMembershipParams) error {
	_, err := q.db.ExecContext(ctx, upsertMembership, arg.PlayerID, arg.RundleID, arg.FinalRank)
	return err
}

const listRundleMembers = `-- name: ListRundleMembers :many
SELECT players.id, players.ll_username, players.ll_id, player_rundles.final_rank
FROM player_rundles
INNER JOIN players ON players.id = player_rundles.player_id
WHERE player_rundles.rundle_id = ?
ORDER BY player_rundles.final_rank IS NULL, player_rundles.final_rank, players.ll_username
`

func (q *Queries) ListRundleMembers(ctx context.Context, rundleID int64) ([]RundleMember, error) {
	rows, err := q.db.QueryContext(ctx, listRundleMembers, rundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []RundleMember
	for rows.Next() {
		var i RundleMember
		if err := rows.Scan(
			&i.PlayerID,
			&i.LlUsername,
			&i.LlID,
			&i.FinalRank,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listCategories = `-- name: ListCategories :many
SELECT id, name FROM categories ORDER BY id
`

func (q *Queries) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := q.db.QueryContext(ctx, listCategories)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Category
	for rows.Next() {
		var i Category
		if err := rows.Scan(&i.ID, &i.Name); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// every enrichment column keeps its stored value when the incoming one is
// null or empty, so a page that renders partially never erases earlier data.
const upsertQuestion = `-- name: UpsertQuestion :one
INSERT INTO questions(
    season_id, match_day, question_number,
    category_id, raw_category,
    rundle_correct_pct, league_correct_pct,
    question_text, correct_answer
) VALUES (?, ?, ?, ?, nullif(?, ''), ?, ?, nullif(?, ''), nullif(?, ''))
ON CONFLICT(season_id, match_day, question_number) DO UPDATE SET
    category_id = coalesce(excluded.category_id, questions.category_id),
    raw_category = coalesce(excluded.raw_category, questions.raw_category),
    rundle_correct_pct = coalesce(excluded.rundle_correct_pct, questions.rundle_correct_pct),
    league_correct_pct = coalesce(excluded.league_correct_pct, questions.league_correct_pct),
    question_text = coalesce(excluded.question_text, questions.question_text),
    correct_answer = coalesce(excluded.correct_answer, questions.correct_answer)
RETURNING id
`

type UpsertQuestionParams struct {
	SeasonID         int64
	MatchDay         int64
	QuestionNumber   int64
	CategoryID       sql.NullInt64
	RawCategory      string
	RundleCorrectPct sql.NullFloat64
	LeagueCorrectPct sql.NullFloat64
	QuestionText     string
	CorrectAnswer    string
}

func (q *Queries) UpsertQuestion(ctx context.Context, arg UpsertQuestionParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertQuestion,
		arg.SeasonID,
		arg.MatchDay,
		arg.QuestionNumber,
		arg.CategoryID,
		arg.RawCategory,
		arg.RundleCorrectPct,
		arg.LeagueCorrectPct,
		arg.QuestionText,
		arg.CorrectAnswer,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getQuestion = `-- name: GetQuestion :one
SELECT
    id, season_id, match_day, question_number,
    category_id, raw_category,
    rundle_correct_pct, league_correct_pct,
    question_text, correct_answer
FROM questions
WHERE season_id = ? AND match_day = ? AND question_number = ?
`

type GetQuestionParams struct {
	SeasonID       int64
	MatchDay       int64
	QuestionNumber int64
}

func (q *Queries) GetQuestion(ctx context.Context, arg GetQuestionParams) (Question, error) {
	row := q.db.QueryRowContext(ctx, getQuestion, arg.SeasonID, arg.MatchDay, arg.QuestionNumber)
	var i Question
	err := row.Scan(
		&i.ID,
		&i.SeasonID,
		&i.MatchDay,
		&i.QuestionNumber,
		&i.CategoryID,
		&i.RawCategory,
		&i.RundleCorrectPct,
		&i.LeagueCorrectPct,
		&i.QuestionText,
		&i.CorrectAnswer,
	)
	return i, err
}

const upsertAnswer = `-- name: UpsertAnswer :exec
INSERT INTO answers(player_id, question_id, correct, defense_points_assigned) VALUES (?, ?, ?, ?)
ON CONFLICT(player_id, question_id) DO UPDATE SET
    correct = excluded.correct,
    defense_points_assigned = coalesce(excluded.defense_points_assigned, answers.defense_points_assigned)
`

type UpsertAnswerParams struct {
	PlayerID              int64
	QuestionID            int64
	Correct               bool
	DefensePointsAssigned sql.NullInt64
}

func (q *Queries) UpsertAnswer(ctx context.Context, arg UpsertAnswerParams) error {
	_, err := q.db.ExecContext(ctx, upsertAnswer,
		arg.PlayerID,
		arg.QuestionID,
		arg.Correct,
		arg.DefensePointsAssigned,
	)
	return err
}

const upsertMatch = `-- name: UpsertMatch :one
INSERT INTO matches(
    season_id, rundle_id, match_day, player1_id, player2_id,
    player1_score, player2_score, player1_tca, player2_tca, ll_match_id
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(season_id, match_day, player1_id, player2_id) DO UPDATE SET
    rundle_id = coalesce(excluded.rundle_id, matches.rundle_id),
    player1_score = coalesce(excluded.player1_score, matches.player1_score),
    player2_score = coalesce(excluded.player2_score, matches.player2_score),
    player1_tca = coalesce(excluded.player1_tca, matches.player1_tca),
    player2_tca = coalesce(excluded.player2_tca, matches.player2_tca),
    ll_match_id = coalesce(excluded.ll_match_id, matches.ll_match_id)
RETURNING id
`

type UpsertMatchParams struct {
	SeasonID     int64
	RundleID     sql.NullInt64
	MatchDay     int64
	Player1ID    int64
	Player2ID    int64
	Player1Score sql.NullInt64
	Player2Score sql.NullInt64
	Player1Tca   sql.NullInt64
	Player2Tca   sql.NullInt64
	LlMatchID    sql.NullInt64
}

func (q *Queries) UpsertMatch(ctx context.Context, arg UpsertMatchParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, upsertMatch,
		arg.SeasonID,
		arg.RundleID,
		arg.MatchDay,
		arg.Player1ID,
		arg.Player2ID,
		arg.Player1Score,
		arg.Player2Score,
		arg.Player1Tca,
		arg.Player2Tca,
		arg.LlMatchID,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const getMatch = `-- name: GetMatch :one
SELECT
    id, season_id, rundle_id, match_day, player1_id, player2_id,
    player1_score, player2_score, player1_tca, player2_tca, ll_match_id
FROM matches WHERE id = ?
`

func (q *Queries) GetMatch(ctx context.Context, id int64) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, id)
	var i Match
	err := row.Scan(
		&i.ID,
		&i.SeasonID,
		&i.RundleID,
		&i.MatchDay,
		&i.Player1ID,
		&i.Player2ID,
		&i.Player1Score,
		&i.Player2Score,
		&i.Player1Tca,
		&i.Player2Tca,
		&i.LlMatchID,
	)
	return i, err
}

const upsertMatchQuestion = `-- name: UpsertMatchQuestion :exec
INSERT INTO match_questions(
    match_id, question_num, question_id,
    player1_correct, player2_correct, player1_defense, player2_defense,
    category_id, raw_category, difficulty
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, nullif(?, ''), ?)
ON CONFLICT(match_id, question_num) DO UPDATE SET
    question_id = coalesce(excluded.question_id, match_questions.question_id),
    player1_correct = coalesce(excluded.player1_correct, match_questions.player1_correct),
    player2_correct = coalesce(excluded.player2_correct, match_questions.player2_correct),
    player1_defense = coalesce(excluded.player1_defense, match_questions.player1_defense),
    player2_defense = coalesce(excluded.player2_defense, match_questions.player2_defense),
    category_id = coalesce(excluded.category_id, match_questions.category_id),
    raw_category = coalesce(excluded.raw_category, match_questions.raw_category),
    difficulty = coalesce(excluded.difficulty, match_questions.difficulty)
`

type UpsertMatchQuestionParams struct {
	MatchID        int64
	QuestionNum    int64
	QuestionID     sql.NullInt64
	Player1Correct sql.NullBool
	Player2Correct sql.NullBool
	Player1Defense sql.NullInt64
	Player2Defense sql.NullInt64
	CategoryID     sql.NullInt64
	RawCategory    string
	Difficulty     sql.NullFloat64
}

func (q *Queries) UpsertMatchQuestion(ctx context.Context, arg UpsertMatchQuestionParams) error {
	_, err := q.db.ExecContext(ctx, upsertMatchQuestion,
		arg.MatchID,
		arg.QuestionNum,
		arg.QuestionID,
		arg.Player1Correct,
		arg.Player2Correct,
		arg.Player1Defense,
		arg.Player2Defense,
		arg.CategoryID,
		arg.RawCategory,
		arg.Difficulty,
	)
	return err
}

const upsertLifetimeStat = `-- name: UpsertLifetimeStat :exec
INSERT INTO player_lifetime_stats(player_id, category_id, correct, total, correct_pct, updated_at) VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(player_id, category_id) DO UPDATE SET
    correct = coalesce(excluded.correct, player_lifetime_stats.correct),
    total = coalesce(excluded.total, player_lifetime_stats.total),
    correct_pct = coalesce(excluded.correct_pct, player_lifetime_stats.correct_pct),
    updated_at = excluded.updated_at
`

type UpsertLifetimeStatParams struct {
	PlayerID   int64
	CategoryID int64
	Correct    sql.NullInt64
	Total      sql.NullInt64
	CorrectPct sql.NullFloat64
	UpdatedAt  int64
}

func (q *Queries) UpsertLifetimeStat(ctx context.Context, arg UpsertLifetimeStatParams) error {
	_, err := q.db.ExecContext(ctx, upsertLifetimeStat,
		arg.PlayerID,
		arg.CategoryID,
		arg.Correct,
		arg.Total,
		arg.CorrectPct,
		arg.UpdatedAt,
	)
	return err
}

const createScrapeRun = `-- name: CreateScrapeRun :one
INSERT INTO scrape_runs(season_number, rundle, started_at, finished_at, counts, error_count, errors)
VALUES (?, ?, ?, ?, ?, ?, ?)
RETURNING id
`

type CreateScrapeRunParams struct {
	SeasonNumber int64
	Rundle       string
	StartedAt    int64
	FinishedAt   int64
	Counts       string
	ErrorCount   int64
	Errors       string
}

func (q *Queries) CreateScrapeRun(ctx context.Context, arg CreateScrapeRunParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, createScrapeRun,
		arg.SeasonNumber,
		arg.Rundle,
		arg.StartedAt,
		arg.FinishedAt,
		arg.Counts,
		arg.ErrorCount,
		arg.Errors,
	)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const listScrapeRuns = `-- name: ListScrapeRuns :many
SELECT id, season_number, rundle, started_at, finished_at, counts, error_count, errors
FROM scrape_runs
ORDER BY started_at DESC, id DESC
LIMIT ?
`

func (q *Queries) ListScrapeRuns(ctx context.Context, limit int64) ([]ScrapeRun, error) {
	rows, err := q.db.QueryContext(ctx, listScrapeRuns, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ScrapeRun
	for rows.Next() {
		var i ScrapeRun
		if err := rows.Scan(
			&i.ID,
			&i.SeasonNumber,
			&i.Rundle,
			&i.StartedAt,
			&i.FinishedAt,
			&i.Counts,
			&i.ErrorCount,
			&i.Errors,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
