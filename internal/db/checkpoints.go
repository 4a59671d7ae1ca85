package db

import "context"

// Satisfied reports whether `have` units of data are enough to skip fetching
// a scope that is expected to produce `expected` units. Two missing units are
// tolerated since players who withdraw or forfeit never produce data. A scope
// with nothing expected is never satisfied.
func Satisfied(have, expected int64) bool {
	if expected <= 0 {
		return false
	}
	return have >= expected-2
}

const countRundleMembers = `-- name: CountRundleMembers :one
SELECT count(*) FROM player_rundles WHERE rundle_id = ?
`

func (q *Queries) CountRundleMembers(ctx context.Context, rundleID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countRundleMembers, rundleID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countPlayerInRundle = `-- name: CountPlayerInRundle :one
SELECT count(*) FROM player_rundles WHERE player_id = ? AND rundle_id = ?
`

type CountPlayerInRundleParams struct {
	PlayerID int64
	RundleID int64
}

func (q *Queries) CountPlayerInRundle(ctx context.Context, arg CountPlayerInRundleParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlayerInRundle, arg.PlayerID, arg.RundleID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countMembersWithAnswers = `-- name: CountMembersWithAnswers :one
SELECT count(DISTINCT answers.player_id)
FROM answers
INNER JOIN questions ON questions.id = answers.question_id
INNER JOIN player_rundles ON player_rundles.player_id = answers.player_id
WHERE player_rundles.rundle_id = ?
    AND questions.season_id = ?
    AND questions.match_day = ?
`

type CountMembersWithAnswersParams struct {
	RundleID int64
	SeasonID int64
	MatchDay int64
}

func (q *Queries) CountMembersWithAnswers(ctx context.Context, arg CountMembersWithAnswersParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMembersWithAnswers, arg.RundleID, arg.SeasonID, arg.MatchDay)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countMembersWithMatches = `-- name: CountMembersWithMatches :one
SELECT count(DISTINCT player_rundles.player_id)
FROM player_rundles
INNER JOIN matches ON
    matches.player1_id = player_rundles.player_id
    OR matches.player2_id = player_rundles.player_id
WHERE player_rundles.rundle_id = ?
    AND matches.season_id = ?
    AND matches.match_day = ?
`

type CountMembersWithMatchesParams struct {
	RundleID int64
	SeasonID int64
	MatchDay int64
}

func (q *Queries) CountMembersWithMatches(ctx context.Context, arg CountMembersWithMatchesParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMembersWithMatches, arg.RundleID, arg.SeasonID, arg.MatchDay)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countQuestionsWithText = `-- name: CountQuestionsWithText :one
SELECT count(*) FROM questions
WHERE season_id = ? AND match_day = ? AND question_text IS NOT NULL
`

type CountQuestionsWithTextParams struct {
	SeasonID int64
	MatchDay int64
}

func (q *Queries) CountQuestionsWithText(ctx context.Context, arg CountQuestionsWithTextParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countQuestionsWithText, arg.SeasonID, arg.MatchDay)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countPlayerAnswersForDay = `-- name: CountPlayerAnswersForDay :one
SELECT count(*) FROM answers
INNER JOIN questions ON questions.id = answers.question_id
WHERE answers.player_id = ? AND questions.season_id = ? AND questions.match_day = ?
`

type CountPlayerAnswersForDayParams struct {
	PlayerID int64
	SeasonID int64
	MatchDay int64
}

func (q *Queries) CountPlayerAnswersForDay(ctx context.Context, arg CountPlayerAnswersForDayParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlayerAnswersForDay, arg.PlayerID, arg.SeasonID, arg.MatchDay)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const listMatchesNeedingDetails = `-- name: ListMatchesNeedingDetails :many
SELECT matches.id, matches.match_day, matches.player1_id, matches.player2_id, matches.ll_match_id
FROM matches
WHERE matches.season_id = ?
    AND matches.rundle_id = ?
    AND matches.ll_match_id IS NOT NULL
    AND (SELECT count(*) FROM match_questions WHERE match_questions.match_id = matches.id) < 6
ORDER BY matches.match_day, matches.id
`

type ListMatchesNeedingDetailsParams struct {
	SeasonID int64
	RundleID int64
}

func (q *Queries) ListMatchesNeedingDetails(ctx context.Context, arg ListMatchesNeedingDetailsParams) ([]MatchNeedingDetails, error) {
	rows, err := q.db.QueryContext(ctx, listMatchesNeedingDetails, arg.SeasonID, arg.RundleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MatchNeedingDetails
	for rows.Next() {
		var i MatchNeedingDetails
		if err := rows.Scan(
			&i.ID,
			&i.MatchDay,
			&i.Player1ID,
			&i.Player2ID,
			&i.LlMatchID,
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

const countMatchesWithoutExternalID = `-- name: CountMatchesWithoutExternalID :one
SELECT count(*) FROM matches
WHERE season_id = ? AND rundle_id = ? AND ll_match_id IS NULL
`

type CountMatchesWithoutExternalIDParams struct {
	SeasonID int64
	RundleID int64
}

func (q *Queries) CountMatchesWithoutExternalID(ctx context.Context, arg CountMatchesWithoutExternalIDParams) (int64, error) {
	row := q.db.QueryRowContext(ctx, countMatchesWithoutExternalID, arg.SeasonID, arg.RundleID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const countLifetimeStats = `-- name: CountLifetimeStats :one
SELECT count(*) FROM player_lifetime_stats WHERE player_id = ?
`

func (q *Queries) CountLifetimeStats(ctx context.Context, playerID int64) (int64, error) {
	row := q.db.QueryRowContext(ctx, countLifetimeStats, playerID)
	var count int64
	err := row.Scan(&count)
	return count, err
}
