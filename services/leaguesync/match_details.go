package leaguesync

import (
	"context"
	"database/sql"
	"fmt"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
)

// resolveSides maps the players of a detail page onto the sides of the
// stored match, swapped is true when the page lists them the other way.
func (s Syncer) resolveSides(ctx context.Context, match db.MatchNeedingDetails, detail learnedleague.MatchDetail) (swapped bool, err error) {
	p1, err := s.qry.GetPlayerByUsername(ctx, detail.Player1.Username)
	if err != nil {
		return false, fmt.Errorf("player %s: %w", detail.Player1.Username, err)
	}
	p2, err := s.qry.GetPlayerByUsername(ctx, detail.Player2.Username)
	if err != nil {
		return false, fmt.Errorf("player %s: %w", detail.Player2.Username, err)
	}
	switch {
	case p1.ID == match.Player1ID && p2.ID == match.Player2ID:
		return false, nil
	case p1.ID == match.Player2ID && p2.ID == match.Player1ID:
		return true, nil
	}
	return false, fmt.Errorf("%s and %s did not play this match", p1.LlUsername, p2.LlUsername)
}

func upsertSideAnswer(ctx context.Context, tx *db.Queries, playerID, questionID int64, correct sql.NullBool, defense sql.NullInt64) (int, error) {
	if !correct.Valid {
		return 0, nil
	}
	err := tx.UpsertAnswer(ctx, db.UpsertAnswerParams{
		PlayerID:              playerID,
		QuestionID:            questionID,
		Correct:               correct.Bool,
		DefensePointsAssigned: defense,
	})
	if err != nil {
		return 0, err
	}
	return 1, nil
}

// syncMatchDetails fetches the single match page of every match with a
// site id and fewer than six question rows. Matches without a site id have
// no detail page and are only counted as skipped.
func (s Syncer) syncMatchDetails(ctx context.Context, r *run) error {
	withoutID := s.checkpoint(r, StageMatchDetails, "matches without id", func() (int64, error) {
		return s.qry.CountMatchesWithoutExternalID(ctx, db.CountMatchesWithoutExternalIDParams{
			SeasonID: r.seasonID,
			RundleID: r.rundleID,
		})
	})
	r.result.Skipped[StageMatchDetails] += int(withoutID)

	pending, err := s.qry.ListMatchesNeedingDetails(ctx, db.ListMatchesNeedingDetailsParams{
		SeasonID: r.seasonID,
		RundleID: r.rundleID,
	})
	if err != nil {
		r.fail(StageMatchDetails, KindPersistence, "list matches", err)
		return nil
	}

	for _, match := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		if int(match.MatchDay) > r.lastDay() {
			continue
		}
		path := learnedleague.MatchDetailPath(match.LlMatchID)
		doc, err := s.fetch(ctx, r, StageMatchDetails, path)
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}
		detail, ok := learnedleague.ParseMatchDetail(doc)
		if !ok {
			r.fail(StageMatchDetails, KindParse, path, nil)
			continue
		}
		swapped, err := s.resolveSides(ctx, match, detail)
		if err != nil {
			r.fail(StageMatchDetails, KindParse, path, err)
			continue
		}

		s.persist(r, StageMatchDetails, path, func(tx *db.Queries) (int, error) {
			count := 0
			for _, q := range detail.Questions {
				correct1, correct2 := nullBool(q.Player1Correct), nullBool(q.Player2Correct)
				defense1, defense2 := nullInt(q.Player1Defense), nullInt(q.Player2Defense)
				if swapped {
					correct1, correct2 = correct2, correct1
					defense1, defense2 = defense2, defense1
				}

				questionID, err := tx.UpsertQuestion(ctx, db.UpsertQuestionParams{
					SeasonID:         r.seasonID,
					MatchDay:         match.MatchDay,
					QuestionNumber:   int64(q.Number),
					CategoryID:       r.categoryID(q.Category),
					RawCategory:      q.RawCategory,
					RundleCorrectPct: nullFloat(q.RundleCorrectPct),
				})
				if err != nil {
					return 0, err
				}
				err = tx.UpsertMatchQuestion(ctx, db.UpsertMatchQuestionParams{
					MatchID:        match.ID,
					QuestionNum:    int64(q.Number),
					QuestionID:     sql.NullInt64{Int64: questionID, Valid: true},
					Player1Correct: correct1,
					Player2Correct: correct2,
					Player1Defense: defense1,
					Player2Defense: defense2,
					CategoryID:     r.categoryID(q.Category),
					RawCategory:    q.RawCategory,
					Difficulty:     nullFloat(q.RundleCorrectPct),
				})
				if err != nil {
					return 0, err
				}
				count++

				n, err := upsertSideAnswer(ctx, tx, match.Player1ID, questionID, correct1, defense1)
				if err != nil {
					return 0, err
				}
				count += n
				n, err = upsertSideAnswer(ctx, tx, match.Player2ID, questionID, correct2, defense2)
				if err != nil {
					return 0, err
				}
				count += n
			}
			return count, nil
		})
	}
	return nil
}
