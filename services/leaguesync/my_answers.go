package leaguesync

import (
	"context"
	"database/sql"
	"errors"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
)

// myAnswersSatisfied reports whether a match day page is already captured.
// The page only carries the account's own answers when the account plays in
// the rundle, otherwise the question text alone is enough.
func (s Syncer) myAnswersSatisfied(ctx context.Context, r *run, day int, path string) bool {
	withText := s.checkpoint(r, StageMyAnswers, path, func() (int64, error) {
		return s.qry.CountQuestionsWithText(ctx, db.CountQuestionsWithTextParams{
			SeasonID: r.seasonID,
			MatchDay: int64(day),
		})
	})
	if withText < db.QuestionsPerDay {
		return false
	}

	self, err := s.qry.GetPlayerByUsername(ctx, s.session.Username())
	if errors.Is(err, sql.ErrNoRows) {
		return true
	}
	if err != nil {
		r.fail(StageMyAnswers, KindPersistence, path, err)
		return false
	}
	member, err := s.qry.CountPlayerInRundle(ctx, db.CountPlayerInRundleParams{
		PlayerID: self.ID,
		RundleID: r.rundleID,
	})
	if err != nil {
		r.fail(StageMyAnswers, KindPersistence, path, err)
		return false
	}
	if member == 0 {
		return true
	}
	answered := s.checkpoint(r, StageMyAnswers, path, func() (int64, error) {
		return s.qry.CountPlayerAnswersForDay(ctx, db.CountPlayerAnswersForDayParams{
			PlayerID: self.ID,
			SeasonID: r.seasonID,
			MatchDay: int64(day),
		})
	})
	return answered >= db.QuestionsPerDay
}

// syncMyAnswers reads the match day pages, the only source of question
// text and answers, together with the logged in player's own answers.
func (s Syncer) syncMyAnswers(ctx context.Context, r *run) error {
	for day := learnedleague.FirstMatchDay; day <= r.lastDay(); day++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := learnedleague.QuestionDayPath(r.req.Season, day)
		if s.myAnswersSatisfied(ctx, r, day, path) {
			r.result.Skipped[StageMyAnswers]++
			continue
		}

		doc, err := s.fetch(ctx, r, StageMyAnswers, path)
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}
		questionDay, ok := learnedleague.ParseQuestionDay(doc, r.req.Rundle)
		if !ok {
			r.fail(StageMyAnswers, KindParse, path, nil)
			continue
		}
		answers, hasAnswers := learnedleague.ParseAnswerHistory(doc)
		if !hasAnswers {
			s.tel.ReportDebug("no answer history", path)
		}

		s.persist(r, StageMyAnswers, path, func(tx *db.Queries) (int, error) {
			count := 0
			questionIDs := map[int]int64{}
			for _, q := range questionDay.Questions {
				id, err := tx.UpsertQuestion(ctx, db.UpsertQuestionParams{
					SeasonID:         r.seasonID,
					MatchDay:         int64(day),
					QuestionNumber:   int64(q.Number),
					CategoryID:       r.categoryID(q.Category),
					RawCategory:      q.RawCategory,
					RundleCorrectPct: nullFloat(q.RundleCorrectPct),
					LeagueCorrectPct: nullFloat(q.LeagueCorrectPct),
					QuestionText:     q.Text,
					CorrectAnswer:    q.Answer,
				})
				if err != nil {
					return 0, err
				}
				questionIDs[q.Number] = id
				count++
			}
			if !hasAnswers {
				return count, nil
			}

			selfID, err := tx.EnsurePlayer(ctx, s.session.Username())
			if err != nil {
				return 0, err
			}
			for _, answer := range answers {
				questionID, ok := questionIDs[answer.QuestionNumber]
				if !ok {
					continue
				}
				err := tx.UpsertAnswer(ctx, db.UpsertAnswerParams{
					PlayerID:              selfID,
					QuestionID:            questionID,
					Correct:               answer.Correct,
					DefensePointsAssigned: nullInt(answer.DefensePoints),
				})
				if err != nil {
					return 0, err
				}
				count++
			}
			return count, nil
		})
	}
	return nil
}
