package leaguesync

import (
	"context"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
)

// syncRundleAnswers reads the rundle grid of every match day not already
// answered by enough members, it covers the players the match pages missed.
func (s Syncer) syncRundleAnswers(ctx context.Context, r *run) error {
	members := s.checkpoint(r, StageRundleAnswers, "members", func() (int64, error) {
		return s.qry.CountRundleMembers(ctx, r.rundleID)
	})

	for day := learnedleague.FirstMatchDay; day <= r.lastDay(); day++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := learnedleague.RundleGridPath(r.req.Season, day, r.req.Rundle)
		answered := s.checkpoint(r, StageRundleAnswers, path, func() (int64, error) {
			return s.qry.CountMembersWithAnswers(ctx, db.CountMembersWithAnswersParams{
				RundleID: r.rundleID,
				SeasonID: r.seasonID,
				MatchDay: int64(day),
			})
		})
		if db.Satisfied(answered, members) {
			r.result.Skipped[StageRundleAnswers]++
			continue
		}

		doc, err := s.fetch(ctx, r, StageRundleAnswers, path)
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}
		grid, ok := learnedleague.ParseRundleGrid(doc)
		if !ok {
			r.fail(StageRundleAnswers, KindParse, path, nil)
			continue
		}

		s.persist(r, StageRundleAnswers, path, func(tx *db.Queries) (int, error) {
			count := 0
			questionIDs := map[int]int64{}
			for _, column := range grid.Columns {
				id, err := tx.UpsertQuestion(ctx, db.UpsertQuestionParams{
					SeasonID:         r.seasonID,
					MatchDay:         int64(day),
					QuestionNumber:   int64(column.Number),
					CategoryID:       r.categoryID(column.Category),
					RawCategory:      column.RawCategory,
					RundleCorrectPct: nullFloat(column.RundleCorrectPct),
				})
				if err != nil {
					return 0, err
				}
				questionIDs[column.Number] = id
			}

			for _, row := range grid.Rows {
				playerID, err := ensurePlayer(ctx, tx, row.Player)
				if err != nil {
					return 0, err
				}
				for _, cell := range row.Cells {
					questionID, ok := questionIDs[cell.QuestionNumber]
					if !ok {
						continue
					}
					err := tx.UpsertAnswer(ctx, db.UpsertAnswerParams{
						PlayerID:              playerID,
						QuestionID:            questionID,
						Correct:               cell.Correct,
						DefensePointsAssigned: nullInt(cell.DefensePoints),
					})
					if err != nil {
						return 0, err
					}
					count++
				}
			}
			return count, nil
		})
	}
	return nil
}
