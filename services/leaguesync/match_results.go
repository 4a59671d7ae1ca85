package leaguesync

import (
	"context"
	"fmt"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
)

// syncMatchResults records every match of the rundle with its scores and
// the site's match id.
func (s Syncer) syncMatchResults(ctx context.Context, r *run) error {
	members := s.checkpoint(r, StageMatchResults, "members", func() (int64, error) {
		return s.qry.CountRundleMembers(ctx, r.rundleID)
	})

	for day := learnedleague.FirstMatchDay; day <= r.lastDay(); day++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := learnedleague.RosterPath(r.req.Season, day, r.req.Rundle)
		played := s.checkpoint(r, StageMatchResults, path, func() (int64, error) {
			return s.qry.CountMembersWithMatches(ctx, db.CountMembersWithMatchesParams{
				RundleID: r.rundleID,
				SeasonID: r.seasonID,
				MatchDay: int64(day),
			})
		})
		if db.Satisfied(played, members) {
			r.result.Skipped[StageMatchResults]++
			continue
		}

		doc, err := s.fetch(ctx, r, StageMatchResults, path)
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}
		results, ok := learnedleague.ParseMatchRoster(doc)
		if !ok {
			r.fail(StageMatchResults, KindParse, path, nil)
			continue
		}

		s.persist(r, StageMatchResults, path, func(tx *db.Queries) (int, error) {
			for _, match := range results {
				player1, err := ensurePlayer(ctx, tx, match.Player1)
				if err != nil {
					return 0, err
				}
				player2, err := ensurePlayer(ctx, tx, match.Player2)
				if err != nil {
					return 0, err
				}
				_, err = tx.UpsertMatch(ctx, db.UpsertMatchParams{
					SeasonID:     r.seasonID,
					RundleID:     nullInt64(&r.rundleID),
					MatchDay:     int64(day),
					Player1ID:    player1,
					Player2ID:    player2,
					Player1Score: nullInt(match.Player1Score),
					Player2Score: nullInt(match.Player2Score),
					Player1Tca:   nullInt(match.Player1TCA),
					Player2Tca:   nullInt(match.Player2TCA),
					LlMatchID:    nullInt64(match.LLMatchID),
				})
				if err != nil {
					return 0, fmt.Errorf("%s vs %s: %w", match.Player1.Username, match.Player2.Username, err)
				}
			}
			return len(results), nil
		})
	}
	return nil
}
