package leaguesync

import (
	"context"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
)

// syncStandings is always fetched when enabled, it is the only source of
// rundle membership and every checkpoint is relative to it.
func (s Syncer) syncStandings(ctx context.Context, r *run) error {
	path := learnedleague.StandingsPath(r.req.Season, r.req.Rundle)
	doc, err := s.fetch(ctx, r, StageStandings, path)
	if err != nil || doc == nil {
		return err
	}
	standings, ok := learnedleague.ParseStandings(doc)
	if !ok {
		r.fail(StageStandings, KindParse, path, nil)
		return nil
	}

	s.persist(r, StageStandings, path, func(tx *db.Queries) (int, error) {
		for _, standing := range standings {
			playerID, err := ensurePlayer(ctx, tx, standing.Player)
			if err != nil {
				return 0, err
			}
			err = tx.UpsertMembership(ctx, db.UpsertMembershipParams{
				PlayerID:  playerID,
				RundleID:  r.rundleID,
				FinalRank: nullInt(&standing.Rank),
			})
			if err != nil {
				return 0, err
			}
		}
		return len(standings), nil
	})
	return nil
}
