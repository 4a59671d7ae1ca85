package leaguesync

import (
	"context"
	"database/sql"
	"fmt"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
)

// enrichFromTracker fills in the site ids of members the standings only
// linked by name, the tracker page lists ids for every followed player.
func (s Syncer) enrichFromTracker(ctx context.Context, r *run, members []db.RundleMember) error {
	path := learnedleague.TrackerPath()
	doc, err := s.fetch(ctx, r, StageProfiles, path)
	if err != nil || doc == nil {
		return err
	}
	tracked, ok := learnedleague.ParseTracker(doc, r.req.Season)
	if !ok {
		r.fail(StageProfiles, KindParse, path, nil)
		return nil
	}
	byName := map[string]learnedleague.TrackedPlayer{}
	for _, t := range tracked {
		byName[t.Username] = t
	}

	found := map[int]int64{}
	saved := s.persist(r, StageProfiles, path, func(tx *db.Queries) (int, error) {
		for i, member := range members {
			t, ok := byName[member.LlUsername]
			if member.LlID.Valid || !ok || t.LLID == nil {
				continue
			}
			err := tx.EnrichPlayer(ctx, db.EnrichPlayerParams{
				ID:   member.PlayerID,
				LlID: nullInt64(t.LLID),
			})
			if err != nil {
				return 0, err
			}
			found[i] = *t.LLID
		}
		return len(found), nil
	})
	if saved {
		for i, id := range found {
			members[i].LlID = sql.NullInt64{Int64: id, Valid: true}
		}
	}
	return nil
}

// syncProfiles refreshes the lifetime category breakdown of every member
// that does not have all categories yet, in standings order.
func (s Syncer) syncProfiles(ctx context.Context, r *run) error {
	members, err := s.qry.ListRundleMembers(ctx, r.rundleID)
	if err != nil {
		r.fail(StageProfiles, KindPersistence, "list members", err)
		return nil
	}

	for _, member := range members {
		if !member.LlID.Valid {
			err := s.enrichFromTracker(ctx, r, members)
			if err != nil {
				return err
			}
			break
		}
	}

	for _, member := range members {
		if err := ctx.Err(); err != nil {
			return err
		}

		path := learnedleague.ProfilePathByUsername(member.LlUsername)
		if member.LlID.Valid {
			path = learnedleague.ProfilePath(member.LlID.Int64)
		}
		have := s.checkpoint(r, StageProfiles, path, func() (int64, error) {
			return s.qry.CountLifetimeStats(ctx, member.PlayerID)
		})
		if have >= int64(len(db.Categories)) {
			r.result.Skipped[StageProfiles]++
			continue
		}

		doc, err := s.fetch(ctx, r, StageProfiles, path)
		if err != nil {
			return err
		}
		if doc == nil {
			continue
		}
		profile, ok := learnedleague.ParseProfile(doc)
		if !ok {
			r.fail(StageProfiles, KindParse, path, nil)
			continue
		}
		for _, label := range profile.Unmapped {
			s.tel.ReportWarning(
				fmt.Sprintf("%s.%s", report_stage, StageProfiles),
				"unmapped category", label, member.LlUsername,
			)
		}

		s.persist(r, StageProfiles, path, func(tx *db.Queries) (int, error) {
			enrich := db.EnrichPlayerParams{
				ID:          member.PlayerID,
				DisplayName: sql.NullString{String: profile.DisplayName, Valid: profile.DisplayName != ""},
			}
			if !member.LlID.Valid {
				enrich.LlID = nullInt64(profile.LLID)
			}
			err := tx.EnrichPlayer(ctx, enrich)
			if err != nil {
				return 0, err
			}

			count := 0
			for _, stat := range profile.Stats {
				categoryID := r.categoryID(stat.Category)
				if !categoryID.Valid {
					continue
				}
				err := tx.UpsertLifetimeStat(ctx, db.UpsertLifetimeStatParams{
					PlayerID:   member.PlayerID,
					CategoryID: categoryID.Int64,
					Correct:    nullInt(stat.Correct),
					Total:      nullInt(stat.Total),
					CorrectPct: nullFloat(stat.CorrectPct),
					UpdatedAt:  s.time.Now().Unix(),
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
