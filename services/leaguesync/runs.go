package leaguesync

import (
	"context"
	"database/sql"
	"encoding/json"
	"ll-analytics/internal/db"
)

// saveRun records the run in scrape_runs, a failure to do so is reported
// but does not change the run's outcome.
func (s Syncer) saveRun(ctx context.Context, r *run) {
	counts, err := json.Marshal(r.result.Counts)
	if err != nil {
		s.tel.ReportBroken(report_save_run, err)
		return
	}
	errs := r.result.Errors
	if errs == nil {
		errs = []RunError{}
	}
	errorList, err := json.Marshal(errs)
	if err != nil {
		s.tel.ReportBroken(report_save_run, err)
		return
	}

	_, err = s.qry.CreateScrapeRun(ctx, db.CreateScrapeRunParams{
		SeasonNumber: int64(r.req.Season),
		Rundle:       r.req.Rundle,
		StartedAt:    r.result.StartedAt.Unix(),
		FinishedAt:   r.result.FinishedAt.Unix(),
		Counts:       string(counts),
		ErrorCount:   int64(len(r.result.Errors)),
		Errors:       string(errorList),
	})
	if err != nil {
		s.tel.ReportBroken(report_save_run, err)
	}
}

// SavedRun is a run as recorded in scrape_runs.
type SavedRun struct {
	ID           int64
	SeasonNumber int64
	Rundle       string
	StartedAt    int64
	FinishedAt   int64
	Counts       map[Stage]int
	Errors       []RunError
}

// ListRuns returns the most recent runs first.
func (s Syncer) ListRuns(ctx context.Context, limit int) ([]SavedRun, error) {
	return listRuns(ctx, s.qry, limit)
}

// ListRuns reads the recorded runs without a session, for reporting.
func ListRuns(ctx context.Context, database *sql.DB, limit int) ([]SavedRun, error) {
	return listRuns(ctx, db.New(database), limit)
}

func listRuns(ctx context.Context, qry *db.Queries, limit int) ([]SavedRun, error) {
	rows, err := qry.ListScrapeRuns(ctx, int64(limit))
	if err != nil {
		return nil, err
	}
	runs := make([]SavedRun, len(rows))
	for i, row := range rows {
		runs[i] = SavedRun{
			ID:           row.ID,
			SeasonNumber: row.SeasonNumber,
			Rundle:       row.Rundle,
			StartedAt:    row.StartedAt,
			FinishedAt:   row.FinishedAt,
		}
		err := json.Unmarshal([]byte(row.Counts), &runs[i].Counts)
		if err != nil {
			return nil, err
		}
		err = json.Unmarshal([]byte(row.Errors), &runs[i].Errors)
		if err != nil {
			return nil, err
		}
	}
	return runs, nil
}
