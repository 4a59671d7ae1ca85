package leaguesync

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"ll-analytics/internal/components/assert"
	"ll-analytics/internal/components/chrono"
	"ll-analytics/internal/components/telemetry"
	"ll-analytics/internal/db"
	"ll-analytics/internal/scrapers/learnedleague"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("ll-analytics/services/leaguesync")

const (
	report_scrape_full = "scrape-full"
	report_stage       = "stage"
	report_save_run    = "save-run"
)

// Session is the part of learnedleague.Client the pipeline needs.
type Session interface {
	Login(ctx context.Context) error
	LoggedIn() bool
	Username() string
	Fetch(ctx context.Context, path string) (*goquery.Document, error)
}

// Syncer runs the pipeline. One run at a time, the session it uses is not
// safe for concurrent use.
type Syncer struct {
	session Session
	db      *sql.DB
	qry     *db.Queries
	makeTx  db.MakeTx
	time    chrono.API
	tel     telemetry.API
}

func NewSyncer(session Session, database *sql.DB, time chrono.API, tel telemetry.API) Syncer {
	assert.NotNil(session)
	assert.NotNil(database)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Syncer{
		session: session,
		db:      database,
		qry:     db.New(database),
		makeTx:  db.NewMakeTx(database),
		time:    time,
		tel:     telemetry.NewScopedAPI("leaguesync", tel),
	}
}

// run is the state shared by the stages of one ScrapeFull call.
type run struct {
	req        Request
	seasonID   int64
	rundleID   int64
	categories map[string]int64
	result     *RunResult
}

func (r *run) fail(stage Stage, kind ErrorKind, unit string, err error) {
	detail := unit
	if err != nil {
		detail = fmt.Sprintf("%s: %v", unit, err)
	}
	r.result.Errors = append(r.result.Errors, RunError{Stage: stage, Kind: kind, Detail: detail})
}

func (r *run) categoryID(name string) sql.NullInt64 {
	id, ok := r.categories[name]
	if !ok {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}

func (r *run) lastDay() int {
	if r.req.LastDay <= 0 || r.req.LastDay > learnedleague.LastMatchDay {
		return learnedleague.LastMatchDay
	}
	return r.req.LastDay
}

// splitRundle turns "C_Skyline" into level "C" and league "Skyline".
func splitRundle(name string) (level, league string) {
	level, league, found := strings.Cut(name, "_")
	if !found {
		return "", name
	}
	return level, league
}

// ScrapeFull runs every enabled stage for one season and rundle. Failures
// of single pages are collected into the result, the returned error is
// only ever learnedleague.ErrAuthFailed or the context's error.
func (s Syncer) ScrapeFull(ctx context.Context, req Request) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "ScrapeFull")
	defer span.End()
	span.SetAttributes(
		attribute.Int("season", req.Season),
		attribute.String("rundle", req.Rundle),
	)

	result := newRunResult(s.time.Now())
	r := &run{req: req, result: &result}

	err := s.scrape(ctx, r)
	result.FinishedAt = s.time.Now()
	s.saveRun(context.WithoutCancel(ctx), r)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}
	for stage, count := range result.Counts {
		s.tel.ReportCount(fmt.Sprintf("%s.%s", report_stage, stage), int64(count))
	}
	return result, nil
}

func (s Syncer) scrape(ctx context.Context, r *run) error {
	if !s.session.LoggedIn() {
		err := s.session.Login(ctx)
		if err != nil {
			s.tel.ReportBroken(report_scrape_full, err)
			return err
		}
	}

	err := s.prepare(ctx, r)
	if err != nil {
		s.tel.ReportBroken(report_scrape_full, err)
		r.fail(StageStandings, KindPersistence, "prepare run", err)
		return nil
	}

	stages := map[Stage]func(context.Context, *run) error{
		StageStandings:     s.syncStandings,
		StageMyAnswers:     s.syncMyAnswers,
		StageMatchResults:  s.syncMatchResults,
		StageMatchDetails:  s.syncMatchDetails,
		StageProfiles:      s.syncProfiles,
		StageRundleAnswers: s.syncRundleAnswers,
	}
	for _, stage := range StageOrder {
		if !r.req.enabled(stage) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		stageCtx, span := tracer.Start(ctx, fmt.Sprintf("stage:%s", stage))
		errorsBefore := len(r.result.Errors)
		err := stages[stage](stageCtx, r)
		span.SetAttributes(
			attribute.Int("count", r.result.Counts[stage]),
			attribute.Int("errors", len(r.result.Errors)-errorsBefore),
		)
		span.End()
		if err != nil {
			return err
		}
	}
	return nil
}

// prepare creates the season and rundle rows so every stage can run on
// its own, and loads the category ids.
func (s Syncer) prepare(ctx context.Context, r *run) error {
	if r.req.Season <= 0 || r.req.Rundle == "" {
		return fmt.Errorf("season and rundle are required")
	}

	tx, discard, commit, err := s.makeTx()
	if err != nil {
		return err
	}
	defer discard()

	r.seasonID, err = tx.EnsureSeason(ctx, int64(r.req.Season))
	if err != nil {
		return err
	}
	level, league := splitRundle(r.req.Rundle)
	r.rundleID, err = tx.EnsureRundle(ctx, db.EnsureRundleParams{
		SeasonID: r.seasonID,
		League:   league,
		Level:    level,
		Name:     r.req.Rundle,
	})
	if err != nil {
		return err
	}
	categories, err := tx.ListCategories(ctx)
	if err != nil {
		return err
	}
	r.categories = map[string]int64{}
	for _, c := range categories {
		r.categories[c.Name] = c.ID
	}
	return commit()
}

// fetch loads a page, a failed fetch is recorded and yields a nil document.
// The error is only set when the run was cancelled, a page that arrives
// after cancellation is dropped.
func (s Syncer) fetch(ctx context.Context, r *run, stage Stage, path string) (*goquery.Document, error) {
	doc, err := s.session.Fetch(ctx, path)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if err == nil {
		return doc, nil
	}
	s.tel.ReportWarning(fmt.Sprintf("%s.%s", report_stage, stage), err)
	r.fail(stage, KindFetch, path, err)
	return nil, nil
}

// persist writes one unit in its own transaction, an error discards every
// write of the unit.
func (s Syncer) persist(r *run, stage Stage, unit string, write func(tx *db.Queries) (int, error)) bool {
	tx, discard, commit, err := s.makeTx()
	if err != nil {
		r.fail(stage, KindPersistence, unit, err)
		return false
	}
	defer discard()

	count, err := write(tx)
	if err == nil {
		err = commit()
	}
	if err != nil {
		s.tel.ReportBroken(fmt.Sprintf("%s.%s", report_stage, stage), err, unit)
		r.fail(stage, KindPersistence, unit, err)
		return false
	}
	r.result.Counts[stage] += count
	return true
}

// checkpoint reads a count outside of any transaction, a failed read is
// recorded and treated as unsatisfied.
func (s Syncer) checkpoint(r *run, stage Stage, unit string, count func() (int64, error)) int64 {
	n, err := count()
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		r.fail(stage, KindPersistence, unit, err)
		return 0
	}
	return n
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}

// ensurePlayer creates the player on first sight and attaches its site id
// when the page linked to it.
func ensurePlayer(ctx context.Context, tx *db.Queries, player learnedleague.PlayerRef) (int64, error) {
	id, err := tx.EnsurePlayer(ctx, player.Username)
	if err != nil {
		return 0, err
	}
	if player.LLID != nil {
		err = tx.EnrichPlayer(ctx, db.EnrichPlayerParams{
			ID:   id,
			LlID: nullInt64(player.LLID),
		})
		if err != nil {
			return 0, err
		}
	}
	return id, nil
}
