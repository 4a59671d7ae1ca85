package leaguesync

import (
	"fmt"
	"time"
)

type Stage string

const (
	StageStandings     Stage = "standings"
	StageMyAnswers     Stage = "my_answers"
	StageMatchResults  Stage = "match_results"
	StageMatchDetails  Stage = "match_details"
	StageProfiles      Stage = "profiles"
	StageRundleAnswers Stage = "rundle_answers"
)

// StageOrder is the order stages run in. MatchResults captures the match
// ids MatchDetails needs.
var StageOrder = []Stage{
	StageStandings,
	StageMyAnswers,
	StageMatchResults,
	StageMatchDetails,
	StageProfiles,
	StageRundleAnswers,
}

type ErrorKind string

const (
	KindFetch       ErrorKind = "fetch"
	KindParse       ErrorKind = "parse"
	KindPersistence ErrorKind = "persistence"
)

type RunError struct {
	Stage  Stage     `json:"stage"`
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e RunError) String() string {
	return fmt.Sprintf("%s (%s): %s", e.Stage, e.Kind, e.Detail)
}

type Request struct {
	Season int
	Rundle string
	// Stages to run, nil runs every stage.
	Stages []Stage
	// LastDay bounds the match day stages, 0 means the full season.
	LastDay int
}

func (r Request) enabled(stage Stage) bool {
	if r.Stages == nil {
		return true
	}
	for _, s := range r.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// WithoutStages returns every stage except the given ones.
func WithoutStages(skip ...Stage) []Stage {
	stages := []Stage{}
	for _, stage := range StageOrder {
		skipped := false
		for _, s := range skip {
			if s == stage {
				skipped = true
			}
		}
		if !skipped {
			stages = append(stages, stage)
		}
	}
	return stages
}

type RunResult struct {
	StartedAt  time.Time
	FinishedAt time.Time
	// Counts is the number of records written per stage.
	Counts map[Stage]int
	// Skipped is the number of units per stage whose checkpoint was
	// already satisfied, or which could not be fetched at all.
	Skipped map[Stage]int
	Errors  []RunError
}

func newRunResult(startedAt time.Time) RunResult {
	return RunResult{
		StartedAt: startedAt,
		Counts:    map[Stage]int{},
		Skipped:   map[Stage]int{},
	}
}

func (r RunResult) ErrorCount() int {
	return len(r.Errors)
}

// StageErrors returns the errors recorded by one stage.
func (r RunResult) StageErrors(stage Stage) []RunError {
	var out []RunError
	for _, e := range r.Errors {
		if e.Stage == stage {
			out = append(out, e)
		}
	}
	return out
}
