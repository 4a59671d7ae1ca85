package db

import "database/sql"

type Season struct {
	ID           int64
	SeasonNumber int64
}

type Rundle struct {
	ID       int64
	SeasonID int64
	League   string
	Level    string
	Name     string
}

type Player struct {
	ID          int64
	LlUsername  string
	LlID        sql.NullInt64
	DisplayName sql.NullString
}

type RundleMember struct {
	PlayerID   int64
	LlUsername string
	LlID       sql.NullInt64
	FinalRank  sql.NullInt64
}

type Category struct {
	ID   int64
	Name string
}

type Question struct {
	ID               int64
	SeasonID         int64
	MatchDay         int64
	QuestionNumber   int64
	CategoryID       sql.NullInt64
	RawCategory      sql.NullString
	RundleCorrectPct sql.NullFloat64
	LeagueCorrectPct sql.NullFloat64
	QuestionText     sql.NullString
	CorrectAnswer    sql.NullString
}

type Match struct {
	ID           int64
	SeasonID     int64
	RundleID     sql.NullInt64
	MatchDay     int64
	Player1ID    int64
	Player2ID    int64
	Player1Score sql.NullInt64
	Player2Score sql.NullInt64
	Player1Tca   sql.NullInt64
	Player2Tca   sql.NullInt64
	LlMatchID    sql.NullInt64
}

type MatchNeedingDetails struct {
	ID        int64
	MatchDay  int64
	Player1ID int64
	Player2ID int64
	LlMatchID int64
}

type ScrapeRun struct {
	ID           int64
	SeasonNumber int64
	Rundle       string
	StartedAt    int64
	FinishedAt   int64
	Counts       string
	ErrorCount   int64
	Errors       string
}
