package learnedleague

// PlayerRef identifies a player the way pages link to them, LLID is nil
// when the page only showed a username.
type PlayerRef struct {
	Username string
	LLID     *int64
}

type Standing struct {
	Rank   int
	Player PlayerRef
	Wins   *int
	Losses *int
	Ties   *int
	Points *int
	TCA    *int
}

// Question is one of the six questions of a match day.
type Question struct {
	Number int
	// Category is the canonical category name, empty when RawCategory
	// could not be mapped.
	Category         string
	RawCategory      string
	Text             string
	Answer           string
	RundleCorrectPct *float64
	LeagueCorrectPct *float64
}

type QuestionDay struct {
	Questions []Question
}

// OwnAnswer is the logged in player's answer to one question.
type OwnAnswer struct {
	QuestionNumber int
	Answer         string
	Correct        bool
	DefensePoints  *int
}

type MatchResult struct {
	Player1      PlayerRef
	Player2      PlayerRef
	Player1Score *int
	Player2Score *int
	Player1TCA   *int
	Player2TCA   *int
	LLMatchID    *int64
}

// MatchQuestionResult is one question of a single match. Defense is the
// number of points that player assigned to the question.
type MatchQuestionResult struct {
	Number           int
	Category         string
	RawCategory      string
	RundleCorrectPct *float64
	Player1Correct   *bool
	Player2Correct   *bool
	Player1Defense   *int
	Player2Defense   *int
}

type MatchDetail struct {
	Player1   PlayerRef
	Player2   PlayerRef
	Questions []MatchQuestionResult
}

type CategoryStat struct {
	Category   string
	Correct    *int
	Total      *int
	CorrectPct *float64
}

type Profile struct {
	DisplayName string
	LLID        *int64
	Stats       []CategoryStat
	// Unmapped holds category labels that did not map to a canonical name.
	Unmapped []string
}

// GridColumn describes one question column of a rundle grid.
type GridColumn struct {
	Number           int
	Category         string
	RawCategory      string
	RundleCorrectPct *float64
}

type GridCell struct {
	QuestionNumber int
	Correct        bool
	DefensePoints  *int
}

type GridRow struct {
	Player PlayerRef
	Cells  []GridCell
}

type RundleGrid struct {
	Columns []GridColumn
	Rows    []GridRow
}

type TrackedPlayer struct {
	Username string
	Rundle   string
	LLID     *int64
}
