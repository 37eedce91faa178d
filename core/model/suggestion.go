package model

// Severity ranks how disruptive the forecast is expected to be.
type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeverityHeavy    Severity = "heavy"
)

// AdjustType distinguishes the two kinds of timing adjustments.
type AdjustType string

const (
	AdjustDelay      AdjustType = "delay"
	AdjustStartEarly AdjustType = "start-early"
)

// MoveSuggestion proposes rescheduling one or more jobs off a bad day.
// A single suggestion covers every affected job on the day.
type MoveSuggestion struct {
	JobIDs        []string
	CurrentDate   string
	SuggestedDate string
	Reason        string
	Severity      Severity
}

// StartTimeSuggestion proposes a day timing override instead of a move.
type StartTimeSuggestion struct {
	Date           string
	CurrentStart   int
	SuggestedStart int
	// SuggestedEnd is only set for start-early adjustments; 0 means unset.
	SuggestedEnd int
	Reason       string
	Type         AdjustType
}

// SuggestionSet is the full output of one suggestion pass.
type SuggestionSet struct {
	Moves      []MoveSuggestion
	StartTimes []StartTimeSuggestion
}

// Empty reports whether the pass produced nothing.
func (s SuggestionSet) Empty() bool {
	return len(s.Moves) == 0 && len(s.StartTimes) == 0
}
