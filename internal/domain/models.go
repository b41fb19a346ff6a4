package domain

import (
	"fmt"
	"time"
)

// Screen is one of the mutually exclusive views a player can be on.
type Screen int

const (
	ScreenIntro Screen = iota
	ScreenPlaying
	ScreenNameEntry
	ScreenLeaderboard
)

var screenNames = [...]string{"intro", "playing", "name-entry", "leaderboard"}

func (s Screen) String() string {
	if s < 0 || int(s) >= len(screenNames) {
		return fmt.Sprintf("screen(%d)", int(s))
	}
	return screenNames[s]
}

func (s Screen) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Screen) UnmarshalText(text []byte) error {
	for i, name := range screenNames {
		if name == string(text) {
			*s = Screen(i)
			return nil
		}
	}
	return fmt.Errorf("unknown screen %q", text)
}

// Slot names a render target on the quiz surface.
type Slot string

const (
	SlotQuestion       Slot = "question"
	SlotQuestionNumber Slot = "question-number"
	SlotTime           Slot = "time"
	SlotScore          Slot = "score"
	SlotAnswers        Slot = "answers"
	SlotTopResults     Slot = "top-results"
	SlotNameInput      Slot = "name-input"
)

// Decision is the outcome of the leaderboard admission policy.
type Decision int

const (
	Rejected Decision = iota
	PendingNameEntry
)

func (d Decision) String() string {
	if d == PendingNameEntry {
		return "pending-name-entry"
	}
	return "rejected"
}

// DefaultPlayerName is used until the player types something else.
const DefaultPlayerName = "Anonymous"

// SessionState is the mutable record owned by a single controller.
type SessionState struct {
	Score                   int      `json:"score"`
	QuestionIndex           int      `json:"questionIndex"` // questions presented so far
	Questions               []string `json:"questions"`
	PlayerName              string   `json:"playerName"`
	TimeElapsedInQuestion   int      `json:"timeElapsed"`
	TimeRemainingInQuestion int      `json:"timeRemaining"`
	Active                  bool     `json:"active"`
	NameEntryOpen           bool     `json:"nameEntryOpen"`
	Screen                  Screen   `json:"screen"`
}

// AnswerChoices is the shuffled set of answers shown for one question.
type AnswerChoices struct {
	Values       []float64 `json:"-"`
	Labels       []string  `json:"labels"`
	CorrectIndex int       `json:"-"`
}

// LeaderboardEntry is one admitted result.
type LeaderboardEntry struct {
	Name        string    `json:"name"`
	Score       int       `json:"score"`
	Seq         int64     `json:"seq"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Leaderboard is a snapshot ordered by score, highest first.
type Leaderboard struct {
	Entries   []LeaderboardEntry `json:"entries"`
	Capacity  int                `json:"capacity"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// SessionResult summarizes a finished quiz for archiving.
type SessionResult struct {
	SessionID  string    `json:"sessionId"`
	PlayerName string    `json:"playerName"`
	Score      int       `json:"score"`
	Questions  int       `json:"questions"`
	Admitted   bool      `json:"admitted"`
	FinishedAt time.Time `json:"finishedAt"`
}
