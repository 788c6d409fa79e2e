package score

import (
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"github.com/google/uuid"
)

const (
	PerfectWindow = 100 * time.Millisecond // Absolute timing error for a perfect
	GoodWindow    = 250 * time.Millisecond // Absolute timing error accepted at all

	VelocityMismatchThreshold = 0.30

	PerfectPoints    = 100
	GoodPoints       = 50
	WrongNotePenalty = 10

	FeedbackLifetime  = 1000 * time.Millisecond
	JudgementLifetime = 1500 * time.Millisecond
)

// Score is the running tally of one playthrough.
// Counts only ever grow, Points never drops below 0.
type Score struct {
	Perfect int `json:"perfect"`
	Good    int `json:"good"`
	Miss    int `json:"miss"`
	Wrong   int `json:"wrong"`
	Points  int `json:"points"`
}

// Count returns the counter for a judgement
func (s Score) Count(j game.Judgement) int {
	switch j {
	case game.Perfect:
		return s.Perfect
	case game.Good:
		return s.Good
	case game.Miss:
		return s.Miss
	case game.Wrong:
		return s.Wrong
	}
	return 0
}

// Resolved is the number of song notes that were hit or missed
func (s Score) Resolved() int {
	return s.Perfect + s.Good + s.Miss
}

// Feedback is a short lived on screen label for one judgement
type Feedback struct {
	ID        uuid.UUID      `json:"id"`
	Text      string         `json:"text"`
	Judgement game.Judgement `json:"judgement"`
	Qualifier game.Qualifier `json:"qualifier"`
	Pitch     int            `json:"pitch"`
	X         float64        `json:"x"`
	Width     float64        `json:"width"`
	CreatedAt time.Time      `json:"createdAt"`
}

// TimedJudgement feeds the timing accuracy strip
type TimedJudgement struct {
	TimingError time.Duration  `json:"timingError"` // Negative is early
	Judgement   game.Judgement `json:"judgement"`
	CreatedAt   time.Time      `json:"createdAt"`
}

// Snapshot is a copy of the engine outputs, safe to hand to other goroutines
type Snapshot struct {
	Score      Score            `json:"score"`
	Feedback   []Feedback       `json:"feedback"`
	Judgements []TimedJudgement `json:"judgements"`
}

// Positioner places feedback over the key that produced it
type Positioner interface {
	Position(pitch int) (x, width float64, ok bool)
}

// Labeler turns a judgement into display text
type Labeler interface {
	Label(j game.Judgement, q game.Qualifier) string
}

// Scorer judges live input against a song
type Scorer interface {
	// Reset clears all matching state, as if the song was just loaded
	Reset()

	// Evaluate matches new note-on edges in active and sweeps notes whose
	// window has closed. It is a no-op while not playing, except that an
	// observed time of exactly 0 always resets.
	Evaluate(now time.Duration, active map[int]float64, playing bool)

	Score() Score
	Snapshot(at time.Time) Snapshot

	// Expire drops feedback and judgements that have outlived their lifetime
	Expire(at time.Time)
}
