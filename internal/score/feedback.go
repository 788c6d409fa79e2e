package score

import (
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"github.com/google/uuid"
)

type englishLabels struct{}

func (englishLabels) Label(j game.Judgement, q game.Qualifier) string {
	var text string
	switch j {
	case game.Perfect:
		text = "Perfect!"
	case game.Good:
		text = "Good"
	case game.Miss:
		text = "Miss"
	case game.Wrong:
		text = "Wrong"
	}
	if q != game.NoQualifier {
		text += " (" + q.String() + ")"
	}
	return text
}

func (s *DefaultScorer) push(j game.Judgement, q game.Qualifier, pitch int) {
	f := Feedback{
		ID:        uuid.New(),
		Text:      s.labels.Label(j, q),
		Judgement: j,
		Qualifier: q,
		Pitch:     pitch,
		CreatedAt: s.clock(),
	}
	if s.position != nil {
		if x, w, ok := s.position.Position(pitch); ok {
			f.X, f.Width = x, w
		}
	}
	s.feedback = append(s.feedback, f)
}

func liveFeedback(entries []Feedback, at time.Time) []Feedback {
	live := make([]Feedback, 0, len(entries))
	for _, f := range entries {
		if at.Sub(f.CreatedAt) < FeedbackLifetime {
			live = append(live, f)
		}
	}
	return live
}

func liveJudgements(entries []TimedJudgement, at time.Time) []TimedJudgement {
	live := make([]TimedJudgement, 0, len(entries))
	for _, j := range entries {
		if at.Sub(j.CreatedAt) < JudgementLifetime {
			live = append(live, j)
		}
	}
	return live
}

// Snapshot copies the score and the entries still alive at the given time.
// Nothing is removed, see Expire.
func (s *DefaultScorer) Snapshot(at time.Time) Snapshot {
	return Snapshot{
		Score:      s.score,
		Feedback:   liveFeedback(s.feedback, at),
		Judgements: liveJudgements(s.judgements, at),
	}
}

// Expire is called from the render step so the queues stay bounded
// without a second timer source.
func (s *DefaultScorer) Expire(at time.Time) {
	if len(s.feedback) > 0 {
		s.feedback = liveFeedback(s.feedback, at)
	}
	if len(s.judgements) > 0 {
		s.judgements = liveJudgements(s.judgements, at)
	}
}
