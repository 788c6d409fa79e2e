package score

import (
	"math"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"go.uber.org/zap"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type DefaultScorer struct {
	song     *game.Song
	keyRange game.KeyboardRange
	log      *zap.Logger
	clock    func() time.Time
	position Positioner
	labels   Labeler

	// Matching state, reset whenever the clock is seen at 0
	consumed   map[int]game.Judgement // note index -> how it resolved
	previous   map[int]struct{}       // pitches active at the last evaluation
	score      Score
	feedback   []Feedback
	judgements []TimedJudgement
}

type Option func(s *DefaultScorer)

func WithLogger(log *zap.Logger) Option {
	return func(s *DefaultScorer) { s.log = log }
}

// WithClock sets the wall clock used to stamp feedback
func WithClock(now func() time.Time) Option {
	return func(s *DefaultScorer) { s.clock = now }
}

func WithPositioner(p Positioner) Option {
	return func(s *DefaultScorer) { s.position = p }
}

func WithLabeler(l Labeler) Option {
	return func(s *DefaultScorer) { s.labels = l }
}

// WithRange sets the pitches for which an unmatched press counts as wrong.
// Without it the song's range is used, or DefaultRange when the song has none.
func WithRange(r game.KeyboardRange) Option {
	return func(s *DefaultScorer) { s.keyRange = r }
}

func NewScorer(song *game.Song, opts ...Option) *DefaultScorer {
	if song == nil {
		song = &game.Song{}
	}
	s := &DefaultScorer{
		song:     song,
		keyRange: song.Range,
		log:      zap.NewNop(),
		clock:    time.Now,
		labels:   englishLabels{},
	}
	if song.Range == (game.KeyboardRange{}) {
		s.keyRange = game.DefaultRange
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

func (s *DefaultScorer) Song() *game.Song {
	return s.song
}

func (s *DefaultScorer) Range() game.KeyboardRange {
	return s.keyRange
}

// SetRange changes the penalised range mid song, already judged presses stay
func (s *DefaultScorer) SetRange(r game.KeyboardRange) {
	s.keyRange = r
}

// SetPositioner swaps the geometry after a resize
func (s *DefaultScorer) SetPositioner(p Positioner) {
	s.position = p
}

func (s *DefaultScorer) SetLabeler(l Labeler) {
	s.labels = l
}

func (s *DefaultScorer) Reset() {
	s.consumed = make(map[int]game.Judgement, len(s.song.Notes))
	s.previous = map[int]struct{}{}
	s.score = Score{}
	s.feedback = nil
	s.judgements = nil
}

func (s *DefaultScorer) Score() Score {
	return s.score
}

// Resolved reports how the note at index was judged, if it has been
func (s *DefaultScorer) Resolved(index int) (game.Judgement, bool) {
	j, ok := s.consumed[index]
	return j, ok
}

// Pending is the number of notes not yet hit or missed
func (s *DefaultScorer) Pending() int {
	return len(s.song.Notes) - len(s.consumed)
}

func (s *DefaultScorer) Evaluate(now time.Duration, active map[int]float64, playing bool) {
	if now == 0 {
		s.Reset()
	}
	if !playing {
		return
	}

	// Chord members arrive in one call, resolve them low to high
	pitches := maps.Keys(active)
	slices.Sort(pitches)
	for _, pitch := range pitches {
		if _, held := s.previous[pitch]; held {
			continue
		}
		s.strike(now, pitch, active[pitch])
	}

	s.sweep(now)

	s.previous = make(map[int]struct{}, len(active))
	for _, pitch := range pitches {
		s.previous[pitch] = struct{}{}
	}
}

func abs(x time.Duration) time.Duration {
	if x < 0 {
		return -x
	}
	return x
}

// candidate finds the first unconsumed note of pitch whose window holds now
func (s *DefaultScorer) candidate(now time.Duration, pitch int) (int, bool) {
	for i, note := range s.song.Notes {
		if note.Pitch != pitch {
			continue
		}
		if _, done := s.consumed[i]; done {
			continue
		}
		if abs(note.Onset-now) < GoodWindow {
			return i, true
		}
	}
	return -1, false
}

func qualify(velocityError float64) game.Qualifier {
	if math.Abs(velocityError) <= VelocityMismatchThreshold {
		return game.NoQualifier
	}
	if velocityError > 0 {
		return game.TooHard
	}
	return game.TooSoft
}

func (s *DefaultScorer) strike(now time.Duration, pitch int, velocity float64) {
	index, ok := s.candidate(now, pitch)
	if !ok {
		if !s.keyRange.Contains(pitch) {
			return
		}
		s.score.Wrong++
		s.score.Points -= WrongNotePenalty
		if s.score.Points < 0 {
			s.score.Points = 0
		}
		s.push(game.Wrong, game.NoQualifier, pitch)
		s.log.Debug("wrong note",
			zap.String("pitch", game.NoteName(pitch)),
			zap.Duration("at", now),
		)
		return
	}

	note := s.song.Notes[index]
	timingError := now - note.Onset

	judgement, points := game.Good, GoodPoints
	if abs(timingError) < PerfectWindow {
		judgement, points = game.Perfect, PerfectPoints
	}

	qualifier := qualify(velocity - note.Velocity)
	if qualifier != game.NoQualifier {
		points = points * 8 / 10
	}

	s.consumed[index] = judgement
	if judgement == game.Perfect {
		s.score.Perfect++
	} else {
		s.score.Good++
	}
	s.score.Points += points

	s.push(judgement, qualifier, pitch)
	s.judgements = append(s.judgements, TimedJudgement{
		TimingError: timingError,
		Judgement:   judgement,
		CreatedAt:   s.clock(),
	})
	s.log.Debug("note hit",
		zap.Int("index", index),
		zap.String("pitch", game.NoteName(pitch)),
		zap.Stringer("judgement", judgement),
		zap.Duration("error", timingError),
		zap.Float64("velocity", velocity),
		zap.Int("points", points),
	)
}

// sweep misses every note whose window closed without a matching press
func (s *DefaultScorer) sweep(now time.Duration) {
	closed := now - GoodWindow
	for i, note := range s.song.Notes {
		if _, done := s.consumed[i]; done {
			continue
		}
		if note.Onset >= closed {
			continue
		}
		s.consumed[i] = game.Miss
		s.score.Miss++
		s.push(game.Miss, game.NoQualifier, note.Pitch)
		s.log.Debug("note missed",
			zap.Int("index", i),
			zap.String("pitch", game.NoteName(note.Pitch)),
			zap.Duration("onset", note.Onset),
		)
	}
}
