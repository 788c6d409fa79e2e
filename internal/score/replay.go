package score

import (
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
)

// Replay drives a fresh scorer through a recorded trace and returns the
// final score. Edges sharing a timestamp are applied as one evaluation,
// the same way the live loop saw them. A pitch released and pressed at
// the same timestamp was struck again between two frames, it is evaluated
// released first so the new press is an edge.
func Replay(song *game.Song, inputs []Input, opts ...Option) Score {
	s := NewScorer(song, opts...)
	song = s.Song()
	active := map[int]float64{}

	for i := 0; i < len(inputs); {
		at := inputs[i].HitTime
		j := i
		for j < len(inputs) && inputs[j].HitTime == at {
			j++
		}
		group := inputs[i:j]
		i = j

		released := map[int]struct{}{}
		for _, in := range group {
			if !in.On {
				released[in.Pitch] = struct{}{}
			}
		}

		var retriggered []Input
		for _, in := range group {
			switch _, again := released[in.Pitch]; {
			case !in.On:
				delete(active, in.Pitch)
			case again:
				retriggered = append(retriggered, in)
			default:
				active[in.Pitch] = in.Velocity
			}
		}
		if len(retriggered) > 0 {
			s.Evaluate(at, active, true)
			for _, in := range retriggered {
				active[in.Pitch] = in.Velocity
			}
		}
		s.Evaluate(at, active, true)
	}

	// Close the window of every remaining note
	end := song.TotalDuration
	for _, n := range song.Notes {
		if n.Onset > end {
			end = n.Onset
		}
	}
	s.Evaluate(end+GoodWindow+time.Nanosecond, active, true)
	return s.Score()
}
