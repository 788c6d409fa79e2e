package score

import (
	"sort"
	"time"
)

// Input is one note-on or note-off edge as observed by an evaluation
type Input struct {
	Pitch    int
	Velocity float64
	HitTime  time.Duration
	On       bool
}

// Recorder turns the active note maps handed to Evaluate into edges,
// so a playthrough can be stored and replayed.
type Recorder struct {
	previous map[int]float64
	inputs   []Input
}

func NewRecorder() *Recorder {
	return &Recorder{previous: map[int]float64{}}
}

func (r *Recorder) Observe(now time.Duration, active map[int]float64) {
	if now == 0 {
		r.Reset()
	}
	for pitch := range r.previous {
		if _, ok := active[pitch]; !ok {
			r.inputs = append(r.inputs, Input{Pitch: pitch, HitTime: now})
		}
	}
	for pitch, velocity := range active {
		if _, ok := r.previous[pitch]; !ok {
			r.inputs = append(r.inputs, Input{Pitch: pitch, Velocity: velocity, HitTime: now, On: true})
		}
	}
	r.previous = make(map[int]float64, len(active))
	for pitch, velocity := range active {
		r.previous[pitch] = velocity
	}
}

func (r *Recorder) Reset() {
	r.previous = map[int]float64{}
	r.inputs = nil
}

// Inputs returns the recorded edges in time order
func (r *Recorder) Inputs() []Input {
	inputs := make([]Input, len(r.inputs))
	copy(inputs, r.inputs)
	sortInputs(inputs)
	return inputs
}

// Releases sort before presses sharing a timestamp, then by pitch
func sortInputs(inputs []Input) {
	sort.SliceStable(inputs, func(i, j int) bool {
		a, b := inputs[i], inputs[j]
		if a.HitTime != b.HitTime {
			return a.HitTime < b.HitTime
		}
		if a.On != b.On {
			return !a.On
		}
		return a.Pitch < b.Pitch
	})
}

type Press struct {
	Time     time.Duration
	Velocity float64
}

// InputsCompact groups the edges of one pitch for storage
type InputsCompact struct {
	Pitch    int
	Presses  []Press
	Releases []time.Duration
}

func CompactInputs(inputs []Input) []InputsCompact {
	byPitch := map[int]*InputsCompact{}
	order := []int{}
	for _, i := range inputs {
		c, ok := byPitch[i.Pitch]
		if !ok {
			c = &InputsCompact{Pitch: i.Pitch, Presses: []Press{}, Releases: []time.Duration{}}
			byPitch[i.Pitch] = c
			order = append(order, i.Pitch)
		}
		if i.On {
			c.Presses = append(c.Presses, Press{Time: i.HitTime, Velocity: i.Velocity})
		} else {
			c.Releases = append(c.Releases, i.HitTime)
		}
	}
	sort.Ints(order)
	ins := make([]InputsCompact, len(order))
	for n, pitch := range order {
		ins[n] = *byPitch[pitch]
	}
	return ins
}

func UncompactInputs(inputs []InputsCompact) []Input {
	ins := []Input{}
	for _, c := range inputs {
		for _, p := range c.Presses {
			ins = append(ins, Input{Pitch: c.Pitch, Velocity: p.Velocity, HitTime: p.Time, On: true})
		}
		for _, t := range c.Releases {
			ins = append(ins, Input{Pitch: c.Pitch, HitTime: t})
		}
	}
	sortInputs(ins)
	return ins
}
