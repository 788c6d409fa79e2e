package input

import (
	"sync"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Stream merges every input source into one pitch -> velocity map.
// Sources press and release from their own goroutines, the host loop
// drains once per frame.
type Stream struct {
	mu        sync.Mutex
	held      map[string]map[int]float64 // source -> pitch -> velocity
	latched   map[int]float64            // pressed since the last drain
	retrigger map[int]struct{}           // released and pressed again since the last drain
	drained   map[int]struct{}           // active in the last drain
	changed   chan struct{}
}

func NewStream() *Stream {
	return &Stream{
		held:      map[string]map[int]float64{},
		latched:   map[int]float64{},
		retrigger: map[int]struct{}{},
		drained:   map[int]struct{}{},
		changed:   make(chan struct{}, 1),
	}
}

// Changed fires after any press or release
func (s *Stream) Changed() <-chan struct{} {
	return s.changed
}

func (s *Stream) notify() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *Stream) isHeld(pitch int) bool {
	for _, notes := range s.held {
		if _, ok := notes[pitch]; ok {
			return true
		}
	}
	return false
}

func (s *Stream) Press(source string, pitch int, velocity float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, seen := s.drained[pitch]; seen && !s.isHeld(pitch) {
		s.retrigger[pitch] = struct{}{}
	}
	notes, ok := s.held[source]
	if !ok {
		notes = map[int]float64{}
		s.held[source] = notes
	}
	notes[pitch] = velocity
	if velocity > s.latched[pitch] {
		s.latched[pitch] = velocity
	}
	s.notify()
}

func (s *Stream) Release(source string, pitch int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if notes, ok := s.held[source]; ok {
		delete(notes, pitch)
	}
	s.notify()
}

// ReleaseAll drops every note held by source, used when a device goes away
func (s *Stream) ReleaseAll(source string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.held, source)
	s.notify()
}

// Active is the merged held map without consuming latched presses
func (s *Stream) Active() map[int]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.merged()
}

func (s *Stream) merged() map[int]float64 {
	active := map[int]float64{}
	for _, notes := range s.held {
		for pitch, velocity := range notes {
			if velocity > active[pitch] || !has(active, pitch) {
				active[pitch] = velocity
			}
		}
	}
	return active
}

func has(m map[int]float64, pitch int) bool {
	_, ok := m[pitch]
	return ok
}

// Drain returns the notes to evaluate this frame. Presses released before
// the drain are still reported once so a short tap is never lost.
// Retriggered lists pitches that were released and struck again since the
// last drain; the host evaluates once without them to see the new edge.
func (s *Stream) Drain() (active map[int]float64, retriggered []int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active = s.merged()
	for pitch, velocity := range s.latched {
		if !has(active, pitch) {
			active[pitch] = velocity
		}
	}
	retriggered = maps.Keys(s.retrigger)
	slices.Sort(retriggered)

	s.latched = map[int]float64{}
	s.retrigger = map[int]struct{}{}
	s.drained = make(map[int]struct{}, len(active))
	for pitch := range active {
		s.drained[pitch] = struct{}{}
	}
	return active, retriggered
}
