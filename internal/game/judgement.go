package game

type Judgement uint8

const (
	Perfect Judgement = iota
	Good
	Miss
	Wrong
)

// Judgements in the order they are listed on screen
var Judgements = [...]Judgement{Perfect, Good, Miss, Wrong}

func (j Judgement) String() string {
	switch j {
	case Perfect:
		return "perfect"
	case Good:
		return "good"
	case Miss:
		return "miss"
	case Wrong:
		return "wrong"
	}
	return "unknown"
}

// Hit is true for judgements that consume a note through a keypress
func (j Judgement) Hit() bool {
	return j == Perfect || j == Good
}

// Qualifier annotates a hit whose strike strength was off
type Qualifier uint8

const (
	NoQualifier Qualifier = iota
	TooHard
	TooSoft
)

func (q Qualifier) String() string {
	switch q {
	case TooHard:
		return "too hard"
	case TooSoft:
		return "too soft"
	}
	return ""
}
