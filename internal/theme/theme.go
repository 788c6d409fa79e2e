package theme

import (
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"github.com/lucasb-eyer/go-colorful"
)

// Tag names a themed element
type Tag int

const (
	Perfect Tag = iota
	Good
	Miss
	Wrong
	WhiteKey
	BlackKey
	Note
	HitLine
	Text
	Background
)

func JudgementTag(j game.Judgement) Tag {
	switch j {
	case game.Perfect:
		return Perfect
	case game.Good:
		return Good
	case game.Miss:
		return Miss
	}
	return Wrong
}

type Theme interface {
	Color(tag Tag) colorful.Color

	// Fade blends the tag color toward the background as age nears lifetime
	Fade(tag Tag, age, lifetime time.Duration) colorful.Color

	Paint(tag Tag, text string) string
	PaintColor(c colorful.Color, text string) string
}
