package locale

import (
	"fmt"

	"git.lost.host/meutraa/keyfall/internal/game"
)

type Locale string

const (
	English Locale = "en"
	German  Locale = "de"
	French  Locale = "fr"
)

var Locales = [...]Locale{English, German, French}

func Parse(name string) (Locale, error) {
	for _, l := range Locales {
		if string(l) == name {
			return l, nil
		}
	}
	return English, fmt.Errorf("unknown locale %q", name)
}

// Key enumerates every piece of user facing text
type Key int

const (
	Perfect Key = iota
	Good
	Miss
	Wrong
	TooHard
	TooSoft
	Points
	Paused
	Results
	Accuracy
	Best
	NewBest
	Quit
	Restart
	Octave
	numKeys
)

var keyNames = [numKeys]string{
	"perfect", "good", "miss", "wrong", "too_hard", "too_soft", "points",
	"paused", "results", "accuracy", "best", "new_best", "quit", "restart",
	"octave",
}

func (k Key) String() string {
	if k < 0 || k >= numKeys {
		return fmt.Sprintf("key(%d)", int(k))
	}
	return keyNames[k]
}

var tables = map[Locale]map[Key]string{
	English: {
		Perfect:  "Perfect!",
		Good:     "Good",
		Miss:     "Miss",
		Wrong:    "Wrong",
		TooHard:  "too hard",
		TooSoft:  "too soft",
		Points:   "Points",
		Paused:   "Paused",
		Results:  "Results",
		Accuracy: "Accuracy",
		Best:     "Best",
		NewBest:  "New best!",
		Quit:     "Esc to quit",
		Restart:  "r to restart",
		Octave:   "Octave",
	},
	German: {
		Perfect:  "Perfekt!",
		Good:     "Gut",
		Miss:     "Verpasst",
		Wrong:    "Falsch",
		TooHard:  "zu hart",
		TooSoft:  "zu sanft",
		Points:   "Punkte",
		Paused:   "Pausiert",
		Results:  "Ergebnis",
		Accuracy: "Genauigkeit",
		Best:     "Bestwert",
		NewBest:  "Neuer Bestwert!",
		Quit:     "Esc zum Beenden",
		Restart:  "r zum Neustarten",
		Octave:   "Oktave",
	},
	French: {
		Perfect:  "Parfait !",
		Good:     "Bien",
		Miss:     "Raté",
		Wrong:    "Fausse note",
		TooHard:  "trop fort",
		TooSoft:  "trop doux",
		Points:   "Points",
		Paused:   "Pause",
		Results:  "Résultats",
		Accuracy: "Précision",
		Best:     "Record",
		Quit:     "Échap pour quitter",
		Restart:  "r pour recommencer",
	},
}

// Catalog looks up text for one locale, falling back to English and then
// to the key name
type Catalog struct {
	locale Locale
}

func New(l Locale) *Catalog {
	return &Catalog{locale: l}
}

func (c *Catalog) Locale() Locale {
	return c.locale
}

func (c *Catalog) Text(k Key) string {
	if s, ok := tables[c.locale][k]; ok {
		return s
	}
	if s, ok := tables[English][k]; ok {
		return s
	}
	return k.String()
}

func judgementKey(j game.Judgement) Key {
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

// Label renders a judgement for the feedback overlay
func (c *Catalog) Label(j game.Judgement, q game.Qualifier) string {
	text := c.Text(judgementKey(j))
	switch q {
	case game.TooHard:
		text += " (" + c.Text(TooHard) + ")"
	case game.TooSoft:
		text += " (" + c.Text(TooSoft) + ")"
	}
	return text
}
