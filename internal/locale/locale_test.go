package locale

import (
	"testing"

	"git.lost.host/meutraa/keyfall/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	l, err := Parse("de")
	require.NoError(t, err)
	assert.Equal(t, German, l)

	l, err = Parse("xx")
	assert.Error(t, err)
	assert.Equal(t, English, l)
}

func TestEnglishComplete(t *testing.T) {
	c := New(English)
	for k := Key(0); k < numKeys; k++ {
		assert.NotEqual(t, k.String(), c.Text(k), "missing english text for %v", k)
	}
}

func TestFallback(t *testing.T) {
	// French has no octave entry
	assert.Equal(t, "Octave", New(French).Text(Octave))
	assert.Equal(t, "New best!", New(French).Text(NewBest))
	assert.Equal(t, "Gut", New(German).Text(Good))
	assert.Equal(t, "Perfect!", New(Locale("xx")).Text(Perfect))
	assert.Equal(t, "key(99)", New(English).Text(Key(99)))
}

func TestLabel(t *testing.T) {
	tests := []struct {
		locale Locale
		j      game.Judgement
		q      game.Qualifier
		want   string
	}{
		{English, game.Perfect, game.NoQualifier, "Perfect!"},
		{English, game.Good, game.TooHard, "Good (too hard)"},
		{English, game.Wrong, game.NoQualifier, "Wrong"},
		{German, game.Perfect, game.TooSoft, "Perfekt! (zu sanft)"},
		{French, game.Miss, game.NoQualifier, "Raté"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, New(tt.locale).Label(tt.j, tt.q))
	}
}
