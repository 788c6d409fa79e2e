package history

import (
	"context"
	"testing"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSong() *game.Song {
	return game.NewSong("test", "", []game.Note{
		{Pitch: 60, Onset: time.Second, Duration: time.Second, Velocity: 0.5},
		{Pitch: 64, Onset: 2 * time.Second, Duration: time.Second, Velocity: 0.5},
	}, 0)
}

func openStore(t *testing.T) *Store {
	store, err := Open(":memory:", nil)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSaveLoad(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)
	song := testSong()

	_, err := store.Best(ctx, song)
	assert.ErrorIs(t, err, ErrNoRecords)

	inputs := []score.Input{
		{Pitch: 60, Velocity: 0.5, HitTime: time.Second, On: true},
		{Pitch: 60, HitTime: 1500 * time.Millisecond},
	}
	playedAt := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, song, Record{
		Score:    score.Score{Perfect: 1, Miss: 1, Points: 100},
		Inputs:   inputs,
		PlayedAt: playedAt,
	}))
	require.NoError(t, store.Save(ctx, song, Record{
		Score:    score.Score{Perfect: 2, Points: 200},
		PlayedAt: playedAt.Add(time.Hour),
	}))

	other := game.NewSong("other", "", []game.Note{{Pitch: 70, Onset: time.Second}}, 0)
	require.NoError(t, store.Save(ctx, other, Record{Score: score.Score{Good: 1, Points: 50}}))

	records, err := store.Load(ctx, song)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, song.Hash(), records[0].SongHash)
	assert.Equal(t, inputs, records[0].Inputs)
	assert.True(t, playedAt.Equal(records[0].PlayedAt))
	assert.Empty(t, records[1].Inputs)

	best, err := store.Best(ctx, song)
	require.NoError(t, err)
	assert.Equal(t, 200, best.Score.Points)
	assert.Equal(t, 1.0, best.Accuracy())
}

func TestAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, Record{}.Accuracy())
	assert.Equal(t, 0.5, Record{Score: score.Score{Perfect: 1, Miss: 1, Wrong: 4}}.Accuracy())
	assert.Equal(t, 0.75, Record{Score: score.Score{Perfect: 1, Good: 1}}.Accuracy())
}
