package settings

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())

	s := Defaults()
	s.Range = game.KeyboardRange{Start: 80, End: 40}
	assert.Error(t, s.Validate())

	s = Defaults()
	s.Range = game.KeyboardRange{Start: 0, End: 130}
	assert.Error(t, s.Validate())

	s = Defaults()
	s.Base = -1
	assert.Error(t, s.Validate())
}

func TestState(t *testing.T) {
	st := NewState(Defaults())

	var seen []Settings
	st.OnChange(func(s Settings) { seen = append(seen, s) })

	st.Update(func(s *Settings) { s.Locale = "de" })
	assert.Equal(t, "de", st.Get().Locale)
	require.Len(t, seen, 1)
	assert.Equal(t, "de", seen[0].Locale)
}

func TestStoreRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nested", "keyfall.ini"), nil)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, Defaults(), loaded)

	want := Settings{
		Locale: "fr",
		Theme:  "mono",
		Range:  game.KeyboardRange{Start: 36, End: 96},
		Base:   48,
		Offset: -25 * time.Millisecond,
		Curve:  "soft",
	}
	require.NoError(t, store.Save(want))

	loaded, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, loaded)
}

func TestStorePartialAndInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfall.ini")
	store := NewStore(path, nil)

	require.NoError(t, os.WriteFile(path, []byte("[display]\nlocale = de\n"), 0644))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "de", loaded.Locale)
	assert.Equal(t, game.DefaultRange, loaded.Range)

	require.NoError(t, os.WriteFile(path, []byte("[keyboard]\nrange_start = 90\nrange_end = 30\n"), 0644))
	loaded, err = store.Load()
	assert.Error(t, err)
	assert.Equal(t, Defaults(), loaded)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfall.ini")
	store := NewStore(path, nil)
	require.NoError(t, store.Save(Defaults()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu     sync.Mutex
		latest Settings
		calls  int
	)
	require.NoError(t, store.Watch(ctx, func(s Settings) {
		mu.Lock()
		defer mu.Unlock()
		latest = s
		calls++
	}))

	changed := Defaults()
	changed.Base = 72
	require.NoError(t, store.Save(changed))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls > 0 && latest.Base == 72
	}, 5*time.Second, 20*time.Millisecond)
}
