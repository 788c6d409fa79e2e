package main

import (
	"testing"
	"time"

	"git.lost.host/meutraa/keyfall/internal/config"
	"git.lost.host/meutraa/keyfall/internal/settings"
	"github.com/stretchr/testify/assert"
)

func TestOverrides(t *testing.T) {
	offset := 40 * time.Millisecond
	cfg := &config.Config{Locale: "de", Offset: &offset}

	// A reloaded file keeps the flags, everything else comes from the file
	file := settings.Defaults()
	file.Locale = "fr"
	file.Theme = "mono"
	file.Offset = -time.Second

	s := overrides(cfg, file)
	assert.Equal(t, "de", s.Locale)
	assert.Equal(t, "mono", s.Theme)
	assert.Equal(t, offset, s.Offset)

	assert.Equal(t, file, overrides(&config.Config{}, file))
}
