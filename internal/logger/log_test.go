package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewWriter(t *testing.T) {
	var out bytes.Buffer
	log := NewWriter(zapcore.InfoLevel, &out)

	log.Debug("hidden")
	log.Info("shown", zap.Int("points", 100))

	assert.NotContains(t, out.String(), "hidden")
	assert.Contains(t, out.String(), `"msg":"shown"`)
	assert.Contains(t, out.String(), `"points":100`)
}

func TestNew(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfall.log")
	log, closer, err := New("debug", path)
	require.NoError(t, err)

	log.Debug("note hit")
	require.NoError(t, closer())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "note hit")

	_, _, err = New("loud", path)
	assert.Error(t, err)

	log, closer, err = New("info", "")
	require.NoError(t, err)
	log.Info("discarded")
	assert.NoError(t, closer())
}
