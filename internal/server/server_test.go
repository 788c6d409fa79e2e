package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/history"
	"git.lost.host/meutraa/keyfall/internal/layout"
	"git.lost.host/meutraa/keyfall/internal/score"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestState(t *testing.T) {
	holder := &Holder{}
	holder.Publish(State{
		Song:     "scale",
		Now:      time.Second,
		Playing:  true,
		Snapshot: score.Snapshot{Score: score.Score{Perfect: 1, Points: 100}},
		Keys:     layout.New(game.KeyboardRange{Start: 60, End: 61}, 10).Keys(),
	})

	rec := get(t, New(holder, nil, nil).Handler(), "/api/state")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))

	var state State
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, "scale", state.Song)
	assert.Equal(t, time.Second, state.Now)
	assert.Equal(t, 100, state.Snapshot.Score.Points)
	require.Len(t, state.Keys, 2)
	assert.True(t, state.Keys[1].Black)
}

func TestHistory(t *testing.T) {
	playedAt := time.Date(2022, 6, 1, 12, 0, 0, 0, time.UTC)
	hist := func(ctx context.Context) ([]history.Record, error) {
		return []history.Record{{Score: score.Score{Perfect: 1, Good: 1, Points: 150}, PlayedAt: playedAt}}, nil
	}

	rec := get(t, New(&Holder{}, hist, nil).Handler(), "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []record
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	require.Len(t, records, 1)
	assert.Equal(t, 150, records[0].Score.Points)
	assert.Equal(t, 0.75, records[0].Accuracy)
	assert.True(t, playedAt.Equal(records[0].PlayedAt))

	rec = get(t, New(&Holder{}, nil, nil).Handler(), "/api/history")
	assert.JSONEq(t, "[]", rec.Body.String())

	failing := func(ctx context.Context) ([]history.Record, error) { return nil, errors.New("closed") }
	rec = get(t, New(&Holder{}, failing, nil).Handler(), "/api/history")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestMethodNotAllowed(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/state", nil)
	rec := httptest.NewRecorder()
	New(&Holder{}, nil, nil).Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
