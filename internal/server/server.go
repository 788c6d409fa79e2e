package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"git.lost.host/meutraa/keyfall/internal/history"
	"git.lost.host/meutraa/keyfall/internal/layout"
	"git.lost.host/meutraa/keyfall/internal/score"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

// State is what the host loop publishes after each frame
type State struct {
	Song     string         `json:"song"`
	Now      time.Duration  `json:"now"`
	Playing  bool           `json:"playing"`
	Snapshot score.Snapshot `json:"snapshot"`
	Keys     []layout.Key   `json:"keys"`
}

// Holder keeps the latest published state for the handlers
type Holder struct {
	mu    sync.RWMutex
	state State
}

func (h *Holder) Publish(s State) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state = s
}

func (h *Holder) Get() State {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.state
}

// HistoryFunc loads the records of the current song
type HistoryFunc func(ctx context.Context) ([]history.Record, error)

type record struct {
	PlayedAt time.Time   `json:"playedAt"`
	Score    score.Score `json:"score"`
	Accuracy float64     `json:"accuracy"`
}

type Server struct {
	holder  *Holder
	history HistoryFunc
	log     *zap.Logger
}

func New(holder *Holder, hist HistoryFunc, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{holder: holder, history: hist, log: log}
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/api/state", s.handleState).Methods(http.MethodGet)
	router.HandleFunc("/api/history", s.handleHistory).Methods(http.MethodGet)

	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet},
	}).Handler(router)
}

// ListenAndServe serves on addr until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			s.log.Warn("http shutdown failed", zap.Error(err))
		}
	}()

	s.log.Info("serving state", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("unable to encode response", zap.Error(err))
	}
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, s.holder.Get())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	res := make([]record, 0)
	if s.history == nil {
		s.writeJSON(w, res)
		return
	}

	records, err := s.history(r.Context())
	if err != nil {
		s.log.Warn("unable to load history", zap.Error(err))
		http.Error(w, "unable to load history", http.StatusInternalServerError)
		return
	}
	for _, rec := range records {
		res = append(res, record{PlayedAt: rec.PlayedAt, Score: rec.Score, Accuracy: rec.Accuracy()})
	}
	s.writeJSON(w, res)
}
