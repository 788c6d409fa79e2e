package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"git.lost.host/meutraa/keyfall/internal/game"
	"git.lost.host/meutraa/keyfall/internal/score"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var ErrNoRecords = errors.New("no records for song")

// Record is one finished playthrough
type Record struct {
	SongHash string
	Score    score.Score
	Inputs   []score.Input
	PlayedAt time.Time
}

// Accuracy is the share of song notes that were hit, weighted so a perfect
// counts double a good
func (r Record) Accuracy() float64 {
	total := r.Score.Resolved()
	if total == 0 {
		return 0
	}
	return float64(2*r.Score.Perfect+r.Score.Good) / float64(2*total)
}

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

const schema = `
create table if not exists scores
  (
	  id integer not null primary key,
	  sum text not null,
	  played_at integer not null,
	  perfect integer not null,
	  good integer not null,
	  miss integer not null,
	  wrong integer not null,
	  points integer not null,
	  inputs blob
  );
create index if not exists scores_sum on scores(sum);
`

// Open creates the score database at path, ":memory:" keeps it in memory
func Open(path string, log *zap.Logger) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("unable to open score database: %w", err)
	}
	// Every connection to :memory: is its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); nil != err {
		db.Close()
		return nil, fmt.Errorf("unable to create score table: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, song *game.Song, r Record) error {
	data, err := json.Marshal(score.CompactInputs(r.Inputs))
	if nil != err {
		return fmt.Errorf("unable to marshal inputs: %w", err)
	}
	if r.SongHash == "" {
		r.SongHash = song.Hash()
	}
	if r.PlayedAt.IsZero() {
		r.PlayedAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx,
		"insert into scores(sum, played_at, perfect, good, miss, wrong, points, inputs) values(?, ?, ?, ?, ?, ?, ?, ?)",
		r.SongHash, r.PlayedAt.UnixNano(),
		r.Score.Perfect, r.Score.Good, r.Score.Miss, r.Score.Wrong, r.Score.Points,
		data,
	)
	if nil != err {
		return fmt.Errorf("unable to save score: %w", err)
	}
	s.log.Info("score saved",
		zap.String("song", song.Title),
		zap.Int("points", r.Score.Points),
	)
	return nil
}

// Load returns every record of song, oldest first
func (s *Store) Load(ctx context.Context, song *game.Song) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		"select sum, played_at, perfect, good, miss, wrong, points, inputs from scores where sum = ? order by played_at, id",
		song.Hash(),
	)
	if nil != err {
		return nil, fmt.Errorf("unable to load scores: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var (
			r        Record
			playedAt int64
			data     []byte
		)
		if err := rows.Scan(
			&r.SongHash, &playedAt,
			&r.Score.Perfect, &r.Score.Good, &r.Score.Miss, &r.Score.Wrong, &r.Score.Points,
			&data,
		); nil != err {
			return nil, fmt.Errorf("unable to read score: %w", err)
		}
		r.PlayedAt = time.Unix(0, playedAt)

		var compact []score.InputsCompact
		if err := json.Unmarshal(data, &compact); nil != err {
			s.log.Warn("unable to unmarshal input history", zap.Error(err))
		} else {
			r.Inputs = score.UncompactInputs(compact)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// Best returns the record with the most points, the earliest wins a tie
func (s *Store) Best(ctx context.Context, song *game.Song) (Record, error) {
	records, err := s.Load(ctx, song)
	if nil != err {
		return Record{}, err
	}
	if len(records) == 0 {
		return Record{}, ErrNoRecords
	}
	best := records[0]
	for _, r := range records[1:] {
		if r.Score.Points > best.Score.Points {
			best = r
		}
	}
	return best, nil
}
