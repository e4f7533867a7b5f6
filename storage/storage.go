package storage

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const createTableSQL = `
CREATE TABLE IF NOT EXISTS match_history (
	id UUID PRIMARY KEY,
	played_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	match_name TEXT NOT NULL,
	game TEXT NOT NULL,
	hands BIGINT NOT NULL,
	seed BIGINT NOT NULL,
	score_line TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_match_history_name ON match_history(match_name);
CREATE TABLE IF NOT EXISTS seat_result (
	match_id UUID NOT NULL REFERENCES match_history(id),
	seat SMALLINT NOT NULL,
	player_name TEXT NOT NULL,
	total DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (match_id, seat)
);
CREATE INDEX IF NOT EXISTS idx_seat_result_player ON seat_result(player_name);
`

// Store persists and retrieves match results.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to Postgres and ensures the result tables exist. If
// databaseURL is empty, NewStore returns (nil, nil) and no persistence
// occurs; every method on a nil Store is a no-op.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	if databaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, createTableSQL); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("connected to Postgres", "tag", "storage")
	return &Store{pool: pool}, nil
}

// Close closes the connection pool.
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// MatchResult is one finished match: the configuration that produced it and
// the final per-seat totals.
type MatchResult struct {
	ID        string    `json:"id"`
	PlayedAt  time.Time `json:"played_at"`
	MatchName string    `json:"match_name"`
	Game      string    `json:"game"`
	Hands     uint32    `json:"hands"`
	Seed      uint64    `json:"seed"`
	ScoreLine string    `json:"score_line"`
	Names     []string  `json:"names"`  // seat order
	Totals    []float64 `json:"totals"` // seat order
}

// InsertMatchResult records one finished match and its per-seat totals in a
// single transaction. A generated id is returned.
func (s *Store) InsertMatchResult(ctx context.Context, res MatchResult) (string, error) {
	if s == nil || s.pool == nil {
		return "", nil
	}
	id := uuid.NewString()
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO match_history (id, match_name, game, hands, seed, score_line)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id, res.MatchName, res.Game, int64(res.Hands), int64(res.Seed), res.ScoreLine)
	if err != nil {
		return "", err
	}
	for seat, name := range res.Names {
		_, err = tx.Exec(ctx, `
			INSERT INTO seat_result (match_id, seat, player_name, total)
			VALUES ($1, $2, $3, $4)`,
			id, seat, name, res.Totals[seat])
		if err != nil {
			return "", err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return "", err
	}
	return id, nil
}

// GetMatchResult returns one match by id, or (nil, nil) if not found.
func (s *Store) GetMatchResult(ctx context.Context, id string) (*MatchResult, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	var res MatchResult
	var hands, seed int64
	err := s.pool.QueryRow(ctx, `
		SELECT id, played_at, match_name, game, hands, seed, score_line
		FROM match_history WHERE id = $1`,
		id).Scan(&res.ID, &res.PlayedAt, &res.MatchName, &res.Game, &hands, &seed, &res.ScoreLine)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	res.Hands = uint32(hands)
	res.Seed = uint64(seed)

	rows, err := s.pool.Query(ctx, `
		SELECT player_name, total FROM seat_result WHERE match_id = $1 ORDER BY seat`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var name string
		var total float64
		if err := rows.Scan(&name, &total); err != nil {
			return nil, err
		}
		res.Names = append(res.Names, name)
		res.Totals = append(res.Totals, total)
	}
	return &res, rows.Err()
}

// ListByPlayer returns finished matches a player took part in, newest
// first, without the per-seat breakdown.
func (s *Store) ListByPlayer(ctx context.Context, playerName string, limit int) ([]MatchResult, error) {
	if s == nil || s.pool == nil {
		return []MatchResult{}, nil
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.pool.Query(ctx, `
		SELECT DISTINCT mh.id, mh.played_at, mh.match_name, mh.game, mh.hands, mh.seed, mh.score_line
		FROM match_history mh
		JOIN seat_result sr ON sr.match_id = mh.id
		WHERE sr.player_name = $1
		ORDER BY mh.played_at DESC
		LIMIT $2`,
		playerName, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []MatchResult
	for rows.Next() {
		var res MatchResult
		var hands, seed int64
		if err := rows.Scan(&res.ID, &res.PlayedAt, &res.MatchName, &res.Game, &hands, &seed, &res.ScoreLine); err != nil {
			return nil, err
		}
		res.Hands = uint32(hands)
		res.Seed = uint64(seed)
		out = append(out, res)
	}
	return out, rows.Err()
}
