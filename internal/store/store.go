package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("not found")

// Store wraps DB access.
type Store struct {
	Pool *pgxpool.Pool
}

func New(dsn string) (*Store, error) {
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	if s.Pool != nil {
		s.Pool.Close()
	}
}

func (s *Store) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Pool.Ping(ctx)
}

// EnsureSchema creates the players table if missing. The primary key on
// name is the uniqueness index the matchmaking layer relies on.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `CREATE TABLE IF NOT EXISTS players (
		name  text PRIMARY KEY,
		wins  integer NOT NULL DEFAULT 0 CHECK (wins >= 0),
		loses integer NOT NULL DEFAULT 0 CHECK (loses >= 0),
		draws integer NOT NULL DEFAULT 0 CHECK (draws >= 0),
		plays integer NOT NULL DEFAULT 0 CHECK (plays >= 0)
	)`)
	return err
}
