package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

func (s *Store) FindPlayer(ctx context.Context, name string) (*PlayerRecord, error) {
	row := s.Pool.QueryRow(ctx, `SELECT name, wins, loses, draws, plays FROM players WHERE name = $1`, name)
	var r PlayerRecord
	if err := row.Scan(&r.Name, &r.Wins, &r.Loses, &r.Draws, &r.Plays); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

func (s *Store) UpsertPlayer(ctx context.Context, r *PlayerRecord) error {
	_, err := s.Pool.Exec(ctx, `INSERT INTO players (name, wins, loses, draws, plays)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (name) DO UPDATE
		SET wins = EXCLUDED.wins, loses = EXCLUDED.loses, draws = EXCLUDED.draws, plays = EXCLUDED.plays`,
		r.Name, r.Wins, r.Loses, r.Draws, r.Plays)
	return err
}
