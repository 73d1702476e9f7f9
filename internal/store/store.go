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

// Bootstrap creates the games table when it does not exist yet.
func (s *Store) Bootstrap(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS games (
			id              text PRIMARY KEY,
			name            text NOT NULL,
			status          text NOT NULL,
			visibility      text NOT NULL,
			host_player_id  text NOT NULL DEFAULT '',
			current_players int NOT NULL DEFAULT 0,
			max_players     int NOT NULL DEFAULT 4,
			players         jsonb NOT NULL DEFAULT '[]',
			game_state      jsonb NOT NULL DEFAULT '{}',
			created_at      timestamptz NOT NULL DEFAULT now(),
			updated_at      timestamptz NOT NULL DEFAULT now()
		)
	`)
	return err
}
