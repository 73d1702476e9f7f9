package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// GameRecord is the persisted, eventually-consistent copy of a live session.
// The in-memory coordinator stays authoritative; this record serves public
// listings, restart reconstruction, and eviction.
type GameRecord struct {
	ID             string
	Name           string
	Status         string
	Visibility     string
	HostPlayerID   string
	CurrentPlayers int
	MaxPlayers     int
	Players        []byte
	GameState      []byte
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (s *Store) CreateGame(ctx context.Context, g GameRecord) error {
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO games (id, name, status, visibility, host_player_id, current_players, max_players, players, game_state)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
	`, g.ID, g.Name, g.Status, g.Visibility, g.HostPlayerID, g.CurrentPlayers, g.MaxPlayers, g.Players, g.GameState)
	return err
}

func (s *Store) GetGame(ctx context.Context, id string) (*GameRecord, error) {
	row := s.Pool.QueryRow(ctx, `
		SELECT id, name, status, visibility, host_player_id, current_players, max_players, players, game_state, created_at, updated_at
		FROM games WHERE id = $1
	`, id)
	var g GameRecord
	if err := row.Scan(&g.ID, &g.Name, &g.Status, &g.Visibility, &g.HostPlayerID, &g.CurrentPlayers, &g.MaxPlayers, &g.Players, &g.GameState, &g.CreatedAt, &g.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &g, nil
}

func (s *Store) UpdateGame(ctx context.Context, g GameRecord) error {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE games
		SET name = $2, status = $3, visibility = $4, host_player_id = $5,
		    current_players = $6, players = $7, game_state = $8, updated_at = now()
		WHERE id = $1
	`, g.ID, g.Name, g.Status, g.Visibility, g.HostPlayerID, g.CurrentPlayers, g.Players, g.GameState)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Store) DeleteGame(ctx context.Context, id string) error {
	_, err := s.Pool.Exec(ctx, `DELETE FROM games WHERE id = $1`, id)
	return err
}

// ListOpenPublicGames returns joinable sessions for the lobby listing:
// public, still waiting, and under capacity.
func (s *Store) ListOpenPublicGames(ctx context.Context) ([]GameRecord, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, status, visibility, host_player_id, current_players, max_players, players, game_state, created_at, updated_at
		FROM games
		WHERE visibility = 'public' AND status = 'waiting' AND current_players < max_players
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []GameRecord{}
	for rows.Next() {
		var g GameRecord
		if err := rows.Scan(&g.ID, &g.Name, &g.Status, &g.Visibility, &g.HostPlayerID, &g.CurrentPlayers, &g.MaxPlayers, &g.Players, &g.GameState, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// DeleteStaleOpenGames removes public waiting sessions not updated since the
// cutoff.
func (s *Store) DeleteStaleOpenGames(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM games
		WHERE status = 'waiting' AND visibility = 'public' AND updated_at < $1
	`, cutoff)
	return tag.RowsAffected(), err
}

// DeleteAbandonedGames removes single-player waiting sessions created before
// the cutoff.
func (s *Store) DeleteAbandonedGames(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM games
		WHERE status = 'waiting' AND current_players = 1 AND created_at < $1
	`, cutoff)
	return tag.RowsAffected(), err
}

// DeleteFinishedGames removes finished sessions not updated since the cutoff.
func (s *Store) DeleteFinishedGames(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `
		DELETE FROM games
		WHERE status = 'finished' AND updated_at < $1
	`, cutoff)
	return tag.RowsAffected(), err
}
