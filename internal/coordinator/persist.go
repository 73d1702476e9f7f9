package coordinator

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	"market-rush/internal/game"
	"market-rush/internal/store"
)

const persistTimeout = 5 * time.Second

// recordFromSession derives the persisted copy of a session. Called under
// the coordinator lock; the resulting record is written outside it.
func recordFromSession(s *game.Session) store.GameRecord {
	snap := s.Snapshot()
	players, err := json.Marshal(snap.Players)
	if err != nil {
		players = []byte("[]")
	}
	state, err := json.Marshal(snap)
	if err != nil {
		state = []byte("{}")
	}
	return store.GameRecord{
		ID:             s.ID,
		Name:           s.Name,
		Status:         string(s.Status),
		Visibility:     string(s.Visibility),
		HostPlayerID:   s.HostID,
		CurrentPlayers: len(s.Players),
		MaxPlayers:     game.MaxPlayers,
		Players:        players,
		GameState:      state,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// persistCreate and persistUpdate are fire-and-forget: a failed write is
// logged and gameplay continues on in-memory state.
func (c *Coordinator) persistCreate(rec store.GameRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.store.CreateGame(ctx, rec); err != nil {
			log.Error().Err(err).Str("game_id", rec.ID).Msg("persist game create failed")
		}
	}()
}

func (c *Coordinator) persistUpdate(rec store.GameRecord) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := c.store.UpdateGame(ctx, rec); err != nil {
			log.Error().Err(err).Str("game_id", rec.ID).Msg("persist game update failed")
		}
	}()
}

// sessionFromRecord reconstructs a session from its last persisted snapshot.
// Lossy on purpose: in-flight round timing is not restored.
func sessionFromRecord(rec *store.GameRecord) *game.Session {
	var snap game.Snapshot
	if err := json.Unmarshal(rec.GameState, &snap); err != nil {
		log.Warn().Err(err).Str("game_id", rec.ID).Msg("stored game state unreadable, using defaults")
	}
	snap.ID = rec.ID
	if snap.Name == "" {
		snap.Name = rec.Name
	}
	if snap.Status == "" {
		snap.Status = game.Status(rec.Status)
	}
	if snap.Visibility == "" {
		snap.Visibility = game.Visibility(rec.Visibility)
	}
	if snap.Host == "" {
		snap.Host = rec.HostPlayerID
	}
	if len(snap.Players) == 0 && len(rec.Players) > 0 {
		_ = json.Unmarshal(rec.Players, &snap.Players)
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = rec.CreatedAt
	}
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = rec.UpdatedAt
	}
	return game.FromSnapshot(snap)
}
