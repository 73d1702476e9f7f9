package coordinator

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"market-rush/internal/store"
)

const (
	staleOpenTTL = 30 * time.Minute
	abandonedTTL = 2 * time.Hour
	finishedTTL  = 24 * time.Hour
)

// StartJanitor runs the eviction batch on a fixed interval, plus once
// immediately at startup.
func (c *Coordinator) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}
	c.RunSweep(ctx, time.Now())
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				c.RunSweep(ctx, now)
			}
		}
	}()
}

// RunSweep applies the three eviction predicates against the store, then
// reconciles the in-memory registry: a session whose persisted record is
// gone must not stay live.
func (c *Coordinator) RunSweep(ctx context.Context, now time.Time) {
	sweeps := []struct {
		name string
		run  func(context.Context, time.Time) (int64, error)
		ttl  time.Duration
	}{
		{"stale_open", c.store.DeleteStaleOpenGames, staleOpenTTL},
		{"abandoned", c.store.DeleteAbandonedGames, abandonedTTL},
		{"finished", c.store.DeleteFinishedGames, finishedTTL},
	}
	for _, sw := range sweeps {
		deleted, err := sw.run(ctx, now.Add(-sw.ttl))
		if err != nil {
			log.Error().Err(err).Str("sweep", sw.name).Msg("eviction sweep failed")
			continue
		}
		if deleted > 0 {
			log.Info().Str("sweep", sw.name).Int64("deleted", deleted).Msg("evicted games")
		}
	}
	c.reconcile(ctx)
}

func (c *Coordinator) reconcile(ctx context.Context) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	c.mu.Unlock()

	for _, id := range ids {
		_, err := c.store.GetGame(ctx, id)
		if err == nil {
			continue
		}
		if !errors.Is(err, store.ErrNotFound) {
			// Degraded store: leave the session alone rather than drop
			// live state on a transient read failure.
			log.Error().Err(err).Str("game_id", id).Msg("reconcile lookup failed")
			continue
		}
		c.dropSession(id)
		log.Info().Str("game_id", id).Msg("dropped session evicted from store")
	}
}

// dropSession removes a session whose persisted record is gone. No terminal
// write: the record no longer exists to update.
func (c *Coordinator) dropSession(gameID string) {
	c.mu.Lock()
	if c.sessions[gameID] == nil {
		c.mu.Unlock()
		return
	}
	c.stopTimersLocked(gameID)
	for conn, b := range c.bindings {
		if b.GameID == gameID {
			delete(c.bindings, conn)
		}
	}
	delete(c.sessions, gameID)
	c.mu.Unlock()

	c.rooms.ToGame(gameID, EventGameClosed, map[string]any{"reason": "evicted"})
	c.rooms.CloseRoom(gameID)
}
