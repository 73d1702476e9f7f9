package coordinator

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"market-rush/internal/game"
	"market-rush/internal/store"
)

// startRoundTicker installs the session's recurring one-second tick. The
// ticker goroutine outlives nothing: cancellation is idempotent and a tick
// that fires after close re-checks liveness before acting.
func (c *Coordinator) startRoundTicker(gameID string) {
	ctx, cancel := context.WithCancel(context.Background())

	c.mu.Lock()
	t := c.timers[gameID]
	if t == nil {
		t = &sessionTimers{}
		c.timers[gameID] = t
	}
	if t.stopRound != nil {
		t.stopRound()
	}
	t.stopRound = cancel
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.roundTick(gameID)
			}
		}
	}()
}

// roundTick advances one session by one second and broadcasts the updated
// snapshot. This broadcast is the sole heartbeat clients synchronize on.
func (c *Coordinator) roundTick(gameID string) {
	c.mu.Lock()
	s := c.sessions[gameID]
	if s == nil || !s.TimerActive {
		c.mu.Unlock()
		return
	}
	res := s.TickRound()
	snap := s.Snapshot()
	var rec store.GameRecord
	if res.Finished {
		rec = recordFromSession(s)
		c.stopTimersLocked(gameID)
	}
	c.mu.Unlock()

	c.rooms.ToGame(gameID, EventGameState, snap)
	if res.RoundEnded {
		c.rooms.ToGame(gameID, EventRoundEnded, map[string]any{
			"round":         res.EndedRound,
			"timeRemaining": game.DelaySeconds,
		})
	}
	if res.Finished {
		c.rooms.ToGame(gameID, EventGameFinished, map[string]any{
			"winner":      res.Winner,
			"finalScores": res.Scores,
		})
		c.persistUpdate(rec)
		log.Info().Str("game_id", gameID).Msg("game finished")
	}
}

// StartMarketTicker drives the ambient market fluctuation: every interval,
// each playing session gets fresh change indicators and a state broadcast.
func (c *Coordinator) StartMarketTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.marketTick()
			}
		}
	}()
}

func (c *Coordinator) marketTick() {
	c.mu.Lock()
	snaps := make(map[string]game.Snapshot)
	for id, s := range c.sessions {
		if s.Status != game.StatusPlaying {
			continue
		}
		s.Market.RandomizeIndicators(10)
		s.Touch()
		snaps[id] = s.Snapshot()
	}
	c.mu.Unlock()

	for id, snap := range snaps {
		c.rooms.ToGame(id, EventGameState, snap)
	}
}

// resetInactivity (re)arms the per-session idle timer. Any player activity
// routes through here; a session with no activity for the full window is
// closed through the normal close path.
func (c *Coordinator) resetInactivity(gameID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sessions[gameID] == nil {
		return
	}
	t := c.timers[gameID]
	if t == nil {
		t = &sessionTimers{}
		c.timers[gameID] = t
	}
	if t.inactivity != nil {
		t.inactivity.Stop()
	}
	t.inactivity = time.AfterFunc(c.inactivityTimeout, func() {
		c.CloseGame(gameID, "inactivity")
	})
}

// stopTimersLocked cancels both timer handles. Callers hold c.mu.
func (c *Coordinator) stopTimersLocked(gameID string) {
	t := c.timers[gameID]
	if t == nil {
		return
	}
	if t.stopRound != nil {
		t.stopRound()
	}
	if t.inactivity != nil {
		t.inactivity.Stop()
	}
	delete(c.timers, gameID)
}
