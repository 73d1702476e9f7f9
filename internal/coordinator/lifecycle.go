package coordinator

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	"market-rush/internal/game"
	"market-rush/internal/store"
)

type CreateParams struct {
	GameID        string
	GameName      string
	PlayerName    string
	IsPrivate     bool
	WalletAddress string
}

// CreateGame installs a new session with the caller as host, binds the
// connection, and schedules the first game-state broadcast shortly after the
// game-created reply.
func (c *Coordinator) CreateGame(conn Conn, p CreateParams) (game.Snapshot, string, error) {
	host := game.NewPlayer(p.PlayerName, p.WalletAddress)
	visibility := game.VisibilityPublic
	if p.IsPrivate {
		visibility = game.VisibilityPrivate
	}

	c.mu.Lock()
	id := p.GameID
	if id == "" {
		id = store.NewGameCode()
		for c.sessions[id] != nil {
			id = store.NewGameCode()
		}
	} else if c.sessions[id] != nil {
		c.mu.Unlock()
		return game.Snapshot{}, "", ErrGameIDTaken
	}
	s := game.NewSession(id, p.GameName, visibility, host)
	if c.roundsPerGame != game.DefaultRounds {
		s.Round = game.NewRound(c.roundsPerGame)
	}
	c.sessions[id] = s
	c.bindings[conn] = Binding{GameID: id, PlayerID: host.ID, PlayerName: host.Name}
	rec := recordFromSession(s)
	snap := s.Snapshot()
	c.mu.Unlock()

	c.rooms.JoinRoom(id, conn)
	c.persistCreate(rec)
	time.AfterFunc(c.createdStateDelay, func() { c.broadcastState(id) })
	log.Info().Str("game_id", id).Str("player_id", host.ID).Str("visibility", string(visibility)).Msg("game created")
	return snap, host.ID, nil
}

// JoinGame adds the caller to a waiting session. A wallet already present in
// the session reconnects that player instead of seating a new one.
func (c *Coordinator) JoinGame(ctx context.Context, conn Conn, gameID, playerName, walletAddress string) (game.Snapshot, string, error) {
	if gameID == "" {
		return game.Snapshot{}, "", ErrNoGameID
	}
	s := c.getOrRestore(ctx, gameID)
	if s == nil {
		return game.Snapshot{}, "", ErrGameNotFound
	}

	c.mu.Lock()
	var player *game.Player
	if walletAddress != "" {
		for _, p := range s.Players {
			if p.WalletAddress == walletAddress {
				player = p
				break
			}
		}
	}
	if player != nil {
		player.Connected = true
		delete(s.ExitedPlayers, player.ID)
	} else {
		player = game.NewPlayer(playerName, walletAddress)
		if err := s.AddPlayer(player); err != nil {
			c.mu.Unlock()
			switch {
			case errors.Is(err, game.ErrGameFull):
				return game.Snapshot{}, "", ErrGameFull
			default:
				return game.Snapshot{}, "", ErrGameInProgress
			}
		}
	}
	c.bindings[conn] = Binding{GameID: gameID, PlayerID: player.ID, PlayerName: player.Name}
	rec := recordFromSession(s)
	snap := s.Snapshot()
	c.mu.Unlock()

	c.rooms.JoinRoom(gameID, conn)
	c.rooms.ToGame(gameID, EventPlayerJoined, map[string]any{"playerName": player.Name})
	c.rooms.ToGame(gameID, EventGameState, snap)
	c.persistUpdate(rec)
	return snap, player.ID, nil
}

// GameState returns the current snapshot, restoring the session from the
// store when it is not live in memory.
func (c *Coordinator) GameState(ctx context.Context, gameID string) (game.Snapshot, error) {
	if gameID == "" {
		return game.Snapshot{}, ErrNoGameID
	}
	s := c.getOrRestore(ctx, gameID)
	if s == nil {
		return game.Snapshot{}, ErrGameNotFound
	}
	c.mu.Lock()
	snap := s.Snapshot()
	c.mu.Unlock()
	return snap, nil
}

// StartGame flips the session to playing and starts its round ticker and
// inactivity timer. Host-only; needs at least two active players.
func (c *Coordinator) StartGame(conn Conn) error {
	c.mu.Lock()
	b, ok := c.bindings[conn]
	if !ok {
		c.mu.Unlock()
		return ErrGameNotFound
	}
	s := c.sessions[b.GameID]
	if s == nil {
		c.mu.Unlock()
		return ErrGameNotFound
	}
	caller := s.FindPlayer(b.PlayerID)
	wallet := ""
	if caller != nil {
		wallet = caller.WalletAddress
	}
	if !s.IsHost(b.PlayerID, wallet) {
		c.mu.Unlock()
		return ErrNotHost
	}
	if len(s.ActivePlayers()) < 2 {
		c.mu.Unlock()
		return ErrNotEnough
	}
	if s.Status != game.StatusWaiting {
		c.mu.Unlock()
		return ErrGameInProgress
	}
	s.Start()
	rec := recordFromSession(s)
	snap := s.Snapshot()
	gameID := b.GameID
	c.mu.Unlock()

	c.rooms.ToGame(gameID, EventGameStarted, map[string]any{"gameId": gameID})
	c.rooms.ToGame(gameID, EventGameState, snap)
	c.persistUpdate(rec)
	c.startRoundTicker(gameID)
	c.resetInactivity(gameID)
	log.Info().Str("game_id", gameID).Int("players", len(snap.Players)).Msg("game started")
	return nil
}

// ExitGame removes the caller from their session. Issuing it twice is
// harmless: the second call finds no binding and does nothing. When the last
// active player leaves, the session closes instead.
func (c *Coordinator) ExitGame(conn Conn) {
	c.mu.Lock()
	b, ok := c.bindings[conn]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.bindings, conn)
	s := c.sessions[b.GameID]
	if s == nil {
		c.mu.Unlock()
		return
	}
	s.MarkExited(b.PlayerID)
	s.RemovePlayer(b.PlayerID)
	if s.HostID == b.PlayerID {
		s.FailoverHost()
	}
	remaining := len(s.ActivePlayers())
	rec := recordFromSession(s)
	snap := s.Snapshot()
	c.mu.Unlock()

	c.rooms.LeaveRoom(b.GameID, conn)
	if remaining == 0 {
		c.CloseGame(b.GameID, "all players left")
		return
	}
	c.rooms.ToGame(b.GameID, EventPlayerDisconnected, map[string]any{
		"playerName": b.PlayerName,
		"reason":     "exited",
	})
	c.rooms.ToGame(b.GameID, EventGameState, snap)
	c.persistUpdate(rec)
	c.resetInactivity(b.GameID)
}

// Disconnect handles a transport-level drop: the player stays seated but is
// marked disconnected, and host failover runs when the host dropped.
func (c *Coordinator) Disconnect(conn Conn) {
	c.mu.Lock()
	b, ok := c.bindings[conn]
	if !ok {
		c.mu.Unlock()
		return
	}
	delete(c.bindings, conn)
	s := c.sessions[b.GameID]
	if s == nil {
		c.mu.Unlock()
		return
	}
	if p := s.FindPlayer(b.PlayerID); p != nil {
		p.Connected = false
	}
	if s.HostID == b.PlayerID {
		s.FailoverHost()
	}
	rec := recordFromSession(s)
	snap := s.Snapshot()
	c.mu.Unlock()

	c.rooms.LeaveRoom(b.GameID, conn)
	c.rooms.ToGame(b.GameID, EventPlayerDisconnected, map[string]any{"playerName": b.PlayerName})
	c.rooms.ToGame(b.GameID, EventGameState, snap)
	c.persistUpdate(rec)
}

// UpdateMarketPrices applies host-set prices. Silently ignored for non-hosts
// or when the session is not playing.
func (c *Coordinator) UpdateMarketPrices(conn Conn, prices map[string]float64) {
	c.mu.Lock()
	b, ok := c.bindings[conn]
	if !ok {
		c.mu.Unlock()
		return
	}
	s := c.sessions[b.GameID]
	if s == nil || s.Status != game.StatusPlaying {
		c.mu.Unlock()
		return
	}
	caller := s.FindPlayer(b.PlayerID)
	wallet := ""
	if caller != nil {
		wallet = caller.WalletAddress
	}
	if !s.IsHost(b.PlayerID, wallet) {
		c.mu.Unlock()
		return
	}
	converted := make(map[game.Resource]float64, len(prices))
	for r, price := range prices {
		converted[game.Resource(r)] = price
	}
	s.Market.SetPrices(converted)
	s.Touch()
	snap := s.Snapshot()
	updated := snap.Market.Prices
	c.mu.Unlock()

	c.rooms.ToGame(b.GameID, EventGameState, snap)
	c.rooms.ToGame(b.GameID, EventMarketPricesUpdated, map[string]any{"marketPrices": updated})
	c.resetInactivity(b.GameID)
}

// PlayerAction resolves one trading action for the bound player. Unmet
// preconditions are a silent no-op; success broadcasts the session.
func (c *Coordinator) PlayerAction(conn Conn, action, resource string, amount int, targetPlayer string) {
	c.mu.Lock()
	b, ok := c.bindings[conn]
	if !ok {
		c.mu.Unlock()
		return
	}
	s := c.sessions[b.GameID]
	if s == nil {
		c.mu.Unlock()
		return
	}
	changed := s.ApplyAction(b.PlayerID, game.Action{
		Type:           game.ActionType(action),
		Resource:       game.Resource(resource),
		Amount:         amount,
		TargetPlayerID: targetPlayer,
	})
	snap := s.Snapshot()
	c.mu.Unlock()

	if changed {
		c.rooms.ToGame(b.GameID, EventGameState, snap)
	}
	c.resetInactivity(b.GameID)
}

// PublicGames builds the lobby listing from the persistent store.
func (c *Coordinator) PublicGames(ctx context.Context) []PublicGameInfo {
	records, err := c.store.ListOpenPublicGames(ctx)
	if err != nil {
		log.Error().Err(err).Msg("list public games failed")
		return []PublicGameInfo{}
	}
	out := make([]PublicGameInfo, 0, len(records))
	for _, rec := range records {
		status := "Open"
		if rec.CurrentPlayers >= rec.MaxPlayers {
			status = "Full"
		}
		out = append(out, PublicGameInfo{
			ID:             rec.ID,
			Name:           rec.Name,
			Status:         status,
			CurrentPlayers: rec.CurrentPlayers,
			MaxPlayers:     rec.MaxPlayers,
			HostName:       hostNameFromRecord(rec),
			CreatedAt:      rec.CreatedAt.Format(time.RFC3339),
		})
	}
	return out
}

func hostNameFromRecord(rec store.GameRecord) string {
	var players []game.PlayerSnapshot
	if err := json.Unmarshal(rec.Players, &players); err != nil {
		return ""
	}
	for _, p := range players {
		if p.ID == rec.HostPlayerID {
			return p.Name
		}
	}
	if len(players) > 0 {
		return players[0].Name
	}
	return ""
}

// CloseGame tears a session down: timers cancelled, terminal status
// persisted, member bindings evicted, room notified then closed, and the
// session deleted from the registry.
func (c *Coordinator) CloseGame(gameID, reason string) {
	c.mu.Lock()
	s := c.sessions[gameID]
	if s == nil {
		c.mu.Unlock()
		return
	}
	if s.Status != game.StatusFinished {
		s.Status = game.StatusClosed
	}
	s.TimerActive = false
	s.Touch()
	c.stopTimersLocked(gameID)
	for conn, b := range c.bindings {
		if b.GameID == gameID {
			delete(c.bindings, conn)
		}
	}
	rec := recordFromSession(s)
	delete(c.sessions, gameID)
	c.mu.Unlock()

	c.rooms.ToGame(gameID, EventGameClosed, map[string]any{"reason": reason})
	c.rooms.CloseRoom(gameID)
	c.persistUpdate(rec)
	log.Info().Str("game_id", gameID).Str("reason", reason).Msg("game closed")
}

// getOrRestore consults the in-memory registry first and falls back to a
// lossy reconstruction from the persistent snapshot, installing the result.
func (c *Coordinator) getOrRestore(ctx context.Context, gameID string) *game.Session {
	c.mu.Lock()
	if s := c.sessions[gameID]; s != nil {
		c.mu.Unlock()
		return s
	}
	c.mu.Unlock()

	rec, err := c.store.GetGame(ctx, gameID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("game_id", gameID).Msg("game lookup failed")
		}
		return nil
	}
	restored := sessionFromRecord(rec)

	c.mu.Lock()
	// Another event may have restored it while the store read was in flight.
	if s := c.sessions[gameID]; s != nil {
		c.mu.Unlock()
		return s
	}
	resume := restored.Status == game.StatusPlaying
	if resume {
		restored.TimerActive = true
	}
	c.sessions[gameID] = restored
	c.mu.Unlock()

	// A restored session must not outlive the inactivity bound, and a playing
	// restore resumes ticking from the checkpoint.
	if resume {
		c.startRoundTicker(gameID)
	}
	c.resetInactivity(gameID)
	return restored
}

func (c *Coordinator) broadcastState(gameID string) {
	c.mu.Lock()
	s := c.sessions[gameID]
	if s == nil {
		c.mu.Unlock()
		return
	}
	snap := s.Snapshot()
	c.mu.Unlock()
	c.rooms.ToGame(gameID, EventGameState, snap)
}
