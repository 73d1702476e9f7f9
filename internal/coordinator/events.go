package coordinator

import "errors"

// Outbound event names. game-state doubles as the heartbeat: it goes out on
// every round tick, every market tick, and after every mutation.
const (
	EventPublicGamesList     = "public-games-list"
	EventGameCreated         = "game-created"
	EventGameJoined          = "game-joined"
	EventPlayerJoined        = "player-joined"
	EventGameState           = "game-state"
	EventGameStarted         = "game-started"
	EventRoundEnded          = "round-ended"
	EventGameFinished        = "game-finished"
	EventGameClosed          = "game-closed"
	EventPlayerDisconnected  = "player-disconnected"
	EventMarketPricesUpdated = "market-prices-updated"
	EventError               = "error"
)

// Client-facing errors carry the exact message the transport reports in an
// error{message} event.
var (
	ErrGameNotFound   = errors.New("Game not found")
	ErrNoGameID       = errors.New("No game ID provided")
	ErrNotHost        = errors.New("Only the host can start the game")
	ErrNotEnough      = errors.New("Need at least 2 players to start")
	ErrGameFull       = errors.New("Game is full")
	ErrGameInProgress = errors.New("Game already in progress")
	ErrGameIDTaken    = errors.New("Game ID already in use")
)

// PublicGameInfo is one row of the lobby listing.
type PublicGameInfo struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	CurrentPlayers int    `json:"currentPlayers"`
	MaxPlayers     int    `json:"maxPlayers"`
	HostName       string `json:"hostName"`
	CreatedAt      string `json:"createdAt"`
}
