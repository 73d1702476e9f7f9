package ws

import "encoding/json"

// Envelope is the wire frame for both directions: an event name plus an
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type OutEnvelope struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

type CreateGamePayload struct {
	GameName      string `json:"gameName"`
	GameID        string `json:"gameId,omitempty"`
	PlayerName    string `json:"playerName"`
	IsPrivate     bool   `json:"isPrivate"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

type JoinGamePayload struct {
	GameID        string `json:"gameId"`
	PlayerName    string `json:"playerName"`
	WalletAddress string `json:"walletAddress,omitempty"`
}

type GetGameStatePayload struct {
	GameID string `json:"gameId"`
}

type UpdateMarketPricesPayload struct {
	MarketPrices map[string]float64 `json:"marketPrices"`
}

type PlayerActionPayload struct {
	Action       string `json:"action"`
	Resource     string `json:"resource"`
	Amount       int    `json:"amount"`
	TargetPlayer string `json:"targetPlayer,omitempty"`
}

type GameCreatedPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type GameJoinedPayload struct {
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
