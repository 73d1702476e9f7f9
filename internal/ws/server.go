package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"market-rush/internal/coordinator"
	"market-rush/internal/store"
)

// Client is one live websocket connection. Outbound events go through a
// buffered send channel so a slow reader never blocks the coordinator.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Send implements coordinator.Conn. A full buffer or closed channel drops
// the frame rather than stall the caller.
func (c *Client) Send(event string, data any) {
	msg, err := json.Marshal(OutEnvelope{Event: event, Data: data})
	if err != nil {
		return
	}
	safeSend(c.send, msg)
}

// Server upgrades connections, dispatches inbound session events to the
// coordinator, and fans outbound events to the session rooms.
type Server struct {
	coord    *coordinator.Coordinator
	upgrader websocket.Upgrader
	mu       sync.Mutex
	rooms    map[string]map[*Client]bool
}

func NewServer() *Server {
	return &Server{
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
		rooms:    map[string]map[*Client]bool{},
	}
}

// SetCoordinator wires the coordinator after construction; the server is the
// coordinator's Broadcaster, so the two are built in sequence.
func (s *Server) SetCoordinator(coord *coordinator.Coordinator) {
	s.coord = coord
}

func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	client := &Client{id: store.NewID(), conn: conn, send: make(chan []byte, 32)}
	log.Debug().Str("conn_id", client.id).Str("remote", conn.RemoteAddr().String()).Msg("ws connected")

	go s.writeLoop(client)
	s.readLoop(client)
	log.Debug().Str("conn_id", client.id).Msg("ws disconnected")
}

func (s *Server) readLoop(c *Client) {
	defer func() {
		s.coord.Disconnect(c)
		s.dropFromAllRooms(c)
		safeClose(c.send)
		_ = c.conn.Close()
	}()

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var env Envelope
		if err := json.Unmarshal(msg, &env); err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: "Invalid message"})
			continue
		}
		s.dispatch(c, env)
	}
}

func (s *Server) writeLoop(c *Client) {
	for msg := range c.send {
		_ = c.conn.WriteMessage(websocket.TextMessage, msg)
	}
}

func (s *Server) dispatch(c *Client, env Envelope) {
	ctx := context.Background()
	switch env.Event {
	case "get-public-games":
		c.Send(coordinator.EventPublicGamesList, s.coord.PublicGames(ctx))

	case "create-game":
		var p CreateGamePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: "Invalid message"})
			return
		}
		snap, playerID, err := s.coord.CreateGame(c, coordinator.CreateParams{
			GameID:        p.GameID,
			GameName:      p.GameName,
			PlayerName:    p.PlayerName,
			IsPrivate:     p.IsPrivate,
			WalletAddress: p.WalletAddress,
		})
		if err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: err.Error()})
			return
		}
		c.Send(coordinator.EventGameCreated, GameCreatedPayload{GameID: snap.ID, PlayerID: playerID})

	case "join-game":
		var p JoinGamePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: "Invalid message"})
			return
		}
		snap, playerID, err := s.coord.JoinGame(ctx, c, p.GameID, p.PlayerName, p.WalletAddress)
		if err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: err.Error()})
			return
		}
		c.Send(coordinator.EventGameJoined, GameJoinedPayload{GameID: snap.ID, PlayerID: playerID})

	case "get-game-state":
		var p GetGameStatePayload
		_ = json.Unmarshal(env.Data, &p)
		snap, err := s.coord.GameState(ctx, p.GameID)
		if err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: err.Error()})
			return
		}
		c.Send(coordinator.EventGameState, snap)

	case "start-game":
		if err := s.coord.StartGame(c); err != nil {
			c.Send(coordinator.EventError, ErrorPayload{Message: err.Error()})
		}

	case "exit-game":
		s.coord.ExitGame(c)
		s.dropFromAllRooms(c)

	case "update-market-prices":
		var p UpdateMarketPricesPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		s.coord.UpdateMarketPrices(c, p.MarketPrices)

	case "player-action":
		var p PlayerActionPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		s.coord.PlayerAction(c, p.Action, p.Resource, p.Amount, p.TargetPlayer)

	default:
		log.Debug().Str("conn_id", c.id).Str("event", env.Event).Msg("unknown ws event")
	}
}

// ToGame implements coordinator.Broadcaster.
func (s *Server) ToGame(gameID, event string, data any) {
	msg, err := json.Marshal(OutEnvelope{Event: event, Data: data})
	if err != nil {
		return
	}
	s.mu.Lock()
	for c := range s.rooms[gameID] {
		safeSend(c.send, msg)
	}
	s.mu.Unlock()
}

func (s *Server) JoinRoom(gameID string, conn coordinator.Conn) {
	c, ok := conn.(*Client)
	if !ok {
		return
	}
	s.mu.Lock()
	room := s.rooms[gameID]
	if room == nil {
		room = map[*Client]bool{}
		s.rooms[gameID] = room
	}
	room[c] = true
	s.mu.Unlock()
}

func (s *Server) LeaveRoom(gameID string, conn coordinator.Conn) {
	c, ok := conn.(*Client)
	if !ok {
		return
	}
	s.mu.Lock()
	if room := s.rooms[gameID]; room != nil {
		delete(room, c)
		if len(room) == 0 {
			delete(s.rooms, gameID)
		}
	}
	s.mu.Unlock()
}

func (s *Server) CloseRoom(gameID string) {
	s.mu.Lock()
	delete(s.rooms, gameID)
	s.mu.Unlock()
}

func (s *Server) dropFromAllRooms(c *Client) {
	s.mu.Lock()
	for gameID, room := range s.rooms {
		delete(room, c)
		if len(room) == 0 {
			delete(s.rooms, gameID)
		}
	}
	s.mu.Unlock()
}

func safeClose(ch chan []byte) {
	defer func() {
		_ = recover()
	}()
	close(ch)
}

func safeSend(ch chan []byte, msg []byte) {
	defer func() {
		_ = recover()
	}()
	select {
	case ch <- msg:
	default:
	}
}
