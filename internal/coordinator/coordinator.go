package coordinator

import (
	"context"
	"sync"
	"time"

	"market-rush/internal/game"
	"market-rush/internal/store"
)

// GameStore is the slice of the persistent store the coordinator consumes.
// The in-memory registries stay authoritative; every store failure degrades
// to a logged default.
type GameStore interface {
	CreateGame(ctx context.Context, g store.GameRecord) error
	GetGame(ctx context.Context, id string) (*store.GameRecord, error)
	UpdateGame(ctx context.Context, g store.GameRecord) error
	DeleteGame(ctx context.Context, id string) error
	ListOpenPublicGames(ctx context.Context) ([]store.GameRecord, error)
	DeleteStaleOpenGames(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteAbandonedGames(ctx context.Context, cutoff time.Time) (int64, error)
	DeleteFinishedGames(ctx context.Context, cutoff time.Time) (int64, error)
}

// Conn is one live client connection. The transport owns the socket; the
// coordinator only ever pushes events through it.
type Conn interface {
	Send(event string, data any)
}

// Broadcaster fans events out to every connection subscribed to a session's
// room.
type Broadcaster interface {
	ToGame(gameID, event string, data any)
	JoinRoom(gameID string, conn Conn)
	LeaveRoom(gameID string, conn Conn)
	CloseRoom(gameID string)
}

// Binding resolves inbound events to a session and player without the event
// restating identity.
type Binding struct {
	GameID     string
	PlayerID   string
	PlayerName string
}

type sessionTimers struct {
	stopRound  context.CancelFunc
	inactivity *time.Timer
}

// Coordinator owns the live session registry and serializes every mutation
// behind one mutex: inbound events, timer callbacks, and janitor passes all
// lock, mutate in memory, unlock, then persist and broadcast outside the
// lock.
type Coordinator struct {
	mu       sync.Mutex
	store    GameStore
	rooms    Broadcaster
	sessions map[string]*game.Session
	bindings map[Conn]Binding
	timers   map[string]*sessionTimers

	inactivityTimeout time.Duration
	createdStateDelay time.Duration
	roundsPerGame     int
}

func New(st GameStore, rooms Broadcaster) *Coordinator {
	return &Coordinator{
		store:             st,
		rooms:             rooms,
		sessions:          map[string]*game.Session{},
		bindings:          map[Conn]Binding{},
		timers:            map[string]*sessionTimers{},
		inactivityTimeout: 20 * time.Minute,
		createdStateDelay: 150 * time.Millisecond,
		roundsPerGame:     game.DefaultRounds,
	}
}

// SetRoundsPerGame overrides the round count new sessions are created with.
func (c *Coordinator) SetRoundsPerGame(n int) {
	if n <= 0 {
		return
	}
	c.mu.Lock()
	c.roundsPerGame = n
	c.mu.Unlock()
}

// SetInactivityTimeout overrides how long an idle session survives before the
// coordinator closes it.
func (c *Coordinator) SetInactivityTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	c.mu.Lock()
	c.inactivityTimeout = d
	c.mu.Unlock()
}

// BindingFor returns the connection's session binding, if any.
func (c *Coordinator) BindingFor(conn Conn) (Binding, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bindings[conn]
	return b, ok
}

// SessionCount reports the number of live in-memory sessions.
func (c *Coordinator) SessionCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}
