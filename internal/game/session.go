package game

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusWaiting  Status = "waiting"
	StatusPlaying  Status = "playing"
	StatusFinished Status = "finished"
	StatusClosed   Status = "closed"
)

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

const (
	MaxPlayers     = 4
	StartingTokens = 1000
	DefaultRounds  = 5
	RoundSeconds   = 60
	DelaySeconds   = 10
)

var (
	ErrGameFull    = errors.New("game is full")
	ErrGameStarted = errors.New("game already in progress")
)

type Player struct {
	ID            string
	Name          string
	WalletAddress string
	Tokens        int
	Assets        map[Resource]int
	TotalAssets   int
	Connected     bool
}

// NewPlayer derives the cross-session identity from the wallet address when
// one is supplied; anonymous players get a generated token instead.
func NewPlayer(name, walletAddress string) *Player {
	id := walletAddress
	if id == "" {
		id = uuid.NewString()
	}
	p := &Player{
		ID:            id,
		Name:          name,
		WalletAddress: walletAddress,
		Tokens:        StartingTokens,
		Assets:        map[Resource]int{ResourceGold: 0, ResourceWater: 0, ResourceOil: 0},
		Connected:     true,
	}
	p.recomputeTotalAssets()
	return p
}

func (p *Player) recomputeTotalAssets() {
	total := 0
	for _, qty := range p.Assets {
		total += qty
	}
	p.TotalAssets = total
}

type Session struct {
	ID            string
	Name          string
	Status        Status
	Visibility    Visibility
	Players       []*Player
	HostID        string
	Round         Round
	Market        Market
	RecentActions []string
	ActionHistory map[int][]string
	ExitedPlayers map[string]bool
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// TimerActive gates round ticks; a stale tick firing after close or
	// finish observes false and must not act.
	TimerActive bool
}

func NewSession(id, name string, visibility Visibility, host *Player) *Session {
	now := time.Now()
	return &Session{
		ID:            id,
		Name:          name,
		Status:        StatusWaiting,
		Visibility:    visibility,
		Players:       []*Player{host},
		HostID:        host.ID,
		Round:         NewRound(DefaultRounds),
		Market:        NewMarket(),
		RecentActions: []string{},
		ActionHistory: map[int][]string{},
		ExitedPlayers: map[string]bool{},
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// AddPlayer appends in join order. Rejected when the session is full or no
// longer waiting for players.
func (s *Session) AddPlayer(p *Player) error {
	if s.Status != StatusWaiting {
		return ErrGameStarted
	}
	if len(s.Players) >= MaxPlayers {
		return ErrGameFull
	}
	s.Players = append(s.Players, p)
	s.Touch()
	return nil
}

func (s *Session) FindPlayer(id string) *Player {
	for _, p := range s.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// RemovePlayer drops the player and returns whether one was removed.
func (s *Session) RemovePlayer(id string) bool {
	for i, p := range s.Players {
		if p.ID == id {
			s.Players = append(s.Players[:i], s.Players[i+1:]...)
			s.Touch()
			return true
		}
	}
	return false
}

// MarkExited records an explicit leave. Safe to call twice for the same
// player.
func (s *Session) MarkExited(id string) {
	s.ExitedPlayers[id] = true
}

// ActivePlayers returns the players who have not explicitly exited.
func (s *Session) ActivePlayers() []*Player {
	out := make([]*Player, 0, len(s.Players))
	for _, p := range s.Players {
		if !s.ExitedPlayers[p.ID] {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) Start() {
	s.Status = StatusPlaying
	s.Round = NewRound(s.Round.Max)
	s.TimerActive = true
	s.Touch()
}

func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// appendAction keeps the most recent entry first and the log capped at ten.
func (s *Session) appendAction(text string) {
	s.RecentActions = append([]string{text}, s.RecentActions...)
	if len(s.RecentActions) > 10 {
		s.RecentActions = s.RecentActions[:10]
	}
}
