package game

import "time"

// Snapshot is the wire and persistence form of a session. Every round tick
// broadcasts one to the session's room; creation and status transitions
// persist one to the store.
type Snapshot struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	Status        Status           `json:"status"`
	Visibility    Visibility       `json:"visibility"`
	Players       []PlayerSnapshot `json:"players"`
	Host          string           `json:"host"`
	Round         RoundSnapshot    `json:"round"`
	Market        Market           `json:"market"`
	RecentActions []string         `json:"recentActions"`
	CreatedAt     time.Time        `json:"createdAt"`
	UpdatedAt     time.Time        `json:"updatedAt"`
}

type PlayerSnapshot struct {
	ID            string           `json:"id"`
	Name          string           `json:"name"`
	WalletAddress string           `json:"walletAddress,omitempty"`
	Tokens        int              `json:"tokens"`
	Assets        map[Resource]int `json:"assets"`
	TotalAssets   int              `json:"totalAssets"`
	Connected     bool             `json:"connected"`
}

type RoundSnapshot struct {
	Current       int           `json:"current"`
	Max           int           `json:"max"`
	TimeRemaining int           `json:"timeRemaining"`
	Delay         DelaySnapshot `json:"delay"`
}

type DelaySnapshot struct {
	Active           bool `json:"active"`
	SecondsRemaining int  `json:"secondsRemaining"`
}

func (s *Session) Snapshot() Snapshot {
	players := make([]PlayerSnapshot, 0, len(s.Players))
	for _, p := range s.Players {
		assets := make(map[Resource]int, len(p.Assets))
		for r, qty := range p.Assets {
			assets[r] = qty
		}
		players = append(players, PlayerSnapshot{
			ID:            p.ID,
			Name:          p.Name,
			WalletAddress: p.WalletAddress,
			Tokens:        p.Tokens,
			Assets:        assets,
			TotalAssets:   p.TotalAssets,
			Connected:     p.Connected,
		})
	}
	return Snapshot{
		ID:            s.ID,
		Name:          s.Name,
		Status:        s.Status,
		Visibility:    s.Visibility,
		Players:       players,
		Host:          s.HostID,
		Round: RoundSnapshot{
			Current:       s.Round.Current,
			Max:           s.Round.Max,
			TimeRemaining: s.Round.TimeRemaining,
			Delay: DelaySnapshot{
				Active:           s.Round.DelayActive(),
				SecondsRemaining: s.Round.DelaySecondsRemaining,
			},
		},
		Market:        s.Market.Clone(),
		RecentActions: append(make([]string, 0, len(s.RecentActions)), s.RecentActions...),
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

// FromSnapshot rebuilds a session from its last persisted form, applying
// defaults for anything the snapshot lacks. Reconstruction is lossy on
// purpose: round timing resets to the checkpoint, not the true last tick.
func FromSnapshot(snap Snapshot) *Session {
	s := &Session{
		ID:            snap.ID,
		Name:          snap.Name,
		Status:        snap.Status,
		Visibility:    snap.Visibility,
		HostID:        snap.Host,
		RecentActions: snap.RecentActions,
		ActionHistory: map[int][]string{},
		ExitedPlayers: map[string]bool{},
		CreatedAt:     snap.CreatedAt,
		UpdatedAt:     snap.UpdatedAt,
	}
	if s.Status == "" {
		s.Status = StatusWaiting
	}
	if s.Visibility == "" {
		s.Visibility = VisibilityPublic
	}
	if s.RecentActions == nil {
		s.RecentActions = []string{}
	}
	s.Round = NewRound(DefaultRounds)
	if snap.Round.Max > 0 {
		s.Round.Max = snap.Round.Max
	}
	if snap.Round.Current > 0 {
		s.Round.Current = snap.Round.Current
	}
	s.Market = NewMarket()
	if len(snap.Market.Prices) > 0 {
		s.Market.SetPrices(snap.Market.Prices)
	}
	for _, ps := range snap.Players {
		assets := map[Resource]int{ResourceGold: 0, ResourceWater: 0, ResourceOil: 0}
		for r, qty := range ps.Assets {
			assets[r] = qty
		}
		p := &Player{
			ID:            ps.ID,
			Name:          ps.Name,
			WalletAddress: ps.WalletAddress,
			Tokens:        ps.Tokens,
			Assets:        assets,
			Connected:     false,
		}
		p.recomputeTotalAssets()
		s.Players = append(s.Players, p)
	}
	if s.HostID == "" && len(s.Players) > 0 {
		s.HostID = s.Players[0].ID
	}
	return s
}
