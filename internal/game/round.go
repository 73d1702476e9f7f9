package game

import "sort"

// RoundPhase is the explicit state of the per-session countdown machine.
type RoundPhase string

const (
	PhaseCounting RoundPhase = "counting"
	PhaseDelay    RoundPhase = "delay"
	PhaseFinished RoundPhase = "finished"
)

type Round struct {
	Current               int
	Max                   int
	TimeRemaining         int
	Phase                 RoundPhase
	DelaySecondsRemaining int
}

func NewRound(max int) Round {
	return Round{
		Current:       1,
		Max:           max,
		TimeRemaining: RoundSeconds,
		Phase:         PhaseCounting,
	}
}

func (r Round) DelayActive() bool {
	return r.Phase == PhaseDelay
}

// TickResult reports what a single one-second tick produced.
type TickResult struct {
	RoundEnded bool
	EndedRound int
	NewRound   bool
	Finished   bool
	Winner     *ScoreEntry
	Scores     []ScoreEntry
}

// TickRound advances the countdown machine by one second. Counting drains to
// zero and enters the fixed inter-round delay; the delay drains to zero and
// either installs the next round or finishes the session when the round cap
// is reached.
func (s *Session) TickRound() TickResult {
	switch s.Round.Phase {
	case PhaseCounting:
		s.Round.TimeRemaining--
		if s.Round.TimeRemaining > 0 {
			return TickResult{}
		}
		s.Round.Phase = PhaseDelay
		s.Round.DelaySecondsRemaining = DelaySeconds
		return TickResult{RoundEnded: true, EndedRound: s.Round.Current}

	case PhaseDelay:
		s.Round.DelaySecondsRemaining--
		if s.Round.DelaySecondsRemaining > 0 {
			return TickResult{}
		}
		// The completed round's log is archived either way.
		s.ActionHistory[s.Round.Current] = s.RecentActions
		s.RecentActions = []string{}
		if s.Round.Current+1 > s.Round.Max {
			s.Round.Current = s.Round.Max + 1
			s.Round.Phase = PhaseFinished
			s.Status = StatusFinished
			s.TimerActive = false
			scores := s.FinalScores()
			res := TickResult{Finished: true, Scores: scores}
			if len(scores) > 0 {
				res.Winner = &scores[0]
			}
			return res
		}
		s.Round.Current++
		s.Round.TimeRemaining = RoundSeconds
		s.Round.Phase = PhaseCounting
		s.Market.RandomizeIndicators(20)
		return TickResult{NewRound: true}
	}
	return TickResult{}
}

type ScoreEntry struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
}

// FinalScores ranks players by tokens plus asset value at current market
// prices. The sort is stable, so ties resolve in join order.
func (s *Session) FinalScores() []ScoreEntry {
	scores := make([]ScoreEntry, 0, len(s.Players))
	for _, p := range s.Players {
		value := float64(p.Tokens)
		for r, qty := range p.Assets {
			value += float64(qty) * s.Market.Prices[r]
		}
		scores = append(scores, ScoreEntry{PlayerID: p.ID, PlayerName: p.Name, Score: int(value)})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}
