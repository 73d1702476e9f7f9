package game

import (
	"fmt"
	"math"
)

type ActionType string

const (
	ActionBuy      ActionType = "buy"
	ActionSell     ActionType = "sell"
	ActionBurn     ActionType = "burn"
	ActionSabotage ActionType = "sabotage"
)

const (
	sellMultiplier = 0.8
	sabotageCost   = 100
	burnPressure   = 3
)

type Action struct {
	Type           ActionType
	Resource       Resource
	Amount         int
	TargetPlayerID string
}

// ApplyAction resolves one player action against the session. Any unmet
// precondition is a defined "nothing happens" outcome: no mutation, no log
// entry, and false returned. On success the acting (and for sabotage the
// target) player's totals are recomputed and a human-readable entry lands in
// the recent action log.
func (s *Session) ApplyAction(playerID string, a Action) bool {
	if s.Status != StatusPlaying {
		return false
	}
	p := s.FindPlayer(playerID)
	if p == nil {
		return false
	}
	if a.Amount <= 0 || !ValidResource(a.Resource) {
		return false
	}

	switch a.Type {
	case ActionBuy:
		cost := int(math.Floor(s.Market.Prices[a.Resource] * float64(a.Amount)))
		if p.Tokens < cost {
			return false
		}
		p.Tokens -= cost
		p.Assets[a.Resource] += a.Amount
		p.recomputeTotalAssets()
		s.appendAction(fmt.Sprintf("%s bought %d %s for %d tokens", p.Name, a.Amount, a.Resource, cost))

	case ActionSell:
		if p.Assets[a.Resource] < a.Amount {
			return false
		}
		proceeds := int(math.Floor(s.Market.Prices[a.Resource] * float64(a.Amount) * sellMultiplier))
		p.Assets[a.Resource] -= a.Amount
		p.Tokens += proceeds
		p.recomputeTotalAssets()
		s.appendAction(fmt.Sprintf("%s sold %d %s for %d tokens", p.Name, a.Amount, a.Resource, proceeds))

	case ActionBurn:
		if p.Assets[a.Resource] < a.Amount {
			return false
		}
		p.Assets[a.Resource] -= a.Amount
		p.recomputeTotalAssets()
		s.Market.NudgeIndicator(a.Resource, float64(a.Amount*burnPressure))
		s.appendAction(fmt.Sprintf("%s burned %d %s", p.Name, a.Amount, a.Resource))

	case ActionSabotage:
		if p.Tokens < sabotageCost {
			return false
		}
		target := s.FindPlayer(a.TargetPlayerID)
		if target == nil || target == p {
			return false
		}
		if target.Assets[a.Resource] < a.Amount {
			return false
		}
		p.Tokens -= sabotageCost
		target.Assets[a.Resource] -= a.Amount
		p.recomputeTotalAssets()
		target.recomputeTotalAssets()
		s.appendAction(fmt.Sprintf("%s sabotaged %s, destroying %d %s", p.Name, target.Name, a.Amount, a.Resource))

	default:
		return false
	}

	s.Touch()
	return true
}
