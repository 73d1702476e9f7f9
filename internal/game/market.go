package game

import (
	"fmt"
	"math/rand"
)

type Resource string

const (
	ResourceGold  Resource = "gold"
	ResourceWater Resource = "water"
	ResourceOil   Resource = "oil"
)

var Resources = []Resource{ResourceGold, ResourceWater, ResourceOil}

func ValidResource(r Resource) bool {
	switch r {
	case ResourceGold, ResourceWater, ResourceOil:
		return true
	}
	return false
}

type ChangeIndicator struct {
	Resource       Resource `json:"resource"`
	Change         float64  `json:"change"`
	DisplayPercent string   `json:"displayPercent"`
}

type Market struct {
	Prices           map[Resource]float64 `json:"prices"`
	ChangeIndicators []ChangeIndicator    `json:"changeIndicators"`
}

func NewMarket() Market {
	m := Market{
		Prices: map[Resource]float64{
			ResourceGold:  100,
			ResourceWater: 10,
			ResourceOil:   50,
		},
	}
	m.RandomizeIndicators(20)
	return m
}

// RandomizeIndicators replaces every change indicator with a fresh uniform
// draw in [-spread, +spread]. Round boundaries use spread 20, the ambient
// market ticker uses 10.
func (m *Market) RandomizeIndicators(spread float64) {
	indicators := make([]ChangeIndicator, 0, len(Resources))
	for _, r := range Resources {
		change := (rand.Float64()*2 - 1) * spread
		indicators = append(indicators, ChangeIndicator{
			Resource:       r,
			Change:         change,
			DisplayPercent: formatPercent(change),
		})
	}
	m.ChangeIndicators = indicators
}

// NudgeIndicator adds visual-only pressure for one resource without touching
// its price. Burn actions route through here.
func (m *Market) NudgeIndicator(r Resource, delta float64) {
	for i := range m.ChangeIndicators {
		if m.ChangeIndicators[i].Resource == r {
			m.ChangeIndicators[i].Change += delta
			m.ChangeIndicators[i].DisplayPercent = formatPercent(m.ChangeIndicators[i].Change)
			return
		}
	}
	m.ChangeIndicators = append(m.ChangeIndicators, ChangeIndicator{
		Resource:       r,
		Change:         delta,
		DisplayPercent: formatPercent(delta),
	})
}

// SetPrices replaces prices for known resources; unknown keys and
// non-positive values are ignored.
func (m *Market) SetPrices(prices map[Resource]float64) {
	for r, price := range prices {
		if !ValidResource(r) || price <= 0 {
			continue
		}
		m.Prices[r] = price
	}
}

// Clone returns an independent copy. Snapshots escape the coordinator lock,
// so they must not alias the live price map or indicator slice.
func (m Market) Clone() Market {
	prices := make(map[Resource]float64, len(m.Prices))
	for r, price := range m.Prices {
		prices[r] = price
	}
	indicators := make([]ChangeIndicator, len(m.ChangeIndicators))
	copy(indicators, m.ChangeIndicators)
	return Market{Prices: prices, ChangeIndicators: indicators}
}

func formatPercent(change float64) string {
	return fmt.Sprintf("%+.1f%%", change)
}
