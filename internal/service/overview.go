package service

import (
	"context"

	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
)

// PricingSummary compares a retreat's base price with the price in effect.
type PricingSummary struct {
	RetreatID      string          `json:"retreatId"`
	Title          string          `json:"title"`
	Phase          lifecycle.Phase `json:"phase"`
	Price          float64         `json:"price"`
	EffectivePrice float64         `json:"effectivePrice"`
	Currency       string          `json:"currency"`
	ActiveTier     string          `json:"activePricingTier,omitempty"`
	Discounted     bool            `json:"discounted"`
	AvailableSpots *int            `json:"availableSpots"`
}

// Overview is the admin dashboard summary.
type Overview struct {
	Total    int                     `json:"total"`
	ByPhase  map[lifecycle.Phase]int `json:"byPhase"`
	Active   []PricingSummary        `json:"active"`
	Bookable int                     `json:"bookable"`
}

// Overview counts retreats per phase and summarises pricing for active ones.
func (s *RetreatService) Overview(ctx context.Context) (*Overview, error) {
	views, err := s.evaluateAll(ctx)
	if err != nil {
		return nil, err
	}

	out := &Overview{
		Total:   len(views),
		ByPhase: make(map[lifecycle.Phase]int),
		Active:  []PricingSummary{},
	}
	for _, v := range views {
		out.ByPhase[v.Evaluation.Phase]++
		if v.Evaluation.Bookable {
			out.Bookable++
		}
	}

	active := filterPhases(views, lifecycle.PhaseUpcoming, lifecycle.PhaseInProgress)
	for _, v := range active {
		p := v.Evaluation.Price
		summary := PricingSummary{
			RetreatID:      v.Retreat.ID,
			Title:          v.Retreat.Title,
			Phase:          v.Evaluation.Phase,
			Price:          v.Retreat.Price,
			EffectivePrice: p.Amount,
			Currency:       p.Currency,
			Discounted:     p.Discounted(v.Retreat.Price),
			AvailableSpots: v.Retreat.AvailableSpots,
		}
		if p.ActiveTier != nil {
			summary.ActiveTier = p.ActiveTier.Name
		}
		out.Active = append(out.Active, summary)
	}
	return out, nil
}
