package lifecycle

import (
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// Price is the amount to display or charge at a given instant.
// ActiveTier is nil when the base price applies.
type Price struct {
	Amount     float64            `json:"amount"`
	Currency   string             `json:"currency"`
	ActiveTier *model.PricingTier `json:"activeTier"`
}

// ResolveEffectivePrice selects the price in effect at now.
//
// Tiers are eligible while now <= validUntil. Among eligible tiers the one that
// expires first wins, modelling a staged discount schedule; equal expiries go to
// the tier listed first. Tiers without validUntil are never eligible. Amounts are
// passed through without validation.
func ResolveEffectivePrice(r *model.Retreat, now time.Time) Price {
	if r == nil {
		return Price{Currency: model.DefaultCurrency}
	}

	base := Price{Amount: r.Price, Currency: r.CurrencyOrDefault()}

	var active *model.PricingTier
	for i := range r.PricingTiers {
		tier := &r.PricingTiers[i]
		if tier.ValidUntil.IsZero() || now.After(tier.ValidUntil.Time) {
			continue
		}
		if active == nil || tier.ValidUntil.Time.Before(active.ValidUntil.Time) {
			active = tier
		}
	}
	if active == nil {
		return base
	}

	selected := *active
	return Price{Amount: selected.Price, Currency: base.Currency, ActiveTier: &selected}
}

// Discounted reports whether an active tier changes the amount from the base price.
func (p Price) Discounted(base float64) bool {
	return p.ActiveTier != nil && p.Amount != base
}
