package lifecycle

import (
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// IsAvailableForBooking reports whether a visitor can still reserve a spot:
// the retreat is upcoming and has capacity left or an unknown capacity.
func IsAvailableForBooking(r *model.Retreat, now time.Time) bool {
	if ResolveStatus(r, now) != PhaseUpcoming {
		return false
	}
	if isFull(r) {
		return false
	}
	return r.AvailableSpots == nil || *r.AvailableSpots > 0
}

// CallToAction returns the label for the retreat's primary button.
func CallToAction(r *model.Retreat, now time.Time) string {
	switch ResolveStatus(r, now) {
	case PhaseCompleted:
		return "View details"
	case PhaseInProgress:
		return "Retreat in progress"
	case PhaseUpcoming:
		if isFull(r) {
			return "No spots available"
		}
		return "Book my spot"
	case PhaseDraft:
		return "Coming soon"
	case PhaseCancelled:
		return "Retreat cancelled"
	default:
		return "More information"
	}
}

// Countdown is the time remaining until a retreat starts.
type Countdown struct {
	Known     bool          `json:"known"`
	Started   bool          `json:"started"`
	Remaining time.Duration `json:"-"`
	Days      int           `json:"days"`
	Hours     int           `json:"hours"`
	Minutes   int           `json:"minutes"`
	Seconds   int           `json:"seconds"`
}

// CountdownTo computes the countdown to the retreat's start date at now.
// Sub-second remainders are truncated.
func CountdownTo(r *model.Retreat, now time.Time) Countdown {
	if r == nil || r.StartDate.IsZero() {
		return Countdown{}
	}
	until := r.StartDate.Time.Sub(now)
	if until <= 0 {
		return Countdown{Known: true, Started: true}
	}
	remaining := until.Truncate(time.Second)

	secs := int(remaining / time.Second)
	return Countdown{
		Known:     true,
		Remaining: remaining,
		Days:      secs / 86400,
		Hours:     secs % 86400 / 3600,
		Minutes:   secs % 3600 / 60,
		Seconds:   secs % 60,
	}
}

// Evaluation is the complete derived view state of a retreat at one instant.
type Evaluation struct {
	EvaluatedAt time.Time `json:"evaluatedAt"`
	Phase       Phase     `json:"phase"`
	Badge       Badge     `json:"badge"`
	Price       Price     `json:"price"`
	CTA         string    `json:"cta"`
	Bookable    bool      `json:"bookable"`
	Countdown   Countdown `json:"countdown"`
}

// Evaluate runs every resolver against the same instant.
func Evaluate(r *model.Retreat, now time.Time) Evaluation {
	return Evaluation{
		EvaluatedAt: now,
		Phase:       ResolveStatus(r, now),
		Badge:       ResolveBadge(r, now),
		Price:       ResolveEffectivePrice(r, now),
		CTA:         CallToAction(r, now),
		Bookable:    IsAvailableForBooking(r, now),
		Countdown:   CountdownTo(r, now),
	}
}
