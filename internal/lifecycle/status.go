// Package lifecycle derives the view state of a retreat from a snapshot and an
// evaluation instant: its phase, the badge to show, the effective price and the
// booking affordances built on top of them.
//
// Every function here is total and pure. Partial or malformed records degrade to
// PhaseUnknown, the neutral badge or the base price; nothing returns an error and
// nothing reads the wall clock.
package lifecycle

import (
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// Phase is the lifecycle state of a retreat.
type Phase string

const (
	PhaseDraft      Phase = "draft"
	PhaseCancelled  Phase = "cancelled"
	PhaseCompleted  Phase = "completed"
	PhaseInProgress Phase = "in_progress"
	PhaseUpcoming   Phase = "upcoming"
	PhaseUnknown    Phase = "unknown"
)

// Known reports whether p is one of the phases this package derives.
// Upstream-computed or author-set values may fall outside that set.
func (p Phase) Known() bool {
	switch p {
	case PhaseDraft, PhaseCancelled, PhaseCompleted, PhaseInProgress, PhaseUpcoming, PhaseUnknown:
		return true
	}
	return false
}

// ParsePhase returns the phase named by s and whether it is known.
func ParsePhase(s string) (Phase, bool) {
	p := Phase(s)
	return p, p.Known()
}

// ResolveStatus maps a retreat snapshot to its phase at now.
//
// Precedence: upstream computedStatus, then the author's draft/cancelled
// override, then the phase derived from the dates.
func ResolveStatus(r *model.Retreat, now time.Time) Phase {
	switch {
	case r == nil:
		return PhaseUnknown
	case r.ComputedStatus != "":
		return Phase(r.ComputedStatus)
	case !r.HasDates():
		return statusOrUnknown(r)
	case r.Status == model.RetreatStatusDraft:
		return PhaseDraft
	case r.Status == model.RetreatStatusCancelled:
		return PhaseCancelled
	}

	start, end := r.StartDate.Time, r.EndDate.Time
	switch {
	case now.After(end):
		return PhaseCompleted
	case !now.Before(start):
		return PhaseInProgress
	case now.Before(start):
		return PhaseUpcoming
	}
	return statusOrUnknown(r)
}

func statusOrUnknown(r *model.Retreat) Phase {
	if r.Status != "" {
		return Phase(r.Status)
	}
	return PhaseUnknown
}

// IsPast reports whether the retreat has finished.
func IsPast(r *model.Retreat, now time.Time) bool {
	return ResolveStatus(r, now) == PhaseCompleted
}

// IsActive reports whether the retreat is running at now.
func IsActive(r *model.Retreat, now time.Time) bool {
	return ResolveStatus(r, now) == PhaseInProgress
}

// IsUpcoming reports whether the retreat has yet to start.
func IsUpcoming(r *model.Retreat, now time.Time) bool {
	return ResolveStatus(r, now) == PhaseUpcoming
}
