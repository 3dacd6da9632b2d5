package lifecycle

import (
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// Severity selects the visual treatment of a badge. Values are ordered from
// least to most urgent.
type Severity int

const (
	SeverityNeutral Severity = iota
	SeverityInfo
	SeveritySuccess
	SeverityWarning
	SeverityDanger
)

var severityNames = [...]string{"neutral", "info", "success", "warning", "danger"}

func (s Severity) String() string {
	if s < 0 || int(s) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(s))
	}
	return severityNames[s]
}

func (s Severity) MarshalText() ([]byte, error) {
	if s < 0 || int(s) >= len(severityNames) {
		return nil, fmt.Errorf("invalid severity %d", int(s))
	}
	return []byte(severityNames[s]), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if name == string(text) {
			*s = Severity(i)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Badge is a short severity-tagged label summarising phase and availability.
type Badge struct {
	Severity Severity `json:"severity"`
	Text     string   `json:"text"`
}

// lowAvailability is the spot count at or below which upcoming retreats warn.
const lowAvailability = 3

// ResolveBadge returns the badge for the retreat's phase at now.
func ResolveBadge(r *model.Retreat, now time.Time) Badge {
	switch ResolveStatus(r, now) {
	case PhaseCompleted:
		return Badge{SeverityNeutral, "Experience completed"}
	case PhaseInProgress:
		return Badge{SeverityInfo, "In progress"}
	case PhaseDraft:
		return Badge{SeverityNeutral, "Draft"}
	case PhaseCancelled:
		return Badge{SeverityDanger, "Cancelled"}
	case PhaseUpcoming:
		return availabilityBadge(r)
	default:
		return Badge{SeverityNeutral, "Unknown status"}
	}
}

func availabilityBadge(r *model.Retreat) Badge {
	// availableSpots and isFull come from different upstream paths; either
	// one marks the retreat full.
	if isFull(r) {
		return Badge{SeverityDanger, "Full"}
	}
	if n := r.AvailableSpots; n != nil && *n > 0 && *n <= lowAvailability {
		return Badge{SeverityWarning, fmt.Sprintf("Only %d spots left", *r.AvailableSpots)}
	}
	return Badge{SeveritySuccess, "Available"}
}

func isFull(r *model.Retreat) bool {
	return r.IsFull || (r.AvailableSpots != nil && *r.AvailableSpots == 0)
}
