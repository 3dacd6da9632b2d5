// Package service implements the read side of the retreat service: it loads
// snapshots from a Source and evaluates them against the injected clock.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/clock"
	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

var (
	// ErrNotFound is returned when a retreat does not exist.
	ErrNotFound = model.ErrNotFound
	// ErrValidation wraps every request validation failure.
	ErrValidation = errors.New("validation failed")
	// ErrBookingClosed is returned when a booking targets a retreat that is not upcoming.
	ErrBookingClosed = errors.New("retreat is not open for booking")
	// ErrRetreatFull is returned when a booking targets an upcoming retreat with no spots.
	ErrRetreatFull = errors.New("retreat is fully booked")
	// ErrLeadsUnavailable is returned when no lead sink is configured.
	ErrLeadsUnavailable = errors.New("lead submission is not available")
)

// Source supplies retreat snapshots. Implementations return model.ErrNotFound
// for unknown ids.
type Source interface {
	List(ctx context.Context) ([]model.Retreat, error)
	GetByID(ctx context.Context, id string) (*model.Retreat, error)
}

// LeadSink receives validated leads.
type LeadSink interface {
	CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error)
}

// RetreatView is a retreat together with its derived state.
type RetreatView struct {
	Retreat    model.Retreat        `json:"retreat"`
	Evaluation lifecycle.Evaluation `json:"evaluation"`
}

// ListFilter narrows ListRetreats. A zero filter returns every retreat.
type ListFilter struct {
	Phase lifecycle.Phase
}

// RetreatService orchestrates retreat reads, lead submission and the countdown.
type RetreatService struct {
	source Source
	leads  LeadSink
	clock  clock.Clock
	logger *slog.Logger
}

// Option customises a RetreatService.
type Option func(*RetreatService)

// WithLeadSink enables lead submission.
func WithLeadSink(sink LeadSink) Option {
	return func(s *RetreatService) {
		s.leads = sink
	}
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *RetreatService) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewRetreatService constructs a RetreatService with its dependencies.
func NewRetreatService(source Source, clk clock.Clock, opts ...Option) *RetreatService {
	s := &RetreatService{
		source: source,
		clock:  clk,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func view(r model.Retreat, now time.Time) RetreatView {
	return RetreatView{Retreat: r, Evaluation: lifecycle.Evaluate(&r, now)}
}

func (s *RetreatService) evaluateAll(ctx context.Context) ([]RetreatView, error) {
	retreats, err := s.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list retreats: %w", err)
	}
	now := s.clock.Now()
	views := make([]RetreatView, 0, len(retreats))
	for _, r := range retreats {
		views = append(views, view(r, now))
	}
	return views, nil
}

// ListRetreats returns every retreat, optionally restricted to one phase.
func (s *RetreatService) ListRetreats(ctx context.Context, filter ListFilter) ([]RetreatView, error) {
	views, err := s.evaluateAll(ctx)
	if err != nil {
		return nil, err
	}
	if filter.Phase == "" {
		return views, nil
	}
	return filterPhases(views, filter.Phase), nil
}

// GetRetreat returns a single retreat by ID.
func (s *RetreatService) GetRetreat(ctx context.Context, id string) (*RetreatView, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: retreat id is required", ErrValidation)
	}
	r, err := s.source.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get retreat: %w", err)
	}
	v := view(*r, s.clock.Now())
	return &v, nil
}

// ListActive returns upcoming and in-progress retreats, earliest start first.
func (s *RetreatService) ListActive(ctx context.Context) ([]RetreatView, error) {
	views, err := s.evaluateAll(ctx)
	if err != nil {
		return nil, err
	}
	active := filterPhases(views, lifecycle.PhaseUpcoming, lifecycle.PhaseInProgress)
	sort.SliceStable(active, func(i, j int) bool {
		return before(active[i].Retreat.StartDate, active[j].Retreat.StartDate)
	})
	return active, nil
}

// ListPast returns completed retreats, most recently finished first.
func (s *RetreatService) ListPast(ctx context.Context) ([]RetreatView, error) {
	views, err := s.evaluateAll(ctx)
	if err != nil {
		return nil, err
	}
	past := filterPhases(views, lifecycle.PhaseCompleted)
	sort.SliceStable(past, func(i, j int) bool {
		return after(past[i].Retreat.EndDate, past[j].Retreat.EndDate)
	})
	return past, nil
}

// NextRetreat returns the upcoming retreat that starts soonest.
func (s *RetreatService) NextRetreat(ctx context.Context) (*RetreatView, error) {
	views, err := s.evaluateAll(ctx)
	if err != nil {
		return nil, err
	}
	var next *RetreatView
	for i := range views {
		v := &views[i]
		if v.Evaluation.Phase != lifecycle.PhaseUpcoming {
			continue
		}
		if next == nil || before(v.Retreat.StartDate, next.Retreat.StartDate) {
			next = v
		}
	}
	if next == nil {
		return nil, ErrNotFound
	}
	return next, nil
}

func filterPhases(views []RetreatView, phases ...lifecycle.Phase) []RetreatView {
	out := make([]RetreatView, 0, len(views))
	for _, v := range views {
		for _, p := range phases {
			if v.Evaluation.Phase == p {
				out = append(out, v)
				break
			}
		}
	}
	return out
}

// before orders timestamps ascending with unset values last.
func before(a, b *model.Timestamp) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Time.Before(b.Time)
}

// after orders timestamps descending with unset values last.
func after(a, b *model.Timestamp) bool {
	switch {
	case a.IsZero():
		return false
	case b.IsZero():
		return true
	}
	return a.Time.After(b.Time)
}
