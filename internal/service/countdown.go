package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

// CountdownView is one frame of a retreat countdown.
type CountdownView struct {
	RetreatID   string              `json:"retreatId"`
	Phase       lifecycle.Phase     `json:"phase"`
	Countdown   lifecycle.Countdown `json:"countdown"`
	EvaluatedAt time.Time           `json:"evaluatedAt"`
}

func countdownFrame(r *model.Retreat, now time.Time) CountdownView {
	return CountdownView{
		RetreatID:   r.ID,
		Phase:       lifecycle.ResolveStatus(r, now),
		Countdown:   lifecycle.CountdownTo(r, now),
		EvaluatedAt: now,
	}
}

// Countdown returns the current countdown frame for a retreat.
func (s *RetreatService) Countdown(ctx context.Context, id string) (*CountdownView, error) {
	v, err := s.GetRetreat(ctx, id)
	if err != nil {
		return nil, err
	}
	frame := countdownFrame(&v.Retreat, v.Evaluation.EvaluatedAt)
	return &frame, nil
}

// WatchCountdown emits a countdown frame for r every interval, re-evaluating
// the snapshot against the clock on each tick. It stops once the retreat is no
// longer upcoming, after emitting the frame that shows the change, and returns
// that final frame. It returns ctx.Err() when ctx is cancelled.
func (s *RetreatService) WatchCountdown(ctx context.Context, r *model.Retreat, interval time.Duration, emit func(CountdownView) error) (CountdownView, error) {
	if interval <= 0 {
		return CountdownView{}, fmt.Errorf("%w: countdown interval must be positive", ErrValidation)
	}
	if r == nil {
		return CountdownView{}, ErrNotFound
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		frame := countdownFrame(r, s.clock.Now())
		if err := emit(frame); err != nil {
			return frame, fmt.Errorf("emit countdown: %w", err)
		}
		if frame.Phase != lifecycle.PhaseUpcoming {
			s.logger.Debug("countdown finished", "retreat_id", r.ID, "phase", string(frame.Phase))
			return frame, nil
		}

		select {
		case <-ctx.Done():
			return frame, ctx.Err()
		case <-ticker.C:
		}
	}
}
