package lifecycle

import (
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

func TestIsAvailableForBooking(t *testing.T) {
	t.Parallel()

	upcoming := func(avail *int, full bool) *model.Retreat {
		return &model.Retreat{StartDate: day("2025-01-10"), EndDate: day("2025-01-15"), AvailableSpots: avail, IsFull: full}
	}
	now := at("2025-01-05")

	tests := []struct {
		name    string
		retreat *model.Retreat
		want    bool
	}{
		{"spots left", upcoming(spots(5), false), true},
		{"unknown capacity", upcoming(nil, false), true},
		{"zero spots", upcoming(spots(0), false), false},
		{"flagged full", upcoming(spots(5), true), false},
		{"in progress", &model.Retreat{ComputedStatus: "in_progress"}, false},
		{"cancelled", &model.Retreat{Status: model.RetreatStatusCancelled, StartDate: day("2025-01-10"), EndDate: day("2025-01-15")}, false},
		{"nil", nil, false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := IsAvailableForBooking(tc.retreat, now); got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestCallToAction(t *testing.T) {
	t.Parallel()

	now := at("2025-01-05")
	tests := []struct {
		retreat *model.Retreat
		want    string
	}{
		{&model.Retreat{ComputedStatus: "completed"}, "View details"},
		{&model.Retreat{ComputedStatus: "in_progress"}, "Retreat in progress"},
		{&model.Retreat{StartDate: day("2025-01-10"), EndDate: day("2025-01-15")}, "Book my spot"},
		{&model.Retreat{StartDate: day("2025-01-10"), EndDate: day("2025-01-15"), AvailableSpots: spots(0)}, "No spots available"},
		{&model.Retreat{Status: model.RetreatStatusDraft}, "Coming soon"},
		{&model.Retreat{Status: model.RetreatStatusCancelled}, "Retreat cancelled"},
		{nil, "More information"},
	}

	for _, tc := range tests {
		if got := CallToAction(tc.retreat, now); got != tc.want {
			t.Errorf("expected %q, got %q", tc.want, got)
		}
	}
}

func TestCountdownTo(t *testing.T) {
	t.Parallel()

	r := &model.Retreat{StartDate: day("2025-01-10"), EndDate: day("2025-01-15")}
	now := at("2025-01-08").Add(-(3*time.Hour + 4*time.Minute + 5*time.Second + 600*time.Millisecond))

	got := CountdownTo(r, now)
	if !got.Known || got.Started {
		t.Fatalf("expected a running countdown, got %+v", got)
	}
	if got.Days != 2 || got.Hours != 3 || got.Minutes != 4 || got.Seconds != 5 {
		t.Fatalf("expected 2d 3h 4m 5s, got %+v", got)
	}
}

func TestCountdownTo_StartedAndUnknown(t *testing.T) {
	t.Parallel()

	r := &model.Retreat{StartDate: day("2025-01-10"), EndDate: day("2025-01-15")}
	if got := CountdownTo(r, at("2025-01-10")); !got.Started || got.Days+got.Hours+got.Minutes+got.Seconds != 0 {
		t.Fatalf("expected started countdown at start instant, got %+v", got)
	}
	if got := CountdownTo(&model.Retreat{}, at("2025-01-10")); got.Known {
		t.Fatalf("expected unknown countdown without start date, got %+v", got)
	}
	if got := CountdownTo(nil, at("2025-01-10")); got.Known {
		t.Fatalf("expected unknown countdown for nil retreat")
	}
}

func TestCountdownTo_LastSecondBeforeStart(t *testing.T) {
	t.Parallel()

	r := &model.Retreat{StartDate: day("2025-01-10"), EndDate: day("2025-01-15")}
	now := at("2025-01-10").Add(-400 * time.Millisecond)

	if phase := ResolveStatus(r, now); phase != PhaseUpcoming {
		t.Fatalf("expected upcoming, got %s", phase)
	}
	got := CountdownTo(r, now)
	if got.Started {
		t.Fatalf("expected countdown not started while upcoming, got %+v", got)
	}
	if got.Days+got.Hours+got.Minutes+got.Seconds != 0 || got.Remaining != 0 {
		t.Fatalf("expected sub-second remainder truncated to zero parts, got %+v", got)
	}
}

func TestEvaluate_UsesSingleInstant(t *testing.T) {
	t.Parallel()

	r := &model.Retreat{
		StartDate:      day("2025-01-10"),
		EndDate:        day("2025-01-15"),
		AvailableSpots: spots(2),
		Price:          1000,
		PricingTiers:   []model.PricingTier{{Name: "Early", Price: 800, ValidUntil: day("2025-01-06")}},
	}
	now := at("2025-01-05")

	ev := Evaluate(r, now)
	if !ev.EvaluatedAt.Equal(now) {
		t.Fatalf("expected evaluation instant %v, got %v", now, ev.EvaluatedAt)
	}
	if ev.Phase != PhaseUpcoming || !ev.Bookable || ev.CTA != "Book my spot" {
		t.Fatalf("unexpected evaluation %+v", ev)
	}
	if ev.Price.Amount != 800 || ev.Badge.Severity != SeverityWarning {
		t.Fatalf("unexpected price or badge %+v", ev)
	}
	if ev.Countdown.Days != 5 {
		t.Fatalf("expected 5 days to start, got %+v", ev.Countdown)
	}
}
