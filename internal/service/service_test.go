package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Shivanand-hulikatti/retreat-status/internal/clock"
	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
	"github.com/Shivanand-hulikatti/retreat-status/internal/model"
)

type fakeSource struct {
	retreats []model.Retreat
	err      error
}

func (f *fakeSource) List(ctx context.Context) ([]model.Retreat, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.retreats, nil
}

func (f *fakeSource) GetByID(ctx context.Context, id string) (*model.Retreat, error) {
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.retreats {
		if f.retreats[i].ID == id {
			r := f.retreats[i]
			return &r, nil
		}
	}
	return nil, model.ErrNotFound
}

type fakeSink struct {
	leads []model.Lead
	err   error
}

func (f *fakeSink) CreateLead(ctx context.Context, lead model.Lead) (*model.Lead, error) {
	if f.err != nil {
		return nil, f.err
	}
	lead.ID = "lead-1"
	f.leads = append(f.leads, lead)
	return &lead, nil
}

var now = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func date(y int, m time.Month, d int) *model.Timestamp {
	return model.NewTimestamp(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

func intPtr(n int) *int { return &n }

func fixtures() []model.Retreat {
	return []model.Retreat{
		{ID: "past-old", Title: "Old", StartDate: date(2024, 5, 1), EndDate: date(2024, 5, 4)},
		{ID: "later", Title: "Later", StartDate: date(2025, 6, 1), EndDate: date(2025, 6, 5), AvailableSpots: intPtr(10), Price: 1000},
		{ID: "running", Title: "Running", StartDate: date(2025, 2, 27), EndDate: date(2025, 3, 3)},
		{ID: "soon", Title: "Soon", StartDate: date(2025, 4, 1), EndDate: date(2025, 4, 5), AvailableSpots: intPtr(2), Price: 1000,
			PricingTiers: []model.PricingTier{{Name: "Early", Price: 800, ValidUntil: date(2025, 3, 15)}}},
		{ID: "past-recent", Title: "Recent", StartDate: date(2025, 1, 10), EndDate: date(2025, 1, 15)},
		{ID: "full", Title: "Full", StartDate: date(2025, 5, 1), EndDate: date(2025, 5, 3), AvailableSpots: intPtr(0), IsFull: true},
		{ID: "cancelled", Title: "Cancelled", Status: model.RetreatStatusCancelled, StartDate: date(2025, 4, 10), EndDate: date(2025, 4, 12)},
		{ID: "draft", Title: "Draft", Status: model.RetreatStatusDraft},
	}
}

func newTestService(sink LeadSink) *RetreatService {
	opts := []Option{}
	if sink != nil {
		opts = append(opts, WithLeadSink(sink))
	}
	return NewRetreatService(&fakeSource{retreats: fixtures()}, clock.NewFixed(now), opts...)
}

func ids(views []RetreatView) []string {
	out := make([]string, 0, len(views))
	for _, v := range views {
		out = append(out, v.Retreat.ID)
	}
	return out
}

func equalIDs(t *testing.T, got []RetreatView, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("expected %v, got %v", want, g)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, g)
		}
	}
}

func TestListRetreats_FilterByPhase(t *testing.T) {
	svc := newTestService(nil)

	all, err := svc.ListRetreats(context.Background(), ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != len(fixtures()) {
		t.Fatalf("expected %d retreats, got %d", len(fixtures()), len(all))
	}
	for _, v := range all {
		if !v.Evaluation.EvaluatedAt.Equal(now) {
			t.Fatalf("expected evaluation at %v, got %v", now, v.Evaluation.EvaluatedAt)
		}
	}

	upcoming, err := svc.ListRetreats(context.Background(), ListFilter{Phase: lifecycle.PhaseUpcoming})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	equalIDs(t, upcoming, "later", "soon", "full")
}

func TestListActive_SortedByStart(t *testing.T) {
	active, err := newTestService(nil).ListActive(context.Background())
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	equalIDs(t, active, "running", "soon", "full", "later")
}

func TestListPast_MostRecentFirst(t *testing.T) {
	past, err := newTestService(nil).ListPast(context.Background())
	if err != nil {
		t.Fatalf("list past: %v", err)
	}
	equalIDs(t, past, "past-recent", "past-old")
}

func TestNextRetreat(t *testing.T) {
	next, err := newTestService(nil).NextRetreat(context.Background())
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if next.Retreat.ID != "soon" {
		t.Fatalf("expected soon, got %s", next.Retreat.ID)
	}
	if next.Evaluation.Badge.Text != "Only 2 spots left" {
		t.Fatalf("unexpected badge %+v", next.Evaluation.Badge)
	}
	if next.Evaluation.Price.Amount != 800 || next.Evaluation.Price.ActiveTier.Name != "Early" {
		t.Fatalf("unexpected price %+v", next.Evaluation.Price)
	}

	empty := NewRetreatService(&fakeSource{}, clock.NewFixed(now))
	if _, err := empty.NextRetreat(context.Background()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetRetreat(t *testing.T) {
	svc := newTestService(nil)

	v, err := svc.GetRetreat(context.Background(), "running")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if v.Evaluation.Phase != lifecycle.PhaseInProgress {
		t.Fatalf("expected in_progress, got %s", v.Evaluation.Phase)
	}

	if _, err := svc.GetRetreat(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.GetRetreat(context.Background(), ""); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestSourceErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	svc := NewRetreatService(&fakeSource{err: boom}, clock.NewFixed(now))

	if _, err := svc.ListRetreats(context.Background(), ListFilter{}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
	if _, err := svc.GetRetreat(context.Background(), "x"); !errors.Is(err, boom) || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected wrapped source error, got %v", err)
	}
}

func TestSubmitLead(t *testing.T) {
	tests := []struct {
		name    string
		req     model.CreateLeadRequest
		wantErr error
	}{
		{"booking open retreat", model.CreateLeadRequest{Name: " Ana ", Email: "Ana@Example.com", Interest: model.LeadInterestBook, Retreat: "soon"}, nil},
		{"default interest", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com"}, nil},
		{"info on past retreat", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Interest: model.LeadInterestInfo, Retreat: "past-old"}, nil},
		{"missing name", model.CreateLeadRequest{Email: "ana@example.com"}, ErrValidation},
		{"bad email", model.CreateLeadRequest{Name: "Ana", Email: "ana.example.com"}, ErrValidation},
		{"unknown interest", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Interest: "buy"}, ErrValidation},
		{"booking without retreat", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Interest: model.LeadInterestBook}, ErrValidation},
		{"unknown retreat", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Retreat: "nope"}, ErrNotFound},
		{"booking full retreat", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Interest: model.LeadInterestBook, Retreat: "full"}, ErrRetreatFull},
		{"booking running retreat", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Interest: model.LeadInterestBook, Retreat: "running"}, ErrBookingClosed},
		{"booking cancelled retreat", model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com", Interest: model.LeadInterestBook, Retreat: "cancelled"}, ErrBookingClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink := &fakeSink{}
			lead, err := newTestService(sink).SubmitLead(context.Background(), tt.req)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if len(sink.leads) != 0 {
					t.Fatalf("expected no lead forwarded, got %d", len(sink.leads))
				}
				return
			}
			if err != nil {
				t.Fatalf("submit: %v", err)
			}
			if lead.ID != "lead-1" || lead.Reference == "" || lead.Source != model.LeadSourceLanding {
				t.Fatalf("unexpected lead %+v", lead)
			}
			if lead.Name != "Ana" || lead.Email != "ana@example.com" {
				t.Fatalf("lead not normalised: %+v", lead)
			}
			if tt.req.Interest == "" && lead.Interest != model.LeadInterestInquiry {
				t.Fatalf("expected default interest, got %q", lead.Interest)
			}
		})
	}
}

func TestSubmitLead_WithoutSink(t *testing.T) {
	_, err := newTestService(nil).SubmitLead(context.Background(), model.CreateLeadRequest{Name: "Ana", Email: "ana@example.com"})
	if !errors.Is(err, ErrLeadsUnavailable) {
		t.Fatalf("expected ErrLeadsUnavailable, got %v", err)
	}
}

func TestCountdown(t *testing.T) {
	got, err := newTestService(nil).Countdown(context.Background(), "soon")
	if err != nil {
		t.Fatalf("countdown: %v", err)
	}
	if got.Phase != lifecycle.PhaseUpcoming || got.Countdown.Days != 30 || got.Countdown.Hours != 12 {
		t.Fatalf("unexpected countdown %+v", got)
	}
}

func TestWatchCountdown_StopsWhenRetreatStarts(t *testing.T) {
	start := now.Add(3 * time.Second)
	r := &model.Retreat{ID: "r1", StartDate: model.NewTimestamp(start), EndDate: model.NewTimestamp(start.Add(time.Hour))}
	tick := now
	clk := clock.Func(func() time.Time {
		cur := tick
		tick = tick.Add(time.Second)
		return cur
	})
	svc := NewRetreatService(&fakeSource{}, clk)

	var frames []CountdownView
	last, err := svc.WatchCountdown(context.Background(), r, time.Millisecond, func(v CountdownView) error {
		frames = append(frames, v)
		return nil
	})
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	if len(frames) != 4 {
		t.Fatalf("expected 4 frames, got %d: %+v", len(frames), frames)
	}
	if frames[0].Countdown.Seconds != 3 || frames[1].Countdown.Seconds != 2 || frames[2].Countdown.Seconds != 1 {
		t.Fatalf("unexpected frames %+v", frames)
	}
	if last != frames[3] {
		t.Fatalf("expected final frame to be returned, got %+v", last)
	}
	if last.Phase != lifecycle.PhaseInProgress || !last.Countdown.Started {
		t.Fatalf("expected final in-progress frame, got %+v", last)
	}
}

func TestWatchCountdown_StopsOnCancelAndEmitError(t *testing.T) {
	svc := newTestService(nil)
	v, err := svc.GetRetreat(context.Background(), "soon")
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	_, err = svc.WatchCountdown(ctx, &v.Retreat, time.Hour, func(CountdownView) error {
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}

	closed := errors.New("connection closed")
	_, err = svc.WatchCountdown(context.Background(), &v.Retreat, time.Millisecond, func(CountdownView) error {
		return closed
	})
	if !errors.Is(err, closed) {
		t.Fatalf("expected emit error, got %v", err)
	}

	if _, err := svc.WatchCountdown(context.Background(), &v.Retreat, 0, nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestOverview(t *testing.T) {
	o, err := newTestService(nil).Overview(context.Background())
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if o.Total != 8 {
		t.Fatalf("expected 8 retreats, got %d", o.Total)
	}
	want := map[lifecycle.Phase]int{
		lifecycle.PhaseUpcoming:   3,
		lifecycle.PhaseInProgress: 1,
		lifecycle.PhaseCompleted:  2,
		lifecycle.PhaseCancelled:  1,
		lifecycle.PhaseDraft:      1,
	}
	for phase, n := range want {
		if o.ByPhase[phase] != n {
			t.Fatalf("expected %d %s, got %d", n, phase, o.ByPhase[phase])
		}
	}
	if o.Bookable != 2 {
		t.Fatalf("expected 2 bookable, got %d", o.Bookable)
	}

	var soon *PricingSummary
	for i := range o.Active {
		if o.Active[i].RetreatID == "soon" {
			soon = &o.Active[i]
		}
	}
	if soon == nil {
		t.Fatalf("expected soon in active summary: %+v", o.Active)
	}
	if soon.EffectivePrice != 800 || soon.Price != 1000 || soon.ActiveTier != "Early" || !soon.Discounted || soon.Currency != "ARS" {
		t.Fatalf("unexpected pricing summary %+v", soon)
	}
}
