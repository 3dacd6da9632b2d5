// Package watcher periodically re-evaluates retreats and logs phase and
// pricing tier transitions.
package watcher

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/Shivanand-hulikatti/retreat-status/internal/clock"
	"github.com/Shivanand-hulikatti/retreat-status/internal/lifecycle"
	"github.com/Shivanand-hulikatti/retreat-status/internal/service"
)

// Kind identifies what changed in a Transition.
type Kind string

const (
	KindPhase Kind = "phase"
	KindTier  Kind = "tier"
)

// Transition is one observed change in a retreat's derived state.
type Transition struct {
	RetreatID string
	Title     string
	Kind      Kind
	From      string
	To        string
	At        time.Time
}

type observation struct {
	phase lifecycle.Phase
	tier  string
}

// Watcher compares successive evaluations of every retreat.
type Watcher struct {
	source service.Source
	clock  clock.Clock
	logger *slog.Logger
	cron   *cron.Cron

	mu   sync.Mutex
	seen map[string]observation
}

// New creates a Watcher. Call Start to schedule it.
func New(source service.Source, clk clock.Clock, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		source: source,
		clock:  clk,
		logger: logger,
		cron:   cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		seen:   make(map[string]observation),
	}
}

// Scan evaluates every retreat once and returns the transitions since the
// previous scan. Retreats seen for the first time produce no transition.
func (w *Watcher) Scan(ctx context.Context) ([]Transition, error) {
	retreats, err := w.source.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list retreats: %w", err)
	}
	now := w.clock.Now()

	w.mu.Lock()
	defer w.mu.Unlock()

	var out []Transition
	current := make(map[string]observation, len(retreats))
	for i := range retreats {
		r := &retreats[i]
		obs := observation{phase: lifecycle.ResolveStatus(r, now)}
		if p := lifecycle.ResolveEffectivePrice(r, now); p.ActiveTier != nil {
			obs.tier = p.ActiveTier.Name
		}
		current[r.ID] = obs

		prev, ok := w.seen[r.ID]
		if !ok {
			continue
		}
		if prev.phase != obs.phase {
			t := Transition{RetreatID: r.ID, Title: r.Title, Kind: KindPhase, From: string(prev.phase), To: string(obs.phase), At: now}
			w.logger.Info("retreat phase changed", "retreat_id", t.RetreatID, "title", t.Title, "from", t.From, "to", t.To)
			out = append(out, t)
		}
		if prev.tier != obs.tier {
			t := Transition{RetreatID: r.ID, Title: r.Title, Kind: KindTier, From: prev.tier, To: obs.tier, At: now}
			w.logger.Info("pricing tier changed", "retreat_id", t.RetreatID, "title", t.Title, "from", t.From, "to", t.To)
			out = append(out, t)
		}
	}
	w.seen = current
	return out, nil
}

// Start runs an initial scan and then schedules Scan on schedule
// (robfig/cron syntax, e.g. "@every 1m").
func (w *Watcher) Start(ctx context.Context, schedule string) error {
	if _, err := w.cron.AddFunc(schedule, func() { w.run(ctx) }); err != nil {
		return fmt.Errorf("schedule watcher %q: %w", schedule, err)
	}
	w.run(ctx)
	w.cron.Start()
	w.logger.Info("watcher started", "schedule", schedule)
	return nil
}

// Stop stops scheduling and waits for a running scan to finish.
func (w *Watcher) Stop() {
	<-w.cron.Stop().Done()
	w.logger.Info("watcher stopped")
}

func (w *Watcher) run(ctx context.Context) {
	transitions, err := w.Scan(ctx)
	if err != nil {
		w.logger.Warn("watcher scan failed", "error", err)
		return
	}
	w.logger.Debug("watcher scan completed", "transitions", len(transitions))
}
