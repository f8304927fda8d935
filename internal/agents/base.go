// Package agents implements the three periodic simulated actors
// spec.md §4.5 describes: Supplier, PurchasingAgent and
// CustomerSimulator. Each is a ticker loop over context.Context,
// grounded on 0xtitan6-polymarket-mm/internal/strategy/maker.go's
// Run(ctx, ...) shape — a time.Ticker driven select loop that stops
// cleanly on ctx.Done() and lets any in-flight tick finish before
// returning.
package agents

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// ticker runs fn every period until ctx is cancelled. started guards
// against a double Run on the same agent (spec.md §4.5: "idempotent
// to double-start"); a second Run call on an already-running agent
// returns immediately.
type ticker struct {
	started atomic.Bool
	period  time.Duration
	log     zerolog.Logger
	name    string
}

func (t *ticker) run(ctx context.Context, fn func(context.Context)) {
	if !t.started.CompareAndSwap(false, true) {
		t.log.Warn().Str("agent", t.name).Msg("already running, ignoring duplicate start")
		return
	}
	defer t.started.Store(false)

	tk := time.NewTicker(t.period)
	defer tk.Stop()

	t.log.Info().Str("agent", t.name).Dur("period", t.period).Msg("agent started")
	for {
		select {
		case <-ctx.Done():
			t.log.Info().Str("agent", t.name).Msg("agent stopping")
			return
		case <-tk.C:
			fn(ctx)
		}
	}
}
