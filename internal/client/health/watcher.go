// Package health tracks whether the server is reachable.
package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/fintrack/internal/logging"
)

// Prober checks the server once.
type Prober interface {
	Probe(ctx context.Context) error
}

// Watcher polls a Prober and remembers the result. The state starts online so
// the first mutations go to the network.
type Watcher struct {
	prober       Prober
	interval     time.Duration
	probeTimeout time.Duration
	onOnline     func(ctx context.Context)
	online       atomic.Bool
	logger       logging.Logger
}

// NewWatcher builds a Watcher. onOnline, when set, runs on every
// offline-to-online transition.
func NewWatcher(p Prober, interval time.Duration, onOnline func(ctx context.Context), l logging.Logger) *Watcher {
	w := &Watcher{
		prober:       p,
		interval:     interval,
		probeTimeout: 3 * time.Second,
		onOnline:     onOnline,
		logger:       l.With("module", "health"),
	}
	w.online.Store(true)
	return w
}

func (w *Watcher) Online() bool {
	return w.online.Load()
}

// Check probes once and updates the state.
func (w *Watcher) Check(ctx context.Context) bool {
	pctx, cancel := context.WithTimeout(ctx, w.probeTimeout)
	err := w.prober.Probe(pctx)
	cancel()

	now := err == nil
	was := w.online.Swap(now)
	if was == now {
		return now
	}

	if now {
		w.logger.Info(ctx, "Switched to online mode")
		if w.onOnline != nil {
			w.onOnline(ctx)
		}
	} else {
		w.logger.Warn(ctx, "Switched to offline mode", "error", err)
	}
	return now
}

// Run checks on every tick until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			return
		}
	}
}
