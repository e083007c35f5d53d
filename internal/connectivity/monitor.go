// Package connectivity tracks whether the remote alerts backend is reachable
// and notifies listeners on the offline-to-online transition.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Prober checks reachability of the backend. The alerts client satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor probes the backend on a fixed interval. It starts offline, so the
// first successful probe counts as a transition and replays anything left in
// the queue from a previous run.
type Monitor struct {
	prober   Prober
	interval time.Duration
	logger   zerolog.Logger

	mu        sync.Mutex
	online    bool
	callbacks []func(context.Context)
}

func NewMonitor(prober Prober, interval time.Duration, logger zerolog.Logger) *Monitor {
	return &Monitor{
		prober:   prober,
		interval: interval,
		logger:   logger.With().Str("component", "connectivity").Logger(),
	}
}

// OnOnline registers a callback fired on every offline-to-online transition.
// Registration must happen before Run.
func (m *Monitor) OnOnline(fn func(context.Context)) {
	m.mu.Lock()
	m.callbacks = append(m.callbacks, fn)
	m.mu.Unlock()
}

// IsOnline reports the last observed connectivity state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Run probes until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	m.probe(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info().Msg("connectivity monitor stopped")
			return ctx.Err()
		case <-ticker.C:
			m.probe(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) {
	err := m.prober.Ping(ctx)
	m.SetOnline(ctx, err == nil)
}

// SetOnline records the connectivity state and fires the registered callbacks
// when the state flips from offline to online. Exposed so tests and manual
// triggers can drive transitions without a live backend.
func (m *Monitor) SetOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	callbacks := m.callbacks
	m.mu.Unlock()

	if online == wasOnline {
		return
	}

	if online {
		m.logger.Info().Msg("connectivity restored")
		for _, fn := range callbacks {
			fn(ctx)
		}
	} else {
		m.logger.Warn().Msg("connectivity lost")
	}
}
