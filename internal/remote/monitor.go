package remote

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// ProbeFunc checks whether the remote is reachable right now.
type ProbeFunc func(ctx context.Context) error

// TransitionHandler receives connectivity transitions. Handlers run on the
// monitor's goroutine and must not block.
type TransitionHandler func(online bool)

// Monitor watches connectivity and dispatches online/offline transitions to
// registered handlers. It starts pessimistic: offline until the first
// successful probe.
type Monitor struct {
	mu       sync.RWMutex
	online   bool
	handlers []TransitionHandler

	probe    ProbeFunc
	interval time.Duration
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewMonitor creates a connectivity monitor with the given probe and
// polling interval.
func NewMonitor(probe ProbeFunc, interval time.Duration, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logger.With(slog.String("component", "network_monitor")),
	}
}

// Subscribe registers a handler for connectivity transitions.
func (m *Monitor) Subscribe(h TransitionHandler) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, h)
	m.logger.Debug("registered connectivity handler", "handler_count", len(m.handlers))
}

// Online reports the last observed connectivity state.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// SetOnline records a connectivity observation. Handlers fire only on an
// actual transition.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	handlers := make([]TransitionHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	m.logger.Info("connectivity transition", "online", online)
	for _, h := range handlers {
		h(online)
	}
}

// Start launches the probe loop. An immediate probe runs before the first
// interval elapses so startup does not wait a full period to go online.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go func() {
		defer close(m.done)

		m.probeOnce(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.probeOnce(ctx)
			}
		}
	}()
}

// Stop terminates the probe loop and waits for it to exit.
func (m *Monitor) Stop() {
	if m.cancel != nil {
		m.cancel()
		<-m.done
	}
}

func (m *Monitor) probeOnce(ctx context.Context) {
	err := m.probe(ctx)
	if err != nil {
		m.logger.Debug("connectivity probe failed", "error", err)
	}
	m.SetOnline(err == nil)
}
