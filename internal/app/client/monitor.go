package client

import (
	"context"
	"sync"
	"time"

	"golang.org/x/exp/slog"
)

// Probe answers whether the server is reachable right now. The HTTP
// client's health check is the production probe.
type Probe interface {
	HealthCheck(ctx context.Context) error
}

// Monitor polls the server and notifies subscribers on connectivity
// transitions. A transition from offline to online is what wakes the
// reconciler after a dead zone.
type Monitor struct {
	probe    Probe
	log      *slog.Logger
	interval time.Duration

	mu          sync.RWMutex
	online      bool
	checked     bool
	subscribers []chan bool
}

const defaultProbeInterval = 30 * time.Second

func NewMonitor(probe Probe, log *slog.Logger, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = defaultProbeInterval
	}
	return &Monitor{
		probe:    probe,
		log:      log,
		interval: interval,
	}
}

// Online reports the last observed state. Until the first probe completes
// the client assumes it is offline.
func (m *Monitor) Online() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// Subscribe returns a channel receiving the new state on every
// transition. The channel is buffered so a slow consumer does not stall
// the probe loop, a missed notification is dropped rather than queued.
func (m *Monitor) Subscribe() chan bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan bool, 1)
	m.subscribers = append(m.subscribers, ch)
	return ch
}

func (m *Monitor) Unsubscribe(ch chan bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, sub := range m.subscribers {
		if sub == ch {
			m.subscribers = append(m.subscribers[:i], m.subscribers[i+1:]...)
			close(ch)
			return
		}
	}
}

// Check probes once and records the transition.
func (m *Monitor) Check(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	online := m.probe.HealthCheck(probeCtx) == nil

	m.mu.Lock()
	changed := !m.checked || online != m.online
	m.checked = true
	m.online = online
	if changed {
		// Notify under the lock: Unsubscribe closes the channel while
		// holding it, so a send can never hit a closed channel. The sends
		// are non-blocking, the lock is held only briefly.
		for _, ch := range m.subscribers {
			select {
			case ch <- online:
			default:
			}
		}
	}
	m.mu.Unlock()

	if changed {
		if online {
			m.log.Info("Соединение с сервером восстановлено")
		} else {
			m.log.Warn("Сервер недоступен, переход в офлайн")
		}
	}

	return online
}

// Run probes until the context is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}
