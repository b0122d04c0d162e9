package client

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldreport/internal/utils/logger"
)

type fakeProbe struct {
	mu  sync.Mutex
	err error
}

func (p *fakeProbe) HealthCheck(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *fakeProbe) set(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestMonitor_StartsOffline(t *testing.T) {
	probe := &fakeProbe{err: errors.New("no route to host")}
	m := NewMonitor(probe, logger.New("local"), time.Minute)

	assert.False(t, m.Online(), "offline until the first probe says otherwise")
}

func TestMonitor_CheckTransitions(t *testing.T) {
	probe := &fakeProbe{err: errors.New("no route to host")}
	m := NewMonitor(probe, logger.New("local"), time.Minute)

	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Online())

	probe.set(nil)
	assert.True(t, m.Check(context.Background()))
	assert.True(t, m.Online())

	probe.set(errors.New("timeout"))
	assert.False(t, m.Check(context.Background()))
	assert.False(t, m.Online())
}

func TestMonitor_SubscriberNotifiedOnReconnect(t *testing.T) {
	probe := &fakeProbe{err: errors.New("no route to host")}
	m := NewMonitor(probe, logger.New("local"), time.Minute)

	ch := m.Subscribe()
	defer m.Unsubscribe(ch)

	m.Check(context.Background())

	// Первый замер тоже считается переходом: неизвестно -> офлайн.
	select {
	case online := <-ch:
		assert.False(t, online)
	case <-time.After(time.Second):
		t.Fatal("expected offline notification")
	}

	probe.set(nil)
	m.Check(context.Background())

	select {
	case online := <-ch:
		assert.True(t, online)
	case <-time.After(time.Second):
		t.Fatal("expected online notification")
	}

	// No transition, no notification.
	m.Check(context.Background())
	select {
	case <-ch:
		t.Fatal("unexpected notification without a transition")
	default:
	}
}

func TestMonitor_RunStopsOnCancel(t *testing.T) {
	probe := &fakeProbe{}
	m := NewMonitor(probe, logger.New("local"), 10*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()

	require.Eventually(t, m.Online, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("monitor did not stop")
	}
}

func TestMonitor_Unsubscribe(t *testing.T) {
	probe := &fakeProbe{}
	m := NewMonitor(probe, logger.New("local"), time.Minute)

	ch := m.Subscribe()
	m.Unsubscribe(ch)

	_, open := <-ch
	assert.False(t, open, "unsubscribed channel is closed")

	// Probe after unsubscribe must not panic on the closed channel.
	m.Check(context.Background())
}

func TestMonitor_UnsubscribeDuringChecks(t *testing.T) {
	probe := &fakeProbe{}
	m := NewMonitor(probe, logger.New("local"), time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		// Каждый замер переключает состояние, чтобы уведомления шли
		// постоянно.
		for i := 0; ; i++ {
			select {
			case <-ctx.Done():
				return
			default:
			}
			if i%2 == 0 {
				probe.set(nil)
			} else {
				probe.set(errors.New("timeout"))
			}
			m.Check(ctx)
		}
	}()

	// Подписка и отписка наперегонки с уведомлениями не должны ронять
	// замер на закрытом канале.
	for i := 0; i < 500; i++ {
		ch := m.Subscribe()
		m.Unsubscribe(ch)
	}

	cancel()
	wg.Wait()
}
