// Package netmon tracks remote reachability as reported by the host
// platform. It is a thin signal holder: it never makes a network call
// to verify anything (verification happens naturally when the engine's
// push/pull calls succeed or fail).
package netmon

import (
	"log/slog"
	"sync"
)

// Monitor holds the current reachability state and notifies listeners
// on edge transitions. Exactly one event is delivered per transition;
// setting the same state twice is a no-op.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	listeners []chan<- bool
}

// New creates a Monitor with the given initial state.
func New(initiallyOnline bool) *Monitor {
	return &Monitor{online: initiallyOnline}
}

// Online reports the current reachability state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a reachability reading from the host platform.
// Listeners are notified only when the state actually flips.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	listeners := make([]chan<- bool, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	slog.Debug("reachability changed", "online", online)
	for _, ch := range listeners {
		// Non-blocking: a slow listener misses the edge rather than
		// stalling the signal source. Listener channels should be
		// buffered.
		select {
		case ch <- online:
		default:
		}
	}
}

// Notify registers a channel for edge-transition events. The channel
// receives true on offline->online and false on online->offline.
// Buffer the channel; delivery is non-blocking.
func (m *Monitor) Notify(ch chan<- bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, ch)
}

// Stop removes a previously registered channel.
func (m *Monitor) Stop(ch chan<- bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, l := range m.listeners {
		if l == ch {
			m.listeners = append(m.listeners[:i], m.listeners[i+1:]...)
			return
		}
	}
}
