// Package connectivity tracks reachability of the remote crisis service.
// The monitor is the single writer of the process-wide online/offline state;
// everything else reads cached snapshots.
package connectivity

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"
)

// State is an immutable snapshot of the last known connectivity.
type State struct {
	IsOnline      bool      `json:"isOnline"`
	LastCheckedAt time.Time `json:"lastCheckedAt"`
}

// Monitor polls the remote service's liveness endpoint and caches the result.
type Monitor struct {
	client    *http.Client
	healthURL string

	mu    sync.RWMutex
	state State
	subs  []chan State
}

// NewMonitor builds a monitor probing healthURL with the given timeout.
// The initial state is optimistic: online until a probe says otherwise.
func NewMonitor(healthURL string, timeout time.Duration) *Monitor {
	return &Monitor{
		client:    &http.Client{Timeout: timeout},
		healthURL: healthURL,
		state:     State{IsOnline: true},
	}
}

// IsOnline returns the last known reachability without touching the network.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.IsOnline
}

// Snapshot returns the current connectivity state.
func (m *Monitor) Snapshot() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// CheckHealth probes the liveness endpoint. Any failure - timeout,
// transport error, non-success status, unexpected body - reads as offline
// and is never surfaced as an error: connectivity uncertainty must not
// crash the conversation flow.
func (m *Monitor) CheckHealth(ctx context.Context) bool {
	online := m.probe(ctx)
	m.setOnline(online)
	return online
}

// MarkDegraded records the service as unreachable without probing. Called by
// the dispatcher after a failed send so later turns skip the network until
// the next successful health check.
func (m *Monitor) MarkDegraded() {
	m.setOnline(false)
}

// Subscribe returns a channel receiving state transitions. Slow receivers
// miss intermediate transitions rather than blocking the monitor.
func (m *Monitor) Subscribe() <-chan State {
	ch := make(chan State, 8)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel obtained from Subscribe.
func (m *Monitor) Unsubscribe(ch <-chan State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, sub := range m.subs {
		if sub == ch {
			m.subs = append(m.subs[:i], m.subs[i+1:]...)
			close(sub)
			return
		}
	}
}

// Run re-probes on a fixed interval until ctx is done.
func (m *Monitor) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.CheckHealth(ctx)
		}
	}
}

func (m *Monitor) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.healthURL, nil)
	if err != nil {
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}

	var body struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false
	}
	return body.Status == "healthy"
}

func (m *Monitor) setOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	previous := m.state.IsOnline
	m.state = State{IsOnline: online, LastCheckedAt: time.Now().UTC()}
	if previous == online {
		return
	}

	log.Printf("[connectivity] transition online=%v", online)
	// Non-blocking sends under the lock so Unsubscribe can never close a
	// channel mid-send.
	for _, sub := range m.subs {
		select {
		case sub <- m.state:
		default:
		}
	}
}
