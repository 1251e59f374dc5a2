// Package sync drains the durable pending-action queue against the remote
// service, with retry accounting and a user-visible needs-attention list for
// actions that exhaust their retries.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boweryconnect/companion/internal/service/connectivity"
	"github.com/boweryconnect/companion/internal/store"
)

// Defaults for the drain loop.
const (
	DefaultInterval  = 5 * time.Minute
	DefaultRetryCap  = 5
	defaultRetryBase = 30 * time.Second
)

// Remote delivers one queued action. Implemented by dispatch.Client.
type Remote interface {
	SyncAction(ctx context.Context, action store.PendingAction) error
}

// DrainResult reports one drain pass. Failed actions stay queued with an
// incremented retry count; Attention actions exceeded the cap and were moved
// to the needs-attention list.
type DrainResult struct {
	Synced    []string `json:"synced"`
	Failed    []string `json:"failed"`
	Attention []string `json:"attention,omitempty"`
}

// Status is the queue state surfaced to the UI.
type Status struct {
	Pending        int                     `json:"pending"`
	NeedsAttention []store.AttentionAction `json:"needsAttention"`
	LastSync       *time.Time              `json:"lastSync,omitempty"`
	Draining       bool                    `json:"draining"`
}

// Scheduler owns the pending queue's drain cycle. Only the scheduler
// mutates an in-drain snapshot; enqueues go straight to the store and are
// picked up by the next pass.
type Scheduler struct {
	gateway  *store.Gateway
	remote   Remote
	monitor  *connectivity.Monitor
	interval time.Duration
	retryCap int

	drainMu  sync.Mutex
	draining bool
	stateMu  sync.Mutex

	now func() time.Time
}

// NewScheduler builds a scheduler. interval <= 0 and retryCap <= 0 take the
// defaults (5 minutes, 5 attempts).
func NewScheduler(gateway *store.Gateway, remote Remote, monitor *connectivity.Monitor, interval time.Duration, retryCap int) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if retryCap <= 0 {
		retryCap = DefaultRetryCap
	}
	return &Scheduler{
		gateway:  gateway,
		remote:   remote,
		monitor:  monitor,
		interval: interval,
		retryCap: retryCap,
		now:      time.Now,
	}
}

// Enqueue appends a durable action to the queue. The payload is stored as
// JSON; a store write failure is returned so the caller can retry the
// enqueue, never swallowed.
func (s *Scheduler) Enqueue(kind string, payload any) (store.PendingAction, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return store.PendingAction{}, fmt.Errorf("failed to encode %s payload: %w", kind, err)
	}
	action := store.PendingAction{
		ID:         uuid.NewString(),
		Kind:       kind,
		Payload:    data,
		EnqueuedAt: s.now().UTC(),
	}
	if err := s.gateway.AppendPending(action); err != nil {
		return store.PendingAction{}, err
	}
	return action, nil
}

// Drain attempts every eligible queued action once. Actions enqueued while
// the pass runs are not part of its snapshot and wait for the next cycle;
// failed actions back off before becoming eligible again, so an immediate
// re-drain with no new enqueues is a no-op.
func (s *Scheduler) Drain(ctx context.Context) (DrainResult, error) {
	s.drainMu.Lock()
	defer s.drainMu.Unlock()
	s.setDraining(true)
	defer s.setDraining(false)

	snapshot, err := s.gateway.ListPending()
	if err != nil {
		return DrainResult{}, err
	}

	now := s.now().UTC()
	var result DrainResult
	synced := make(map[string]bool)
	exhausted := make(map[string]bool)
	updated := make(map[string]store.PendingAction)

	for _, action := range snapshot {
		if action.NextAttemptAt.After(now) {
			continue
		}
		err := s.remote.SyncAction(ctx, action)
		if err == nil {
			synced[action.ID] = true
			result.Synced = append(result.Synced, action.ID)
			continue
		}

		action.RetryCount++
		action.LastError = err.Error()
		action.NextAttemptAt = now.Add(backoff(action.RetryCount))
		if action.RetryCount >= s.retryCap {
			exhausted[action.ID] = true
			result.Attention = append(result.Attention, action.ID)
			if err := s.gateway.AppendAttention(store.AttentionAction{
				PendingAction: action,
				FailedAt:      now,
				Reason:        "retry cap exceeded",
			}); err != nil {
				log.Printf("[sync] failed to record attention action %s: %v", action.ID, err)
			}
			continue
		}
		updated[action.ID] = action
		result.Failed = append(result.Failed, action.ID)
	}

	// Merge back atomically: drop synced and exhausted, carry updated retry
	// accounting, and preserve anything enqueued while we were draining.
	err = s.gateway.UpdatePending(func(current []store.PendingAction) []store.PendingAction {
		next := current[:0]
		for _, action := range current {
			if synced[action.ID] || exhausted[action.ID] {
				continue
			}
			if u, ok := updated[action.ID]; ok {
				action = u
			}
			next = append(next, action)
		}
		return next
	})
	if err != nil {
		return result, err
	}

	if err := s.gateway.SaveLastSync(now); err != nil {
		log.Printf("[sync] failed to record last sync: %v", err)
	}
	if len(result.Synced)+len(result.Failed)+len(result.Attention) > 0 {
		log.Printf("[sync] drain complete: %d synced, %d failed, %d need attention",
			len(result.Synced), len(result.Failed), len(result.Attention))
	}
	return result, nil
}

// Status reports the queue state for the UI.
func (s *Scheduler) Status() (Status, error) {
	pending, err := s.gateway.ListPending()
	if err != nil {
		return Status{}, err
	}
	attention, err := s.gateway.ListAttention()
	if err != nil {
		return Status{}, err
	}
	status := Status{
		Pending:        len(pending),
		NeedsAttention: attention,
		Draining:       s.isDraining(),
	}
	if at, found, err := s.gateway.LastSync(); err == nil && found {
		status.LastSync = &at
	}
	return status, nil
}

// Acknowledge clears one surfaced sync failure after the user has seen it.
func (s *Scheduler) Acknowledge(actionID string) error {
	return s.gateway.AcknowledgeAttention(actionID)
}

// Run drains on the reconnect transition and on a fixed interval while
// online, until ctx is done.
func (s *Scheduler) Run(ctx context.Context) {
	transitions := s.monitor.Subscribe()
	defer s.monitor.Unsubscribe(transitions)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case state, ok := <-transitions:
			if !ok {
				return
			}
			if state.IsOnline {
				if _, err := s.Drain(ctx); err != nil {
					log.Printf("[sync] reconnect drain failed: %v", err)
				}
			}
		case <-ticker.C:
			if !s.monitor.IsOnline() {
				continue
			}
			if _, err := s.Drain(ctx); err != nil {
				log.Printf("[sync] scheduled drain failed: %v", err)
			}
		}
	}
}

func (s *Scheduler) setDraining(v bool) {
	s.stateMu.Lock()
	s.draining = v
	s.stateMu.Unlock()
}

func (s *Scheduler) isDraining() bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	return s.draining
}

// backoff doubles per attempt: 30s, 1m, 2m, 4m, ...
func backoff(retryCount int) time.Duration {
	d := defaultRetryBase
	for i := 1; i < retryCount; i++ {
		d *= 2
	}
	return d
}
