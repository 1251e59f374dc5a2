package store

import (
	"encoding/json"
	"time"

	"github.com/boweryconnect/companion/internal/model/chat"
)

// PendingAction is a durable unit of work awaiting synchronization with the
// remote service. Created on any durable-write attempt, removed only by a
// successful sync or by exceeding the retry cap, never silently dropped.
type PendingAction struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
	RetryCount int             `json:"retryCount"`

	// NextAttemptAt backs failed actions off so an immediate re-drain does
	// not hammer the same dead endpoint. Zero means eligible now.
	NextAttemptAt time.Time `json:"nextAttemptAt,omitempty"`
	LastError     string    `json:"lastError,omitempty"`
}

// AttentionAction is a pending action that exhausted its retries. It is
// surfaced to the user as a visible sync failure instead of being deleted.
type AttentionAction struct {
	PendingAction
	FailedAt time.Time `json:"failedAt"`
	Reason   string    `json:"reason"`
}

// Preferences is the persisted user preference blob.
type Preferences struct {
	Language     string `json:"language"`
	Ambience     string `json:"ambience"`
	VoiceEnabled bool   `json:"voiceEnabled"`
}

// SaveSnapshot persists the last session snapshot.
func (g *Gateway) SaveSnapshot(snap chat.Snapshot) error {
	return g.Set(keySnapshot, snap)
}

// LoadSnapshot returns the stored session snapshot, if any.
func (g *Gateway) LoadSnapshot() (chat.Snapshot, bool, error) {
	var snap chat.Snapshot
	found, err := g.Get(keySnapshot, &snap)
	return snap, found, err
}

// DropSnapshot discards the stored session snapshot.
func (g *Gateway) DropSnapshot() error {
	return g.Remove(keySnapshot)
}

// SavePreferences persists the user preference blob.
func (g *Gateway) SavePreferences(prefs Preferences) error {
	return g.Set(keyPreferences, prefs)
}

// LoadPreferences returns the stored preference blob, if any. Defaulting is
// the caller's concern so the configured default language is not shadowed.
func (g *Gateway) LoadPreferences() (Preferences, bool, error) {
	var prefs Preferences
	found, err := g.Get(keyPreferences, &prefs)
	return prefs, found, err
}

// AppendPending adds an action to the durable queue.
func (g *Gateway) AppendPending(action PendingAction) error {
	return updateList(g, keyPending, func(queue []PendingAction) []PendingAction {
		return append(queue, action)
	})
}

// ListPending returns the queued actions in enqueue order.
func (g *Gateway) ListPending() ([]PendingAction, error) {
	var queue []PendingAction
	if _, err := g.Get(keyPending, &queue); err != nil {
		return nil, err
	}
	return queue, nil
}

// UpdatePending atomically rewrites the queue through mutate. Used by the
// sync scheduler to merge drain results back without losing actions
// enqueued while the drain was in flight.
func (g *Gateway) UpdatePending(mutate func([]PendingAction) []PendingAction) error {
	return updateList(g, keyPending, mutate)
}

// AppendAttention records an exhausted action on the needs-attention list.
func (g *Gateway) AppendAttention(action AttentionAction) error {
	return updateList(g, keyAttention, func(list []AttentionAction) []AttentionAction {
		return append(list, action)
	})
}

// ListAttention returns actions awaiting user acknowledgment.
func (g *Gateway) ListAttention() ([]AttentionAction, error) {
	var list []AttentionAction
	if _, err := g.Get(keyAttention, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// AcknowledgeAttention removes one acknowledged failure from the list.
func (g *Gateway) AcknowledgeAttention(id string) error {
	return updateList(g, keyAttention, func(list []AttentionAction) []AttentionAction {
		kept := list[:0]
		for _, a := range list {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		return kept
	})
}

// SaveLastSync records when a drain last completed.
func (g *Gateway) SaveLastSync(at time.Time) error {
	return g.Set(keyLastSync, at)
}

// LastSync returns the last completed drain time, if any.
func (g *Gateway) LastSync() (time.Time, bool, error) {
	var at time.Time
	found, err := g.Get(keyLastSync, &at)
	return at, found, err
}
