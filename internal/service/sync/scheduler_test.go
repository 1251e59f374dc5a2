package sync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/boweryconnect/companion/internal/service/connectivity"
	"github.com/boweryconnect/companion/internal/store"
)

type fakeRemote struct {
	mu       sync.Mutex
	attempts map[string]int
	fail     map[string]bool
	failAll  bool
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{attempts: make(map[string]int), fail: make(map[string]bool)}
}

func (f *fakeRemote) SyncAction(_ context.Context, action store.PendingAction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attempts[action.ID]++
	if f.failAll || f.fail[action.ID] {
		return errors.New("sync refused")
	}
	return nil
}

func (f *fakeRemote) attemptCount(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[id]
}

func testScheduler(t *testing.T) (*Scheduler, *fakeRemote, *store.Gateway) {
	t.Helper()
	gateway, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("store.Open err: %v", err)
	}
	t.Cleanup(func() { gateway.Close() })

	monitor := connectivity.NewMonitor("http://127.0.0.1:0/health", time.Second)
	remote := newFakeRemote()
	return NewScheduler(gateway, remote, monitor, time.Minute, 5), remote, gateway
}

func TestEnqueueDurable(t *testing.T) {
	s, _, gateway := testScheduler(t)

	action, err := s.Enqueue("application", map[string]string{"jobId": "j1"})
	if err != nil {
		t.Fatalf("Enqueue err: %v", err)
	}
	if action.ID == "" || action.RetryCount != 0 || action.EnqueuedAt.IsZero() {
		t.Fatalf("unexpected action: %+v", action)
	}

	queue, err := gateway.ListPending()
	if err != nil || len(queue) != 1 {
		t.Fatalf("expected 1 queued action, got %d (err=%v)", len(queue), err)
	}
}

func TestDrainAllSucceed(t *testing.T) {
	s, remote, gateway := testScheduler(t)

	var ids []string
	for i := 0; i < 3; i++ {
		a, err := s.Enqueue("event", map[string]int{"n": i})
		if err != nil {
			t.Fatalf("Enqueue err: %v", err)
		}
		ids = append(ids, a.ID)
	}

	result, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain err: %v", err)
	}
	if len(result.Synced) != 3 || len(result.Failed) != 0 {
		t.Fatalf("expected 3 synced, got %+v", result)
	}
	for _, id := range ids {
		if remote.attemptCount(id) != 1 {
			t.Fatalf("expected exactly 1 attempt for %s, got %d", id, remote.attemptCount(id))
		}
	}
	if queue, _ := gateway.ListPending(); len(queue) != 0 {
		t.Fatalf("expected empty queue after drain, got %d", len(queue))
	}
}

func TestDrainFailureIncrementsRetryAndKeepsQueued(t *testing.T) {
	s, remote, gateway := testScheduler(t)
	remote.failAll = true

	for i := 0; i < 3; i++ {
		if _, err := s.Enqueue("event", nil); err != nil {
			t.Fatalf("Enqueue err: %v", err)
		}
	}

	result, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain err: %v", err)
	}
	if len(result.Failed) != 3 || len(result.Synced) != 0 {
		t.Fatalf("expected 3 failed, got %+v", result)
	}

	queue, _ := gateway.ListPending()
	if len(queue) != 3 {
		t.Fatalf("failed actions must stay queued, got %d", len(queue))
	}
	for _, a := range queue {
		if a.RetryCount != 1 {
			t.Fatalf("expected retryCount 1, got %d", a.RetryCount)
		}
		if a.LastError == "" || a.NextAttemptAt.IsZero() {
			t.Fatalf("expected failure accounting, got %+v", a)
		}
	}
}

func TestDrainTwiceIsIdempotent(t *testing.T) {
	s, remote, _ := testScheduler(t)
	remote.failAll = true

	if _, err := s.Enqueue("event", nil); err != nil {
		t.Fatalf("Enqueue err: %v", err)
	}

	if _, err := s.Drain(context.Background()); err != nil {
		t.Fatalf("first Drain err: %v", err)
	}
	second, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("second Drain err: %v", err)
	}
	if len(second.Synced) != 0 || len(second.Failed) != 0 || len(second.Attention) != 0 {
		t.Fatalf("expected empty second drain, got %+v", second)
	}
}

func TestDrainRetriesAfterBackoff(t *testing.T) {
	s, remote, _ := testScheduler(t)
	remote.failAll = true

	action, err := s.Enqueue("event", nil)
	if err != nil {
		t.Fatalf("Enqueue err: %v", err)
	}
	if _, err := s.Drain(context.Background()); err != nil {
		t.Fatalf("Drain err: %v", err)
	}

	// Jump past the backoff window; the action becomes eligible again.
	s.now = func() time.Time { return time.Now().Add(time.Hour) }
	remote.failAll = false
	result, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain err: %v", err)
	}
	if len(result.Synced) != 1 || result.Synced[0] != action.ID {
		t.Fatalf("expected action synced after backoff, got %+v", result)
	}
	if remote.attemptCount(action.ID) != 2 {
		t.Fatalf("expected 2 total attempts, got %d", remote.attemptCount(action.ID))
	}
}

func TestDrainMovesExhaustedToAttention(t *testing.T) {
	s, remote, gateway := testScheduler(t)
	remote.failAll = true

	action, err := s.Enqueue("application", nil)
	if err != nil {
		t.Fatalf("Enqueue err: %v", err)
	}

	offset := time.Duration(0)
	for i := 0; i < 5; i++ {
		offset += time.Hour
		shift := offset
		s.now = func() time.Time { return time.Now().Add(shift) }
		if _, err := s.Drain(context.Background()); err != nil {
			t.Fatalf("Drain %d err: %v", i, err)
		}
	}

	if queue, _ := gateway.ListPending(); len(queue) != 0 {
		t.Fatalf("exhausted action must leave the queue, got %d", len(queue))
	}
	attention, _ := gateway.ListAttention()
	if len(attention) != 1 || attention[0].ID != action.ID {
		t.Fatalf("expected action on attention list, got %+v", attention)
	}
	if attention[0].RetryCount != 5 {
		t.Fatalf("expected retryCount 5, got %d", attention[0].RetryCount)
	}
	if remote.attemptCount(action.ID) != 5 {
		t.Fatalf("expected 5 attempts, got %d", remote.attemptCount(action.ID))
	}
}

func TestDrainPreservesActionsEnqueuedMidDrain(t *testing.T) {
	s, remote, gateway := testScheduler(t)

	first, err := s.Enqueue("event", nil)
	if err != nil {
		t.Fatalf("Enqueue err: %v", err)
	}

	// Enqueue a second action while the drain is between snapshot and
	// write-back, from the remote callback itself.
	var mid store.PendingAction
	remote.mu.Lock()
	remote.fail[first.ID] = false
	remote.mu.Unlock()

	done := make(chan struct{})
	origRemote := s.remote
	s.remote = remoteFunc(func(ctx context.Context, action store.PendingAction) error {
		var err error
		mid, err = s.Enqueue("late", nil)
		if err != nil {
			t.Errorf("mid-drain Enqueue err: %v", err)
		}
		close(done)
		return origRemote.SyncAction(ctx, action)
	})

	result, err := s.Drain(context.Background())
	if err != nil {
		t.Fatalf("Drain err: %v", err)
	}
	<-done

	if len(result.Synced) != 1 || result.Synced[0] != first.ID {
		t.Fatalf("drain must only cover its snapshot, got %+v", result)
	}
	queue, _ := gateway.ListPending()
	if len(queue) != 1 || queue[0].ID != mid.ID {
		t.Fatalf("mid-drain enqueue lost: %+v", queue)
	}
}

type remoteFunc func(ctx context.Context, action store.PendingAction) error

func (f remoteFunc) SyncAction(ctx context.Context, action store.PendingAction) error {
	return f(ctx, action)
}

func TestStatus(t *testing.T) {
	s, remote, _ := testScheduler(t)
	remote.failAll = true

	if _, err := s.Enqueue("event", nil); err != nil {
		t.Fatalf("Enqueue err: %v", err)
	}

	status, err := s.Status()
	if err != nil {
		t.Fatalf("Status err: %v", err)
	}
	if status.Pending != 1 || status.LastSync != nil || status.Draining {
		t.Fatalf("unexpected status: %+v", status)
	}

	if _, err := s.Drain(context.Background()); err != nil {
		t.Fatalf("Drain err: %v", err)
	}
	status, _ = s.Status()
	if status.LastSync == nil {
		t.Fatal("expected last sync recorded after drain")
	}
}
