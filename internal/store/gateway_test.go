package store

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/boweryconnect/companion/internal/model/chat"
)

func openTestGateway(t *testing.T) *Gateway {
	t.Helper()
	g, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open err: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

func TestGetMissingKey(t *testing.T) {
	g := openTestGateway(t)

	var out string
	found, err := g.Get("nope", &out)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if found {
		t.Fatal("expected missing key to report not found")
	}
}

func TestSetGetRemove(t *testing.T) {
	g := openTestGateway(t)

	if err := g.Set("k", map[string]int{"n": 7}); err != nil {
		t.Fatalf("Set err: %v", err)
	}

	var out map[string]int
	found, err := g.Get("k", &out)
	if err != nil || !found {
		t.Fatalf("Get found=%v err=%v", found, err)
	}
	if out["n"] != 7 {
		t.Fatalf("unexpected value: %v", out)
	}

	if err := g.Remove("k"); err != nil {
		t.Fatalf("Remove err: %v", err)
	}
	if found, _ := g.Get("k", &out); found {
		t.Fatal("expected key gone after Remove")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	g := openTestGateway(t)

	snap := chat.Snapshot{
		SessionID: "s1",
		Mood:      chat.MoodAnxious,
		SavedAt:   time.Now().UTC().Truncate(time.Second),
		Messages: []chat.Message{
			{ID: "m1", SessionID: "s1", Sender: chat.SenderUser, Text: "hi"},
		},
	}
	if err := g.SaveSnapshot(snap); err != nil {
		t.Fatalf("SaveSnapshot err: %v", err)
	}

	got, found, err := g.LoadSnapshot()
	if err != nil || !found {
		t.Fatalf("LoadSnapshot found=%v err=%v", found, err)
	}
	if got.SessionID != "s1" || got.Mood != chat.MoodAnxious || len(got.Messages) != 1 {
		t.Fatalf("snapshot mismatch: %+v", got)
	}
}

func TestPreferencesRoundTrip(t *testing.T) {
	g := openTestGateway(t)

	if _, found, err := g.LoadPreferences(); found || err != nil {
		t.Fatalf("expected no preferences on fresh store, found=%v err=%v", found, err)
	}

	saved := Preferences{Language: "es", Ambience: "rain", VoiceEnabled: true}
	if err := g.SavePreferences(saved); err != nil {
		t.Fatalf("SavePreferences err: %v", err)
	}

	prefs, found, err := g.LoadPreferences()
	if err != nil || !found {
		t.Fatalf("LoadPreferences found=%v err=%v", found, err)
	}
	if prefs != saved {
		t.Fatalf("expected %+v, got %+v", saved, prefs)
	}
}

func TestPendingQueueOrderAndConcurrentAppend(t *testing.T) {
	g := openTestGateway(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			action := PendingAction{
				ID:         string(rune('a' + n)),
				Kind:       "event",
				Payload:    json.RawMessage(`{}`),
				EnqueuedAt: time.Now().UTC(),
			}
			if err := g.AppendPending(action); err != nil {
				t.Errorf("AppendPending err: %v", err)
			}
		}(i)
	}
	wg.Wait()

	queue, err := g.ListPending()
	if err != nil {
		t.Fatalf("ListPending err: %v", err)
	}
	if len(queue) != 20 {
		t.Fatalf("expected 20 queued actions, got %d (lost update)", len(queue))
	}
}

func TestUpdatePendingMergesInPlace(t *testing.T) {
	g := openTestGateway(t)

	for _, id := range []string{"a", "b", "c"} {
		if err := g.AppendPending(PendingAction{ID: id, Kind: "event"}); err != nil {
			t.Fatalf("AppendPending err: %v", err)
		}
	}

	err := g.UpdatePending(func(queue []PendingAction) []PendingAction {
		kept := queue[:0]
		for _, a := range queue {
			if a.ID != "b" {
				kept = append(kept, a)
			}
		}
		return kept
	})
	if err != nil {
		t.Fatalf("UpdatePending err: %v", err)
	}

	queue, _ := g.ListPending()
	if len(queue) != 2 || queue[0].ID != "a" || queue[1].ID != "c" {
		t.Fatalf("unexpected queue after update: %+v", queue)
	}
}

func TestAttentionListLifecycle(t *testing.T) {
	g := openTestGateway(t)

	a := AttentionAction{
		PendingAction: PendingAction{ID: "x", Kind: "application", RetryCount: 5},
		FailedAt:      time.Now().UTC(),
		Reason:        "retry cap exceeded",
	}
	if err := g.AppendAttention(a); err != nil {
		t.Fatalf("AppendAttention err: %v", err)
	}

	list, err := g.ListAttention()
	if err != nil || len(list) != 1 {
		t.Fatalf("ListAttention len=%d err=%v", len(list), err)
	}

	if err := g.AcknowledgeAttention("x"); err != nil {
		t.Fatalf("AcknowledgeAttention err: %v", err)
	}
	list, _ = g.ListAttention()
	if len(list) != 0 {
		t.Fatalf("expected empty attention list, got %+v", list)
	}
}

func TestLastSyncRoundTrip(t *testing.T) {
	g := openTestGateway(t)

	if _, found, _ := g.LastSync(); found {
		t.Fatal("expected no last sync on fresh store")
	}

	at := time.Now().UTC().Truncate(time.Second)
	if err := g.SaveLastSync(at); err != nil {
		t.Fatalf("SaveLastSync err: %v", err)
	}
	got, found, err := g.LastSync()
	if err != nil || !found {
		t.Fatalf("LastSync found=%v err=%v", found, err)
	}
	if !got.Equal(at) {
		t.Fatalf("expected %v, got %v", at, got)
	}
}
