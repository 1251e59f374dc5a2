// Package assistant owns the conversation session and runs the per-turn
// pipeline: classify, append, dispatch, escalate, persist. Exchanges are
// serialized through a single worker so responses always render in the
// order messages were submitted, regardless of remote latency.
package assistant

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/boweryconnect/companion/internal/analysis/classifier"
	"github.com/boweryconnect/companion/internal/fallback"
	"github.com/boweryconnect/companion/internal/model/chat"
	"github.com/boweryconnect/companion/internal/model/crisis"
	"github.com/boweryconnect/companion/internal/service/dispatch"
	"github.com/boweryconnect/companion/internal/service/escalation"
	"github.com/boweryconnect/companion/internal/store"
)

var (
	ErrNoSession = errors.New("no active session")
	ErrClosed    = errors.New("assistant service closed")
)

// Defaults for session persistence.
const (
	DefaultSnapshotKeep   = 20
	DefaultSnapshotMaxAge = time.Hour
)

// Options tunes session persistence and context bounds.
type Options struct {
	// SnapshotKeep is how many trailing messages a snapshot retains.
	SnapshotKeep int
	// SnapshotMaxAge is the freshness window for restoring a snapshot.
	SnapshotMaxAge time.Duration
	// DefaultLanguage is used when neither the request nor the stored
	// preferences name one.
	DefaultLanguage string
}

func (o Options) withDefaults() Options {
	if o.SnapshotKeep <= 0 {
		o.SnapshotKeep = DefaultSnapshotKeep
	}
	if o.SnapshotMaxAge <= 0 {
		o.SnapshotMaxAge = DefaultSnapshotMaxAge
	}
	if o.DefaultLanguage == "" {
		o.DefaultLanguage = "en"
	}
	return o
}

// ExchangeRequest is one user turn entering the pipeline.
type ExchangeRequest struct {
	Text               string
	KeystrokeIntervals []int
	Language           string
	IsVoice            bool
}

// ExchangeResult is everything the UI needs to render one completed turn.
type ExchangeResult struct {
	UserMessage      chat.Message    `json:"userMessage"`
	AssistantMessage chat.Message    `json:"assistantMessage"`
	Response         crisis.Response `json:"response"`
	Effects          []crisis.Effect `json:"effects"`
	Mood             chat.Mood       `json:"mood"`
}

type exchangeJob struct {
	req   ExchangeRequest
	reply chan ExchangeResult
}

// Service owns the single current session.
type Service struct {
	dispatcher *dispatch.Dispatcher
	gateway    *store.Gateway
	opts       Options

	mu      sync.Mutex
	current *chat.Session

	jobs     chan exchangeJob
	closing  chan struct{}
	flush    chan struct{}
	done     chan struct{}
	closeMu  sync.Mutex
	isClosed bool
	senders  sync.WaitGroup

	now func() time.Time
}

// NewService starts the exchange worker. Callers must Close the service to
// flush the worker when the conversation surface shuts down.
func NewService(dispatcher *dispatch.Dispatcher, gateway *store.Gateway, opts Options) *Service {
	s := &Service{
		dispatcher: dispatcher,
		gateway:    gateway,
		opts:       opts.withDefaults(),
		jobs:       make(chan exchangeJob, 16),
		closing:    make(chan struct{}),
		flush:      make(chan struct{}),
		done:       make(chan struct{}),
		now:        time.Now,
	}
	go s.worker()
	return s
}

// Open returns the current session, restoring the persisted snapshot when it
// is younger than the freshness window and starting a fresh stable session
// otherwise. A malformed snapshot is treated identically to no snapshot.
func (s *Service) Open(language string) (chat.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != nil {
		return s.snapshotLocked(), true
	}

	language = s.resolveLanguage(language)

	if snap, ok := s.loadFreshSnapshot(); ok {
		session := &chat.Session{
			ID:             snap.SessionID,
			Messages:       append([]chat.Message(nil), snap.Messages...),
			Mood:           snap.Mood,
			CreatedAt:      snap.SavedAt,
			LastActivityAt: snap.SavedAt,
		}
		s.current = session
		log.Printf("[assistant] restored session %s with %d messages, mood=%s",
			session.ID, len(session.Messages), session.Mood)
		return s.snapshotLocked(), true
	}

	s.current = s.freshSessionLocked(language)
	return s.snapshotLocked(), false
}

// Current returns a copy of the active session.
func (s *Service) Current() (chat.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return chat.Session{}, ErrNoSession
	}
	return s.snapshotLocked(), nil
}

// AcknowledgeCalm is the explicit de-escalation path: mood never lowers on
// its own, only when the user confirms a calming response helped.
func (s *Service) AcknowledgeCalm() (chat.Mood, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return "", ErrNoSession
	}
	if s.current.Mood != chat.MoodStable {
		log.Printf("[assistant] calm acknowledged, mood %s -> stable", s.current.Mood)
		s.current.Mood = chat.MoodStable
		s.persistLocked()
	}
	return s.current.Mood, nil
}

// Exchange runs one user turn through the pipeline. Turns are processed
// strictly in submission order; a slow remote call for an earlier turn
// blocks later turns rather than letting their responses overtake it.
//
// Cancelling ctx abandons the wait but not the work: the turn is still
// classified, answered, and recorded.
func (s *Service) Exchange(ctx context.Context, req ExchangeRequest) (ExchangeResult, error) {
	// Register as a sender before enqueueing: Close waits for registered
	// senders before flushing the worker, so a job that lands in the
	// channel is always answered.
	s.closeMu.Lock()
	if s.isClosed {
		s.closeMu.Unlock()
		return ExchangeResult{}, ErrClosed
	}
	s.senders.Add(1)
	s.closeMu.Unlock()
	defer s.senders.Done()

	job := exchangeJob{req: req, reply: make(chan ExchangeResult, 1)}

	select {
	case <-s.closing:
		return ExchangeResult{}, ErrClosed
	case s.jobs <- job:
	}

	select {
	case result := <-job.reply:
		return result, nil
	case <-ctx.Done():
		return ExchangeResult{}, ctx.Err()
	}
}

// Persist writes the current session snapshot, e.g. on backgrounding.
func (s *Service) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return ErrNoSession
	}
	return s.persistLocked()
}

// Close stops accepting new exchanges, lets in-flight ones finish recording,
// and suppresses their UI-facing side effects.
func (s *Service) Close() {
	s.closeMu.Lock()
	if s.isClosed {
		s.closeMu.Unlock()
		return
	}
	s.isClosed = true
	close(s.closing)
	s.closeMu.Unlock()

	// Let racing senders finish enqueueing before the worker flushes; an
	// accepted turn must never be stranded unanswered.
	s.senders.Wait()
	close(s.flush)
	<-s.done
}

func (s *Service) worker() {
	defer close(s.done)
	for {
		select {
		case job := <-s.jobs:
			job.reply <- s.process(job.req)
		case <-s.flush:
			// Every accepted job is already in the channel once flush
			// closes; answer and record them, then exit.
			for {
				select {
				case job := <-s.jobs:
					job.reply <- s.process(job.req)
				default:
					return
				}
			}
		}
	}
}

func (s *Service) process(req ExchangeRequest) ExchangeResult {
	req.Language = s.resolveLanguage(req.Language)
	result := classifier.Classify(req.Text, req.KeystrokeIntervals)

	s.mu.Lock()
	if s.current == nil {
		s.current = s.freshSessionLocked(req.Language)
	}
	session := s.current

	userMsg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    chat.SenderUser,
		Text:      req.Text,
		Emotion:   result.Emotion,
		Language:  req.Language,
		IsVoice:   req.IsVoice,
		Timestamp: s.now().UTC(),
	}
	history := append([]chat.Message(nil), session.Messages...)
	session.Messages = append(session.Messages, userMsg)
	session.Mood = session.Mood.Max(result.Mood())
	session.LastActivityAt = userMsg.Timestamp
	mood := session.Mood
	s.mu.Unlock()

	// Dispatch outside the lock and without a caller deadline: a crisis
	// response must be recorded even if the surface has gone away. The
	// HTTP client carries its own bounded timeout.
	response := s.dispatcher.Send(context.Background(), userMsg, history, mood, result)

	effects := escalation.Apply(response, req.IsVoice, req.Language)
	if response.Urgency.AtLeast(crisis.UrgencyHigh) {
		log.Printf("[assistant] urgency=%s category=%s fallback=%v session=%s",
			response.Urgency, result.Category, response.Fallback, session.ID)
	}

	assistantMsg := chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    chat.SenderAssistant,
		Text:      response.Message,
		Language:  req.Language,
		Timestamp: s.now().UTC(),
	}

	s.mu.Lock()
	session.Messages = append(session.Messages, assistantMsg)
	session.LastActivityAt = assistantMsg.Timestamp
	s.persistLocked()
	mood = session.Mood
	s.mu.Unlock()

	if s.surfaceClosed() {
		effects = nil
	}

	return ExchangeResult{
		UserMessage:      userMsg,
		AssistantMessage: assistantMsg,
		Response:         response,
		Effects:          effects,
		Mood:             mood,
	}
}

// Preferences returns the persisted user preferences, falling back to the
// configured defaults when none are stored.
func (s *Service) Preferences() (store.Preferences, error) {
	prefs, found, err := s.gateway.LoadPreferences()
	if err != nil {
		return store.Preferences{}, err
	}
	if !found {
		return store.Preferences{Language: s.opts.DefaultLanguage, Ambience: "silence"}, nil
	}
	return prefs, nil
}

// UpdatePreferences persists the preference blob. Empty fields take the
// defaults so a partial update never stores an unusable blob.
func (s *Service) UpdatePreferences(prefs store.Preferences) (store.Preferences, error) {
	if prefs.Language == "" {
		prefs.Language = s.opts.DefaultLanguage
	}
	if prefs.Ambience == "" {
		prefs.Ambience = "silence"
	}
	if err := s.gateway.SavePreferences(prefs); err != nil {
		return store.Preferences{}, err
	}
	return prefs, nil
}

// resolveLanguage picks the turn language: the explicit request wins, then
// the stored preference, then the configured default.
func (s *Service) resolveLanguage(requested string) string {
	if requested != "" {
		return requested
	}
	if prefs, found, err := s.gateway.LoadPreferences(); err == nil && found && prefs.Language != "" {
		return prefs.Language
	}
	return s.opts.DefaultLanguage
}

func (s *Service) surfaceClosed() bool {
	select {
	case <-s.closing:
		return true
	default:
		return false
	}
}

func (s *Service) freshSessionLocked(language string) *chat.Session {
	now := s.now().UTC()
	session := &chat.Session{
		ID:             uuid.NewString(),
		Mood:           chat.MoodStable,
		CreatedAt:      now,
		LastActivityAt: now,
	}
	session.Messages = append(session.Messages, chat.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Sender:    chat.SenderAssistant,
		Text:      fallback.Greeting(language),
		Language:  language,
		Timestamp: now,
	})
	return session
}

// loadFreshSnapshot fails closed: stale, malformed, or unreadable snapshots
// all yield (zero, false) and are dropped from the store.
func (s *Service) loadFreshSnapshot() (chat.Snapshot, bool) {
	snap, found, err := s.gateway.LoadSnapshot()
	if err != nil {
		log.Printf("[assistant] snapshot read failed, starting fresh: %v", err)
		return chat.Snapshot{}, false
	}
	if !found {
		return chat.Snapshot{}, false
	}

	valid := snap.SessionID != "" && snap.Mood.Valid() && !snap.SavedAt.IsZero()
	if !valid || s.now().UTC().Sub(snap.SavedAt) >= s.opts.SnapshotMaxAge {
		if err := s.gateway.DropSnapshot(); err != nil {
			log.Printf("[assistant] failed to drop stale snapshot: %v", err)
		}
		return chat.Snapshot{}, false
	}
	return snap, true
}

func (s *Service) persistLocked() error {
	messages := s.current.Messages
	if len(messages) > s.opts.SnapshotKeep {
		messages = messages[len(messages)-s.opts.SnapshotKeep:]
	}
	snap := chat.Snapshot{
		SessionID: s.current.ID,
		Messages:  append([]chat.Message(nil), messages...),
		Mood:      s.current.Mood,
		SavedAt:   s.now().UTC(),
	}
	if err := s.gateway.SaveSnapshot(snap); err != nil {
		log.Printf("[assistant] snapshot write failed: %v", err)
		return err
	}
	return nil
}

func (s *Service) snapshotLocked() chat.Session {
	copied := *s.current
	copied.Messages = append([]chat.Message(nil), s.current.Messages...)
	return copied
}
