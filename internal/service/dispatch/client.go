// Package dispatch routes classified user messages to the remote crisis
// service and degrades to the local fallback table when it cannot.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/boweryconnect/companion/internal/model/chat"
	"github.com/boweryconnect/companion/internal/model/crisis"
	"github.com/boweryconnect/companion/internal/store"
)

// ErrUnreachable covers every remote failure mode: transport errors,
// timeouts, non-2xx statuses, and malformed bodies. Callers treat them all
// identically, so the engine never needs to tell them apart.
var ErrUnreachable = errors.New("crisis service unreachable")

// Client talks to the remote crisis service.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client for the service at baseURL with a bounded
// per-request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
	}
}

// historyItem is the wire form of a context message.
type historyItem struct {
	Text      string    `json:"text"`
	IsBot     bool      `json:"isBot"`
	Timestamp time.Time `json:"timestamp"`
}

type chatRequest struct {
	Message             string        `json:"message"`
	ConversationHistory []historyItem `json:"conversationHistory"`
	Language            string        `json:"language,omitempty"`
	Emotion             string        `json:"emotion,omitempty"`
	SessionID           string        `json:"sessionId"`
	Mood                chat.Mood     `json:"mood"`
}

// SendMessage posts one classified message with bounded context to
// POST /crisis-chat. Every failure is wrapped in ErrUnreachable.
func (c *Client) SendMessage(ctx context.Context, message chat.Message, history []chat.Message, mood chat.Mood) (crisis.Response, error) {
	payload := chatRequest{
		Message:   message.Text,
		Language:  message.Language,
		Emotion:   message.Emotion,
		SessionID: message.SessionID,
		Mood:      mood,
	}
	payload.ConversationHistory = make([]historyItem, 0, len(history))
	for _, m := range history {
		payload.ConversationHistory = append(payload.ConversationHistory, historyItem{
			Text:      m.Text,
			IsBot:     m.Sender == chat.SenderAssistant,
			Timestamp: m.Timestamp,
		})
	}

	var response crisis.Response
	if err := c.post(ctx, "/crisis-chat", payload, &response); err != nil {
		return crisis.Response{}, err
	}

	// A 200 with an empty message or an undefined urgency is as useless as
	// a timeout; treat it the same way.
	if response.Message == "" || !response.Urgency.Known() {
		return crisis.Response{}, fmt.Errorf("%w: malformed response body", ErrUnreachable)
	}
	return response, nil
}

type syncRequest struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	EnqueuedAt time.Time       `json:"enqueuedAt"`
}

// SyncAction delivers one queued action to POST /sync.
func (c *Client) SyncAction(ctx context.Context, action store.PendingAction) error {
	payload := syncRequest{
		ID:         action.ID,
		Kind:       action.Kind,
		Payload:    action.Payload,
		EnqueuedAt: action.EnqueuedAt,
	}
	return c.post(ctx, "/sync", payload, nil)
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: status %d", ErrUnreachable, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	return nil
}
