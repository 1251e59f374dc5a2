package chat

import "time"

// Sender identifies who produced a message.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Message is one turn of a conversation. Immutable once appended; ordering
// is insertion order.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	Emotion   string    `json:"emotion,omitempty"`
	Language  string    `json:"language,omitempty"`
	IsVoice   bool      `json:"isVoice,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
