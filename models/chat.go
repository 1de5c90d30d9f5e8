// File: models/chat.go
package models

import "time"

// Chat message senders.
const (
	ChatSenderUser = "user"
	ChatSenderBot  = "bot"
)

// ChatMessage is a single entry in a conversation log.
type ChatMessage struct {
	Sender string    `json:"sender"`
	Text   string    `json:"text"`
	SentAt time.Time `json:"sentAt"`
}

// Conversation is an in-memory chat transcript for one widget session.
// Never persisted; a restart starts every conversation over.
type Conversation struct {
	SessionID string        `json:"sessionId"`
	Messages  []ChatMessage `json:"messages"`
	Typing    bool          `json:"typing"`
}
