package session

import "time"

// Message roles. Error messages are surfaced in-band as chat bubbles,
// never thrown to a global handler.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleError     = "error"
)

// Message represents a single chat message.
// Immutable once appended; ordering is insertion order.
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary is one entry in the session catalogue.
type Summary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultTitle is used for sessions the backend has not titled yet.
const DefaultTitle = "New Conversation"
