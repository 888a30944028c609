package store

import "time"

type User struct {
	ID             int64     `json:"id"`
	ExternalUserID string    `json:"external_user_id"`
	PasswordHash   string    `json:"-"` // Do not expose this in JSON responses
	CreatedAt      time.Time `json:"created_at"`
}

type ChatSession struct {
	ID        string    `json:"id"` // UUID
	UserID    int64     `json:"-"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is one exchange: the user's text and the assistant's reply,
// written together once the completion call has returned.
type Message struct {
	ID            string    `json:"id"` // UUID
	SessionID     string    `json:"session_id"`
	UserText      string    `json:"message"`
	AssistantText string    `json:"response"`
	CreatedAt     time.Time `json:"created_at"`
}
