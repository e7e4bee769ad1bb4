// Package session stores chat session metadata and transcripts.
package session

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a session ID is unknown to the store.
var ErrNotFound = errors.New("session not found")

// Roles recorded in a transcript.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Session holds metadata about a chat session
type Session struct {
	ID           string    `json:"session_id"`
	CreatedAt    time.Time `json:"created_at"`
	LastSeenAt   time.Time `json:"last_seen_at"`
	MessageCount int       `json:"message_count"`
}

// Message is a single entry in a session transcript
type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
