package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions and transcripts in process memory. It is the
// default store; state does not survive a restart of the service.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	messages map[string][]Message
	now      func() time.Time
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		messages: make(map[string][]Message),
		now:      time.Now,
	}
}

// Create registers a new session with a generated ID
func (s *MemoryStore) Create(ctx context.Context) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	sess := &Session{
		ID:         uuid.New().String(),
		CreatedAt:  now,
		LastSeenAt: now,
	}
	s.sessions[sess.ID] = sess

	copied := *sess
	return &copied, nil
}

// Get returns session metadata or ErrNotFound
func (s *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}

	copied := *sess
	return &copied, nil
}

// Messages returns up to limit most recent messages in chronological order
func (s *MemoryStore) Messages(ctx context.Context, id string, limit int) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.sessions[id]; !ok {
		return nil, ErrNotFound
	}

	msgs := s.messages[id]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}

	out := make([]Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

// Append records a message, creating the session on first use. Chat requests
// may carry session IDs that were never created through POST /api/sessions.
func (s *MemoryStore) Append(ctx context.Context, sessionID, role, content string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &Session{ID: sessionID, CreatedAt: now}
		s.sessions[sessionID] = sess
	}
	sess.LastSeenAt = now
	sess.MessageCount++

	s.messages[sessionID] = append(s.messages[sessionID], Message{
		Role:      role,
		Content:   content,
		CreatedAt: now,
	})
	return nil
}

// Ping always succeeds; the store has no external dependency
func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close() {}
