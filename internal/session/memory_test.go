package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, 0, got.MessageCount)
}

func TestMemoryStore_GetUnknown(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_AppendCreatesSession(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	// Chat requests may carry session IDs never registered via Create.
	require.NoError(t, s.Append(ctx, "client-chosen-id", RoleUser, "hello"))
	require.NoError(t, s.Append(ctx, "client-chosen-id", RoleAssistant, "hi"))

	got, err := s.Get(ctx, "client-chosen-id")
	require.NoError(t, err)
	assert.Equal(t, 2, got.MessageCount)

	msgs, err := s.Messages(ctx, "client-chosen-id", 10)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, RoleUser, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, RoleAssistant, msgs[1].Role)
}

func TestMemoryStore_MessagesLimit(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, "sess", RoleUser, fmt.Sprintf("msg-%d", i)))
	}

	msgs, err := s.Messages(ctx, "sess", 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	// The most recent messages, oldest first.
	assert.Equal(t, "msg-3", msgs[0].Content)
	assert.Equal(t, "msg-4", msgs[1].Content)
}

func TestMemoryStore_AppendBumpsLastSeen(t *testing.T) {
	ctx := context.Background()

	current := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewMemoryStore()
	s.now = func() time.Time { return current }

	created, err := s.Create(ctx)
	require.NoError(t, err)

	current = current.Add(time.Minute)
	require.NoError(t, s.Append(ctx, created.ID, RoleUser, "hello"))

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.CreatedAt, got.CreatedAt)
	assert.True(t, got.LastSeenAt.After(got.CreatedAt))
}

func TestMemoryStore_MessagesUnknownSession(t *testing.T) {
	s := NewMemoryStore()

	_, err := s.Messages(context.Background(), "missing", 10)
	assert.ErrorIs(t, err, ErrNotFound)
}
