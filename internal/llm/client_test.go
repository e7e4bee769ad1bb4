package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_GenerateReply(t *testing.T) {
	var gotPath string
	var gotBody chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"response": "hello from the model"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	reply, err := c.GenerateReply(context.Background(), "sess-1", "user@example.com", "ping")
	require.NoError(t, err)
	assert.Equal(t, "hello from the model", reply)

	assert.Equal(t, "/chat", gotPath)
	assert.Equal(t, chatRequest{SessionID: "sess-1", Query: "ping", Email: "user@example.com"}, gotBody)
}

func TestClient_GenerateReply_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)

	_, err := c.GenerateReply(context.Background(), "sess-1", "user@example.com", "ping")
	require.Error(t, err)

	var upstreamErr *UpstreamError
	require.ErrorAs(t, err, &upstreamErr)
	assert.Equal(t, http.StatusInternalServerError, upstreamErr.StatusCode)
	assert.Equal(t, "model crashed", upstreamErr.Body)
}

func TestClient_GenerateReply_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 50*time.Millisecond)

	_, err := c.GenerateReply(context.Background(), "sess-1", "user@example.com", "ping")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestClient_GenerateReply_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listens on the address anymore

	c := NewClient(srv.URL, time.Second)

	_, err := c.GenerateReply(context.Background(), "sess-1", "user@example.com", "ping")
	assert.ErrorIs(t, err, ErrUnreachable)
}

func TestClient_GenerateReply_MalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)

	_, err := c.GenerateReply(context.Background(), "sess-1", "user@example.com", "ping")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

func TestClient_TrailingSlashInBaseURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)

	reply, err := c.GenerateReply(context.Background(), "sess-1", "user@example.com", "ping")
	require.NoError(t, err)
	assert.Equal(t, "ok", reply)
}
