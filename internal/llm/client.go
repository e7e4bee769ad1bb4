// Package llm provides chat reply providers: the self-hosted upstream LLM
// server and the OpenAI API.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// Sentinel errors let the HTTP layer map transport failures to precise statuses.
var (
	// ErrTimeout indicates the upstream did not answer within the deadline.
	ErrTimeout = errors.New("llm request timed out")
	// ErrUnreachable indicates the upstream could not be connected to.
	ErrUnreachable = errors.New("llm server unreachable")
)

// UpstreamError is returned when the upstream answered with a non-200 status.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm server returned status %d", e.StatusCode)
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Email     string `json:"email"`
}

type chatReply struct {
	Response string `json:"response"`
}

// Client forwards chat requests to the self-hosted LLM server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an upstream client with the given base URL and timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// GenerateReply posts the chat to {baseURL}/chat and returns the reply text
func (c *Client) GenerateReply(ctx context.Context, sessionID, email, query string) (string, error) {
	body, err := json.Marshal(chatRequest{
		SessionID: sessionID,
		Query:     query,
		Email:     email,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", classifyTransportError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		return "", &UpstreamError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}

	var reply chatReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return "", fmt.Errorf("failed to decode llm response: %w", err)
	}

	return reply.Response, nil
}

func classifyTransportError(err error) error {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}
	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}
