package types

// ChatResponse is returned by POST /api/chat on success
type ChatResponse struct {
	SessionID string `json:"session_id"`
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
}

// HealthResponse is returned by GET /health and GET /ready
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp,omitempty"`
	Error     string `json:"error,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}
