package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/rdmehta/chat-gateway/internal/llm"
	"github.com/rdmehta/chat-gateway/internal/session"
	"github.com/rdmehta/chat-gateway/internal/types"
)

//go:generate mockgen -source=handlers.go -destination=mock_handlers.go -package=http

// LLMProvider defines the interface for generating chat replies
type LLMProvider interface {
	GenerateReply(ctx context.Context, sessionID, email, query string) (string, error)
}

// SessionStore defines the interface for session persistence
type SessionStore interface {
	Create(ctx context.Context) (*session.Session, error)
	Get(ctx context.Context, id string) (*session.Session, error)
	Messages(ctx context.Context, id string, limit int) ([]session.Message, error)
	Append(ctx context.Context, sessionID, role, content string) error
	Ping(ctx context.Context) error
}

// RateLimiter defines the interface for per-client request limiting
type RateLimiter interface {
	Allow(key string) bool
	RetryAfter() int
}

// transcriptLimit caps the messages returned by GET /api/sessions/{id}
const transcriptLimit = 50

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type ChatReq struct {
	SessionID string `json:"session_id"`
	Query     string `json:"query"`
	Email     string `json:"email"`
}

// SessionResp is the GET /api/sessions/{id} response
type SessionResp struct {
	SessionID    string            `json:"session_id"`
	CreatedAt    time.Time         `json:"created_at"`
	LastSeenAt   time.Time         `json:"last_seen_at"`
	MessageCount int               `json:"message_count"`
	Messages     []session.Message `json:"messages"`
}

// CreateSessionResp is the POST /api/sessions response
type CreateSessionResp struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

type Handler struct {
	llmProvider LLMProvider
	store       SessionStore
	limiter     RateLimiter
}

// NewHandlers initializes handlers with dependencies
func NewHandlers(llmProvider LLMProvider, store SessionStore, limiter RateLimiter) *Handler {
	return &Handler{
		llmProvider: llmProvider,
		store:       store,
		limiter:     limiter,
	}
}

// HealthHandler answers the load balancer liveness probe
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, types.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler reports whether the session store dependency is reachable
func (h *Handler) ReadyHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, types.HealthResponse{
			Status: "not_ready",
			Error:  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, types.HealthResponse{Status: "ready"})
}

// ChatHandler validates a chat request, rate-limits the client, forwards the
// query to the LLM provider and records the exchange.
func (h *Handler) ChatHandler(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	var req ChatReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "Invalid JSON payload", nil)
		return
	}

	if req.SessionID == "" {
		errorResponse(w, http.StatusBadRequest, "session_id is required", nil)
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		errorResponse(w, http.StatusBadRequest, "query is required and must be a non-empty string", nil)
		return
	}

	if req.Email == "" {
		errorResponse(w, http.StatusBadRequest, "email is required", nil)
		return
	}

	if !validateEmail(req.Email) {
		errorResponse(w, http.StatusBadRequest, "Invalid email format", nil)
		return
	}

	if !h.limiter.Allow(clientKey(r, req.SessionID)) {
		writeJSON(w, http.StatusTooManyRequests, types.ErrorResponse{
			Error:      "Rate limit exceeded. Please try again later.",
			RetryAfter: h.limiter.RetryAfter(),
		})
		return
	}

	ctx := r.Context()

	reply, err := h.llmProvider.GenerateReply(ctx, req.SessionID, req.Email, query)
	if err != nil {
		slog.Error("Error generating reply", "error", err, "session_id", req.SessionID)

		var upstreamErr *llm.UpstreamError
		switch {
		case errors.Is(err, llm.ErrTimeout):
			errorResponse(w, http.StatusGatewayTimeout, "LLM API request timed out", nil)
		case errors.Is(err, llm.ErrUnreachable):
			errorResponse(w, http.StatusServiceUnavailable, "Failed to connect to LLM API", nil)
		case errors.As(err, &upstreamErr):
			errorResponse(w, http.StatusBadGateway, "LLM API error", errors.New(upstreamErr.Body))
		default:
			errorResponse(w, http.StatusInternalServerError, "Error calling LLM API", err)
		}
		return
	}

	h.recordExchange(ctx, req.SessionID, query, reply)

	writeJSON(w, http.StatusOK, types.ChatResponse{
		SessionID: req.SessionID,
		Response:  reply,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateSessionHandler creates a session with a server-generated ID
func (h *Handler) CreateSessionHandler(w http.ResponseWriter, r *http.Request) {
	sess, err := h.store.Create(r.Context())
	if err != nil {
		slog.Error("Error creating session", "error", err)
		errorResponse(w, http.StatusInternalServerError, "Failed to create session", err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateSessionResp{
		SessionID: sess.ID,
		CreatedAt: sess.CreatedAt,
	})
}

// GetSessionHandler returns session metadata and the recent transcript
func (h *Handler) GetSessionHandler(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	ctx := r.Context()

	sess, err := h.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		errorResponse(w, http.StatusNotFound, "Session not found", nil)
		return
	}
	if err != nil {
		slog.Error("Error loading session", "error", err, "session_id", sessionID)
		errorResponse(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}

	msgs, err := h.store.Messages(ctx, sessionID, transcriptLimit)
	if err != nil {
		slog.Error("Error loading transcript", "error", err, "session_id", sessionID)
		errorResponse(w, http.StatusInternalServerError, "Failed to load session", err)
		return
	}
	if msgs == nil {
		msgs = []session.Message{}
	}

	writeJSON(w, http.StatusOK, SessionResp{
		SessionID:    sess.ID,
		CreatedAt:    sess.CreatedAt,
		LastSeenAt:   sess.LastSeenAt,
		MessageCount: sess.MessageCount,
		Messages:     msgs,
	})
}

// recordExchange stores both sides of the exchange. Persistence is best
// effort: a store failure must not fail a chat the LLM already answered.
func (h *Handler) recordExchange(ctx context.Context, sessionID, query, reply string) {
	if err := h.store.Append(ctx, sessionID, session.RoleUser, query); err != nil {
		slog.Error("Error recording user message", "error", err, "session_id", sessionID)
	}
	if err := h.store.Append(ctx, sessionID, session.RoleAssistant, reply); err != nil {
		slog.Error("Error recording assistant message", "error", err, "session_id", sessionID)
	}
}

// clientKey identifies a client for rate limiting as clientIP:sessionID.
// The RealIP middleware already rewrote RemoteAddr from X-Forwarded-For.
func clientKey(r *http.Request, sessionID string) string {
	host := r.RemoteAddr
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	return host + ":" + sessionID
}

func validateEmail(email string) bool {
	return emailRegex.MatchString(email)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err, "status", status)
	}
}

func errorResponse(w http.ResponseWriter, status int, message string, err error) {
	resp := types.ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
