package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rdmehta/chat-gateway/internal/config"
	"github.com/rdmehta/chat-gateway/internal/llm"
	"github.com/rdmehta/chat-gateway/internal/ratelimit"
	"github.com/rdmehta/chat-gateway/internal/session"

	httphandler "github.com/rdmehta/chat-gateway/internal/http"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize LLM provider
	var llmProvider httphandler.LLMProvider
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		llmProvider = llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModel)
		slog.Info("Initialized OpenAI provider", "model", cfg.OpenAIModel)
	default:
		llmProvider = llm.NewClient(cfg.LLMAPIURL, cfg.LLMTimeout)
		slog.Info("Initialized upstream LLM provider", "url", cfg.LLMAPIURL, "timeout", cfg.LLMTimeout)
	}

	// Initialize session store
	var store interface {
		httphandler.SessionStore
		Close()
	}
	if cfg.DatabaseURL != "" {
		pgStore, err := session.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("Failed to connect to session database", "error", err)
			os.Exit(1)
		}
		if err := pgStore.EnsureSchema(context.Background()); err != nil {
			slog.Error("Failed to apply session schema", "error", err)
			os.Exit(1)
		}
		store = pgStore
		slog.Info("Initialized Postgres session store")
	} else {
		store = session.NewMemoryStore()
		slog.Info("Initialized in-memory session store")
	}
	defer store.Close()

	// Initialize rate limiter with background cleanup
	limiter := ratelimit.NewLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow)
	cleanupCtx, stopCleanup := context.WithCancel(context.Background())
	defer stopCleanup()
	go limiter.Run(cleanupCtx, ratelimit.CleanupInterval)
	slog.Info("Initialized rate limiter", "requests", cfg.RateLimitRequests, "window", cfg.RateLimitWindow)

	// Initialize HTTP handlers
	handler := httphandler.NewHandlers(llmProvider, store, limiter)

	// Create router
	r := httphandler.NewRouter(handler, cfg.CORSAllowedOrigins)

	// Create HTTP server
	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server running", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server exited")
}
