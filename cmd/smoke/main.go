// Command smoke runs the operational smoke tests against a deployed gateway:
// the same /health and /api/chat checks the runbook performs with curl.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		slog.Error("Usage: smoke <server-url>")
		os.Exit(1)
	}

	serverURL := strings.TrimRight(os.Args[1], "/")
	client := &http.Client{Timeout: 60 * time.Second}

	// Health check
	resp, err := client.Get(serverURL + "/health")
	if err != nil {
		slog.Error("Health check failed", "error", err)
		os.Exit(1)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Health check failed", "status", resp.StatusCode, "body", string(body))
		os.Exit(1)
	}
	slog.Info("Health check passed", "body", strings.TrimSpace(string(body)))

	// Chat round trip with a sample payload
	payload := map[string]string{
		"session_id": fmt.Sprintf("smoke-%d", time.Now().Unix()),
		"query":      "Hello, are you there?",
		"email":      "ops@example.com",
	}
	jsonData, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal chat payload", "error", err)
		os.Exit(1)
	}

	req, err := http.NewRequest("POST", serverURL+"/api/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		slog.Error("Failed to create chat request", "error", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err = client.Do(req)
	if err != nil {
		slog.Error("Chat request failed", "error", err)
		os.Exit(1)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Error("Chat request failed", "status", resp.StatusCode, "body", string(body))
		os.Exit(1)
	}
	slog.Info("Chat round trip passed", "body", strings.TrimSpace(string(body)))

	slog.Info("Smoke tests complete!")
}
