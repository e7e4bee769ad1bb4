package session

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaSQL is embedded so the service can self-bootstrap its database schema.
//
//go:embed schema.sql
var schemaSQL string

// PostgresStore is the durable session store, selected when DATABASE_URL is set.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a connection pool and fails fast if the database
// is unreachable.
func NewPostgresStore(dbURL string) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// EnsureSchema applies schema.sql. Safe to run multiple times.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := p.pool.Exec(ctx, schemaSQL)
	return err
}

// Create registers a new session with a generated ID
func (p *PostgresStore) Create(ctx context.Context) (*Session, error) {
	sess := &Session{ID: uuid.New().String()}

	err := p.pool.QueryRow(ctx, `
		INSERT INTO sessions (id)
		VALUES ($1)
		RETURNING created_at, last_seen_at
	`, sess.ID).Scan(&sess.CreatedAt, &sess.LastSeenAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return sess, nil
}

// Get returns session metadata or ErrNotFound
func (p *PostgresStore) Get(ctx context.Context, id string) (*Session, error) {
	sess := &Session{}

	err := p.pool.QueryRow(ctx, `
		SELECT s.id, s.created_at, s.last_seen_at, COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON m.session_id = s.id
		WHERE s.id = $1
		GROUP BY s.id, s.created_at, s.last_seen_at
	`, id).Scan(&sess.ID, &sess.CreatedAt, &sess.LastSeenAt, &sess.MessageCount)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	return sess, nil
}

// Messages returns up to limit most recent messages in chronological order
func (p *PostgresStore) Messages(ctx context.Context, id string, limit int) ([]Message, error) {
	rows, err := p.pool.Query(ctx, `
		SELECT role, content, created_at
		FROM messages
		WHERE session_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, id, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	var msgs []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}

	// Rows come back newest first; present them chronologically.
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	return msgs, nil
}

// Append records a message, creating the session row on first use
func (p *PostgresStore) Append(ctx context.Context, sessionID, role, content string) error {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO sessions (id)
		VALUES ($1)
		ON CONFLICT (id) DO UPDATE SET last_seen_at = now()
	`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (session_id, role, content)
		VALUES ($1, $2, $3)
	`, sessionID, role, content)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	return tx.Commit(ctx)
}

// Ping is used by the readiness endpoint to validate database connectivity
func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

// Close shuts down the connection pool
func (p *PostgresStore) Close() {
	p.pool.Close()
}
