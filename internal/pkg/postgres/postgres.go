package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver

	"agribuddy/internal/config"
)

// Client wraps the shared connection pool
type Client struct {
	db *sql.DB
}

// New opens the connection pool and verifies it
func New(cfg *config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return &Client{db: db}, nil
}

// DB returns the underlying pool
func (c *Client) DB() *sql.DB {
	return c.db
}

// Close closes the pool
func (c *Client) Close() error {
	return c.db.Close()
}

// Migrate creates the schema if it does not exist yet.
// Messages are owned by their conversation and are removed with it.
func Migrate(ctx context.Context, db *sql.DB) error {
	const schema = `
        CREATE TABLE IF NOT EXISTS conversations (
            id TEXT PRIMARY KEY,
            user_id TEXT NOT NULL,
            title TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS messages (
            id BIGSERIAL PRIMARY KEY,
            conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
            role TEXT NOT NULL,
            content TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );
        CREATE INDEX IF NOT EXISTS idx_messages_conversation_created
            ON messages (conversation_id, created_at);
        CREATE INDEX IF NOT EXISTS idx_conversations_user_updated
            ON conversations (user_id, updated_at DESC);
        CREATE TABLE IF NOT EXISTS knowledge_entries (
            id BIGSERIAL PRIMARY KEY,
            question TEXT NOT NULL,
            answer TEXT NOT NULL,
            keywords TEXT NOT NULL DEFAULT ''
        );
        CREATE TABLE IF NOT EXISTS daily_summaries (
            summary_date DATE PRIMARY KEY,
            avg_temperature NUMERIC NOT NULL,
            avg_humidity NUMERIC NOT NULL,
            avg_ph NUMERIC NOT NULL,
            avg_light_intensity INTEGER NOT NULL,
            plant_status TEXT NOT NULL,
            diagnosis TEXT NOT NULL,
            recommendation TEXT NOT NULL,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        );`

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}

	return tx.Commit()
}
