package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"agribuddy/internal/model"
)

// ErrConversationNotFound is returned when a conversation id has no row
var ErrConversationNotFound = errors.New("conversation not found")

// ConversationRepo persists conversations and their messages. All writes
// of one exchange happen inside a single transaction: either the full
// user+model pair (and the conversation row, when new) becomes visible,
// or nothing does.
type ConversationRepo struct {
	db *sql.DB
}

// NewConversationRepo creates the repository
func NewConversationRepo(db *sql.DB) *ConversationRepo {
	return &ConversationRepo{db: db}
}

// CreateWithExchange inserts a conversation together with its first
// user/model message pair in one transaction.
func (r *ConversationRepo) CreateWithExchange(ctx context.Context, conv *model.Conversation, userContent, modelContent string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	conv.CreatedAt = now
	conv.UpdatedAt = now

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO conversations (id, user_id, title, created_at, updated_at)
         VALUES ($1, $2, $3, $4, $5)`,
		conv.ID, conv.UserID, conv.Title, now, now,
	); err != nil {
		return fmt.Errorf("insert conversation: %w", err)
	}

	if err := insertExchange(ctx, tx, conv.ID, userContent, modelContent); err != nil {
		return err
	}

	return tx.Commit()
}

// AppendExchange adds a user/model message pair to an existing
// conversation and bumps updated_at, in one transaction. The conversation
// row is locked first, so concurrent continuations of the same
// conversation commit one at a time.
func (r *ConversationRepo) AppendExchange(ctx context.Context, conversationID, userContent, modelContent string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var locked string
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM conversations WHERE id = $1 FOR UPDATE`, conversationID,
	).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrConversationNotFound
	}
	if err != nil {
		return fmt.Errorf("lock conversation: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET updated_at = $2 WHERE id = $1`,
		conversationID, time.Now(),
	); err != nil {
		return fmt.Errorf("touch conversation: %w", err)
	}

	if err := insertExchange(ctx, tx, conversationID, userContent, modelContent); err != nil {
		return err
	}

	return tx.Commit()
}

// insertExchange writes the user message, then the model message. Ordering
// within the pair is guaranteed by created_at with the serial id as a
// tiebreaker.
func insertExchange(ctx context.Context, tx *sql.Tx, conversationID, userContent, modelContent string) error {
	const q = `INSERT INTO messages (conversation_id, role, content, created_at) VALUES ($1, $2, $3, $4)`

	if _, err := tx.ExecContext(ctx, q, conversationID, model.RoleUser, userContent, time.Now()); err != nil {
		return fmt.Errorf("insert user message: %w", err)
	}
	if _, err := tx.ExecContext(ctx, q, conversationID, model.RoleModel, modelContent, time.Now()); err != nil {
		return fmt.Errorf("insert model message: %w", err)
	}
	return nil
}

// History loads all messages of a conversation in ascending creation
// order. An unknown or empty conversation yields an empty slice.
func (r *ConversationRepo) History(ctx context.Context, conversationID string) ([]model.Message, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, role, content, created_at FROM messages
         WHERE conversation_id = $1
         ORDER BY created_at ASC, id ASC`, conversationID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	messages := []model.Message{}
	for rows.Next() {
		m := model.Message{ConversationID: conversationID}
		if err := rows.Scan(&m.ID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// FindByID loads one conversation row
func (r *ConversationRepo) FindByID(ctx context.Context, id string) (*model.Conversation, error) {
	var conv model.Conversation
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations WHERE id = $1`, id,
	).Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConversationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query conversation: %w", err)
	}
	return &conv, nil
}

// ListByUserID returns a user's conversations, most recently updated first
func (r *ConversationRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]*model.Conversation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, title, created_at, updated_at FROM conversations
         WHERE user_id = $1
         ORDER BY updated_at DESC
         LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query conversations: %w", err)
	}
	defer rows.Close()

	convs := []*model.Conversation{}
	for rows.Next() {
		var conv model.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserID, &conv.Title, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		convs = append(convs, &conv)
	}
	return convs, rows.Err()
}

// Delete removes a conversation; its messages cascade with it
func (r *ConversationRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM conversations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrConversationNotFound
	}
	return nil
}
