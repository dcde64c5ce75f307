package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/umccanna/regulation-summarization/internal/models"
)

func (c *DatabaseClient) CreateConversation(ctx context.Context, userID, name, regulationKey string) (*models.Conversation, error) {
	conv := &models.Conversation{
		ID:            uuid.NewString(),
		UserID:        userID,
		RegulationKey: regulationKey,
		Name:          name,
	}
	const q = `
		INSERT INTO conversations (id, user_id, regulation_key, name, sequence_count, created)
		VALUES ($1, $2, $3, $4, 0, now())
		RETURNING created
	`
	err := c.db.QueryRowContext(ctx, q, conv.ID, conv.UserID, conv.RegulationKey, conv.Name).
		Scan(&conv.Created)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	return conv, nil
}

// GetConversation loads a conversation with its full log in sequence order.
// Returns nil when no conversation matches the user and id.
func (c *DatabaseClient) GetConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	const q = `
		SELECT id, user_id, regulation_key, name, sequence_count, created, updated
		FROM conversations
		WHERE user_id = $1 AND id = $2
	`
	var conv models.Conversation
	err := c.db.QueryRowContext(ctx, q, userID, conversationID).Scan(
		&conv.ID, &conv.UserID, &conv.RegulationKey, &conv.Name,
		&conv.SequenceCount, &conv.Created, &conv.Updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	const logQ = `
		SELECT id, conversation_id, user_id, prompt_raw, prompt_improved,
		       context_raw, context_summarized, fact_sheet, directions,
		       response, sequence, created
		FROM conversation_logs
		WHERE conversation_id = $1
		ORDER BY sequence ASC
	`
	rows, err := c.db.QueryContext(ctx, logQ, conv.ID)
	if err != nil {
		return nil, fmt.Errorf("get conversation log: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var e models.ConversationLogEntry
		if err := rows.Scan(
			&e.ID, &e.ConversationID, &e.UserID, &e.PromptRaw, &e.PromptImproved,
			&e.ContextRaw, &e.ContextSummarized, &e.FactSheet, &e.Directions,
			&e.Response, &e.Sequence, &e.Created); err != nil {
			return nil, fmt.Errorf("scan conversation log: %w", err)
		}
		conv.Log = append(conv.Log, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &conv, nil
}

// ListConversations returns the user's most recent conversations without their
// logs, newest activity first.
func (c *DatabaseClient) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	const q = `
		SELECT id, user_id, regulation_key, name, sequence_count, created, updated
		FROM conversations
		WHERE user_id = $1
		ORDER BY COALESCE(updated, created) DESC
		LIMIT 20
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list conversations: %w", err)
	}
	defer rows.Close()

	var out []models.Conversation
	for rows.Next() {
		var conv models.Conversation
		if err := rows.Scan(
			&conv.ID, &conv.UserID, &conv.RegulationKey, &conv.Name,
			&conv.SequenceCount, &conv.Created, &conv.Updated); err != nil {
			return nil, fmt.Errorf("scan conversation: %w", err)
		}
		out = append(out, conv)
	}
	return out, rows.Err()
}

// AppendConversationLog bumps the parent's sequence counter and inserts the
// log row in one transaction, so two concurrent appends can never claim the
// same sequence number.
func (c *DatabaseClient) AppendConversationLog(ctx context.Context, entry *models.ConversationLogEntry) error {
	if entry == nil {
		return errors.New("nil log entry")
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin append log: %w", err)
	}
	defer tx.Rollback()

	const bumpQ = `
		UPDATE conversations
		SET sequence_count = sequence_count + 1, updated = now()
		WHERE id = $1 AND user_id = $2
		RETURNING sequence_count
	`
	var sequence int
	err = tx.QueryRowContext(ctx, bumpQ, entry.ConversationID, entry.UserID).Scan(&sequence)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("conversation %s not found for user", entry.ConversationID)
	}
	if err != nil {
		return fmt.Errorf("bump sequence: %w", err)
	}

	entry.Sequence = sequence
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}

	const insertQ = `
		INSERT INTO conversation_logs
			(id, conversation_id, user_id, prompt_raw, prompt_improved,
			 context_raw, context_summarized, fact_sheet, directions,
			 response, sequence, created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		RETURNING created
	`
	err = tx.QueryRowContext(ctx, insertQ,
		entry.ID, entry.ConversationID, entry.UserID, entry.PromptRaw, entry.PromptImproved,
		entry.ContextRaw, entry.ContextSummarized, entry.FactSheet, entry.Directions,
		entry.Response, entry.Sequence).Scan(&entry.Created)
	if err != nil {
		return fmt.Errorf("insert log: %w", err)
	}

	return tx.Commit()
}

// MigrateConversations reassigns all of one user's conversations and log rows
// to another user id. Used when an anonymous session signs in.
func (c *DatabaseClient) MigrateConversations(ctx context.Context, oldUserID, newUserID string) error {
	if oldUserID == "" || newUserID == "" {
		return errors.New("both user ids are required")
	}
	if oldUserID == newUserID {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migrate: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`UPDATE conversations SET user_id = $2 WHERE user_id = $1`,
		oldUserID, newUserID); err != nil {
		return fmt.Errorf("migrate conversations: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE conversation_logs SET user_id = $2 WHERE user_id = $1`,
		oldUserID, newUserID); err != nil {
		return fmt.Errorf("migrate conversation logs: %w", err)
	}

	return tx.Commit()
}
