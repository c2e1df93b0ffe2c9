package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AppendChatMessage adds one turn to a conversation
func (db *DB) AppendChatMessage(ctx context.Context, conversationID, userID uuid.UUID, role, content, productName string) (*ChatMessage, error) {
	m := ChatMessage{
		ConversationID: conversationID,
		UserID:         userID,
		Role:           role,
		Content:        content,
		ProductName:    productName,
	}
	err := db.pool.QueryRow(ctx,
		`INSERT INTO chat_messages (conversation_id, user_id, role, content, product_name)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at`,
		conversationID, userID, role, content, productName,
	).Scan(&m.ID, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to append chat message: %w", err)
	}
	return &m, nil
}

// ListChatMessages returns a conversation in chronological order
func (db *DB) ListChatMessages(ctx context.Context, conversationID, userID uuid.UUID) ([]ChatMessage, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, conversation_id, user_id, role, content, product_name, created_at
		 FROM chat_messages WHERE conversation_id = $1 AND user_id = $2
		 ORDER BY created_at ASC, id ASC`,
		conversationID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer rows.Close()

	messages := []ChatMessage{}
	for rows.Next() {
		var m ChatMessage
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.UserID, &m.Role, &m.Content, &m.ProductName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListConversations summarizes userID's conversations, most recent first
func (db *DB) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT conversation_id,
		        MAX(product_name),
		        (ARRAY_AGG(content ORDER BY created_at ASC))[1],
		        COUNT(*),
		        MAX(created_at)
		 FROM chat_messages WHERE user_id = $1
		 GROUP BY conversation_id
		 ORDER BY MAX(created_at) DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	summaries := []ConversationSummary{}
	for rows.Next() {
		var s ConversationSummary
		if err := rows.Scan(&s.ConversationID, &s.ProductName, &s.FirstMessage, &s.MessageCount, &s.LastMessageAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteConversation removes every message of a conversation owned by userID
func (db *DB) DeleteConversation(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	result, err := db.pool.Exec(ctx,
		`DELETE FROM chat_messages WHERE conversation_id = $1 AND user_id = $2`,
		conversationID, userID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete conversation: %w", err)
	}
	return result.RowsAffected() > 0, nil
}
