package repository

import (
	"context"

	"flow-ai/chatcore/internal/model"
)

// Repository defines the storage operations for conversations and their messages.
// The SQLite and Redis stores both implement it; STORE_DRIVER picks one at boot.
type Repository interface {
	CreateConversation(ctx context.Context, conv *model.Conversation) error
	GetConversation(ctx context.Context, conversationID string) (*model.Conversation, error)
	ListConversations(ctx context.Context) ([]*model.Conversation, error)
	UpdateConversationTitle(ctx context.Context, conversationID, newTitle string) error
	DeleteConversation(ctx context.Context, conversationID string) error

	// AddMessage appends a message and bumps the conversation's updated_at.
	AddMessage(ctx context.Context, conversationID string, message *model.Message) error
	// GetMessages returns the messages of a conversation in insertion order.
	GetMessages(ctx context.Context, conversationID string) ([]model.Message, error)
	// ClearMessages removes every message but keeps the conversation itself.
	ClearMessages(ctx context.Context, conversationID string) error
}
