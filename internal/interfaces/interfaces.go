package interfaces

import (
	"context"

	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/service"
)

// This file defines the interfaces for our core services.
// The API layer depends on these instead of the concrete services so that
// handlers can be tested against mocks.

// ConversationService defines the contract of the conversation controller.
type ConversationService interface {
	Submit(ctx context.Context, conversationID, content string) (<-chan model.StreamEvent, error)
	Cancel(ctx context.Context, conversationID string) error
	Reset(ctx context.Context, conversationID string) error
	Delete(ctx context.Context, conversationID string) error
	List(ctx context.Context) ([]*model.Conversation, error)
	Get(ctx context.Context, conversationID string) (*service.ConversationView, error)
	UpdateTitle(ctx context.Context, conversationID, newTitle string) error
	SearchState() model.SearchState
}

// SettingsService defines the contract for managing application settings.
type SettingsService interface {
	InitAndGet(ctx context.Context, defaults service.Settings) (*service.Settings, error)
	Get(ctx context.Context) (*service.Settings, error)
	Save(ctx context.Context, settings *service.Settings) error
}

var (
	_ ConversationService = (*service.ConversationService)(nil)
	_ SettingsService     = (*service.SettingsService)(nil)
)
