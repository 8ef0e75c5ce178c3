package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/repository"
	"flow-ai/chatcore/internal/search"
	"flow-ai/chatcore/internal/stream"
)

const titleMaxRunes = 50

// ConversationView is a conversation as the UI should show it right now: the
// stored transcript plus the assistant message still being streamed, if any.
type ConversationView struct {
	model.Conversation
	Messages []MessageView    `json:"messages"`
	Search   model.SearchState `json:"search"`
}

// MessageView annotates a message with its live display flags.
type MessageView struct {
	model.Message
	// Streaming is true on exactly the last message while its exchange is active.
	Streaming bool `json:"streaming"`
	// ShowSearch is true on the last assistant message once the exchange
	// searched or produced results.
	ShowSearch bool `json:"show_search"`
}

// ConversationService is the conversation controller. It owns the transcript,
// runs at most one stream session at a time and persists what the session produced.
type ConversationService struct {
	repo   repository.Repository
	acc    *stream.Accumulator
	search *search.Coordinator

	mu     sync.Mutex
	active *exchange
}

// exchange is the in-flight assistant reply. message is guarded by
// ConversationService.mu.
type exchange struct {
	conversationID string
	message        model.Message
	session        *stream.Session
	cancel         context.CancelFunc
}

func NewConversationService(repo repository.Repository, acc *stream.Accumulator, coord *search.Coordinator) *ConversationService {
	return &ConversationService{repo: repo, acc: acc, search: coord}
}

// Submit appends a user message to the conversation and starts the assistant
// reply. An empty conversationID starts a new conversation titled after the
// message. Whitespace-only content is rejected with ErrValidation and changes
// nothing; a submission while another reply is streaming fails with ErrConflict.
//
// The returned channel carries one event per snapshot plus a terminal event and
// is closed when the exchange is over. The caller must drain it.
func (s *ConversationService) Submit(ctx context.Context, conversationID, content string) (<-chan model.StreamEvent, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return nil, fmt.Errorf("%w: message is empty", app_errors.ErrValidation)
	}

	s.mu.Lock()
	if s.active != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("%w: a reply is still streaming", app_errors.ErrConflict)
	}
	ex := &exchange{conversationID: conversationID}
	s.active = ex
	s.mu.Unlock()

	history, err := s.prepare(ctx, ex, conversationID, text)
	if err != nil {
		s.mu.Lock()
		s.active = nil
		s.mu.Unlock()
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	ex.session = s.acc.NewSession()
	ex.cancel = cancel
	s.mu.Unlock()

	events := make(chan model.StreamEvent)
	go s.run(ctx, runCtx, ex, history, events)
	return events, nil
}

// prepare resolves or creates the conversation, stores the user message and
// returns the history to send upstream.
func (s *ConversationService) prepare(ctx context.Context, ex *exchange, conversationID, text string) ([]model.Message, error) {
	if conversationID == "" {
		now := time.Now().UTC()
		conv := &model.Conversation{
			ID:        uuid.NewString(),
			Title:     truncate(text, titleMaxRunes),
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repo.CreateConversation(ctx, conv); err != nil {
			return nil, fmt.Errorf("could not create conversation: %w", err)
		}
		conversationID = conv.ID
		slog.Info("Created conversation", "conversation_id", conversationID)
	} else if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return nil, mapRepoError(err, "could not get conversation")
	}

	userMessage := model.NewTextMessage(uuid.NewString(), model.RoleUser, text)
	if err := s.repo.AddMessage(ctx, conversationID, &userMessage); err != nil {
		return nil, fmt.Errorf("could not save user message: %w", err)
	}

	history, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not get message history: %w", err)
	}

	s.mu.Lock()
	ex.conversationID = conversationID
	ex.message = model.NewTextMessage(uuid.NewString(), model.RoleAssistant, "")
	s.mu.Unlock()
	return history, nil
}

func (s *ConversationService) run(ctx, runCtx context.Context, ex *exchange, history []model.Message, events chan<- model.StreamEvent) {
	defer close(events)
	defer ex.cancel()
	slog.Info("Exchange started", "conversation_id", ex.conversationID, "session_id", ex.session.ID)

	searchChanged := make(chan struct{}, 1)
	unwatch := s.search.Watch(func(model.SearchState) {
		select {
		case searchChanged <- struct{}{}:
		default:
		}
	})

	events <- s.event(ex, model.StateConnecting, "")

	snaps := make(chan model.Snapshot)
	errCh := make(chan error, 1)
	go func() { errCh <- ex.session.Run(runCtx, history, snaps) }()

	for snaps != nil {
		select {
		case snap, ok := <-snaps:
			if !ok {
				snaps = nil
				continue
			}
			s.mu.Lock()
			ex.message.SetText(snap.Text)
			s.mu.Unlock()
			events <- s.event(ex, ex.session.State(), "")
		case <-searchChanged:
			events <- s.event(ex, ex.session.State(), "")
		}
	}
	unwatch()
	runErr := <-errCh

	s.persist(context.WithoutCancel(ctx), ex)

	s.mu.Lock()
	s.active = nil
	s.mu.Unlock()

	final := ex.session.State()
	var errMsg string
	if final == model.StateFailed && runErr != nil {
		errMsg = runErr.Error()
	}
	events <- s.event(ex, final, errMsg)
	slog.Info("Exchange finished", "conversation_id", ex.conversationID, "session_id", ex.session.ID, "state", ex.session.State().String())
}

// persist stores the assistant message once the session has ended. Nothing is
// stored when the reply never produced any text.
func (s *ConversationService) persist(ctx context.Context, ex *exchange) {
	s.mu.Lock()
	msg := ex.message
	s.mu.Unlock()
	if msg.Text() == "" {
		return
	}
	if err := s.repo.AddMessage(ctx, ex.conversationID, &msg); err != nil {
		slog.Error("Failed to save assistant message", "conversation_id", ex.conversationID, "message_id", msg.ID, "error", err)
		return
	}
	slog.Debug("Saved assistant message", "conversation_id", ex.conversationID, "message_id", msg.ID)
}

func (s *ConversationService) event(ex *exchange, state model.SessionState, errMsg string) model.StreamEvent {
	s.mu.Lock()
	text := ex.message.Text()
	s.mu.Unlock()
	return model.StreamEvent{
		ConversationID: ex.conversationID,
		MessageID:      ex.message.ID,
		Text:           text,
		Streaming:      state.Active(),
		State:          state.String(),
		Search:         s.search.Snapshot(),
		Error:          errMsg,
	}
}

// Cancel stops the reply streaming into conversationID. It is a no-op when
// that conversation has no active reply.
func (s *ConversationService) Cancel(ctx context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil || s.active.cancel == nil || s.active.conversationID != conversationID {
		return nil
	}
	slog.Info("Cancelling exchange", "conversation_id", conversationID)
	s.active.cancel()
	return nil
}

// Reset clears the transcript of a conversation and the search results panel.
func (s *ConversationService) Reset(ctx context.Context, conversationID string) error {
	if err := s.ensureIdle(conversationID); err != nil {
		return err
	}
	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return mapRepoError(err, "could not get conversation")
	}
	if err := s.repo.ClearMessages(ctx, conversationID); err != nil {
		return fmt.Errorf("could not clear messages: %w", err)
	}
	s.search.SetResults("")
	slog.Info("Reset conversation", "conversation_id", conversationID)
	return nil
}

// Delete removes a conversation and all its messages.
func (s *ConversationService) Delete(ctx context.Context, conversationID string) error {
	if err := s.ensureIdle(conversationID); err != nil {
		return err
	}
	if err := s.repo.DeleteConversation(ctx, conversationID); err != nil {
		return mapRepoError(err, "could not delete conversation")
	}
	slog.Info("Deleted conversation", "conversation_id", conversationID)
	return nil
}

// List returns every conversation, most recently updated first.
func (s *ConversationService) List(ctx context.Context) ([]*model.Conversation, error) {
	return s.repo.ListConversations(ctx)
}

// Get returns the conversation merged with the reply in flight.
func (s *ConversationService) Get(ctx context.Context, conversationID string) (*ConversationView, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, mapRepoError(err, "could not get conversation")
	}
	messages, err := s.repo.GetMessages(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("could not get messages: %w", err)
	}

	streaming := false
	s.mu.Lock()
	if ex := s.active; ex != nil && ex.conversationID == conversationID && ex.session != nil {
		active := ex.session.State().Active()
		// Once the session has ended the reply may already be in the store.
		if !containsMessage(messages, ex.message.ID) && (active || ex.message.Text() != "") {
			messages = append(messages, ex.message)
			streaming = active
		}
	}
	s.mu.Unlock()

	state := s.search.Snapshot()
	view := &ConversationView{
		Conversation: *conv,
		Messages:     make([]MessageView, len(messages)),
		Search:       state,
	}
	for i, m := range messages {
		view.Messages[i] = MessageView{Message: m}
	}
	if n := len(view.Messages); n > 0 {
		last := &view.Messages[n-1]
		last.Streaming = streaming
		last.ShowSearch = last.Role == model.RoleAssistant && (state.IsSearching || state.Results != "")
	}
	return view, nil
}

// UpdateTitle renames a conversation.
func (s *ConversationService) UpdateTitle(ctx context.Context, conversationID, newTitle string) error {
	title := strings.TrimSpace(newTitle)
	if title == "" {
		return fmt.Errorf("%w: title cannot be empty", app_errors.ErrValidation)
	}
	slog.Info("Updating conversation title", "conversation_id", conversationID)
	if err := s.repo.UpdateConversationTitle(ctx, conversationID, title); err != nil {
		return mapRepoError(err, "could not update title")
	}
	return nil
}

// SearchState returns the current web search state.
func (s *ConversationService) SearchState() model.SearchState {
	return s.search.Snapshot()
}

func (s *ConversationService) ensureIdle(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active != nil && s.active.conversationID == conversationID {
		return fmt.Errorf("%w: conversation %s is streaming", app_errors.ErrConflict, conversationID)
	}
	return nil
}

func containsMessage(messages []model.Message, id string) bool {
	for _, m := range messages {
		if m.ID == id {
			return true
		}
	}
	return false
}

func mapRepoError(err error, msg string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%s: %w", msg, app_errors.ErrNotFound)
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// truncate shortens a string to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
