// The `_test` suffix creates a "black box" test package: only the exported
// surface of `api` is reachable from here.
package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"flow-ai/chatcore/internal/api"
	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/interfaces/mocks"
	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/render"
	"flow-ai/chatcore/internal/service"
)

// setupConversationHandler creates a handler over a mocked service and a real formatter.
func setupConversationHandler(t *testing.T) (*api.ConversationHandler, *mocks.MockConversationService) {
	mockSvc := mocks.NewMockConversationService(t)
	handler := api.NewConversationHandler(mockSvc, render.NewFormatter())
	return handler, mockSvc
}

// addChiURLParams injects URL parameters the way the chi router does, so
// chi.URLParam works when a handler is called directly.
func addChiURLParams(req *http.Request, params map[string]string) *http.Request {
	chiCtx := chi.NewRouteContext()
	for key, value := range params {
		chiCtx.URLParams.Add(key, value)
	}
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

// eventStream returns a closed, pre-filled channel typed the way Submit returns it.
func eventStream(events ...model.StreamEvent) <-chan model.StreamEvent {
	ch := make(chan model.StreamEvent, len(events))
	for _, e := range events {
		ch <- e
	}
	close(ch)
	return ch
}

// frame is one SSE frame; event is empty for plain data frames.
type frame struct {
	event string
	data  string
}

// readFrames splits an SSE body into its frames.
func readFrames(t *testing.T, body string) []frame {
	t.Helper()
	var frames []frame
	var current frame
	scanner := bufio.NewScanner(strings.NewReader(body))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if current.data != "" {
				frames = append(frames, current)
			}
			current = frame{}
		case strings.HasPrefix(line, "event: "):
			current.event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			current.data = strings.TrimPrefix(line, "data: ")
		}
	}
	require.NoError(t, scanner.Err())
	return frames
}

func TestConversationHandler_GetConversations(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		// ARRANGE
		handler, mockSvc := setupConversationHandler(t)
		expected := []*model.Conversation{{ID: "conv1", Title: "Test Chat"}}
		mockSvc.On("List", mock.Anything).Return(expected, nil).Once()

		// ACT
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		rr := httptest.NewRecorder()
		handler.GetConversations(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		var returned []*model.Conversation
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &returned))
		assert.Equal(t, expected, returned)
	})

	t.Run("Failure - Service returns error", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("internal error")).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations", nil)
		rr := httptest.NewRecorder()
		handler.GetConversations(rr, req)

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
		assert.NotContains(t, rr.Body.String(), "internal error", "internal details must not leak")
	})
}

func TestConversationHandler_GetConversation(t *testing.T) {
	t.Run("Success - Assistant messages are rendered", func(t *testing.T) {
		// ARRANGE
		handler, mockSvc := setupConversationHandler(t)
		view := &service.ConversationView{
			Conversation: model.Conversation{ID: "conv1", Title: "Go"},
			Messages: []service.MessageView{
				{Message: model.NewTextMessage("m1", model.RoleUser, "What is [1]?")},
				{
					Message:    model.NewTextMessage("m2", model.RoleAssistant, "See [1].\n\n[1]: https://go.dev"),
					Streaming:  true,
					ShowSearch: true,
				},
			},
			Search: model.SearchState{Enabled: true, IsSearching: true},
		}
		mockSvc.On("Get", mock.Anything, "conv1").Return(view, nil).Once()

		// ACT
		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/conv1", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.GetConversation(rr, req)

		// ASSERT
		require.Equal(t, http.StatusOK, rr.Code)
		var resp struct {
			ID       string `json:"id"`
			Messages []struct {
				ID         string `json:"id"`
				Role       string `json:"role"`
				HTML       string `json:"html"`
				Streaming  bool   `json:"streaming"`
				ShowSearch bool   `json:"show_search"`
			} `json:"messages"`
			Search struct {
				IsSearching bool `json:"is_searching"`
			} `json:"search"`
		}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "conv1", resp.ID)
		require.Len(t, resp.Messages, 2)
		assert.Empty(t, resp.Messages[0].HTML, "user messages are not rendered")
		assert.Contains(t, resp.Messages[1].HTML, `href="https://go.dev"`)
		assert.True(t, resp.Messages[1].Streaming)
		assert.True(t, resp.Messages[1].ShowSearch)
		assert.True(t, resp.Search.IsSearching)
	})

	t.Run("Failure - Not Found", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("Get", mock.Anything, "missing").Return(nil, fmt.Errorf("could not get conversation: %w", app_errors.ErrNotFound)).Once()

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/missing", nil)
		req = addChiURLParams(req, map[string]string{"conversationID": "missing"})
		rr := httptest.NewRecorder()
		handler.GetConversation(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestConversationHandler_UpdateConversationTitle(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("UpdateTitle", mock.Anything, "conv1", "New Title").Return(nil).Once()

		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/conv1/title", strings.NewReader(`{"title": "New Title"}`))
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.UpdateConversationTitle(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
	})

	t.Run("Failure - Invalid JSON", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)

		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/conv1/title", strings.NewReader(`{"title":`))
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.UpdateConversationTitle(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Failure - Title too long", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)

		body := fmt.Sprintf(`{"title": %q}`, strings.Repeat("a", 101))
		req := httptest.NewRequest(http.MethodPut, "/v1/conversations/conv1/title", strings.NewReader(body))
		req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
		rr := httptest.NewRecorder()
		handler.UpdateConversationTitle(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "Field 'Title' failed on the 'max' tag")
	})
}

func TestConversationHandler_Mutations(t *testing.T) {
	streamingErr := fmt.Errorf("%w: conversation conv1 is streaming", app_errors.ErrConflict)

	testCases := []struct {
		name       string
		method     string
		call       string
		invoke     func(h *api.ConversationHandler, w http.ResponseWriter, r *http.Request)
		err        error
		wantStatus int
	}{
		{"Delete - Success", http.MethodDelete, "Delete", (*api.ConversationHandler).HandleDeleteConversation, nil, http.StatusOK},
		{"Delete - Not Found", http.MethodDelete, "Delete", (*api.ConversationHandler).HandleDeleteConversation, app_errors.ErrNotFound, http.StatusNotFound},
		{"Delete - While streaming", http.MethodDelete, "Delete", (*api.ConversationHandler).HandleDeleteConversation, streamingErr, http.StatusConflict},
		{"Reset - Success", http.MethodPost, "Reset", (*api.ConversationHandler).HandleResetConversation, nil, http.StatusOK},
		{"Reset - While streaming", http.MethodPost, "Reset", (*api.ConversationHandler).HandleResetConversation, streamingErr, http.StatusConflict},
		{"Cancel - Success", http.MethodPost, "Cancel", (*api.ConversationHandler).HandleCancel, nil, http.StatusOK},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler, mockSvc := setupConversationHandler(t)
			mockSvc.On(tc.call, mock.Anything, "conv1").Return(tc.err).Once()

			req := httptest.NewRequest(tc.method, "/v1/conversations/conv1", nil)
			req = addChiURLParams(req, map[string]string{"conversationID": "conv1"})
			rr := httptest.NewRecorder()
			tc.invoke(handler, rr, req)

			assert.Equal(t, tc.wantStatus, rr.Code)
		})
	}
}

func TestConversationHandler_HandleStreamMessage(t *testing.T) {
	t.Run("Success - Relays every event with rendered HTML", func(t *testing.T) {
		// ARRANGE
		handler, mockSvc := setupConversationHandler(t)
		events := eventStream(
			model.StreamEvent{ConversationID: "conv1", MessageID: "m2", State: "connecting", Streaming: true},
			model.StreamEvent{ConversationID: "conv1", MessageID: "m2", State: "streaming", Streaming: true, Text: "See [1]"},
			model.StreamEvent{
				ConversationID: "conv1", MessageID: "m2", State: "completed",
				Text:   "See [1].\n\n[1]: https://go.dev",
				Search: model.SearchState{Enabled: true, Results: "## Results\n1. [Go](https://go.dev)"},
			},
		)
		mockSvc.On("Submit", mock.Anything, "conv1", "hello").Return(events, nil).Once()

		// ACT
		body := `{"conversation_id": "conv1", "content": "hello"}`
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		// ASSERT
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/event-stream", rr.Header().Get("Content-Type"))

		frames := readFrames(t, rr.Body.String())
		require.Len(t, frames, 3)
		var states []string
		for _, f := range frames {
			assert.Empty(t, f.event)
			var resp api.StreamEventResponse
			require.NoError(t, json.Unmarshal([]byte(f.data), &resp))
			states = append(states, resp.State)
		}
		assert.Equal(t, []string{"connecting", "streaming", "completed"}, states)

		var last api.StreamEventResponse
		require.NoError(t, json.Unmarshal([]byte(frames[2].data), &last))
		assert.Contains(t, last.HTML, `href="https://go.dev"`)
		assert.Contains(t, last.ResultsHTML, `<h2`)
		assert.False(t, last.Streaming)
	})

	t.Run("Blank message is ignored with 204", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("Submit", mock.Anything, "", "   ").
			Return(nil, fmt.Errorf("%w: message is empty", app_errors.ErrValidation)).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"content": "   "}`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
	})

	t.Run("Failure - Busy controller sends an error event", func(t *testing.T) {
		handler, mockSvc := setupConversationHandler(t)
		mockSvc.On("Submit", mock.Anything, "conv1", "hello").
			Return(nil, fmt.Errorf("%w: a reply is still streaming", app_errors.ErrConflict)).Once()

		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"conversation_id": "conv1", "content": "hello"}`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		frames := readFrames(t, rr.Body.String())
		require.Len(t, frames, 1)
		assert.Equal(t, "error", frames[0].event)
		assert.Contains(t, frames[0].data, "still streaming")
	})

	t.Run("Failure - Invalid body", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`not json`))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		frames := readFrames(t, rr.Body.String())
		require.Len(t, frames, 1)
		assert.Equal(t, "error", frames[0].event)
		assert.JSONEq(t, `{"error":"Invalid request body"}`, frames[0].data)
	})

	t.Run("Failure - Content too long", func(t *testing.T) {
		handler, _ := setupConversationHandler(t)

		body := fmt.Sprintf(`{"content": %q}`, strings.Repeat("x", 32001))
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(body))
		rr := httptest.NewRecorder()
		handler.HandleStreamMessage(rr, req)

		frames := readFrames(t, rr.Body.String())
		require.Len(t, frames, 1)
		assert.Equal(t, "error", frames[0].event)
		assert.Contains(t, frames[0].data, "Content")
	})
}

// failingWriter simulates a client that went away after the headers.
type failingWriter struct {
	*httptest.ResponseRecorder
}

func (w failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestConversationHandler_HandleStreamMessage_DrainsAfterDisconnect(t *testing.T) {
	handler, mockSvc := setupConversationHandler(t)

	// Unbuffered, like the real controller: every send blocks until the handler reads it.
	ch := make(chan model.StreamEvent)
	mockSvc.On("Submit", mock.Anything, "conv1", "hello").Return((<-chan model.StreamEvent)(ch), nil).Once()

	sent := make(chan int, 1)
	go func() {
		n := 0
		for i := 0; i < 5; i++ {
			ch <- model.StreamEvent{ConversationID: "conv1", State: "streaming", Streaming: true}
			n++
		}
		close(ch)
		sent <- n
	}()

	req := httptest.NewRequest(http.MethodPost, "/v1/conversations/messages", strings.NewReader(`{"conversation_id": "conv1", "content": "hello"}`))
	handler.HandleStreamMessage(failingWriter{httptest.NewRecorder()}, req)

	assert.Equal(t, 5, <-sent, "every event was consumed although the client was gone")
}
