package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/model"
	"flow-ai/chatcore/internal/render"
	"flow-ai/chatcore/internal/service"
)

// Request and response DTOs shared by the handlers, and the helpers that write them.

// ErrorResponse defines the standard JSON structure for error messages.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is returned by mutations that have nothing else to report.
type StatusResponse struct {
	Status string `json:"status"`
}

// UpdateTitleRequest renames a conversation.
type UpdateTitleRequest struct {
	Title string `json:"title" validate:"required,min=1,max=100" example:"My Custom Chat Title"`
}

// SubmitMessageRequest starts an exchange. An empty ConversationID starts a
// new conversation. Blank content is accepted here and answered with 204.
type SubmitMessageRequest struct {
	ConversationID string `json:"conversation_id" validate:"omitempty,max=64" example:"5f0c7c1e-8d1a-4a55-9a43-3c3d1f0b2a10"`
	Content        string `json:"content" validate:"max=32000" example:"What changed in Go 1.24?"`
}

// UpdateSearchRequest flips the web search toggle.
type UpdateSearchRequest struct {
	Enabled *bool `json:"enabled" validate:"required" example:"true"`
}

// RenderRequest asks for a piece of text to be formatted.
type RenderRequest struct {
	Text    string `json:"text" validate:"max=200000" example:"See [1].\n\n[1]: https://go.dev"`
	Variant string `json:"variant" validate:"omitempty,oneof=message search" example:"message"`
}

// RenderResponse carries formatted HTML.
type RenderResponse struct {
	HTML string `json:"html"`
}

// SearchResponse is the web search state plus the rendered results panel.
type SearchResponse struct {
	model.SearchState
	ResultsHTML string `json:"results_html"`
}

// MessageResponse is a message with its rendered body. Only assistant
// messages are rendered; user messages are shown as typed.
type MessageResponse struct {
	service.MessageView
	HTML string `json:"html,omitempty"`
}

// ConversationResponse is the full view of one conversation.
type ConversationResponse struct {
	model.Conversation
	Messages []MessageResponse `json:"messages"`
	Search   SearchResponse    `json:"search"`
}

// StreamEventResponse is one SSE `data:` payload of the message stream.
type StreamEventResponse struct {
	model.StreamEvent
	HTML        string `json:"html"`
	ResultsHTML string `json:"results_html"`
}

func newSearchResponse(f *render.Formatter, state model.SearchState) SearchResponse {
	return SearchResponse{SearchState: state, ResultsHTML: f.SearchResults(state.Results)}
}

func newConversationResponse(f *render.Formatter, view *service.ConversationView) ConversationResponse {
	resp := ConversationResponse{
		Conversation: view.Conversation,
		Messages:     make([]MessageResponse, len(view.Messages)),
		Search:       newSearchResponse(f, view.Search),
	}
	for i, m := range view.Messages {
		resp.Messages[i] = MessageResponse{MessageView: m}
		if m.Role == model.RoleAssistant {
			resp.Messages[i].HTML = f.Message(m.Text())
		}
	}
	return resp
}

// respondWithError maps a service error to a status code with errors.Is and
// writes an ErrorResponse. Only validation messages reach the client verbatim.
func respondWithError(w http.ResponseWriter, err error) {
	statusCode, message := classifyError(err)
	slog.Warn("Responding with error", "status_code", statusCode, "client_message", message, "internal_error", err)
	respondWithJSON(w, statusCode, ErrorResponse{Error: message})
}

func classifyError(err error) (int, string) {
	switch {
	case errors.Is(err, app_errors.ErrNotFound):
		return http.StatusNotFound, "The requested resource was not found."
	case errors.Is(err, app_errors.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, app_errors.ErrConflict):
		return http.StatusConflict, "A reply is still streaming. Wait for it to finish or cancel it."
	case errors.Is(err, app_errors.ErrPermission):
		return http.StatusForbidden, "You do not have permission to perform this action."
	default:
		return http.StatusInternalServerError, "An unexpected internal server error occurred."
	}
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to marshal JSON response", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		slog.Error("Failed to write JSON response", "error", err)
	}
}

func setStreamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// sendStreamError writes an `event: error` frame so EventSource clients can
// listen for failures separately from data frames.
func sendStreamError(w http.ResponseWriter, message string) {
	slog.Warn("Sending stream error to client", "message", message)

	jsonData, err := json.Marshal(ErrorResponse{Error: message})
	if err != nil {
		slog.Error("Failed to marshal stream error payload", "error", err)
		return
	}
	if _, err := fmt.Fprintf(w, "event: error\ndata: %s\n\n", jsonData); err != nil {
		slog.Warn("Failed to write stream error, client might have disconnected", "error", err)
		return
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// writeStreamEvent writes one `data:` frame and flushes it. A returned error
// means the client is gone; a payload that fails to marshal is logged and skipped.
func writeStreamEvent(w http.ResponseWriter, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal stream data to JSON", "error", err)
		return nil
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", jsonData); err != nil {
		return fmt.Errorf("failed to write data to stream: %w", err)
	}
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
	return nil
}
