package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/interfaces"
	"flow-ai/chatcore/internal/render"
)

// ConversationHandler serves the conversation endpoints and relays the
// message stream as Server-Sent Events with rendered HTML attached.
type ConversationHandler struct {
	service   interfaces.ConversationService
	formatter *render.Formatter
}

func NewConversationHandler(svc interfaces.ConversationService, formatter *render.Formatter) *ConversationHandler {
	return &ConversationHandler{service: svc, formatter: formatter}
}

// GetConversations godoc
// @Summary      List conversations
// @Description  Returns every conversation, most recently updated first.
// @Tags         Conversations
// @Produce      json
// @Success      200  {array}   model.Conversation
// @Failure      500  {object}  ErrorResponse
// @Router       /v1/conversations [get]
func (h *ConversationHandler) GetConversations(w http.ResponseWriter, r *http.Request) {
	convs, err := h.service.List(r.Context())
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, convs)
}

// GetConversation godoc
// @Summary      Get a conversation
// @Description  Returns the transcript with rendered assistant messages, the reply in flight and the search panel.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  ConversationResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID} [get]
func (h *ConversationHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	view, err := h.service.Get(r.Context(), conversationID)
	if err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newConversationResponse(h.formatter, view))
}

// UpdateConversationTitle godoc
// @Summary      Rename a conversation
// @Tags         Conversations
// @Accept       json
// @Produce      json
// @Param        conversationID  path      string              true  "Conversation ID"
// @Param        titleRequest    body      UpdateTitleRequest  true  "New title"
// @Success      200             {object}  StatusResponse
// @Failure      400             {object}  ErrorResponse
// @Failure      404             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID}/title [put]
func (h *ConversationHandler) UpdateConversationTitle(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")

	var req UpdateTitleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.service.UpdateTitle(r.Context(), conversationID, req.Title); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleDeleteConversation godoc
// @Summary      Delete a conversation
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  StatusResponse
// @Failure      404             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID} [delete]
func (h *ConversationHandler) HandleDeleteConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.service.Delete(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleResetConversation godoc
// @Summary      Clear a conversation
// @Description  Removes every message of the conversation and clears the search panel.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  StatusResponse
// @Failure      404             {object}  ErrorResponse
// @Failure      409             {object}  ErrorResponse
// @Router       /v1/conversations/{conversationID}/reset [post]
func (h *ConversationHandler) HandleResetConversation(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.service.Reset(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleCancel godoc
// @Summary      Stop the reply in flight
// @Description  Cancels the streaming reply of the conversation. Does nothing when it is idle.
// @Tags         Conversations
// @Produce      json
// @Param        conversationID  path      string  true  "Conversation ID"
// @Success      200             {object}  StatusResponse
// @Router       /v1/conversations/{conversationID}/cancel [post]
func (h *ConversationHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationID")
	if err := h.service.Cancel(r.Context(), conversationID); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// HandleStreamMessage godoc
// @Summary      Send a message and stream the reply
// @Description  Streams one `data:` frame per accumulated snapshot of the assistant reply, each carrying the full text so far and its rendered HTML. A blank message is ignored with 204.
// @Tags         Conversations
// @Accept       json
// @Produce      text/event-stream
// @Param        messageRequest  body  SubmitMessageRequest  true  "Message"
// @Success      200  {object}  StreamEventResponse
// @Success      204
// @Router       /v1/conversations/messages [post]
func (h *ConversationHandler) HandleStreamMessage(w http.ResponseWriter, r *http.Request) {
	var req SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Warn("Failed to decode stream message request", "error", err)
		setStreamHeaders(w)
		sendStreamError(w, "Invalid request body")
		return
	}
	if err := validateRequest(&req); err != nil {
		setStreamHeaders(w)
		sendStreamError(w, err.Error())
		return
	}

	events, err := h.service.Submit(r.Context(), req.ConversationID, req.Content)
	if err != nil {
		if errors.Is(err, app_errors.ErrValidation) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		setStreamHeaders(w)
		_, message := classifyError(err)
		sendStreamError(w, message)
		return
	}

	setStreamHeaders(w)
	w.WriteHeader(http.StatusOK)

	clientGone := false
	for event := range events {
		if clientGone {
			// Keep draining so the exchange can finish and persist.
			continue
		}
		resp := StreamEventResponse{
			StreamEvent: event,
			HTML:        h.formatter.Message(event.Text),
			ResultsHTML: h.formatter.SearchResults(event.Search.Results),
		}
		if err := writeStreamEvent(w, resp); err != nil {
			slog.Info("Client disconnected from stream", "conversation_id", event.ConversationID, "error", err)
			clientGone = true
		}
	}
	slog.Debug("Finished streaming response")
}
