package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/interfaces"
	"flow-ai/chatcore/internal/render"
	"flow-ai/chatcore/internal/service"
)

// SearchHandler exposes the web search toggle and the rendered results panel.
type SearchHandler struct {
	conversations interfaces.ConversationService
	settings      interfaces.SettingsService
	formatter     *render.Formatter
}

func NewSearchHandler(conversations interfaces.ConversationService, settings interfaces.SettingsService, formatter *render.Formatter) *SearchHandler {
	return &SearchHandler{conversations: conversations, settings: settings, formatter: formatter}
}

// HandleGetSearch godoc
// @Summary      Get web search state
// @Description  Returns the toggle, the searching indicator and the results of the last exchange with their rendered panel.
// @Tags         Search
// @Produce      json
// @Success      200  {object}  SearchResponse
// @Router       /v1/search [get]
func (h *SearchHandler) HandleGetSearch(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, newSearchResponse(h.formatter, h.conversations.SearchState()))
}

// HandleUpdateSearch godoc
// @Summary      Toggle web search
// @Description  Persists the toggle. It applies from the next exchange on.
// @Tags         Search
// @Accept       json
// @Produce      json
// @Param        searchRequest  body      UpdateSearchRequest  true  "Toggle"
// @Success      200            {object}  SearchResponse
// @Failure      400            {object}  ErrorResponse
// @Failure      500            {object}  ErrorResponse
// @Router       /v1/search [put]
func (h *SearchHandler) HandleUpdateSearch(w http.ResponseWriter, r *http.Request) {
	var req UpdateSearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}

	if err := h.settings.Save(r.Context(), &service.Settings{WebSearchEnabled: *req.Enabled}); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, newSearchResponse(h.formatter, h.conversations.SearchState()))
}
