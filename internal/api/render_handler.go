package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	app_errors "flow-ai/chatcore/internal/errors"
	"flow-ai/chatcore/internal/render"
)

// RenderHandler formats arbitrary text without touching any conversation.
type RenderHandler struct {
	formatter *render.Formatter
}

func NewRenderHandler(formatter *render.Formatter) *RenderHandler {
	return &RenderHandler{formatter: formatter}
}

// HandleRender godoc
// @Summary      Format text
// @Description  Formats text with the message or search-results pipeline. Citations resolve against the reference definitions in the same text.
// @Tags         Render
// @Accept       json
// @Produce      json
// @Param        renderRequest  body      RenderRequest  true  "Text to format"
// @Success      200            {object}  RenderResponse
// @Failure      400            {object}  ErrorResponse
// @Router       /v1/render [post]
func (h *RenderHandler) HandleRender(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, fmt.Errorf("%w: invalid request payload", app_errors.ErrValidation))
		return
	}
	if err := validateRequest(&req); err != nil {
		respondWithError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, RenderResponse{HTML: h.formatter.Format(req.Text, render.Variant(req.Variant))})
}
