package api

import (
	"net/http"
	"time"

	// This blank import is required by swaggo to find the API definitions.
	_ "flow-ai/chatcore/docs"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// NewRouter wires every endpoint. staticDir, when set, is served at the root
// for the browser UI.
func NewRouter(conversations *ConversationHandler, search *SearchHandler, renderer *RenderHandler, staticDir string) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/swagger/*", httpSwagger.WrapHandler)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(60 * time.Second))

			// --- Conversations ---
			r.Get("/conversations", conversations.GetConversations)
			r.Get("/conversations/{conversationID}", conversations.GetConversation)
			r.Put("/conversations/{conversationID}/title", conversations.UpdateConversationTitle)
			r.Delete("/conversations/{conversationID}", conversations.HandleDeleteConversation)
			r.Post("/conversations/{conversationID}/reset", conversations.HandleResetConversation)
			r.Post("/conversations/{conversationID}/cancel", conversations.HandleCancel)

			// --- Search ---
			r.Get("/search", search.HandleGetSearch)
			r.Put("/search", search.HandleUpdateSearch)

			r.Post("/render", renderer.HandleRender)
		})

		// The message stream holds the connection for the whole reply, so no timeout here.
		r.Group(func(r chi.Router) {
			r.Post("/conversations/messages", conversations.HandleStreamMessage)
		})
	})

	if staticDir != "" {
		fileServer := http.FileServer(http.Dir(staticDir))
		r.Handle("/*", http.StripPrefix("/", fileServer))
	}

	return r
}
