package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Get("/profile", h.HandleProfile)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", h.HandleCreateSession)
		r.Get("/{sessionID}/messages", h.HandleListMessages)
		r.Post("/{sessionID}/messages", h.HandleSendMessage)
	})

	r.Route("/math", func(r chi.Router) {
		r.Post("/locate", h.HandleLocateMath)
		r.Post("/replace", h.HandleReplaceMath)
	})

	return r
}
