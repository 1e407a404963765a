package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/syncroom/server/pkg/rest"
)

func (c controller) Mux() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Broadcast-Secret"},
		AllowCredentials: false,
	}))
	r.Use(c.requestIdMw)
	r.Use(c.requestLoggingMw)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
			rest.WriteJSON(w, http.StatusOK, rest.Envelope{"status": "ok"})
		})

		r.Post("/auth/register", c.register)
		r.Post("/auth/login", c.login)
		r.Post("/broadcast", c.broadcastMessage)
	})

	r.HandleFunc("/ws", c.connect)

	return r
}
