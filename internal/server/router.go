// Package server assembles the diary backend: services, handlers and routes.
package server

import (
	"net/http"
	"time"

	"github.com/diarynotes/diary-go/internal/handler"
	"github.com/diarynotes/diary-go/internal/middleware"
	"github.com/diarynotes/diary-go/internal/service"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Config holds the settings of the backend routes.
type Config struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	LoginRPS   float64
	LoginBurst int
	Now        func() time.Time
}

// Backend is an assembled diary backend.
type Backend struct {
	Auth   *service.AuthService
	Notes  *service.NoteService
	Router chi.Router
}

// New wires the services over the given stores and mounts the API routes.
func New(users service.UserStore, notes service.NoteStore, cfg Config) *Backend {
	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.JWTExpiry)
	authHandler := handler.NewAuthHandler(authService)

	noteService := service.NewNoteService(notes, cfg.Now)
	noteHandler := handler.NewNoteHandler(noteService, authService)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)
	r.Use(middleware.Logger)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.LoginRPS, cfg.LoginBurst))
		r.Post("/v1/authenticate-by-signup-code-or-email", authHandler.HandleLogin)
	})

	r.Route("/v1/medical-profiles/{profileId}/notes", func(r chi.Router) {
		r.Use(middleware.TokenAuth(cfg.JWTSecret))
		r.Get("/", noteHandler.HandleList)
		r.Post("/", noteHandler.HandleCreate)
		r.Get("/{noteId}", noteHandler.HandleGet)
		r.Put("/{noteId}", noteHandler.HandleUpdate)
		r.Delete("/{noteId}", noteHandler.HandleDelete)
	})

	return &Backend{
		Auth:   authService,
		Notes:  noteService,
		Router: r,
	}
}
