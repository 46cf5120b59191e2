package routes

import (
	"github.com/AnshRaj112/journal-backend/internal/handlers"
	"github.com/go-chi/chi/v5"
)

func SetupRoutes(r *chi.Mux) {
	// Auth routes
	r.Post("/api/auth/signup", handlers.Signup)
	r.Post("/api/auth/signin", handlers.Signin)
	r.Post("/api/auth/signout", handlers.Signout)
	r.Post("/api/auth/forgot-username", handlers.ForgotUsername)
	r.Get("/api/auth/me", handlers.GetMe)

	// Journal routes (all require a session token)
	r.Get("/api/journal", handlers.GetJournalEntries)
	r.Post("/api/journal", handlers.CreateJournalEntry)
	r.Get("/api/journal/{id}", handlers.GetJournalEntry)
	r.Put("/api/journal/{id}", handlers.UpdateJournalEntry)
	r.Delete("/api/journal/{id}", handlers.DeleteJournalEntry)

	// Health check for uptime monitors
	r.Get("/api/health", handlers.HealthCheck)
}
