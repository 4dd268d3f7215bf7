package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/mkowalczyk/cardgen-api/internal/api"
	apiMiddleware "github.com/mkowalczyk/cardgen-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authHandler := api.NewAuthHandler(app.userService, app.jwtService)
	authMiddleware := apiMiddleware.NewAuthMiddleware(app.jwtService)

	generationHandler := api.NewGenerationHandler(
		app.generationService,
		app.config.LLM.DefaultProvider,
		app.logger,
	)
	flashcardHandler := api.NewFlashcardHandler(app.flashcardService, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Authentication endpoints (public)
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Post("/auth/refresh", authHandler.RefreshToken)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			// Generation endpoints
			r.Post("/generations", generationHandler.Generate)
			r.Get("/generations", generationHandler.List)
			r.Get("/generations/{id}", generationHandler.Get)
			r.Put("/generations/{id}/flashcards", generationHandler.ReplaceFlashcards)
			r.Delete("/generations/{id}", generationHandler.Delete)

			// Flashcard endpoints
			r.Post("/flashcards", flashcardHandler.Create)
			r.Get("/flashcards", flashcardHandler.List)
			r.Get("/flashcards/{id}", flashcardHandler.Get)
			r.Put("/flashcards/{id}", flashcardHandler.Update)
			r.Delete("/flashcards/{id}", flashcardHandler.Delete)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
