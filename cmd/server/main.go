// Package main implements the entry point for the cardgen API server,
// which generates flashcard proposals from user-supplied text via LLM
// providers and manages the resulting flashcard collections.
package main

import (
	"log"

	"github.com/joho/godotenv"
)

func main() {
	// A missing .env file is fine; environment variables may carry
	// everything in production.
	_ = godotenv.Load()

	app, err := newApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}
	defer app.cleanup()

	if err := app.run(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
