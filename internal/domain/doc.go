// Package domain defines the core business entities of the application:
// users, flashcards, flashcard proposals and generation records. Entities
// validate themselves; persistence and transport concerns live elsewhere.
package domain
