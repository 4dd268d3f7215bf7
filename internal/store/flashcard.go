package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
)

// FlashcardStore defines the interface for flashcard persistence.
type FlashcardStore interface {
	// Create saves a single flashcard (manual creation path).
	// Returns validation errors if the card data is invalid.
	Create(ctx context.Context, card *domain.Flashcard) error

	// CreateMultiple saves a batch of flashcards preserving their assigned
	// display order. It MUST be called through a WithTx-derived store; the
	// batch is only atomic inside a transaction.
	CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error

	// GetByID retrieves a flashcard by ID, scoped to ownerID.
	// Returns ErrFlashcardNotFound on a miss.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Flashcard, error)

	// ListByOwner retrieves all flashcards of a user, most recent first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Flashcard, error)

	// ListByGeneration retrieves the flashcards of one generation ordered
	// by display_order. Ownership is checked at the generation level by
	// callers; this method filters by generation ID only.
	ListByGeneration(ctx context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error)

	// NextDisplayOrder returns the next free display order within a
	// generation (1 for an empty set). Callers appending to a generation
	// MUST hold the generation's row lock to keep the order unique.
	NextDisplayOrder(ctx context.Context, generationID uuid.UUID) (int, error)

	// Update rewrites a card's front, back, source and display order,
	// scoped to the card's owner. Returns ErrFlashcardNotFound on a miss.
	Update(ctx context.Context, card *domain.Flashcard) error

	// Delete removes a flashcard, scoped to ownerID.
	// Returns ErrFlashcardNotFound on a miss.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// DeleteByGeneration removes every flashcard belonging to a generation.
	// Deleting zero rows is not an error.
	DeleteByGeneration(ctx context.Context, generationID uuid.UUID) error

	// WithTx returns a FlashcardStore bound to the given transaction.
	WithTx(tx *sql.Tx) FlashcardStore
}
