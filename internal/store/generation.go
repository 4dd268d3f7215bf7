package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
)

// GenerationStore defines the interface for generation-record persistence.
// All lookups are scoped by the owning user; a generation owned by someone
// else is indistinguishable from a missing one.
type GenerationStore interface {
	// Create saves a new generation header.
	// Returns validation errors if the generation data is invalid.
	Create(ctx context.Context, generation *domain.Generation) error

	// GetByID retrieves a generation by ID, scoped to ownerID.
	// Returns ErrGenerationNotFound on a miss.
	GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Generation, error)

	// GetForUpdate retrieves a generation by ID with a row lock, scoped to
	// ownerID. It MUST be called through a WithTx-derived store so that
	// concurrent flashcard-set replacements on the same generation serialize
	// instead of interleaving. Returns ErrGenerationNotFound on a miss.
	GetForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*domain.Generation, error)

	// ListByOwner retrieves all generations of a user, most recent first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Generation, error)

	// UpdateAcceptedCounts records the accepted-unedited/accepted-edited
	// telemetry for a generation and bumps its updated_at timestamp.
	// Returns ErrGenerationNotFound on a miss.
	UpdateAcceptedCounts(ctx context.Context, id, ownerID uuid.UUID, unedited, edited int) error

	// Delete removes a generation row, scoped to ownerID. Callers are
	// responsible for deleting the generation's flashcards first, inside
	// the same transaction; the schema-level cascade is a backstop only.
	// Returns ErrGenerationNotFound on a miss.
	Delete(ctx context.Context, id, ownerID uuid.UUID) error

	// WithTx returns a GenerationStore bound to the given transaction.
	WithTx(tx *sql.Tx) GenerationStore
}
