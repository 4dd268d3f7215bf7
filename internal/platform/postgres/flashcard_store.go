package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// FlashcardStore implements the store.FlashcardStore interface
// using a PostgreSQL database as the storage backend.
type FlashcardStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewFlashcardStore creates a new PostgreSQL implementation of the
// FlashcardStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewFlashcardStore(db store.DBTX, logger *slog.Logger) *FlashcardStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &FlashcardStore{
		db:     db,
		logger: logger.With(slog.String("component", "flashcard_store")),
	}
}

// Ensure FlashcardStore implements store.FlashcardStore interface
var _ store.FlashcardStore = (*FlashcardStore)(nil)

// WithTx implements store.FlashcardStore.WithTx
func (s *FlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore {
	return &FlashcardStore{
		db:     tx,
		logger: s.logger,
	}
}

const flashcardColumns = `
	id, user_id, generation_id, front, back, source, display_order,
	created_at, updated_at
`

const insertFlashcardQuery = `
	INSERT INTO flashcards (` + flashcardColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

// Create implements store.FlashcardStore.Create
// Returns store.ErrInvalidEntity if the referenced user or generation does
// not exist.
func (s *FlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during create",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	_, err := s.db.ExecContext(
		ctx,
		insertFlashcardQuery,
		card.ID,
		card.UserID,
		card.GenerationID,
		card.Front,
		card.Back,
		card.Source,
		card.DisplayOrder,
		card.CreatedAt,
		card.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()),
			slog.String("user_id", card.UserID.String()))
		return mapError(err, store.ErrFlashcardNotFound)
	}

	log.Info("flashcard created successfully",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("user_id", card.UserID.String()))
	return nil
}

// CreateMultiple implements store.FlashcardStore.CreateMultiple
// Every card is validated before the first insert so a bad card fails the
// batch without touching the database. Atomicity comes from the enclosing
// transaction; callers must use a WithTx-derived store.
func (s *FlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(cards) == 0 {
		return nil
	}

	for i, card := range cards {
		if err := card.Validate(); err != nil {
			log.Warn("flashcard validation failed during batch create",
				slog.String("error", err.Error()),
				slog.Int("index", i))
			return fmt.Errorf("card at index %d: %w", i, err)
		}
	}

	for i, card := range cards {
		_, err := s.db.ExecContext(
			ctx,
			insertFlashcardQuery,
			card.ID,
			card.UserID,
			card.GenerationID,
			card.Front,
			card.Back,
			card.Source,
			card.DisplayOrder,
			card.CreatedAt,
			card.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to create flashcard in batch",
				slog.String("error", err.Error()),
				slog.Int("index", i),
				slog.String("flashcard_id", card.ID.String()))
			return mapError(err, store.ErrFlashcardNotFound)
		}
	}

	log.Info("flashcard batch created",
		slog.Int("count", len(cards)),
		slog.String("user_id", cards[0].UserID.String()))
	return nil
}

// GetByID implements store.FlashcardStore.GetByID
// Returns store.ErrFlashcardNotFound when the card does not exist or belongs
// to a different user.
func (s *FlashcardStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE id = $1 AND user_id = $2
	`

	card, err := scanFlashcard(s.db.QueryRowContext(ctx, query, id, ownerID))
	if err != nil {
		mapped := mapError(err, store.ErrFlashcardNotFound)
		if store.IsNotFoundError(mapped) {
			log.Debug("flashcard not found",
				slog.String("flashcard_id", id.String()),
				slog.String("user_id", ownerID.String()))
		} else {
			log.Error("failed to get flashcard",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", id.String()))
		}
		return nil, mapped
	}

	return card, nil
}

// ListByOwner implements store.FlashcardStore.ListByOwner
// Results are ordered most recent first.
func (s *FlashcardStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Flashcard, error) {
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	return s.list(ctx, query, ownerID)
}

// ListByGeneration implements store.FlashcardStore.ListByGeneration
// Results follow the display order assigned at generation time.
func (s *FlashcardStore) ListByGeneration(ctx context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error) {
	query := `
		SELECT ` + flashcardColumns + `
		FROM flashcards
		WHERE generation_id = $1
		ORDER BY display_order ASC
	`
	return s.list(ctx, query, generationID)
}

// NextDisplayOrder implements store.FlashcardStore.NextDisplayOrder
// The caller must hold the generation's row lock for the result to stay
// unique until the insert commits.
func (s *FlashcardStore) NextDisplayOrder(ctx context.Context, generationID uuid.UUID) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT COALESCE(MAX(display_order), 0) + 1
		FROM flashcards
		WHERE generation_id = $1
	`

	var next int
	if err := s.db.QueryRowContext(ctx, query, generationID).Scan(&next); err != nil {
		log.Error("failed to compute next display order",
			slog.String("error", err.Error()),
			slog.String("generation_id", generationID.String()))
		return 0, err
	}

	return next, nil
}

func (s *FlashcardStore) list(ctx context.Context, query string, arg any) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		log.Error("failed to query flashcards",
			slog.String("error", err.Error()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	cards := []*domain.Flashcard{}
	for rows.Next() {
		card, err := scanFlashcard(rows)
		if err != nil {
			log.Error("failed to scan flashcard row",
				slog.String("error", err.Error()))
			return nil, err
		}
		cards = append(cards, card)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning flashcard rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return cards, nil
}

// Update implements store.FlashcardStore.Update
// Editing an AI card's text is the caller's cue to retag its source; the
// store writes whatever source the domain object carries.
func (s *FlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := card.Validate(); err != nil {
		log.Warn("flashcard validation failed during update",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	query := `
		UPDATE flashcards
		SET front = $1, back = $2, source = $3, display_order = $4, updated_at = $5
		WHERE id = $6 AND user_id = $7
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		card.Front,
		card.Back,
		card.Source,
		card.DisplayOrder,
		time.Now().UTC(),
		card.ID,
		card.UserID,
	)
	if err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrFlashcardNotFound); err != nil {
		log.Debug("flashcard not found for update",
			slog.String("flashcard_id", card.ID.String()))
		return err
	}

	log.Info("flashcard updated",
		slog.String("flashcard_id", card.ID.String()))
	return nil
}

// Delete implements store.FlashcardStore.Delete
func (s *FlashcardStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM flashcards
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		log.Error("failed to delete flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrFlashcardNotFound); err != nil {
		log.Debug("flashcard not found for delete",
			slog.String("flashcard_id", id.String()))
		return err
	}

	log.Info("flashcard deleted",
		slog.String("flashcard_id", id.String()))
	return nil
}

// DeleteByGeneration implements store.FlashcardStore.DeleteByGeneration
// Removing zero rows is not an error: a generation may have had all its
// proposals rejected.
func (s *FlashcardStore) DeleteByGeneration(ctx context.Context, generationID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM flashcards
		WHERE generation_id = $1
	`

	result, err := s.db.ExecContext(ctx, query, generationID)
	if err != nil {
		log.Error("failed to delete flashcards by generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", generationID.String()))
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	log.Info("flashcards deleted by generation",
		slog.String("generation_id", generationID.String()),
		slog.Int64("count", rowsAffected))
	return nil
}

// rowScanner abstracts *sql.Row and *sql.Rows for shared scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFlashcard(row rowScanner) (*domain.Flashcard, error) {
	var card domain.Flashcard
	var generationID uuid.NullUUID
	var source string

	err := row.Scan(
		&card.ID,
		&card.UserID,
		&generationID,
		&card.Front,
		&card.Back,
		&source,
		&card.DisplayOrder,
		&card.CreatedAt,
		&card.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if generationID.Valid {
		id := generationID.UUID
		card.GenerationID = &id
	}
	card.Source = domain.FlashcardSource(source)
	return &card, nil
}
