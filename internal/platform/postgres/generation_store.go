package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// GenerationStore implements the store.GenerationStore interface
// using a PostgreSQL database as the storage backend.
type GenerationStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewGenerationStore creates a new PostgreSQL implementation of the
// GenerationStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewGenerationStore(db store.DBTX, logger *slog.Logger) *GenerationStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &GenerationStore{
		db:     db,
		logger: logger.With(slog.String("component", "generation_store")),
	}
}

// Ensure GenerationStore implements store.GenerationStore interface
var _ store.GenerationStore = (*GenerationStore)(nil)

// WithTx implements store.GenerationStore.WithTx
func (s *GenerationStore) WithTx(tx *sql.Tx) store.GenerationStore {
	return &GenerationStore{
		db:     tx,
		logger: s.logger,
	}
}

// Durations are persisted as integer milliseconds.
const generationColumns = `
	id, user_id, name, model, source_text_hash, source_text_length,
	generated_count, accepted_unedited_count, accepted_edited_count,
	generation_duration_ms, created_at, updated_at
`

// Create implements store.GenerationStore.Create
// Returns store.ErrInvalidEntity if the owning user does not exist.
func (s *GenerationStore) Create(ctx context.Context, generation *domain.Generation) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := generation.Validate(); err != nil {
		log.Warn("generation validation failed during create",
			slog.String("error", err.Error()),
			slog.String("generation_id", generation.ID.String()))
		return err
	}

	query := `
		INSERT INTO generations (` + generationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		generation.ID,
		generation.UserID,
		generation.Name,
		generation.Model,
		generation.SourceTextHash,
		generation.SourceTextLength,
		generation.GeneratedCount,
		generation.AcceptedUneditedCount,
		generation.AcceptedEditedCount,
		generation.GenerationDuration.Milliseconds(),
		generation.CreatedAt,
		generation.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", generation.ID.String()),
			slog.String("user_id", generation.UserID.String()))
		return mapError(err, store.ErrGenerationNotFound)
	}

	log.Info("generation created successfully",
		slog.String("generation_id", generation.ID.String()),
		slog.String("user_id", generation.UserID.String()),
		slog.Int("generated_count", generation.GeneratedCount))
	return nil
}

// GetByID implements store.GenerationStore.GetByID
// Returns store.ErrGenerationNotFound when the generation does not exist or
// belongs to a different user.
func (s *GenerationStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Generation, error) {
	query := `
		SELECT ` + generationColumns + `
		FROM generations
		WHERE id = $1 AND user_id = $2
	`
	return s.getOne(ctx, query, id, ownerID)
}

// GetForUpdate implements store.GenerationStore.GetForUpdate
// Must run inside a transaction; the row lock is held until commit.
func (s *GenerationStore) GetForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*domain.Generation, error) {
	query := `
		SELECT ` + generationColumns + `
		FROM generations
		WHERE id = $1 AND user_id = $2
		FOR UPDATE
	`
	return s.getOne(ctx, query, id, ownerID)
}

func (s *GenerationStore) getOne(ctx context.Context, query string, id, ownerID uuid.UUID) (*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var gen domain.Generation
	var durationMs int64

	err := s.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&gen.ID,
		&gen.UserID,
		&gen.Name,
		&gen.Model,
		&gen.SourceTextHash,
		&gen.SourceTextLength,
		&gen.GeneratedCount,
		&gen.AcceptedUneditedCount,
		&gen.AcceptedEditedCount,
		&durationMs,
		&gen.CreatedAt,
		&gen.UpdatedAt,
	)

	if err != nil {
		mapped := mapError(err, store.ErrGenerationNotFound)
		if store.IsNotFoundError(mapped) {
			log.Debug("generation not found",
				slog.String("generation_id", id.String()),
				slog.String("user_id", ownerID.String()))
		} else {
			log.Error("failed to get generation",
				slog.String("error", err.Error()),
				slog.String("generation_id", id.String()))
		}
		return nil, mapped
	}

	gen.GenerationDuration = time.Duration(durationMs) * time.Millisecond
	return &gen, nil
}

// ListByOwner implements store.GenerationStore.ListByOwner
// Results are ordered most recent first. Returns an empty slice when the
// user has no generations.
func (s *GenerationStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Generation, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT ` + generationColumns + `
		FROM generations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := s.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		log.Error("failed to query generations by owner",
			slog.String("error", err.Error()),
			slog.String("user_id", ownerID.String()))
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Error("failed to close rows", slog.String("error", err.Error()))
		}
	}()

	generations := []*domain.Generation{}
	for rows.Next() {
		var gen domain.Generation
		var durationMs int64

		err := rows.Scan(
			&gen.ID,
			&gen.UserID,
			&gen.Name,
			&gen.Model,
			&gen.SourceTextHash,
			&gen.SourceTextLength,
			&gen.GeneratedCount,
			&gen.AcceptedUneditedCount,
			&gen.AcceptedEditedCount,
			&durationMs,
			&gen.CreatedAt,
			&gen.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to scan generation row",
				slog.String("error", err.Error()))
			return nil, err
		}

		gen.GenerationDuration = time.Duration(durationMs) * time.Millisecond
		generations = append(generations, &gen)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning generation rows",
			slog.String("error", err.Error()))
		return nil, err
	}

	return generations, nil
}

// UpdateAcceptedCounts implements store.GenerationStore.UpdateAcceptedCounts
func (s *GenerationStore) UpdateAcceptedCounts(ctx context.Context, id, ownerID uuid.UUID, unedited, edited int) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE generations
		SET accepted_unedited_count = $1, accepted_edited_count = $2, updated_at = $3
		WHERE id = $4 AND user_id = $5
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		unedited,
		edited,
		time.Now().UTC(),
		id,
		ownerID,
	)
	if err != nil {
		log.Error("failed to update accepted counts",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrGenerationNotFound); err != nil {
		log.Debug("generation not found for accepted-counts update",
			slog.String("generation_id", id.String()))
		return err
	}

	log.Info("accepted counts updated",
		slog.String("generation_id", id.String()),
		slog.Int("accepted_unedited", unedited),
		slog.Int("accepted_edited", edited))
	return nil
}

// Delete implements store.GenerationStore.Delete
// The caller removes the generation's flashcards first, in the same
// transaction; the DB-level ON DELETE CASCADE is only a backstop.
func (s *GenerationStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		DELETE FROM generations
		WHERE id = $1 AND user_id = $2
	`

	result, err := s.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		log.Error("failed to delete generation",
			slog.String("error", err.Error()),
			slog.String("generation_id", id.String()))
		return err
	}

	if err := checkRowsAffected(result, store.ErrGenerationNotFound); err != nil {
		log.Debug("generation not found for delete",
			slog.String("generation_id", id.String()))
		return err
	}

	log.Info("generation deleted",
		slog.String("generation_id", id.String()),
		slog.String("user_id", ownerID.String()))
	return nil
}
