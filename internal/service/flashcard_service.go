package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// FlashcardUpdate carries the editable fields of a flashcard. Nil fields are
// left unchanged.
type FlashcardUpdate struct {
	Front *string
	Back  *string
}

// FlashcardService provides manual flashcard management. Cards created here
// may optionally reference one of the user's generations; cards without a
// generation are purely manual.
type FlashcardService interface {
	// CreateFlashcard creates a single flashcard with the given source tag
	// (an empty source defaults to manual). When generationID is non-nil
	// the generation must exist and belong to the user, and the card is
	// appended at the next free display order within that generation.
	CreateFlashcard(ctx context.Context, userID uuid.UUID, generationID *uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error)

	// GetFlashcard retrieves one flashcard, scoped to the owner.
	GetFlashcard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Flashcard, error)

	// ListFlashcards retrieves all of the user's flashcards, most recent
	// first.
	ListFlashcards(ctx context.Context, userID uuid.UUID) ([]*domain.Flashcard, error)

	// UpdateFlashcard applies the given changes to a card. Editing the text
	// of an unedited AI card retags it as ai-edited.
	UpdateFlashcard(ctx context.Context, userID, cardID uuid.UUID, update FlashcardUpdate) (*domain.Flashcard, error)

	// DeleteFlashcard removes one flashcard, scoped to the owner.
	DeleteFlashcard(ctx context.Context, userID, cardID uuid.UUID) error
}

// flashcardServiceImpl implements the FlashcardService interface.
type flashcardServiceImpl struct {
	db              *sql.DB
	flashcardStore  store.FlashcardStore
	generationStore store.GenerationStore
	logger          *slog.Logger
}

// NewFlashcardService creates a new FlashcardService.
func NewFlashcardService(
	db *sql.DB,
	flashcardStore store.FlashcardStore,
	generationStore store.GenerationStore,
	log *slog.Logger,
) (FlashcardService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if flashcardStore == nil {
		return nil, errors.New("flashcardStore cannot be nil")
	}
	if generationStore == nil {
		return nil, errors.New("generationStore cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &flashcardServiceImpl{
		db:              db,
		flashcardStore:  flashcardStore,
		generationStore: generationStore,
		logger:          log.With(slog.String("component", "flashcard_service")),
	}, nil
}

// CreateFlashcard implements FlashcardService.CreateFlashcard
func (s *flashcardServiceImpl) CreateFlashcard(
	ctx context.Context,
	userID uuid.UUID,
	generationID *uuid.UUID,
	front, back string,
	source domain.FlashcardSource,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if source == "" {
		source = domain.SourceManual
	}

	var card *domain.Flashcard

	if generationID != nil {
		// Lock the generation row so the appended display order stays
		// unique against concurrent appends and replaces, and so the
		// ownership check doubles as an existence check.
		err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
			txGenStore := s.generationStore.WithTx(tx)
			txCardStore := s.flashcardStore.WithTx(tx)

			if _, err := txGenStore.GetForUpdate(ctx, *generationID, userID); err != nil {
				return err
			}

			order, err := txCardStore.NextDisplayOrder(ctx, *generationID)
			if err != nil {
				return fmt.Errorf("failed to compute display order: %w", err)
			}

			card, err = domain.NewFlashcard(userID, generationID, front, back, source, order)
			if err != nil {
				return err
			}
			return txCardStore.Create(ctx, card)
		})
		if err != nil {
			if store.IsNotFoundError(err) {
				log.Debug("generation lookup failed for new card",
					slog.String("generation_id", generationID.String()),
					slog.String("user_id", userID.String()))
				return nil, err
			}
			log.Error("failed to create flashcard",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, err
		}
	} else {
		var err error
		card, err = domain.NewFlashcard(userID, nil, front, back, source, 1)
		if err != nil {
			return nil, err
		}
		if err := s.flashcardStore.Create(ctx, card); err != nil {
			log.Error("failed to create flashcard",
				slog.String("error", err.Error()),
				slog.String("user_id", userID.String()))
			return nil, fmt.Errorf("failed to create flashcard: %w", err)
		}
	}

	log.Info("flashcard created",
		slog.String("flashcard_id", card.ID.String()),
		slog.String("source", string(card.Source)),
		slog.String("user_id", userID.String()))
	return card, nil
}

// GetFlashcard implements FlashcardService.GetFlashcard
func (s *flashcardServiceImpl) GetFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) (*domain.Flashcard, error) {
	return s.flashcardStore.GetByID(ctx, cardID, userID)
}

// ListFlashcards implements FlashcardService.ListFlashcards
func (s *flashcardServiceImpl) ListFlashcards(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Flashcard, error) {
	return s.flashcardStore.ListByOwner(ctx, userID)
}

// UpdateFlashcard implements FlashcardService.UpdateFlashcard
func (s *flashcardServiceImpl) UpdateFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
	update FlashcardUpdate,
) (*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	card, err := s.flashcardStore.GetByID(ctx, cardID, userID)
	if err != nil {
		return nil, err
	}

	changed := false
	if update.Front != nil && *update.Front != card.Front {
		card.Front = *update.Front
		changed = true
	}
	if update.Back != nil && *update.Back != card.Back {
		card.Back = *update.Back
		changed = true
	}

	if !changed {
		return card, nil
	}

	if card.Source == domain.SourceAIFull {
		card.Source = domain.SourceAIEdited
	}

	if err := s.flashcardStore.Update(ctx, card); err != nil {
		log.Error("failed to update flashcard",
			slog.String("error", err.Error()),
			slog.String("flashcard_id", cardID.String()))
		return nil, err
	}

	log.Info("flashcard updated",
		slog.String("flashcard_id", cardID.String()),
		slog.String("source", string(card.Source)))
	return card, nil
}

// DeleteFlashcard implements FlashcardService.DeleteFlashcard
func (s *flashcardServiceImpl) DeleteFlashcard(
	ctx context.Context,
	userID, cardID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.flashcardStore.Delete(ctx, cardID, userID); err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("flashcard not found for delete",
				slog.String("flashcard_id", cardID.String()))
		} else {
			log.Error("failed to delete flashcard",
				slog.String("error", err.Error()),
				slog.String("flashcard_id", cardID.String()))
		}
		return err
	}

	log.Info("flashcard deleted",
		slog.String("flashcard_id", cardID.String()),
		slog.String("user_id", userID.String()))
	return nil
}
