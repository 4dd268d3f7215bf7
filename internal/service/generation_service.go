package service

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// Source text length bounds, in bytes. Texts outside this range are rejected
// before any provider call is made.
const (
	SourceTextMinLength = 1000
	SourceTextMaxLength = 10000
)

// generationNameLayout produces names like "Generation 2026-08-29 14:05".
const generationNameLayout = "2006-01-02 15:04"

// GenerationResult is the outcome of a successful generation call: the
// persisted header plus the parsed proposals, which are returned to the user
// for review and are NOT persisted until the user commits their selection.
type GenerationResult struct {
	Generation *domain.Generation
	Proposals  []domain.FlashcardProposal
}

// AcceptedFlashcard is one reviewed card the user chose to keep. Source
// records whether the user edited the proposal before accepting it.
type AcceptedFlashcard struct {
	Front  string
	Back   string
	Source domain.FlashcardSource
}

// GenerationService orchestrates LLM-backed flashcard generation and the
// lifecycle of generation records.
type GenerationService interface {
	// GenerateFlashcards validates the source text, calls the named provider
	// and persists a generation header recording the call. The proposals
	// themselves are returned for review, not stored. Provider failures leave
	// no trace in the database.
	GenerateFlashcards(ctx context.Context, userID uuid.UUID, provider, sourceText string) (*GenerationResult, error)

	// ReplaceFlashcards atomically replaces the stored flashcard set of a
	// generation with the accepted cards, in submission order, and updates
	// the generation's accepted counts. Calling it again with a different
	// selection discards the previous set.
	ReplaceFlashcards(ctx context.Context, userID, generationID uuid.UUID, accepted []AcceptedFlashcard) ([]*domain.Flashcard, error)

	// GetGeneration retrieves a generation header together with its stored
	// flashcards, scoped to the owner.
	GetGeneration(ctx context.Context, userID, generationID uuid.UUID) (*domain.Generation, []*domain.Flashcard, error)

	// ListGenerations retrieves the user's generation headers, most recent
	// first.
	ListGenerations(ctx context.Context, userID uuid.UUID) ([]*domain.Generation, error)

	// DeleteGeneration removes a generation and all its flashcards.
	DeleteGeneration(ctx context.Context, userID, generationID uuid.UUID) error
}

// generationServiceImpl implements the GenerationService interface.
type generationServiceImpl struct {
	db              *sql.DB
	generationStore store.GenerationStore
	flashcardStore  store.FlashcardStore
	generators      map[string]generation.Generator
	timeout         time.Duration
	timeFunc        func() time.Time
	logger          *slog.Logger
}

// NewGenerationService creates a new GenerationService.
// generators maps provider names to configured Generator implementations;
// timeout bounds each provider call. Returns an error if any required
// dependency is missing.
func NewGenerationService(
	db *sql.DB,
	generationStore store.GenerationStore,
	flashcardStore store.FlashcardStore,
	generators map[string]generation.Generator,
	timeout time.Duration,
	log *slog.Logger,
) (GenerationService, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}
	if generationStore == nil {
		return nil, errors.New("generationStore cannot be nil")
	}
	if flashcardStore == nil {
		return nil, errors.New("flashcardStore cannot be nil")
	}
	if len(generators) == 0 {
		return nil, errors.New("at least one generator must be configured")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = slog.Default()
	}

	return &generationServiceImpl{
		db:              db,
		generationStore: generationStore,
		flashcardStore:  flashcardStore,
		generators:      generators,
		timeout:         timeout,
		timeFunc:        time.Now,
		logger:          log.With(slog.String("component", "generation_service")),
	}, nil
}

// HashSourceText returns the lowercase hex SHA-256 digest of the source text.
// The hash identifies repeated submissions of the same text without storing
// the text itself.
func HashSourceText(sourceText string) string {
	sum := sha256.Sum256([]byte(sourceText))
	return hex.EncodeToString(sum[:])
}

// GenerateFlashcards implements GenerationService.GenerateFlashcards
func (s *generationServiceImpl) GenerateFlashcards(
	ctx context.Context,
	userID uuid.UUID,
	provider, sourceText string,
) (*GenerationResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if len(sourceText) < SourceTextMinLength || len(sourceText) > SourceTextMaxLength {
		log.Debug("rejected source text by length",
			slog.Int("length", len(sourceText)),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("%w: got %d characters, want between %d and %d",
			ErrSourceTextLength, len(sourceText), SourceTextMinLength, SourceTextMaxLength)
	}

	generator, ok := s.generators[provider]
	if !ok {
		log.Debug("rejected unknown provider",
			slog.String("provider", provider))
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := s.timeFunc()
	output, err := generator.GenerateProposals(callCtx, sourceText)
	if err != nil {
		log.Error("provider call failed",
			slog.String("error", err.Error()),
			slog.String("provider", provider),
			slog.String("user_id", userID.String()))
		return nil, fmt.Errorf("generation via %s failed: %w", provider, err)
	}
	duration := s.timeFunc().Sub(start)

	name := "Generation " + start.UTC().Format(generationNameLayout)
	gen, err := domain.NewGeneration(
		userID,
		name,
		output.Model,
		HashSourceText(sourceText),
		len(sourceText),
		len(output.Proposals),
		duration,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build generation record: %w", err)
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.generationStore.WithTx(tx).Create(ctx, gen)
	})
	if err != nil {
		log.Error("failed to persist generation record",
			slog.String("error", err.Error()),
			slog.String("generation_id", gen.ID.String()))
		return nil, fmt.Errorf("failed to persist generation: %w", err)
	}

	log.Info("generation completed",
		slog.String("generation_id", gen.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("provider", provider),
		slog.String("model", output.Model),
		slog.Int("proposal_count", len(output.Proposals)),
		slog.Duration("duration", duration))

	return &GenerationResult{
		Generation: gen,
		Proposals:  output.Proposals,
	}, nil
}

// ReplaceFlashcards implements GenerationService.ReplaceFlashcards
// The generation row is locked for the duration of the transaction so two
// concurrent replacements of the same set serialize instead of interleaving.
func (s *generationServiceImpl) ReplaceFlashcards(
	ctx context.Context,
	userID, generationID uuid.UUID,
	accepted []AcceptedFlashcard,
) ([]*domain.Flashcard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	// The caller supplies the final source tag per card; any valid tag is
	// accepted, including manual.
	for i, card := range accepted {
		if !card.Source.Valid() {
			return nil, fmt.Errorf("card at index %d: %w: %q",
				i, domain.ErrFlashcardBadSource, card.Source)
		}
	}

	var saved []*domain.Flashcard
	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txGenStore := s.generationStore.WithTx(tx)
		txCardStore := s.flashcardStore.WithTx(tx)

		gen, err := txGenStore.GetForUpdate(ctx, generationID, userID)
		if err != nil {
			return err
		}

		if err := txCardStore.DeleteByGeneration(ctx, gen.ID); err != nil {
			return fmt.Errorf("failed to clear previous flashcard set: %w", err)
		}

		cards := make([]*domain.Flashcard, 0, len(accepted))
		unedited, edited := 0, 0
		for i, a := range accepted {
			genID := gen.ID
			card, err := domain.NewFlashcard(userID, &genID, a.Front, a.Back, a.Source, i+1)
			if err != nil {
				return fmt.Errorf("card at index %d: %w", i, err)
			}
			cards = append(cards, card)

			// Manual cards count toward neither accepted bucket.
			switch a.Source {
			case domain.SourceAIFull:
				unedited++
			case domain.SourceAIEdited:
				edited++
			}
		}

		if err := txCardStore.CreateMultiple(ctx, cards); err != nil {
			return fmt.Errorf("failed to save accepted flashcards: %w", err)
		}

		if err := txGenStore.UpdateAcceptedCounts(ctx, gen.ID, userID, unedited, edited); err != nil {
			return fmt.Errorf("failed to update accepted counts: %w", err)
		}

		saved = cards
		return nil
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("generation not found for replace",
				slog.String("generation_id", generationID.String()),
				slog.String("user_id", userID.String()))
		} else {
			log.Error("failed to replace flashcard set",
				slog.String("error", err.Error()),
				slog.String("generation_id", generationID.String()))
		}
		return nil, err
	}

	log.Info("flashcard set replaced",
		slog.String("generation_id", generationID.String()),
		slog.String("user_id", userID.String()),
		slog.Int("accepted_count", len(saved)))

	return saved, nil
}

// GetGeneration implements GenerationService.GetGeneration
func (s *generationServiceImpl) GetGeneration(
	ctx context.Context,
	userID, generationID uuid.UUID,
) (*domain.Generation, []*domain.Flashcard, error) {
	gen, err := s.generationStore.GetByID(ctx, generationID, userID)
	if err != nil {
		return nil, nil, err
	}

	cards, err := s.flashcardStore.ListByGeneration(ctx, gen.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list generation flashcards: %w", err)
	}

	return gen, cards, nil
}

// ListGenerations implements GenerationService.ListGenerations
func (s *generationServiceImpl) ListGenerations(
	ctx context.Context,
	userID uuid.UUID,
) ([]*domain.Generation, error) {
	return s.generationStore.ListByOwner(ctx, userID)
}

// DeleteGeneration implements GenerationService.DeleteGeneration
// Flashcards are removed explicitly before the header so the whole removal
// is visible in one transaction; the schema cascade is only a backstop.
func (s *generationServiceImpl) DeleteGeneration(
	ctx context.Context,
	userID, generationID uuid.UUID,
) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		txGenStore := s.generationStore.WithTx(tx)
		txCardStore := s.flashcardStore.WithTx(tx)

		gen, err := txGenStore.GetForUpdate(ctx, generationID, userID)
		if err != nil {
			return err
		}

		if err := txCardStore.DeleteByGeneration(ctx, gen.ID); err != nil {
			return fmt.Errorf("failed to delete generation flashcards: %w", err)
		}

		return txGenStore.Delete(ctx, gen.ID, userID)
	})

	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("generation not found for delete",
				slog.String("generation_id", generationID.String()))
		} else {
			log.Error("failed to delete generation",
				slog.String("error", err.Error()),
				slog.String("generation_id", generationID.String()))
		}
		return err
	}

	log.Info("generation deleted",
		slog.String("generation_id", generationID.String()),
		slog.String("user_id", userID.String()))
	return nil
}
