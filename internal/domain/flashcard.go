package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Flashcard-specific validation errors
var (
	ErrFlashcardIDEmpty     = errors.New("flashcard ID cannot be empty")
	ErrFlashcardUserIDEmpty = errors.New("flashcard user ID cannot be empty")
	ErrFlashcardFrontEmpty  = errors.New("flashcard front cannot be empty")
	ErrFlashcardBackEmpty   = errors.New("flashcard back cannot be empty")
	ErrFlashcardOrderRange  = errors.New("flashcard display order must be >= 1")
	ErrFlashcardBadSource   = errors.New("invalid flashcard source")
)

// FlashcardSource records how a flashcard came to exist: created by hand,
// accepted verbatim from an AI proposal, or accepted after the user edited it.
type FlashcardSource string

const (
	SourceManual   FlashcardSource = "manual"
	SourceAIFull   FlashcardSource = "ai-full"
	SourceAIEdited FlashcardSource = "ai-edited"
)

// ParseFlashcardSource converts a raw string into a FlashcardSource.
func ParseFlashcardSource(s string) (FlashcardSource, error) {
	switch FlashcardSource(s) {
	case SourceManual, SourceAIFull, SourceAIEdited:
		return FlashcardSource(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrFlashcardBadSource, s)
}

// Valid reports whether the source is one of the known values.
func (s FlashcardSource) Valid() bool {
	switch s {
	case SourceManual, SourceAIFull, SourceAIEdited:
		return true
	}
	return false
}

// FlashcardProposal is a transient candidate flashcard produced by parsing
// provider output. Proposals are never persisted directly; the user reviews,
// possibly edits, and commits them as Flashcards in a separate step.
type FlashcardProposal struct {
	Front  string          `json:"front"`
	Back   string          `json:"back"`
	Source FlashcardSource `json:"source"`
}

// NewProposal builds a proposal tagged as unedited AI output.
func NewProposal(front, back string) FlashcardProposal {
	return FlashcardProposal{
		Front:  front,
		Back:   back,
		Source: SourceAIFull,
	}
}

// Flashcard is a persisted card owned by exactly one user. GenerationID is a
// weak back-reference: cards created by hand have none, and deleting a
// generation removes its cards.
type Flashcard struct {
	ID           uuid.UUID       `json:"id"`
	UserID       uuid.UUID       `json:"user_id"`
	GenerationID *uuid.UUID      `json:"generation_id,omitempty"`
	Front        string          `json:"front"`
	Back         string          `json:"back"`
	Source       FlashcardSource `json:"source"`
	DisplayOrder int             `json:"display_order"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// NewFlashcard creates a Flashcard with a fresh ID and timestamps.
// generationID may be nil for manually created cards.
func NewFlashcard(
	userID uuid.UUID,
	generationID *uuid.UUID,
	front, back string,
	source FlashcardSource,
	displayOrder int,
) (*Flashcard, error) {
	now := time.Now().UTC()
	card := &Flashcard{
		ID:           uuid.New(),
		UserID:       userID,
		GenerationID: generationID,
		Front:        front,
		Back:         back,
		Source:       source,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks if the Flashcard has valid data.
func (f *Flashcard) Validate() error {
	if f.ID == uuid.Nil {
		return ErrFlashcardIDEmpty
	}

	if f.UserID == uuid.Nil {
		return ErrFlashcardUserIDEmpty
	}

	if f.Front == "" {
		return ErrFlashcardFrontEmpty
	}

	if f.Back == "" {
		return ErrFlashcardBackEmpty
	}

	if f.DisplayOrder < 1 {
		return ErrFlashcardOrderRange
	}

	if !f.Source.Valid() {
		return fmt.Errorf("%w: %q", ErrFlashcardBadSource, f.Source)
	}

	return nil
}
