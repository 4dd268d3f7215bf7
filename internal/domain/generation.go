package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Generation-specific validation errors
var (
	ErrGenerationIDEmpty     = errors.New("generation ID cannot be empty")
	ErrGenerationUserIDEmpty = errors.New("generation user ID cannot be empty")
	ErrGenerationNameEmpty   = errors.New("generation name cannot be empty")
	ErrGenerationModelEmpty  = errors.New("generation model cannot be empty")
	ErrGenerationHashEmpty   = errors.New("generation source text hash cannot be empty")
	ErrGenerationBadCount    = errors.New("generation counts cannot be negative")
)

// Generation is the persisted record of one provider invocation: who asked,
// which model answered, how long it took, and a fingerprint of the submitted
// text. GeneratedCount is fixed at creation; the accepted counts are
// caller-maintained telemetry updated when the flashcard set is committed.
type Generation struct {
	ID                    uuid.UUID     `json:"id"`
	UserID                uuid.UUID     `json:"user_id"`
	Name                  string        `json:"generation_name"`
	Model                 string        `json:"model"`
	SourceTextHash        string        `json:"source_text_hash"`
	SourceTextLength      int           `json:"source_text_length"`
	GeneratedCount        int           `json:"generated_count"`
	AcceptedUneditedCount int           `json:"accepted_unedited_count"`
	AcceptedEditedCount   int           `json:"accepted_edited_count"`
	GenerationDuration    time.Duration `json:"-"`
	CreatedAt             time.Time     `json:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at"`
}

// NewGeneration creates a Generation header for a completed provider call.
// Accepted counts start at zero; acceptance happens in a later commit step.
// A negative duration (clock anomaly) is clamped to zero rather than rejected.
func NewGeneration(
	userID uuid.UUID,
	name, model, sourceTextHash string,
	sourceTextLength, generatedCount int,
	duration time.Duration,
) (*Generation, error) {
	if duration < 0 {
		duration = 0
	}

	now := time.Now().UTC()
	gen := &Generation{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               name,
		Model:              model,
		SourceTextHash:     sourceTextHash,
		SourceTextLength:   sourceTextLength,
		GeneratedCount:     generatedCount,
		GenerationDuration: duration,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := gen.Validate(); err != nil {
		return nil, err
	}

	return gen, nil
}

// Validate checks if the Generation has valid data.
func (g *Generation) Validate() error {
	if g.ID == uuid.Nil {
		return ErrGenerationIDEmpty
	}

	if g.UserID == uuid.Nil {
		return ErrGenerationUserIDEmpty
	}

	if g.Name == "" {
		return ErrGenerationNameEmpty
	}

	if g.Model == "" {
		return ErrGenerationModelEmpty
	}

	if g.SourceTextHash == "" {
		return ErrGenerationHashEmpty
	}

	if g.GeneratedCount < 0 || g.AcceptedUneditedCount < 0 || g.AcceptedEditedCount < 0 {
		return ErrGenerationBadCount
	}

	return nil
}
