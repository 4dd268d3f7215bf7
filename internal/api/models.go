package api

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
)

// Common request/response structures

// RegisterRequest defines the payload for the user registration endpoint.
type RegisterRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=12,max=72"`
}

// LoginRequest defines the payload for the user login endpoint.
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=1"`
}

// AuthResponse defines the successful response for authentication endpoints.
type AuthResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshTokenRequest defines the payload for the token refresh endpoint.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse defines the successful response for the token refresh
// endpoint.
type RefreshTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// GenerateRequest defines the payload for the flashcard generation endpoint.
// Provider is optional; an empty value selects the configured default.
type GenerateRequest struct {
	SourceText string `json:"source_text" validate:"required"`
	Provider   string `json:"provider,omitempty"`
}

// ProposalResponse is one AI-proposed flashcard awaiting user review.
type ProposalResponse struct {
	Front  string `json:"front"`
	Back   string `json:"back"`
	Source string `json:"source"`
}

// GenerationStatsResponse summarizes a provider call.
// GenerationDuration is an ISO-8601 duration, e.g. "PT3S".
type GenerationStatsResponse struct {
	GeneratedCount     int    `json:"generated_count"`
	GenerationDuration string `json:"generation_duration"`
}

// GenerateResponse defines the response of the flashcard generation endpoint.
type GenerateResponse struct {
	GenerationID       uuid.UUID               `json:"generation_id"`
	GenerationName     string                  `json:"generation_name"`
	Model              string                  `json:"model"`
	FlashcardProposals []ProposalResponse      `json:"flashcard_proposals"`
	Stats              GenerationStatsResponse `json:"stats"`
}

// GenerationResponse is a stored generation header.
type GenerationResponse struct {
	ID                    uuid.UUID `json:"id"`
	Name                  string    `json:"generation_name"`
	Model                 string    `json:"model"`
	SourceTextHash        string    `json:"source_text_hash"`
	SourceTextLength      int       `json:"source_text_length"`
	GeneratedCount        int       `json:"generated_count"`
	AcceptedUneditedCount int       `json:"accepted_unedited_count"`
	AcceptedEditedCount   int       `json:"accepted_edited_count"`
	GenerationDuration    string    `json:"generation_duration"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// GenerationDetailResponse is a generation header together with its stored
// flashcards.
type GenerationDetailResponse struct {
	GenerationResponse
	Flashcards []FlashcardResponse `json:"flashcards"`
}

// AcceptedFlashcardRequest is one reviewed card in a flashcard-set commit.
// The caller supplies the final source tag per card.
type AcceptedFlashcardRequest struct {
	Front  string `json:"front"  validate:"required"`
	Back   string `json:"back"   validate:"required"`
	Source string `json:"source" validate:"required,oneof=manual ai-full ai-edited"`
}

// ReplaceFlashcardsRequest defines the payload for committing a reviewed
// flashcard selection. An empty list clears the stored set.
type ReplaceFlashcardsRequest struct {
	Flashcards []AcceptedFlashcardRequest `json:"flashcards" validate:"dive"`
}

// CreateFlashcardRequest defines the payload for direct flashcard creation.
// An omitted source defaults to manual.
type CreateFlashcardRequest struct {
	Front        string     `json:"front"  validate:"required"`
	Back         string     `json:"back"   validate:"required"`
	Source       string     `json:"source" validate:"omitempty,oneof=manual ai-full ai-edited"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
}

// UpdateFlashcardRequest defines the payload for flashcard edits. Omitted
// fields are left unchanged.
type UpdateFlashcardRequest struct {
	Front *string `json:"front,omitempty"`
	Back  *string `json:"back,omitempty"`
}

// FlashcardResponse is a stored flashcard.
type FlashcardResponse struct {
	ID           uuid.UUID  `json:"id"`
	GenerationID *uuid.UUID `json:"generation_id,omitempty"`
	Front        string     `json:"front"`
	Back         string     `json:"back"`
	Source       string     `json:"source"`
	DisplayOrder int        `json:"display_order"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// FormatISODuration renders a duration as a whole-second ISO-8601 duration
// string ("PT3S"). Sub-second remainders are truncated.
func FormatISODuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return fmt.Sprintf("PT%dS", int64(d/time.Second))
}

func generationToResponse(gen *domain.Generation) GenerationResponse {
	return GenerationResponse{
		ID:                    gen.ID,
		Name:                  gen.Name,
		Model:                 gen.Model,
		SourceTextHash:        gen.SourceTextHash,
		SourceTextLength:      gen.SourceTextLength,
		GeneratedCount:        gen.GeneratedCount,
		AcceptedUneditedCount: gen.AcceptedUneditedCount,
		AcceptedEditedCount:   gen.AcceptedEditedCount,
		GenerationDuration:    FormatISODuration(gen.GenerationDuration),
		CreatedAt:             gen.CreatedAt,
		UpdatedAt:             gen.UpdatedAt,
	}
}

func flashcardToResponse(card *domain.Flashcard) FlashcardResponse {
	return FlashcardResponse{
		ID:           card.ID,
		GenerationID: card.GenerationID,
		Front:        card.Front,
		Back:         card.Back,
		Source:       string(card.Source),
		DisplayOrder: card.DisplayOrder,
		CreatedAt:    card.CreatedAt,
		UpdatedAt:    card.UpdatedAt,
	}
}

func flashcardsToResponse(cards []*domain.Flashcard) []FlashcardResponse {
	result := make([]FlashcardResponse, 0, len(cards))
	for _, card := range cards {
		result = append(result, flashcardToResponse(card))
	}
	return result
}

func proposalsToResponse(proposals []domain.FlashcardProposal) []ProposalResponse {
	result := make([]ProposalResponse, 0, len(proposals))
	for _, p := range proposals {
		result = append(result, ProposalResponse{
			Front:  p.Front,
			Back:   p.Back,
			Source: string(p.Source),
		})
	}
	return result
}
