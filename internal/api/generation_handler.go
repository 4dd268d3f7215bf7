package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/api/middleware"
	"github.com/mkowalczyk/cardgen-api/internal/api/shared"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/service"
)

// GenerationHandler handles generation-related HTTP requests.
type GenerationHandler struct {
	generationService service.GenerationService
	defaultProvider   string
	validator         *validator.Validate
	logger            *slog.Logger
}

// NewGenerationHandler creates a new GenerationHandler.
// defaultProvider is used when a generation request names no provider.
func NewGenerationHandler(
	generationService service.GenerationService,
	defaultProvider string,
	log *slog.Logger,
) *GenerationHandler {
	if log == nil {
		log = slog.Default()
	}

	return &GenerationHandler{
		generationService: generationService,
		defaultProvider:   defaultProvider,
		validator:         validator.New(),
		logger:            log.With(slog.String("component", "generation_handler")),
	}
}

// Generate handles POST /generations requests.
// It validates the source text, calls the LLM provider and returns the
// proposals for review together with the persisted generation header.
func (h *GenerationHandler) Generate(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req GenerateRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	provider := req.Provider
	if provider == "" {
		provider = h.defaultProvider
	}

	result, err := h.generationService.GenerateFlashcards(r.Context(), userID, provider, req.SourceText)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("generation request completed",
		slog.String("generation_id", result.Generation.ID.String()),
		slog.Int("proposal_count", len(result.Proposals)))

	shared.RespondWithJSON(w, r, http.StatusCreated, GenerateResponse{
		GenerationID:       result.Generation.ID,
		GenerationName:     result.Generation.Name,
		Model:              result.Generation.Model,
		FlashcardProposals: proposalsToResponse(result.Proposals),
		Stats: GenerationStatsResponse{
			GeneratedCount:     result.Generation.GeneratedCount,
			GenerationDuration: FormatISODuration(result.Generation.GenerationDuration),
		},
	})
}

// List handles GET /generations requests.
func (h *GenerationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	generations, err := h.generationService.ListGenerations(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	result := make([]GenerationResponse, 0, len(generations))
	for _, gen := range generations {
		result = append(result, generationToResponse(gen))
	}
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Get handles GET /generations/{id} requests, returning the header together
// with the stored flashcard set.
func (h *GenerationHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	generationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid generation ID")
		return
	}

	gen, cards, err := h.generationService.GetGeneration(r.Context(), userID, generationID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, GenerationDetailResponse{
		GenerationResponse: generationToResponse(gen),
		Flashcards:         flashcardsToResponse(cards),
	})
}

// ReplaceFlashcards handles PUT /generations/{id}/flashcards requests,
// committing a reviewed selection as the generation's stored flashcard set.
func (h *GenerationHandler) ReplaceFlashcards(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	generationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid generation ID")
		return
	}

	var req ReplaceFlashcardsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	accepted := make([]service.AcceptedFlashcard, 0, len(req.Flashcards))
	for _, card := range req.Flashcards {
		accepted = append(accepted, service.AcceptedFlashcard{
			Front:  card.Front,
			Back:   card.Back,
			Source: domain.FlashcardSource(card.Source),
		})
	}

	saved, err := h.generationService.ReplaceFlashcards(r.Context(), userID, generationID, accepted)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("flashcard set committed",
		slog.String("generation_id", generationID.String()),
		slog.Int("accepted_count", len(saved)))

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardsToResponse(saved))
}

// Delete handles DELETE /generations/{id} requests.
func (h *GenerationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	generationID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid generation ID")
		return
	}

	if err := h.generationService.DeleteGeneration(r.Context(), userID, generationID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
