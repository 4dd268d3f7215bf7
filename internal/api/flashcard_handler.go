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
	"github.com/mkowalczyk/cardgen-api/internal/service"
)

// FlashcardHandler handles flashcard-related HTTP requests.
type FlashcardHandler struct {
	flashcardService service.FlashcardService
	validator        *validator.Validate
	logger           *slog.Logger
}

// NewFlashcardHandler creates a new FlashcardHandler.
func NewFlashcardHandler(flashcardService service.FlashcardService, log *slog.Logger) *FlashcardHandler {
	if log == nil {
		log = slog.Default()
	}

	return &FlashcardHandler{
		flashcardService: flashcardService,
		validator:        validator.New(),
		logger:           log.With(slog.String("component", "flashcard_handler")),
	}
}

// Create handles POST /flashcards requests for manual card creation.
func (h *FlashcardHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	card, err := h.flashcardService.CreateFlashcard(r.Context(), userID, req.GenerationID,
		req.Front, req.Back, domain.FlashcardSource(req.Source))
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, flashcardToResponse(card))
}

// List handles GET /flashcards requests.
func (h *FlashcardHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	cards, err := h.flashcardService.ListFlashcards(r.Context(), userID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardsToResponse(cards))
}

// Get handles GET /flashcards/{id} requests.
func (h *FlashcardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard ID")
		return
	}

	card, err := h.flashcardService.GetFlashcard(r.Context(), userID, cardID)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// Update handles PUT /flashcards/{id} requests.
func (h *FlashcardHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard ID")
		return
	}

	var req UpdateFlashcardRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	card, err := h.flashcardService.UpdateFlashcard(r.Context(), userID, cardID, service.FlashcardUpdate{
		Front: req.Front,
		Back:  req.Back,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, flashcardToResponse(card))
}

// Delete handles DELETE /flashcards/{id} requests.
func (h *FlashcardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok || userID == uuid.Nil {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	cardID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid flashcard ID")
		return
	}

	if err := h.flashcardService.DeleteFlashcard(r.Context(), userID, cardID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
