package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/service"
	"github.com/mkowalczyk/cardgen-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGenerationRouter(userID uuid.UUID, svc service.GenerationService) http.Handler {
	handler := NewGenerationHandler(svc, "openai", nil)

	r := chi.NewRouter()
	r.Use(withUserID(userID))
	r.Post("/generations", handler.Generate)
	r.Get("/generations", handler.List)
	r.Get("/generations/{id}", handler.Get)
	r.Put("/generations/{id}/flashcards", handler.ReplaceFlashcards)
	r.Delete("/generations/{id}", handler.Delete)
	return r
}

func generationFixture(userID uuid.UUID) *domain.Generation {
	now := time.Now().UTC()
	return &domain.Generation{
		ID:                 uuid.New(),
		UserID:             userID,
		Name:               "Generation 2026-08-29 10:15",
		Model:              "gpt-4o-mini",
		SourceTextHash:     "deadbeef",
		SourceTextLength:   2000,
		GeneratedCount:     2,
		GenerationDuration: 3 * time.Second,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func flashcardFixture(userID uuid.UUID, generationID *uuid.UUID, order int) *domain.Flashcard {
	now := time.Now().UTC()
	return &domain.Flashcard{
		ID:           uuid.New(),
		UserID:       userID,
		GenerationID: generationID,
		Front:        fmt.Sprintf("Question %d", order),
		Back:         fmt.Sprintf("Answer %d", order),
		Source:       domain.SourceAIFull,
		DisplayOrder: order,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestGenerationHandlerGenerate(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("returns proposals and stats", func(t *testing.T) {
		t.Parallel()

		gen := generationFixture(userID)
		svc := &fakeGenerationService{
			generateResult: &service.GenerationResult{
				Generation: gen,
				Proposals: []domain.FlashcardProposal{
					{Front: "What is Go?", Back: "A programming language", Source: domain.SourceAIFull},
					{Front: "Who made it?", Back: "Google", Source: domain.SourceAIFull},
				},
			},
		}
		router := newGenerationRouter(userID, svc)

		body := `{"source_text": "` + strings.Repeat("a", 1000) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)

		var resp GenerateResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, gen.ID, resp.GenerationID)
		assert.Equal(t, gen.Name, resp.GenerationName)
		assert.Equal(t, "gpt-4o-mini", resp.Model)
		require.Len(t, resp.FlashcardProposals, 2)
		assert.Equal(t, "What is Go?", resp.FlashcardProposals[0].Front)
		assert.Equal(t, "ai-full", resp.FlashcardProposals[0].Source)
		assert.Equal(t, 2, resp.Stats.GeneratedCount)
		assert.Equal(t, "PT3S", resp.Stats.GenerationDuration)
	})

	t.Run("defaults the provider when the request names none", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{
			generateResult: &service.GenerationResult{Generation: generationFixture(userID)},
		}
		router := newGenerationRouter(userID, svc)

		body := `{"source_text": "` + strings.Repeat("a", 1000) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "openai", svc.gotProvider)
	})

	t.Run("passes an explicit provider through", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{
			generateResult: &service.GenerationResult{Generation: generationFixture(userID)},
		}
		router := newGenerationRouter(userID, svc)

		body := `{"source_text": "` + strings.Repeat("a", 1000) + `", "provider": "gemini"}`
		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "gemini", svc.gotProvider)
	})

	t.Run("missing source text is a validation error", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{}
		router := newGenerationRouter(userID, svc)

		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, svc.gotProvider)
	})

	t.Run("source text length error maps to 400", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{generateErr: service.ErrSourceTextLength}
		router := newGenerationRouter(userID, svc)

		req := httptest.NewRequest(http.MethodPost, "/generations",
			strings.NewReader(`{"source_text": "too short"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "between 1000 and 10000")
	})

	t.Run("provider failure maps to 502", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{
			generateErr: fmt.Errorf("%w: upstream status 500", generation.ErrProviderFailure),
		}
		router := newGenerationRouter(userID, svc)

		body := `{"source_text": "` + strings.Repeat("a", 1000) + `"}`
		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(body))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.NotContains(t, w.Body.String(), "upstream status 500")
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		t.Parallel()

		router := newGenerationRouter(userID, &fakeGenerationService{})

		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(`{not json`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		t.Parallel()

		handler := NewGenerationHandler(&fakeGenerationService{}, "openai", nil)

		req := httptest.NewRequest(http.MethodPost, "/generations", strings.NewReader(`{}`))
		w := httptest.NewRecorder()
		handler.Generate(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestGenerationHandlerList(t *testing.T) {
	t.Parallel()

	userID := uuid.New()
	gen := generationFixture(userID)
	router := newGenerationRouter(userID, &fakeGenerationService{
		listResult: []*domain.Generation{gen},
	})

	req := httptest.NewRequest(http.MethodGet, "/generations", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp []GenerationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 1)
	assert.Equal(t, gen.ID, resp[0].ID)
	assert.Equal(t, "PT3S", resp[0].GenerationDuration)
}

func TestGenerationHandlerGet(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("returns header and flashcards", func(t *testing.T) {
		t.Parallel()

		gen := generationFixture(userID)
		cards := []*domain.Flashcard{
			flashcardFixture(userID, &gen.ID, 1),
			flashcardFixture(userID, &gen.ID, 2),
		}
		router := newGenerationRouter(userID, &fakeGenerationService{
			getGeneration: gen,
			getFlashcards: cards,
		})

		req := httptest.NewRequest(http.MethodGet, "/generations/"+gen.ID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp GenerationDetailResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, gen.ID, resp.ID)
		require.Len(t, resp.Flashcards, 2)
		assert.Equal(t, 1, resp.Flashcards[0].DisplayOrder)
	})

	t.Run("missing generation maps to 404", func(t *testing.T) {
		t.Parallel()

		router := newGenerationRouter(userID, &fakeGenerationService{
			getErr: store.ErrGenerationNotFound,
		})

		req := httptest.NewRequest(http.MethodGet, "/generations/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("non-UUID id is rejected", func(t *testing.T) {
		t.Parallel()

		router := newGenerationRouter(userID, &fakeGenerationService{})

		req := httptest.NewRequest(http.MethodGet, "/generations/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid generation ID")
	})
}

func TestGenerationHandlerReplaceFlashcards(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("commits the accepted selection", func(t *testing.T) {
		t.Parallel()

		generationID := uuid.New()
		saved := []*domain.Flashcard{
			flashcardFixture(userID, &generationID, 1),
			flashcardFixture(userID, &generationID, 2),
		}
		svc := &fakeGenerationService{replaceResult: saved}
		router := newGenerationRouter(userID, svc)

		body := bytes.NewReader([]byte(`{
			"flashcards": [
				{"front": "Q1", "back": "A1", "source": "ai-full"},
				{"front": "Q2", "back": "A2 (edited)", "source": "ai-edited"}
			]
		}`))
		req := httptest.NewRequest(http.MethodPut,
			"/generations/"+generationID.String()+"/flashcards", body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		require.Len(t, svc.gotAccepted, 2)
		assert.Equal(t, domain.SourceAIFull, svc.gotAccepted[0].Source)
		assert.Equal(t, domain.SourceAIEdited, svc.gotAccepted[1].Source)

		var resp []FlashcardResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		require.Len(t, resp, 2)
	})

	t.Run("empty selection clears the set", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{replaceResult: []*domain.Flashcard{}}
		router := newGenerationRouter(userID, svc)

		req := httptest.NewRequest(http.MethodPut,
			"/generations/"+uuid.NewString()+"/flashcards",
			strings.NewReader(`{"flashcards": []}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[]`, w.Body.String())
	})

	t.Run("manual source passes validation", func(t *testing.T) {
		t.Parallel()

		generationID := uuid.New()
		svc := &fakeGenerationService{replaceResult: []*domain.Flashcard{
			flashcardFixture(userID, &generationID, 1),
		}}
		router := newGenerationRouter(userID, svc)

		req := httptest.NewRequest(http.MethodPut,
			"/generations/"+generationID.String()+"/flashcards",
			strings.NewReader(`{"flashcards": [{"front": "Q", "back": "A", "source": "manual"}]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, svc.gotAccepted, 1)
		assert.Equal(t, domain.SourceManual, svc.gotAccepted[0].Source)
	})

	t.Run("unknown source fails validation", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{}
		router := newGenerationRouter(userID, svc)

		req := httptest.NewRequest(http.MethodPut,
			"/generations/"+uuid.NewString()+"/flashcards",
			strings.NewReader(`{"flashcards": [{"front": "Q", "back": "A", "source": "imported"}]}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Nil(t, svc.gotAccepted)
	})

	t.Run("foreign generation maps to 404", func(t *testing.T) {
		t.Parallel()

		router := newGenerationRouter(userID, &fakeGenerationService{
			replaceErr: store.ErrGenerationNotFound,
		})

		req := httptest.NewRequest(http.MethodPut,
			"/generations/"+uuid.NewString()+"/flashcards",
			strings.NewReader(`{"flashcards": []}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestGenerationHandlerDelete(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	t.Run("deletes and returns no content", func(t *testing.T) {
		t.Parallel()

		svc := &fakeGenerationService{}
		router := newGenerationRouter(userID, svc)

		req := httptest.NewRequest(http.MethodDelete, "/generations/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.True(t, svc.deleteCalled)
	})

	t.Run("missing generation maps to 404", func(t *testing.T) {
		t.Parallel()

		router := newGenerationRouter(userID, &fakeGenerationService{
			deleteErr: store.ErrGenerationNotFound,
		})

		req := httptest.NewRequest(http.MethodDelete, "/generations/"+uuid.NewString(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
