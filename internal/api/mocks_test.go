package api

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/api/shared"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/service"
	"github.com/mkowalczyk/cardgen-api/internal/service/auth"
)

// withUserID injects an authenticated user ID the way the auth middleware
// would, so handlers can be tested without real tokens.
func withUserID(userID uuid.UUID) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// fakeGenerationService returns canned results for each operation.
type fakeGenerationService struct {
	generateResult *service.GenerationResult
	generateErr    error
	gotProvider    string
	gotSourceText  string

	replaceResult []*domain.Flashcard
	replaceErr    error
	gotAccepted   []service.AcceptedFlashcard

	getGeneration *domain.Generation
	getFlashcards []*domain.Flashcard
	getErr        error

	listResult []*domain.Generation
	listErr    error

	deleteErr    error
	deleteCalled bool
}

var _ service.GenerationService = (*fakeGenerationService)(nil)

func (s *fakeGenerationService) GenerateFlashcards(ctx context.Context, userID uuid.UUID, provider, sourceText string) (*service.GenerationResult, error) {
	s.gotProvider = provider
	s.gotSourceText = sourceText
	if s.generateErr != nil {
		return nil, s.generateErr
	}
	return s.generateResult, nil
}

func (s *fakeGenerationService) ReplaceFlashcards(ctx context.Context, userID, generationID uuid.UUID, accepted []service.AcceptedFlashcard) ([]*domain.Flashcard, error) {
	s.gotAccepted = accepted
	if s.replaceErr != nil {
		return nil, s.replaceErr
	}
	return s.replaceResult, nil
}

func (s *fakeGenerationService) GetGeneration(ctx context.Context, userID, generationID uuid.UUID) (*domain.Generation, []*domain.Flashcard, error) {
	if s.getErr != nil {
		return nil, nil, s.getErr
	}
	return s.getGeneration, s.getFlashcards, nil
}

func (s *fakeGenerationService) ListGenerations(ctx context.Context, userID uuid.UUID) ([]*domain.Generation, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.listResult, nil
}

func (s *fakeGenerationService) DeleteGeneration(ctx context.Context, userID, generationID uuid.UUID) error {
	s.deleteCalled = true
	return s.deleteErr
}

// fakeFlashcardService returns canned results for each operation.
type fakeFlashcardService struct {
	card      *domain.Flashcard
	cards     []*domain.Flashcard
	err       error
	gotSource domain.FlashcardSource
	gotUpdate service.FlashcardUpdate
}

var _ service.FlashcardService = (*fakeFlashcardService)(nil)

func (s *fakeFlashcardService) CreateFlashcard(ctx context.Context, userID uuid.UUID, generationID *uuid.UUID, front, back string, source domain.FlashcardSource) (*domain.Flashcard, error) {
	s.gotSource = source
	if s.err != nil {
		return nil, s.err
	}
	return s.card, nil
}

func (s *fakeFlashcardService) GetFlashcard(ctx context.Context, userID, cardID uuid.UUID) (*domain.Flashcard, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.card, nil
}

func (s *fakeFlashcardService) ListFlashcards(ctx context.Context, userID uuid.UUID) ([]*domain.Flashcard, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cards, nil
}

func (s *fakeFlashcardService) UpdateFlashcard(ctx context.Context, userID, cardID uuid.UUID, update service.FlashcardUpdate) (*domain.Flashcard, error) {
	s.gotUpdate = update
	if s.err != nil {
		return nil, s.err
	}
	return s.card, nil
}

func (s *fakeFlashcardService) DeleteFlashcard(ctx context.Context, userID, cardID uuid.UUID) error {
	return s.err
}

// fakeUserService returns canned results for each operation.
type fakeUserService struct {
	user        *domain.User
	registerErr error
	authErr     error
	getErr      error
}

var _ service.UserService = (*fakeUserService)(nil)

func (s *fakeUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.user, nil
}

func (s *fakeUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return s.user, nil
}

func (s *fakeUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.user, nil
}

// fakeJWTService issues fixed token strings and canned claims.
type fakeJWTService struct {
	accessToken  string
	refreshToken string
	generateErr  error
	claims       *auth.Claims
	validateErr  error
}

var _ auth.JWTService = (*fakeJWTService)(nil)

func (s *fakeJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.accessToken, nil
}

func (s *fakeJWTService) ValidateToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}

func (s *fakeJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.generateErr != nil {
		return "", s.generateErr
	}
	return s.refreshToken, nil
}

func (s *fakeJWTService) ValidateRefreshToken(ctx context.Context, tokenString string) (*auth.Claims, error) {
	if s.validateErr != nil {
		return nil, s.validateErr
	}
	return s.claims, nil
}
