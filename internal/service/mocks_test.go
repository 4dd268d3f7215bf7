package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sort"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/store"
	"github.com/stretchr/testify/require"
)

// stubDriver is a database/sql driver whose connections only know how to
// begin, commit and roll back transactions. The fake stores below never
// execute SQL, so that is all the transaction helper needs.
type stubDriver struct{}

func (stubDriver) Open(name string) (driver.Conn, error) { return stubConn{}, nil }

type stubConn struct{}

func (stubConn) Prepare(query string) (driver.Stmt, error) {
	return nil, errors.New("stub connection does not prepare statements")
}
func (stubConn) Close() error              { return nil }
func (stubConn) Begin() (driver.Tx, error) { return stubTx{}, nil }

type stubTx struct{}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func init() {
	sql.Register("stubtx", stubDriver{})
}

func newStubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("stubtx", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// fakeGenerationStore is an in-memory store.GenerationStore.
type fakeGenerationStore struct {
	mu          sync.Mutex
	generations map[uuid.UUID]*domain.Generation
	createErr   error
}

func newFakeGenerationStore() *fakeGenerationStore {
	return &fakeGenerationStore{generations: make(map[uuid.UUID]*domain.Generation)}
}

var _ store.GenerationStore = (*fakeGenerationStore)(nil)

func (f *fakeGenerationStore) Create(ctx context.Context, gen *domain.Generation) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *gen
	f.generations[gen.ID] = &copied
	return nil
}

func (f *fakeGenerationStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.generations[id]
	if !ok || gen.UserID != ownerID {
		return nil, store.ErrGenerationNotFound
	}
	copied := *gen
	return &copied, nil
}

func (f *fakeGenerationStore) GetForUpdate(ctx context.Context, id, ownerID uuid.UUID) (*domain.Generation, error) {
	return f.GetByID(ctx, id, ownerID)
}

func (f *fakeGenerationStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Generation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*domain.Generation{}
	for _, gen := range f.generations {
		if gen.UserID == ownerID {
			copied := *gen
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeGenerationStore) UpdateAcceptedCounts(ctx context.Context, id, ownerID uuid.UUID, unedited, edited int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.generations[id]
	if !ok || gen.UserID != ownerID {
		return store.ErrGenerationNotFound
	}
	gen.AcceptedUneditedCount = unedited
	gen.AcceptedEditedCount = edited
	return nil
}

func (f *fakeGenerationStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	gen, ok := f.generations[id]
	if !ok || gen.UserID != ownerID {
		return store.ErrGenerationNotFound
	}
	delete(f.generations, id)
	return nil
}

func (f *fakeGenerationStore) WithTx(tx *sql.Tx) store.GenerationStore { return f }

// fakeFlashcardStore is an in-memory store.FlashcardStore.
type fakeFlashcardStore struct {
	mu    sync.Mutex
	cards map[uuid.UUID]*domain.Flashcard
}

func newFakeFlashcardStore() *fakeFlashcardStore {
	return &fakeFlashcardStore{cards: make(map[uuid.UUID]*domain.Flashcard)}
}

var _ store.FlashcardStore = (*fakeFlashcardStore)(nil)

func (f *fakeFlashcardStore) Create(ctx context.Context, card *domain.Flashcard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *card
	f.cards[card.ID] = &copied
	return nil
}

func (f *fakeFlashcardStore) CreateMultiple(ctx context.Context, cards []*domain.Flashcard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, card := range cards {
		copied := *card
		f.cards[card.ID] = &copied
	}
	return nil
}

func (f *fakeFlashcardStore) NextDisplayOrder(ctx context.Context, generationID uuid.UUID) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	max := 0
	for _, card := range f.cards {
		if card.GenerationID != nil && *card.GenerationID == generationID && card.DisplayOrder > max {
			max = card.DisplayOrder
		}
	}
	return max + 1, nil
}

func (f *fakeFlashcardStore) GetByID(ctx context.Context, id, ownerID uuid.UUID) (*domain.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok || card.UserID != ownerID {
		return nil, store.ErrFlashcardNotFound
	}
	copied := *card
	return &copied, nil
}

func (f *fakeFlashcardStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*domain.Flashcard{}
	for _, card := range f.cards {
		if card.UserID == ownerID {
			copied := *card
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (f *fakeFlashcardStore) ListByGeneration(ctx context.Context, generationID uuid.UUID) ([]*domain.Flashcard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	result := []*domain.Flashcard{}
	for _, card := range f.cards {
		if card.GenerationID != nil && *card.GenerationID == generationID {
			copied := *card
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].DisplayOrder < result[j].DisplayOrder
	})
	return result, nil
}

func (f *fakeFlashcardStore) Update(ctx context.Context, card *domain.Flashcard) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, ok := f.cards[card.ID]
	if !ok || existing.UserID != card.UserID {
		return store.ErrFlashcardNotFound
	}
	copied := *card
	f.cards[card.ID] = &copied
	return nil
}

func (f *fakeFlashcardStore) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	card, ok := f.cards[id]
	if !ok || card.UserID != ownerID {
		return store.ErrFlashcardNotFound
	}
	delete(f.cards, id)
	return nil
}

func (f *fakeFlashcardStore) DeleteByGeneration(ctx context.Context, generationID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, card := range f.cards {
		if card.GenerationID != nil && *card.GenerationID == generationID {
			delete(f.cards, id)
		}
	}
	return nil
}

func (f *fakeFlashcardStore) WithTx(tx *sql.Tx) store.FlashcardStore { return f }

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*domain.User)}
}

var _ store.UserStore = (*fakeUserStore)(nil)

func (f *fakeUserStore) Create(ctx context.Context, user *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.users {
		if existing.Email == user.Email {
			return store.ErrEmailExists
		}
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// stubGenerator is a canned generation.Generator.
type stubGenerator struct {
	output *generation.Output
	err    error
	calls  int
	gotSourceText string
}

var _ generation.Generator = (*stubGenerator)(nil)

func (g *stubGenerator) GenerateProposals(ctx context.Context, sourceText string) (*generation.Output, error) {
	g.calls++
	g.gotSourceText = sourceText
	if g.err != nil {
		return nil, g.err
	}
	return g.output, nil
}
