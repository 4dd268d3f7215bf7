package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsNotFoundError(ErrNotFound))
	assert.True(t, IsNotFoundError(ErrUserNotFound))
	assert.True(t, IsNotFoundError(ErrGenerationNotFound))
	assert.True(t, IsNotFoundError(ErrFlashcardNotFound))
	assert.True(t, IsNotFoundError(fmt.Errorf("lookup: %w", ErrGenerationNotFound)))

	assert.False(t, IsNotFoundError(nil))
	assert.False(t, IsNotFoundError(ErrDuplicate))
	assert.False(t, IsNotFoundError(errors.New("something else")))
}

func TestIsDuplicateError(t *testing.T) {
	t.Parallel()

	assert.True(t, IsDuplicateError(ErrDuplicate))
	assert.True(t, IsDuplicateError(ErrEmailExists))
	assert.False(t, IsDuplicateError(ErrNotFound))
}

func TestStoreError(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection reset")
	err := NewStoreError("generation", "create", "insert failed", cause)

	assert.Contains(t, err.Error(), "create operation on generation failed")
	assert.Contains(t, err.Error(), "connection reset")
	assert.ErrorIs(t, err, cause)

	bare := NewStoreError("flashcard", "delete", "no rows", nil)
	assert.Equal(t, "delete operation on flashcard failed: no rows", bare.Error())
}
