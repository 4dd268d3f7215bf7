package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// User-specific validation errors
var (
	ErrUserIDEmpty         = errors.New("user ID cannot be empty")
	ErrEmailEmpty          = errors.New("email cannot be empty")
	ErrEmailInvalid        = errors.New("invalid email format")
	ErrPasswordTooShort    = errors.New("password must be at least 12 characters long")
	ErrPasswordTooLong     = errors.New("password must be at most 72 characters long")
	ErrHashedPasswordEmpty = errors.New("hashed password cannot be empty")
)

// User represents a registered user who owns generations and flashcards.
type User struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Password       string    `json:"-"` // plaintext, only set during registration
	HashedPassword string    `json:"-"` // never exposed in JSON
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// NewUser creates a User with a fresh ID and timestamps.
// The caller is responsible for hashing the password before storing the user.
func NewUser(email, password string) (*User, error) {
	now := time.Now().UTC()
	user := &User{
		ID:        uuid.New(),
		Email:     email,
		Password:  password,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}

	return user, nil
}

// Validate checks if the User has valid data.
func (u *User) Validate() error {
	if u.ID == uuid.Nil {
		return ErrUserIDEmpty
	}

	if u.Email == "" {
		return ErrEmailEmpty
	}

	if !validEmailFormat(u.Email) {
		return ErrEmailInvalid
	}

	if u.Password != "" {
		// bcrypt's practical input limit is 72 bytes.
		if len(u.Password) < 12 {
			return ErrPasswordTooShort
		}
		if len(u.Password) > 72 {
			return ErrPasswordTooLong
		}
	} else if u.HashedPassword == "" {
		// Existing users loaded from storage carry only the hash.
		return ErrHashedPasswordEmpty
	}

	return nil
}

// validEmailFormat performs a minimal structural check: a local part, an @,
// and a domain containing an interior dot. Full RFC 5322 validation is
// delegated to the request-validation layer.
func validEmailFormat(email string) bool {
	at := strings.Index(email, "@")
	if at <= 0 || at == len(email)-1 {
		return false
	}

	domain := email[at+1:]
	dot := strings.Index(domain, ".")
	return dot > 0 && dot < len(domain)-1
}
