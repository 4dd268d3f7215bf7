package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/service/auth"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// UserService provides account registration and credential verification.
type UserService interface {
	// Register creates a new user account with a hashed password.
	// Returns store.ErrEmailExists when the email is already registered.
	Register(ctx context.Context, email, password string) (*domain.User, error)

	// Authenticate verifies an email/password pair and returns the user on
	// success. Returns ErrInvalidCredentials for both an unknown email and a
	// wrong password.
	Authenticate(ctx context.Context, email, password string) (*domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error)
}

// userServiceImpl implements the UserService interface.
type userServiceImpl struct {
	userStore store.UserStore
	hasher    auth.PasswordHasher
	verifier  auth.PasswordVerifier
	logger    *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	log *slog.Logger,
) (UserService, error) {
	if userStore == nil {
		return nil, errors.New("userStore cannot be nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher cannot be nil")
	}
	if verifier == nil {
		return nil, errors.New("verifier cannot be nil")
	}
	if log == nil {
		log = slog.Default()
	}

	return &userServiceImpl{
		userStore: userStore,
		hasher:    hasher,
		verifier:  verifier,
		logger:    log.With(slog.String("component", "user_service")),
	}, nil
}

// Register implements UserService.Register
func (s *userServiceImpl) Register(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(email, password)
	if err != nil {
		log.Debug("user validation failed during registration",
			slog.String("error", err.Error()))
		return nil, err
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		log.Error("failed to hash password",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	if err := s.userStore.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			log.Debug("registration attempted with existing email")
		} else {
			log.Error("failed to save user",
				slog.String("error", err.Error()))
		}
		return nil, err
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()))
	return user, nil
}

// Authenticate implements UserService.Authenticate
func (s *userServiceImpl) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login attempt for unknown email")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to look up user for login",
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login attempt with wrong password",
			slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	log.Info("user authenticated",
		slog.String("user_id", user.ID.String()))
	return user, nil
}

// GetUser implements UserService.GetUser
func (s *userServiceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	return s.userStore.GetByID(ctx, userID)
}
