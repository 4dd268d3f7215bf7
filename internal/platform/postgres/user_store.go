package postgres

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mkowalczyk/cardgen-api/internal/domain"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/store"
)

// UserStore implements the store.UserStore interface using a PostgreSQL
// database as the storage backend.
type UserStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewUserStore creates a new PostgreSQL implementation of the UserStore
// interface. The database connection is initialized and managed by the
// caller. If logger is nil, a default logger will be used.
func NewUserStore(db store.DBTX, logger *slog.Logger) *UserStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &UserStore{
		db:     db,
		logger: logger.With(slog.String("component", "user_store")),
	}
}

// Ensure UserStore implements store.UserStore interface
var _ store.UserStore = (*UserStore)(nil)

// Create implements store.UserStore.Create
// The user's HashedPassword must be set; the plaintext Password field is
// never persisted. Returns store.ErrEmailExists on a duplicate email.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		log.Warn("user validation failed during create",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return err
	}
	if user.HashedPassword == "" {
		return fmt.Errorf("%w: user password has not been hashed", store.ErrInvalidEntity)
	}

	query := `
		INSERT INTO users (id, email, hashed_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		user.ID,
		user.Email,
		user.HashedPassword,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if IsUniqueViolation(err) {
			log.Warn("duplicate email during user creation",
				slog.String("user_id", user.ID.String()))
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}

		log.Error("failed to create user",
			slog.String("error", err.Error()),
			slog.String("user_id", user.ID.String()))
		return mapError(err, store.ErrUserNotFound)
	}

	log.Info("user created successfully",
		slog.String("user_id", user.ID.String()))
	return nil
}

// GetByID implements store.UserStore.GetByID
// Returns store.ErrUserNotFound if the user does not exist.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE id = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		mapped := mapError(err, store.ErrUserNotFound)
		if store.IsNotFoundError(mapped) {
			log.Debug("user not found", slog.String("user_id", id.String()))
		} else {
			log.Error("failed to get user by ID",
				slog.String("error", err.Error()),
				slog.String("user_id", id.String()))
		}
		return nil, mapped
	}

	return &user, nil
}

// GetByEmail implements store.UserStore.GetByEmail
// Returns store.ErrUserNotFound if no user has that email.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1
	`

	var user domain.User
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		mapped := mapError(err, store.ErrUserNotFound)
		if store.IsNotFoundError(mapped) {
			log.Debug("user not found by email")
		} else {
			log.Error("failed to get user by email",
				slog.String("error", err.Error()))
		}
		return nil, mapped
	}

	return &user, nil
}
