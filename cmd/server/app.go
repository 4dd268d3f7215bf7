package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkowalczyk/cardgen-api/internal/config"
	"github.com/mkowalczyk/cardgen-api/internal/generation"
	"github.com/mkowalczyk/cardgen-api/internal/platform/gemini"
	"github.com/mkowalczyk/cardgen-api/internal/platform/llm"
	"github.com/mkowalczyk/cardgen-api/internal/platform/logger"
	"github.com/mkowalczyk/cardgen-api/internal/platform/postgres"
	"github.com/mkowalczyk/cardgen-api/internal/service"
	"github.com/mkowalczyk/cardgen-api/internal/service/auth"
	"golang.org/x/crypto/bcrypt"
)

// application holds the initialized dependencies of the server.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	jwtService        auth.JWTService
	userService       service.UserService
	generationService service.GenerationService
	flashcardService  service.FlashcardService
}

// newApplication loads configuration and wires up every component of the
// server: logging, database, stores, LLM providers and services.
func newApplication() (*application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.Setup(cfg.Server.LogLevel)

	log.Info("configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.String("default_provider", cfg.LLM.DefaultProvider))

	db, err := setupDatabase(cfg, log)
	if err != nil {
		return nil, err
	}

	if err := runMigrations(db, log); err != nil {
		closeQuietly(db, log)
		return nil, err
	}

	userStore := postgres.NewUserStore(db, log)
	generationStore := postgres.NewGenerationStore(db, log)
	flashcardStore := postgres.NewFlashcardStore(db, log)

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	userService, err := service.NewUserService(
		userStore,
		auth.NewBcryptHasher(bcrypt.DefaultCost),
		auth.NewBcryptVerifier(),
		log,
	)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create user service: %w", err)
	}

	generators, err := setupGenerators(cfg, log)
	if err != nil {
		closeQuietly(db, log)
		return nil, err
	}

	generationService, err := service.NewGenerationService(
		db,
		generationStore,
		flashcardStore,
		generators,
		time.Duration(cfg.LLM.TimeoutSeconds)*time.Second,
		log,
	)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create generation service: %w", err)
	}

	flashcardService, err := service.NewFlashcardService(db, flashcardStore, generationStore, log)
	if err != nil {
		closeQuietly(db, log)
		return nil, fmt.Errorf("failed to create flashcard service: %w", err)
	}

	return &application{
		config:            cfg,
		logger:            log,
		db:                db,
		jwtService:        jwtService,
		userService:       userService,
		generationService: generationService,
		flashcardService:  flashcardService,
	}, nil
}

// setupGenerators builds the provider registry from configuration. Providers
// without an API key are skipped; the configured default must be available.
func setupGenerators(cfg *config.Config, log *slog.Logger) (map[string]generation.Generator, error) {
	timeout := time.Duration(cfg.LLM.TimeoutSeconds) * time.Second
	generators := make(map[string]generation.Generator)

	if cfg.LLM.OpenAIAPIKey != "" {
		gen, err := llm.NewOpenAIGenerator(cfg.LLM.OpenAIAPIKey, cfg.LLM.OpenAIModel, timeout, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create openai generator: %w", err)
		}
		generators["openai"] = gen
	}

	if cfg.LLM.OpenRouterAPIKey != "" {
		gen, err := llm.NewOpenRouterGenerator(cfg.LLM.OpenRouterAPIKey, cfg.LLM.OpenRouterModel, timeout, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create openrouter generator: %w", err)
		}
		generators["openrouter"] = gen
	}

	if cfg.LLM.GeminiAPIKey != "" {
		gen, err := gemini.NewGenerator(context.Background(), cfg.LLM.GeminiAPIKey, cfg.LLM.GeminiModel, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create gemini generator: %w", err)
		}
		generators["gemini"] = gen
	}

	if len(generators) == 0 {
		return nil, fmt.Errorf("no LLM provider configured: set at least one API key")
	}
	if _, ok := generators[cfg.LLM.DefaultProvider]; !ok {
		return nil, fmt.Errorf("default provider %q has no API key configured", cfg.LLM.DefaultProvider)
	}

	log.Info("LLM providers configured",
		slog.Int("provider_count", len(generators)),
		slog.String("default_provider", cfg.LLM.DefaultProvider))

	return generators, nil
}

// cleanup releases the application's resources.
func (app *application) cleanup() {
	if app.db != nil {
		closeQuietly(app.db, app.logger)
	}
}

func closeQuietly(db *sql.DB, log *slog.Logger) {
	if err := db.Close(); err != nil {
		log.Error("failed to close database connection", slog.String("error", err.Error()))
	}
}
