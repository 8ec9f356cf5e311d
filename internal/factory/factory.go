package factory

import (
	"errors"
	"io"
	"log/slog"

	"github.com/edward93/project-joke-web/internal/dependencies/clock"
	"github.com/edward93/project-joke-web/internal/dependencies/random"
	"github.com/edward93/project-joke-web/internal/services/game"
	"github.com/edward93/project-joke-web/internal/services/story"
	"github.com/edward93/project-joke-web/internal/storage"
	"github.com/edward93/project-joke-web/internal/storage/memory"
	redisstorage "github.com/edward93/project-joke-web/internal/storage/redis"
	"github.com/edward93/project-joke-web/internal/ws"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeRedis  = "redis"
)

// App contains all wired application components
type App struct {
	Storage storage.Storage

	Clock  clock.Clock
	Random random.Random

	GameController *game.Controller
	StoryService   *story.Service
	HubManager     *ws.HubManager
	Dispatcher     *ws.Dispatcher
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	var store storage.Storage
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory' or 'redis'")
	}

	return newWithDependencies(store, clock.New(), random.New(), logger), nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(store storage.Storage, clk clock.Clock, rnd random.Random, logger *slog.Logger) *App {
	gameController := game.NewController(store, clk, rnd, logger)
	storyService := story.New()
	hubManager := ws.NewHubManager(logger)
	dispatcher := ws.NewDispatcher(gameController, storyService, store, hubManager, logger)

	return &App{
		Storage:        store,
		Clock:          clk,
		Random:         rnd,
		GameController: gameController,
		StoryService:   storyService,
		HubManager:     hubManager,
		Dispatcher:     dispatcher,
	}
}
