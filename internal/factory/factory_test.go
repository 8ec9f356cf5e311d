package factory

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edward93/project-joke-web/internal/model"
	redisstorage "github.com/edward93/project-joke-web/internal/storage/redis"
)

func TestNewDefaultsToMemory(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)

	require.NotNil(t, app.Storage)
	require.NotNil(t, app.GameController)
	require.NotNil(t, app.StoryService)
	require.NotNil(t, app.HubManager)
	require.NotNil(t, app.Dispatcher)

	// The wired storage is usable
	user := &model.User{ID: "user-1", Username: "alice"}
	require.NoError(t, app.Storage.SaveUser(context.Background(), user))
	retrieved, err := app.Storage.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
}

func TestNewWithRedis(t *testing.T) {
	mini := miniredis.RunT(t)

	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + mini.Addr()

	app, err := New(Config{StorageType: StorageTypeRedis, RedisConfig: &cfg})
	require.NoError(t, err)
	require.NotNil(t, app.Storage)

	user := &model.User{ID: "user-1", Username: "alice"}
	require.NoError(t, app.Storage.SaveUser(context.Background(), user))
	retrieved, err := app.Storage.GetUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "alice", retrieved.Username)
}

func TestNewRedisWithoutConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	assert.Error(t, err)
}

func TestNewInvalidStorageType(t *testing.T) {
	_, err := New(Config{StorageType: "carrier-pigeon"})
	assert.Error(t, err)
}
