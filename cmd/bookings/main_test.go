package main

import (
	"context"
	"path/filepath"
	"testing"

	"tirecarstore/internal/config"
	"tirecarstore/internal/repository"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitStorage(t *testing.T) {
	logger := zerolog.Nop()

	t.Run("Memory", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Backend = config.BackendMemory

		storage, sqliteStorage, cleanup, err := initStorage(cfg, &logger)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &repository.MemoryStorage{}, storage)
		assert.Nil(t, sqliteStorage)
	})

	t.Run("SQLiteWithFailover", func(t *testing.T) {
		cfg := config.Default()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "bookings.db")

		storage, sqliteStorage, cleanup, err := initStorage(cfg, &logger)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &repository.FailoverStorage{}, storage)
		require.NotNil(t, sqliteStorage)
		assert.NoError(t, storage.Set(context.Background(), "k", "v"))
	})

	t.Run("SQLiteWithoutFailover", func(t *testing.T) {
		off := false
		cfg := config.Default()
		cfg.Storage.Path = filepath.Join(t.TempDir(), "bookings.db")
		cfg.Storage.FallbackToMemory = &off

		storage, _, cleanup, err := initStorage(cfg, &logger)
		require.NoError(t, err)
		defer cleanup()
		assert.IsType(t, &repository.SQLiteStorage{}, storage)
	})
}
