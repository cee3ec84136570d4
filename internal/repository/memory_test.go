package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorage(t *testing.T) {
	repo := NewMemoryStorage()
	ctx := context.Background()

	t.Run("SetAndGet", func(t *testing.T) {
		err := repo.Set(ctx, "bookings", `[{"id":"B001"}]`)
		require.NoError(t, err)

		got, ok, err := repo.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, `[{"id":"B001"}]`, got)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "bookings", `[]`))
		got, _, _ := repo.Get(ctx, "bookings")
		assert.Equal(t, `[]`, got)
	})

	t.Run("Delete", func(t *testing.T) {
		err := repo.Delete(ctx, "bookings")
		require.NoError(t, err)
		_, ok, err := repo.Get(ctx, "bookings")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}
