package repository

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *mockStorage) Set(ctx context.Context, key, value string) error {
	return m.Called(ctx, key, value).Error(0)
}

func (m *mockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestFailoverStorage(t *testing.T) {
	primary := new(mockStorage)
	fallback := new(mockStorage)
	logger := zerolog.New(io.Discard)
	repo := NewFailoverStorage(primary, fallback, &logger)
	ctx := context.Background()

	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	t.Run("PrimarySuccess", func(t *testing.T) {
		primary.On("Get", ctx, "k1").Return("v1", true, nil).Once()

		got, ok, err := repo.Get(ctx, "k1")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v1", got)
		assert.False(t, repo.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("PrimaryFailFallbackSuccess", func(t *testing.T) {
		primary.On("Get", ctx, "k2").Return("", false, errors.New("fail")).Once()
		fallback.On("Get", ctx, "k2").Return("v2", true, nil).Once()

		got, ok, err := repo.Get(ctx, "k2")
		assert.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "v2", got)
		assert.True(t, repo.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("SetAlreadyDown", func(t *testing.T) {
		fallback.On("Set", ctx, "k3", "v3").Return(nil).Once()

		err := repo.Set(ctx, "k3", "v3")
		assert.NoError(t, err)
		fallback.AssertExpectations(t)
		primary.AssertNotCalled(t, "Set", ctx, "k3", "v3")
	})

	t.Run("RecoveryAttemptFail", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Set", ctx, "k4", "v4").Return(errors.New("still fail")).Once()
		fallback.On("Set", ctx, "k4", "v4").Return(nil).Once()

		err := repo.Set(ctx, "k4", "v4")
		assert.NoError(t, err)
		assert.True(t, repo.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("RecoveryAttempt", func(t *testing.T) {
		now = now.Add(2 * time.Minute)
		primary.On("Set", ctx, "k5", "v5").Return(nil).Once()

		err := repo.Set(ctx, "k5", "v5")
		assert.NoError(t, err)
		assert.False(t, repo.Degraded())
		primary.AssertExpectations(t)
	})

	t.Run("DeleteFailover", func(t *testing.T) {
		primary.On("Delete", ctx, "k6").Return(errors.New("fail")).Once()
		fallback.On("Delete", ctx, "k6").Return(nil).Once()

		err := repo.Delete(ctx, "k6")
		assert.NoError(t, err)
		assert.True(t, repo.Degraded())
		primary.AssertExpectations(t)
		fallback.AssertExpectations(t)
	})

	t.Run("FallbackErrorPropagates", func(t *testing.T) {
		fallback.On("Set", ctx, "k7", "v7").Return(errors.New("fallback fail")).Once()

		err := repo.Set(ctx, "k7", "v7")
		assert.EqualError(t, err, "fallback fail")
		fallback.AssertExpectations(t)
	})
}
