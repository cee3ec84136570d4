package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"tirecarstore/internal/domain"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStorage serves from primary until it fails, then from fallback.
// Once the primary is down it is retried at most once per recoveryInterval.
type FailoverStorage struct {
	primary  domain.KeyValueStorage
	fallback domain.KeyValueStorage
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
	now       func() time.Time
}

func NewFailoverStorage(primary, fallback domain.KeyValueStorage, logger *zerolog.Logger) *FailoverStorage {
	return &FailoverStorage{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
	}
}

// Degraded reports whether values currently go to the fallback.
func (r *FailoverStorage) Degraded() bool {
	return r.isDown.Load()
}

func (r *FailoverStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if r.usePrimary() {
		value, ok, err := r.primary.Get(ctx, key)
		if err == nil {
			r.markUp()
			return value, ok, nil
		}
		r.markDown(err, "get")
	}

	return r.fallback.Get(ctx, key)
}

func (r *FailoverStorage) Set(ctx context.Context, key, value string) error {
	if r.usePrimary() {
		err := r.primary.Set(ctx, key, value)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err, "set")
	}

	return r.fallback.Set(ctx, key, value)
}

func (r *FailoverStorage) Delete(ctx context.Context, key string) error {
	if r.usePrimary() {
		err := r.primary.Delete(ctx, key)
		if err == nil {
			r.markUp()
			return nil
		}
		r.markDown(err, "delete")
	}

	return r.fallback.Delete(ctx, key)
}

func (r *FailoverStorage) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.now().Sub(r.lastCheck) > recoveryInterval {
		r.lastCheck = r.now()
		return true
	}
	return false
}

func (r *FailoverStorage) markUp() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary storage recovered")
	}
}

func (r *FailoverStorage) markDown(err error, op string) {
	r.logger.Error().Err(err).Str("op", op).Msg("Primary storage failed, falling back to memory")
	r.mu.Lock()
	r.lastCheck = r.now()
	r.mu.Unlock()
	r.isDown.Store(true)
}
