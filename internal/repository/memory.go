package repository

import (
	"context"
	"sync"
)

// MemoryStorage keeps values for the lifetime of the process only.
type MemoryStorage struct {
	values sync.Map
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (r *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := r.values.Load(key)
	if !ok {
		return "", false, nil
	}
	return val.(string), true, nil
}

func (r *MemoryStorage) Set(ctx context.Context, key, value string) error {
	r.values.Store(key, value)
	return nil
}

func (r *MemoryStorage) Delete(ctx context.Context, key string) error {
	r.values.Delete(key)
	return nil
}
