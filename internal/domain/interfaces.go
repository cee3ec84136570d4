package domain

import (
	"context"
)

// KeyValueStorage persists string values under string keys.
// Get reports a missing key with ok=false and a nil error.
type KeyValueStorage interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// MutationRecorder counts store mutations and storage failures.
type MutationRecorder interface {
	ObserveMutation(operation, outcome string)
	ObserveStorageFailure(operation string)
}
