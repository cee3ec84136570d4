package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"tirecarstore/internal/domain"
	"tirecarstore/internal/events"
	"tirecarstore/internal/models"
	"tirecarstore/internal/seed"

	"github.com/rs/zerolog"
)

// Outcome tells callers whether a mutation changed anything.
type Outcome int

const (
	OutcomeApplied Outcome = iota
	OutcomeNotFound
)

func (o Outcome) String() string {
	switch o {
	case OutcomeApplied:
		return "applied"
	case OutcomeNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Store owns the booking collection. Bookings keep insertion order; every
// successful mutation is persisted and announced with exactly one event.
type Store struct {
	storage  domain.KeyValueStorage
	seed     seed.Source
	eventBus domain.EventPublisher
	recorder domain.MutationRecorder
	key      string
	logger   *zerolog.Logger

	mu       sync.RWMutex
	bookings []models.Booking
	message  string
	lastSeq  int
}

type Option func(*Store)

// WithRecorder attaches a metrics recorder.
func WithRecorder(r domain.MutationRecorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithKey overrides the storage key.
func WithKey(key string) Option {
	return func(s *Store) { s.key = key }
}

func New(storage domain.KeyValueStorage, source seed.Source, eventBus domain.EventPublisher, logger *zerolog.Logger, opts ...Option) *Store {
	s := &Store{
		storage:  storage,
		seed:     source,
		eventBus: eventBus,
		key:      models.DefaultStorageKey,
		logger:   logger,
		bookings: []models.Booking{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the collection with the persisted one, or with the seed
// dataset (persisted right away) when storage holds nothing usable.
func (s *Store) Load(ctx context.Context) error {
	saved, ok := s.loadFromStorage(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ok {
		s.replaceLocked(saved)
		s.logger.Info().Int("count", len(saved)).Msg("bookings loaded from storage")
		return nil
	}

	initial, err := s.seed.Bookings()
	if err != nil {
		return fmt.Errorf("load seed bookings: %w", err)
	}
	s.replaceLocked(initial)
	s.logger.Info().Int("count", len(initial)).Msg("bookings loaded from seed")

	s.saveLocked(ctx)
	return nil
}

func (s *Store) replaceLocked(bookings []models.Booking) {
	s.bookings = make([]models.Booking, 0, len(bookings))
	s.lastSeq = len(bookings)
	for _, b := range bookings {
		s.bookings = append(s.bookings, b.WithDescription())
		if seq, ok := models.ParseIDSeq(b.ID); ok && seq > s.lastSeq {
			s.lastSeq = seq
		}
	}
}

// Bookings returns the collection in insertion order.
func (s *Store) Bookings() []models.Booking {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Booking(nil), s.bookings...)
}

// Get looks a booking up by id.
func (s *Store) Get(id string) (models.Booking, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.bookings[i], true
	}
	return models.Booking{}, false
}

// SortedBookings returns a copy ordered by "{date} {time}", ties kept in insertion order.
func (s *Store) SortedBookings() []models.Booking {
	sorted := s.Bookings()
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].SlotKey() < sorted[j].SlotKey()
	})
	return sorted
}

// IsSlotTaken reports whether a non-cancelled booking other than ignoreID
// occupies date and time. An empty ignoreID ignores nothing.
func (s *Store) IsSlotTaken(date, time, ignoreID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, b := range s.bookings {
		if ignoreID != "" && b.ID == ignoreID {
			continue
		}
		if b.IsCancelled() {
			continue
		}
		if b.Date == date && b.Time == time {
			return true
		}
	}
	return false
}

// Message returns the text of the last successful mutation.
func (s *Store) Message() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.message
}

// GenerateID returns the id the next added booking will get.
func (s *Store) GenerateID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.FormatID(s.lastSeq + 1)
}

// Add appends a new upcoming booking built from the draft.
func (s *Store) Add(ctx context.Context, draft models.BookingDraft) (models.Booking, Outcome) {
	s.mu.Lock()
	s.lastSeq++
	booking := models.Booking{
		ID:              models.FormatID(s.lastSeq),
		Date:            draft.Date,
		Time:            draft.Time,
		ServiceType:     draft.ServiceType,
		Description:     models.DescribeService(draft.ServiceType),
		Status:          models.StatusUpcoming,
		PerformedAction: "",
	}
	s.bookings = append(s.bookings, booking)
	s.commitLocked(ctx, "add", models.MessageBookingSaved)
	s.mu.Unlock()

	s.publishEvent(events.EventBookingCreated, booking, models.MessageBookingSaved)
	return booking, OutcomeApplied
}

// Update replaces the stored booking with the same id.
func (s *Store) Update(ctx context.Context, booking models.Booking) Outcome {
	return s.mutate(ctx, "update", booking.ID, events.EventBookingUpdated, models.MessageBookingUpdated,
		func(b *models.Booking) {
			*b = booking.WithDescription()
		})
}

// Cancel marks the booking cancelled, freeing its slot.
func (s *Store) Cancel(ctx context.Context, id string) Outcome {
	return s.mutate(ctx, "cancel", id, events.EventBookingCancelled, models.MessageBookingCancelled,
		func(b *models.Booking) {
			b.Status = models.StatusCancelled
		})
}

// Complete marks the booking completed and records what was done.
func (s *Store) Complete(ctx context.Context, id, performedAction string) Outcome {
	if performedAction == "" {
		performedAction = models.DefaultPerformedAction
	}
	return s.mutate(ctx, "complete", id, events.EventBookingCompleted, models.MessageBookingCompleted,
		func(b *models.Booking) {
			b.Status = models.StatusCompleted
			b.PerformedAction = performedAction
		})
}

// mutate applies change to the booking with the given id in place. Events are
// published after the lock is released so handlers may read the store.
func (s *Store) mutate(ctx context.Context, operation, id, eventType, message string, change func(*models.Booking)) Outcome {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		s.logger.Debug().Str("op", operation).Str("booking_id", id).Msg("booking not found")
		s.observe(operation, OutcomeNotFound)
		return OutcomeNotFound
	}

	change(&s.bookings[i])
	booking := s.bookings[i]
	s.commitLocked(ctx, operation, message)
	s.mu.Unlock()

	s.publishEvent(eventType, booking, message)
	return OutcomeApplied
}

// Save persists the whole collection. Failures are logged, never returned:
// the in-memory collection stays authoritative for the session.
func (s *Store) Save(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	s.saveLocked(ctx)
}

func (s *Store) saveLocked(ctx context.Context) {
	bookings := s.bookings
	if bookings == nil {
		bookings = []models.Booking{}
	}
	data, err := json.Marshal(bookings)
	if err != nil {
		s.storageFailure(err, "marshal")
		return
	}
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		s.storageFailure(err, "save")
	}
}

// loadFromStorage returns ok=false when the key is missing, the value is not
// JSON, or the JSON is not an array of objects.
func (s *Store) loadFromStorage(ctx context.Context) ([]models.Booking, bool) {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.storageFailure(err, "load")
		return nil, false
	}
	if !ok || raw == "" {
		return nil, false
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &elements); err != nil {
		s.storageFailure(err, "decode")
		return nil, false
	}
	if elements == nil {
		// "null" decodes without error
		return nil, false
	}

	bookings := make([]models.Booking, 0, len(elements))
	for i, element := range elements {
		if trimmed := bytes.TrimSpace(element); len(trimmed) == 0 || trimmed[0] != '{' {
			s.storageFailure(fmt.Errorf("element %d is not an object", i), "decode")
			return nil, false
		}
		var b models.Booking
		if err := json.Unmarshal(element, &b); err != nil {
			s.storageFailure(fmt.Errorf("element %d: %w", i, err), "decode")
			return nil, false
		}
		bookings = append(bookings, b)
	}
	return bookings, true
}

func (s *Store) commitLocked(ctx context.Context, operation, message string) {
	s.saveLocked(ctx)
	s.message = message
	s.observe(operation, OutcomeApplied)
}

func (s *Store) indexLocked(id string) int {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *Store) observe(operation string, outcome Outcome) {
	if s.recorder != nil {
		s.recorder.ObserveMutation(operation, outcome.String())
	}
}

func (s *Store) storageFailure(err error, operation string) {
	s.logger.Error().Err(err).Str("op", operation).Str("key", s.key).Msg("storage failure, keeping in-memory state")
	if s.recorder != nil {
		s.recorder.ObserveStorageFailure(operation)
	}
}

func (s *Store) publishEvent(eventType string, booking models.Booking, message string) {
	if s.eventBus == nil {
		return
	}

	payload := events.BookingEventPayload{
		BookingID:       booking.ID,
		Date:            booking.Date,
		Time:            booking.Time,
		ServiceType:     booking.ServiceType,
		Status:          booking.Status,
		PerformedAction: booking.PerformedAction,
		Message:         message,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Str("booking_id", booking.ID).Msg("publish event error")
	}
}
