package models

const (
	StatusUpcoming  = "upcoming"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

const (
	ServiceOilChange       = "Oil change"
	ServiceBrakeAdjustment = "Brake adjustment"
	ServiceFullService     = "Full service"
	ServiceTireChange      = "Tire change"
)

const (
	// IDPrefix начало каждого идентификатора бронирования
	IDPrefix = "B"

	// DefaultStorageKey ключ, под которым хранится коллекция бронирований
	DefaultStorageKey = "tire-car-store-bookings"

	// DefaultPerformedAction используется, если при завершении не указано, что сделано
	DefaultPerformedAction = "Completed service"
)

const (
	MessageBookingSaved     = "Booking saved."
	MessageBookingUpdated   = "Booking updated."
	MessageBookingCancelled = "Booking cancelled."
	MessageBookingCompleted = "Booking marked as completed."
)
