package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Booking is a single service appointment.
type Booking struct {
	ID              string `json:"id" yaml:"id"`
	Date            string `json:"date" yaml:"date"`
	Time            string `json:"time" yaml:"time"`
	ServiceType     string `json:"serviceType" yaml:"serviceType"`
	Description     string `json:"description" yaml:"description"`
	Status          string `json:"status" yaml:"status"` // upcoming, cancelled, completed
	PerformedAction string `json:"performedAction" yaml:"performedAction"`

	// Extra keeps fields this program does not know about so they survive a
	// load/save round trip.
	Extra map[string]json.RawMessage `json:"-" yaml:"-"`
}

type bookingFields struct {
	ID              string `json:"id"`
	Date            string `json:"date"`
	Time            string `json:"time"`
	ServiceType     string `json:"serviceType"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	PerformedAction string `json:"performedAction"`
}

// UnmarshalJSON accepts any JSON object. A known field holding a non-string
// value is left empty instead of failing the whole record.
func (b *Booking) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	*b = Booking{}
	for key, raw := range fields {
		target := b.knownField(key)
		if target == nil {
			if b.Extra == nil {
				b.Extra = make(map[string]json.RawMessage)
			}
			b.Extra[key] = raw
			continue
		}
		var value string
		if err := json.Unmarshal(raw, &value); err == nil {
			*target = value
		}
	}
	return nil
}

// MarshalJSON writes the known fields followed by any extra ones.
func (b Booking) MarshalJSON() ([]byte, error) {
	known := bookingFields{
		ID:              b.ID,
		Date:            b.Date,
		Time:            b.Time,
		ServiceType:     b.ServiceType,
		Description:     b.Description,
		Status:          b.Status,
		PerformedAction: b.PerformedAction,
	}
	if len(b.Extra) == 0 {
		return json.Marshal(known)
	}

	merged := make(map[string]json.RawMessage, len(b.Extra)+7)
	for key, raw := range b.Extra {
		merged[key] = raw
	}
	data, err := json.Marshal(known)
	if err != nil {
		return nil, err
	}
	var knownRaw map[string]json.RawMessage
	if err := json.Unmarshal(data, &knownRaw); err != nil {
		return nil, err
	}
	for key, raw := range knownRaw {
		merged[key] = raw
	}
	return json.Marshal(merged)
}

func (b *Booking) knownField(key string) *string {
	switch key {
	case "id":
		return &b.ID
	case "date":
		return &b.Date
	case "time":
		return &b.Time
	case "serviceType":
		return &b.ServiceType
	case "description":
		return &b.Description
	case "status":
		return &b.Status
	case "performedAction":
		return &b.PerformedAction
	default:
		return nil
	}
}

// BookingDraft carries the user-supplied part of a new booking.
type BookingDraft struct {
	Date        string `json:"date"`
	Time        string `json:"time"`
	ServiceType string `json:"serviceType"`
}

// SlotKey returns the "{date} {time}" string bookings are ordered by.
func (b Booking) SlotKey() string {
	return b.Date + " " + b.Time
}

// WithDescription returns a copy whose blank description is derived from the service type.
func (b Booking) WithDescription() Booking {
	if strings.TrimSpace(b.Description) == "" {
		b.Description = DescribeService(b.ServiceType)
	}
	return b
}

// IsCancelled reports whether the booking no longer occupies its slot.
func (b Booking) IsCancelled() bool {
	return b.Status == StatusCancelled
}

// FormatID builds a booking id from its sequence number.
func FormatID(seq int) string {
	return fmt.Sprintf("%s%03d", IDPrefix, seq)
}

// ParseIDSeq extracts the sequence number of an id produced by FormatID.
func ParseIDSeq(id string) (int, bool) {
	if !strings.HasPrefix(id, IDPrefix) {
		return 0, false
	}
	seq, err := strconv.Atoi(strings.TrimPrefix(id, IDPrefix))
	if err != nil || seq < 0 {
		return 0, false
	}
	return seq, true
}
