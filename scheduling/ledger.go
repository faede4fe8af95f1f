package scheduling

import (
	"context"
	"time"
)

// Ledger is the authoritative record of which slots are held by a pending or
// approved appointment. All slot mutation goes through Reserve and Release.
type Ledger interface {
	// Reserve atomically claims key for appointmentID. Exactly one of any set of
	// concurrent callers for the same key succeeds; the others get ErrSlotTaken.
	// Reserve never retries.
	Reserve(ctx context.Context, key SlotKey, appointmentID string) error
	// Release frees key if it is still held by appointmentID. Releasing a free
	// slot, or one held by another appointment, is a no-op.
	Release(ctx context.Context, key SlotKey, appointmentID string) error
	// Held returns the held times of a doctor's day, keyed by "HH:MM", with the
	// holding appointment id as value.
	Held(ctx context.Context, doctorID, date string) (map[string]string, error)
	// ReservedBetween returns the reservations made in [from, to].
	ReservedBetween(ctx context.Context, from, to time.Time) ([]Reservation, error)
}

// Reservation is one held slot together with its holder.
type Reservation struct {
	Key           SlotKey
	AppointmentID string
	ReservedAt    time.Time
}
