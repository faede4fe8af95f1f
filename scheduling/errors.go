package scheduling

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument covers malformed or past dates and times off the doctor's slot grid.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound covers unknown doctors, hospitals and appointments, and doctors
	// that are not affiliated with the given hospital.
	ErrNotFound = errors.New("not found")
	// ErrSlotTaken is returned when a reservation loses the race for a slot.
	ErrSlotTaken = errors.New("SlotTaken")
	// ErrInvalidTransition is returned for status changes the lifecycle does not allow.
	ErrInvalidTransition = errors.New("invalid status transition")
)

func invalidArgument(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
