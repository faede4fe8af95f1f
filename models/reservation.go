package models

import "time"

// SlotReservation is a ledger row. It exists exactly while the slot is held,
// and its primary key is the uniqueness constraint bookings race on.
type SlotReservation struct {
	DoctorID      string    `gorm:"primaryKey;type:varchar(64)"`
	Date          string    `gorm:"primaryKey;type:varchar(10)"`
	Time          string    `gorm:"primaryKey;type:varchar(5)"`
	AppointmentID string    `gorm:"type:varchar(36);uniqueIndex;not null"`
	CreatedAt     time.Time
}
