package models

import (
	"gorm.io/gorm"
)

type DayOfWeek int

const (
	Sunday DayOfWeek = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

func (d DayOfWeek) Valid() bool {
	return d >= Sunday && d <= Saturday
}

// WorkingHours is one row of a doctor's weekly template. Several rows for the
// same weekday describe a split shift.
type WorkingHours struct {
	gorm.Model
	DoctorID   string    `json:"doctorId" gorm:"type:varchar(64);index;not null"`
	DayOfWeek  DayOfWeek `json:"dayOfWeek"`
	StartTime  string    `json:"startTime"` // Format "HH:MM" in 24h
	EndTime    string    `json:"endTime"`   // Format "HH:MM" in 24h
	IsWorkDay  bool      `json:"isWorkDay"`
	BreakStart *string   `json:"breakStart"` // Optional break start time
	BreakEnd   *string   `json:"breakEnd"`   // Optional break end time
}

// DoctorLeave closes a doctor's calendar for one date.
type DoctorLeave struct {
	gorm.Model
	DoctorID string `json:"doctorId" gorm:"type:varchar(64);uniqueIndex:idx_doctor_leave_date;not null"`
	Date     string `json:"date" gorm:"type:varchar(10);uniqueIndex:idx_doctor_leave_date;not null"`
	Reason   string `json:"reason"`
}
