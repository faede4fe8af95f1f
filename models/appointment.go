package models

import (
	"strings"
	"time"
)

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusApproved  AppointmentStatus = "approved"
	StatusRejected  AppointmentStatus = "rejected"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ActiveStatuses hold a slot.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusApproved}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusApproved
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusRejected || s == StatusCancelled
}

// CanTransitionTo encodes the appointment lifecycle:
//
//	pending  -> approved | rejected | cancelled
//	approved -> cancelled
//
// rejected and cancelled are terminal.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	switch s {
	case StatusPending:
		return next == StatusApproved || next == StatusRejected || next == StatusCancelled
	case StatusApproved:
		return next == StatusCancelled
	default:
		return false
	}
}

// ParseHospitalDecision maps the labels used by the hospital dashboard
// ("Accepted"/"Rejected") and the stored names onto a status.
func ParseHospitalDecision(s string) (AppointmentStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "accepted", "approved":
		return StatusApproved, true
	case "rejected":
		return StatusRejected, true
	default:
		return "", false
	}
}

type Modality string

const (
	ModalityInPerson Modality = "in-person"
	ModalityVideo    Modality = "video"
)

// ParseModality accepts the spellings the booking form has used over time.
func ParseModality(s string) (Modality, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in-person", "in person", "inperson", "in_person", "offline":
		return ModalityInPerson, true
	case "video", "video call", "video-call", "online":
		return ModalityVideo, true
	default:
		return "", false
	}
}

type Appointment struct {
	ID              string            `json:"id" gorm:"primaryKey;type:varchar(36)"`
	PatientID       string            `json:"patientId" gorm:"type:varchar(64);index;not null"`
	PatientName     string            `json:"patientName"`
	DoctorID        string            `json:"doctorId" gorm:"type:varchar(64);index:idx_appointments_doctor_date;not null"`
	DoctorName      string            `json:"doctorName"`
	HospitalID      string            `json:"hospitalId" gorm:"type:varchar(64);index;not null"`
	Specialization  string            `json:"specialization"`
	Problem         string            `json:"problem"`
	Date            string            `json:"date" gorm:"type:varchar(10);index:idx_appointments_doctor_date;not null"` // YYYY-MM-DD
	Time            string            `json:"time" gorm:"type:varchar(5);not null"`                                     // HH:MM
	AppointmentType Modality          `json:"appointmentType" gorm:"type:varchar(16);not null"`
	Status          AppointmentStatus `json:"status" gorm:"type:varchar(16);index;not null"`
	ReminderSentAt  *time.Time        `json:"-"`
	CreatedAt       time.Time         `json:"createdAt"`
	UpdatedAt       time.Time         `json:"updatedAt"`
}
