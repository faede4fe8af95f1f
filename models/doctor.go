package models

import "time"

type Hospital struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Doctor belongs to exactly one hospital.
type Doctor struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	FullName       string         `json:"fullName"`
	Email          string         `json:"email"`
	HospitalID     string         `json:"hospitalId" gorm:"type:varchar(64);index;not null"`
	Hospital       Hospital       `json:"-" gorm:"foreignKey:HospitalID"`
	Specialization string         `json:"specialization"`
	SlotMinutes    int            `json:"slotMinutes"` // 0 uses the service default
	WorkingHours   []WorkingHours `json:"workingHours,omitempty" gorm:"foreignKey:DoctorID"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

type Patient struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
