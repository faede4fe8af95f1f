package db

import (
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/meinhoongagan/healthsphere/models"
)

// activeSlotIndex backs the slot ledger: at most one pending or approved
// appointment per doctor, date and time.
const activeSlotIndex = `CREATE UNIQUE INDEX IF NOT EXISTS idx_appointments_active_slot
	ON appointments (doctor_id, date, time)
	WHERE status IN ('pending', 'approved')`

// Migrate runs AutoMigrate only when explicitly called.
func Migrate(db *gorm.DB, log zerolog.Logger) error {
	err := db.AutoMigrate(
		&models.Hospital{},
		&models.Doctor{},
		&models.Patient{},
		&models.WorkingHours{},
		&models.DoctorLeave{},
		&models.Appointment{},
		&models.SlotReservation{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if err := db.Exec(activeSlotIndex).Error; err != nil {
		return fmt.Errorf("create active slot index: %w", err)
	}

	log.Info().Msg("migrations applied")
	return nil
}
