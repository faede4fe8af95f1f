package scheduling

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/healthsphere/models"
)

// Directory reads the identity records scheduling depends on. The records
// themselves are owned by other parts of the system.
type Directory interface {
	// Doctor returns the doctor with its working-hours template loaded.
	Doctor(ctx context.Context, doctorID string) (*models.Doctor, error)
	OnLeave(ctx context.Context, doctorID, date string) (bool, error)
	Patient(ctx context.Context, patientID string) (*models.Patient, error)

	// Hospitals lists hospitals by name. A non-empty specialization keeps only
	// hospitals with a doctor practising it.
	Hospitals(ctx context.Context, specialization string) ([]models.Hospital, error)
	// Doctors lists doctors by name, optionally filtered by hospital and specialization.
	Doctors(ctx context.Context, hospitalID, specialization string) ([]models.Doctor, error)
	// Specializations returns the distinct specializations practised, optionally at one hospital.
	Specializations(ctx context.Context, hospitalID string) ([]string, error)
}

type GormDirectory struct {
	db *gorm.DB
}

func NewGormDirectory(db *gorm.DB) *GormDirectory {
	if db == nil {
		panic("scheduling: gorm db required")
	}
	return &GormDirectory{db: db}
}

func (d *GormDirectory) Doctor(ctx context.Context, doctorID string) (*models.Doctor, error) {
	var doctor models.Doctor
	err := d.db.WithContext(ctx).Preload("WorkingHours").Where("id = ?", doctorID).First(&doctor).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("doctor %s", doctorID)
	}
	if err != nil {
		return nil, fmt.Errorf("directory: load doctor %s: %w", doctorID, err)
	}
	return &doctor, nil
}

func (d *GormDirectory) OnLeave(ctx context.Context, doctorID, date string) (bool, error) {
	var count int64
	err := d.db.WithContext(ctx).Model(&models.DoctorLeave{}).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("directory: leave for doctor %s on %s: %w", doctorID, date, err)
	}
	return count > 0, nil
}

func (d *GormDirectory) Patient(ctx context.Context, patientID string) (*models.Patient, error) {
	var patient models.Patient
	err := d.db.WithContext(ctx).Where("id = ?", patientID).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("patient %s", patientID)
	}
	if err != nil {
		return nil, fmt.Errorf("directory: load patient %s: %w", patientID, err)
	}
	return &patient, nil
}

func (d *GormDirectory) Hospitals(ctx context.Context, specialization string) ([]models.Hospital, error) {
	var hospitals []models.Hospital
	query := d.db.WithContext(ctx)
	if specialization != "" {
		practising := d.db.Model(&models.Doctor{}).
			Select("hospital_id").
			Where("LOWER(specialization) = LOWER(?)", specialization)
		query = query.Where("id IN (?)", practising)
	}
	if err := query.Order("name asc").Find(&hospitals).Error; err != nil {
		return nil, fmt.Errorf("directory: list hospitals: %w", err)
	}
	return hospitals, nil
}

func (d *GormDirectory) Doctors(ctx context.Context, hospitalID, specialization string) ([]models.Doctor, error) {
	var doctors []models.Doctor
	query := d.db.WithContext(ctx)
	if hospitalID != "" {
		query = query.Where("hospital_id = ?", hospitalID)
	}
	if specialization != "" {
		query = query.Where("LOWER(specialization) = LOWER(?)", specialization)
	}
	if err := query.Order("full_name asc").Find(&doctors).Error; err != nil {
		return nil, fmt.Errorf("directory: list doctors: %w", err)
	}
	return doctors, nil
}

func (d *GormDirectory) Specializations(ctx context.Context, hospitalID string) ([]string, error) {
	specializations := make([]string, 0)
	query := d.db.WithContext(ctx).Model(&models.Doctor{}).Where("specialization <> ''")
	if hospitalID != "" {
		query = query.Where("hospital_id = ?", hospitalID)
	}
	err := query.Distinct().Order("specialization asc").Pluck("specialization", &specializations).Error
	if err != nil {
		return nil, fmt.Errorf("directory: list specializations: %w", err)
	}
	return specializations, nil
}
