package scheduling

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/meinhoongagan/healthsphere/models"
)

// TemplateStore edits the weekly working-hours template and leave days that
// the calculator reads through Directory.
type TemplateStore interface {
	ListWorkingHours(ctx context.Context, doctorID string) ([]models.WorkingHours, error)
	CreateWorkingHours(ctx context.Context, wh *models.WorkingHours) error
	// UpdateWorkingHours replaces the row with wh.ID owned by wh.DoctorID.
	UpdateWorkingHours(ctx context.Context, wh *models.WorkingHours) error
	DeleteWorkingHours(ctx context.Context, doctorID string, id uint) error
	AddLeave(ctx context.Context, leave *models.DoctorLeave) error
}

type GormTemplateStore struct {
	db *gorm.DB
}

func NewGormTemplateStore(db *gorm.DB) *GormTemplateStore {
	if db == nil {
		panic("scheduling: gorm db required")
	}
	return &GormTemplateStore{db: db}
}

func (s *GormTemplateStore) ListWorkingHours(ctx context.Context, doctorID string) ([]models.WorkingHours, error) {
	var hours []models.WorkingHours
	err := s.db.WithContext(ctx).
		Where("doctor_id = ?", doctorID).
		Order("day_of_week asc, start_time asc").
		Find(&hours).Error
	if err != nil {
		return nil, fmt.Errorf("templates: list working hours for %s: %w", doctorID, err)
	}
	return hours, nil
}

func (s *GormTemplateStore) CreateWorkingHours(ctx context.Context, wh *models.WorkingHours) error {
	if err := s.db.WithContext(ctx).Create(wh).Error; err != nil {
		return fmt.Errorf("templates: create working hours for %s: %w", wh.DoctorID, err)
	}
	return nil
}

func (s *GormTemplateStore) UpdateWorkingHours(ctx context.Context, wh *models.WorkingHours) error {
	var existing models.WorkingHours
	err := s.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", wh.ID, wh.DoctorID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound("working hours %d for doctor %s", wh.ID, wh.DoctorID)
	}
	if err != nil {
		return fmt.Errorf("templates: load working hours %d: %w", wh.ID, err)
	}

	wh.CreatedAt = existing.CreatedAt
	if err := s.db.WithContext(ctx).Save(wh).Error; err != nil {
		return fmt.Errorf("templates: update working hours %d: %w", wh.ID, err)
	}
	return nil
}

func (s *GormTemplateStore) DeleteWorkingHours(ctx context.Context, doctorID string, id uint) error {
	res := s.db.WithContext(ctx).Where("id = ? AND doctor_id = ?", id, doctorID).Delete(&models.WorkingHours{})
	if res.Error != nil {
		return fmt.Errorf("templates: delete working hours %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("working hours %d for doctor %s", id, doctorID)
	}
	return nil
}

func (s *GormTemplateStore) AddLeave(ctx context.Context, leave *models.DoctorLeave) error {
	if err := s.db.WithContext(ctx).Create(leave).Error; err != nil {
		if isUniqueViolation(err) {
			return invalidArgument("doctor %s is already on leave on %s", leave.DoctorID, leave.Date)
		}
		return fmt.Errorf("templates: add leave for %s: %w", leave.DoctorID, err)
	}
	return nil
}
