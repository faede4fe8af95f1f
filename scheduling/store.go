package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/meinhoongagan/healthsphere/models"
)

// AppointmentStore persists appointment documents.
type AppointmentStore interface {
	Create(ctx context.Context, appt *models.Appointment) error
	Get(ctx context.Context, id string) (*models.Appointment, error)
	// TransitionStatus moves the appointment to `to` only if its current status
	// is one of `from`, as a single conditional write. It returns ErrNotFound for
	// unknown ids and ErrInvalidTransition when the status did not match.
	TransitionStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error)
	ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error)
	ListByHospital(ctx context.Context, hospitalID string, statuses []models.AppointmentStatus) ([]models.Appointment, error)
	ListByDoctorDate(ctx context.Context, doctorID, date string) ([]models.Appointment, error)
	// ListClosedSince returns rejected or cancelled appointments updated at or after since.
	ListClosedSince(ctx context.Context, since time.Time) ([]models.Appointment, error)
	// ListUnreminded returns approved appointments on the given dates without a reminder.
	ListUnreminded(ctx context.Context, dates []string) ([]models.Appointment, error)
	MarkReminded(ctx context.Context, id string, at time.Time) error
	// Existing reports which of ids are stored appointments.
	Existing(ctx context.Context, ids []string) (map[string]bool, error)
}

type GormStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormStore(db *gorm.DB) *GormStore {
	if db == nil {
		panic("scheduling: gorm db required")
	}
	return &GormStore{db: db, now: time.Now}
}

func (s *GormStore) Create(ctx context.Context, appt *models.Appointment) error {
	if err := s.db.WithContext(ctx).Create(appt).Error; err != nil {
		if isUniqueViolation(err) {
			// The partial unique index on active slots caught a double booking.
			return ErrSlotTaken
		}
		return fmt.Errorf("store: create appointment %s: %w", appt.ID, err)
	}
	return nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Appointment, error) {
	var appt models.Appointment
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&appt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("appointment %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("store: load appointment %s: %w", id, err)
	}
	return &appt, nil
}

func (s *GormStore) TransitionStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus) (*models.Appointment, error) {
	res := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(map[string]any{"status": to, "updated_at": s.now().UTC()})
	if res.Error != nil {
		return nil, fmt.Errorf("store: transition appointment %s to %s: %w", id, to, res.Error)
	}

	appt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidTransition, id, appt.Status)
	}
	return appt, nil
}

func (s *GormStore) ListByPatient(ctx context.Context, patientID string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("date desc, time desc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("store: list appointments for patient %s: %w", patientID, err)
	}
	return appts, nil
}

func (s *GormStore) ListByHospital(ctx context.Context, hospitalID string, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	var appts []models.Appointment
	query := s.db.WithContext(ctx).Where("hospital_id = ?", hospitalID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Order("date asc, time asc").Find(&appts).Error; err != nil {
		return nil, fmt.Errorf("store: list appointments for hospital %s: %w", hospitalID, err)
	}
	return appts, nil
}

func (s *GormStore) ListByDoctorDate(ctx context.Context, doctorID, date string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("doctor_id = ? AND date = ?", doctorID, date).
		Order("time asc").
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("store: list appointments for doctor %s on %s: %w", doctorID, date, err)
	}
	return appts, nil
}

func (s *GormStore) ListClosedSince(ctx context.Context, since time.Time) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status IN ? AND updated_at >= ?", []models.AppointmentStatus{models.StatusRejected, models.StatusCancelled}, since).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("store: list closed appointments: %w", err)
	}
	return appts, nil
}

func (s *GormStore) ListUnreminded(ctx context.Context, dates []string) ([]models.Appointment, error) {
	var appts []models.Appointment
	err := s.db.WithContext(ctx).
		Where("status = ? AND date IN ? AND reminder_sent_at IS NULL", models.StatusApproved, dates).
		Find(&appts).Error
	if err != nil {
		return nil, fmt.Errorf("store: list appointments due a reminder: %w", err)
	}
	return appts, nil
}

func (s *GormStore) MarkReminded(ctx context.Context, id string, at time.Time) error {
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("reminder_sent_at", at.UTC()).Error
	if err != nil {
		return fmt.Errorf("store: mark appointment %s reminded: %w", id, err)
	}
	return nil
}

func (s *GormStore) Existing(ctx context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	var stored []string
	err := s.db.WithContext(ctx).Model(&models.Appointment{}).
		Where("id IN ?", ids).
		Pluck("id", &stored).Error
	if err != nil {
		return nil, fmt.Errorf("store: look up %d appointments: %w", len(ids), err)
	}
	for _, id := range stored {
		found[id] = true
	}
	return found, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
