package scheduling

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// PostgresLedger keeps one slot_reservations row per held slot. The composite
// primary key (doctor_id, date, time) is the uniqueness constraint, and
// INSERT ... ON CONFLICT DO NOTHING turns a lost race into zero affected rows.
type PostgresLedger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewPostgresLedger(db *gorm.DB) *PostgresLedger {
	if db == nil {
		panic("scheduling: gorm db required")
	}
	return &PostgresLedger{db: db, now: time.Now}
}

func (l *PostgresLedger) Reserve(ctx context.Context, key SlotKey, appointmentID string) error {
	res := l.db.WithContext(ctx).Exec(
		`INSERT INTO slot_reservations (doctor_id, date, time, appointment_id, created_at)
		VALUES (?, ?, ?, ?, ?) ON CONFLICT DO NOTHING`,
		key.DoctorID, key.Date, key.Time, appointmentID, l.now().UTC(),
	)
	if res.Error != nil {
		return fmt.Errorf("ledger: reserve %s: %w", key, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSlotTaken
	}
	return nil
}

func (l *PostgresLedger) Release(ctx context.Context, key SlotKey, appointmentID string) error {
	res := l.db.WithContext(ctx).Exec(
		`DELETE FROM slot_reservations WHERE doctor_id = ? AND date = ? AND time = ? AND appointment_id = ?`,
		key.DoctorID, key.Date, key.Time, appointmentID,
	)
	if res.Error != nil {
		return fmt.Errorf("ledger: release %s: %w", key, res.Error)
	}
	return nil
}

func (l *PostgresLedger) Held(ctx context.Context, doctorID, date string) (map[string]string, error) {
	var rows []struct {
		Time          string
		AppointmentID string
	}
	err := l.db.WithContext(ctx).Raw(
		`SELECT time, appointment_id FROM slot_reservations WHERE doctor_id = ? AND date = ?`,
		doctorID, date,
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: held slots for %s on %s: %w", doctorID, date, err)
	}

	held := make(map[string]string, len(rows))
	for _, r := range rows {
		held[r.Time] = r.AppointmentID
	}
	return held, nil
}

func (l *PostgresLedger) ReservedBetween(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	var rows []struct {
		DoctorID      string
		Date          string
		Time          string
		AppointmentID string
		CreatedAt     time.Time
	}
	err := l.db.WithContext(ctx).Raw(
		`SELECT doctor_id, date, time, appointment_id, created_at FROM slot_reservations
		WHERE created_at >= ? AND created_at <= ? ORDER BY created_at`,
		from.UTC(), to.UTC(),
	).Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("ledger: reservations between %s and %s: %w", from.Format(time.RFC3339), to.Format(time.RFC3339), err)
	}

	out := make([]Reservation, 0, len(rows))
	for _, r := range rows {
		out = append(out, Reservation{
			Key:           SlotKey{DoctorID: r.DoctorID, Date: r.Date, Time: r.Time},
			AppointmentID: r.AppointmentID,
			ReservedAt:    r.CreatedAt,
		})
	}
	return out, nil
}
