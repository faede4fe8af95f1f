package scheduling

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/healthsphere/models"
)

var appointmentColumns = []string{"id", "patient_id", "doctor_id", "hospital_id", "date", "time", "status"}

func TestGormStoreCreateMapsUniqueViolation(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)

	mock.ExpectExec(`INSERT INTO "appointments"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := store.Create(context.Background(), &models.Appointment{
		ID: "a2", PatientID: "pat-1", DoctorID: "doc-1", HospitalID: "hosp-1",
		Date: "2024-05-07", Time: "10:00", Status: models.StatusPending,
	})
	assert.ErrorIs(t, err, ErrSlotTaken)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreGetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows(appointmentColumns))

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStoreTransitionStatus(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		stored   models.AppointmentStatus
		want     error
	}{
		{name: "applied", affected: 1, stored: models.StatusApproved},
		{name: "status moved on", affected: 0, stored: models.StatusCancelled, want: ErrInvalidTransition},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock := newMockDB(t)
			store := NewGormStore(db)
			store.now = func() time.Time { return time.Date(2024, time.May, 6, 9, 0, 0, 0, time.UTC) }

			mock.ExpectExec(`UPDATE "appointments" SET .* WHERE \(?id = \$\d+ AND status IN`).
				WillReturnResult(sqlmock.NewResult(0, tt.affected))
			mock.ExpectQuery(`SELECT \* FROM "appointments" WHERE id = \$1`).
				WillReturnRows(sqlmock.NewRows(appointmentColumns).
					AddRow("a1", "pat-1", "doc-1", "hosp-1", "2024-05-07", "10:00", string(tt.stored)))

			appt, err := store.TransitionStatus(context.Background(), "a1",
				[]models.AppointmentStatus{models.StatusPending}, models.StatusApproved)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			} else {
				require.NoError(t, err)
				assert.Equal(t, models.StatusApproved, appt.Status)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestGormStoreExisting(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewGormStore(db)

	mock.ExpectQuery(`SELECT "id" FROM "appointments" WHERE id IN`).
		WithArgs("a1", "ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("a1"))

	found, err := store.Existing(context.Background(), []string{"a1", "ghost"})
	require.NoError(t, err)
	assert.Equal(t, map[string]bool{"a1": true}, found)
	assert.NoError(t, mock.ExpectationsWereMet())

	found, err = store.Existing(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, found)
}
