package scheduling_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meinhoongagan/healthsphere/scheduling"
)

func TestReconcilerFreesReservationLeftByFailedRollback(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	ledger := &flakyLedger{Ledger: f.ledger, releaseErr: errors.New("ledger unreachable")}
	calc := scheduling.NewCalculator(f.directory, ledger, f.opts, nil)
	workflow := scheduling.NewWorkflow(calc, f.store, nil, nil, zerolog.Nop())
	f.store.CreateErr = errors.New("connection reset")

	_, err := workflow.Book(ctx, f.request(tuesday, "10:00"))
	require.Error(t, err)

	slots, err := calc.AvailableSlots(ctx, doctorID, hospitalID, tuesday)
	require.NoError(t, err)
	assert.NotContains(t, slots, "10:00")
	appts, err := f.store.ListByDoctorDate(ctx, doctorID, tuesday)
	require.NoError(t, err)
	assert.Empty(t, appts)

	ledger.releaseErr = nil
	f.store.CreateErr = nil

	// A fresh reservation may still belong to a booking in flight.
	freed, err := scheduling.NewReconciler(ledger, f.store, time.Hour, nil, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, freed)

	freed, err = scheduling.NewReconciler(ledger, f.store, time.Hour, nil, zerolog.Nop()).
		WithOrphanGrace(0).
		Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, freed)

	slots, err = calc.AvailableSlots(ctx, doctorID, hospitalID, tuesday)
	require.NoError(t, err)
	assert.Contains(t, slots, "10:00")

	appt, err := workflow.Book(ctx, f.request(tuesday, "10:00"))
	require.NoError(t, err)
	assert.Equal(t, "10:00", appt.Time)
}

func TestReconcilerKeepsReservationsOfStoredAppointments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	appt, err := f.workflow.Book(ctx, f.request(tuesday, "10:00"))
	require.NoError(t, err)

	freed, err := scheduling.NewReconciler(f.ledger, f.store, time.Hour, nil, zerolog.Nop()).
		WithOrphanGrace(0).
		Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, freed)

	held, err := f.ledger.Held(ctx, doctorID, tuesday)
	require.NoError(t, err)
	assert.Equal(t, appt.ID, held["10:00"])
}

func TestTransactionalBook(t *testing.T) {
	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
		failed  bool
	}{
		{
			name: "committed",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO slot_reservations").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO "appointments"`).WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectCommit()
			},
		},
		{
			name: "store failure rolls back the reservation",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO slot_reservations").WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectExec(`INSERT INTO "appointments"`).WillReturnError(errors.New("connection reset"))
				mock.ExpectRollback()
			},
			failed: true,
		},
		{
			name: "slot taken",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectBegin()
				mock.ExpectExec("INSERT INTO slot_reservations").WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectRollback()
			},
			wantErr: scheduling.ErrSlotTaken,
			failed:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			db, mock := scheduling.NewMockDB(t)
			calc := scheduling.NewCalculator(f.directory, scheduling.NewPostgresLedger(db), f.opts, nil)
			workflow := scheduling.NewWorkflow(calc, scheduling.NewGormStore(db), nil, nil, zerolog.Nop()).
				WithTransactions(scheduling.NewGormTx(db))
			tt.expect(mock)

			appt, err := workflow.Book(context.Background(), f.request(tuesday, "10:00"))
			if tt.failed {
				require.Error(t, err)
				if tt.wantErr != nil {
					assert.ErrorIs(t, err, tt.wantErr)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Dr. Rao", appt.DoctorName)
			}
			// No compensating DELETE is issued; the rollback covers the reservation.
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
