package scheduling_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/meinhoongagan/healthsphere/models"
	"github.com/meinhoongagan/healthsphere/scheduling"
	"github.com/meinhoongagan/healthsphere/scheduling/schedulingtest"
)

const (
	hospitalID = "hosp-1"
	doctorID   = "doc-1"
	patientID  = "pat-1"

	monday    = "2024-05-06"
	tuesday   = "2024-05-07"
	wednesday = "2024-05-08"
)

// mondayMorning is the default clock of every fixture.
var mondayMorning = time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC)

type fixture struct {
	now       time.Time
	opts      scheduling.Options
	redis     *miniredis.Miniredis
	ledger    *scheduling.RedisLedger
	directory *schedulingtest.StaticDirectory
	store     *schedulingtest.MemoryStore
	notifier  *schedulingtest.RecordingNotifier
	calc      *scheduling.Calculator
	workflow  *scheduling.Workflow
}

func strPtr(s string) *string { return &s }

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{now: mondayMorning}

	f.redis = miniredis.RunT(t)
	f.redis.SetTime(f.now)
	client := redis.NewClient(&redis.Options{Addr: f.redis.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	f.ledger = scheduling.NewRedisLedger(client)

	f.directory = schedulingtest.NewStaticDirectory().
		AddDoctor(models.Doctor{
			ID:             doctorID,
			FullName:       "Dr. Rao",
			HospitalID:     hospitalID,
			Specialization: "Cardiology",
			WorkingHours: []models.WorkingHours{
				{DoctorID: doctorID, DayOfWeek: models.Tuesday, StartTime: "09:00", EndTime: "12:00", IsWorkDay: true},
				{
					DoctorID: doctorID, DayOfWeek: models.Wednesday, StartTime: "09:00", EndTime: "13:00", IsWorkDay: true,
					BreakStart: strPtr("11:00"), BreakEnd: strPtr("12:00"),
				},
			},
		}).
		AddPatient(models.Patient{ID: patientID, FullName: "Asha Verma", Email: "asha@example.com"})

	f.store = schedulingtest.NewMemoryStore()
	f.store.Now = func() time.Time { return f.now }
	f.notifier = &schedulingtest.RecordingNotifier{}

	opts := scheduling.Options{
		Location:    time.UTC,
		SlotLength:  30 * time.Minute,
		HorizonDays: 60,
		Now:         func() time.Time { return f.now },
	}
	f.opts = opts
	f.calc = scheduling.NewCalculator(f.directory, f.ledger, opts, nil)
	f.workflow = scheduling.NewWorkflow(f.calc, f.store, f.notifier, nil, zerolog.Nop())
	return f
}

func (f *fixture) request(date, at string) scheduling.BookingRequest {
	return scheduling.BookingRequest{
		PatientID:   patientID,
		PatientName: "Asha Verma",
		Problem:     "chest pain",
		HospitalID:  hospitalID,
		DoctorID:    doctorID,
		Date:        date,
		Time:        at,
		Modality:    models.ModalityInPerson,
	}
}

// flakyLedger fails Release with releaseErr while it is set.
type flakyLedger struct {
	scheduling.Ledger
	releaseErr error
}

func (l *flakyLedger) Release(ctx context.Context, key scheduling.SlotKey, appointmentID string) error {
	if l.releaseErr != nil {
		return l.releaseErr
	}
	return l.Ledger.Release(ctx, key, appointmentID)
}
