package scheduling

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/meinhoongagan/healthsphere/models"
)

var tracer = otel.Tracer("healthsphere.scheduling")

// BookingRequest is a validated request to book one slot for a patient.
type BookingRequest struct {
	PatientID      string
	PatientName    string
	Problem        string
	Specialization string
	HospitalID     string
	DoctorID       string
	Date           string
	Time           string
	Modality       models.Modality
}

// Workflow turns booking requests into appointments and drives their status.
type Workflow struct {
	calc     *Calculator
	ledger   Ledger
	store    AppointmentStore
	tx       TxRunner
	notifier Notifier
	metrics  *Metrics
	logger   zerolog.Logger
	newID    func() string
}

func NewWorkflow(calc *Calculator, store AppointmentStore, notifier Notifier, metrics *Metrics, logger zerolog.Logger) *Workflow {
	if calc == nil || store == nil {
		panic("scheduling: calculator and store required")
	}
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Workflow{
		calc:     calc,
		ledger:   calc.ledger,
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// WithTransactions makes Book reserve the slot and store the appointment in
// one transaction of tx instead of compensating a failed write.
func (w *Workflow) WithTransactions(tx TxRunner) *Workflow {
	w.tx = tx
	return w
}

// Book reserves the requested slot and stores a pending appointment. A lost
// race is reported as ErrSlotTaken; the caller has to re-query availability
// and let the patient choose again.
func (w *Workflow) Book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	ctx, span := tracer.Start(ctx, "scheduling.book", trace.WithAttributes(
		attribute.String("healthsphere.doctor_id", req.DoctorID),
		attribute.String("healthsphere.date", req.Date),
		attribute.String("healthsphere.time", req.Time),
	))
	defer span.End()

	appt, err := w.book(ctx, req)
	if err != nil {
		span.RecordError(err)
		w.metrics.ObserveBooking(bookingOutcome(err))
		return nil, err
	}
	w.metrics.ObserveBooking("booked")
	w.logger.Info().
		Str("appointment_id", appt.ID).
		Str("doctor_id", appt.DoctorID).
		Str("date", appt.Date).
		Str("time", appt.Time).
		Msg("appointment booked")

	w.notify(ctx, appt, w.notifier.AppointmentBooked)
	return appt, nil
}

func (w *Workflow) book(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	if strings.TrimSpace(req.PatientID) == "" {
		return nil, invalidArgument("patient id is required")
	}
	if req.Modality != models.ModalityInPerson && req.Modality != models.ModalityVideo {
		return nil, invalidArgument("appointment type %q is not supported", req.Modality)
	}
	clock, err := ParseClock(req.Time)
	if err != nil {
		return nil, invalidArgument("%v", err)
	}

	plan, err := w.calc.plan(ctx, req.DoctorID, req.HospitalID, req.Date)
	if err != nil {
		return nil, err
	}
	if !plan.onGrid(req.Time) {
		return nil, invalidArgument("%s is not a bookable slot for doctor %s on %s", req.Time, req.DoctorID, req.Date)
	}

	specialization := strings.TrimSpace(req.Specialization)
	if specialization == "" {
		specialization = plan.doctor.Specialization
	} else if !strings.EqualFold(specialization, plan.doctor.Specialization) {
		return nil, invalidArgument("doctor %s does not practise %s", req.DoctorID, specialization)
	}

	id := w.newID()
	key := SlotKey{DoctorID: plan.doctor.ID, Date: plan.date, Time: clock.String()}
	now := w.calc.opts.Now().UTC()
	appt := &models.Appointment{
		ID:              id,
		PatientID:       req.PatientID,
		PatientName:     strings.TrimSpace(req.PatientName),
		DoctorID:        plan.doctor.ID,
		DoctorName:      plan.doctor.FullName,
		HospitalID:      plan.doctor.HospitalID,
		Specialization:  specialization,
		Problem:         strings.TrimSpace(req.Problem),
		Date:            plan.date,
		Time:            key.Time,
		AppointmentType: req.Modality,
		Status:          models.StatusPending,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if w.tx != nil {
		err := w.tx.InTx(ctx, func(ledger Ledger, store AppointmentStore) error {
			if err := ledger.Reserve(ctx, key, id); err != nil {
				return err
			}
			return store.Create(ctx, appt)
		})
		if err != nil {
			return nil, slotError(err, key)
		}
		return appt, nil
	}

	if err := w.ledger.Reserve(ctx, key, id); err != nil {
		return nil, slotError(err, key)
	}
	if err := w.store.Create(ctx, appt); err != nil {
		// Give the slot back so a failed write never leaves it half reserved.
		// If this fails too, the reconciler frees the orphan later.
		releaseErr := w.ledger.Release(context.WithoutCancel(ctx), key, id)
		w.metrics.ObserveRelease("rollback", releaseErr)
		if releaseErr != nil {
			w.logger.Error().Err(releaseErr).Str("slot", key.String()).Msg("failed to roll back reservation")
		}
		return nil, err
	}
	return appt, nil
}

func slotError(err error, key SlotKey) error {
	if errors.Is(err, ErrSlotTaken) {
		return fmt.Errorf("%w: %s", ErrSlotTaken, key)
	}
	return err
}

// SetStatus applies a hospital decision. Only pending appointments can be
// approved or rejected; rejection frees the slot.
func (w *Workflow) SetStatus(ctx context.Context, hospitalID, appointmentID string, status models.AppointmentStatus) (*models.Appointment, error) {
	ctx, span := tracer.Start(ctx, "scheduling.set_status", trace.WithAttributes(
		attribute.String("healthsphere.appointment_id", appointmentID),
		attribute.String("healthsphere.status", string(status)),
	))
	defer span.End()

	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: hospitals can only approve or reject, got %q", ErrInvalidTransition, status)
	}

	appt, err := w.store.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.HospitalID != hospitalID {
		return nil, notFound("appointment %s at hospital %s", appointmentID, hospitalID)
	}
	if appt.Status != models.StatusPending {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidTransition, appointmentID, appt.Status)
	}

	updated, err := w.store.TransitionStatus(ctx, appointmentID, []models.AppointmentStatus{models.StatusPending}, status)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	if status == models.StatusRejected {
		w.release(ctx, updated, "reject")
	}
	w.afterTransition(ctx, updated)
	return updated, nil
}

// Cancel is the patient's withdrawal of a pending or approved appointment.
func (w *Workflow) Cancel(ctx context.Context, patientID, appointmentID string) (*models.Appointment, error) {
	ctx, span := tracer.Start(ctx, "scheduling.cancel", trace.WithAttributes(
		attribute.String("healthsphere.appointment_id", appointmentID),
	))
	defer span.End()

	appt, err := w.store.Get(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if appt.PatientID != patientID {
		return nil, notFound("appointment %s for patient %s", appointmentID, patientID)
	}
	if !appt.Status.CanTransitionTo(models.StatusCancelled) {
		return nil, fmt.Errorf("%w: appointment %s is %s", ErrInvalidTransition, appointmentID, appt.Status)
	}

	updated, err := w.store.TransitionStatus(ctx, appointmentID, models.ActiveStatuses, models.StatusCancelled)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	w.release(ctx, updated, "cancel")
	w.afterTransition(ctx, updated)
	return updated, nil
}

func (w *Workflow) PatientAppointments(ctx context.Context, patientID string) ([]models.Appointment, error) {
	return w.store.ListByPatient(ctx, patientID)
}

// HospitalAppointments lists a hospital's appointments; no statuses means pending only.
func (w *Workflow) HospitalAppointments(ctx context.Context, hospitalID string, statuses []models.AppointmentStatus) ([]models.Appointment, error) {
	if len(statuses) == 0 {
		statuses = []models.AppointmentStatus{models.StatusPending}
	}
	return w.store.ListByHospital(ctx, hospitalID, statuses)
}

func (w *Workflow) DoctorAppointments(ctx context.Context, doctorID, date string) ([]models.Appointment, error) {
	if _, err := ParseDate(date, w.calc.opts.Location); err != nil {
		return nil, invalidArgument("%v", err)
	}
	return w.store.ListByDoctorDate(ctx, doctorID, date)
}

// release frees the slot of a closed appointment. A failure is logged and left
// to the reconciler, since the status change is already committed.
func (w *Workflow) release(ctx context.Context, appt *models.Appointment, source string) {
	key := SlotKey{DoctorID: appt.DoctorID, Date: appt.Date, Time: appt.Time}
	err := w.ledger.Release(context.WithoutCancel(ctx), key, appt.ID)
	w.metrics.ObserveRelease(source, err)
	if err != nil {
		w.logger.Error().Err(err).
			Str("appointment_id", appt.ID).
			Str("slot", key.String()).
			Msg("failed to release slot")
	}
}

func (w *Workflow) afterTransition(ctx context.Context, appt *models.Appointment) {
	w.metrics.ObserveTransition(string(appt.Status))
	w.logger.Info().
		Str("appointment_id", appt.ID).
		Str("status", string(appt.Status)).
		Msg("appointment status changed")
	w.notify(ctx, appt, w.notifier.AppointmentStatusChanged)
}

func (w *Workflow) notify(ctx context.Context, appt *models.Appointment, send func(context.Context, models.Appointment) error) {
	if err := send(ctx, *appt); err != nil {
		w.logger.Warn().Err(err).Str("appointment_id", appt.ID).Msg("notification failed")
	}
}

func bookingOutcome(err error) string {
	switch {
	case errors.Is(err, ErrSlotTaken):
		return "slot_taken"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	default:
		return "error"
	}
}
