package scheduling

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// DefaultOrphanGrace is how old a reservation must be before the reconciler
// treats a missing appointment as an orphan rather than a booking in flight.
const DefaultOrphanGrace = 5 * time.Minute

// Reconciler frees ledger entries still held by rejected or cancelled
// appointments, which happens when a release failed after the status change.
// It also frees orphaned reservations whose appointment was never stored.
type Reconciler struct {
	ledger   Ledger
	store    AppointmentStore
	metrics  *Metrics
	logger   zerolog.Logger
	lookback time.Duration
	grace    time.Duration
	now      func() time.Time
}

func NewReconciler(ledger Ledger, store AppointmentStore, lookback time.Duration, metrics *Metrics, logger zerolog.Logger) *Reconciler {
	if lookback <= 0 {
		lookback = 24 * time.Hour
	}
	return &Reconciler{
		ledger:   ledger,
		store:    store,
		metrics:  metrics,
		logger:   logger,
		lookback: lookback,
		grace:    DefaultOrphanGrace,
		now:      time.Now,
	}
}

// WithOrphanGrace overrides DefaultOrphanGrace.
func (r *Reconciler) WithOrphanGrace(grace time.Duration) *Reconciler {
	if grace >= 0 {
		r.grace = grace
	}
	return r
}

// Run releases stale and orphaned reservations and returns how many it freed.
func (r *Reconciler) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "scheduling.reconcile")
	defer span.End()

	freed, err := r.releaseClosed(ctx)
	if err != nil {
		span.RecordError(err)
		return freed, err
	}
	orphans, err := r.releaseOrphans(ctx)
	freed += orphans
	if err != nil {
		span.RecordError(err)
		return freed, err
	}

	if freed > 0 {
		r.logger.Info().Int("freed", freed).Int("orphans", orphans).Msg("released stale reservations")
	}
	return freed, nil
}

func (r *Reconciler) releaseClosed(ctx context.Context) (int, error) {
	closed, err := r.store.ListClosedSince(ctx, r.now().Add(-r.lookback))
	if err != nil {
		return 0, err
	}

	held := make(map[string]map[string]string)
	freed := 0
	for _, appt := range closed {
		day := appt.DoctorID + "/" + appt.Date
		times, ok := held[day]
		if !ok {
			times, err = r.ledger.Held(ctx, appt.DoctorID, appt.Date)
			if err != nil {
				return freed, err
			}
			held[day] = times
		}
		if times[appt.Time] != appt.ID {
			continue
		}

		key := SlotKey{DoctorID: appt.DoctorID, Date: appt.Date, Time: appt.Time}
		if r.release(ctx, key, appt.ID, "reconcile") {
			delete(times, appt.Time)
			freed++
		}
	}
	return freed, nil
}

// releaseOrphans frees reservations older than the grace period whose
// appointment does not exist. They are left behind when storing a new
// appointment and rolling back its reservation both failed.
func (r *Reconciler) releaseOrphans(ctx context.Context) (int, error) {
	now := r.now()
	reservations, err := r.ledger.ReservedBetween(ctx, now.Add(-r.lookback), now.Add(-r.grace))
	if err != nil || len(reservations) == 0 {
		return 0, err
	}

	ids := make([]string, 0, len(reservations))
	for _, res := range reservations {
		ids = append(ids, res.AppointmentID)
	}
	stored, err := r.store.Existing(ctx, ids)
	if err != nil {
		return 0, err
	}

	freed := 0
	for _, res := range reservations {
		if stored[res.AppointmentID] {
			continue
		}
		r.logger.Warn().
			Str("slot", res.Key.String()).
			Str("appointment_id", res.AppointmentID).
			Time("reserved_at", res.ReservedAt).
			Msg("releasing orphaned reservation")
		if r.release(ctx, res.Key, res.AppointmentID, "orphan") {
			freed++
		}
	}
	return freed, nil
}

func (r *Reconciler) release(ctx context.Context, key SlotKey, appointmentID, source string) bool {
	err := r.ledger.Release(ctx, key, appointmentID)
	r.metrics.ObserveRelease(source, err)
	if err != nil {
		r.logger.Error().Err(err).Str("slot", key.String()).Str("source", source).Msg("reconcile release failed")
		return false
	}
	return true
}
