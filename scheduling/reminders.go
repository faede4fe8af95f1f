package scheduling

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	reminderLead   = time.Hour
	reminderWindow = 5 * time.Minute
)

// ReminderJob notifies patients about approved appointments starting in about
// an hour. Each appointment is reminded at most once.
type ReminderJob struct {
	store    AppointmentStore
	notifier Notifier
	opts     Options
	logger   zerolog.Logger
}

func NewReminderJob(store AppointmentStore, notifier Notifier, opts Options, logger zerolog.Logger) *ReminderJob {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &ReminderJob{store: store, notifier: notifier, opts: opts.withDefaults(), logger: logger}
}

// Run sends due reminders and returns how many went out.
func (j *ReminderJob) Run(ctx context.Context) (int, error) {
	ctx, span := tracer.Start(ctx, "scheduling.reminders")
	defer span.End()

	now := j.opts.Now().In(j.opts.Location)
	from := now.Add(reminderLead - reminderWindow)
	to := now.Add(reminderLead + reminderWindow)

	// The window can cross midnight.
	dates := []string{now.Format(DateLayout), now.AddDate(0, 0, 1).Format(DateLayout)}
	due, err := j.store.ListUnreminded(ctx, dates)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	sent := 0
	for _, appt := range due {
		day, err := ParseDate(appt.Date, j.opts.Location)
		if err != nil {
			continue
		}
		clock, err := ParseClock(appt.Time)
		if err != nil {
			continue
		}
		start := clock.On(day)
		if start.Before(from) || start.After(to) {
			continue
		}

		if err := j.notifier.AppointmentReminder(ctx, appt); err != nil {
			j.logger.Warn().Err(err).Str("appointment_id", appt.ID).Msg("reminder failed")
			continue
		}
		if err := j.store.MarkReminded(ctx, appt.ID, now); err != nil {
			j.logger.Error().Err(err).Str("appointment_id", appt.ID).Msg("failed to mark reminder sent")
			continue
		}
		sent++
	}
	return sent, nil
}
