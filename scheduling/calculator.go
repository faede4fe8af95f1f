package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/meinhoongagan/healthsphere/models"
)

// Options carry the calendar policy shared by the calculator and the workflow.
type Options struct {
	// Location interprets dates and slot times. Defaults to UTC.
	Location *time.Location
	// SlotLength is the grid step for doctors without their own. Defaults to 30 minutes.
	SlotLength time.Duration
	// HorizonDays limits how far ahead a date may be. Zero means no limit.
	HorizonDays int
	Now         func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.SlotLength <= 0 {
		o.SlotLength = 30 * time.Minute
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Calculator answers which slots of a doctor's day are still free.
type Calculator struct {
	directory Directory
	ledger    Ledger
	opts      Options
	metrics   *Metrics
}

func NewCalculator(directory Directory, ledger Ledger, opts Options, metrics *Metrics) *Calculator {
	if directory == nil || ledger == nil {
		panic("scheduling: directory and ledger required")
	}
	return &Calculator{directory: directory, ledger: ledger, opts: opts.withDefaults(), metrics: metrics}
}

// dayPlan is a validated (doctor, date) pair with its template grid.
type dayPlan struct {
	doctor *models.Doctor
	date   string
	day    time.Time
	slots  []Clock
}

// AvailableSlots returns the free "HH:MM" slot times of doctorID at hospitalID
// on date, ascending. A day without a template yields an empty slice.
func (c *Calculator) AvailableSlots(ctx context.Context, doctorID, hospitalID, date string) ([]string, error) {
	plan, err := c.plan(ctx, doctorID, hospitalID, date)
	if err != nil {
		c.metrics.ObserveAvailability("error")
		return nil, err
	}

	free := make([]string, 0, len(plan.slots))
	if len(plan.slots) == 0 {
		c.metrics.ObserveAvailability("empty")
		return free, nil
	}

	held, err := c.ledger.Held(ctx, plan.doctor.ID, plan.date)
	if err != nil {
		c.metrics.ObserveAvailability("error")
		return nil, err
	}
	for _, slot := range plan.slots {
		t := slot.String()
		if _, taken := held[t]; taken {
			continue
		}
		free = append(free, t)
	}
	c.metrics.ObserveAvailability("ok")
	return free, nil
}

func (c *Calculator) plan(ctx context.Context, doctorID, hospitalID, date string) (*dayPlan, error) {
	day, err := c.checkDate(date)
	if err != nil {
		return nil, err
	}

	doctor, err := c.directory.Doctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	if doctor.HospitalID != hospitalID {
		return nil, notFound("doctor %s at hospital %s", doctorID, hospitalID)
	}

	plan := &dayPlan{doctor: doctor, date: date, day: day}

	onLeave, err := c.directory.OnLeave(ctx, doctorID, date)
	if err != nil {
		return nil, err
	}
	if onLeave {
		return plan, nil
	}

	slots, err := GenerateSlots(doctor.WorkingHours, day.Weekday(), c.slotLength(doctor))
	if err != nil {
		return nil, fmt.Errorf("doctor %s template: %w", doctorID, err)
	}

	// Slots of today that already started are no longer bookable.
	now := c.opts.Now().In(c.opts.Location)
	if startOfDay(now).Equal(day) {
		upcoming := slots[:0]
		for _, s := range slots {
			if s.On(day).After(now) {
				upcoming = append(upcoming, s)
			}
		}
		slots = upcoming
	}
	plan.slots = slots
	return plan, nil
}

func (c *Calculator) checkDate(date string) (time.Time, error) {
	day, err := ParseDate(date, c.opts.Location)
	if err != nil {
		return time.Time{}, invalidArgument("%v", err)
	}
	today := startOfDay(c.opts.Now().In(c.opts.Location))
	if day.Before(today) {
		return time.Time{}, invalidArgument("date %s is in the past", date)
	}
	if c.opts.HorizonDays > 0 && day.After(today.AddDate(0, 0, c.opts.HorizonDays)) {
		return time.Time{}, invalidArgument("date %s is more than %d days ahead", date, c.opts.HorizonDays)
	}
	return day, nil
}

func (c *Calculator) slotLength(doctor *models.Doctor) time.Duration {
	if doctor.SlotMinutes > 0 {
		return time.Duration(doctor.SlotMinutes) * time.Minute
	}
	return c.opts.SlotLength
}

// onGrid reports whether t is one of the plan's slots.
func (p *dayPlan) onGrid(t string) bool {
	clock, err := ParseClock(t)
	if err != nil {
		return false
	}
	for _, s := range p.slots {
		if s == clock {
			return true
		}
	}
	return false
}
