package scheduling

import (
	"fmt"
	"sort"
	"time"

	"github.com/meinhoongagan/healthsphere/models"
)

type window struct {
	start, end           Clock
	breakStart, breakEnd Clock
	hasBreak             bool
}

// ValidateWorkingHours checks a template row before it is stored.
func ValidateWorkingHours(wh models.WorkingHours) error {
	if !wh.DayOfWeek.Valid() {
		return fmt.Errorf("day_of_week %d is out of range", wh.DayOfWeek)
	}
	_, err := parseWindow(wh)
	return err
}

func parseWindow(wh models.WorkingHours) (window, error) {
	var w window
	var err error
	if w.start, err = ParseClock(wh.StartTime); err != nil {
		return w, fmt.Errorf("invalid start time: %w", err)
	}
	if w.end, err = ParseClock(wh.EndTime); err != nil {
		return w, fmt.Errorf("invalid end time: %w", err)
	}
	if w.end <= w.start {
		return w, fmt.Errorf("end time %s must be after start time %s", wh.EndTime, wh.StartTime)
	}
	if wh.BreakStart == nil || wh.BreakEnd == nil {
		return w, nil
	}
	if w.breakStart, err = ParseClock(*wh.BreakStart); err != nil {
		return w, fmt.Errorf("invalid break start time: %w", err)
	}
	if w.breakEnd, err = ParseClock(*wh.BreakEnd); err != nil {
		return w, fmt.Errorf("invalid break end time: %w", err)
	}
	if w.breakEnd <= w.breakStart {
		return w, fmt.Errorf("break end %s must be after break start %s", *wh.BreakEnd, *wh.BreakStart)
	}
	w.hasBreak = true
	return w, nil
}

// GenerateSlots expands the template rows for one weekday into slot start times.
// A slot is kept when it fits entirely inside its window and does not overlap the
// window's break. The result is ascending and free of duplicates, so overlapping
// split shifts are harmless.
func GenerateSlots(hours []models.WorkingHours, day time.Weekday, step time.Duration) ([]Clock, error) {
	stepMin := Clock(step / time.Minute)
	if stepMin <= 0 {
		return nil, fmt.Errorf("slot length %s must be at least one minute", step)
	}

	seen := make(map[Clock]struct{})
	var slots []Clock
	for _, wh := range hours {
		if int(wh.DayOfWeek) != int(day) || !wh.IsWorkDay {
			continue
		}
		w, err := parseWindow(wh)
		if err != nil {
			return nil, fmt.Errorf("working hours %d: %w", wh.ID, err)
		}
		for t := w.start; t+stepMin <= w.end; t += stepMin {
			if w.hasBreak && t < w.breakEnd && t+stepMin > w.breakStart {
				continue
			}
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			slots = append(slots, t)
		}
	}

	sort.Slice(slots, func(i, j int) bool { return slots[i] < slots[j] })
	return slots, nil
}
