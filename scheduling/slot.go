package scheduling

import (
	"fmt"
	"time"
)

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

// Clock is a time of day in minutes after midnight.
type Clock int

const endOfDay Clock = 24 * 60

// ParseClock parses a strict "HH:MM" value. "24:00" is accepted so a template
// can run until midnight.
func ParseClock(s string) (Clock, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, fmt.Errorf("time %q is not in HH:MM format", s)
	}
	var h, m int
	for i, ch := range []byte{s[0], s[1], s[3], s[4]} {
		if ch < '0' || ch > '9' {
			return 0, fmt.Errorf("time %q is not in HH:MM format", s)
		}
		d := int(ch - '0')
		if i < 2 {
			h = h*10 + d
		} else {
			m = m*10 + d
		}
	}
	c := Clock(h*60 + m)
	if m > 59 || c > endOfDay {
		return 0, fmt.Errorf("time %q is out of range", s)
	}
	return c, nil
}

func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// On returns the instant this clock reading falls on for the given day.
func (c Clock) On(day time.Time) time.Time {
	y, mo, d := day.Date()
	return time.Date(y, mo, d, int(c)/60, int(c)%60, 0, 0, day.Location())
}

// ParseDate parses a "YYYY-MM-DD" calendar date as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not in YYYY-MM-DD format", s)
	}
	return d, nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SlotKey identifies one bookable unit of a doctor's calendar.
type SlotKey struct {
	DoctorID string
	Date     string
	Time     string
}

func (k SlotKey) String() string {
	return k.DoctorID + "/" + k.Date + "/" + k.Time
}
