package booking

import (
	"fmt"
	"time"
)

// Schedule is the site-wide daily template of bookable hours.
// Slots start every hour from the opening hour (inclusive) to the closing
// hour (exclusive).
type Schedule struct {
	loc       *time.Location
	openHour  int
	closeHour int
	lunchHour int
	workdays  [7]bool
}

// NewSchedule builds a template. lunchHour < 0 disables the lunch break.
func NewSchedule(loc *time.Location, openHour, closeHour, lunchHour int, workdays []time.Weekday) (*Schedule, error) {
	if openHour < 0 || closeHour > 24 || openHour >= closeHour {
		return nil, fmt.Errorf("booking: invalid working hours %d-%d", openHour, closeHour)
	}
	if loc == nil {
		loc = time.UTC
	}
	s := &Schedule{loc: loc, openHour: openHour, closeHour: closeHour, lunchHour: lunchHour}
	for _, d := range workdays {
		s.workdays[d] = true
	}
	return s, nil
}

func (s *Schedule) Location() *time.Location { return s.loc }

// Hours returns the slot start instants for the calendar day of day,
// evaluated in the schedule's location.
func (s *Schedule) Hours(day time.Time) []time.Time {
	day = day.In(s.loc)
	if !s.workdays[day.Weekday()] {
		return nil
	}
	y, m, d := day.Date()
	out := make([]time.Time, 0, s.closeHour-s.openHour)
	for h := s.openHour; h < s.closeHour; h++ {
		if h == s.lunchHour {
			continue
		}
		out = append(out, time.Date(y, m, d, h, 0, 0, 0, s.loc))
	}
	return out
}

// Window returns [start, end) of the working day containing day.
func (s *Schedule) Window(day time.Time) (time.Time, time.Time) {
	day = day.In(s.loc)
	y, m, d := day.Date()
	return time.Date(y, m, d, s.openHour, 0, 0, 0, s.loc), time.Date(y, m, d, s.closeHour, 0, 0, 0, s.loc)
}
