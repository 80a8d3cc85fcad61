package domain

import "time"

// WorkingDay is the stored working window for one weekday.
type WorkingDay struct {
	Active    bool    `json:"active"`
	StartHour float64 `json:"startHour"`
	EndHour   float64 `json:"endHour"`
}

// WorkingSchedule is a per-weekday working window, indexed by time.Weekday.
// This is the persistence shape; the planning engine consumes its own plain
// week-schedule value mapped from this one.
type WorkingSchedule [7]WorkingDay

// For returns the window of the given weekday.
func (s WorkingSchedule) For(day time.Weekday) WorkingDay {
	return s[int(day)]
}

// Set replaces the window of the given weekday.
func (s *WorkingSchedule) Set(day time.Weekday, w WorkingDay) {
	s[int(day)] = w
}
