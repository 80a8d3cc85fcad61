package engine

import "time"

// DaySchedule is the working-hours window for a single weekday.
// StartHour and EndHour are fractional hours from midnight.
type DaySchedule struct {
	Active    bool    `json:"active"`
	StartHour float64 `json:"startHour"`
	EndHour   float64 `json:"endHour"`
}

// Span returns the nominal width of the window in hours.
func (d DaySchedule) Span() float64 {
	if !d.Active || d.EndHour <= d.StartHour {
		return 0
	}
	return d.EndHour - d.StartHour
}

// WeekSchedule is a working-hours window per weekday, indexed by time.Weekday.
type WeekSchedule [7]DaySchedule

// For returns the schedule of the given weekday.
func (w WeekSchedule) For(day time.Weekday) DaySchedule {
	return w[int(day)]
}

// DefaultWeekSchedule is the built-in fallback when neither the collaborator
// nor the organization define working hours: Monday to Friday, 09:00-18:00.
func DefaultWeekSchedule() WeekSchedule {
	var w WeekSchedule
	for d := time.Monday; d <= time.Friday; d++ {
		w[int(d)] = DaySchedule{Active: true, StartHour: 9, EndHour: 18}
	}
	return w
}
