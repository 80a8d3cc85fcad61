package engine

import "time"

// RecurrenceKind identifies how a recurring event repeats.
type RecurrenceKind string

const (
	RecurrenceDaily        RecurrenceKind = "daily"
	RecurrenceWeekly       RecurrenceKind = "weekly"
	RecurrenceMonthly      RecurrenceKind = "monthly"
	RecurrenceSpecificDate RecurrenceKind = "specific_date"
)

// IsValid returns true if the kind is a known recurrence.
func (k RecurrenceKind) IsValid() bool {
	switch k {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceSpecificDate:
		return true
	default:
		return false
	}
}

// RecurringEvent is a capacity-reducing activity, supplied to the engine as
// plain data. Weekday applies to weekly events, DayOfMonth to monthly events
// and Date to specific-date events.
type RecurringEvent struct {
	Kind       RecurrenceKind
	Hours      float64
	ValidFrom  Date
	ValidUntil *Date
	Weekday    time.Weekday
	DayOfMonth int
	Date       *Date
}

// AppliesTo reports whether the event consumes capacity on the given day.
// The day must fall inside the validity window and match the recurrence rule.
func (ev RecurringEvent) AppliesTo(day Date) bool {
	if day.Before(ev.ValidFrom) {
		return false
	}
	if ev.ValidUntil != nil && day.After(*ev.ValidUntil) {
		return false
	}

	switch ev.Kind {
	case RecurrenceDaily:
		return true
	case RecurrenceWeekly:
		return day.Weekday() == ev.Weekday
	case RecurrenceMonthly:
		return day.Day == ev.DayOfMonth
	case RecurrenceSpecificDate:
		return ev.Date != nil && *ev.Date == day
	default:
		return false
	}
}

// eventHours sums the hours of every event applicable to the day.
func eventHours(day Date, events []RecurringEvent) float64 {
	var total float64
	for _, ev := range events {
		if ev.AppliesTo(day) {
			total += ev.Hours
		}
	}
	return total
}
