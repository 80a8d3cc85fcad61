package engine

import "encoding/json"

// Calendar is the raw, collaborator-shaped input to facts resolution,
// supplied as plain data by the application layer. The zero value is a
// collaborator with no constraints on the organization default schedule.
type Calendar struct {
	// Absences are personal unavailability ranges, endpoints inclusive.
	Absences []DateRange
	// HolidayPayloads are personal and work-center holiday lists as stored:
	// either a JSON array of dates or a JSON string wrapping such an array.
	HolidayPayloads []json.RawMessage
	// Week is the collaborator's schedule override, active when non-nil.
	Week *WeekSchedule
}

// CalendarFacts is the resolved, engine-ready view of a collaborator's
// calendar: the set of dates with zero capacity for reasons other than
// weekday, and the effective weekly working-hours schedule.
type CalendarFacts struct {
	Blocked map[Date]struct{}
	Week    WeekSchedule
}

// IsBlocked reports whether the date is non-working regardless of weekday.
func (f CalendarFacts) IsBlocked(d Date) bool {
	_, ok := f.Blocked[d]
	return ok
}

// DaySchedule returns the effective working window for the date's weekday.
func (f CalendarFacts) DaySchedule(d Date) DaySchedule {
	return f.Week.For(d.Weekday())
}

// workingDay reports whether the date has an active window and is not blocked.
func (f CalendarFacts) workingDay(d Date) bool {
	return f.DaySchedule(d).Active && !f.IsBlocked(d)
}

// ResolveFacts derives calendar facts from raw collaborator data. A nil or
// empty calendar degrades to no blocked dates; the schedule falls back from
// the collaborator override to the organization default to the built-in
// Monday-Friday 09:00-18:00 week. Resolution never fails: malformed holiday
// payloads contribute nothing.
func ResolveFacts(cal Calendar, orgWeek *WeekSchedule) CalendarFacts {
	blocked := make(map[Date]struct{})

	for _, r := range cal.Absences {
		for _, d := range r.Dates() {
			blocked[d] = struct{}{}
		}
	}
	for _, payload := range cal.HolidayPayloads {
		for _, d := range ParseHolidayPayload(payload) {
			blocked[d] = struct{}{}
		}
	}

	week := DefaultWeekSchedule()
	switch {
	case cal.Week != nil:
		week = *cal.Week
	case orgWeek != nil:
		week = *orgWeek
	}

	return CalendarFacts{Blocked: blocked, Week: week}
}

// ParseHolidayPayload extracts calendar dates from a stored holiday list.
// Payloads arrive in two shapes: a structured JSON array, or the same array
// encoded once more as a JSON string. Array entries may be ISO date strings,
// epoch milliseconds, or objects carrying a "date" field. The parse is total:
// any malformed payload or entry degrades to nothing rather than failing.
func ParseHolidayPayload(raw json.RawMessage) []Date {
	if len(raw) == 0 {
		return nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		// Maybe a string-encoded list: unwrap one level and retry.
		var wrapped string
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil
		}
		if err := json.Unmarshal([]byte(wrapped), &entries); err != nil {
			return nil
		}
	}

	var dates []Date
	for _, entry := range entries {
		if d, ok := parseHolidayEntry(entry); ok {
			dates = append(dates, d)
		}
	}
	return dates
}

func parseHolidayEntry(entry json.RawMessage) (Date, bool) {
	var s string
	if err := json.Unmarshal(entry, &s); err == nil {
		return parseDateValue(s)
	}

	var obj struct {
		Date json.RawMessage `json:"date"`
	}
	if err := json.Unmarshal(entry, &obj); err == nil && len(obj.Date) > 0 {
		return parseHolidayEntry(obj.Date)
	}

	var n json.Number
	if err := json.Unmarshal(entry, &n); err == nil {
		if t, ok := ParseInstant(n); ok {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

func parseDateValue(s string) (Date, bool) {
	if d, err := ParseDate(s); err == nil {
		return d, true
	}
	if t, ok := ParseInstant(s); ok {
		return DateOf(t), true
	}
	return Date{}, false
}
