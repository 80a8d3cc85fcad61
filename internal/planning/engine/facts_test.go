package engine_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegood/peoplix/internal/planning/engine"
)

func TestResolveFacts_EmptyCalendarUsesDefaults(t *testing.T) {
	facts := engine.ResolveFacts(engine.Calendar{}, nil)

	assert.Empty(t, facts.Blocked)
	assert.False(t, facts.Week.For(time.Saturday).Active)
	assert.False(t, facts.Week.For(time.Sunday).Active)
	for d := time.Monday; d <= time.Friday; d++ {
		ds := facts.Week.For(d)
		assert.True(t, ds.Active)
		assert.Equal(t, 9.0, ds.StartHour)
		assert.Equal(t, 18.0, ds.EndHour)
	}
}

func TestResolveFacts_SchedulePrecedence(t *testing.T) {
	org := engine.DefaultWeekSchedule()
	org[int(time.Monday)] = engine.DaySchedule{Active: true, StartHour: 8, EndHour: 16}

	override := engine.DefaultWeekSchedule()
	override[int(time.Monday)] = engine.DaySchedule{Active: true, StartHour: 10, EndHour: 15}

	// Organization default applies without a collaborator override.
	facts := engine.ResolveFacts(engine.Calendar{}, &org)
	assert.Equal(t, 8.0, facts.Week.For(time.Monday).StartHour)

	// Collaborator override wins.
	facts = engine.ResolveFacts(engine.Calendar{Week: &override}, &org)
	assert.Equal(t, 10.0, facts.Week.For(time.Monday).StartHour)
}

func TestResolveFacts_ExpandsAbsencesInclusive(t *testing.T) {
	cal := engine.Calendar{
		Absences: []engine.DateRange{{From: monday, To: wednesday}},
	}

	facts := engine.ResolveFacts(cal, nil)

	assert.Len(t, facts.Blocked, 3)
	assert.True(t, facts.IsBlocked(monday))
	assert.True(t, facts.IsBlocked(tuesday))
	assert.True(t, facts.IsBlocked(wednesday))
	assert.False(t, facts.IsBlocked(friday))
}

func TestResolveFacts_InvertedAbsenceRangeIgnored(t *testing.T) {
	cal := engine.Calendar{
		Absences: []engine.DateRange{{From: wednesday, To: monday}},
	}

	facts := engine.ResolveFacts(cal, nil)
	assert.Empty(t, facts.Blocked)
}

func TestParseHolidayPayload_StructuredAndStringEncodedMatch(t *testing.T) {
	structured := json.RawMessage(`["2025-03-03","2025-03-04"]`)
	encoded, err := json.Marshal(`["2025-03-03","2025-03-04"]`)
	require.NoError(t, err)

	a := engine.ParseHolidayPayload(structured)
	b := engine.ParseHolidayPayload(encoded)

	assert.Equal(t, a, b)
	assert.Equal(t, []engine.Date{monday, tuesday}, a)
}

func TestParseHolidayPayload_ObjectEntries(t *testing.T) {
	payload := json.RawMessage(`[{"date":"2025-03-03"},{"date":"2025-03-05"}]`)

	dates := engine.ParseHolidayPayload(payload)
	assert.Equal(t, []engine.Date{monday, wednesday}, dates)
}

func TestParseHolidayPayload_EpochMillisEntries(t *testing.T) {
	ms := monday.Midnight().UnixMilli()
	payload, err := json.Marshal([]int64{ms})
	require.NoError(t, err)

	dates := engine.ParseHolidayPayload(payload)
	assert.Equal(t, []engine.Date{monday}, dates)
}

func TestParseHolidayPayload_MalformedDegradesToEmpty(t *testing.T) {
	for _, raw := range []string{
		``,
		`not json`,
		`{"unexpected":"shape"}`,
		`"also not a list"`,
		`123`,
	} {
		assert.Empty(t, engine.ParseHolidayPayload(json.RawMessage(raw)), "payload %q", raw)
	}
}

func TestParseHolidayPayload_SkipsUnparsableEntries(t *testing.T) {
	payload := json.RawMessage(`["2025-03-03", "garbage", {"date":null}, "2025-03-04"]`)

	dates := engine.ParseHolidayPayload(payload)
	assert.Equal(t, []engine.Date{monday, tuesday}, dates)
}

func TestParseInstant(t *testing.T) {
	want := time.Date(2025, time.March, 3, 9, 30, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   any
	}{
		{"rfc3339", "2025-03-03T09:30:00Z"},
		{"no zone", "2025-03-03T09:30:00"},
		{"epoch millis int", want.UnixMilli()},
		{"epoch millis float", float64(want.UnixMilli())},
		{"epoch millis string", "1740994200000"},
		{"json number", json.Number("1740994200000")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := engine.ParseInstant(tc.in)
			require.True(t, ok)
			assert.Equal(t, want, got)
		})
	}

	t.Run("bare date", func(t *testing.T) {
		got, ok := engine.ParseInstant("2025-03-03")
		require.True(t, ok)
		assert.Equal(t, monday.Midnight(), got)
	})

	for _, bad := range []any{"", "yesterday", nil, struct{}{}, time.Time{}} {
		_, ok := engine.ParseInstant(bad)
		assert.False(t, ok, "input %v", bad)
	}
}

func TestRecurringEvent_AppliesTo(t *testing.T) {
	until := wednesday

	cases := []struct {
		name string
		ev   engine.RecurringEvent
		day  engine.Date
		want bool
	}{
		{"daily inside window", engine.RecurringEvent{Kind: engine.RecurrenceDaily, ValidFrom: monday}, tuesday, true},
		{"daily before window", engine.RecurringEvent{Kind: engine.RecurrenceDaily, ValidFrom: tuesday}, monday, false},
		{"daily after window", engine.RecurringEvent{Kind: engine.RecurrenceDaily, ValidFrom: monday, ValidUntil: &until}, friday, false},
		{"weekly match", engine.RecurringEvent{Kind: engine.RecurrenceWeekly, ValidFrom: saturday, Weekday: time.Tuesday}, tuesday, true},
		{"weekly mismatch", engine.RecurringEvent{Kind: engine.RecurrenceWeekly, ValidFrom: saturday, Weekday: time.Tuesday}, wednesday, false},
		{"monthly match", engine.RecurringEvent{Kind: engine.RecurrenceMonthly, ValidFrom: saturday, DayOfMonth: 4}, tuesday, true},
		{"monthly mismatch", engine.RecurringEvent{Kind: engine.RecurrenceMonthly, ValidFrom: saturday, DayOfMonth: 4}, monday, false},
		{"specific date match", engine.RecurringEvent{Kind: engine.RecurrenceSpecificDate, ValidFrom: saturday, Date: &tuesday}, tuesday, true},
		{"specific date mismatch", engine.RecurringEvent{Kind: engine.RecurrenceSpecificDate, ValidFrom: saturday, Date: &tuesday}, monday, false},
		{"specific date nil", engine.RecurringEvent{Kind: engine.RecurrenceSpecificDate, ValidFrom: saturday}, monday, false},
		{"unknown kind", engine.RecurringEvent{Kind: "yearly", ValidFrom: saturday}, monday, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.ev.AppliesTo(tc.day))
		})
	}
}

func TestDateRange_DatesInclusive(t *testing.T) {
	r := engine.DateRange{From: monday, To: wednesday}
	assert.Equal(t, []engine.Date{monday, tuesday, wednesday}, r.Dates())

	single := engine.DateRange{From: monday, To: monday}
	assert.Equal(t, []engine.Date{monday}, single.Dates())
}
