package engine_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegood/peoplix/internal/planning/engine"
)

// 2025-03-01 is a Saturday; 2025-03-03 the following Monday.
var (
	saturday  = engine.Date{Year: 2025, Month: time.March, Day: 1}
	monday    = engine.Date{Year: 2025, Month: time.March, Day: 3}
	tuesday   = engine.Date{Year: 2025, Month: time.March, Day: 4}
	wednesday = engine.Date{Year: 2025, Month: time.March, Day: 5}
	friday    = engine.Date{Year: 2025, Month: time.March, Day: 7}
	nextMon   = engine.Date{Year: 2025, Month: time.March, Day: 10}
)

func defaultFacts() engine.CalendarFacts {
	return engine.ResolveFacts(engine.Calendar{}, nil)
}

func factsWithBlocked(days ...engine.Date) engine.CalendarFacts {
	facts := defaultFacts()
	for _, d := range days {
		facts.Blocked[d] = struct{}{}
	}
	return facts
}

func TestDayCapacity_DefaultSchedule(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// 9h window minus the lunch break.
	capacity := e.DayCapacity(monday, monday.Midnight(), facts, nil)
	assert.InDelta(t, 8.0, capacity, 1e-9)
}

func TestDayCapacity_InactiveWeekday(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	assert.Zero(t, e.DayCapacity(saturday, saturday.Midnight(), facts, nil))
}

func TestDayCapacity_BlockedDate(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := factsWithBlocked(monday)

	assert.Zero(t, e.DayCapacity(monday, monday.Midnight(), facts, nil))
}

func TestDayCapacity_CursorClipsWindow(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// Cursor at 10:30 rounds up to 11:00, leaving 7h minus lunch.
	cursor := monday.At(10.5)
	capacity := e.DayCapacity(monday, cursor, facts, nil)
	assert.InDelta(t, 6.0, capacity, 1e-9)
}

func TestDayCapacity_NoLunchAfterCutoff(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// Cursor at 15:00 is past the midday break: 18-15 = 3h, no deduction.
	capacity := e.DayCapacity(monday, monday.At(15), facts, nil)
	assert.InDelta(t, 3.0, capacity, 1e-9)
}

func TestDayCapacity_NoLunchForShortWindow(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()
	for d := time.Monday; d <= time.Friday; d++ {
		facts.Week[int(d)] = engine.DaySchedule{Active: true, StartHour: 9, EndHour: 16}
	}

	// 7h span: no unpaid break assumed.
	capacity := e.DayCapacity(monday, monday.Midnight(), facts, nil)
	assert.InDelta(t, 7.0, capacity, 1e-9)
}

func TestDayCapacity_RecurringEventDeductions(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()
	events := []engine.RecurringEvent{
		{Kind: engine.RecurrenceDaily, Hours: 1, ValidFrom: saturday},
		{Kind: engine.RecurrenceWeekly, Hours: 2, ValidFrom: saturday, Weekday: time.Monday},
	}

	capacity := e.DayCapacity(monday, monday.Midnight(), facts, events)
	assert.InDelta(t, 5.0, capacity, 1e-9)

	// Weekly event does not apply on Wednesday.
	capacity = e.DayCapacity(wednesday, wednesday.Midnight(), facts, events)
	assert.InDelta(t, 7.0, capacity, 1e-9)
}

func TestDayCapacity_FloorsAtZero(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()
	events := []engine.RecurringEvent{
		{Kind: engine.RecurrenceDaily, Hours: 20, ValidFrom: saturday},
	}

	assert.Zero(t, e.DayCapacity(monday, monday.Midnight(), facts, events))
}

func TestPlace_WeekendSkip(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// 8h starting Saturday ends no earlier than the following Monday.
	end, err := e.Place(saturday.At(11), 8, facts, nil)
	require.NoError(t, err)
	assert.False(t, end.Before(monday.Midnight()))
	assert.Equal(t, monday, engine.DateOf(end))
	assert.Equal(t, monday.At(17), end)
}

func TestPlace_MultiDaySpanning(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// Friday 09:00 + 10h: Friday supplies 8h, the weekend is skipped and the
	// remaining 2h land Monday at 11:00.
	end, err := e.Place(friday.At(9), 10, facts, nil)
	require.NoError(t, err)
	assert.Equal(t, nextMon.At(11), end)
}

func TestPlace_HolidayExclusion(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := factsWithBlocked(tuesday)
	events := []engine.RecurringEvent{
		{Kind: engine.RecurrenceDaily, Hours: 1, ValidFrom: saturday},
	}

	// Monday 09:00 + 8h at 7 effective hours/day: Monday consumes 7h,
	// Tuesday is blocked, Wednesday supplies the last hour at 10:00.
	end, err := e.Place(monday.At(9), 8, facts, events)
	require.NoError(t, err)
	assert.Equal(t, wednesday.At(10), end)
}

func TestPlace_MidDayStart(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// Monday 14:30 rounds up to 15:00; 3h fit the same day ending 18:00.
	end, err := e.Place(monday.At(14.5), 3, facts, nil)
	require.NoError(t, err)
	assert.Equal(t, monday.At(18), end)
}

func TestPlace_EndNeverBeforeStart(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	for _, hours := range []float64{0.5, 1, 4, 8, 9, 16, 40} {
		start := monday.At(9)
		end, err := e.Place(start, hours, facts, nil)
		require.NoError(t, err)
		assert.False(t, end.Before(start), "hours=%v", hours)
	}
}

func TestPlace_Deterministic(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := factsWithBlocked(tuesday)
	events := []engine.RecurringEvent{
		{Kind: engine.RecurrenceDaily, Hours: 1.5, ValidFrom: saturday},
	}

	first, err := e.Place(monday.At(9), 23, facts, events)
	require.NoError(t, err)
	second, err := e.Place(monday.At(9), 23, facts, events)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPlace_ZeroHours(t *testing.T) {
	e := engine.New(engine.DefaultConfig())

	end, err := e.Place(monday.At(9), 0, defaultFacts(), nil)
	require.NoError(t, err)
	assert.Equal(t, monday.At(9), end)
}

func TestPlace_ExhaustedCalendarDegrades(t *testing.T) {
	e := engine.New(engine.Config{MaxPlacementDays: 30})
	facts := engine.ResolveFacts(engine.Calendar{Week: &engine.WeekSchedule{}}, nil)

	// Every weekday inactive: the walk hits its cap and pins 18:00.
	end, err := e.Place(monday.At(9), 8, facts, nil)
	require.ErrorIs(t, err, engine.ErrCalendarExhausted)
	assert.Equal(t, 18, end.Hour())
	assert.False(t, end.Before(monday.Midnight()))
}

func TestRollToNextSlot_WorkingInstantUnchanged(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	instant := monday.At(10.25)
	assert.Equal(t, instant, e.RollToNextSlot(instant, facts))
}

func TestRollToNextSlot_WeekendRollsToMondayMidnight(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	rolled := e.RollToNextSlot(saturday.At(15), facts)
	assert.Equal(t, monday.Midnight(), rolled)
}

func TestRollToNextSlot_LastHourRolls(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	// 17:30 is inside the last hour of a 09:00-18:00 window.
	rolled := e.RollToNextSlot(monday.At(17.5), facts)
	assert.Equal(t, tuesday.Midnight(), rolled)
}

func TestRollToNextSlot_SkipsBlockedDates(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := factsWithBlocked(monday, tuesday)

	rolled := e.RollToNextSlot(saturday.At(8), facts)
	assert.Equal(t, wednesday.Midnight(), rolled)
}

func TestResolveStart_UsesLatestMatchingPredecessor(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()
	roleID := uuid.New()
	collabID := uuid.New()

	early := monday.At(12)
	late := tuesday.At(17.5) // inside the last hour: rolls to Wednesday
	otherEnd := friday.At(12)
	preceding := []engine.EstimationWindow{
		{RoleID: roleID, CollaboratorID: collabID, End: &early},
		{RoleID: roleID, CollaboratorID: collabID, End: &late},
		{RoleID: uuid.New(), CollaboratorID: collabID, End: &otherEnd},
	}

	start := e.ResolveStart(roleID, collabID, preceding, saturday.Midnight(), facts)
	assert.Equal(t, wednesday.Midnight(), start)
}

func TestResolveStart_FallsBackToStartInstant(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()
	roleID := uuid.New()
	collabID := uuid.New()

	started := monday.At(10)
	preceding := []engine.EstimationWindow{
		{RoleID: roleID, CollaboratorID: collabID, Start: &started},
	}

	start := e.ResolveStart(roleID, collabID, preceding, saturday.Midnight(), facts)
	assert.Equal(t, monday.At(10), start)
}

func TestResolveStart_NoMatchUsesFallbackUnmodified(t *testing.T) {
	e := engine.New(engine.DefaultConfig())
	facts := defaultFacts()

	fallback := saturday.At(3) // non-working, still returned untouched
	start := e.ResolveStart(uuid.New(), uuid.New(), nil, fallback, facts)
	assert.Equal(t, fallback, start)
}
