// Package engine implements the calendar-aware scheduling core: it turns an
// effort estimate and a start instant into a concrete end instant, honoring a
// collaborator's working schedule, blocked dates and recurring events.
//
// The engine is pure. It performs no I/O and holds no mutable state; calendar
// facts and recurring events are injected as plain data, so the authoritative
// recompute path and any what-if preview share one implementation.
package engine

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
)

// ErrCalendarExhausted is returned together with a degraded placement when the
// day-walk hits its iteration cap, which only happens when every reachable day
// has zero capacity. The accompanying instant is pinned to the fallback hour
// on the cursor's last day so callers still get a defined result.
var ErrCalendarExhausted = errors.New("calendar capacity exhausted before placement completed")

// hourEpsilon absorbs float drift when comparing fractional hours.
const hourEpsilon = 1e-9

// Config tunes the placement heuristics.
type Config struct {
	// MaxPlacementDays caps the day-by-day walk, guaranteeing termination
	// on pathological calendars where no day ever has capacity.
	MaxPlacementDays int
	// LunchSpanHours is the nominal window width above which a day is
	// assumed to include an unpaid midday break.
	LunchSpanHours float64
	// LunchCutoffHour skips the break deduction once the cursor is already
	// past the midday break.
	LunchCutoffHour float64
	// LunchBreakHours is the size of the deducted break.
	LunchBreakHours float64
	// FallbackEndHour is the hour-of-day a degraded placement is pinned to.
	FallbackEndHour float64
}

// DefaultConfig returns the production configuration.
func DefaultConfig() Config {
	return Config{
		MaxPlacementDays: 1500,
		LunchSpanHours:   8,
		LunchCutoffHour:  14,
		LunchBreakHours:  1,
		FallbackEndHour:  18,
	}
}

// Engine places task effort on the calendar. Safe for concurrent use.
type Engine struct {
	cfg Config
}

// New creates an engine. Zero config fields fall back to defaults.
func New(cfg Config) *Engine {
	def := DefaultConfig()
	if cfg.MaxPlacementDays <= 0 {
		cfg.MaxPlacementDays = def.MaxPlacementDays
	}
	if cfg.LunchSpanHours <= 0 {
		cfg.LunchSpanHours = def.LunchSpanHours
	}
	if cfg.LunchCutoffHour <= 0 {
		cfg.LunchCutoffHour = def.LunchCutoffHour
	}
	if cfg.LunchBreakHours <= 0 {
		cfg.LunchBreakHours = def.LunchBreakHours
	}
	if cfg.FallbackEndHour <= 0 {
		cfg.FallbackEndHour = def.FallbackEndHour
	}
	return &Engine{cfg: cfg}
}

// DayCapacity computes the net working hours the collaborator has left on the
// given day. The cursor marks where the current placement stands: when it
// falls on the same day, the window is clipped to the cursor's hour, partial
// hours rounded up.
//
// A window wider than the configured lunch span is assumed to include an
// unpaid break, deducted unless the cursor is already past the midday cutoff.
// Applicable recurring events are deducted afterwards. Capacity never goes
// below zero.
func (e *Engine) DayCapacity(day Date, cursor time.Time, facts CalendarFacts, events []RecurringEvent) float64 {
	ds := facts.DaySchedule(day)
	if !ds.Active || facts.IsBlocked(day) {
		return 0
	}

	cursorHour := 0.0
	if !cursor.IsZero() && DateOf(cursor) == day {
		cursorHour = hourOfDay(cursor)
	}

	start := ds.StartHour
	if h := math.Ceil(cursorHour); h > start {
		start = h
	}

	capacity := ds.EndHour - start
	if capacity <= 0 {
		return 0
	}

	if ds.Span() > e.cfg.LunchSpanHours && cursorHour < e.cfg.LunchCutoffHour {
		capacity -= e.cfg.LunchBreakHours
	}
	capacity -= eventHours(day, events)

	if capacity < 0 {
		return 0
	}
	return capacity
}

// Place walks the calendar day by day from the start instant, consuming
// capacity until the requested hours are exhausted, and returns the resulting
// end instant. Deterministic and idempotent for identical inputs.
//
// When the iteration cap is reached the placement degrades: the returned
// instant is pinned to the fallback hour on the cursor's current day and the
// error is ErrCalendarExhausted.
func (e *Engine) Place(start time.Time, hours float64, facts CalendarFacts, events []RecurringEvent) (time.Time, error) {
	cursor := start.UTC()
	if hours <= 0 {
		return cursor, nil
	}

	remaining := hours
	for i := 0; i < e.cfg.MaxPlacementDays; i++ {
		day := DateOf(cursor)
		capacity := e.DayCapacity(day, cursor, facts, events)

		if capacity <= 0 {
			cursor = day.Next().Midnight()
			continue
		}

		if remaining <= capacity+hourEpsilon {
			return day.At(e.blockStart(day, cursor, facts) + remaining), nil
		}

		remaining -= capacity
		cursor = day.Next().Midnight()
	}

	return DateOf(cursor).At(e.cfg.FallbackEndHour), ErrCalendarExhausted
}

// blockStart is the hour the task block begins on the finishing day: the
// schedule opening, or the cursor's own hour rounded up when the placement
// enters the day partway through.
func (e *Engine) blockStart(day Date, cursor time.Time, facts CalendarFacts) float64 {
	start := facts.DaySchedule(day).StartHour
	if DateOf(cursor) == day {
		if h := math.Ceil(hourOfDay(cursor)); h > start {
			start = h
		}
	}
	return start
}

// RollToNextSlot advances an instant until it lands on a usable working slot.
// An instant on a non-working day, or inside the last hour of the day's
// window, rolls to midnight of the next working day. Midnight is the visual
// day-start convention for rolled starts; placement later clips to the
// schedule opening. Anything else passes through unchanged.
func (e *Engine) RollToNextSlot(t time.Time, facts CalendarFacts) time.Time {
	u := t.UTC()
	day := DateOf(u)

	if facts.workingDay(day) && hourOfDay(u) < facts.DaySchedule(day).EndHour-1 {
		return u
	}

	d := day.Next()
	for i := 0; i < e.cfg.MaxPlacementDays; i++ {
		if facts.workingDay(d) {
			break
		}
		d = d.Next()
	}
	return d.Midnight()
}

// EstimationWindow is the placement of one (role, collaborator) estimation on
// a preceding task, as plain data for sequential start resolution.
type EstimationWindow struct {
	RoleID         uuid.UUID
	CollaboratorID uuid.UUID
	Start          *time.Time
	End            *time.Time
}

// ResolveStart determines the earliest legal start for the next task in an
// ordered list. Among the preceding estimation windows for the same role and
// collaborator, the latest end instant (or start, when no end is set yet) is
// rolled to the next working slot; absent any such window, the fallback is
// returned unmodified.
func (e *Engine) ResolveStart(roleID, collaboratorID uuid.UUID, preceding []EstimationWindow, fallback time.Time, facts CalendarFacts) time.Time {
	var latest time.Time
	found := false

	for _, w := range preceding {
		if w.RoleID != roleID || w.CollaboratorID != collaboratorID {
			continue
		}
		ref := w.End
		if ref == nil {
			ref = w.Start
		}
		if ref == nil {
			continue
		}
		if !found || ref.After(latest) {
			latest = *ref
			found = true
		}
	}

	if !found {
		return fallback
	}
	return e.RollToNextSlot(latest, facts)
}

// hourOfDay returns the fractional hour-of-day of an instant.
func hourOfDay(t time.Time) float64 {
	u := t.UTC()
	return float64(u.Hour()) + float64(u.Minute())/60 + float64(u.Second())/3600
}
