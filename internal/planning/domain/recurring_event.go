package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/engine"
	sharedDomain "github.com/diegood/peoplix/internal/shared/domain"
)

var ErrInvalidRecurrence = errors.New("invalid recurrence kind")

// RecurringEvent is a periodic or one-off activity scoped to a work package
// that consumes part of a working day's capacity without being a task itself,
// a weekly sync for instance.
type RecurringEvent struct {
	sharedDomain.BaseEntity
	workPackageID uuid.UUID
	name          string
	kind          engine.RecurrenceKind
	hours         float64
	validFrom     engine.Date
	validUntil    *engine.Date
	weekday       time.Weekday
	dayOfMonth    int
	date          *engine.Date
}

// NewRecurringEvent creates a recurring event for a work package.
func NewRecurringEvent(workPackageID uuid.UUID, name string, kind engine.RecurrenceKind, hours float64, validFrom engine.Date) (*RecurringEvent, error) {
	if !kind.IsValid() {
		return nil, ErrInvalidRecurrence
	}
	if hours <= 0 {
		return nil, ErrInvalidHours
	}
	return &RecurringEvent{
		BaseEntity:    sharedDomain.NewBaseEntity(),
		workPackageID: workPackageID,
		name:          name,
		kind:          kind,
		hours:         hours,
		validFrom:     validFrom,
	}, nil
}

func (ev *RecurringEvent) WorkPackageID() uuid.UUID     { return ev.workPackageID }
func (ev *RecurringEvent) Name() string                 { return ev.name }
func (ev *RecurringEvent) Kind() engine.RecurrenceKind  { return ev.kind }
func (ev *RecurringEvent) Hours() float64               { return ev.hours }
func (ev *RecurringEvent) ValidFrom() engine.Date       { return ev.validFrom }
func (ev *RecurringEvent) ValidUntil() *engine.Date     { return ev.validUntil }
func (ev *RecurringEvent) EventWeekday() time.Weekday   { return ev.weekday }
func (ev *RecurringEvent) DayOfMonth() int              { return ev.dayOfMonth }
func (ev *RecurringEvent) SpecificDate() *engine.Date   { return ev.date }

// EndValidity bounds the event's validity window.
func (ev *RecurringEvent) EndValidity(until engine.Date) {
	u := until
	ev.validUntil = &u
	ev.Touch()
}

// OnWeekday sets the weekday selector for weekly events.
func (ev *RecurringEvent) OnWeekday(day time.Weekday) {
	ev.weekday = day
	ev.Touch()
}

// OnDayOfMonth sets the day-of-month selector for monthly events.
func (ev *RecurringEvent) OnDayOfMonth(day int) {
	ev.dayOfMonth = day
	ev.Touch()
}

// OnDate sets the single date for specific-date events.
func (ev *RecurringEvent) OnDate(date engine.Date) {
	d := date
	ev.date = &d
	ev.Touch()
}

// EngineEvent converts the aggregate to the plain value the engine consumes.
func (ev *RecurringEvent) EngineEvent() engine.RecurringEvent {
	var until *engine.Date
	if ev.validUntil != nil {
		u := *ev.validUntil
		until = &u
	}
	var date *engine.Date
	if ev.date != nil {
		d := *ev.date
		date = &d
	}
	return engine.RecurringEvent{
		Kind:       ev.kind,
		Hours:      ev.hours,
		ValidFrom:  ev.validFrom,
		ValidUntil: until,
		Weekday:    ev.weekday,
		DayOfMonth: ev.dayOfMonth,
		Date:       date,
	}
}

// RehydrateRecurringEvent recreates a recurring event from persisted state.
func RehydrateRecurringEvent(
	id uuid.UUID,
	workPackageID uuid.UUID,
	name string,
	kind engine.RecurrenceKind,
	hours float64,
	validFrom engine.Date,
	validUntil *engine.Date,
	weekday time.Weekday,
	dayOfMonth int,
	date *engine.Date,
	createdAt, updatedAt time.Time,
) *RecurringEvent {
	return &RecurringEvent{
		BaseEntity:    sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		workPackageID: workPackageID,
		name:          name,
		kind:          kind,
		hours:         hours,
		validFrom:     validFrom,
		validUntil:    validUntil,
		weekday:       weekday,
		dayOfMonth:    dayOfMonth,
		date:          date,
	}
}
