package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/diegood/peoplix/internal/shared/domain"
)

// AbsenceType classifies a personal absence range.
type AbsenceType string

const (
	AbsenceVacation AbsenceType = "vacation"
	AbsenceSick     AbsenceType = "sick"
	AbsenceTraining AbsenceType = "training"
	AbsenceOther    AbsenceType = "other"
)

// Absence is a personal unavailability range, endpoints inclusive.
type Absence struct {
	From time.Time
	To   time.Time
	Type AbsenceType
}

// HolidayCalendar is a year-scoped list of holiday dates as imported from the
// external holiday service. Days keeps the raw payload untouched: depending on
// import age it is either a JSON array or a JSON string wrapping one, and the
// planning engine parses it totally, degrading to empty on malformed data.
type HolidayCalendar struct {
	Year int
	Days json.RawMessage
}

// WorkCenter is the organizational site a collaborator is attached to,
// carrying the public holiday calendars that apply to everyone there.
type WorkCenter struct {
	ID                     uuid.UUID
	Name                   string
	PublicHolidayCalendars []HolidayCalendar
}

// Collaborator is a person who can receive task estimations. Its calendar
// data is read-only from the planning engine's perspective.
type Collaborator struct {
	sharedDomain.BaseEntity
	name              string
	absences          []Absence
	holidayCalendars  []HolidayCalendar
	workCenter        *WorkCenter
	workingSchedule   WorkingSchedule
	useCustomSchedule bool
}

// NewCollaborator creates a collaborator with no calendar constraints.
func NewCollaborator(name string) *Collaborator {
	return &Collaborator{
		BaseEntity: sharedDomain.NewBaseEntity(),
		name:       name,
	}
}

func (c *Collaborator) Name() string            { return c.name }
func (c *Collaborator) WorkCenter() *WorkCenter { return c.workCenter }
func (c *Collaborator) UsesCustomSchedule() bool {
	return c.useCustomSchedule
}

// Absences returns the personal absence ranges.
func (c *Collaborator) Absences() []Absence {
	out := make([]Absence, len(c.absences))
	copy(out, c.absences)
	return out
}

// HolidayCalendars returns the personal ad-hoc holiday lists.
func (c *Collaborator) HolidayCalendars() []HolidayCalendar {
	out := make([]HolidayCalendar, len(c.holidayCalendars))
	copy(out, c.holidayCalendars)
	return out
}

// WorkingSchedule returns the per-weekday schedule. It only takes effect when
// UsesCustomSchedule is true; otherwise the organization default applies.
func (c *Collaborator) WorkingSchedule() WorkingSchedule {
	return c.workingSchedule
}

// AddAbsence records a personal absence range.
func (c *Collaborator) AddAbsence(from, to time.Time, kind AbsenceType) {
	c.absences = append(c.absences, Absence{From: from.UTC(), To: to.UTC(), Type: kind})
	c.Touch()
}

// AddHolidayCalendar attaches a personal holiday list for a year.
func (c *Collaborator) AddHolidayCalendar(year int, days json.RawMessage) {
	c.holidayCalendars = append(c.holidayCalendars, HolidayCalendar{Year: year, Days: days})
	c.Touch()
}

// AssignWorkCenter attaches the collaborator to a work center.
func (c *Collaborator) AssignWorkCenter(wc *WorkCenter) {
	c.workCenter = wc
	c.Touch()
}

// UseSchedule activates a custom per-weekday schedule.
func (c *Collaborator) UseSchedule(schedule WorkingSchedule) {
	c.workingSchedule = schedule
	c.useCustomSchedule = true
	c.Touch()
}

// ClearCustomSchedule reverts to the organization default schedule.
func (c *Collaborator) ClearCustomSchedule() {
	c.useCustomSchedule = false
	c.Touch()
}

// RehydrateCollaborator recreates a collaborator from persisted state.
func RehydrateCollaborator(
	id uuid.UUID,
	name string,
	absences []Absence,
	holidayCalendars []HolidayCalendar,
	workCenter *WorkCenter,
	schedule WorkingSchedule,
	useCustomSchedule bool,
	createdAt, updatedAt time.Time,
) *Collaborator {
	return &Collaborator{
		BaseEntity:        sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		name:              name,
		absences:          absences,
		holidayCalendars:  holidayCalendars,
		workCenter:        workCenter,
		workingSchedule:   schedule,
		useCustomSchedule: useCustomSchedule,
	}
}
