package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/diegood/peoplix/internal/workforce/domain"
)

func TestNewCollaborator(t *testing.T) {
	c := domain.NewCollaborator("Alice")

	assert.NotEqual(t, uuid.Nil, c.ID())
	assert.Equal(t, "Alice", c.Name())
	assert.Empty(t, c.Absences())
	assert.Empty(t, c.HolidayCalendars())
	assert.Nil(t, c.WorkCenter())
	assert.False(t, c.UsesCustomSchedule())
}

func TestCollaborator_AddAbsence(t *testing.T) {
	c := domain.NewCollaborator("Alice")
	from := time.Date(2025, time.August, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)

	c.AddAbsence(from, to, domain.AbsenceVacation)

	absences := c.Absences()
	assert.Len(t, absences, 1)
	assert.Equal(t, from, absences[0].From)
	assert.Equal(t, to, absences[0].To)
	assert.Equal(t, domain.AbsenceVacation, absences[0].Type)
}

func TestCollaborator_Schedules(t *testing.T) {
	c := domain.NewCollaborator("Bob")

	var schedule domain.WorkingSchedule
	schedule.Set(time.Monday, domain.WorkingDay{Active: true, StartHour: 7, EndHour: 15})
	c.UseSchedule(schedule)

	assert.True(t, c.UsesCustomSchedule())
	assert.Equal(t, 7.0, c.WorkingSchedule().For(time.Monday).StartHour)

	c.ClearCustomSchedule()
	assert.False(t, c.UsesCustomSchedule())
	// The stored schedule survives the toggle.
	assert.Equal(t, 7.0, c.WorkingSchedule().For(time.Monday).StartHour)
}

func TestCollaborator_HolidayCalendars(t *testing.T) {
	c := domain.NewCollaborator("Carol")
	c.AddHolidayCalendar(2025, json.RawMessage(`["2025-12-25"]`))
	c.AssignWorkCenter(&domain.WorkCenter{
		ID:   uuid.New(),
		Name: "Madrid",
		PublicHolidayCalendars: []domain.HolidayCalendar{
			{Year: 2025, Days: json.RawMessage(`["2025-01-01","2025-01-06"]`)},
		},
	})

	assert.Len(t, c.HolidayCalendars(), 1)
	assert.Equal(t, 2025, c.HolidayCalendars()[0].Year)
	assert.NotNil(t, c.WorkCenter())
	assert.Len(t, c.WorkCenter().PublicHolidayCalendars, 1)
}
