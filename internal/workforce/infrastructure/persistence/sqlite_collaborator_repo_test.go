package persistence_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/diegood/peoplix/internal/shared/infrastructure/migrations"
	"github.com/diegood/peoplix/internal/workforce/domain"
	"github.com/diegood/peoplix/internal/workforce/infrastructure/persistence"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func TestSQLiteCollaboratorRepository_SaveAndFind(t *testing.T) {
	db := openTestDB(t)
	repo := persistence.NewSQLiteCollaboratorRepository(db)
	ctx := context.Background()

	collab := domain.NewCollaborator("Marta")
	collab.AddAbsence(
		time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC),
		time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC),
		domain.AbsenceVacation,
	)
	collab.AddHolidayCalendar(2025, json.RawMessage(`["2025-01-01","2025-12-25"]`))

	require.NoError(t, repo.Save(ctx, collab))

	found, err := repo.FindByID(ctx, collab.ID())
	require.NoError(t, err)

	assert.Equal(t, collab.ID(), found.ID())
	assert.Equal(t, "Marta", found.Name())
	assert.False(t, found.UsesCustomSchedule())

	require.Len(t, found.Absences(), 1)
	assert.Equal(t, domain.AbsenceVacation, found.Absences()[0].Type)
	assert.True(t, found.Absences()[0].From.Equal(time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)))

	require.Len(t, found.HolidayCalendars(), 1)
	assert.Equal(t, 2025, found.HolidayCalendars()[0].Year)
	assert.JSONEq(t, `["2025-01-01","2025-12-25"]`, string(found.HolidayCalendars()[0].Days))
}

func TestSQLiteCollaboratorRepository_FindByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	repo := persistence.NewSQLiteCollaboratorRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrCollaboratorNotFound)
}

func TestSQLiteCollaboratorRepository_CustomScheduleRoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := persistence.NewSQLiteCollaboratorRepository(db)
	ctx := context.Background()

	var schedule domain.WorkingSchedule
	for day := time.Monday; day <= time.Thursday; day++ {
		schedule.Set(day, domain.WorkingDay{Active: true, StartHour: 8, EndHour: 15})
	}

	collab := domain.NewCollaborator("Jordi")
	collab.UseSchedule(schedule)
	require.NoError(t, repo.Save(ctx, collab))

	found, err := repo.FindByID(ctx, collab.ID())
	require.NoError(t, err)
	assert.True(t, found.UsesCustomSchedule())
	assert.Equal(t, schedule, found.WorkingSchedule())
	assert.False(t, found.WorkingSchedule().For(time.Friday).Active)
}

func TestSQLiteCollaboratorRepository_WorkCenterWithPublicHolidays(t *testing.T) {
	db := openTestDB(t)
	repo := persistence.NewSQLiteCollaboratorRepository(db)
	ctx := context.Background()

	workCenter := &domain.WorkCenter{
		ID:   uuid.New(),
		Name: "Barcelona",
		PublicHolidayCalendars: []domain.HolidayCalendar{
			{Year: 2025, Days: json.RawMessage(`"[\"2025-09-24\"]"`)},
		},
	}
	require.NoError(t, repo.SaveWorkCenter(ctx, workCenter))

	collab := domain.NewCollaborator("Anna")
	collab.AssignWorkCenter(workCenter)
	require.NoError(t, repo.Save(ctx, collab))

	found, err := repo.FindByID(ctx, collab.ID())
	require.NoError(t, err)
	require.NotNil(t, found.WorkCenter())
	assert.Equal(t, workCenter.ID, found.WorkCenter().ID)
	assert.Equal(t, "Barcelona", found.WorkCenter().Name)
	require.Len(t, found.WorkCenter().PublicHolidayCalendars, 1)
	// The string-wrapped payload survives storage untouched.
	assert.Equal(t, `"[\"2025-09-24\"]"`, string(found.WorkCenter().PublicHolidayCalendars[0].Days))
}

func TestSQLiteCollaboratorRepository_SaveReplacesCalendars(t *testing.T) {
	db := openTestDB(t)
	repo := persistence.NewSQLiteCollaboratorRepository(db)
	ctx := context.Background()

	collab := domain.NewCollaborator("Pau")
	collab.AddHolidayCalendar(2024, json.RawMessage(`["2024-01-01"]`))
	require.NoError(t, repo.Save(ctx, collab))

	collab.AddHolidayCalendar(2025, json.RawMessage(`["2025-01-01"]`))
	require.NoError(t, repo.Save(ctx, collab))

	found, err := repo.FindByID(ctx, collab.ID())
	require.NoError(t, err)
	require.Len(t, found.HolidayCalendars(), 2)
}
