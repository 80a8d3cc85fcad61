package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diegood/peoplix/internal/workforce/domain"
)

// PostgresCollaboratorRepository implements domain.CollaboratorRepository
// using PostgreSQL.
type PostgresCollaboratorRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresCollaboratorRepository creates a new PostgreSQL collaborator
// repository.
func NewPostgresCollaboratorRepository(pool *pgxpool.Pool) *PostgresCollaboratorRepository {
	return &PostgresCollaboratorRepository{pool: pool}
}

// FindByID retrieves a collaborator together with its work center and all
// holiday calendars that apply to it.
func (r *PostgresCollaboratorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Collaborator, error) {
	query := `
		SELECT id, name, work_center_id, use_custom_schedule, working_schedule, absences, created_at, updated_at
		FROM collaborators
		WHERE id = $1
	`

	var (
		collabID             uuid.UUID
		name                 string
		workCenterID         *uuid.UUID
		useCustomSchedule    bool
		rawSchedule          []byte
		rawAbsences          []byte
		createdAt, updatedAt time.Time
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&collabID, &name, &workCenterID, &useCustomSchedule,
		&rawSchedule, &rawAbsences, &createdAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCollaboratorNotFound
		}
		return nil, err
	}

	var schedule domain.WorkingSchedule
	if len(rawSchedule) > 0 && string(rawSchedule) != "[]" {
		if err := json.Unmarshal(rawSchedule, &schedule); err != nil {
			return nil, err
		}
	}
	absences, err := unmarshalAbsences(rawAbsences)
	if err != nil {
		return nil, err
	}

	calendars, err := r.loadHolidayCalendars(ctx, "collaborator", collabID)
	if err != nil {
		return nil, err
	}

	var workCenter *domain.WorkCenter
	if workCenterID != nil {
		workCenter, err = r.loadWorkCenter(ctx, *workCenterID)
		if err != nil {
			return nil, err
		}
	}

	return domain.RehydrateCollaborator(
		collabID, name, absences, calendars, workCenter,
		schedule, useCustomSchedule, createdAt, updatedAt,
	), nil
}

func (r *PostgresCollaboratorRepository) loadWorkCenter(ctx context.Context, id uuid.UUID) (*domain.WorkCenter, error) {
	var (
		wcID uuid.UUID
		name string
	)
	err := r.pool.QueryRow(ctx,
		"SELECT id, name FROM work_centers WHERE id = $1", id,
	).Scan(&wcID, &name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	calendars, err := r.loadHolidayCalendars(ctx, "work_center", wcID)
	if err != nil {
		return nil, err
	}
	return &domain.WorkCenter{ID: wcID, Name: name, PublicHolidayCalendars: calendars}, nil
}

func (r *PostgresCollaboratorRepository) loadHolidayCalendars(ctx context.Context, ownerType string, ownerID uuid.UUID) ([]domain.HolidayCalendar, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT year, days FROM holiday_calendars WHERE owner_type = $1 AND owner_id = $2 ORDER BY year",
		ownerType, ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var calendars []domain.HolidayCalendar
	for rows.Next() {
		var (
			year int
			days []byte
		)
		if err := rows.Scan(&year, &days); err != nil {
			return nil, err
		}
		calendars = append(calendars, domain.HolidayCalendar{Year: year, Days: json.RawMessage(days)})
	}
	return calendars, rows.Err()
}

// Save upserts the collaborator and replaces its personal holiday calendars.
func (r *PostgresCollaboratorRepository) Save(ctx context.Context, collaborator *domain.Collaborator) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	rawSchedule, err := json.Marshal(collaborator.WorkingSchedule())
	if err != nil {
		return err
	}
	rawAbsences, err := marshalAbsences(collaborator.Absences())
	if err != nil {
		return err
	}

	var workCenterID *uuid.UUID
	if wc := collaborator.WorkCenter(); wc != nil {
		id := wc.ID
		workCenterID = &id
	}

	query := `
		INSERT INTO collaborators (id, name, work_center_id, use_custom_schedule, working_schedule, absences, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			work_center_id = EXCLUDED.work_center_id,
			use_custom_schedule = EXCLUDED.use_custom_schedule,
			working_schedule = EXCLUDED.working_schedule,
			absences = EXCLUDED.absences,
			updated_at = EXCLUDED.updated_at
	`
	_, err = tx.Exec(ctx, query,
		collaborator.ID(),
		collaborator.Name(),
		workCenterID,
		collaborator.UsesCustomSchedule(),
		rawSchedule,
		rawAbsences,
		collaborator.CreatedAt(),
		collaborator.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	if _, err := tx.Exec(ctx,
		"DELETE FROM holiday_calendars WHERE owner_type = 'collaborator' AND owner_id = $1",
		collaborator.ID(),
	); err != nil {
		return err
	}
	for _, cal := range collaborator.HolidayCalendars() {
		if _, err := tx.Exec(ctx,
			"INSERT INTO holiday_calendars (owner_type, owner_id, year, days) VALUES ('collaborator', $1, $2, $3)",
			collaborator.ID(), cal.Year, []byte(cal.Days),
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
