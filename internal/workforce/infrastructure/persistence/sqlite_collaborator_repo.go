package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/workforce/domain"
)

// SQLiteCollaboratorRepository implements domain.CollaboratorRepository using
// SQLite.
type SQLiteCollaboratorRepository struct {
	db *sql.DB
}

// NewSQLiteCollaboratorRepository creates a new SQLite collaborator
// repository.
func NewSQLiteCollaboratorRepository(db *sql.DB) *SQLiteCollaboratorRepository {
	return &SQLiteCollaboratorRepository{db: db}
}

const timeLayout = time.RFC3339Nano

// absenceRecord is the JSON shape absences are stored in.
type absenceRecord struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
	Type string    `json:"type"`
}

func marshalAbsences(absences []domain.Absence) ([]byte, error) {
	records := make([]absenceRecord, 0, len(absences))
	for _, a := range absences {
		records = append(records, absenceRecord{From: a.From, To: a.To, Type: string(a.Type)})
	}
	return json.Marshal(records)
}

func unmarshalAbsences(raw []byte) ([]domain.Absence, error) {
	var records []absenceRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	absences := make([]domain.Absence, 0, len(records))
	for _, r := range records {
		absences = append(absences, domain.Absence{From: r.From, To: r.To, Type: domain.AbsenceType(r.Type)})
	}
	return absences, nil
}

// FindByID retrieves a collaborator together with its work center and all
// holiday calendars that apply to it.
func (r *SQLiteCollaboratorRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Collaborator, error) {
	query := `
		SELECT id, name, work_center_id, use_custom_schedule, working_schedule, absences, created_at, updated_at
		FROM collaborators
		WHERE id = ?
	`

	var (
		rawID, name                string
		workCenterID               *string
		useCustomSchedule          bool
		rawSchedule, rawAbsences   []byte
		rawCreatedAt, rawUpdatedAt string
	)
	err := r.db.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &name, &workCenterID, &useCustomSchedule,
		&rawSchedule, &rawAbsences, &rawCreatedAt, &rawUpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrCollaboratorNotFound
		}
		return nil, err
	}

	collabID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}
	createdAt, err := time.Parse(timeLayout, rawCreatedAt)
	if err != nil {
		return nil, err
	}
	updatedAt, err := time.Parse(timeLayout, rawUpdatedAt)
	if err != nil {
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

	calendars, err := r.loadHolidayCalendars(ctx, "collaborator", rawID)
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

func (r *SQLiteCollaboratorRepository) loadWorkCenter(ctx context.Context, id string) (*domain.WorkCenter, error) {
	var rawID, name string
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name FROM work_centers WHERE id = ?", id,
	).Scan(&rawID, &name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	wcID, err := uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}
	calendars, err := r.loadHolidayCalendars(ctx, "work_center", rawID)
	if err != nil {
		return nil, err
	}

	return &domain.WorkCenter{ID: wcID, Name: name, PublicHolidayCalendars: calendars}, nil
}

func (r *SQLiteCollaboratorRepository) loadHolidayCalendars(ctx context.Context, ownerType, ownerID string) ([]domain.HolidayCalendar, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT year, days FROM holiday_calendars WHERE owner_type = ? AND owner_id = ? ORDER BY year",
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
// Work centers are maintained through SaveWorkCenter; Save only references one.
func (r *SQLiteCollaboratorRepository) Save(ctx context.Context, collaborator *domain.Collaborator) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rawSchedule, err := json.Marshal(collaborator.WorkingSchedule())
	if err != nil {
		return err
	}
	rawAbsences, err := marshalAbsences(collaborator.Absences())
	if err != nil {
		return err
	}

	var workCenterID *string
	if wc := collaborator.WorkCenter(); wc != nil {
		id := wc.ID.String()
		workCenterID = &id
	}

	query := `
		INSERT INTO collaborators (id, name, work_center_id, use_custom_schedule, working_schedule, absences, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			work_center_id = excluded.work_center_id,
			use_custom_schedule = excluded.use_custom_schedule,
			working_schedule = excluded.working_schedule,
			absences = excluded.absences,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		collaborator.ID().String(),
		collaborator.Name(),
		workCenterID,
		collaborator.UsesCustomSchedule(),
		string(rawSchedule),
		string(rawAbsences),
		collaborator.CreatedAt().UTC().Format(timeLayout),
		collaborator.UpdatedAt().UTC().Format(timeLayout),
	)
	if err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM holiday_calendars WHERE owner_type = 'collaborator' AND owner_id = ?",
		collaborator.ID().String(),
	); err != nil {
		return err
	}
	for _, cal := range collaborator.HolidayCalendars() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO holiday_calendars (owner_type, owner_id, year, days) VALUES ('collaborator', ?, ?, ?)",
			collaborator.ID().String(), cal.Year, string(cal.Days),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// SaveWorkCenter upserts a work center and replaces its public holiday
// calendars.
func (r *SQLiteCollaboratorRepository) SaveWorkCenter(ctx context.Context, workCenter *domain.WorkCenter) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(timeLayout)
	query := `
		INSERT INTO work_centers (id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at
	`
	if _, err := tx.ExecContext(ctx, query, workCenter.ID.String(), workCenter.Name, now, now); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM holiday_calendars WHERE owner_type = 'work_center' AND owner_id = ?",
		workCenter.ID.String(),
	); err != nil {
		return err
	}
	for _, cal := range workCenter.PublicHolidayCalendars {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO holiday_calendars (owner_type, owner_id, year, days) VALUES ('work_center', ?, ?, ?)",
			workCenter.ID.String(), cal.Year, string(cal.Days),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
