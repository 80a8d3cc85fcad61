package persistence

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/domain"
)

// SQLiteRecurringEventRepository implements domain.RecurringEventRepository
// using SQLite.
type SQLiteRecurringEventRepository struct {
	db *sql.DB
}

// NewSQLiteRecurringEventRepository creates a new SQLite recurring event
// repository.
func NewSQLiteRecurringEventRepository(db *sql.DB) *SQLiteRecurringEventRepository {
	return &SQLiteRecurringEventRepository{db: db}
}

// ListByWorkPackage returns a work package's recurring events.
func (r *SQLiteRecurringEventRepository) ListByWorkPackage(ctx context.Context, workPackageID uuid.UUID) ([]*domain.RecurringEvent, error) {
	query := `
		SELECT id, work_package_id, name, kind, hours, valid_from, valid_until,
		       weekday, day_of_month, specific_date, created_at, updated_at
		FROM recurring_events
		WHERE work_package_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.QueryContext(ctx, query, workPackageID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.RecurringEvent
	for rows.Next() {
		var (
			rawID, rawWP, name, kind   string
			hours                      float64
			validFrom                  string
			validUntil, specific       *string
			weekday, dayOfMonth        int
			rawCreatedAt, rawUpdatedAt string
		)
		if err := rows.Scan(&rawID, &rawWP, &name, &kind, &hours, &validFrom, &validUntil,
			&weekday, &dayOfMonth, &specific, &rawCreatedAt, &rawUpdatedAt); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, err
		}
		wpID, err := uuid.Parse(rawWP)
		if err != nil {
			return nil, err
		}
		createdAt, err := parseTime(rawCreatedAt)
		if err != nil {
			return nil, err
		}
		updatedAt, err := parseTime(rawUpdatedAt)
		if err != nil {
			return nil, err
		}

		event, err := rehydrateEventRow(id, wpID, name, kind, hours, validFrom, validUntil,
			weekday, dayOfMonth, specific, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// Save upserts a recurring event.
func (r *SQLiteRecurringEventRepository) Save(ctx context.Context, event *domain.RecurringEvent) error {
	query := `
		INSERT INTO recurring_events (id, work_package_id, name, kind, hours, valid_from,
			valid_until, weekday, day_of_month, specific_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			kind = excluded.kind,
			hours = excluded.hours,
			valid_from = excluded.valid_from,
			valid_until = excluded.valid_until,
			weekday = excluded.weekday,
			day_of_month = excluded.day_of_month,
			specific_date = excluded.specific_date,
			updated_at = excluded.updated_at
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID().String(),
		event.WorkPackageID().String(),
		event.Name(),
		string(event.Kind()),
		event.Hours(),
		event.ValidFrom().String(),
		formatDatePtr(event.ValidUntil()),
		int(event.EventWeekday()),
		event.DayOfMonth(),
		formatDatePtr(event.SpecificDate()),
		formatTime(event.CreatedAt()),
		formatTime(event.UpdatedAt()),
	)
	return err
}
