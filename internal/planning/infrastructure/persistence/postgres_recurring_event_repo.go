package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diegood/peoplix/internal/planning/domain"
	"github.com/diegood/peoplix/internal/planning/engine"
)

// PostgresRecurringEventRepository implements domain.RecurringEventRepository
// using PostgreSQL.
type PostgresRecurringEventRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRecurringEventRepository creates a new PostgreSQL recurring
// event repository.
func NewPostgresRecurringEventRepository(pool *pgxpool.Pool) *PostgresRecurringEventRepository {
	return &PostgresRecurringEventRepository{pool: pool}
}

// ListByWorkPackage returns a work package's recurring events.
func (r *PostgresRecurringEventRepository) ListByWorkPackage(ctx context.Context, workPackageID uuid.UUID) ([]*domain.RecurringEvent, error) {
	query := `
		SELECT id, work_package_id, name, kind, hours, valid_from, valid_until,
		       weekday, day_of_month, specific_date, created_at, updated_at
		FROM recurring_events
		WHERE work_package_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, workPackageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.RecurringEvent
	for rows.Next() {
		var (
			id, wpID             uuid.UUID
			name, kind           string
			hours                float64
			validFrom            string
			validUntil, specific *string
			weekday, dayOfMonth  int
			createdAt, updatedAt time.Time
		)
		if err := rows.Scan(&id, &wpID, &name, &kind, &hours, &validFrom, &validUntil,
			&weekday, &dayOfMonth, &specific, &createdAt, &updatedAt); err != nil {
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
func (r *PostgresRecurringEventRepository) Save(ctx context.Context, event *domain.RecurringEvent) error {
	query := `
		INSERT INTO recurring_events (id, work_package_id, name, kind, hours, valid_from,
			valid_until, weekday, day_of_month, specific_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			kind = EXCLUDED.kind,
			hours = EXCLUDED.hours,
			valid_from = EXCLUDED.valid_from,
			valid_until = EXCLUDED.valid_until,
			weekday = EXCLUDED.weekday,
			day_of_month = EXCLUDED.day_of_month,
			specific_date = EXCLUDED.specific_date,
			updated_at = EXCLUDED.updated_at
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID(),
		event.WorkPackageID(),
		event.Name(),
		string(event.Kind()),
		event.Hours(),
		event.ValidFrom().String(),
		formatDatePtr(event.ValidUntil()),
		int(event.EventWeekday()),
		event.DayOfMonth(),
		formatDatePtr(event.SpecificDate()),
		event.CreatedAt(),
		event.UpdatedAt(),
	)
	return err
}

func formatDatePtr(d *engine.Date) *string {
	if d == nil {
		return nil
	}
	s := d.String()
	return &s
}

func parseDatePtr(s *string) (*engine.Date, error) {
	if s == nil {
		return nil, nil
	}
	d, err := engine.ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func rehydrateEventRow(
	id, workPackageID uuid.UUID,
	name, kind string,
	hours float64,
	validFrom string,
	validUntil *string,
	weekday, dayOfMonth int,
	specific *string,
	createdAt, updatedAt time.Time,
) (*domain.RecurringEvent, error) {
	from, err := engine.ParseDate(validFrom)
	if err != nil {
		return nil, err
	}
	until, err := parseDatePtr(validUntil)
	if err != nil {
		return nil, err
	}
	date, err := parseDatePtr(specific)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateRecurringEvent(
		id, workPackageID, name,
		engine.RecurrenceKind(kind), hours,
		from, until,
		time.Weekday(weekday), dayOfMonth, date,
		createdAt, updatedAt,
	), nil
}
