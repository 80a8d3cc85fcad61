package persistence

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/domain"
)

// SQLiteTaskRepository implements domain.TaskRepository using SQLite.
type SQLiteTaskRepository struct {
	db *sql.DB
}

// NewSQLiteTaskRepository creates a new SQLite task repository.
func NewSQLiteTaskRepository(db *sql.DB) *SQLiteTaskRepository {
	return &SQLiteTaskRepository{db: db}
}

const sqliteTimeLayout = time.RFC3339Nano

func formatTime(t time.Time) string {
	return t.UTC().Format(sqliteTimeLayout)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, s)
}

func parseTimePtr(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := parseTime(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FindByID retrieves a task with its estimations and dependency edges.
func (r *SQLiteTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, work_package_id, title, position, declared_start, created_at, updated_at
		FROM tasks
		WHERE id = ?
	`

	task, err := r.scanTask(r.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}
	return task, nil
}

// ListByWorkPackage returns a work package's tasks ordered by position.
func (r *SQLiteTaskRepository) ListByWorkPackage(ctx context.Context, workPackageID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT id FROM tasks
		WHERE work_package_id = ?
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, workPackageID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(ids))
	for _, id := range ids {
		task, err := r.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *SQLiteTaskRepository) scanTask(row rowScanner) (*domain.Task, error) {
	var (
		rawID, rawWP, title        string
		position                   int
		rawDeclared                *string
		rawCreatedAt, rawUpdatedAt string
	)
	if err := row.Scan(&rawID, &rawWP, &title, &position, &rawDeclared, &rawCreatedAt, &rawUpdatedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}
	workPackageID, err := uuid.Parse(rawWP)
	if err != nil {
		return nil, err
	}
	declaredStart, err := parseTimePtr(rawDeclared)
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

	estimations, err := r.loadEstimations(id)
	if err != nil {
		return nil, err
	}
	dependencies, err := r.loadEdges("SELECT predecessor_id FROM task_dependencies WHERE successor_id = ?", id)
	if err != nil {
		return nil, err
	}
	dependents, err := r.loadEdges("SELECT successor_id FROM task_dependencies WHERE predecessor_id = ?", id)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateTask(
		id, workPackageID, title, position, declaredStart,
		estimations, dependencies, dependents, createdAt, updatedAt,
	), nil
}

func (r *SQLiteTaskRepository) loadEstimations(taskID uuid.UUID) ([]*domain.Estimation, error) {
	query := `
		SELECT id, task_id, role_id, collaborator_id, hours, start_date, end_date, created_at, updated_at
		FROM estimations
		WHERE task_id = ?
		ORDER BY created_at
	`

	rows, err := r.db.Query(query, taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimations []*domain.Estimation
	for rows.Next() {
		var (
			rawID, rawTask, rawRole, rawCollab string
			hours                              float64
			rawStart, rawEnd                   *string
			rawCreatedAt, rawUpdatedAt         string
		)
		if err := rows.Scan(&rawID, &rawTask, &rawRole, &rawCollab, &hours, &rawStart, &rawEnd, &rawCreatedAt, &rawUpdatedAt); err != nil {
			return nil, err
		}

		id, err := uuid.Parse(rawID)
		if err != nil {
			return nil, err
		}
		tID, err := uuid.Parse(rawTask)
		if err != nil {
			return nil, err
		}
		roleID, err := uuid.Parse(rawRole)
		if err != nil {
			return nil, err
		}
		collabID, err := uuid.Parse(rawCollab)
		if err != nil {
			return nil, err
		}
		startDate, err := parseTimePtr(rawStart)
		if err != nil {
			return nil, err
		}
		endDate, err := parseTimePtr(rawEnd)
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

		estimations = append(estimations, domain.RehydrateEstimation(
			id, tID, roleID, collabID, hours, startDate, endDate, createdAt, updatedAt,
		))
	}
	return estimations, rows.Err()
}

func (r *SQLiteTaskRepository) loadEdges(query string, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(query, taskID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Save upserts the task, its estimations and its dependency edges in one
// transaction.
func (r *SQLiteTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	query := `
		INSERT INTO tasks (id, work_package_id, title, position, declared_start, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			title = excluded.title,
			position = excluded.position,
			declared_start = excluded.declared_start,
			updated_at = excluded.updated_at
	`
	_, err = tx.ExecContext(ctx, query,
		task.ID().String(),
		task.WorkPackageID().String(),
		task.Title(),
		task.Position(),
		formatTimePtr(task.DeclaredStart()),
		formatTime(task.CreatedAt()),
		formatTime(task.UpdatedAt()),
	)
	if err != nil {
		return err
	}

	for _, est := range task.Estimations() {
		estQuery := `
			INSERT INTO estimations (id, task_id, role_id, collaborator_id, hours, start_date, end_date, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				hours = excluded.hours,
				start_date = excluded.start_date,
				end_date = excluded.end_date,
				updated_at = excluded.updated_at
		`
		_, err = tx.ExecContext(ctx, estQuery,
			est.ID().String(),
			est.TaskID().String(),
			est.RoleID().String(),
			est.CollaboratorID().String(),
			est.Hours(),
			formatTimePtr(est.StartDate()),
			formatTimePtr(est.EndDate()),
			formatTime(est.CreatedAt()),
			formatTime(est.UpdatedAt()),
		)
		if err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_dependencies WHERE successor_id = ?", task.ID().String()); err != nil {
		return err
	}
	for _, predecessorID := range task.Dependencies() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_dependencies (predecessor_id, successor_id) VALUES (?, ?)",
			predecessorID.String(), task.ID().String(),
		); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM task_dependencies WHERE predecessor_id = ?", task.ID().String()); err != nil {
		return err
	}
	for _, successorID := range task.Dependents() {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO task_dependencies (predecessor_id, successor_id) VALUES (?, ?)",
			task.ID().String(), successorID.String(),
		); err != nil {
			return err
		}
	}

	return tx.Commit()
}
