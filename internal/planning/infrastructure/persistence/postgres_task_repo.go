package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diegood/peoplix/internal/planning/domain"
)

// PostgresTaskRepository implements domain.TaskRepository using PostgreSQL.
type PostgresTaskRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresTaskRepository creates a new PostgreSQL task repository.
func NewPostgresTaskRepository(pool *pgxpool.Pool) *PostgresTaskRepository {
	return &PostgresTaskRepository{pool: pool}
}

// taskRow represents a database row for tasks.
type taskRow struct {
	ID            uuid.UUID
	WorkPackageID uuid.UUID
	Title         string
	Position      int
	DeclaredStart *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// FindByID retrieves a task with its estimations and dependency edges.
func (r *PostgresTaskRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	query := `
		SELECT id, work_package_id, title, position, declared_start, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	var row taskRow
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&row.ID,
		&row.WorkPackageID,
		&row.Title,
		&row.Position,
		&row.DeclaredStart,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	return r.hydrate(ctx, row)
}

// ListByWorkPackage returns a work package's tasks ordered by position.
func (r *PostgresTaskRepository) ListByWorkPackage(ctx context.Context, workPackageID uuid.UUID) ([]*domain.Task, error) {
	query := `
		SELECT id, work_package_id, title, position, declared_start, created_at, updated_at
		FROM tasks
		WHERE work_package_id = $1
		ORDER BY position
	`

	rows, err := r.pool.Query(ctx, query, workPackageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var taskRows []taskRow
	for rows.Next() {
		var row taskRow
		if err := rows.Scan(
			&row.ID,
			&row.WorkPackageID,
			&row.Title,
			&row.Position,
			&row.DeclaredStart,
			&row.CreatedAt,
			&row.UpdatedAt,
		); err != nil {
			return nil, err
		}
		taskRows = append(taskRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(taskRows))
	for _, row := range taskRows {
		task, err := r.hydrate(ctx, row)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}

func (r *PostgresTaskRepository) hydrate(ctx context.Context, row taskRow) (*domain.Task, error) {
	estimations, err := r.loadEstimations(ctx, row.ID)
	if err != nil {
		return nil, err
	}

	dependencies, err := r.loadEdges(ctx,
		"SELECT predecessor_id FROM task_dependencies WHERE successor_id = $1", row.ID)
	if err != nil {
		return nil, err
	}
	dependents, err := r.loadEdges(ctx,
		"SELECT successor_id FROM task_dependencies WHERE predecessor_id = $1", row.ID)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateTask(
		row.ID,
		row.WorkPackageID,
		row.Title,
		row.Position,
		row.DeclaredStart,
		estimations,
		dependencies,
		dependents,
		row.CreatedAt,
		row.UpdatedAt,
	), nil
}

func (r *PostgresTaskRepository) loadEstimations(ctx context.Context, taskID uuid.UUID) ([]*domain.Estimation, error) {
	query := `
		SELECT id, task_id, role_id, collaborator_id, hours, start_date, end_date, created_at, updated_at
		FROM estimations
		WHERE task_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var estimations []*domain.Estimation
	for rows.Next() {
		var (
			id, tID, roleID, collabID uuid.UUID
			hours                     float64
			startDate, endDate        *time.Time
			createdAt, updatedAt      time.Time
		)
		if err := rows.Scan(&id, &tID, &roleID, &collabID, &hours, &startDate, &endDate, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		estimations = append(estimations, domain.RehydrateEstimation(
			id, tID, roleID, collabID, hours, startDate, endDate, createdAt, updatedAt,
		))
	}
	return estimations, rows.Err()
}

func (r *PostgresTaskRepository) loadEdges(ctx context.Context, query string, taskID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, query, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Save upserts the task, its estimations and its dependency edges in one
// transaction.
func (r *PostgresTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := r.saveWithTx(ctx, tx, task); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PostgresTaskRepository) saveWithTx(ctx context.Context, tx pgx.Tx, task *domain.Task) error {
	query := `
		INSERT INTO tasks (id, work_package_id, title, position, declared_start, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			position = EXCLUDED.position,
			declared_start = EXCLUDED.declared_start,
			updated_at = EXCLUDED.updated_at
	`
	_, err := tx.Exec(ctx, query,
		task.ID(),
		task.WorkPackageID(),
		task.Title(),
		task.Position(),
		task.DeclaredStart(),
		task.CreatedAt(),
		task.UpdatedAt(),
	)
	if err != nil {
		return err
	}

	for _, est := range task.Estimations() {
		estQuery := `
			INSERT INTO estimations (id, task_id, role_id, collaborator_id, hours, start_date, end_date, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			ON CONFLICT (id) DO UPDATE SET
				hours = EXCLUDED.hours,
				start_date = EXCLUDED.start_date,
				end_date = EXCLUDED.end_date,
				updated_at = EXCLUDED.updated_at
		`
		_, err = tx.Exec(ctx, estQuery,
			est.ID(),
			est.TaskID(),
			est.RoleID(),
			est.CollaboratorID(),
			est.Hours(),
			est.StartDate(),
			est.EndDate(),
			est.CreatedAt(),
			est.UpdatedAt(),
		)
		if err != nil {
			return err
		}
	}

	// Replace both edge directions owned by this task.
	if _, err := tx.Exec(ctx, "DELETE FROM task_dependencies WHERE successor_id = $1", task.ID()); err != nil {
		return err
	}
	for _, predecessorID := range task.Dependencies() {
		if _, err := tx.Exec(ctx,
			"INSERT INTO task_dependencies (predecessor_id, successor_id) VALUES ($1, $2)",
			predecessorID, task.ID(),
		); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, "DELETE FROM task_dependencies WHERE predecessor_id = $1", task.ID()); err != nil {
		return err
	}
	for _, successorID := range task.Dependents() {
		if _, err := tx.Exec(ctx,
			"INSERT INTO task_dependencies (predecessor_id, successor_id) VALUES ($1, $2)",
			task.ID(), successorID,
		); err != nil {
			return err
		}
	}
	return nil
}
