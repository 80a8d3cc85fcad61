package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrTaskNotFound = errors.New("task not found")
)

// TaskRepository persists task aggregates with their estimations and
// dependency edges.
type TaskRepository interface {
	// FindByID loads a task with estimations, dependencies and dependents.
	FindByID(ctx context.Context, id uuid.UUID) (*Task, error)
	// ListByWorkPackage returns a work package's tasks ordered by position.
	ListByWorkPackage(ctx context.Context, workPackageID uuid.UUID) ([]*Task, error)
	// Save upserts the task, its estimations and its edges as one write.
	Save(ctx context.Context, task *Task) error
}

// RecurringEventRepository lists the capacity-reducing events of a work package.
type RecurringEventRepository interface {
	ListByWorkPackage(ctx context.Context, workPackageID uuid.UUID) ([]*RecurringEvent, error)
}
