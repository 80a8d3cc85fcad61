package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/diegood/peoplix/internal/shared/domain"
)

var (
	ErrSelfDependency      = errors.New("task cannot depend on itself")
	ErrEstimationNotFound  = errors.New("estimation not found")
	ErrDuplicateEstimation = errors.New("task already has an estimation for this role and collaborator")
)

// Task is a unit of work inside a work package. It carries one estimation per
// (role, collaborator) pair, its position within the work package's declared
// order, and directed dependency edges to other tasks: dependencies are
// predecessors, dependents are successors recomputed when this task moves.
type Task struct {
	sharedDomain.BaseAggregateRoot
	workPackageID uuid.UUID
	title         string
	position      int
	declaredStart *time.Time
	estimations   []*Estimation
	dependencies  []uuid.UUID
	dependents    []uuid.UUID
}

// NewTask creates a task at a position within a work package.
func NewTask(workPackageID uuid.UUID, title string, position int) *Task {
	return &Task{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		workPackageID:     workPackageID,
		title:             title,
		position:          position,
	}
}

func (t *Task) WorkPackageID() uuid.UUID { return t.workPackageID }
func (t *Task) Title() string            { return t.title }
func (t *Task) Position() int            { return t.position }

// DeclaredStart is the task's own start, used when no dependency dictates one.
func (t *Task) DeclaredStart() *time.Time { return cloneTime(t.declaredStart) }

// SetDeclaredStart records an explicitly chosen start instant.
func (t *Task) SetDeclaredStart(start time.Time) {
	s := start.UTC()
	t.declaredStart = &s
	t.Touch()
}

// Estimations returns the task's estimations.
func (t *Task) Estimations() []*Estimation {
	out := make([]*Estimation, len(t.estimations))
	copy(out, t.estimations)
	return out
}

// EstimationFor returns the estimation for a (role, collaborator) pair.
func (t *Task) EstimationFor(roleID, collaboratorID uuid.UUID) (*Estimation, error) {
	for _, e := range t.estimations {
		if e.RoleID() == roleID && e.CollaboratorID() == collaboratorID {
			return e, nil
		}
	}
	return nil, ErrEstimationNotFound
}

// Estimate sets the effort for a (role, collaborator) pair, creating the
// estimation on first use and updating its hours afterwards. Resolved dates
// survive an hours change; the next recompute replaces them.
func (t *Task) Estimate(roleID, collaboratorID uuid.UUID, hours float64) (*Estimation, error) {
	if existing, err := t.EstimationFor(roleID, collaboratorID); err == nil {
		if err := existing.SetHours(hours); err != nil {
			return nil, err
		}
		t.Touch()
		return existing, nil
	}

	est, err := NewEstimation(t.ID(), roleID, collaboratorID, hours)
	if err != nil {
		return nil, err
	}
	t.estimations = append(t.estimations, est)
	t.Touch()
	return est, nil
}

// MaxEstimatedHours is the largest effort across the task's role estimations,
// the value placement runs with.
func (t *Task) MaxEstimatedHours() float64 {
	var max float64
	for _, e := range t.estimations {
		if e.Hours() > max {
			max = e.Hours()
		}
	}
	return max
}

// Dependencies returns the ids of the task's predecessors.
func (t *Task) Dependencies() []uuid.UUID { return cloneIDs(t.dependencies) }

// Dependents returns the ids of the tasks that depend on this one.
func (t *Task) Dependents() []uuid.UUID { return cloneIDs(t.dependents) }

// AddDependency declares a predecessor. Adding an existing edge is a no-op.
func (t *Task) AddDependency(predecessorID uuid.UUID) error {
	if predecessorID == t.ID() {
		return ErrSelfDependency
	}
	if containsID(t.dependencies, predecessorID) {
		return nil
	}
	t.dependencies = append(t.dependencies, predecessorID)
	t.Touch()
	return nil
}

// RemoveDependency drops a predecessor edge if present.
func (t *Task) RemoveDependency(predecessorID uuid.UUID) {
	t.dependencies = removeID(t.dependencies, predecessorID)
	t.Touch()
}

// AddDependent declares a successor. Adding an existing edge is a no-op.
func (t *Task) AddDependent(successorID uuid.UUID) error {
	if successorID == t.ID() {
		return ErrSelfDependency
	}
	if containsID(t.dependents, successorID) {
		return nil
	}
	t.dependents = append(t.dependents, successorID)
	t.Touch()
	return nil
}

// RemoveDependent drops a successor edge if present.
func (t *Task) RemoveDependent(successorID uuid.UUID) {
	t.dependents = removeID(t.dependents, successorID)
	t.Touch()
}

// RecordRecomputedDates emits the domain events for a finished recompute.
// A degraded placement additionally announces itself under its own routing
// key, so consumers can alert on truncated windows without decoding every
// recompute.
func (t *Task) RecordRecomputedDates(start, end time.Time, degraded bool) {
	t.AddDomainEvent(NewTaskDatesRecomputed(t.ID(), start, end, degraded))
	if degraded {
		t.AddDomainEvent(NewTaskPlacementDegraded(t.ID(), start, end))
	}
}

// RehydrateTask recreates a task from persisted state.
func RehydrateTask(
	id uuid.UUID,
	workPackageID uuid.UUID,
	title string,
	position int,
	declaredStart *time.Time,
	estimations []*Estimation,
	dependencies, dependents []uuid.UUID,
	createdAt, updatedAt time.Time,
) *Task {
	return &Task{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		),
		workPackageID: workPackageID,
		title:         title,
		position:      position,
		declaredStart: cloneTime(declaredStart),
		estimations:   estimations,
		dependencies:  cloneIDs(dependencies),
		dependents:    cloneIDs(dependents),
	}
}

func cloneIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return nil
	}
	out := make([]uuid.UUID, len(ids))
	copy(out, ids)
	return out
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	out := ids[:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
