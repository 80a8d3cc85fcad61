package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/diegood/peoplix/internal/shared/domain"
)

var (
	ErrInvalidHours   = errors.New("estimation hours must be positive")
	ErrEndBeforeStart = errors.New("estimation end must not precede its start")
)

// Estimation is the effort of one (role, collaborator) pair on a task,
// together with the concrete dates the scheduling engine resolved for it.
// Hours are effort, not elapsed time; start and end stay unset until the
// first placement runs.
type Estimation struct {
	sharedDomain.BaseEntity
	taskID         uuid.UUID
	roleID         uuid.UUID
	collaboratorID uuid.UUID
	hours          float64
	startDate      *time.Time
	endDate        *time.Time
}

// NewEstimation creates an estimation for a task.
func NewEstimation(taskID, roleID, collaboratorID uuid.UUID, hours float64) (*Estimation, error) {
	if hours <= 0 {
		return nil, ErrInvalidHours
	}
	return &Estimation{
		BaseEntity:     sharedDomain.NewBaseEntity(),
		taskID:         taskID,
		roleID:         roleID,
		collaboratorID: collaboratorID,
		hours:          hours,
	}, nil
}

func (e *Estimation) TaskID() uuid.UUID         { return e.taskID }
func (e *Estimation) RoleID() uuid.UUID         { return e.roleID }
func (e *Estimation) CollaboratorID() uuid.UUID { return e.collaboratorID }
func (e *Estimation) Hours() float64            { return e.hours }

// StartDate returns the resolved start instant, nil before first placement.
func (e *Estimation) StartDate() *time.Time { return cloneTime(e.startDate) }

// EndDate returns the resolved end instant, nil before first placement.
func (e *Estimation) EndDate() *time.Time { return cloneTime(e.endDate) }

// SetHours replaces the effort estimate.
func (e *Estimation) SetHours(hours float64) error {
	if hours <= 0 {
		return ErrInvalidHours
	}
	e.hours = hours
	e.Touch()
	return nil
}

// ApplyPlacement records the dates the engine resolved for this estimation.
func (e *Estimation) ApplyPlacement(start, end time.Time) error {
	if end.Before(start) {
		return ErrEndBeforeStart
	}
	s, f := start.UTC(), end.UTC()
	e.startDate = &s
	e.endDate = &f
	e.Touch()
	return nil
}

// RehydrateEstimation recreates an estimation from persisted state.
func RehydrateEstimation(
	id uuid.UUID,
	taskID, roleID, collaboratorID uuid.UUID,
	hours float64,
	startDate, endDate *time.Time,
	createdAt, updatedAt time.Time,
) *Estimation {
	return &Estimation{
		BaseEntity:     sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt),
		taskID:         taskID,
		roleID:         roleID,
		collaboratorID: collaboratorID,
		hours:          hours,
		startDate:      cloneTime(startDate),
		endDate:        cloneTime(endDate),
	}
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
