package domain

import (
	"time"

	"github.com/google/uuid"

	sharedDomain "github.com/diegood/peoplix/internal/shared/domain"
)

const (
	// AggregateTypeTask identifies the task aggregate in event envelopes.
	AggregateTypeTask = "task"

	// RoutingKeyTaskDatesRecomputed is emitted after a task's estimation
	// dates were re-derived, whether directly or through propagation.
	RoutingKeyTaskDatesRecomputed = "planning.task.dates_recomputed"

	// RoutingKeyTaskPlacementDegraded is emitted when placement ran out of
	// calendar before consuming the full effort and wrote a truncated window.
	RoutingKeyTaskPlacementDegraded = "planning.task.placement_degraded"
)

// TaskDatesRecomputed signals that the scheduling engine resolved new dates
// for a task. Degraded marks placements that hit the iteration cap.
type TaskDatesRecomputed struct {
	sharedDomain.BaseEvent
	Start    time.Time
	End      time.Time
	Degraded bool
}

// NewTaskDatesRecomputed creates the event.
func NewTaskDatesRecomputed(taskID uuid.UUID, start, end time.Time, degraded bool) TaskDatesRecomputed {
	return TaskDatesRecomputed{
		BaseEvent: sharedDomain.NewBaseEvent(taskID, AggregateTypeTask, RoutingKeyTaskDatesRecomputed),
		Start:     start,
		End:       end,
		Degraded:  degraded,
	}
}

// TaskPlacementDegraded signals that a task's placement hit the iteration cap
// and its persisted window covers less than the estimated effort.
type TaskPlacementDegraded struct {
	sharedDomain.BaseEvent
	Start time.Time
	End   time.Time
}

// NewTaskPlacementDegraded creates the event.
func NewTaskPlacementDegraded(taskID uuid.UUID, start, end time.Time) TaskPlacementDegraded {
	return TaskPlacementDegraded{
		BaseEvent: sharedDomain.NewBaseEvent(taskID, AggregateTypeTask, RoutingKeyTaskPlacementDegraded),
		Start:     start,
		End:       end,
	}
}
