package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/application/services"
	planningDomain "github.com/diegood/peoplix/internal/planning/domain"
)

// RecomputeTaskCommand requests a recompute of a task's placement and the
// propagation of the result through its dependents.
type RecomputeTaskCommand struct {
	TaskID uuid.UUID
	// StartOverride is an explicitly chosen start, as from a direct
	// manipulation. Nil lets the normal precedence decide.
	StartOverride *time.Time
}

// EstimationDates is one estimation's resolved placement.
type EstimationDates struct {
	RoleID         uuid.UUID
	CollaboratorID uuid.UUID
	Hours          float64
	Start          *time.Time
	End            *time.Time
}

// RecomputeTaskResult reports the task's dates after the recompute.
type RecomputeTaskResult struct {
	TaskID      uuid.UUID
	Estimations []EstimationDates
}

// RecomputeTaskHandler handles RecomputeTaskCommand.
type RecomputeTaskHandler struct {
	tasks      planningDomain.TaskRepository
	propagator *services.Propagator
	logger     *slog.Logger
}

// NewRecomputeTaskHandler creates a new RecomputeTaskHandler.
func NewRecomputeTaskHandler(
	tasks planningDomain.TaskRepository,
	propagator *services.Propagator,
	logger *slog.Logger,
) *RecomputeTaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecomputeTaskHandler{
		tasks:      tasks,
		propagator: propagator,
		logger:     logger,
	}
}

// Handle executes the command.
func (h *RecomputeTaskHandler) Handle(ctx context.Context, cmd RecomputeTaskCommand) (*RecomputeTaskResult, error) {
	if cmd.TaskID == uuid.Nil {
		return nil, services.ErrMissingTaskID
	}

	var err error
	if cmd.StartOverride != nil {
		err = h.propagator.RecomputeFrom(ctx, cmd.TaskID, *cmd.StartOverride)
	} else {
		err = h.propagator.Recompute(ctx, cmd.TaskID)
	}
	if err != nil {
		return nil, err
	}

	task, err := h.tasks.FindByID(ctx, cmd.TaskID)
	if err != nil {
		return nil, err
	}

	result := &RecomputeTaskResult{TaskID: task.ID()}
	for _, est := range task.Estimations() {
		result.Estimations = append(result.Estimations, EstimationDates{
			RoleID:         est.RoleID(),
			CollaboratorID: est.CollaboratorID(),
			Hours:          est.Hours(),
			Start:          est.StartDate(),
			End:            est.EndDate(),
		})
	}

	h.logger.Info("task placement recomputed",
		"task_id", task.ID(),
		"estimations", len(result.Estimations),
	)
	return result, nil
}
