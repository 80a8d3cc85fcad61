package queries

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/application/services"
	planningDomain "github.com/diegood/peoplix/internal/planning/domain"
)

// GetTaskScheduleQuery asks for a task's currently persisted schedule.
type GetTaskScheduleQuery struct {
	TaskID uuid.UUID
}

// ScheduledEstimation is one estimation with its resolved dates.
type ScheduledEstimation struct {
	RoleID         uuid.UUID
	CollaboratorID uuid.UUID
	Hours          float64
	Start          *time.Time
	End            *time.Time
}

// TaskScheduleResult is the persisted schedule of a task as last computed.
type TaskScheduleResult struct {
	TaskID        uuid.UUID
	WorkPackageID uuid.UUID
	Title         string
	Position      int
	DeclaredStart *time.Time
	Estimations   []ScheduledEstimation
	Dependencies  []uuid.UUID
	Dependents    []uuid.UUID
}

// GetTaskScheduleHandler handles GetTaskScheduleQuery.
type GetTaskScheduleHandler struct {
	tasks  planningDomain.TaskRepository
	logger *slog.Logger
}

// NewGetTaskScheduleHandler creates a new GetTaskScheduleHandler.
func NewGetTaskScheduleHandler(tasks planningDomain.TaskRepository, logger *slog.Logger) *GetTaskScheduleHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetTaskScheduleHandler{tasks: tasks, logger: logger}
}

// Handle executes the query. It reads persisted state only; nothing is
// recomputed.
func (h *GetTaskScheduleHandler) Handle(ctx context.Context, query GetTaskScheduleQuery) (*TaskScheduleResult, error) {
	if query.TaskID == uuid.Nil {
		return nil, services.ErrMissingTaskID
	}

	task, err := h.tasks.FindByID(ctx, query.TaskID)
	if err != nil {
		return nil, err
	}

	result := &TaskScheduleResult{
		TaskID:        task.ID(),
		WorkPackageID: task.WorkPackageID(),
		Title:         task.Title(),
		Position:      task.Position(),
		DeclaredStart: task.DeclaredStart(),
		Dependencies:  task.Dependencies(),
		Dependents:    task.Dependents(),
	}
	for _, est := range task.Estimations() {
		result.Estimations = append(result.Estimations, ScheduledEstimation{
			RoleID:         est.RoleID(),
			CollaboratorID: est.CollaboratorID(),
			Hours:          est.Hours(),
			Start:          est.StartDate(),
			End:            est.EndDate(),
		})
	}
	return result, nil
}
