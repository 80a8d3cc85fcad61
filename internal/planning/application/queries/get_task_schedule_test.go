package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegood/peoplix/internal/planning/application/queries"
	"github.com/diegood/peoplix/internal/planning/application/services"
	planningDomain "github.com/diegood/peoplix/internal/planning/domain"
)

type singleTaskRepo struct {
	task *planningDomain.Task
}

func (r singleTaskRepo) FindByID(_ context.Context, id uuid.UUID) (*planningDomain.Task, error) {
	if r.task == nil || r.task.ID() != id {
		return nil, planningDomain.ErrTaskNotFound
	}
	return r.task, nil
}

func (r singleTaskRepo) ListByWorkPackage(context.Context, uuid.UUID) ([]*planningDomain.Task, error) {
	return nil, nil
}

func (r singleTaskRepo) Save(context.Context, *planningDomain.Task) error { return nil }

func TestGetTaskSchedule(t *testing.T) {
	wp := uuid.New()
	task := planningDomain.NewTask(wp, "Review plans", 2)
	declared := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	task.SetDeclaredStart(declared)

	roleID, collabID := uuid.New(), uuid.New()
	est, err := task.Estimate(roleID, collabID, 6)
	require.NoError(t, err)
	require.NoError(t, est.ApplyPlacement(declared, declared.Add(7*time.Hour)))
	require.NoError(t, task.AddDependency(uuid.New()))

	handler := queries.NewGetTaskScheduleHandler(singleTaskRepo{task: task}, nil)
	result, err := handler.Handle(context.Background(), queries.GetTaskScheduleQuery{TaskID: task.ID()})
	require.NoError(t, err)

	assert.Equal(t, task.ID(), result.TaskID)
	assert.Equal(t, wp, result.WorkPackageID)
	assert.Equal(t, "Review plans", result.Title)
	assert.Equal(t, 2, result.Position)
	require.NotNil(t, result.DeclaredStart)
	assert.Equal(t, declared, *result.DeclaredStart)
	assert.Len(t, result.Dependencies, 1)
	assert.Empty(t, result.Dependents)

	require.Len(t, result.Estimations, 1)
	got := result.Estimations[0]
	assert.Equal(t, roleID, got.RoleID)
	assert.Equal(t, collabID, got.CollaboratorID)
	assert.Equal(t, 6.0, got.Hours)
	require.NotNil(t, got.Start)
	require.NotNil(t, got.End)
	assert.Equal(t, declared, *got.Start)
	assert.Equal(t, declared.Add(7*time.Hour), *got.End)
}

func TestGetTaskSchedule_MissingInputs(t *testing.T) {
	handler := queries.NewGetTaskScheduleHandler(singleTaskRepo{}, nil)

	_, err := handler.Handle(context.Background(), queries.GetTaskScheduleQuery{})
	assert.ErrorIs(t, err, services.ErrMissingTaskID)

	_, err = handler.Handle(context.Background(), queries.GetTaskScheduleQuery{TaskID: uuid.New()})
	assert.ErrorIs(t, err, planningDomain.ErrTaskNotFound)
}
