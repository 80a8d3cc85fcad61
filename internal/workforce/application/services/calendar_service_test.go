package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diegood/peoplix/internal/workforce/application/services"
	workforceDomain "github.com/diegood/peoplix/internal/workforce/domain"
)

type memCollaboratorRepo struct {
	saved   map[uuid.UUID]*workforceDomain.Collaborator
	saveErr error
}

func newMemCollaboratorRepo() *memCollaboratorRepo {
	return &memCollaboratorRepo{saved: make(map[uuid.UUID]*workforceDomain.Collaborator)}
}

func (r *memCollaboratorRepo) FindByID(_ context.Context, id uuid.UUID) (*workforceDomain.Collaborator, error) {
	c, ok := r.saved[id]
	if !ok {
		return nil, workforceDomain.ErrCollaboratorNotFound
	}
	return c, nil
}

func (r *memCollaboratorRepo) Save(_ context.Context, c *workforceDomain.Collaborator) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.saved[c.ID()] = c
	return nil
}

type captureInvalidator struct {
	invalidated []uuid.UUID
}

func (i *captureInvalidator) Invalidate(_ context.Context, collaboratorID uuid.UUID) {
	i.invalidated = append(i.invalidated, collaboratorID)
}

func TestCollaboratorCalendarService_SaveInvalidatesFacts(t *testing.T) {
	repo := newMemCollaboratorRepo()
	invalidator := &captureInvalidator{}
	svc := services.NewCollaboratorCalendarService(repo, invalidator, nil)

	collaborator := workforceDomain.NewCollaborator("Nadia")
	require.NoError(t, svc.Save(context.Background(), collaborator))

	require.Len(t, invalidator.invalidated, 1)
	assert.Equal(t, collaborator.ID(), invalidator.invalidated[0])

	found, err := svc.FindByID(context.Background(), collaborator.ID())
	require.NoError(t, err)
	assert.Equal(t, collaborator.ID(), found.ID())
}

func TestCollaboratorCalendarService_FailedSaveKeepsCache(t *testing.T) {
	repo := newMemCollaboratorRepo()
	repo.saveErr = errors.New("storage unavailable")
	invalidator := &captureInvalidator{}
	svc := services.NewCollaboratorCalendarService(repo, invalidator, nil)

	err := svc.Save(context.Background(), workforceDomain.NewCollaborator("Nadia"))
	require.Error(t, err)
	assert.Empty(t, invalidator.invalidated, "a failed save must not touch the cache")
}

func TestCollaboratorCalendarService_NilInvalidator(t *testing.T) {
	repo := newMemCollaboratorRepo()
	svc := services.NewCollaboratorCalendarService(repo, nil, nil)

	require.NoError(t, svc.Save(context.Background(), workforceDomain.NewCollaborator("Nadia")))
}
