package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrCollaboratorNotFound = errors.New("collaborator not found")

// CollaboratorRepository loads collaborators with their full calendar data:
// absences, holiday calendars, work center and working schedule.
type CollaboratorRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Collaborator, error)
	Save(ctx context.Context, collaborator *Collaborator) error
}
