// Package services holds workforce application services.
package services

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	workforceDomain "github.com/diegood/peoplix/internal/workforce/domain"
)

// FactsInvalidator drops derived calendar facts for a collaborator.
type FactsInvalidator interface {
	Invalidate(ctx context.Context, collaboratorID uuid.UUID)
}

// CollaboratorCalendarService is the write path for collaborator calendar
// data. Every save drops the collaborator's cached calendar facts, so the
// next placement re-resolves absences, holidays and schedule from storage
// instead of reading a stale entry.
type CollaboratorCalendarService struct {
	collaborators workforceDomain.CollaboratorRepository
	invalidator   FactsInvalidator
	logger        *slog.Logger
}

// NewCollaboratorCalendarService creates the service. The invalidator may be
// nil when no facts cache is configured.
func NewCollaboratorCalendarService(
	collaborators workforceDomain.CollaboratorRepository,
	invalidator FactsInvalidator,
	logger *slog.Logger,
) *CollaboratorCalendarService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollaboratorCalendarService{
		collaborators: collaborators,
		invalidator:   invalidator,
		logger:        logger,
	}
}

// Save persists the collaborator and invalidates its cached facts.
func (s *CollaboratorCalendarService) Save(ctx context.Context, collaborator *workforceDomain.Collaborator) error {
	if err := s.collaborators.Save(ctx, collaborator); err != nil {
		return err
	}

	if s.invalidator != nil {
		s.invalidator.Invalidate(ctx, collaborator.ID())
		s.logger.Debug("calendar facts invalidated",
			"collaborator_id", collaborator.ID(),
		)
	}
	return nil
}

// FindByID loads a collaborator with its calendar data.
func (s *CollaboratorCalendarService) FindByID(ctx context.Context, id uuid.UUID) (*workforceDomain.Collaborator, error) {
	return s.collaborators.FindByID(ctx, id)
}
