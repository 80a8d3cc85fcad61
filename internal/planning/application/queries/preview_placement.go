package queries

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/application/services"
	planningDomain "github.com/diegood/peoplix/internal/planning/domain"
	"github.com/diegood/peoplix/internal/planning/engine"
)

// ErrInvalidStart is returned when the supplied start cannot be interpreted
// as an instant.
var ErrInvalidStart = errors.New("start is not a valid instant")

// PreviewPlacementQuery asks where a given effort would land on the calendar
// without writing anything. It runs the same engine as the authoritative
// recompute path, so the preview can never drift from it.
type PreviewPlacementQuery struct {
	CollaboratorID uuid.UUID
	// WorkPackageID scopes the recurring events to deduct; uuid.Nil skips them.
	WorkPackageID uuid.UUID
	// Start accepts an ISO-8601 string, epoch milliseconds or a time.Time.
	Start any
	Hours float64
}

// PreviewPlacementResult is the computed placement.
type PreviewPlacementResult struct {
	Start    time.Time
	End      time.Time
	Degraded bool
}

// PreviewPlacementHandler handles PreviewPlacementQuery.
type PreviewPlacementHandler struct {
	events planningDomain.RecurringEventRepository
	facts  services.FactsSource
	engine *engine.Engine
	logger *slog.Logger
}

// NewPreviewPlacementHandler creates a new PreviewPlacementHandler.
func NewPreviewPlacementHandler(
	events planningDomain.RecurringEventRepository,
	facts services.FactsSource,
	eng *engine.Engine,
	logger *slog.Logger,
) *PreviewPlacementHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PreviewPlacementHandler{
		events: events,
		facts:  facts,
		engine: eng,
		logger: logger,
	}
}

// Handle executes the query.
func (h *PreviewPlacementHandler) Handle(ctx context.Context, query PreviewPlacementQuery) (*PreviewPlacementResult, error) {
	start, ok := engine.ParseInstant(query.Start)
	if !ok {
		return nil, ErrInvalidStart
	}

	facts := h.facts.FactsFor(ctx, query.CollaboratorID)

	var events []engine.RecurringEvent
	if h.events != nil && query.WorkPackageID != uuid.Nil {
		list, err := h.events.ListByWorkPackage(ctx, query.WorkPackageID)
		if err != nil {
			h.logger.Debug("recurring events unavailable for preview",
				"work_package_id", query.WorkPackageID,
				"error", err,
			)
		}
		for _, ev := range list {
			events = append(events, ev.EngineEvent())
		}
	}

	end, err := h.engine.Place(start, query.Hours, facts, events)
	degraded := errors.Is(err, engine.ErrCalendarExhausted)
	if err != nil && !degraded {
		return nil, err
	}

	return &PreviewPlacementResult{Start: start, End: end, Degraded: degraded}, nil
}
