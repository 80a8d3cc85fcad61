package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	planningDomain "github.com/diegood/peoplix/internal/planning/domain"
	"github.com/diegood/peoplix/internal/planning/engine"
	"github.com/diegood/peoplix/internal/shared/infrastructure/eventbus"
)

var (
	// ErrMissingTaskID is returned when a public entry point is invoked
	// without a task id. This is the one structural input error; calendar
	// problems never surface here.
	ErrMissingTaskID = errors.New("task id is required")

	// ErrCyclicDependency is returned when propagation revisits a task
	// that is still being recomputed in the same pass.
	ErrCyclicDependency = errors.New("cyclic task dependency")
)

// Propagator recomputes a task's placement and re-derives the dates of every
// task downstream of it. Traversal is strictly sequential and depth-first:
// a dependent is only recomputed after its predecessor's write completed, so
// it never reads pre-update state.
//
// Each task's save is its own atomic write; a crash mid-propagation leaves a
// partially updated graph, which is acceptable because recomputation is
// idempotent and safe to re-run from any point.
type Propagator struct {
	tasks     planningDomain.TaskRepository
	events    planningDomain.RecurringEventRepository
	facts     FactsSource
	engine    *engine.Engine
	publisher eventbus.Publisher
	logger    *slog.Logger
}

// NewPropagator creates a propagator. The publisher may be nil when no event
// delivery is wanted.
func NewPropagator(
	tasks planningDomain.TaskRepository,
	events planningDomain.RecurringEventRepository,
	facts FactsSource,
	eng *engine.Engine,
	publisher eventbus.Publisher,
	logger *slog.Logger,
) *Propagator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Propagator{
		tasks:     tasks,
		events:    events,
		facts:     facts,
		engine:    eng,
		publisher: publisher,
		logger:    logger,
	}
}

// Recompute re-derives the task's estimation dates from its current inputs
// and recursively re-triggers the same computation for its dependents.
func (p *Propagator) Recompute(ctx context.Context, taskID uuid.UUID) error {
	if taskID == uuid.Nil {
		return ErrMissingTaskID
	}
	return p.recompute(ctx, taskID, nil, make(map[uuid.UUID]bool))
}

// RecomputeFrom recomputes with an explicitly supplied start instant, as when
// a user drags a task on the board. The override takes precedence over both
// persisted dates and sequential resolution, for the root task only.
func (p *Propagator) RecomputeFrom(ctx context.Context, taskID uuid.UUID, start time.Time) error {
	if taskID == uuid.Nil {
		return ErrMissingTaskID
	}
	s := start.UTC()
	return p.recompute(ctx, taskID, &s, make(map[uuid.UUID]bool))
}

// recompute handles one task, then walks its dependents. The visited map
// holds true for tasks on the current recursion path: meeting one again means
// the dependency graph has a cycle. Finished tasks are unmarked so a diamond
// (two predecessors sharing a dependent) recomputes the junction once per
// incoming path rather than failing.
func (p *Propagator) recompute(ctx context.Context, taskID uuid.UUID, override *time.Time, visited map[uuid.UUID]bool) error {
	if visited[taskID] {
		return fmt.Errorf("%w: task %s revisited during propagation", ErrCyclicDependency, taskID)
	}
	visited[taskID] = true
	defer func() { visited[taskID] = false }()

	task, err := p.tasks.FindByID(ctx, taskID)
	if err != nil {
		return err
	}

	events := p.loadEvents(ctx, task.WorkPackageID())

	depLatest, err := p.latestPredecessorInstant(ctx, task)
	if err != nil {
		return err
	}

	var (
		updated   bool
		degraded  bool
		spanStart time.Time
		spanEnd   time.Time
		siblings  []engine.EstimationWindow
		haveSibs  bool
	)

	hours := task.MaxEstimatedHours()
	for _, est := range task.Estimations() {
		facts := p.facts.FactsFor(ctx, est.CollaboratorID())

		start, ok := p.resolveStart(est, override, depLatest, facts, func() []engine.EstimationWindow {
			if !haveSibs {
				siblings = p.precedingWindows(ctx, task)
				haveSibs = true
			}
			return siblings
		}, task.DeclaredStart())
		if !ok {
			continue
		}

		end, placeErr := p.engine.Place(start, hours, facts, events)
		if placeErr != nil {
			if !errors.Is(placeErr, engine.ErrCalendarExhausted) {
				return placeErr
			}
			degraded = true
			p.logger.Warn("placement degraded, calendar has no usable capacity",
				"task_id", taskID,
				"collaborator_id", est.CollaboratorID(),
			)
		}

		if err := est.ApplyPlacement(start, end); err != nil {
			return err
		}

		if !updated || start.Before(spanStart) {
			spanStart = start
		}
		if !updated || end.After(spanEnd) {
			spanEnd = end
		}
		updated = true
	}

	// No dependencies, no declared start, no persisted dates: nothing to
	// place. Propagation stops here without a write.
	if !updated {
		p.logger.Debug("task has no start information, propagation stops",
			"task_id", taskID,
		)
		return nil
	}

	task.RecordRecomputedDates(spanStart, spanEnd, degraded)
	if err := p.tasks.Save(ctx, task); err != nil {
		return err
	}
	p.publishEvents(ctx, task)

	for _, dependentID := range task.Dependents() {
		if err := p.recompute(ctx, dependentID, nil, visited); err != nil {
			return err
		}
	}
	return nil
}

// resolveStart applies the start precedence for one estimation: explicit
// override, then the rolled latest predecessor end, then the estimation's own
// persisted start, then sequential resolution against preceding tasks in the
// work package order. The second return value is false when no start can be
// determined.
func (p *Propagator) resolveStart(
	est *planningDomain.Estimation,
	override *time.Time,
	depLatest *time.Time,
	facts engine.CalendarFacts,
	preceding func() []engine.EstimationWindow,
	declared *time.Time,
) (time.Time, bool) {
	if override != nil {
		return *override, true
	}
	if depLatest != nil {
		return p.engine.RollToNextSlot(*depLatest, facts), true
	}
	if persisted := est.StartDate(); persisted != nil {
		return *persisted, true
	}

	var fallback time.Time
	if declared != nil {
		fallback = *declared
	}
	start := p.engine.ResolveStart(est.RoleID(), est.CollaboratorID(), preceding(), fallback, facts)
	if start.IsZero() {
		return time.Time{}, false
	}
	return start, true
}

// latestPredecessorInstant finds the latest end (or start, when no end is set
// yet) across all estimations of the task's predecessors. Nil when the task
// has no dependency edges or none of them carry dates yet.
func (p *Propagator) latestPredecessorInstant(ctx context.Context, task *planningDomain.Task) (*time.Time, error) {
	var latest *time.Time
	for _, predecessorID := range task.Dependencies() {
		predecessor, err := p.tasks.FindByID(ctx, predecessorID)
		if err != nil {
			if errors.Is(err, planningDomain.ErrTaskNotFound) {
				p.logger.Warn("dangling dependency edge ignored",
					"task_id", task.ID(),
					"predecessor_id", predecessorID,
				)
				continue
			}
			return nil, err
		}
		for _, est := range predecessor.Estimations() {
			ref := est.EndDate()
			if ref == nil {
				ref = est.StartDate()
			}
			if ref == nil {
				continue
			}
			if latest == nil || ref.After(*latest) {
				latest = ref
			}
		}
	}
	return latest, nil
}

// precedingWindows flattens the estimations of tasks earlier in the work
// package order into plain windows for sequential start resolution. A listing
// failure degrades to no preceding tasks.
func (p *Propagator) precedingWindows(ctx context.Context, task *planningDomain.Task) []engine.EstimationWindow {
	tasks, err := p.tasks.ListByWorkPackage(ctx, task.WorkPackageID())
	if err != nil {
		p.logger.Debug("work package listing unavailable for sequential resolution",
			"work_package_id", task.WorkPackageID(),
			"error", err,
		)
		return nil
	}

	var windows []engine.EstimationWindow
	for _, sibling := range tasks {
		if sibling.ID() == task.ID() || sibling.Position() >= task.Position() {
			continue
		}
		for _, est := range sibling.Estimations() {
			windows = append(windows, engine.EstimationWindow{
				RoleID:         est.RoleID(),
				CollaboratorID: est.CollaboratorID(),
				Start:          est.StartDate(),
				End:            est.EndDate(),
			})
		}
	}
	return windows
}

// loadEvents fetches the work package's recurring events as engine values.
// Failures degrade to no events.
func (p *Propagator) loadEvents(ctx context.Context, workPackageID uuid.UUID) []engine.RecurringEvent {
	if p.events == nil {
		return nil
	}
	list, err := p.events.ListByWorkPackage(ctx, workPackageID)
	if err != nil {
		p.logger.Debug("recurring events unavailable",
			"work_package_id", workPackageID,
			"error", err,
		)
		return nil
	}
	out := make([]engine.RecurringEvent, 0, len(list))
	for _, ev := range list {
		out = append(out, ev.EngineEvent())
	}
	return out
}

// taskDatesPayload is the wire payload of TaskDatesRecomputed.
type taskDatesPayload struct {
	TaskID   uuid.UUID `json:"task_id"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Degraded bool      `json:"degraded"`
}

// publishEvents delivers the task's domain events best-effort and clears them.
func (p *Propagator) publishEvents(ctx context.Context, task *planningDomain.Task) {
	defer task.ClearDomainEvents()
	if p.publisher == nil {
		return
	}

	for _, event := range task.DomainEvents() {
		var payload taskDatesPayload
		switch e := event.(type) {
		case planningDomain.TaskDatesRecomputed:
			payload = taskDatesPayload{
				TaskID:   e.AggregateID(),
				Start:    e.Start,
				End:      e.End,
				Degraded: e.Degraded,
			}
		case planningDomain.TaskPlacementDegraded:
			payload = taskDatesPayload{
				TaskID:   e.AggregateID(),
				Start:    e.Start,
				End:      e.End,
				Degraded: true,
			}
		default:
			continue
		}
		body, err := eventbus.Wrap(event, payload)
		if err != nil {
			p.logger.Error("failed to encode domain event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
			continue
		}
		if err := p.publisher.Publish(ctx, event.RoutingKey(), body); err != nil {
			p.logger.Error("failed to publish domain event",
				"routing_key", event.RoutingKey(),
				"error", err,
			)
		}
	}
}
