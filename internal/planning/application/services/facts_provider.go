package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/diegood/peoplix/internal/planning/engine"
	workforceDomain "github.com/diegood/peoplix/internal/workforce/domain"
)

// FactsSource supplies resolved calendar facts for a collaborator.
type FactsSource interface {
	FactsFor(ctx context.Context, collaboratorID uuid.UUID) engine.CalendarFacts
}

// FactsCache is an optional read-through cache in front of facts resolution.
// A propagation pass resolves the same collaborator once per task, so the
// facts are worth keeping close.
type FactsCache interface {
	Get(ctx context.Context, collaboratorID uuid.UUID) (engine.CalendarFacts, bool)
	Set(ctx context.Context, collaboratorID uuid.UUID, facts engine.CalendarFacts)
}

// CalendarFactsProvider resolves collaborator calendars into engine facts.
// Missing collaborators, repository failures and malformed calendar data all
// degrade to the default schedule with no blocked dates; resolution is the
// one part of the pipeline that must never fail.
type CalendarFactsProvider struct {
	collaborators workforceDomain.CollaboratorRepository
	cache         FactsCache
	orgWeek       *engine.WeekSchedule
	logger        *slog.Logger
}

// NewCalendarFactsProvider creates a provider. The cache may be nil;
// orgWeek nil means the built-in default week applies.
func NewCalendarFactsProvider(
	collaborators workforceDomain.CollaboratorRepository,
	cache FactsCache,
	orgWeek *engine.WeekSchedule,
	logger *slog.Logger,
) *CalendarFactsProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarFactsProvider{
		collaborators: collaborators,
		cache:         cache,
		orgWeek:       orgWeek,
		logger:        logger,
	}
}

// FactsFor returns the calendar facts of a collaborator, best-effort.
func (p *CalendarFactsProvider) FactsFor(ctx context.Context, collaboratorID uuid.UUID) engine.CalendarFacts {
	if collaboratorID == uuid.Nil {
		return engine.ResolveFacts(engine.Calendar{}, p.orgWeek)
	}

	if p.cache != nil {
		if facts, ok := p.cache.Get(ctx, collaboratorID); ok {
			return facts
		}
	}

	collaborator, err := p.collaborators.FindByID(ctx, collaboratorID)
	if err != nil || collaborator == nil {
		if err != nil {
			p.logger.Debug("collaborator calendar unavailable, using defaults",
				"collaborator_id", collaboratorID,
				"error", err,
			)
		}
		return engine.ResolveFacts(engine.Calendar{}, p.orgWeek)
	}

	facts := engine.ResolveFacts(toEngineCalendar(collaborator), p.orgWeek)
	if p.cache != nil {
		p.cache.Set(ctx, collaboratorID, facts)
	}
	return facts
}

// toEngineCalendar flattens a collaborator aggregate into the plain calendar
// data the engine consumes.
func toEngineCalendar(c *workforceDomain.Collaborator) engine.Calendar {
	var cal engine.Calendar

	for _, a := range c.Absences() {
		cal.Absences = append(cal.Absences, engine.DateRange{
			From: engine.DateOf(a.From),
			To:   engine.DateOf(a.To),
		})
	}
	for _, hc := range c.HolidayCalendars() {
		cal.HolidayPayloads = append(cal.HolidayPayloads, hc.Days)
	}
	if wc := c.WorkCenter(); wc != nil {
		for _, hc := range wc.PublicHolidayCalendars {
			cal.HolidayPayloads = append(cal.HolidayPayloads, hc.Days)
		}
	}
	if c.UsesCustomSchedule() {
		week := toEngineWeek(c.WorkingSchedule())
		cal.Week = &week
	}
	return cal
}

func toEngineWeek(s workforceDomain.WorkingSchedule) engine.WeekSchedule {
	var week engine.WeekSchedule
	for d := time.Sunday; d <= time.Saturday; d++ {
		w := s.For(d)
		week[int(d)] = engine.DaySchedule{
			Active:    w.Active,
			StartHour: w.StartHour,
			EndHour:   w.EndHour,
		}
	}
	return week
}
