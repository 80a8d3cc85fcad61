package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	planningCommands "github.com/diegood/peoplix/internal/planning/application/commands"
	planningQueries "github.com/diegood/peoplix/internal/planning/application/queries"
	planningServices "github.com/diegood/peoplix/internal/planning/application/services"
	planningDomain "github.com/diegood/peoplix/internal/planning/domain"
	"github.com/diegood/peoplix/internal/planning/engine"
	planningCache "github.com/diegood/peoplix/internal/planning/infrastructure/cache"
	planningPersistence "github.com/diegood/peoplix/internal/planning/infrastructure/persistence"
	"github.com/diegood/peoplix/internal/shared/infrastructure/database"
	"github.com/diegood/peoplix/internal/shared/infrastructure/eventbus"
	"github.com/diegood/peoplix/internal/shared/infrastructure/migrations"
	workforceServices "github.com/diegood/peoplix/internal/workforce/application/services"
	workforceDomain "github.com/diegood/peoplix/internal/workforce/domain"
	workforcePersistence "github.com/diegood/peoplix/internal/workforce/infrastructure/persistence"
	"github.com/diegood/peoplix/pkg/config"
	"github.com/diegood/peoplix/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database. Exactly one of Pool and SQLiteDB is non-nil.
	Driver   database.Driver
	Pool     *pgxpool.Pool
	SQLiteDB *sql.DB

	// Redis
	RedisClient *redis.Client

	// Metrics
	Metrics observability.Metrics

	// Repositories
	TaskRepo           planningDomain.TaskRepository
	RecurringEventRepo planningDomain.RecurringEventRepository
	CollaboratorRepo   workforceDomain.CollaboratorRepository

	// Publisher
	EventPublisher eventbus.Publisher

	// Planning
	Engine        *engine.Engine
	FactsProvider *planningServices.CalendarFactsProvider
	Propagator    *planningServices.Propagator

	// Workforce
	CollaboratorCalendars *workforceServices.CollaboratorCalendarService

	// Handlers
	RecomputeTaskHandler    *planningCommands.RecomputeTaskHandler
	PreviewPlacementHandler *planningQueries.PreviewPlacementHandler
	GetTaskScheduleHandler  *planningQueries.GetTaskScheduleHandler
}

// NewContainer creates and wires all dependencies.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
	}

	if err := c.connectDatabase(ctx); err != nil {
		return nil, err
	}
	c.connectRedis(ctx)
	c.connectPublisher()

	c.Engine = engine.New(engine.Config{
		MaxPlacementDays: cfg.MaxPlacementDays,
		LunchSpanHours:   cfg.LunchSpanHours,
		LunchCutoffHour:  cfg.LunchCutoffHour,
		LunchBreakHours:  cfg.LunchBreakHours,
		FallbackEndHour:  cfg.FallbackEndHour,
	})

	var (
		factsCache  planningServices.FactsCache
		invalidator workforceServices.FactsInvalidator
	)
	if c.RedisClient != nil {
		redisCache := planningCache.NewRedisFactsCache(c.RedisClient, cfg.FactsCacheTTL, logger)
		factsCache = redisCache
		invalidator = redisCache
	}

	orgWeek := orgWeekSchedule(cfg)
	c.FactsProvider = planningServices.NewCalendarFactsProvider(c.CollaboratorRepo, factsCache, &orgWeek, logger)
	c.CollaboratorCalendars = workforceServices.NewCollaboratorCalendarService(c.CollaboratorRepo, invalidator, logger)

	c.Propagator = planningServices.NewPropagator(
		c.TaskRepo,
		c.RecurringEventRepo,
		c.FactsProvider,
		c.Engine,
		c.EventPublisher,
		logger,
	)

	c.RecomputeTaskHandler = planningCommands.NewRecomputeTaskHandler(c.TaskRepo, c.Propagator, logger)
	c.PreviewPlacementHandler = planningQueries.NewPreviewPlacementHandler(
		c.RecurringEventRepo, c.FactsProvider, c.Engine, logger,
	)
	c.GetTaskScheduleHandler = planningQueries.NewGetTaskScheduleHandler(c.TaskRepo, logger)

	return c, nil
}

func (c *Container) connectDatabase(ctx context.Context) error {
	c.Driver = database.DetectDriver(c.Config.DatabaseURL)

	switch c.Driver {
	case database.DriverPostgres:
		pool, err := database.NewPostgresPool(ctx, c.Config.DatabaseURL, 0)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.Pool = pool
		c.TaskRepo = planningPersistence.NewPostgresTaskRepository(pool)
		c.RecurringEventRepo = planningPersistence.NewPostgresRecurringEventRepository(pool)
		c.CollaboratorRepo = workforcePersistence.NewPostgresCollaboratorRepository(pool)
		c.Logger.Info("connected to database", "driver", c.Driver)

	default:
		path := c.Config.SQLitePath
		if path == "" && c.Config.DatabaseURL != "" {
			path = c.Config.DatabaseURL
		}
		db, err := database.OpenSQLite(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to open SQLite database: %w", err)
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			db.Close()
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		c.SQLiteDB = db
		c.TaskRepo = planningPersistence.NewSQLiteTaskRepository(db)
		c.RecurringEventRepo = planningPersistence.NewSQLiteRecurringEventRepository(db)
		c.CollaboratorRepo = workforcePersistence.NewSQLiteCollaboratorRepository(db)
		c.Logger.Info("using embedded database", "driver", c.Driver)
	}
	return nil
}

// connectRedis is best-effort: the facts cache is an optimization, so a
// missing or unreachable Redis never blocks startup.
func (c *Container) connectRedis(ctx context.Context) {
	if c.Config.RedisURL == "" {
		return
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		c.Logger.Warn("invalid Redis URL, facts cache disabled", "error", err)
		return
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		c.Logger.Warn("Redis not available, facts cache disabled", "error", err)
		client.Close()
		return
	}

	c.RedisClient = client
	c.Logger.Info("connected to Redis")
}

func (c *Container) connectPublisher() {
	if c.Config.RabbitMQURL == "" {
		c.EventPublisher = eventbus.NewInProcessBus(c.Logger)
		return
	}

	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		c.Logger.Warn("RabbitMQ not available, using in-process event bus", "error", err)
		c.EventPublisher = eventbus.NewInProcessBus(c.Logger)
		return
	}

	c.EventPublisher = publisher
	c.Logger.Info("connected to RabbitMQ")
}

// orgWeekSchedule builds the organization default week from configuration,
// Monday through Friday.
func orgWeekSchedule(cfg *config.Config) engine.WeekSchedule {
	var week engine.WeekSchedule
	for day := time.Monday; day <= time.Friday; day++ {
		week[int(day)] = engine.DaySchedule{
			Active:    true,
			StartHour: cfg.OrgDayStartHour,
			EndHour:   cfg.OrgDayEndHour,
		}
	}
	return week
}

// Close releases all container resources.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		c.EventPublisher.Close()
	}
	if c.RedisClient != nil {
		c.RedisClient.Close()
	}
	if c.Pool != nil {
		c.Pool.Close()
	}
	if c.SQLiteDB != nil {
		c.SQLiteDB.Close()
	}
}
