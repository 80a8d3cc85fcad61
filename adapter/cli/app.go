package cli

import (
	"log/slog"

	planningCommands "github.com/diegood/peoplix/internal/planning/application/commands"
	planningQueries "github.com/diegood/peoplix/internal/planning/application/queries"
	"github.com/diegood/peoplix/pkg/observability"
)

// App holds the CLI application dependencies.
type App struct {
	RecomputeTaskHandler    *planningCommands.RecomputeTaskHandler
	PreviewPlacementHandler *planningQueries.PreviewPlacementHandler
	GetTaskScheduleHandler  *planningQueries.GetTaskScheduleHandler
	Metrics                 observability.Metrics
}

// NewApp creates a CLI application with the given handlers.
func NewApp(
	recompute *planningCommands.RecomputeTaskHandler,
	preview *planningQueries.PreviewPlacementHandler,
	show *planningQueries.GetTaskScheduleHandler,
	metrics observability.Metrics,
) *App {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	return &App{
		RecomputeTaskHandler:    recompute,
		PreviewPlacementHandler: preview,
		GetTaskScheduleHandler:  show,
		Metrics:                 metrics,
	}
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// Logger returns the CLI logger.
func Logger() *slog.Logger {
	return logger
}
