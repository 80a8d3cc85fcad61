package schedule

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/diegood/peoplix/adapter/cli"
	"github.com/diegood/peoplix/internal/planning/application/queries"
	"github.com/diegood/peoplix/pkg/observability"
)

var showCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show a task's persisted schedule",
	Long: `Display the dates last computed for a task, without recomputing
anything.

Examples:
  peoplix schedule show 6a1f...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.GetTaskScheduleHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		ctx := cmd.Context()
		result, err := observability.TimeOperationResult(ctx, cli.Logger(), app.Metrics,
			"schedule.show", func() (*queries.TaskScheduleResult, error) {
				return app.GetTaskScheduleHandler.Handle(ctx, queries.GetTaskScheduleQuery{TaskID: taskID})
			})
		if err != nil {
			return fmt.Errorf("failed to load task schedule: %w", err)
		}

		fmt.Printf("Task %s: %s (position %d)\n", result.TaskID, result.Title, result.Position)
		fmt.Printf("  declared start: %s\n", formatInstant(result.DeclaredStart))
		for _, est := range result.Estimations {
			fmt.Printf("  role %s / collaborator %s (%gh): %s -> %s\n",
				est.RoleID, est.CollaboratorID, est.Hours,
				formatInstant(est.Start), formatInstant(est.End),
			)
		}
		if len(result.Dependencies) > 0 {
			fmt.Printf("  depends on %d task(s)\n", len(result.Dependencies))
		}
		if len(result.Dependents) > 0 {
			fmt.Printf("  %d task(s) depend on it\n", len(result.Dependents))
		}
		return nil
	},
}
