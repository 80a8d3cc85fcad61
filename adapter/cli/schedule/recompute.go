package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/diegood/peoplix/adapter/cli"
	"github.com/diegood/peoplix/internal/planning/application/commands"
	"github.com/diegood/peoplix/pkg/observability"
)

var recomputeStart string

var recomputeCmd = &cobra.Command{
	Use:   "recompute [task-id]",
	Short: "Recompute a task's dates and propagate to its dependents",
	Long: `Recompute a task's estimation dates from its calendar inputs and
re-derive the dates of every task that depends on it.

Examples:
  peoplix schedule recompute 6a1f...
  peoplix schedule recompute 6a1f... --start 2025-03-03T09:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.RecomputeTaskHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		taskID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid task id: %w", err)
		}

		recompute := commands.RecomputeTaskCommand{TaskID: taskID}
		if recomputeStart != "" {
			parsed, err := time.Parse(time.RFC3339, recomputeStart)
			if err != nil {
				return fmt.Errorf("invalid start (use RFC 3339, e.g. 2025-03-03T09:00:00Z): %w", err)
			}
			recompute.StartOverride = &parsed
		}

		ctx := cmd.Context()
		result, err := observability.TimeOperationResult(ctx, cli.Logger(), app.Metrics,
			"schedule.recompute", func() (*commands.RecomputeTaskResult, error) {
				return app.RecomputeTaskHandler.Handle(ctx, recompute)
			})
		if err != nil {
			return fmt.Errorf("failed to recompute task: %w", err)
		}
		app.Metrics.Counter(observability.MetricRecomputes, 1)

		fmt.Printf("Task recomputed: %s\n", result.TaskID)
		for _, est := range result.Estimations {
			fmt.Printf("  role %s / collaborator %s (%gh): %s -> %s\n",
				est.RoleID, est.CollaboratorID, est.Hours,
				formatInstant(est.Start), formatInstant(est.End),
			)
		}
		return nil
	},
}

func formatInstant(t *time.Time) string {
	if t == nil {
		return "unresolved"
	}
	return t.Format(time.RFC3339)
}

func init() {
	recomputeCmd.Flags().StringVar(&recomputeStart, "start", "", "start override (RFC 3339)")
}
