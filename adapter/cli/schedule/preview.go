package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/diegood/peoplix/adapter/cli"
	"github.com/diegood/peoplix/internal/planning/application/queries"
	"github.com/diegood/peoplix/pkg/observability"
)

var (
	previewCollaborator string
	previewWorkPackage  string
	previewHours        float64
)

var previewCmd = &cobra.Command{
	Use:   "preview [start]",
	Short: "Preview where an effort would land without writing anything",
	Long: `Compute the end instant of an effort placed at a start, using the
same engine as the authoritative recompute, without persisting anything.

The start accepts RFC 3339 or epoch milliseconds.

Examples:
  peoplix schedule preview 2025-03-03T09:00:00Z --hours 16
  peoplix schedule preview 1740994200000 --hours 8 --collaborator 6a1f...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app := cli.GetApp()
		if app == nil || app.PreviewPlacementHandler == nil {
			return fmt.Errorf("application not initialized - database connection required")
		}

		query := queries.PreviewPlacementQuery{
			Start: args[0],
			Hours: previewHours,
		}
		if previewCollaborator != "" {
			id, err := uuid.Parse(previewCollaborator)
			if err != nil {
				return fmt.Errorf("invalid collaborator id: %w", err)
			}
			query.CollaboratorID = id
		}
		if previewWorkPackage != "" {
			id, err := uuid.Parse(previewWorkPackage)
			if err != nil {
				return fmt.Errorf("invalid work package id: %w", err)
			}
			query.WorkPackageID = id
		}

		ctx := cmd.Context()
		result, err := observability.TimeOperationResult(ctx, cli.Logger(), app.Metrics,
			"schedule.preview", func() (*queries.PreviewPlacementResult, error) {
				return app.PreviewPlacementHandler.Handle(ctx, query)
			})
		if err != nil {
			return fmt.Errorf("failed to preview placement: %w", err)
		}
		app.Metrics.Counter(observability.MetricPreviews, 1)

		fmt.Printf("Placement: %s -> %s\n",
			result.Start.Format(time.RFC3339),
			result.End.Format(time.RFC3339),
		)
		if result.Degraded {
			fmt.Println("  warning: calendar exhausted, end is an approximation")
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().Float64Var(&previewHours, "hours", 8, "effort in hours")
	previewCmd.Flags().StringVar(&previewCollaborator, "collaborator", "", "collaborator id whose calendar applies")
	previewCmd.Flags().StringVar(&previewWorkPackage, "work-package", "", "work package id whose recurring events apply")
}
