// Package schedule provides CLI commands for computing task placements.
package schedule

import (
	"github.com/spf13/cobra"

	"github.com/diegood/peoplix/adapter/cli"
)

// scheduleCmd is the parent command for scheduling operations.
var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Compute and preview task placements",
	Long:  `Compute task placements against working calendars and propagate them through dependency chains.`,
}

func init() {
	scheduleCmd.AddCommand(recomputeCmd)
	scheduleCmd.AddCommand(previewCmd)
	scheduleCmd.AddCommand(showCmd)
	cli.AddCommand(scheduleCmd)
}
