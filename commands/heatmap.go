package commands

import (
	"fmt"
	"os"

	"github.com/penwyp/cc-usage-monitor/internal/data/aggregate"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/presentation/formatter"
	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	heatmapRange string
	hideWeekends bool

	heatmapCmd = &cobra.Command{
		Use:   "heatmap",
		Short: "Show a day-by-hour spending grid",
		Long: `heatmap lays recorded history out as a day-by-hour intensity grid over the
current week, the trailing two weeks, or the trailing month.`,
		RunE: runHeatmap,
	}
)

func init() {
	heatmapCmd.Flags().StringVar(&heatmapRange, "range", "week",
		"Period to cover (week, 2weeks, month)")
	heatmapCmd.Flags().BoolVar(&hideWeekends, "hide-weekends", false,
		"Blank out Saturday and Sunday (week range only)")
	rootCmd.AddCommand(heatmapCmd)
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	r := aggregate.TimeRange(heatmapRange)
	switch r {
	case aggregate.RangeWeek, aggregate.RangeTwoWeeks, aggregate.RangeMonth:
	default:
		return fmt.Errorf("invalid --range %q: expected week, 2weeks, or month", heatmapRange)
	}

	history, err := store.NewHistoryStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	h := history.Load()
	opts := aggregate.HeatmapOptions{Range: r, HideWeekends: hideWeekends}
	hm := aggregate.BuildHeatmap(h.Data, opts, util.GetTimeProvider().Now())

	if formatter.ParseOutput(outputFormat) == formatter.OutputJSON {
		return formatter.RenderJSON(os.Stdout, hm)
	}
	formatter.RenderHeatmap(os.Stdout, hm)
	return nil
}
