package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/penwyp/cc-usage-monitor/internal/data/aggregate"
	"github.com/penwyp/cc-usage-monitor/internal/data/store"
	"github.com/penwyp/cc-usage-monitor/internal/presentation/formatter"
	"github.com/penwyp/cc-usage-monitor/internal/util"
	"github.com/spf13/cobra"
)

var (
	timelineDate string

	timelineCmd = &cobra.Command{
		Use:   "timeline",
		Short: "Show hourly spending for a day",
		Long: `timeline buckets recorded history into the 24 hours of a day and reports
per-hour spending, hour-over-hour increases, and usage against the daily
budget.`,
		RunE: runTimeline,
	}
)

func init() {
	timelineCmd.Flags().StringVar(&timelineDate, "date", "",
		"Day to report (YYYY-MM-DD, default today)")
	rootCmd.AddCommand(timelineCmd)
}

func runTimeline(cmd *cobra.Command, args []string) error {
	if _, err := setup(); err != nil {
		return err
	}

	tp := util.GetTimeProvider()
	day := tp.Now()
	if timelineDate != "" {
		parsed, err := time.ParseInLocation("2006-01-02", timelineDate, day.Location())
		if err != nil {
			return fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", timelineDate)
		}
		day = parsed
	}

	history, err := store.NewHistoryStore(dataDir)
	if err != nil {
		return fmt.Errorf("failed to open history store: %w", err)
	}
	h := history.Load()
	tl := aggregate.BuildTimeline(h.Data, day.UnixMilli())

	switch formatter.ParseOutput(outputFormat) {
	case formatter.OutputJSON:
		return formatter.RenderJSON(os.Stdout, tl)
	case formatter.OutputCSV:
		return formatter.RenderTimelineCSV(os.Stdout, tl)
	default:
		formatter.RenderTimelineTable(os.Stdout, tl)
		return nil
	}
}
