package formatter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/penwyp/cc-usage-monitor/internal/data/aggregate"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// RenderTimelineTable writes one day of hourly usage as a table with an
// inline usage bar per active hour.
func RenderTimelineTable(w io.Writer, tl aggregate.Timeline) {
	width := terminalWidth()

	fmt.Fprintln(w, util.FormatHeaderTitle("Daily Timeline "+tl.Date))
	fmt.Fprintln(w, util.FormatSectionSeparator(width))
	fmt.Fprintf(w, "%s  %s %s %s %s\n",
		util.PadToWidth("Hour", 5),
		util.PadToWidth("Spent", 10),
		util.PadToWidth("Usage", 8),
		util.PadToWidth("Increase", 10),
		"Bar")

	barWidth := width - 40
	for _, b := range tl.Hours {
		if !b.HasData {
			fmt.Fprintf(w, "%s  %s\n", util.PadToWidth(util.FormatHour(b.Hour), 5), util.ColorGray+"-"+util.ColorReset)
			continue
		}
		increase := ""
		if b.SpentIncrease > 0 {
			increase = "+" + util.FormatCurrency(b.SpentIncrease)
		}
		fmt.Fprintf(w, "%s  %s %s %s %s\n",
			util.PadToWidth(util.FormatHour(b.Hour), 5),
			util.PadToWidth(util.FormatCurrency(b.DailySpent), 10),
			util.PadToWidth(util.FormatPercent(b.UsagePercent), 8),
			util.PadToWidth(increase, 10),
			util.CreateProgressBar(b.UsagePercent, barWidth))
	}

	s := tl.Stats
	fmt.Fprintln(w, util.FormatSectionSeparator(width))
	fmt.Fprintln(w, util.FormatSectionTitle("Summary"))
	fmt.Fprintf(w, "  Active hours   %d\n", s.ActiveHours)
	fmt.Fprintf(w, "  Latest spent   %s\n", util.FormatCurrency(s.LatestSpent))
	if s.ActiveHours > 0 {
		fmt.Fprintf(w, "  Peak hour      %s (%s)\n", util.FormatHour(s.PeakHour), util.FormatCurrency(s.PeakSpent))
		fmt.Fprintf(w, "  Avg usage      %s\n", util.FormatPercent(s.AvgUsagePercent))
	}
	if s.MaxIncrease > 0 {
		fmt.Fprintf(w, "  Peak increase  %s at %s\n", util.FormatCurrency(s.MaxIncrease), util.FormatHour(s.PeakIncreaseHour))
		fmt.Fprintf(w, "  Avg increase   %s\n", util.FormatCurrency(s.AvgIncrease))
	}
}

// RenderTimelineCSV writes the hourly buckets as CSV for scripting.
func RenderTimelineCSV(w io.Writer, tl aggregate.Timeline) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"date", "hour", "spent", "budget", "usage_percent", "increase", "increase_percent"}); err != nil {
		return err
	}
	for _, b := range tl.Hours {
		if !b.HasData {
			continue
		}
		record := []string{
			tl.Date,
			util.FormatHour(b.Hour),
			fmt.Sprintf("%.2f", b.DailySpent),
			fmt.Sprintf("%.2f", b.DailyBudget),
			fmt.Sprintf("%.1f", b.UsagePercent),
			fmt.Sprintf("%.2f", b.SpentIncrease),
			fmt.Sprintf("%.1f", b.IncreasePercent),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
