package formatter

import (
	"fmt"
	"io"
	"time"

	"github.com/penwyp/cc-usage-monitor/internal/application"
	"github.com/penwyp/cc-usage-monitor/internal/core/alert"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// levelColor maps an alert level onto a terminal color.
func levelColor(level alert.Level) string {
	switch level {
	case alert.LevelExceeded, alert.LevelDanger:
		return util.ColorRed
	case alert.LevelWarning:
		return util.ColorYellow
	case alert.LevelCaution:
		return util.ColorMagenta
	case alert.LevelBeforeWork, alert.LevelAfterWork:
		return util.ColorGray
	default:
		return util.ColorGreen
	}
}

func usagePercent(spent, budget float64) float64 {
	if budget <= 0 {
		return 0
	}
	return spent / budget * 100
}

// RenderDashboard writes the full-status panel for one refresh.
func RenderDashboard(w io.Writer, data application.DashboardData) {
	width := terminalWidth()
	barWidth := width / 2

	fmt.Fprintln(w, util.FormatHeaderTitle("Usage Monitor"))
	fmt.Fprintln(w, util.FormatSectionSeparator(width))

	tp := util.GetTimeProvider()
	fetched := tp.Format(time.UnixMilli(data.FetchedAt), "2006-01-02 15:04:05")
	fmt.Fprintf(w, "Updated %s\n\n", fetched)

	dailyPct := usagePercent(data.Metrics.DailySpent, data.Metrics.DailyBudget)
	monthlyPct := usagePercent(data.Metrics.MonthlySpent, data.Metrics.MonthlyBudget)

	fmt.Fprintln(w, util.FormatSectionTitle("Budgets"))
	fmt.Fprintf(w, "  %s %s %s / %s (%s)\n",
		util.PadToWidth("Daily", 8),
		util.CreateProgressBar(dailyPct, barWidth),
		util.FormatCurrency(data.Metrics.DailySpent),
		util.FormatCurrency(data.Metrics.DailyBudget),
		util.FormatPercent(dailyPct))
	fmt.Fprintf(w, "  %s %s %s / %s (%s)\n\n",
		util.PadToWidth("Monthly", 8),
		util.CreateProgressBar(monthlyPct, barWidth),
		util.FormatCurrency(data.Metrics.MonthlySpent),
		util.FormatCurrency(data.Metrics.MonthlyBudget),
		util.FormatPercent(monthlyPct))

	fmt.Fprintln(w, util.FormatSectionTitle("Work Window"))
	status := data.WorkStatus
	fmt.Fprintf(w, "  Hours    %s\n", util.FormatWorkWindow(status.WorkStart, status.WorkEnd))
	switch {
	case status.IsBeforeWork:
		fmt.Fprintln(w, "  Status   before work")
	case status.IsAfterWork:
		fmt.Fprintln(w, "  Status   after work")
	default:
		fmt.Fprintf(w, "  Status   working, %.1fh elapsed, %.1fh remaining\n",
			status.ElapsedWorkHours, status.RemainingWorkHours)
	}
	fmt.Fprintln(w)

	a := data.Assessment
	color := levelColor(a.Level)
	fmt.Fprintln(w, util.FormatSectionTitle("Burn Rate"))
	fmt.Fprintf(w, "  Level    %s%s%s  %s\n", color, a.Level, util.ColorReset, a.Message)
	fmt.Fprintf(w, "  Current  %s\n", util.FormatRate(a.CurrentRate))
	fmt.Fprintf(w, "  Needed   %s\n", util.FormatRate(a.RequiredRate))
	if a.RemainingBudget >= 0 {
		fmt.Fprintf(w, "  Left     %s today\n", util.FormatCurrency(a.RemainingBudget))
	} else {
		fmt.Fprintf(w, "  Over by  %s%s%s today\n", util.ColorRed, util.FormatCurrency(-a.RemainingBudget), util.ColorReset)
	}
	fmt.Fprintln(w, util.FormatSectionSeparator(width))
}
