package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/penwyp/cc-usage-monitor/internal/data/aggregate"
	"github.com/penwyp/cc-usage-monitor/internal/util"
)

// intensityGlyph maps a cell intensity onto a block glyph, darker for higher
// spend density.
func intensityGlyph(cell aggregate.Cell) string {
	if !cell.HasData {
		return util.ColorGray + "·" + util.ColorReset
	}
	switch {
	case cell.Intensity < 0.2:
		return "░"
	case cell.Intensity < 0.4:
		return "▒"
	case cell.Intensity < 0.6:
		return "▓"
	case cell.Intensity < 0.8:
		return util.ColorYellow + "█" + util.ColorReset
	default:
		return util.ColorRed + "█" + util.ColorReset
	}
}

// RenderHeatmap writes the day-by-hour spend density grid.
func RenderHeatmap(w io.Writer, hm aggregate.Heatmap) {
	labelWidth := 3
	for _, label := range hm.DayLabels {
		if lw := util.GetDisplayWidth(label); lw > labelWidth {
			labelWidth = lw
		}
	}

	fmt.Fprintln(w, util.FormatHeaderTitle("Spend Heatmap"))
	fmt.Fprintln(w, util.FormatSectionSeparator(labelWidth+1+24))

	// Hour ruler, one mark every four columns.
	var ruler strings.Builder
	ruler.WriteString(strings.Repeat(" ", labelWidth+1))
	for h := 0; h < 24; h++ {
		if h%4 == 0 {
			ruler.WriteString(fmt.Sprintf("%-4d", h))
			h += 3
		}
	}
	fmt.Fprintln(w, util.ColorGray+ruler.String()+util.ColorReset)

	for d := 0; d < hm.DayCount; d++ {
		var row strings.Builder
		row.WriteString(util.PadToWidth(hm.DayLabels[d], labelWidth))
		row.WriteString(" ")
		for h := 0; h < 24; h++ {
			row.WriteString(intensityGlyph(hm.Cells[d][h]))
		}
		fmt.Fprintln(w, row.String())
	}

	s := hm.Stats
	fmt.Fprintln(w, util.FormatSectionSeparator(labelWidth+1+24))
	fmt.Fprintln(w, util.FormatSectionTitle("Summary"))
	fmt.Fprintf(w, "  Total spent    %s\n", util.FormatCurrency(s.TotalSpent))
	fmt.Fprintf(w, "  Active cells   %d (%.1f%% coverage)\n", s.ActiveCells, s.DataCompleteness)
	if s.ActiveCells > 0 {
		fmt.Fprintf(w, "  Peak cell      %s %s (%s)\n",
			hm.DayLabels[s.PeakDay], util.FormatHour(s.PeakHour), util.FormatCurrency(s.PeakValue))
		fmt.Fprintf(w, "  Avg intensity  %.2f\n", s.AvgIntensity)
	}
}
