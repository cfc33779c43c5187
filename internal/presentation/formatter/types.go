// Package formatter renders dashboard, timeline and heatmap views for the
// terminal, plus JSON and CSV variants for scripting.
package formatter

import (
	"os"
	"strings"

	"golang.org/x/term"
)

// Output selects the rendering format of a command.
type Output string

const (
	OutputTable Output = "table"
	OutputJSON  Output = "json"
	OutputCSV   Output = "csv"
)

// ParseOutput normalizes a format flag value; anything unknown renders as a
// table.
func ParseOutput(value string) Output {
	switch Output(strings.ToLower(value)) {
	case OutputJSON:
		return OutputJSON
	case OutputCSV:
		return OutputCSV
	default:
		return OutputTable
	}
}

// terminalWidth returns the usable render width with a fallback for pipes
// and narrow terminals.
func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width < 60 {
		return 74
	}
	width -= 4
	if width > 116 {
		width = 116
	}
	return width
}
