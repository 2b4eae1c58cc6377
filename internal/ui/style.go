package ui

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
)

// Sprint color functions for building styled strings.
var (
	Bold       = color.New(color.Bold).SprintFunc()
	Dim        = color.New(color.Faint).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	Red        = color.New(color.FgRed).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	Magenta    = color.New(color.FgMagenta).SprintFunc()
	BoldCyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
	BoldRed    = color.New(color.Bold, color.FgRed).SprintFunc()
	BoldYellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	BoldWhite  = color.New(color.Bold, color.FgWhite).SprintFunc()
)

// PrintBanner renders the critpath banner to w.
func PrintBanner(w io.Writer) {
	frame := color.New(color.FgCyan)
	crit := color.New(color.Bold, color.FgRed)
	tag := color.New(color.Faint)

	fmt.Fprintln(w)
	frame.Fprintln(w, "   o---o---o")
	crit.Fprintln(w, "    \\     \\   C R I T P A T H")
	frame.Fprintln(w, "     o-----o")
	tag.Fprintln(w, "   critical path scheduling")
	fmt.Fprintln(w)
}

// FormatNumber prints a duration without trailing zeros (3, 2.5, 0.125).
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// CriticalMark returns the marker shown next to critical activities.
func CriticalMark(critical bool) string {
	if critical {
		return BoldRed("⚡")
	}
	return " "
}

// Slack returns a colored slack value: red when zero, yellow when tight
// relative to the project length, green otherwise.
func Slack(slack, total float64) string {
	s := FormatNumber(slack)
	switch {
	case slack == 0:
		return BoldRed(s)
	case total > 0 && slack/total < 0.1:
		return Yellow(s)
	default:
		return Green(s)
	}
}

// SetColor forces colored output on or off, regardless of terminal detection.
func SetColor(enabled bool) {
	color.NoColor = !enabled
}
