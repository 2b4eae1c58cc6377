// Package render draws the activity network of a computed schedule.
// Critical activities, and the edges between them, are highlighted in red.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/graph"
	"github.com/joshharrison/critpath/internal/ui"
)

const (
	criticalColor = "red"
	normalColor   = "skyblue"
)

// WriteDOT writes a Graphviz digraph of the network. Each node is labelled
// with its name, duration (T) and slack (S). Layout is left to Graphviz.
func WriteDOT(w io.Writer, g *graph.Graph, result *cpm.Result) error {
	var b strings.Builder

	b.WriteString("digraph critpath {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(`  label="Activity network (critical path in red)";` + "\n")
	b.WriteString("  node [shape=box, style=\"rounded,filled\"];\n\n")

	for _, name := range g.Order {
		s := result.Activities[name]
		if s == nil {
			return fmt.Errorf("render: no schedule for activity %q", name)
		}
		label := fmt.Sprintf(`%s\nT:%s\nS:%s`, escape(name), ui.FormatNumber(s.Duration), ui.FormatNumber(s.Slack))
		attrs := fmt.Sprintf(`label="%s", fillcolor=%s`, label, normalColor)
		if s.IsCritical {
			attrs = fmt.Sprintf(`label="%s", fillcolor=%s, penwidth=2`, label, criticalColor)
		}
		fmt.Fprintf(&b, "  %q [%s];\n", name, attrs)
	}

	b.WriteString("\n")

	for _, from := range g.Order {
		for _, to := range g.Successors(from) {
			style := ""
			if isCriticalEdge(result, from, to) {
				style = fmt.Sprintf(" [color=%s, penwidth=2]", criticalColor)
			}
			fmt.Fprintf(&b, "  %q -> %q%s;\n", from, to, style)
		}
	}

	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// isCriticalEdge reports whether an edge lies on a zero-slack chain: both
// ends critical and the successor starts exactly when the predecessor ends.
func isCriticalEdge(result *cpm.Result, from, to string) bool {
	f, t := result.Activities[from], result.Activities[to]
	if f == nil || t == nil {
		return false
	}
	return f.IsCritical && t.IsCritical && f.EF == t.ES
}

func escape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

// WriteASCII writes a terminal listing of the network grouped by wave.
func WriteASCII(w io.Writer, g *graph.Graph, result *cpm.Result) error {
	fmt.Fprintf(w, "🔗 %s\n", ui.BoldCyan("Activity Network"))
	fmt.Fprintln(w, ui.Cyan("════════════════"))
	fmt.Fprintln(w)

	for _, wave := range result.Waves {
		fmt.Fprintf(w, "%s 🌊 Wave %d, start %s %s\n",
			ui.Cyan("──"), wave.Index+1, ui.FormatNumber(wave.Start), ui.Cyan("──────────────────────────"))
		for _, name := range wave.Names {
			s := result.Activities[name]
			fmt.Fprintf(w, "  %s [%s] T:%s S:%s\n",
				ui.CriticalMark(s.IsCritical), ui.Magenta(name),
				ui.FormatNumber(s.Duration), ui.Slack(s.Slack, result.TotalDuration))

			for _, succ := range g.Successors(name) {
				arrow := ui.Dim("└──→")
				if isCriticalEdge(result, name, succ) {
					arrow = ui.Red("└──→")
				}
				fmt.Fprintf(w, "      %s %s\n", arrow, ui.Magenta(succ))
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
