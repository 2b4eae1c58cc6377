package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/joshharrison/critpath/internal/cpm"
	"github.com/joshharrison/critpath/internal/ui"
)

// Reporter provides terminal and JSON views of a computed schedule.
type Reporter struct {
	Result *cpm.Result
}

// New creates a new Reporter.
func New(result *cpm.Result) *Reporter {
	return &Reporter{Result: result}
}

// ActivityPayload is the per-activity record of the JSON view.
type ActivityPayload struct {
	Name           string  `json:"name"`
	Duration       float64 `json:"duration"`
	EarliestStart  float64 `json:"earliest_start"`
	EarliestFinish float64 `json:"earliest_finish"`
	LatestStart    float64 `json:"latest_start"`
	LatestFinish   float64 `json:"latest_finish"`
	Slack          float64 `json:"slack"`
	IsCritical     bool    `json:"is_critical"`
}

// Payload is the JSON view of a schedule, shared by the CLI and the HTTP service.
type Payload struct {
	CriticalPath  []string          `json:"critical_path"`
	TotalDuration float64           `json:"total_duration"`
	Activities    []ActivityPayload `json:"activities"`
	Diagram       string            `json:"diagram,omitempty"`
}

// Payload builds the JSON view. Activities are listed in input order.
func (r *Reporter) Payload() Payload {
	p := Payload{
		CriticalPath:  append([]string{}, r.Result.CriticalPath...),
		TotalDuration: r.Result.TotalDuration,
		Activities:    make([]ActivityPayload, 0, len(r.Result.Order)),
	}
	for _, s := range r.Result.Ordered() {
		p.Activities = append(p.Activities, ActivityPayload{
			Name:           s.Name,
			Duration:       s.Duration,
			EarliestStart:  s.ES,
			EarliestFinish: s.EF,
			LatestStart:    s.LS,
			LatestFinish:   s.LF,
			Slack:          s.Slack,
			IsCritical:     s.IsCritical,
		})
	}
	return p
}

// JSON returns the machine-readable schedule.
func (r *Reporter) JSON() ([]byte, error) {
	return json.MarshalIndent(r.Payload(), "", "  ")
}

// PrintSchedule writes a terminal-friendly schedule table.
func (r *Reporter) PrintSchedule(w io.Writer) {
	res := r.Result

	fmt.Fprintf(w, "🎯 %s\n", ui.BoldCyan("Critical Path Schedule"))
	fmt.Fprintln(w, ui.Cyan("══════════════════════"))
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Activities:  %s\n", ui.Bold(len(res.Order)))
	fmt.Fprintf(w, "Duration:    %s\n", ui.Bold(ui.FormatNumber(res.TotalDuration)))
	fmt.Fprintf(w, "⚡ Critical:  %s (%d activities)\n",
		ui.BoldYellow(strings.Join(res.CriticalPath, ", ")), len(res.CriticalPath))
	fmt.Fprintln(w)

	nameWidth := len("Activity")
	for _, name := range res.Order {
		if len(name) > nameWidth {
			nameWidth = len(name)
		}
	}
	if nameWidth > 40 {
		nameWidth = 40
	}

	fmt.Fprintf(w, "    %-*s %8s %8s %8s %8s %8s %8s\n", nameWidth,
		"Activity", "Dur", "ES", "EF", "LS", "LF", "Slack")
	fmt.Fprintln(w, "    "+ui.Dim(strings.Repeat("─", nameWidth+6*9)))

	for _, s := range res.Ordered() {
		r.printActivity(w, s, nameWidth)
	}
}

func (r *Reporter) printActivity(w io.Writer, s *cpm.Schedule, nameWidth int) {
	name := s.Name
	if len(name) > nameWidth {
		name = name[:nameWidth-3] + "..."
	}

	// Pad before coloring: escape codes would otherwise count toward the width.
	slack := fmt.Sprintf("%8s", ui.FormatNumber(s.Slack))
	slack = strings.Replace(slack, ui.FormatNumber(s.Slack), ui.Slack(s.Slack, r.Result.TotalDuration), 1)

	fmt.Fprintf(w, "  %s %-*s %8s %8s %8s %8s %8s %s\n",
		ui.CriticalMark(s.IsCritical), nameWidth, name,
		ui.FormatNumber(s.Duration),
		ui.FormatNumber(s.ES), ui.FormatNumber(s.EF),
		ui.FormatNumber(s.LS), ui.FormatNumber(s.LF),
		slack)
}

// Summary returns a one-line summary of the schedule.
func (r *Reporter) Summary() string {
	res := r.Result
	return fmt.Sprintf("%d activities, total duration %s, critical: %s",
		len(res.Order), ui.FormatNumber(res.TotalDuration), strings.Join(res.CriticalPath, ", "))
}
