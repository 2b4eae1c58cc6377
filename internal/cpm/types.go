package cpm

// Result holds the complete critical path analysis.
type Result struct {
	Activities    map[string]*Schedule
	Order         []string // activity names in input order
	TopoOrder     []string
	CriticalPath  []string // zero-slack activities, input order
	TotalDuration float64
	Waves         []Wave // activities grouped by earliest start
}

// Schedule holds the scheduling info for a single activity.
type Schedule struct {
	Name       string
	Duration   float64
	ES, EF     float64 // earliest start/finish
	LS, LF     float64 // latest start/finish
	Slack      float64
	IsCritical bool
	Wave       int // which parallel wave this belongs to
}

// Wave represents a group of activities sharing the same earliest start.
type Wave struct {
	Index      int
	Start      float64
	Names      []string
	IsCritical bool // true if wave contains critical path activities
}

// Ordered returns the schedules in input order.
func (r *Result) Ordered() []*Schedule {
	out := make([]*Schedule, 0, len(r.Order))
	for _, name := range r.Order {
		out = append(out, r.Activities[name])
	}
	return out
}

// Phase is a step of the analysis pipeline.
type Phase int

const (
	PhaseUnbuilt Phase = iota
	PhaseBuilt
	PhaseForwardDone
	PhaseBackwardDone
	PhaseClassified
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseUnbuilt:
		return "unbuilt"
	case PhaseBuilt:
		return "built"
	case PhaseForwardDone:
		return "forward-done"
	case PhaseBackwardDone:
		return "backward-done"
	case PhaseClassified:
		return "classified"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}
