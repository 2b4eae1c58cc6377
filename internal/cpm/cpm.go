package cpm

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"sort"

	"github.com/joshharrison/critpath/internal/activity"
	"github.com/joshharrison/critpath/internal/graph"
)

// ErrDurationOverflow is returned when finish times exceed the float64 range.
var ErrDurationOverflow = errors.New("cpm: project duration overflows float64")

// Analyze validates the descriptors, builds their dependency graph and runs
// critical path method analysis on it. Nothing is retained between calls, so
// concurrent calls with independent inputs are safe.
func Analyze(descs []activity.Descriptor) (*Result, error) {
	a := &analysis{}
	a.build(descs)
	return a.run()
}

// AnalyzeGraph runs critical path method analysis on an already built graph.
func AnalyzeGraph(g *graph.Graph) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("cpm: nil graph")
	}
	a := &analysis{g: g, phase: PhaseBuilt}
	return a.run()
}

// analysis is the state of one single-shot run. Each step requires the
// previous one to have completed; any failure moves it to PhaseFailed and
// no result is handed out.
type analysis struct {
	phase  Phase
	err    error
	g      *graph.Graph
	result *Result
}

func (a *analysis) fail(err error) {
	a.phase = PhaseFailed
	a.err = err
	a.result = nil
}

func (a *analysis) advance(from, to Phase) bool {
	if a.phase != from {
		if a.phase != PhaseFailed {
			a.fail(fmt.Errorf("cpm: cannot move to %s from %s", to, a.phase))
		}
		return false
	}
	a.phase = to
	return true
}

func (a *analysis) build(descs []activity.Descriptor) {
	if a.phase != PhaseUnbuilt {
		a.fail(fmt.Errorf("cpm: cannot build from %s", a.phase))
		return
	}
	g, err := graph.Build(descs)
	if err != nil {
		a.fail(err)
		return
	}
	a.g = g
	a.phase = PhaseBuilt
}

func (a *analysis) run() (*Result, error) {
	a.forwardPass()
	a.backwardPass()
	a.classify()
	if a.phase != PhaseClassified {
		return nil, a.err
	}
	return a.result, nil
}

// forwardPass computes ES and EF in topological order and the project
// duration as the maximum EF over all activities.
func (a *analysis) forwardPass() {
	if !a.advance(PhaseBuilt, PhaseForwardDone) {
		return
	}
	g := a.g

	result := &Result{
		Activities: make(map[string]*Schedule, g.Len()),
		Order:      slices.Clone(g.Order),
		TopoOrder:  slices.Clone(g.TopoOrder),
	}
	for _, name := range g.Order {
		result.Activities[name] = &Schedule{Name: name, Duration: g.Duration(name)}
	}

	for _, name := range g.TopoOrder {
		s := result.Activities[name]
		// ES = max(EF of all predecessors), 0 for roots
		es := 0.0
		for i, pred := range g.Predecessors(name) {
			ef := result.Activities[pred].EF
			if i == 0 || ef > es {
				es = ef
			}
		}
		s.ES = es
		s.EF = es + s.Duration
		if math.IsInf(s.EF, 0) || math.IsNaN(s.EF) {
			a.fail(fmt.Errorf("%w: activity %q finishes at %v", ErrDurationOverflow, name, s.EF))
			return
		}
	}

	total := 0.0
	for _, s := range result.Activities {
		if s.EF > total {
			total = s.EF
		}
	}
	result.TotalDuration = total

	a.result = result
}

// backwardPass computes LF and LS in reverse topological order.
func (a *analysis) backwardPass() {
	if !a.advance(PhaseForwardDone, PhaseBackwardDone) {
		return
	}
	g := a.g
	result := a.result

	for i := len(g.TopoOrder) - 1; i >= 0; i-- {
		name := g.TopoOrder[i]
		s := result.Activities[name]

		// LF = min(LS of all successors), project end for sinks
		lf := result.TotalDuration
		for j, succ := range g.Successors(name) {
			ls := result.Activities[succ].LS
			if j == 0 || ls < lf {
				lf = ls
			}
		}
		s.LF = lf
		s.LS = lf - s.Duration
	}
}

// classify derives slack and critical path membership, then groups the
// activities into waves.
func (a *analysis) classify() {
	if !a.advance(PhaseBackwardDone, PhaseClassified) {
		return
	}
	result := a.result

	for _, name := range result.Order {
		s := result.Activities[name]
		s.Slack = s.LS - s.ES
		// Exact comparison: durations are expected to be exactly representable.
		s.IsCritical = s.Slack == 0
		if s.IsCritical {
			result.CriticalPath = append(result.CriticalPath, name)
		}
	}

	result.Waves = computeWaves(result)
}

// computeWaves groups activities by their earliest start time.
func computeWaves(result *Result) []Wave {
	esGroups := make(map[float64][]string)
	for _, name := range result.TopoOrder {
		es := result.Activities[name].ES
		esGroups[es] = append(esGroups[es], name)
	}

	esValues := make([]float64, 0, len(esGroups))
	for es := range esGroups {
		esValues = append(esValues, es)
	}
	sort.Float64s(esValues)

	waves := make([]Wave, len(esValues))
	for i, es := range esValues {
		names := esGroups[es]

		hasCritical := false
		for _, name := range names {
			result.Activities[name].Wave = i
			if result.Activities[name].IsCritical {
				hasCritical = true
			}
		}

		// Critical activities first within a wave
		sort.SliceStable(names, func(x, y int) bool {
			return result.Activities[names[x]].IsCritical && !result.Activities[names[y]].IsCritical
		})

		waves[i] = Wave{
			Index:      i,
			Start:      es,
			Names:      names,
			IsCritical: hasCritical,
		}
	}

	return waves
}
