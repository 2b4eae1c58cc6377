package activity

// Descriptor is a single activity as supplied by a caller: a unique name,
// a non-negative duration and the names of the activities it waits on.
type Descriptor struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Duration     float64  `json:"duration" yaml:"duration" validate:"finite,gte=0"`
	Predecessors []string `json:"predecessors" yaml:"predecessors" validate:"dive,required"`
}

// rawDescriptor is the wire form. Duration is a pointer so a missing value
// is rejected instead of silently becoming zero.
type rawDescriptor struct {
	Name         string   `json:"name" yaml:"name" validate:"required"`
	Duration     *float64 `json:"duration" yaml:"duration" validate:"required"`
	Predecessors []string `json:"predecessors" yaml:"predecessors"`
}

func (r rawDescriptor) descriptor() Descriptor {
	d := Descriptor{Name: r.Name, Predecessors: r.Predecessors}
	if r.Duration != nil {
		d.Duration = *r.Duration
	}
	if d.Predecessors == nil {
		d.Predecessors = []string{}
	}
	return d
}
