package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateActivity  = errors.New("duplicate activity")
	ErrUnknownPredecessor = errors.New("unknown predecessor")
	ErrCyclicDependency   = errors.New("dependency cycle")
)

// DuplicateActivityError reports a name declared by more than one activity.
type DuplicateActivityError struct {
	Name string
}

func (e *DuplicateActivityError) Error() string {
	return fmt.Sprintf("%s: %q declared more than once", ErrDuplicateActivity, e.Name)
}

func (e *DuplicateActivityError) Unwrap() error { return ErrDuplicateActivity }

// UnknownPredecessorError reports a predecessor name that no activity declares.
type UnknownPredecessorError struct {
	Activity    string // the activity whose predecessor list is wrong
	Predecessor string // the name that could not be resolved
}

func (e *UnknownPredecessorError) Error() string {
	return fmt.Sprintf("%s: %q (referenced by %q) not found", ErrUnknownPredecessor, e.Predecessor, e.Activity)
}

func (e *UnknownPredecessorError) Unwrap() error { return ErrUnknownPredecessor }

// CyclicDependencyError reports a cycle. Cycle starts and ends on the same name.
type CyclicDependencyError struct {
	Cycle []string
}

func (e *CyclicDependencyError) Error() string {
	if len(e.Cycle) == 0 {
		return ErrCyclicDependency.Error()
	}
	return fmt.Sprintf("%s: %s", ErrCyclicDependency, strings.Join(e.Cycle, " -> "))
}

func (e *CyclicDependencyError) Unwrap() error { return ErrCyclicDependency }
