package model

import (
	"errors"
	"fmt"

	"hybridtimetable/internal/csp"
)

// ErrInvalidInput marks malformed domain data, rejected before any model is
// built. ErrTimeout marks a search budget exhausted without a feasibility
// proof either way.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrTimeout      = errors.New("search budget exhausted before a feasible timetable was found")
)

// InfeasibleError reports a proven infeasibility together with the constraint
// family implicated, so callers can tell a daily-cap problem from a clash.
type InfeasibleError struct {
	Family csp.Family
}

func (err *InfeasibleError) Error() string {
	return fmt.Sprintf("no feasible timetable exists: constraint family %v implicated", err.Family)
}
