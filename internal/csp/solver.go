package csp

// Solver searches a constraint model for a feasible assignment. Given
// identical models and options a Solver must return identical results.
type Solver interface {
	Solve(model *Model) (Result, error)
}

// Options bound the worst-case runtime of a solve run. Iterations count value
// trials, so the budget also caps how deep backtracking can thrash.
type Options struct {
	MaxIterations int
}

const defaultMaxIterations = 500_000

func NewSolver(options Options) Solver {
	if options.MaxIterations <= 0 {
		options.MaxIterations = defaultMaxIterations
	}
	return &backtrackingSolver{options: options}
}
