package model

import (
	"fmt"
	"math/rand"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"hybridtimetable/internal/csp"
)

// Result is everything a Build produces: the schedule itself, its score, the
// conflicts of a final verification scan (empty for a sound build), the
// sessions left without a room, and summary metrics.
type Result struct {
	Schedule        *Schedule
	Evaluation      Evaluation
	Conflicts       []Conflict
	UnassignedRooms []string
	Metrics         Metrics
	Iterations      int
}

type Timetabler interface {
	// Build runs the full pipeline: expansion, constraint solving, room
	// assignment and genetic refinement. It returns ErrInvalidInput for
	// malformed inputs, an InfeasibleError naming the dominant constraint
	// family when no timetable exists, and ErrTimeout when the solver's
	// iteration budget runs out.
	Build(input ModelInput, cfg Config) (*Result, error)
	// Verify re-checks an arbitrary schedule against the hard constraints.
	Verify(schedule *Schedule, input ModelInput, cfg Config) []Conflict
}

type hybridTimetabler struct {
	solver csp.Solver
	logger *zap.Logger
}

func NewTimetabler(solver csp.Solver, logger *zap.Logger) Timetabler {
	return &hybridTimetabler{solver: solver, logger: logger}
}

func (timetabler *hybridTimetabler) Build(input ModelInput, cfg Config) (*Result, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	sessions := ExpandCourses(input)
	timetabler.logger.Info("courses expanded",
		zap.Int("courses", len(input.Courses)),
		zap.Int("sessions", len(sessions)),
	)

	variables := lo.Map(sessions, func(session *Session, _ int) csp.Variable {
		return csp.Variable{
			Id:      session.Id,
			Length:  session.Length,
			Faculty: session.Faculty,
			Groups:  session.Groups,
		}
	})

	model, err := csp.Build(len(input.Grid.Days), input.Grid.SlotsPerDay, variables, cfg.Caps())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	solution, err := timetabler.solver.Solve(model)
	if err != nil {
		return nil, err
	}
	switch solution.Status {
	case csp.StatusInfeasible:
		return nil, &InfeasibleError{Family: solution.Family}
	case csp.StatusTimeout:
		return nil, fmt.Errorf("%w: search exhausted %v iterations", ErrTimeout, solution.Iterations)
	}
	timetabler.logger.Info("feasible timetable found", zap.Int("iterations", solution.Iterations))

	for i, session := range sessions {
		session.Start = solution.Assignment[i]
	}
	schedule := NewSchedule(input.Grid, sessions)

	unassignedRooms := make([]string, 0)
	if cfg.AssignRooms {
		unassignedRooms = AssignRooms(schedule, input)
		if len(unassignedRooms) > 0 {
			timetabler.logger.Warn("sessions left without a room",
				zap.Strings("sessions", unassignedRooms),
			)
		}
	}

	if cfg.UseGA {
		rng := rand.New(rand.NewSource(cfg.Seed))
		refiner := NewRefiner(input, cfg, rng, timetabler.logger)
		schedule = refiner.Refine(schedule)
	}

	evaluation := NewEvaluator(input, cfg).Evaluate(schedule)
	conflicts := timetabler.Verify(schedule, input, cfg)
	if len(conflicts) > 0 {
		// The pipeline only ever moves sessions through feasibility-checked
		// placements, so conflicts here mean an internal bug. Report, don't
		// swallow.
		timetabler.logger.Error("verification found conflicts on a solved timetable",
			zap.Int("conflicts", len(conflicts)),
		)
	}

	return &Result{
		Schedule:        schedule,
		Evaluation:      evaluation,
		Conflicts:       conflicts,
		UnassignedRooms: unassignedRooms,
		Metrics:         ComputeMetrics(schedule, input, evaluation, unassignedRooms),
		Iterations:      solution.Iterations,
	}, nil
}

func (timetabler *hybridTimetabler) Verify(schedule *Schedule, input ModelInput, cfg Config) []Conflict {
	return DetectConflicts(schedule, input, cfg.Caps())
}
