package model

import (
	"math/rand"
	"runtime"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"hybridtimetable/internal/csp"
)

// Refiner improves an already-feasible schedule without ever making it
// infeasible. Every operator moves sessions only between starts that
// CanPlace accepts, so the returned schedule carries zero hard violations
// whenever the input does.
type Refiner interface {
	Refine(base *Schedule) *Schedule
}

type geneticRefiner struct {
	input     ModelInput
	caps      csp.Caps
	cfg       GAConfig
	evaluator *Evaluator
	rng       *rand.Rand
	logger    *zap.Logger
}

func NewRefiner(input ModelInput, cfg Config, rng *rand.Rand, logger *zap.Logger) Refiner {
	return &geneticRefiner{
		input:     input,
		caps:      cfg.Caps(),
		cfg:       cfg.GA,
		evaluator: NewEvaluator(input, cfg),
		rng:       rng,
		logger:    logger,
	}
}

func (refiner *geneticRefiner) Refine(base *Schedule) *Schedule {
	if refiner.cfg.Generations <= 0 || refiner.cfg.PopulationSize <= 0 {
		return base.Clone()
	}

	population := refiner.seedPopulation(base)
	scores := refiner.evaluate(population)

	best, bestScore := refiner.fittest(population, scores)
	stale := 0

	for generation := 0; generation < refiner.cfg.Generations; generation++ {
		population = refiner.nextGeneration(population, scores, best)
		scores = refiner.evaluate(population)

		challenger, challengerScore := refiner.fittest(population, scores)
		if challengerScore.Better(bestScore) {
			best, bestScore = challenger, challengerScore
			stale = 0
		} else {
			stale++
		}

		if refiner.cfg.Stagnation > 0 && stale >= refiner.cfg.Stagnation {
			refiner.logger.Debug("refinement stagnated",
				zap.Int("generation", generation),
				zap.Float64("score", bestScore.SoftScore),
			)
			break
		}
	}

	// The seed individual is an untouched clone of the base, so the best
	// individual can never score worse than the base did.
	refiner.logger.Info("refinement finished",
		zap.Float64("score", bestScore.SoftScore),
		zap.Int("hardViolations", bestScore.HardViolations),
	)
	return best
}

// seedPopulation keeps one pristine clone of the base and fills the rest with
// lightly perturbed variants, one to three feasible relocations each.
func (refiner *geneticRefiner) seedPopulation(base *Schedule) []*Schedule {
	population := make([]*Schedule, refiner.cfg.PopulationSize)
	population[0] = base.Clone()
	for i := 1; i < len(population); i++ {
		individual := base.Clone()
		for i, n := 0, 1+refiner.rng.Intn(3); i < n; i++ {
			refiner.mutate(individual)
		}
		population[i] = individual
	}
	return population
}

// evaluate scores the population concurrently. Results are keyed by index, so
// scheduling order of the workers never changes which score belongs to which
// individual.
func (refiner *geneticRefiner) evaluate(population []*Schedule) []Evaluation {
	scores := make([]Evaluation, len(population))

	indices := make(chan int)
	var wg sync.WaitGroup
	for i, n := 0, min(runtime.NumCPU(), len(population)); i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indices {
				scores[i] = refiner.evaluator.Evaluate(population[i])
			}
		}()
	}
	for i := range population {
		indices <- i
	}
	close(indices)
	wg.Wait()

	return scores
}

func (refiner *geneticRefiner) fittest(population []*Schedule, scores []Evaluation) (*Schedule, Evaluation) {
	bestIndex := 0
	for i := 1; i < len(scores); i++ {
		if scores[i].Better(scores[bestIndex]) {
			bestIndex = i
		}
	}
	return population[bestIndex], scores[bestIndex]
}

// nextGeneration builds a fresh population: the elite survives unchanged,
// the rest come from tournament-selected parents passed through crossover and
// mutation.
func (refiner *geneticRefiner) nextGeneration(population []*Schedule, scores []Evaluation, elite *Schedule) []*Schedule {
	next := make([]*Schedule, 0, len(population))
	next = append(next, elite.Clone())

	for len(next) < len(population) {
		parent := refiner.tournament(population, scores)
		var child *Schedule
		if refiner.rng.Float64() < refiner.cfg.CrossoverRate {
			mate := refiner.tournament(population, scores)
			child = refiner.crossover(parent, mate)
		} else {
			child = parent.Clone()
		}
		if refiner.rng.Float64() < refiner.cfg.MutationRate {
			refiner.mutate(child)
		}
		next = append(next, child)
	}

	return next
}

func (refiner *geneticRefiner) tournament(population []*Schedule, scores []Evaluation) *Schedule {
	bestIndex := refiner.rng.Intn(len(population))
	for i := 0; i < refiner.cfg.TournamentSize-1; i++ {
		index := refiner.rng.Intn(len(population))
		if scores[index].Better(scores[bestIndex]) {
			bestIndex = index
		}
	}
	return population[bestIndex]
}

// crossover grafts the placements of roughly half the courses from the mate
// onto a clone of the parent, course by course so joint blocks travel
// together. A grafted session that no longer fits is repaired onto its first
// feasible start; if any session ends up unplaceable the child is discarded
// for a plain parent clone, keeping the population feasible.
func (refiner *geneticRefiner) crossover(parent *Schedule, mate *Schedule) *Schedule {
	child := parent.Clone()

	courses := lo.Uniq(lo.Map(child.Sessions, func(session *Session, _ int) string {
		return session.CourseId
	}))
	grafted := lo.Filter(courses, func(string, int) bool {
		return refiner.rng.Intn(2) == 0
	})
	graftedSet := lo.SliceToMap(grafted, func(course string) (string, bool) { return course, true })

	moving := lo.Filter(child.Sessions, func(session *Session, _ int) bool {
		return graftedSet[session.CourseId] && session.Start >= 0
	})
	for _, session := range moving {
		child.Unplace(session.Id)
	}

	for _, session := range moving {
		target := mate.Session(session.Id)
		if target != nil && target.Start >= 0 && child.CanPlace(session, target.Start, refiner.caps) {
			child.Place(session.Id, target.Start)
			continue
		}
		if !refiner.repair(child, session) {
			return parent.Clone()
		}
	}

	return child
}

func (refiner *geneticRefiner) repair(child *Schedule, session *Session) bool {
	starts := child.FeasibleStarts(session.Id, refiner.caps)
	if len(starts) == 0 {
		return false
	}
	child.Place(session.Id, starts[0])
	return true
}

// mutate relocates one random session to a random feasible start. A session
// with no alternative start is left where it is.
func (refiner *geneticRefiner) mutate(schedule *Schedule) {
	placed := lo.Filter(schedule.Sessions, func(session *Session, _ int) bool {
		return session.Start >= 0
	})
	if len(placed) == 0 {
		return
	}

	session := placed[refiner.rng.Intn(len(placed))]
	starts := schedule.FeasibleStarts(session.Id, refiner.caps)
	if len(starts) == 0 {
		return
	}

	schedule.Unplace(session.Id)
	schedule.Place(session.Id, starts[refiner.rng.Intn(len(starts))])
}
