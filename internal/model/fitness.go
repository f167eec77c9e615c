package model

import (
	"math"
	"slices"

	"github.com/samber/lo"

	"hybridtimetable/internal/csp"
)

// Evaluation is the structured score of a schedule. HardViolations must be
// zero for a schedule to count as feasible; SoftScore orders feasible
// schedules by quality, lower is better.
type Evaluation struct {
	HardViolations int
	SoftScore      float64

	GroupBalance   float64
	FacultyBalance float64
	Gaps           float64
	DaySpread      float64
	DayFraction    float64
}

// Better implements the lexicographic criterion: feasibility always dominates
// quality.
func (eval Evaluation) Better(other Evaluation) bool {
	if eval.HardViolations != other.HardViolations {
		return eval.HardViolations < other.HardViolations
	}
	return eval.SoftScore < other.SoftScore
}

// Evaluator scores schedules for both the solver's acceptance policy and the
// genetic refinement loop. It is safe for concurrent use: evaluation reads
// the schedule and never writes.
type Evaluator struct {
	input        ModelInput
	caps         csp.Caps
	weights      FitnessWeights
	minGroupDays int
	dayFraction  float64
}

func NewEvaluator(input ModelInput, cfg Config) *Evaluator {
	return &Evaluator{
		input:        input,
		caps:         cfg.Caps(),
		weights:      cfg.Weights,
		minGroupDays: min(cfg.MinGroupDays, len(input.Grid.Days)),
		dayFraction:  cfg.DayBalanceFraction,
	}
}

func (evaluator *Evaluator) Evaluate(schedule *Schedule) Evaluation {
	eval := Evaluation{
		HardViolations: len(DetectConflicts(schedule, evaluator.input, evaluator.caps)),
	}

	grid := schedule.Grid
	groupDays := make(map[string][]int)  // group -> occupied-slot count per day
	groupSlots := make(map[string][]int) // group -> sorted per-day periods, flattened per day below
	facultyDays := make(map[string][]int)

	perDay := func(days map[string][]int, entity string) []int {
		counts, ok := days[entity]
		if !ok {
			counts = make([]int, len(grid.Days))
			days[entity] = counts
		}
		return counts
	}

	for _, session := range schedule.Sessions {
		if session.Start < 0 {
			continue
		}
		day := grid.Day(session.Start)
		perDay(facultyDays, session.Faculty)[day] += session.Length
		for _, group := range session.Groups {
			perDay(groupDays, group)[day] += session.Length
			for slot := session.Start; slot < session.End(); slot++ {
				groupSlots[group] = append(groupSlots[group], slot)
			}
		}
	}

	// Sorted iteration keeps float accumulation order, and therefore scores,
	// identical across runs.
	for _, group := range sortedDayKeys(groupDays) {
		counts := groupDays[group]
		eval.GroupBalance += variance(counts)

		active := lo.CountBy(counts, func(count int) bool { return count > 0 })
		if active < evaluator.minGroupDays {
			eval.DaySpread += float64(evaluator.minGroupDays - active)
		}

		total := lo.Sum(counts)
		ceiling := int(math.Ceil(evaluator.dayFraction * float64(total)))
		for _, count := range counts {
			if count > ceiling {
				eval.DayFraction += float64(count - ceiling)
			}
		}
	}

	for _, faculty := range sortedDayKeys(facultyDays) {
		eval.FacultyBalance += variance(facultyDays[faculty])
	}

	eval.Gaps = float64(idleGaps(grid, groupSlots))

	eval.SoftScore = evaluator.weights.GroupBalance*eval.GroupBalance +
		evaluator.weights.FacultyBalance*eval.FacultyBalance +
		evaluator.weights.Gaps*eval.Gaps +
		evaluator.weights.DaySpread*eval.DaySpread +
		evaluator.weights.DayFraction*eval.DayFraction

	return eval
}

// idleGaps counts the empty slots between a group's first and last occupied
// slot of each day, summed over all groups and days.
func idleGaps(grid Grid, groupSlots map[string][]int) int {
	gaps := 0
	for _, slots := range groupSlots {
		occupied := make(map[int]bool, len(slots))
		for _, slot := range slots {
			occupied[slot] = true
		}

		for day := 0; day < len(grid.Days); day++ {
			first, last := -1, -1
			for period := 0; period < grid.SlotsPerDay; period++ {
				slot := grid.Slot(day, period)
				if occupied[slot] {
					if first == -1 {
						first = slot
					}
					last = slot
				}
			}
			for slot := first + 1; first >= 0 && slot < last; slot++ {
				if !occupied[slot] {
					gaps++
				}
			}
		}
	}
	return gaps
}

func sortedDayKeys(days map[string][]int) []string {
	keys := lo.Keys(days)
	slices.Sort(keys)
	return keys
}

func variance(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	mean := float64(lo.Sum(counts)) / float64(len(counts))
	total := 0.0
	for _, count := range counts {
		total += (float64(count) - mean) * (float64(count) - mean)
	}
	return total / float64(len(counts))
}
