package model

import (
	"math/rand"
	"testing"

	. "github.com/onsi/gomega"
	"go.uber.org/zap"
)

func refinementFixture(t *testing.T) (ModelInput, Config, *Schedule) {
	input := testInput(t, []Course{
		{Id: "alg", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 3, Consecutive: 1},
		{Id: "geo", Faculty: "f1", Groups: []string{"g2"}, WeeklySlots: 2, Consecutive: 1},
		{Id: "bio", Faculty: "f2", Groups: []string{"g1"}, WeeklySlots: 4, Consecutive: 2},
		{Id: "chem", Faculty: "f2", Groups: []string{"g2"}, WeeklySlots: 2, Consecutive: 1},
	})

	cfg := DefaultConfig()
	cfg.GA.PopulationSize = 12
	cfg.GA.Generations = 8
	cfg.GA.Stagnation = 4

	// A deliberately lumped but feasible base: everything crammed into the
	// first days.
	schedule := NewSchedule(input.Grid, ExpandCourses(input))
	placements := map[string]int{
		"alg_s0": 0, "alg_s1": 1, "alg_s2": 2,
		"geo_s0": 3, "geo_s1": 4,
		"bio_b0": 4, "bio_b1": 6,
		"chem_s0": 0, "chem_s1": 1,
	}
	for id, start := range placements {
		if !schedule.CanPlace(schedule.Session(id), start, cfg.Caps()) {
			t.Fatalf("fixture placement %v at %v is not feasible", id, start)
		}
		schedule.Place(id, start)
	}
	return input, cfg, schedule
}

func TestRefineNeverWorseThanBase(t *testing.T) {
	// Arrange
	g := NewWithT(t)
	input, cfg, base := refinementFixture(t)
	evaluator := NewEvaluator(input, cfg)
	baseEval := evaluator.Evaluate(base)
	g.Expect(baseEval.HardViolations).To(BeZero())

	refiner := NewRefiner(input, cfg, rand.New(rand.NewSource(cfg.Seed)), zap.NewNop())

	// Act
	refined := refiner.Refine(base)
	refinedEval := evaluator.Evaluate(refined)

	// Assert
	g.Expect(refinedEval.HardViolations).To(BeZero(), "refinement must preserve feasibility")
	g.Expect(refinedEval.SoftScore).To(BeNumerically("<=", baseEval.SoftScore))
	g.Expect(DetectConflicts(refined, input, cfg.Caps())).To(BeEmpty())
}

func TestRefineLeavesBaseUntouched(t *testing.T) {
	// Arrange
	g := NewWithT(t)
	input, cfg, base := refinementFixture(t)
	before := map[string]int{}
	for _, session := range base.Sessions {
		before[session.Id] = session.Start
	}
	refiner := NewRefiner(input, cfg, rand.New(rand.NewSource(cfg.Seed)), zap.NewNop())

	// Act
	refiner.Refine(base)

	// Assert
	for _, session := range base.Sessions {
		g.Expect(session.Start).To(Equal(before[session.Id]))
	}
}

func TestRefineZeroGenerationsReturnsBaseEquivalent(t *testing.T) {
	// Arrange
	g := NewWithT(t)
	input, cfg, base := refinementFixture(t)
	cfg.GA.Generations = 0
	evaluator := NewEvaluator(input, cfg)
	refiner := NewRefiner(input, cfg, rand.New(rand.NewSource(cfg.Seed)), zap.NewNop())

	// Act
	refined := refiner.Refine(base)

	// Assert: a copy with identical placements and identical fitness.
	g.Expect(refined).NotTo(BeIdenticalTo(base))
	for _, session := range base.Sessions {
		g.Expect(refined.Session(session.Id).Start).To(Equal(session.Start))
	}
	g.Expect(evaluator.Evaluate(refined)).To(Equal(evaluator.Evaluate(base)))
}

func TestRefineDeterministicForSeed(t *testing.T) {
	// Arrange
	g := NewWithT(t)
	input, cfg, base := refinementFixture(t)

	run := func(seed int64) map[string]int {
		refiner := NewRefiner(input, cfg, rand.New(rand.NewSource(seed)), zap.NewNop())
		refined := refiner.Refine(base)
		starts := map[string]int{}
		for _, session := range refined.Sessions {
			starts[session.Id] = session.Start
		}
		return starts
	}

	// Act & Assert
	g.Expect(run(7)).To(Equal(run(7)), "same seed must reproduce the same timetable")
}
