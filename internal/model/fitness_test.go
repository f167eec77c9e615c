package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBetterIsLexicographic(t *testing.T) {
	// Feasibility dominates quality.
	assert.True(t, Evaluation{HardViolations: 0, SoftScore: 99}.Better(Evaluation{HardViolations: 1, SoftScore: 0}))
	assert.False(t, Evaluation{HardViolations: 1, SoftScore: 0}.Better(Evaluation{HardViolations: 0, SoftScore: 99}))
	assert.True(t, Evaluation{SoftScore: 1}.Better(Evaluation{SoftScore: 2}))
	assert.False(t, Evaluation{SoftScore: 2}.Better(Evaluation{SoftScore: 2}))
}

func TestEvaluatePrefersSpreadOverLumped(t *testing.T) {
	// Arrange: four 1-slot sessions for one group, either spread across four
	// days or dumped into one.
	input := testInput(t, []Course{
		{Id: "a", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
		{Id: "b", Faculty: "f2", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
		{Id: "c", Faculty: "f3", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
		{Id: "d", Faculty: "f4", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
	})
	evaluator := NewEvaluator(input, DefaultConfig())

	spread := NewSchedule(input.Grid, ExpandCourses(input))
	for i, id := range []string{"a_s0", "b_s0", "c_s0", "d_s0"} {
		spread.Place(id, input.Grid.Slot(i, 0))
	}

	lumped := NewSchedule(input.Grid, ExpandCourses(input))
	for i, id := range []string{"a_s0", "b_s0", "c_s0", "d_s0"} {
		lumped.Place(id, input.Grid.Slot(0, i))
	}

	// Act
	spreadEval := evaluator.Evaluate(spread)
	lumpedEval := evaluator.Evaluate(lumped)

	// Assert
	require.Equal(t, 0, spreadEval.HardViolations)
	require.Equal(t, 0, lumpedEval.HardViolations)
	assert.True(t, spreadEval.Better(lumpedEval))
	assert.Greater(t, lumpedEval.GroupBalance, spreadEval.GroupBalance)
	assert.Greater(t, lumpedEval.DaySpread, spreadEval.DaySpread, "lumped week misses the minimum active days")
}

func TestEvaluateCountsIdleGaps(t *testing.T) {
	// Arrange: g1 busy at Monday periods 0 and 3, idle in between.
	input := testInput(t, []Course{
		{Id: "a", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
		{Id: "b", Faculty: "f2", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
	})
	evaluator := NewEvaluator(input, DefaultConfig())

	gappy := NewSchedule(input.Grid, ExpandCourses(input))
	gappy.Place("a_s0", 0)
	gappy.Place("b_s0", 3)

	compact := NewSchedule(input.Grid, ExpandCourses(input))
	compact.Place("a_s0", 0)
	compact.Place("b_s0", 1)

	// Act & Assert
	assert.Equal(t, 2.0, evaluator.Evaluate(gappy).Gaps)
	assert.Equal(t, 0.0, evaluator.Evaluate(compact).Gaps)
}

func TestEvaluateCountsHardViolations(t *testing.T) {
	// Arrange: two sessions of the same faculty stacked onto one slot.
	input := testInput(t, []Course{
		{Id: "a", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 1, Consecutive: 1},
		{Id: "b", Faculty: "f1", Groups: []string{"g2"}, WeeklySlots: 1, Consecutive: 1},
	})
	sessions := ExpandCourses(input)
	for _, session := range sessions {
		session.Start = 0
	}
	schedule := NewSchedule(input.Grid, sessions)

	// Act
	eval := NewEvaluator(input, DefaultConfig()).Evaluate(schedule)

	// Assert
	assert.Greater(t, eval.HardViolations, 0)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	// Arrange
	input := testInput(t, []Course{
		{Id: "a", Faculty: "f1", Groups: []string{"g1", "g2"}, WeeklySlots: 2, Consecutive: 1},
		{Id: "b", Faculty: "f2", Groups: []string{"g2"}, WeeklySlots: 2, Consecutive: 2},
	})
	schedule := NewSchedule(input.Grid, ExpandCourses(input))
	schedule.Place("a_s0", 0)
	schedule.Place("a_s1", 4)
	schedule.Place("b_b0", 9)
	evaluator := NewEvaluator(input, DefaultConfig())

	// Act & Assert
	first := evaluator.Evaluate(schedule)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, evaluator.Evaluate(schedule))
	}
}
