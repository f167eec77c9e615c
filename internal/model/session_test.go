package model

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandCoursesSplitsWeeklySlotsIntoBlocks(t *testing.T) {
	// Arrange
	input := testInput(t, []Course{
		{Id: "alg", Name: "Algebra", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 3, Consecutive: 1},
		{Id: "lab", Name: "Physics Lab", Faculty: "f2", Groups: []string{"g2"}, WeeklySlots: 5, Consecutive: 2},
	})

	// Act
	sessions := ExpandCourses(input)

	// Assert
	require.Len(t, sessions, 6)
	assert.Equal(t, []string{"alg_s0", "alg_s1", "alg_s2", "lab_b0", "lab_b1", "lab_b2"},
		lo.Map(sessions, func(session *Session, _ int) string { return session.Id }))

	lengths := lo.Map(sessions, func(session *Session, _ int) int { return session.Length })
	assert.Equal(t, []int{1, 1, 1, 2, 2, 1}, lengths, "remainder block carries the leftover slots")

	for _, session := range sessions {
		assert.Equal(t, -1, session.Start)
		assert.Empty(t, session.Room)
	}
}

func TestExpandCoursesCarriesJointGroupOccupancy(t *testing.T) {
	// Arrange
	input := testInput(t, []Course{
		{Id: "pe", Name: "Sports", Faculty: "f1", Groups: []string{"g1", "g2"}, WeeklySlots: 1, Consecutive: 1},
	})

	// Act
	sessions := ExpandCourses(input)

	// Assert
	require.Len(t, sessions, 1)
	assert.Equal(t, 50, sessions[0].Size, "joint sessions need room for every attending group")
	assert.Equal(t, []string{"g1", "g2"}, sessions[0].Groups)
}

func TestExpandCoursesIsStable(t *testing.T) {
	// Arrange
	input := testInput(t, []Course{
		{Id: "a", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 4, Consecutive: 2},
		{Id: "b", Faculty: "f2", Groups: []string{"g2"}, WeeklySlots: 2, Consecutive: 1},
	})

	// Act
	first := ExpandCourses(input)
	second := ExpandCourses(input)

	// Assert
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, *first[i], *second[i])
	}
}
