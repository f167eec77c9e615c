package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

func testInput(t *testing.T, courses []Course) ModelInput {
	input, err := NewModelInput(
		courses,
		[]Room{{Id: "r1", Capacity: 40}, {Id: "r2", Capacity: 25}},
		[]Group{{Id: "g1", Size: 30}, {Id: "g2", Size: 20}},
		testDays,
		4,
	)
	require.Nil(t, err)
	return input
}

func TestProcessRawInputNormalizesGroupShapes(t *testing.T) {
	// Arrange
	raw := RawModelInput{
		Courses: []RawCourse{
			{Id: "c1", Name: "Algebra", Faculty: "f1", Group: "g1", WeeklySlots: 2, Consecutive: 1},
			{Id: "c2", Name: "Sports", Faculty: "f2", Group: []any{"g2", "g1", "g1"}, WeeklySlots: 1, Consecutive: 1},
		},
		Rooms:       []Room{{Id: "r1", Capacity: 60}},
		Groups:      []Group{{Id: "g1", Size: 30}, {Id: "g2", Size: 20}},
		Days:        testDays,
		SlotsPerDay: 4,
	}

	// Act
	input, err := ProcessRawInput(raw)

	// Assert
	require.Nil(t, err)
	assert.Equal(t, []string{"g1"}, input.Courses[0].Groups)
	assert.Equal(t, []string{"g1", "g2"}, input.Courses[1].Groups, "groups must be sorted and deduplicated")
}

func TestOccupancySumsJointGroupSizes(t *testing.T) {
	// Arrange
	input := testInput(t, nil)

	// Assert
	assert.Equal(t, 30, input.Occupancy([]string{"g1"}))
	assert.Equal(t, 50, input.Occupancy([]string{"g1", "g2"}))
}

func TestValidateRejectsMalformedInputs(t *testing.T) {
	course := func(mutate func(*Course)) []Course {
		c := Course{Id: "c1", Name: "Algebra", Faculty: "f1", Groups: []string{"g1"}, WeeklySlots: 2, Consecutive: 1}
		mutate(&c)
		return []Course{c}
	}

	scenarios := map[string]ModelInput{
		"empty days": {
			Groups: []Group{{Id: "g1", Size: 30}},
			Grid:   Grid{Days: nil, SlotsPerDay: 4},
		},
		"non-positive slots per day": {
			Groups: []Group{{Id: "g1", Size: 30}},
			Grid:   Grid{Days: testDays, SlotsPerDay: 0},
		},
		"duplicate group": {
			Groups: []Group{{Id: "g1", Size: 30}, {Id: "g1", Size: 20}},
			Grid:   Grid{Days: testDays, SlotsPerDay: 4},
		},
		"non-positive group size": {
			Groups: []Group{{Id: "g1", Size: 0}},
			Grid:   Grid{Days: testDays, SlotsPerDay: 4},
		},
		"non-positive room capacity": {
			Rooms:  []Room{{Id: "r1", Capacity: 0}},
			Groups: []Group{{Id: "g1", Size: 30}},
			Grid:   Grid{Days: testDays, SlotsPerDay: 4},
		},
		"duplicate course": {
			Courses: append(course(func(*Course) {}), course(func(*Course) {})...),
			Groups:  []Group{{Id: "g1", Size: 30}},
			Grid:    Grid{Days: testDays, SlotsPerDay: 4},
		},
		"unknown group reference": {
			Courses: course(func(c *Course) { c.Groups = []string{"ghost"} }),
			Groups:  []Group{{Id: "g1", Size: 30}},
			Grid:    Grid{Days: testDays, SlotsPerDay: 4},
		},
		"non-positive weekly slots": {
			Courses: course(func(c *Course) { c.WeeklySlots = 0 }),
			Groups:  []Group{{Id: "g1", Size: 30}},
			Grid:    Grid{Days: testDays, SlotsPerDay: 4},
		},
		"consecutive below one": {
			Courses: course(func(c *Course) { c.Consecutive = 0 }),
			Groups:  []Group{{Id: "g1", Size: 30}},
			Grid:    Grid{Days: testDays, SlotsPerDay: 4},
		},
		"consecutive exceeds day length": {
			Courses: course(func(c *Course) { c.Consecutive = 5 }),
			Groups:  []Group{{Id: "g1", Size: 30}},
			Grid:    Grid{Days: testDays, SlotsPerDay: 4},
		},
	}

	for name, input := range scenarios {
		t.Run(name, func(t *testing.T) {
			// Act
			err := input.Validate()

			// Assert
			require.NotNil(t, err)
			assert.True(t, errors.Is(err, ErrInvalidInput), "expected ErrInvalidInput, got %v", err)
		})
	}
}

func TestGridSlotArithmetic(t *testing.T) {
	// Arrange
	grid := Grid{Days: testDays, SlotsPerDay: 4}

	// Assert
	assert.Equal(t, 20, grid.TotalSlots())
	assert.Equal(t, 2, grid.Day(9))
	assert.Equal(t, 1, grid.Period(9))
	assert.Equal(t, 9, grid.Slot(2, 1))
	assert.Equal(t, "Wednesday[1]", grid.SlotLabel(9))
}
