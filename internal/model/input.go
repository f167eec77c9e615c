package model

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

type Course struct {
	Id          string
	Name        string
	Faculty     string
	Groups      []string
	WeeklySlots int
	Consecutive int
}

type Room struct {
	Id       string
	Capacity int
}

type Group struct {
	Id   string
	Size int
}

// RawCourse is the wire shape of a course. Group accepts either a single
// identifier or a list of identifiers; the shape is normalized away during
// processing and nothing downstream ever branches on it.
type RawCourse struct {
	Id          string
	Name        string
	Faculty     string
	Group       any
	WeeklySlots int `mapstructure:"weekly_slots"`
	Consecutive int
}

type RawModelInput struct {
	Courses     []RawCourse
	Rooms       []Room
	Groups      []Group
	Days        []string
	SlotsPerDay int `mapstructure:"slots_per_day"`
}

type ModelInput struct {
	Courses []Course
	Rooms   []Room
	Groups  []Group
	Grid    Grid

	groupSizes map[string]int
}

func InputFromJson(file string) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, err
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, err
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return ModelInput{}, err
	}
	return ProcessRawInput(rawInput)
}

// ProcessRawInput normalizes the wire shapes into the typed model: group
// fields become sorted identifier sets and the grid is assembled from the day
// list. Validation happens here so malformed data never reaches the solver.
func ProcessRawInput(rawInput RawModelInput) (ModelInput, error) {
	input := ModelInput{
		Rooms:  rawInput.Rooms,
		Groups: rawInput.Groups,
		Grid: Grid{
			Days:        rawInput.Days,
			SlotsPerDay: rawInput.SlotsPerDay,
		},
	}

	input.Courses = make([]Course, 0, len(rawInput.Courses))
	for _, rawCourse := range rawInput.Courses {
		groups, err := normalizeGroups(rawCourse.Group)
		if err != nil {
			return ModelInput{}, fmt.Errorf("%w: course %v: %v", ErrInvalidInput, rawCourse.Id, err)
		}
		input.Courses = append(input.Courses, Course{
			Id:          rawCourse.Id,
			Name:        rawCourse.Name,
			Faculty:     rawCourse.Faculty,
			Groups:      groups,
			WeeklySlots: rawCourse.WeeklySlots,
			Consecutive: rawCourse.Consecutive,
		})
	}

	input.groupSizes = lo.SliceToMap(input.Groups, func(group Group) (string, int) {
		return group.Id, group.Size
	})

	if err := input.Validate(); err != nil {
		return ModelInput{}, err
	}
	return input, nil
}

// NewModelInput builds a validated input from already-typed entities, for
// callers that do not go through JSON.
func NewModelInput(courses []Course, rooms []Room, groups []Group, days []string, slotsPerDay int) (ModelInput, error) {
	input := ModelInput{
		Courses: courses,
		Rooms:   rooms,
		Groups:  groups,
		Grid:    Grid{Days: days, SlotsPerDay: slotsPerDay},
	}
	input.groupSizes = lo.SliceToMap(groups, func(group Group) (string, int) {
		return group.Id, group.Size
	})

	if err := input.Validate(); err != nil {
		return ModelInput{}, err
	}
	return input, nil
}

// Occupancy is the room capacity a joint session of the given groups
// requires: the sum of all attending groups' sizes (the strict reading of
// joint teaching, where every listed group is present at once).
func (input ModelInput) Occupancy(groups []string) int {
	return lo.SumBy(groups, func(group string) int { return input.groupSizes[group] })
}

func (input ModelInput) RoomById(id string) (Room, bool) {
	return lo.Find(input.Rooms, func(room Room) bool { return room.Id == id })
}

func (input ModelInput) Validate() error {
	if len(input.Grid.Days) == 0 {
		return fmt.Errorf("%w: day list must not be empty", ErrInvalidInput)
	}
	if input.Grid.SlotsPerDay <= 0 {
		return fmt.Errorf("%w: slots_per_day must be positive: %v", ErrInvalidInput, input.Grid.SlotsPerDay)
	}

	groupIds := make(map[string]bool, len(input.Groups))
	for _, group := range input.Groups {
		if group.Id == "" {
			return fmt.Errorf("%w: group with empty identifier", ErrInvalidInput)
		}
		if group.Size <= 0 {
			return fmt.Errorf("%w: group %v has non-positive size %v", ErrInvalidInput, group.Id, group.Size)
		}
		if groupIds[group.Id] {
			return fmt.Errorf("%w: duplicate group %v", ErrInvalidInput, group.Id)
		}
		groupIds[group.Id] = true
	}

	roomIds := make(map[string]bool, len(input.Rooms))
	for _, room := range input.Rooms {
		if room.Id == "" {
			return fmt.Errorf("%w: room with empty identifier", ErrInvalidInput)
		}
		if room.Capacity <= 0 {
			return fmt.Errorf("%w: room %v has non-positive capacity %v", ErrInvalidInput, room.Id, room.Capacity)
		}
		if roomIds[room.Id] {
			return fmt.Errorf("%w: duplicate room %v", ErrInvalidInput, room.Id)
		}
		roomIds[room.Id] = true
	}

	courseIds := make(map[string]bool, len(input.Courses))
	for _, course := range input.Courses {
		if course.Id == "" {
			return fmt.Errorf("%w: course with empty identifier", ErrInvalidInput)
		}
		if courseIds[course.Id] {
			return fmt.Errorf("%w: duplicate course %v", ErrInvalidInput, course.Id)
		}
		courseIds[course.Id] = true

		if course.Faculty == "" {
			return fmt.Errorf("%w: course %v has no faculty", ErrInvalidInput, course.Id)
		}
		if len(course.Groups) == 0 {
			return fmt.Errorf("%w: course %v has no groups", ErrInvalidInput, course.Id)
		}
		for _, group := range course.Groups {
			if !groupIds[group] {
				return fmt.Errorf("%w: course %v references unknown group %v", ErrInvalidInput, course.Id, group)
			}
		}
		if course.WeeklySlots <= 0 {
			return fmt.Errorf("%w: course %v has non-positive weekly_slots %v", ErrInvalidInput, course.Id, course.WeeklySlots)
		}
		if course.Consecutive < 1 {
			return fmt.Errorf("%w: course %v has consecutive %v, must be at least 1", ErrInvalidInput, course.Id, course.Consecutive)
		}
		if course.Consecutive > input.Grid.SlotsPerDay {
			return fmt.Errorf("%w: course %v has consecutive %v, which cannot fit into %v slots per day", ErrInvalidInput, course.Id, course.Consecutive, input.Grid.SlotsPerDay)
		}
	}

	return nil
}

func normalizeGroups(group any) ([]string, error) {
	var groups []string

	switch value := group.(type) {
	case string:
		groups = []string{value}
	case []string:
		groups = slices.Clone(value)
	case []any:
		for _, item := range value {
			id, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("group list contains a non-string entry: %v", item)
			}
			groups = append(groups, id)
		}
	default:
		return nil, fmt.Errorf("group must be a string or a list of strings: %v", group)
	}

	slices.Sort(groups)
	return slices.Compact(groups), nil
}
