package csp

import (
	"fmt"
	"slices"

	"github.com/samber/lo"
)

// Build translates session blocks and numeric caps into a constraint model.
// Initial domains contain every start slot whose block fits contiguously
// inside a single day; hard constraints are enforced by the solver through
// propagation during search.
func Build(days, slotsPerDay int, variables []Variable, caps Caps) (*Model, error) {
	if days <= 0 || slotsPerDay <= 0 {
		return nil, fmt.Errorf("grid must be non-empty: %v days, %v slots per day", days, slotsPerDay)
	}
	if caps.FacultyDaily <= 0 || caps.FacultyWeekly <= 0 || caps.GroupDaily <= 0 {
		return nil, fmt.Errorf("caps must be positive: %+v", caps)
	}

	model := &Model{
		Days:        days,
		SlotsPerDay: slotsPerDay,
		Variables:   variables,
		Caps:        caps,
	}

	model.domains = make([][]int, len(variables))
	for i, variable := range variables {
		if variable.Length <= 0 {
			return nil, fmt.Errorf("variable %v has non-positive length %v", variable.Id, variable.Length)
		}
		domain := make([]int, 0, days*slotsPerDay)
		for day := 0; day < days; day++ {
			for period := 0; period+variable.Length <= slotsPerDay; period++ {
				domain = append(domain, day*slotsPerDay+period)
			}
		}
		model.domains[i] = domain
	}

	return model, nil
}

// analyze looks for provable infeasibility before any search happens, so the
// report can pin an exact constraint family instead of a search post-mortem.
func (m *Model) analyze() (Family, bool) {
	for i := range m.Variables {
		if len(m.domains[i]) == 0 {
			return FamilyBlock, true
		}
		// A single block longer than a cap can never be placed, and forward
		// checking alone would not notice a variable with no neighbors.
		if m.Variables[i].Length > m.Caps.FacultyDaily || m.Variables[i].Length > m.Caps.GroupDaily {
			return FamilyDailyCap, true
		}
		if m.Variables[i].Length > m.Caps.FacultyWeekly {
			return FamilyWeeklyCap, true
		}
	}

	facultyDemand := make(map[string]int)
	groupDemand := make(map[string]int)
	for _, variable := range m.Variables {
		facultyDemand[variable.Faculty] += variable.Length
		for _, group := range variable.Groups {
			groupDemand[group] += variable.Length
		}
	}

	// Deterministic iteration keeps the implicated family stable across runs.
	for _, faculty := range sortedKeys(facultyDemand) {
		demand := facultyDemand[faculty]
		if demand > m.Caps.FacultyWeekly {
			return FamilyWeeklyCap, true
		}
		if demand > m.Days*m.Caps.FacultyDaily {
			return FamilyDailyCap, true
		}
		if demand > m.TotalSlots() {
			return FamilyFacultyClash, true
		}
	}
	for _, group := range sortedKeys(groupDemand) {
		demand := groupDemand[group]
		if demand > m.Days*m.Caps.GroupDaily {
			return FamilyDailyCap, true
		}
		if demand > m.TotalSlots() {
			return FamilyGroupClash, true
		}
	}

	return "", false
}

func sortedKeys(demand map[string]int) []string {
	keys := lo.Keys(demand)
	slices.Sort(keys)
	return keys
}
