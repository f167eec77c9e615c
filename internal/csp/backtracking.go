package csp

import (
	"github.com/samber/lo"
)

type backtrackingSolver struct {
	options Options
}

// neighbor links two variables that share at least one hard constraint.
// Variables related by neither faculty nor group can never conflict, so
// propagation skips them entirely.
type neighbor struct {
	index       int
	sameFaculty bool
	sharesGroup bool
}

// prune remembers a variable's domain as it was before one propagation step,
// so backtracking can restore it in O(1).
type prune struct {
	variable int
	domain   []int
}

// frame is one entry of the explicit search stack: a selected variable, the
// snapshot of its domain at selection time, and the undo log of the currently
// applied value. The search never recurses, which keeps the iteration budget
// and cancellation mid-search trivial to honor.
type frame struct {
	variable int
	values   []int
	next     int
	removals []prune
	applied  bool
}

type search struct {
	model     *Model
	domains   [][]int
	neighbors [][]neighbor

	assigned   []int
	unassigned int

	facultyDay  map[string][]int
	facultyLoad map[string]int
	groupDay    map[string][]int

	pruneCounts map[Family]int
}

func (solver *backtrackingSolver) Solve(model *Model) (Result, error) {
	if family, infeasible := model.analyze(); infeasible {
		return Result{Status: StatusInfeasible, Family: family}, nil
	}

	s := newSearch(model)
	iterations := 0
	stack := make([]frame, 0, len(model.Variables))

	if s.unassigned == 0 {
		return Result{Status: StatusFeasible, Assignment: []int{}}, nil
	}
	stack = append(stack, s.openFrame())

	for len(stack) > 0 {
		f := &stack[len(stack)-1]

		// Retract the currently applied value before trying the next one.
		if f.applied {
			s.undo(f)
		}

		advanced := false
		for f.next < len(f.values) {
			value := f.values[f.next]
			f.next++

			if iterations++; iterations > solver.options.MaxIterations {
				return Result{Status: StatusTimeout, Iterations: iterations - 1}, nil
			}

			if s.apply(f, value) {
				advanced = true
				break
			}
		}

		if !advanced {
			s.domains[f.variable] = f.values
			stack = stack[:len(stack)-1]
			continue
		}

		if s.unassigned == 0 {
			assignment := make([]int, len(s.assigned))
			copy(assignment, s.assigned)
			return Result{Status: StatusFeasible, Assignment: assignment, Iterations: iterations}, nil
		}
		stack = append(stack, s.openFrame())
	}

	return Result{Status: StatusInfeasible, Family: s.dominantFamily(), Iterations: iterations}, nil
}

func newSearch(model *Model) *search {
	s := &search{
		model:       model,
		domains:     make([][]int, len(model.Variables)),
		neighbors:   make([][]neighbor, len(model.Variables)),
		assigned:    make([]int, len(model.Variables)),
		unassigned:  len(model.Variables),
		facultyDay:  make(map[string][]int),
		facultyLoad: make(map[string]int),
		groupDay:    make(map[string][]int),
		pruneCounts: make(map[Family]int),
	}

	for i := range model.Variables {
		s.assigned[i] = -1
		s.domains[i] = make([]int, len(model.domains[i]))
		copy(s.domains[i], model.domains[i])
	}

	groupSets := lo.Map(model.Variables, func(variable Variable, _ int) map[string]bool {
		return lo.SliceToMap(variable.Groups, func(group string) (string, bool) { return group, true })
	})

	for i := range model.Variables {
		for j := range model.Variables {
			if i == j {
				continue
			}
			sameFaculty := model.Variables[i].Faculty == model.Variables[j].Faculty
			sharesGroup := lo.SomeBy(model.Variables[j].Groups, func(group string) bool {
				return groupSets[i][group]
			})
			if sameFaculty || sharesGroup {
				s.neighbors[i] = append(s.neighbors[i], neighbor{index: j, sameFaculty: sameFaculty, sharesGroup: sharesGroup})
			}
		}

		faculty := model.Variables[i].Faculty
		if _, ok := s.facultyDay[faculty]; !ok {
			s.facultyDay[faculty] = make([]int, model.Days)
		}
		for _, group := range model.Variables[i].Groups {
			if _, ok := s.groupDay[group]; !ok {
				s.groupDay[group] = make([]int, model.Days)
			}
		}
	}

	return s
}

// openFrame selects the next variable with the minimum-remaining-values
// heuristic; ties break on the lowest index so runs stay reproducible.
func (s *search) openFrame() frame {
	best := -1
	for i := range s.model.Variables {
		if s.assigned[i] >= 0 {
			continue
		}
		if best == -1 || len(s.domains[i]) < len(s.domains[best]) {
			best = i
		}
	}

	values := make([]int, len(s.domains[best]))
	copy(values, s.domains[best])
	return frame{variable: best, values: values}
}

func (s *search) apply(f *frame, value int) bool {
	s.assigned[f.variable] = value
	s.unassigned--
	s.addCounts(f.variable, value, 1)

	removals, ok := s.propagate(f.variable, value)
	f.removals = removals
	if !ok {
		s.undo(f)
		return false
	}

	f.applied = true
	return true
}

func (s *search) undo(f *frame) {
	for i := len(f.removals) - 1; i >= 0; i-- {
		s.domains[f.removals[i].variable] = f.removals[i].domain
	}
	f.removals = nil

	s.addCounts(f.variable, s.assigned[f.variable], -1)
	s.assigned[f.variable] = -1
	s.unassigned++
	f.applied = false
}

func (s *search) addCounts(variable, value, sign int) {
	length := s.model.Variables[variable].Length
	faculty := s.model.Variables[variable].Faculty
	day := s.model.day(value)

	s.facultyDay[faculty][day] += sign * length
	s.facultyLoad[faculty] += sign * length
	for _, group := range s.model.Variables[variable].Groups {
		s.groupDay[group][day] += sign * length
	}
}

// propagate forward-checks every unassigned neighbor against the freshly
// applied assignment, pruning start slots that clash with it or would bust a
// daily/weekly cap given the counts accumulated so far. Returns false on a
// domain wipeout.
func (s *search) propagate(variable, value int) ([]prune, bool) {
	end := value + s.model.Variables[variable].Length
	day := s.model.day(value)

	removals := make([]prune, 0, 4)
	for _, n := range s.neighbors[variable] {
		if s.assigned[n.index] >= 0 {
			continue
		}

		other := &s.model.Variables[n.index]
		kept := make([]int, 0, len(s.domains[n.index]))
		removed := false
		for _, candidate := range s.domains[n.index] {
			if family, reject := s.rejects(n, other, candidate, value, end, day); reject {
				s.pruneCounts[family]++
				removed = true
			} else {
				kept = append(kept, candidate)
			}
		}

		if removed {
			removals = append(removals, prune{variable: n.index, domain: s.domains[n.index]})
			s.domains[n.index] = kept
			if len(kept) == 0 {
				return removals, false
			}
		}
	}

	return removals, true
}

func (s *search) rejects(n neighbor, other *Variable, candidate, value, end, day int) (Family, bool) {
	overlaps := candidate < end && value < candidate+other.Length

	if n.sameFaculty && overlaps {
		return FamilyFacultyClash, true
	}
	if n.sharesGroup && overlaps {
		return FamilyGroupClash, true
	}

	candidateDay := s.model.day(candidate)
	if n.sameFaculty {
		if s.facultyLoad[other.Faculty]+other.Length > s.model.Caps.FacultyWeekly {
			return FamilyWeeklyCap, true
		}
		if candidateDay == day && s.facultyDay[other.Faculty][candidateDay]+other.Length > s.model.Caps.FacultyDaily {
			return FamilyDailyCap, true
		}
	}
	if n.sharesGroup && candidateDay == day {
		for _, group := range other.Groups {
			if s.groupDay[group][candidateDay]+other.Length > s.model.Caps.GroupDaily {
				return FamilyDailyCap, true
			}
		}
	}

	return "", false
}

// dominantFamily reports which constraint family did most of the pruning when
// search exhausts the space, as the likeliest culprit of the infeasibility.
func (s *search) dominantFamily() Family {
	families := []Family{FamilyFacultyClash, FamilyGroupClash, FamilyDailyCap, FamilyWeeklyCap, FamilyBlock}

	dominant := FamilyCompleteness
	best := 0
	for _, family := range families {
		if count := s.pruneCounts[family]; count > best {
			dominant = family
			best = count
		}
	}
	return dominant
}
