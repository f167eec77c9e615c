package csp

// Variable is one decision variable of the constraint model: a session block
// that must be placed at some start slot. Groups is the normalized set of
// group identifiers attending the block jointly.
type Variable struct {
	Id      string
	Length  int
	Faculty string
	Groups  []string
}

// Caps are the effective hard occupancy ceilings, already folded with the
// NEP-2020 limit of 6 sessions per day per entity.
type Caps struct {
	FacultyDaily  int
	FacultyWeekly int
	GroupDaily    int
}

// Model is a discrete constraint-satisfaction formulation whose solutions are
// exactly the feasible slot assignments (room binding is deferred to a later
// pass). Domains hold candidate absolute start slots per variable.
type Model struct {
	Days        int
	SlotsPerDay int
	Variables   []Variable
	Caps        Caps

	domains [][]int
}

func (m *Model) TotalSlots() int {
	return m.Days * m.SlotsPerDay
}

func (m *Model) day(slot int) int {
	return slot / m.SlotsPerDay
}

type Status int

const (
	StatusFeasible Status = iota
	StatusInfeasible
	StatusTimeout
)

func (status Status) String() string {
	switch status {
	case StatusFeasible:
		return "FEASIBLE"
	case StatusInfeasible:
		return "INFEASIBLE"
	case StatusTimeout:
		return "TIMEOUT"
	}
	return "UNKNOWN"
}

// Family names the constraint family implicated in an infeasibility report.
type Family string

const (
	FamilyCompleteness Family = "COMPLETENESS"
	FamilyFacultyClash Family = "FACULTY_CLASH"
	FamilyGroupClash   Family = "GROUP_CLASH"
	FamilyDailyCap     Family = "DAILY_CAP"
	FamilyWeeklyCap    Family = "WEEKLY_CAP"
	FamilyBlock        Family = "CONSECUTIVE_BLOCK"
)

// Result is the outcome of a solve run. Assignment maps variable index to the
// assigned start slot and is only meaningful when Status is StatusFeasible.
// Family is only meaningful when Status is StatusInfeasible.
type Result struct {
	Status     Status
	Assignment []int
	Family     Family
	Iterations int
}
