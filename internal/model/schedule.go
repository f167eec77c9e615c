package model

import (
	"slices"

	"hybridtimetable/internal/csp"
)

// Schedule is the weekly timetable: every session with its placement, plus
// occupancy indices by faculty, group and room for constant-time clash
// lookups. Mutating operators (room pass, GA) work on clones; a schedule
// handed out in a result is final by convention.
type Schedule struct {
	Grid     Grid
	Sessions []*Session

	byId        map[string]int
	facultyOcc  map[string]map[int]int
	groupOcc    map[string]map[int]int
	roomOcc     map[string]map[int]int
	facultyLoad map[string]int
}

// NewSchedule indexes the given sessions; sessions already placed (Start >= 0)
// are folded into the occupancy maps immediately.
func NewSchedule(grid Grid, sessions []*Session) *Schedule {
	schedule := &Schedule{
		Grid:        grid,
		Sessions:    sessions,
		byId:        make(map[string]int, len(sessions)),
		facultyOcc:  make(map[string]map[int]int),
		groupOcc:    make(map[string]map[int]int),
		roomOcc:     make(map[string]map[int]int),
		facultyLoad: make(map[string]int),
	}

	for i, session := range sessions {
		schedule.byId[session.Id] = i
		if session.Start >= 0 {
			schedule.occupy(session, 1)
		}
	}
	return schedule
}

func (schedule *Schedule) Session(id string) *Session {
	index, ok := schedule.byId[id]
	if !ok {
		return nil
	}
	return schedule.Sessions[index]
}

// At returns the sessions covering the given absolute slot, in session order.
func (schedule *Schedule) At(slot int) []*Session {
	covering := make([]*Session, 0)
	for _, session := range schedule.Sessions {
		if session.Covers(slot) {
			covering = append(covering, session)
		}
	}
	return covering
}

func (schedule *Schedule) FacultyBusy(faculty string, slot int) bool {
	return schedule.facultyOcc[faculty][slot] > 0
}

func (schedule *Schedule) GroupBusy(group string, slot int) bool {
	return schedule.groupOcc[group][slot] > 0
}

func (schedule *Schedule) RoomBusy(room string, slot int) bool {
	return schedule.roomOcc[room][slot] > 0
}

// CanPlace reports whether the (currently unplaced) session may start at the
// given slot without breaking any hard constraint: block contiguity within a
// day, faculty/group/room exclusivity, and the daily/weekly caps.
func (schedule *Schedule) CanPlace(session *Session, start int, caps csp.Caps) bool {
	end := start + session.Length
	if start < 0 || end > schedule.Grid.TotalSlots() {
		return false
	}
	if schedule.Grid.Day(start) != schedule.Grid.Day(end-1) {
		return false
	}

	for slot := start; slot < end; slot++ {
		if schedule.FacultyBusy(session.Faculty, slot) {
			return false
		}
		for _, group := range session.Groups {
			if schedule.GroupBusy(group, slot) {
				return false
			}
		}
		if session.Room != "" && schedule.RoomBusy(session.Room, slot) {
			return false
		}
	}

	day := schedule.Grid.Day(start)
	if schedule.daySlots(schedule.facultyOcc[session.Faculty], day)+session.Length > caps.FacultyDaily {
		return false
	}
	if schedule.facultyLoad[session.Faculty]+session.Length > caps.FacultyWeekly {
		return false
	}
	for _, group := range session.Groups {
		if schedule.daySlots(schedule.groupOcc[group], day)+session.Length > caps.GroupDaily {
			return false
		}
	}

	return true
}

func (schedule *Schedule) Place(id string, start int) {
	session := schedule.Session(id)
	session.Start = start
	schedule.occupy(session, 1)
}

func (schedule *Schedule) Unplace(id string) {
	session := schedule.Session(id)
	schedule.occupy(session, -1)
	session.Start = -1
}

// SetRoom binds (or, with an empty id, unbinds) a room without touching the
// session's slots.
func (schedule *Schedule) SetRoom(id string, room string) {
	session := schedule.Session(id)
	if session.Start >= 0 && session.Room != "" {
		schedule.addOccupancy(schedule.roomOcc, session.Room, session, -1)
	}
	session.Room = room
	if session.Start >= 0 && room != "" {
		schedule.addOccupancy(schedule.roomOcc, room, session, 1)
	}
}

// Clone deep-copies the schedule so operators can mutate freely while the
// original stays referenced elsewhere. Group identifier slices are shared:
// they are immutable after ingestion.
func (schedule *Schedule) Clone() *Schedule {
	sessions := make([]*Session, len(schedule.Sessions))
	for i, session := range schedule.Sessions {
		copied := *session
		sessions[i] = &copied
	}
	return NewSchedule(schedule.Grid, sessions)
}

func (schedule *Schedule) occupy(session *Session, sign int) {
	schedule.addOccupancy(schedule.facultyOcc, session.Faculty, session, sign)
	for _, group := range session.Groups {
		schedule.addOccupancy(schedule.groupOcc, group, session, sign)
	}
	if session.Room != "" {
		schedule.addOccupancy(schedule.roomOcc, session.Room, session, sign)
	}
	schedule.facultyLoad[session.Faculty] += sign * session.Length
}

func (schedule *Schedule) addOccupancy(occ map[string]map[int]int, entity string, session *Session, sign int) {
	slots, ok := occ[entity]
	if !ok {
		slots = make(map[int]int)
		occ[entity] = slots
	}
	for slot := session.Start; slot < session.End(); slot++ {
		slots[slot] += sign
	}
}

func (schedule *Schedule) daySlots(occ map[int]int, day int) int {
	count := 0
	first := schedule.Grid.Slot(day, 0)
	for period := 0; period < schedule.Grid.SlotsPerDay; period++ {
		if occ[first+period] > 0 {
			count++
		}
	}
	return count
}

// FeasibleStarts lists every start slot the session could move to, excluding
// its current one. The session is temporarily lifted out of the occupancy
// indices, so self-collision does not mask valid moves.
func (schedule *Schedule) FeasibleStarts(id string, caps csp.Caps) []int {
	session := schedule.Session(id)
	current := session.Start
	if current >= 0 {
		schedule.occupy(session, -1)
		session.Start = -1
	}

	starts := make([]int, 0)
	for day := 0; day < len(schedule.Grid.Days); day++ {
		for period := 0; period+session.Length <= schedule.Grid.SlotsPerDay; period++ {
			start := schedule.Grid.Slot(day, period)
			if start != current && schedule.CanPlace(session, start, caps) {
				starts = append(starts, start)
			}
		}
	}

	if current >= 0 {
		session.Start = current
		schedule.occupy(session, 1)
	}
	return slices.Clip(starts)
}
