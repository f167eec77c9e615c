package model

import (
	"fmt"
	"slices"
	"strings"

	"github.com/samber/lo"

	"hybridtimetable/internal/csp"
)

type ConflictCategory string

const (
	FacultyDoubleBook      ConflictCategory = "FACULTY_DOUBLE_BOOK"
	GroupDoubleBook        ConflictCategory = "GROUP_DOUBLE_BOOK"
	RoomDoubleBook         ConflictCategory = "ROOM_DOUBLE_BOOK"
	RoomCapacityExceeded   ConflictCategory = "ROOM_CAPACITY_EXCEEDED"
	DailyCapExceeded       ConflictCategory = "DAILY_CAP_EXCEEDED"
	WeeklyCapExceeded      ConflictCategory = "WEEKLY_CAP_EXCEEDED"
	ConsecutiveBlockBroken ConflictCategory = "CONSECUTIVE_BLOCK_BROKEN"
)

// Conflict is one detected hard-constraint violation: the category, the
// slots and entities involved, the offending sessions and a readable
// description.
type Conflict struct {
	Category    ConflictCategory
	Slots       []int
	Entities    []string
	Sessions    []string
	Description string
}

// DetectConflicts re-scans a schedule from scratch and reports every
// violation it can find, not just the first per category. It is a pure
// function: occupancy is rebuilt from the session list, the schedule is never
// mutated, and two runs over the same schedule yield identical output. It
// works on any schedule, including externally constructed or hand-edited
// ones.
func DetectConflicts(schedule *Schedule, input ModelInput, caps csp.Caps) []Conflict {
	grid := schedule.Grid
	conflicts := make([]Conflict, 0)

	facultyOcc := make(map[string]map[int][]*Session)
	groupOcc := make(map[string]map[int][]*Session)
	roomOcc := make(map[string]map[int][]*Session)

	record := func(occ map[string]map[int][]*Session, entity string, slot int, session *Session) {
		if _, ok := occ[entity]; !ok {
			occ[entity] = make(map[int][]*Session)
		}
		occ[entity][slot] = append(occ[entity][slot], session)
	}

	for _, session := range schedule.Sessions {
		if session.Start < 0 {
			continue
		}
		for slot := session.Start; slot < session.End(); slot++ {
			if slot >= grid.TotalSlots() {
				break
			}
			record(facultyOcc, session.Faculty, slot, session)
			for _, group := range session.Groups {
				record(groupOcc, group, slot, session)
			}
			if session.Room != "" {
				record(roomOcc, session.Room, slot, session)
			}
		}
	}

	doubleBookings := func(category ConflictCategory, kind string, occ map[string]map[int][]*Session) {
		for _, entity := range sortedOccKeys(occ) {
			for slot := 0; slot < grid.TotalSlots(); slot++ {
				sessions := occ[entity][slot]
				if len(sessions) < 2 {
					continue
				}
				ids := sessionIds(sessions)
				conflicts = append(conflicts, Conflict{
					Category:    category,
					Slots:       []int{slot},
					Entities:    []string{entity},
					Sessions:    ids,
					Description: fmt.Sprintf("%v %v is double-booked at %v: %v", kind, entity, grid.SlotLabel(slot), strings.Join(ids, ", ")),
				})
			}
		}
	}

	doubleBookings(FacultyDoubleBook, "faculty", facultyOcc)
	doubleBookings(GroupDoubleBook, "group", groupOcc)
	doubleBookings(RoomDoubleBook, "room", roomOcc)

	for _, session := range schedule.Sessions {
		if session.Start < 0 || session.Room == "" {
			continue
		}
		room, ok := input.RoomById(session.Room)
		if !ok || session.Size <= room.Capacity {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Category:    RoomCapacityExceeded,
			Slots:       blockSlots(session),
			Entities:    []string{session.Room},
			Sessions:    []string{session.Id},
			Description: fmt.Sprintf("session %v needs capacity %v but room %v holds %v", session.Id, session.Size, session.Room, room.Capacity),
		})
	}

	dailyCaps := func(kind string, occ map[string]map[int][]*Session, limit int) {
		for _, entity := range sortedOccKeys(occ) {
			for day := 0; day < len(grid.Days); day++ {
				occupied := occupiedInDay(grid, occ[entity], day)
				if len(occupied) <= limit {
					continue
				}
				conflicts = append(conflicts, Conflict{
					Category:    DailyCapExceeded,
					Slots:       occupied,
					Entities:    []string{entity},
					Description: fmt.Sprintf("%v %v occupies %v slots on %v, cap is %v", kind, entity, len(occupied), grid.Days[day], limit),
				})
			}
		}
	}

	dailyCaps("faculty", facultyOcc, caps.FacultyDaily)
	dailyCaps("group", groupOcc, caps.GroupDaily)

	for _, faculty := range sortedOccKeys(facultyOcc) {
		occupied := lo.Keys(facultyOcc[faculty])
		if len(occupied) <= caps.FacultyWeekly {
			continue
		}
		slices.Sort(occupied)
		conflicts = append(conflicts, Conflict{
			Category:    WeeklyCapExceeded,
			Slots:       occupied,
			Entities:    []string{faculty},
			Description: fmt.Sprintf("faculty %v occupies %v slots in the week, cap is %v", faculty, len(occupied), caps.FacultyWeekly),
		})
	}

	for _, session := range schedule.Sessions {
		if session.Start < 0 {
			continue
		}
		if session.End() <= grid.TotalSlots() && grid.Day(session.Start) == grid.Day(session.End()-1) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			Category:    ConsecutiveBlockBroken,
			Slots:       blockSlots(session),
			Sessions:    []string{session.Id},
			Description: fmt.Sprintf("session %v spans %v slots from %v and does not fit contiguously into one day", session.Id, session.Length, grid.SlotLabel(session.Start)),
		})
	}

	return conflicts
}

func sortedOccKeys(occ map[string]map[int][]*Session) []string {
	keys := lo.Keys(occ)
	slices.Sort(keys)
	return keys
}

func sessionIds(sessions []*Session) []string {
	ids := lo.Map(sessions, func(session *Session, _ int) string { return session.Id })
	slices.Sort(ids)
	return ids
}

func blockSlots(session *Session) []int {
	slots := make([]int, 0, session.Length)
	for slot := session.Start; slot < session.End(); slot++ {
		slots = append(slots, slot)
	}
	return slots
}

func occupiedInDay(grid Grid, occ map[int][]*Session, day int) []int {
	occupied := make([]int, 0)
	for period := 0; period < grid.SlotsPerDay; period++ {
		slot := grid.Slot(day, period)
		if len(occ[slot]) > 0 {
			occupied = append(occupied, slot)
		}
	}
	return occupied
}
