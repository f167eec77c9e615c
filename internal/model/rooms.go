package model

import (
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
)

// AssignRooms binds every placed session to a room with enough capacity that
// is free across the whole block. Best-fit decreasing: sessions ordered by
// length, then required capacity, descending; each takes the smallest room
// that still fits, which minimizes capacity waste and fragmentation.
//
// Sessions the greedy order strands get a second chance via a maximum
// bipartite matching between the leftovers and the rooms. Whatever still has
// no room is left unbound and reported back; the slot placement itself stays
// valid, so this is not a hard failure.
func AssignRooms(schedule *Schedule, input ModelInput) []string {
	rooms := make([]Room, len(input.Rooms))
	copy(rooms, input.Rooms)
	slices.SortFunc(rooms, func(a, b Room) int {
		if a.Capacity != b.Capacity {
			return a.Capacity - b.Capacity
		}
		return compareStrings(a.Id, b.Id)
	})

	sessions := lo.Filter(schedule.Sessions, func(session *Session, _ int) bool {
		return session.Start >= 0
	})
	slices.SortFunc(sessions, func(a, b *Session) int {
		if a.Length != b.Length {
			return b.Length - a.Length
		}
		if a.Size != b.Size {
			return b.Size - a.Size
		}
		return compareStrings(a.Id, b.Id)
	})

	unassigned := make([]*Session, 0)
	for _, session := range sessions {
		if !placeInRoom(schedule, session, rooms) {
			unassigned = append(unassigned, session)
		}
	}

	if len(unassigned) > 0 {
		unassigned = rematchRooms(schedule, unassigned, rooms)
	}

	ids := lo.Map(unassigned, func(session *Session, _ int) string { return session.Id })
	slices.Sort(ids)
	return ids
}

func placeInRoom(schedule *Schedule, session *Session, rooms []Room) bool {
	for _, room := range rooms {
		if room.Capacity < session.Size {
			continue
		}
		if !roomFree(schedule, room.Id, session) {
			continue
		}
		schedule.SetRoom(session.Id, room.Id)
		return true
	}
	return false
}

func roomFree(schedule *Schedule, room string, session *Session) bool {
	for slot := session.Start; slot < session.End(); slot++ {
		if schedule.RoomBusy(room, slot) {
			return false
		}
	}
	return true
}

// rematchRooms gives stranded sessions a second chance: every bound session
// whose block overlaps a stranded one is unbound too, and the whole
// neighborhood is re-assigned through a largest bipartite matching against
// the rooms. Sessions the matching leaves out get a final greedy sweep, since
// two of them may still share a room across disjoint blocks. Returns the
// sessions that remain unassignable.
func rematchRooms(schedule *Schedule, stranded []*Session, rooms []Room) []*Session {
	overlaps := func(a, b *Session) bool {
		return a.Start < b.End() && b.Start < a.End()
	}

	pool := slices.Clone(stranded)
	for _, session := range schedule.Sessions {
		if session.Start < 0 || session.Room == "" {
			continue
		}
		if lo.SomeBy(stranded, func(other *Session) bool { return overlaps(session, other) }) {
			pool = append(pool, session)
		}
	}
	for _, session := range pool {
		if session.Room != "" {
			schedule.SetRoom(session.Id, "")
		}
	}

	neighbours := func(sessionAny any, roomAny any) (bool, error) {
		session := sessionAny.(*Session)
		room := roomAny.(Room)
		return room.Capacity >= session.Size && roomFree(schedule, room.Id, session), nil
	}
	sessionsAny := lo.Map(pool, func(session *Session, _ int) any { return session })
	roomsAny := lo.Map(rooms, func(room Room, _ int) any { return room })

	if graph, err := bipartitegraph.NewBipartiteGraph(sessionsAny, roomsAny, neighbours); err == nil {
		for _, edge := range graph.LargestMatching() {
			session, room := pool[edge.Node1], rooms[edge.Node2-len(pool)]
			if room.Capacity >= session.Size && roomFree(schedule, room.Id, session) {
				schedule.SetRoom(session.Id, room.Id)
			}
		}
	}

	leftover := make([]*Session, 0)
	for _, session := range pool {
		if session.Room == "" && !placeInRoom(schedule, session, rooms) {
			leftover = append(leftover, session)
		}
	}
	return leftover
}

func compareStrings(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
