package model

import "fmt"

// Session is one scheduled block of a course: a contiguous run of Length
// slots starting at Start, attended jointly by Groups, optionally bound to a
// room. Start is -1 until the solver places the session; Room is empty until
// the room pass binds one.
type Session struct {
	Id       string
	CourseId string
	Name     string
	Faculty  string
	Groups   []string
	Size     int
	Length   int
	Start    int
	Room     string
}

func (session *Session) End() int {
	return session.Start + session.Length
}

func (session *Session) Covers(slot int) bool {
	return session.Start >= 0 && slot >= session.Start && slot < session.End()
}

// ExpandCourses turns every course into its weekly session blocks: full
// blocks of size Consecutive plus one remainder block when weekly_slots is
// not divisible. Expansion order follows the course order, so session ids are
// stable across runs.
func ExpandCourses(input ModelInput) []*Session {
	sessions := make([]*Session, 0)

	for _, course := range input.Courses {
		size := input.Occupancy(course.Groups)

		remaining := course.WeeklySlots
		index := 0
		for remaining > 0 {
			length := min(course.Consecutive, remaining)
			remaining -= length

			tag := "s"
			if course.Consecutive > 1 {
				tag = "b"
			}
			sessions = append(sessions, &Session{
				Id:       fmt.Sprintf("%v_%v%v", course.Id, tag, index),
				CourseId: course.Id,
				Name:     course.Name,
				Faculty:  course.Faculty,
				Groups:   course.Groups,
				Size:     size,
				Length:   length,
				Start:    -1,
			})
			index++
		}
	}

	return sessions
}
