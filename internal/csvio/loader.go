// Package csvio loads timetabling inputs from CSV files, one file per record
// kind, as an alternative to the single-document JSON input.
package csvio

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/samber/lo"

	"hybridtimetable/internal/model"
)

// CourseRecord is one row of the courses file. Groups is a semicolon-joined
// list so a joint course stays a single row.
type CourseRecord struct {
	Id          string `csv:"id"`
	Name        string `csv:"name"`
	Faculty     string `csv:"faculty"`
	Groups      string `csv:"groups"`
	WeeklySlots int    `csv:"weekly_slots"`
	Consecutive int    `csv:"consecutive"`
}

type RoomRecord struct {
	Id       string `csv:"id"`
	Capacity int    `csv:"capacity"`
}

type GroupRecord struct {
	Id   string `csv:"id"`
	Size int    `csv:"size"`
}

// Files names the three CSV inputs of one timetabling problem.
type Files struct {
	Courses string
	Rooms   string
	Groups  string
}

// Load reads the three files and assembles a validated model input on the
// given grid.
func Load(files Files, days []string, slotsPerDay int) (model.ModelInput, error) {
	var courseRecords []*CourseRecord
	if err := unmarshalFile(files.Courses, &courseRecords); err != nil {
		return model.ModelInput{}, err
	}
	var roomRecords []*RoomRecord
	if err := unmarshalFile(files.Rooms, &roomRecords); err != nil {
		return model.ModelInput{}, err
	}
	var groupRecords []*GroupRecord
	if err := unmarshalFile(files.Groups, &groupRecords); err != nil {
		return model.ModelInput{}, err
	}

	courses := lo.Map(courseRecords, func(record *CourseRecord, _ int) model.Course {
		return model.Course{
			Id:          record.Id,
			Name:        record.Name,
			Faculty:     record.Faculty,
			Groups:      splitGroups(record.Groups),
			WeeklySlots: record.WeeklySlots,
			Consecutive: record.Consecutive,
		}
	})
	rooms := lo.Map(roomRecords, func(record *RoomRecord, _ int) model.Room {
		return model.Room{Id: record.Id, Capacity: record.Capacity}
	})
	groups := lo.Map(groupRecords, func(record *GroupRecord, _ int) model.Group {
		return model.Group{Id: record.Id, Size: record.Size}
	})

	return model.NewModelInput(courses, rooms, groups, days, slotsPerDay)
}

func unmarshalFile(path string, out any) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %v: %w", path, err)
	}
	defer file.Close()

	if err := gocsv.UnmarshalFile(file, out); err != nil {
		return fmt.Errorf("parse %v: %w", path, err)
	}
	return nil
}

func splitGroups(joined string) []string {
	parts := strings.Split(joined, ";")
	groups := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			groups = append(groups, trimmed)
		}
	}
	slices.Sort(groups)
	return slices.Compact(groups)
}
