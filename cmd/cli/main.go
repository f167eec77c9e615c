package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"go.uber.org/zap"

	"hybridtimetable/internal/config"
	"hybridtimetable/internal/csp"
	"hybridtimetable/internal/csvio"
	"hybridtimetable/internal/model"
)

var defaultDays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday"}

type entry struct {
	Day     string `json:"day"`
	Period  int    `json:"period"`
	Course  string `json:"course"`
	Session string `json:"session"`
	Faculty string `json:"faculty"`
	Room    string `json:"room,omitempty"`
}

func main() {
	inputPtr := flag.String("input", "", "Path to a JSON input file with courses, rooms, groups and the grid")
	coursesPtr := flag.String("courses", "", "Path to the courses CSV file (used together with -rooms and -groups instead of -input)")
	roomsPtr := flag.String("rooms", "", "Path to the rooms CSV file")
	groupsPtr := flag.String("groups", "", "Path to the groups CSV file")
	daysPtr := flag.String("days", strings.Join(defaultDays, ","), "Comma-separated day names for CSV inputs")
	slotsPtr := flag.Int("slots", 8, "Slots per day for CSV inputs")
	configPtr := flag.String("config", "", "Path to an optional yaml/json configuration file")
	outPtr := flag.String("out", "", "Path to the output file; if empty, the timetable is written to the Standard Output")
	verbosePtr := flag.Bool("verbose", false, "Enable debug logging")
	flag.Parse()

	logger := newLogger(*verbosePtr)
	defer logger.Sync()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	input, err := loadInput(*inputPtr, *coursesPtr, *roomsPtr, *groupsPtr, *daysPtr, *slotsPtr)
	if err != nil {
		log.Fatalf("cannot load input: %v", err)
	}

	solver := csp.NewSolver(csp.Options{MaxIterations: cfg.SolverIterations})
	timetabler := model.NewTimetabler(solver, logger)

	result, err := timetabler.Build(input, cfg)
	var infeasible *model.InfeasibleError
	switch {
	case errors.As(err, &infeasible):
		fmt.Printf("No timetable exists: %v\n", infeasible.Family)
		os.Exit(20)
	case errors.Is(err, model.ErrTimeout):
		fmt.Printf("Search gave up: %v\n", err)
		os.Exit(21)
	case err != nil:
		log.Fatalf("an error occurred during timetable construction: %v", err)
	}

	output, err := json.MarshalIndent(buildOutput(result, input), "", "  ")
	if err != nil {
		log.Fatalf("an error occurred while building output json: %v", err)
	}

	if *outPtr == "" {
		fmt.Println(string(output))
	} else if err := os.WriteFile(*outPtr, output, 0666); err != nil {
		log.Fatalf("an error occurred while writing to the output file: %v", err)
	}

	logger.Info("timetable written",
		zap.Int("sessions", result.Metrics.TotalSessions),
		zap.Float64("utilization", result.Metrics.UtilizationRate),
		zap.Int("unassignedRooms", result.Metrics.UnassignedRooms),
		zap.Float64("score", result.Evaluation.SoftScore),
	)
}

func loadInput(inputFile, coursesFile, roomsFile, groupsFile, days string, slotsPerDay int) (model.ModelInput, error) {
	if inputFile != "" {
		return model.InputFromJson(inputFile)
	}
	if coursesFile == "" || roomsFile == "" || groupsFile == "" {
		return model.ModelInput{}, errors.New("either -input or all of -courses, -rooms and -groups must be specified")
	}
	return csvio.Load(
		csvio.Files{Courses: coursesFile, Rooms: roomsFile, Groups: groupsFile},
		strings.Split(days, ","),
		slotsPerDay,
	)
}

// buildOutput arranges the schedule per group, entries ordered by slot, the
// shape consumers render directly.
func buildOutput(result *model.Result, input model.ModelInput) map[string][]entry {
	grid := input.Grid
	perGroup := make(map[string][]entry)
	for _, group := range input.Groups {
		perGroup[group.Id] = make([]entry, 0)
	}

	for slot := 0; slot < grid.TotalSlots(); slot++ {
		for _, session := range result.Schedule.At(slot) {
			for _, group := range session.Groups {
				perGroup[group] = append(perGroup[group], entry{
					Day:     grid.Days[grid.Day(slot)],
					Period:  grid.Period(slot),
					Course:  session.CourseId,
					Session: session.Id,
					Faculty: session.Faculty,
					Room:    session.Room,
				})
			}
		}
	}
	return perGroup
}

func newLogger(verbose bool) *zap.Logger {
	level := zap.InfoLevel
	if verbose {
		level = zap.DebugLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("cannot initialize logger: %v", err)
	}
	return logger
}
