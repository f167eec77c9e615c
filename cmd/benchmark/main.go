// Benchmark runs the full pipeline over a directory of JSON problem instances
// and writes one CSV row per instance with timing and quality figures, for
// comparing configurations across problem sizes.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"go.uber.org/zap"

	"hybridtimetable/internal/config"
	"hybridtimetable/internal/csp"
	"hybridtimetable/internal/model"
)

type benchmarkRow struct {
	Instance        string  `csv:"instance"`
	Courses         int     `csv:"courses"`
	Sessions        int     `csv:"sessions"`
	Rooms           int     `csv:"rooms"`
	Groups          int     `csv:"groups"`
	Outcome         string  `csv:"outcome"`
	DurationMs      int64   `csv:"duration_ms"`
	Iterations      int     `csv:"iterations"`
	SoftScore       float64 `csv:"soft_score"`
	Utilization     float64 `csv:"utilization"`
	UnassignedRooms int     `csv:"unassigned_rooms"`
}

func main() {
	dirPtr := flag.String("dir", "testdata", "Directory containing JSON problem instances")
	outPtr := flag.String("out", "benchmark.csv", "Path of the results CSV")
	configPtr := flag.String("config", "", "Path to an optional yaml/json configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("cannot load configuration: %v", err)
	}

	entries, err := os.ReadDir(*dirPtr)
	if err != nil {
		log.Fatalf("cannot read instance directory: %v", err)
	}

	logger := zap.NewNop()
	solver := csp.NewSolver(csp.Options{MaxIterations: cfg.SolverIterations})
	timetabler := model.NewTimetabler(solver, logger)

	rows := make([]benchmarkRow, 0, len(entries))
	for _, dirEntry := range entries {
		if dirEntry.IsDir() || !strings.HasSuffix(dirEntry.Name(), ".json") {
			continue
		}
		instance := path.Join(*dirPtr, dirEntry.Name())
		fmt.Printf("Benchmarking %v\n", instance)

		input, err := model.InputFromJson(instance)
		if err != nil {
			log.Fatalf("cannot parse %v: %v", instance, err)
		}

		started := time.Now()
		result, err := timetabler.Build(input, cfg)
		elapsed := time.Since(started)

		row := benchmarkRow{
			Instance:   dirEntry.Name(),
			Courses:    len(input.Courses),
			Rooms:      len(input.Rooms),
			Groups:     len(input.Groups),
			DurationMs: elapsed.Milliseconds(),
		}

		var infeasible *model.InfeasibleError
		switch {
		case errors.As(err, &infeasible):
			row.Outcome = fmt.Sprintf("infeasible:%v", infeasible.Family)
		case errors.Is(err, model.ErrTimeout):
			row.Outcome = "timeout"
		case err != nil:
			log.Fatalf("building %v failed: %v", instance, err)
		default:
			row.Outcome = "solved"
			row.Sessions = result.Metrics.TotalSessions
			row.Iterations = result.Iterations
			row.SoftScore = result.Evaluation.SoftScore
			row.Utilization = result.Metrics.UtilizationRate
			row.UnassignedRooms = result.Metrics.UnassignedRooms
		}
		rows = append(rows, row)
	}

	out, err := os.Create(*outPtr)
	if err != nil {
		log.Fatalf("cannot create results file: %v", err)
	}
	defer out.Close()

	if err := gocsv.MarshalFile(&rows, out); err != nil {
		log.Fatalf("cannot write results: %v", err)
	}
	fmt.Printf("Wrote %v results to %v\n", len(rows), *outPtr)
}
