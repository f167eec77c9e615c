package model

// Metrics summarizes a built timetable for reporting and benchmarking.
type Metrics struct {
	TotalSessions   int     `json:"total_sessions"`
	UtilizationRate float64 `json:"utilization_rate"`
	ClashCount      int     `json:"clash_count"`
	BalanceScore    float64 `json:"balance_score"`
	UnassignedRooms int     `json:"unassigned_rooms"`
}

// ComputeMetrics derives the summary from a finished schedule. Utilization is
// the fraction of the week's room-slot capacity the placed sessions consume;
// balance is the evaluator's combined group and faculty load variance, lower
// meaning a more even week.
func ComputeMetrics(schedule *Schedule, input ModelInput, eval Evaluation, unassignedRooms []string) Metrics {
	occupied := 0
	for _, session := range schedule.Sessions {
		if session.Start >= 0 {
			occupied += session.Length
		}
	}

	utilization := 0.0
	if capacity := len(input.Rooms) * input.Grid.TotalSlots(); capacity > 0 {
		utilization = float64(occupied) / float64(capacity)
	}

	return Metrics{
		TotalSessions:   len(schedule.Sessions),
		UtilizationRate: utilization,
		ClashCount:      eval.HardViolations,
		BalanceScore:    eval.GroupBalance + eval.FacultyBalance,
		UnassignedRooms: len(unassignedRooms),
	}
}
