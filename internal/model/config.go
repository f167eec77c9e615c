package model

import "hybridtimetable/internal/csp"

// NEPDailyCeiling is the NEP-2020 policy cap: at most 6 sessions per day for
// any faculty or group, regardless of the configured limits.
const NEPDailyCeiling = 6

type GAConfig struct {
	PopulationSize int     `mapstructure:"population_size"`
	Generations    int     `mapstructure:"generations"`
	Stagnation     int     `mapstructure:"stagnation"`
	TournamentSize int     `mapstructure:"tournament_size"`
	CrossoverRate  float64 `mapstructure:"crossover_rate"`
	MutationRate   float64 `mapstructure:"mutation_rate"`
}

// FitnessWeights scale the soft-quality components. They are configuration,
// never hardcoded inside the evaluator.
type FitnessWeights struct {
	GroupBalance   float64 `mapstructure:"group_balance"`
	FacultyBalance float64 `mapstructure:"faculty_balance"`
	Gaps           float64 `mapstructure:"gaps"`
	DaySpread      float64 `mapstructure:"day_spread"`
	DayFraction    float64 `mapstructure:"day_fraction"`
}

type Config struct {
	MaxClassesPerDay         int     `mapstructure:"max_classes_per_day"`
	MaxDailyHoursPerFaculty  int     `mapstructure:"max_daily_hours_per_faculty"`
	MaxWeeklyHoursPerFaculty int     `mapstructure:"max_weekly_hours_per_faculty"`
	MinGroupDays             int     `mapstructure:"min_group_days"`
	DayBalanceFraction       float64 `mapstructure:"day_balance_fraction"`
	UseGA                    bool    `mapstructure:"use_ga"`
	AssignRooms              bool    `mapstructure:"assign_rooms"`
	SolverIterations         int     `mapstructure:"solver_iterations"`
	Seed                     int64   `mapstructure:"seed"`

	GA      GAConfig       `mapstructure:"ga"`
	Weights FitnessWeights `mapstructure:"weights"`
}

func DefaultConfig() Config {
	return Config{
		MaxClassesPerDay:         5,
		MaxDailyHoursPerFaculty:  5,
		MaxWeeklyHoursPerFaculty: 20,
		MinGroupDays:             3,
		DayBalanceFraction:       0.4,
		UseGA:                    true,
		AssignRooms:              true,
		SolverIterations:         0, // solver default
		Seed:                     42,
		GA: GAConfig{
			PopulationSize: 60,
			Generations:    40,
			Stagnation:     10,
			TournamentSize: 3,
			CrossoverRate:  0.7,
			MutationRate:   0.2,
		},
		Weights: FitnessWeights{
			GroupBalance:   5,
			FacultyBalance: 1,
			Gaps:           2,
			DaySpread:      10,
			DayFraction:    100,
		},
	}
}

// Caps folds the configured limits with the NEP ceiling into the effective
// hard caps shared by the solver, the conflict detector and the GA operators.
func (cfg Config) Caps() csp.Caps {
	return csp.Caps{
		FacultyDaily:  min(cfg.MaxClassesPerDay, cfg.MaxDailyHoursPerFaculty, NEPDailyCeiling),
		FacultyWeekly: cfg.MaxWeeklyHoursPerFaculty,
		GroupDaily:    min(cfg.MaxClassesPerDay, NEPDailyCeiling),
	}
}
