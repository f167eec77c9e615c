// Package config loads solver configuration from an optional file plus
// environment overrides, layered on top of the built-in defaults.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"hybridtimetable/internal/model"
)

// Load reads the configuration at path (yaml or json, decided by extension)
// and unmarshals it over the defaults. An empty path skips the file and
// yields defaults plus environment overrides; environment variables use the
// TIMETABLE_ prefix with underscores for nesting (TIMETABLE_GA_GENERATIONS).
func Load(path string) (model.Config, error) {
	v := viper.New()
	v.SetEnvPrefix("TIMETABLE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v, model.DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return model.Config{}, err
		}
	}

	var cfg model.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return model.Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, defaults model.Config) {
	v.SetDefault("max_classes_per_day", defaults.MaxClassesPerDay)
	v.SetDefault("max_daily_hours_per_faculty", defaults.MaxDailyHoursPerFaculty)
	v.SetDefault("max_weekly_hours_per_faculty", defaults.MaxWeeklyHoursPerFaculty)
	v.SetDefault("min_group_days", defaults.MinGroupDays)
	v.SetDefault("day_balance_fraction", defaults.DayBalanceFraction)
	v.SetDefault("use_ga", defaults.UseGA)
	v.SetDefault("assign_rooms", defaults.AssignRooms)
	v.SetDefault("solver_iterations", defaults.SolverIterations)
	v.SetDefault("seed", defaults.Seed)

	v.SetDefault("ga.population_size", defaults.GA.PopulationSize)
	v.SetDefault("ga.generations", defaults.GA.Generations)
	v.SetDefault("ga.stagnation", defaults.GA.Stagnation)
	v.SetDefault("ga.tournament_size", defaults.GA.TournamentSize)
	v.SetDefault("ga.crossover_rate", defaults.GA.CrossoverRate)
	v.SetDefault("ga.mutation_rate", defaults.GA.MutationRate)

	v.SetDefault("weights.group_balance", defaults.Weights.GroupBalance)
	v.SetDefault("weights.faculty_balance", defaults.Weights.FacultyBalance)
	v.SetDefault("weights.gaps", defaults.Weights.Gaps)
	v.SetDefault("weights.day_spread", defaults.Weights.DaySpread)
	v.SetDefault("weights.day_fraction", defaults.Weights.DayFraction)
}
