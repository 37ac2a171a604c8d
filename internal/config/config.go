// Package config implements the Config loader external interface (spec
// §6 #4): base_tick_ms, per-species SpeciesConfig records, spawn groups,
// resource densities/harvest profiles, LOD thresholds, profiler report
// interval, and action budgets, loaded from YAML with embedded defaults
// merged underneath any user-supplied override file (grounded on the
// pack's config.Load idiom).
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// SpeciesSpec is the YAML-facing shape of species.Config (spec §3
// SpeciesConfig). The config loader's job is just to parse this schema;
// simcore's specFromConfig converts it into species.Config for the
// simulation core.
type SpeciesSpec struct {
	Name                 string             `yaml:"name"`
	Label                string             `yaml:"label"`
	MovementTicksPerTile uint32             `yaml:"movement_ticks_per_tile"`
	WanderRadius         float64            `yaml:"wander_radius"`
	DrinkAt              float64            `yaml:"drink_at"`
	EatAt                float64            `yaml:"eat_at"`
	RestAt               float64            `yaml:"rest_at"`
	GrazeMinRange        float64            `yaml:"graze_min_range"`
	GrazeMaxRange        float64            `yaml:"graze_max_range"`
	FoodSearchRadius     float64            `yaml:"food_search_radius"`
	WaterSearchRadius    float64            `yaml:"water_search_radius"`
	DietPreferences      []DietPreference   `yaml:"diet_preferences"`
	Stats                StatsSpec          `yaml:"stats"`
	Reproduction         ReproductionSpec   `yaml:"reproduction"`
	Fear                 FearSpec           `yaml:"fear"`
	IsPredator           bool               `yaml:"is_predator"`
	PreyPreference       []string           `yaml:"prey_preference"`
}

// DietPreference mirrors species.DietPreference for YAML parsing.
type DietPreference struct {
	ResourceType   string  `yaml:"resource_type"`
	Weight         float64 `yaml:"weight"`
	MinimumBiomass float64 `yaml:"minimum_biomass"`
}

// StatSpec mirrors species.StatTemplate.
type StatSpec struct {
	Max          float64 `yaml:"max"`
	DrainPerTick float64 `yaml:"drain_per_tick"`
	MealAmount   float64 `yaml:"meal_amount"`
}

// StatsSpec mirrors species.StatsTemplate.
type StatsSpec struct {
	Hunger StatSpec `yaml:"hunger"`
	Thirst StatSpec `yaml:"thirst"`
	Energy StatSpec `yaml:"energy"`
	Health StatSpec `yaml:"health"`
}

// ReproductionSpec mirrors species.ReproductionParams.
type ReproductionSpec struct {
	AdultAtTicks       uint64  `yaml:"adult_at_ticks"`
	GestationTicks     uint64  `yaml:"gestation_ticks"`
	MaleCooldown       uint64  `yaml:"male_cooldown"`
	FemalePostpartum   uint64  `yaml:"female_postpartum"`
	LitterMin          int     `yaml:"litter_min"`
	LitterMax          int     `yaml:"litter_max"`
	MateSearchRadius   float64 `yaml:"mate_search_radius"`
	MatcherInterval    uint64  `yaml:"matcher_interval"`
	MateDurationTicks  uint64  `yaml:"mate_duration_ticks"`
	WellFedStreakTicks uint64  `yaml:"well_fed_streak_ticks"`
	EligibleEnergyMin  float64 `yaml:"eligible_energy_min"`
	EligibleHealthMin  float64 `yaml:"eligible_health_min"`
	SlackThreshold     float64 `yaml:"slack_threshold"`
}

// FearSpec mirrors species.FearParams.
type FearSpec struct {
	Threshold float64 `yaml:"threshold"`
	DecayRate float64 `yaml:"decay_rate"`
	Radius    float64 `yaml:"radius"`
}

// SpawnGroup describes an initial population to seed at startup.
type SpawnGroup struct {
	Species  string `yaml:"species"`
	Count    int    `yaml:"count"`
	AreaMinX int32  `yaml:"area_min_x"`
	AreaMinY int32  `yaml:"area_min_y"`
	AreaMaxX int32  `yaml:"area_max_x"`
	AreaMaxY int32  `yaml:"area_max_y"`
}

// ResourceProfile configures one vegetation resource type's density and
// harvest behavior.
type ResourceProfile struct {
	ResourceType       string  `yaml:"resource_type"`
	Density            float64 `yaml:"density"`
	MaxBiomass         float64 `yaml:"max_biomass"`
	GrowthRateModifier float64 `yaml:"growth_rate_modifier"`
}

// LODThresholds mirrors lod.Thresholds for YAML parsing.
type LODThresholds struct {
	HotMax  float64 `yaml:"hot_max"`
	WarmMax float64 `yaml:"warm_max"`
	ColdMax float64 `yaml:"cold_max"`
}

// ActionBudgets configures per-tick budgets across C8/C9/C10.
type ActionBudgets struct {
	ReplanDrainPerTick  int `yaml:"replan_drain_per_tick"`
	PlannerDrainPerTick int `yaml:"planner_drain_per_tick"`
	ActionPromotePerTick int `yaml:"action_promote_per_tick"`
}

// Config is the full schema spec §6 #4 enumerates.
type Config struct {
	BaseTickMS            uint64            `yaml:"base_tick_ms"`
	Species               []SpeciesSpec     `yaml:"species"`
	SpawnGroups           []SpawnGroup      `yaml:"spawn_groups"`
	ResourceProfiles      []ResourceProfile `yaml:"resource_profiles"`
	LODThresholds         LODThresholds     `yaml:"lod_thresholds"`
	ProfilerReportInterval uint64           `yaml:"profiler_report_interval"`
	ActionBudgets         ActionBudgets     `yaml:"action_budgets"`
}

// Load parses configuration from a YAML file, merging it over the
// embedded defaults. If path is empty, only the embedded defaults are
// used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	return cfg, nil
}
