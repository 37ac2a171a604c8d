// Package species holds the immutable per-species configuration record
// (spec §3 "SpeciesConfig") consumed by needs, planner, reproduction, and
// fear. Species identity is data here, not code — the teacher's per-species
// behavior is instead expressed as config maps keyed by plant/species type
// (see plant.go's PlantConfig / GetPlantConfigs); this package generalizes
// that shape to the full behavioral config the spec requires.
package species

import "github.com/GoCodeAlone/ecotick/internal/geom"

// ResourceType distinguishes vegetation kinds a diet can target. Values
// beyond Grass/Shrub/Collectable are content, not mechanism, and are left to
// the config loader.
type ResourceType int

const (
	ResourceGrass ResourceType = iota
	ResourceShrub
	ResourceCollectable
)

// DietPreference weights how much a species values a resource type and the
// minimum biomass it will bother foraging.
type DietPreference struct {
	ResourceType   ResourceType
	Weight         float64
	MinimumBiomass float64
}

// StatTemplate is the per-need configuration a species' NeedStat pool is
// built from: max value, per-tick drain, and replenishment amounts.
type StatTemplate struct {
	Max          float64
	DrainPerTick float64
	MealAmount   float64 // only meaningful for Hunger (Eat) and Thirst (Drink)
}

// StatsTemplate bundles the four need pools spec §3 names.
type StatsTemplate struct {
	Hunger StatTemplate
	Thirst StatTemplate
	Energy StatTemplate
	Health StatTemplate
}

// ReproductionParams configures C12 eligibility, matching, and gestation.
type ReproductionParams struct {
	AdultAtTicks      uint64
	GestationTicks    uint64
	MaleCooldown      uint64
	FemalePostpartum  uint64
	LitterMin         int
	LitterMax         int
	MateSearchRadius  float64
	MatcherInterval   uint64
	MateDurationTicks uint64
	// WellFedStreakTicks is how long hunger/thirst must have stayed below
	// the slack threshold for eligibility (spec §4.12).
	WellFedStreakTicks uint64
	// EligibleEnergyMin / EligibleHealthMin are urgency-direction gates:
	// the normalized value must be at or above these minimums.
	EligibleEnergyMin float64
	EligibleHealthMin float64
	SlackThreshold    float64
}

// FearParams configures C11 per species.
type FearParams struct {
	Threshold  float64
	DecayRate  float64
	Radius     float64
}

// Config is the immutable per-species record, spec §3.
type Config struct {
	Name  string
	Label string // opaque emoji/tag, presentation-only

	MovementTicksPerTile uint32
	WanderRadius         float64

	// Thresholds are fractions of the urgency direction (see spec §3:
	// "all thresholds in this spec refer to the urgency direction").
	DrinkAt float64
	EatAt   float64
	RestAt  float64

	GrazeMinRange    float64
	GrazeMaxRange    float64
	FoodSearchRadius float64
	WaterSearchRadius float64

	DietPreferences []DietPreference

	Stats StatsTemplate

	Reproduction ReproductionParams
	Fear         FearParams

	IsPredator    bool
	PreyPreference []string

	// HomePosition anchors Wander's radius. It is per species, and
	// simcore's config conversion leaves it at the origin.
	HomePosition geom.Position
}

// DietFilter returns the set of resource types this species' diet
// preferences include, for ResourceGrid.FindForageCells filtering.
func (c *Config) DietFilter() map[ResourceType]DietPreference {
	out := make(map[ResourceType]DietPreference, len(c.DietPreferences))
	for _, d := range c.DietPreferences {
		out[d.ResourceType] = d
	}
	return out
}

// MinimumBiomassFor returns the configured minimum-biomass-to-bother value
// for a resource type, or 0 if the species has no preference entry for it
// (meaning it will take anything).
func (c *Config) MinimumBiomassFor(rt ResourceType) float64 {
	for _, d := range c.DietPreferences {
		if d.ResourceType == rt {
			return d.MinimumBiomass
		}
	}
	return 0
}
