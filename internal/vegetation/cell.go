package vegetation

import "github.com/GoCodeAlone/ecotick/internal/species"

// Cell is the spec §3 "GrazingCell": a tile with sparsely tracked biomass,
// logistic regrowth, and a refractory window that creates "giving-up"
// pressure so herbivores rotate patches instead of camping one cell.
type Cell struct {
	ResourceType            species.ResourceType
	Biomass                 float64
	MaxBiomass              float64
	GrowthRateModifier       float64
	LastUpdateTick           uint64
	RegrowthAvailableTick    uint64
}

// clampBiomass keeps biomass within [0, max], the spec §3 invariant.
func (c *Cell) clampBiomass() {
	if c.Biomass < 0 {
		c.Biomass = 0
	}
	if c.Biomass > c.MaxBiomass {
		c.Biomass = c.MaxBiomass
	}
}

// Depleted reports whether the cell is eligible for removal (biomass==0).
func (c *Cell) Depleted() bool { return c.Biomass <= 0 }

// Available reports whether the cell is out of its post-consumption
// refractory window as of currentTick.
func (c *Cell) Available(currentTick uint64) bool {
	return c.RegrowthAvailableTick <= currentTick
}
