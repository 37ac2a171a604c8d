package shell

import "github.com/GoCodeAlone/ecotick/internal/entity"

// NewLivenessOracle adapts a Registry into the liveness-oracle closure
// every bounded-period cleanup sweep takes (spec §4.10 step 5, §4.13):
// "no longer alive per a liveness oracle" resolves to reg.IsAlive.
func NewLivenessOracle(reg *entity.Registry) func(entity.ID) bool {
	return reg.IsAlive
}
