// Package planner implements the Utility Planner (spec §4.9, component
// C9): for each drained entity it scores a species-specific action menu
// and selects Flee when it is available, otherwise the single
// highest-utility action, breaking ties by the less disruptive (lower)
// priority class.
package planner

import (
	"github.com/GoCodeAlone/ecotick/internal/actionqueue"
	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/species"
	"github.com/GoCodeAlone/ecotick/internal/vegetation"
)

// EmergencyUrgency is the urgency level above which Drink/Eat/Rest escalate
// to their emergency priority class (spec §4.9).
const EmergencyUrgency = 0.85

// Priority classes, spec §4.9.
const (
	PriorityWander      int32 = 100
	PriorityPatrol      int32 = 150
	PriorityFollow      int32 = 280
	PriorityRestBase    int32 = 300
	PriorityRestEmerg   int32 = 460
	PriorityHarvestBase int32 = 320
	PriorityHarvestEmerg int32 = 480
	PriorityDrinkBase   int32 = 350
	PriorityDrinkEmerg  int32 = 500
	PriorityMate        int32 = 350
	PriorityHunt        int32 = 400
	PriorityFlee        int32 = 500
)

// MateSlackMargin is the utility cushion that keeps a mild hunger/thirst
// uptick from outbidding an already-committed Mate action (spec §4.9).
const MateSlackMargin = 0.05

// WaterTarget is the result of the outer shell's water-tile search.
type WaterTarget struct {
	Position geom.Position
	Found    bool
}

// FollowCandidate is one entity the Follow action could track.
type FollowCandidate struct {
	Entity   entity.ID
	Position geom.Position
	Distance float64
}

// MaxFollowDistance caps the distance term used in the Follow utility
// curve (spec §4.9: "saturating beyond max_follow_distance").
const MaxFollowDistance = 20.0

// HuntTarget is the nearest detected prey, if any.
type HuntTarget struct {
	Entity entity.ID
	Found  bool
}

// MateOption describes an available partner for this tick, already
// resolved by the C12 matcher.
type MateOption struct {
	Eligible   bool
	Partner    entity.ID
	Rendezvous geom.Position
	HasPartner bool
	IsFemale   bool
}

// Inputs bundles every piece of pre-computed, per-entity signal the
// planner needs: search results the outer shell/simcore gathered via
// ResourceGrid/spatial/terrain before invoking the planner, so this
// package stays free of those dependencies and easy to unit test.
type Inputs struct {
	Position geom.Position
	Species  *species.Config

	HungerUrgency float64
	ThirstUrgency float64
	EnergyUrgency float64
	FearLevel     float64

	BestGrazeCell   *vegetation.ForageCandidate
	BestHarvestCell *vegetation.ForageCandidate
	Water           WaterTarget
	SafeRestTile    geom.Position
	Mate            MateOption
	FleeDestination geom.Position
	HasFleeDest     bool
	FollowCandidates []FollowCandidate
	WanderDestination geom.Position
	HasWanderDest     bool
	Hunt            HuntTarget
	PatrolWaypoints []geom.Position

	DefaultHoldTicks    uint64
	DefaultMaxDuration  uint64
}

type candidate struct {
	utility  float64
	priority int32
	action   actionqueue.QueuedAction
}

// Evaluate scores every action in the species' menu and returns the
// winning QueuedAction with its Entity, EnqueuedTick and Priority set, or
// false if no action is available. A Flee candidate, when present, wins
// outright; otherwise the highest utility wins.
func Evaluate(id entity.ID, tick uint64, in Inputs) (actionqueue.QueuedAction, bool) {
	var candidates []candidate

	if c, ok := evalFlee(in); ok {
		candidates = append(candidates, c)
	}
	if c, ok := evalDrink(in); ok {
		candidates = append(candidates, c)
	}
	if c, ok := evalEat(in); ok {
		candidates = append(candidates, c)
	}
	if c, ok := evalHarvest(in); ok {
		candidates = append(candidates, c)
	}
	if c, ok := evalRest(in); ok {
		candidates = append(candidates, c)
	}
	if c, ok := evalMate(in); ok {
		candidates = append(candidates, c)
	}
	if in.Species.IsPredator {
		if c, ok := evalHunt(in); ok {
			candidates = append(candidates, c)
		}
		if c, ok := evalPatrol(in); ok {
			candidates = append(candidates, c)
		}
	}
	if c, ok := evalFollow(in); ok {
		candidates = append(candidates, c)
	}
	if c, ok := evalWander(in); ok {
		candidates = append(candidates, c)
	}

	if len(candidates) == 0 {
		return actionqueue.QueuedAction{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if best.action.Kind == actionqueue.Flee {
			break // Flee is evaluated first and outranks every other action
		}
		if c.utility > best.utility {
			best = c
			continue
		}
		if c.utility == best.utility && c.priority < best.priority {
			best = c
		}
	}

	best.action.Entity = id
	best.action.EnqueuedTick = tick
	best.action.Priority = best.priority
	if best.action.MaxDurationTicks == 0 {
		best.action.MaxDurationTicks = in.DefaultMaxDuration
	}
	return best.action, true
}

func evalDrink(in Inputs) (candidate, bool) {
	if in.ThirstUrgency < in.Species.DrinkAt || !in.Water.Found {
		return candidate{}, false
	}
	priority := PriorityDrinkBase
	if in.ThirstUrgency > EmergencyUrgency {
		priority = PriorityDrinkEmerg
	}
	return candidate{
		utility:  in.ThirstUrgency,
		priority: priority,
		action: actionqueue.QueuedAction{
			Kind:         actionqueue.Drink,
			TargetPos:    in.Water.Position,
			HoldDuration: in.DefaultHoldTicks,
		},
	}, true
}

func evalEat(in Inputs) (candidate, bool) {
	if in.HungerUrgency < in.Species.EatAt || in.BestGrazeCell == nil {
		return candidate{}, false
	}
	priority := PriorityHarvestBase
	if in.HungerUrgency > EmergencyUrgency {
		priority = PriorityHarvestEmerg
	}
	return candidate{
		utility:  in.HungerUrgency * in.BestGrazeCell.Score,
		priority: priority,
		action: actionqueue.QueuedAction{
			Kind:         actionqueue.Graze,
			TargetPos:    in.BestGrazeCell.Position,
			HoldDuration: in.DefaultHoldTicks,
		},
	}, true
}

func evalHarvest(in Inputs) (candidate, bool) {
	if in.HungerUrgency < in.Species.EatAt || in.BestHarvestCell == nil {
		return candidate{}, false
	}
	priority := PriorityHarvestBase
	if in.HungerUrgency > EmergencyUrgency {
		priority = PriorityHarvestEmerg
	}
	return candidate{
		utility:  in.HungerUrgency * in.BestHarvestCell.Score,
		priority: priority,
		action: actionqueue.QueuedAction{
			Kind:         actionqueue.Harvest,
			TargetPos:    in.BestHarvestCell.Position,
			HoldDuration: in.DefaultHoldTicks,
		},
	}, true
}

func evalRest(in Inputs) (candidate, bool) {
	if in.EnergyUrgency < in.Species.RestAt {
		return candidate{}, false
	}
	priority := PriorityRestBase
	if in.EnergyUrgency > EmergencyUrgency {
		priority = PriorityRestEmerg
	}
	return candidate{
		utility:  in.EnergyUrgency,
		priority: priority,
		action: actionqueue.QueuedAction{
			Kind:         actionqueue.Rest,
			TargetPos:    in.SafeRestTile,
			HoldDuration: in.DefaultHoldTicks,
		},
	}, true
}

func evalMate(in Inputs) (candidate, bool) {
	if !in.Mate.Eligible || !in.Mate.HasPartner {
		return candidate{}, false
	}
	return candidate{
		utility:  0.6 + MateSlackMargin,
		priority: PriorityMate,
		action: actionqueue.QueuedAction{
			Kind:            actionqueue.Mate,
			TargetPos:       in.Mate.Rendezvous,
			TargetEntity:    in.Mate.Partner,
			HasTargetEntity: true,
			HoldDuration:    in.Species.Reproduction.MateDurationTicks,
			IsFemale:        in.Mate.IsFemale,
		},
	}, true
}

func evalFlee(in Inputs) (candidate, bool) {
	if in.FearLevel < in.Species.Fear.Threshold || !in.HasFleeDest {
		return candidate{}, false
	}
	return candidate{
		utility:  in.FearLevel,
		priority: PriorityFlee,
		action: actionqueue.QueuedAction{
			Kind:          actionqueue.Flee,
			TargetPos:     in.FleeDestination,
			FearThreshold: in.Species.Fear.Threshold,
		},
	}, true
}

func evalFollow(in Inputs) (candidate, bool) {
	if len(in.FollowCandidates) == 0 {
		return candidate{}, false
	}
	best := in.FollowCandidates[0]
	for _, c := range in.FollowCandidates[1:] {
		if c.Distance > best.Distance {
			best = c
		}
	}
	stopDistance := in.Species.WanderRadius * 0.1
	if best.Distance <= stopDistance {
		return candidate{}, false
	}
	span := best.Distance - stopDistance
	if span > MaxFollowDistance {
		span = MaxFollowDistance
	}
	utility := span / MaxFollowDistance
	return candidate{
		utility:  utility,
		priority: PriorityFollow,
		action: actionqueue.QueuedAction{
			Kind:            actionqueue.Follow,
			TargetEntity:    best.Entity,
			HasTargetEntity: true,
			StopDistance:    stopDistance,
		},
	}, true
}

func evalWander(in Inputs) (candidate, bool) {
	if !in.HasWanderDest {
		return candidate{}, false
	}
	return candidate{
		utility:  0.05,
		priority: PriorityWander,
		action: actionqueue.QueuedAction{
			Kind:      actionqueue.Wander,
			TargetPos: in.WanderDestination,
		},
	}, true
}

func evalHunt(in Inputs) (candidate, bool) {
	if !in.Hunt.Found {
		return candidate{}, false
	}
	return candidate{
		utility:  in.HungerUrgency,
		priority: PriorityHunt,
		action: actionqueue.QueuedAction{
			Kind:            actionqueue.Hunt,
			TargetEntity:    in.Hunt.Entity,
			HasTargetEntity: true,
		},
	}, true
}

func evalPatrol(in Inputs) (candidate, bool) {
	if in.Hunt.Found || in.HungerUrgency >= in.Species.EatAt || len(in.PatrolWaypoints) == 0 {
		return candidate{}, false
	}
	return candidate{
		utility:  0.03,
		priority: PriorityPatrol,
		action: actionqueue.QueuedAction{
			Kind:      actionqueue.Patrol,
			Waypoints: in.PatrolWaypoints,
		},
	}, true
}
