package actionqueue

import (
	"github.com/GoCodeAlone/ecotick/internal/geom"
	"github.com/GoCodeAlone/ecotick/internal/needs"
)

// pathMaxNodes bounds a single A* solve requested by moveToward (finite
// termination requirement made concrete; passed explicitly, so AStar's
// 4096-node default for a non-positive budget does not apply).
const pathMaxNodes = 4000

// step advances one ActiveAction by one tick, dispatching on kind. Each
// case implements the state-machine semantics of spec §4.10.
func (e *Executor) step(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	switch a.Kind {
	case Graze, Harvest:
		return e.stepConsume(currentTick, a, deps, ClaimGraze, needs.Hunger)
	case Drink:
		return e.stepConsume(currentTick, a, deps, ClaimDrink, needs.Thirst)
	case Rest:
		return e.stepRest(a, deps)
	case Wander:
		return e.stepMoveOnly(currentTick, a, deps)
	case Follow:
		return e.stepFollow(currentTick, a, deps)
	case Mate:
		return e.stepMate(currentTick, a, deps)
	case Flee:
		return e.stepFlee(currentTick, a, deps)
	case Hunt:
		return e.stepHunt(currentTick, a, deps)
	case Patrol:
		return e.stepPatrol(currentTick, a, deps)
	default:
		return DoneFailure
	}
}

// moveToward drives the entity toward target via the pathfinding facade
// and movement executor, one request per leg. Returns arrived=true once
// the registry position equals target; failed=true after the single
// retry permitted by spec §5 ("path failure... demotes to Done(failure)
// after one retry").
func (e *Executor) moveToward(a *ActiveAction, deps Deps, target geom.Position) (arrived, failed bool) {
	rec, ok := deps.Registry.Get(a.Entity)
	if !ok || !rec.Alive {
		return false, true
	}
	if rec.Position.Equal(target) {
		deps.Movement.ClearPath(a.Entity)
		return true, false
	}
	if deps.Movement.HasPath(a.Entity) {
		return false, false // still walking a previously planned path
	}
	if !a.pathRequested {
		deps.Facade.RequestPath(a.Entity, rec.Position, target, false, pathMaxNodes)
		a.pathRequested = true
		return false, false
	}
	res, ok := deps.Facade.TakeResult(a.Entity)
	if !ok {
		return false, false // sweep hasn't resolved this request yet
	}
	if res.Unreachable {
		if !a.pathRetried {
			a.pathRetried = true
			a.pathRequested = false
			deps.Facade.RequestPath(a.Entity, rec.Position, target, false, pathMaxNodes)
			return false, false
		}
		return false, true
	}
	deps.Movement.SetPath(a.Entity, res.Waypoints)
	a.pathRequested = false
	return false, false
}

func (e *Executor) stepMoveOnly(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	arrived, failed := e.moveToward(a, deps, a.TargetPos)
	if failed {
		return DoneFailure
	}
	if arrived {
		return DoneSuccess
	}
	return Continue
}

// stepConsume implements Graze/Drink/Harvest: move to the target tile,
// claim it exclusively, then draw down hunger or thirst via the
// ResourceGrid (Graze/Harvest) or directly (Drink, which has no biomass
// model).
func (e *Executor) stepConsume(currentTick uint64, a *ActiveAction, deps Deps, kind ClaimKind, statKind needs.Kind) Outcome {
	arrived, failed := e.moveToward(a, deps, a.TargetPos)
	if failed {
		return DoneFailure
	}
	if !arrived {
		return Continue
	}
	if !a.claimed {
		if !deps.Claims.TryClaim(a.TargetPos, kind, a.Entity, currentTick, currentTick+a.MaxDurationTicks+1) {
			return DoneFailure
		}
		a.claimed = true
	}

	pool, ok := deps.Needs[a.Entity]
	if !ok {
		return DoneFailure
	}
	rec, ok := deps.Registry.Get(a.Entity)
	if !ok {
		return DoneFailure
	}

	var mealAmount float64
	switch statKind {
	case needs.Hunger:
		mealAmount = rec.Species.Stats.Hunger.MealAmount
	case needs.Thirst:
		mealAmount = rec.Species.Stats.Thirst.MealAmount
	}

	if kind == ClaimDrink {
		// no biomass model for water: replenish directly
		pool.Replenish(statKind, mealAmount)
		a.elapsedHold++
		if a.elapsedHold >= a.HoldDuration {
			return DoneSuccess
		}
		return Continue
	}

	consumed, _ := deps.Grid.Consume(currentTick, a.TargetPos, mealAmount, 0.30)
	if consumed <= 0 {
		if !a.consumeRetried {
			a.consumeRetried = true
			return Continue
		}
		return DoneFailure
	}
	pool.Replenish(statKind, consumed)
	a.elapsedHold++
	if a.elapsedHold >= a.HoldDuration || deps.Grid.BiomassAt(a.TargetPos) <= 0 {
		return DoneSuccess
	}
	return Continue
}

func (e *Executor) stepRest(a *ActiveAction, deps Deps) Outcome {
	pool, ok := deps.Needs[a.Entity]
	if !ok {
		return DoneFailure
	}
	rec, ok := deps.Registry.Get(a.Entity)
	if !ok {
		return DoneFailure
	}
	pool.Replenish(needs.Energy, rec.Species.Stats.Energy.MealAmount)
	a.elapsedHold++
	if a.elapsedHold >= a.HoldDuration {
		return DoneSuccess
	}
	return Continue
}

func (e *Executor) stepFollow(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	if !a.HasTargetEntity || !deps.Registry.IsAlive(a.TargetEntity) {
		return DoneFailure
	}
	leader, ok := deps.Registry.Get(a.TargetEntity)
	if !ok {
		return DoneFailure
	}
	self, ok := deps.Registry.Get(a.Entity)
	if !ok {
		return DoneFailure
	}
	if self.Position.DistanceTo(leader.Position) <= a.StopDistance {
		deps.Movement.ClearPath(a.Entity)
		return DoneSuccess
	}
	_, failed := e.moveToward(a, deps, leader.Position)
	if failed {
		return DoneFailure
	}
	return Continue
}

func (e *Executor) stepMate(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	arrived, failed := e.moveToward(a, deps, a.TargetPos)
	if failed {
		e.abortMateIfFemale(a, deps)
		return DoneFailure
	}
	if !arrived {
		return Continue
	}
	if !a.claimed {
		if !deps.Claims.TryClaim(a.TargetPos, ClaimMate, a.Entity, currentTick, currentTick+a.HoldDuration+1) {
			return Continue // rendezvous tile busy; wait rather than fail outright
		}
		a.claimed = true
	}
	a.elapsedHold++
	if a.elapsedHold >= a.HoldDuration {
		if a.IsFemale && a.HasTargetEntity {
			rec, ok := deps.Registry.Get(a.Entity)
			if ok {
				deps.Reproduction.CompleteMating(a.Entity, a.TargetEntity, rec.Species, rec.Position, currentTick)
			}
		}
		return DoneSuccess
	}
	return Continue
}

func (e *Executor) abortMateIfFemale(a *ActiveAction, deps Deps) {
	if a.IsFemale && a.HasTargetEntity {
		deps.Reproduction.AbortMating(a.Entity, a.TargetEntity)
	}
}

func (e *Executor) stepFlee(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	if deps.Fear.LevelOf(a.Entity) < a.FearThreshold {
		return DoneSuccess
	}
	arrived, failed := e.moveToward(a, deps, a.TargetPos)
	if failed {
		return DoneFailure
	}
	if arrived {
		return DoneSuccess
	}
	return Continue
}

func (e *Executor) stepHunt(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	if !a.HasTargetEntity || !deps.Registry.IsAlive(a.TargetEntity) {
		return DoneFailure
	}
	prey, ok := deps.Registry.Get(a.TargetEntity)
	if !ok {
		return DoneFailure
	}
	self, ok := deps.Registry.Get(a.Entity)
	if !ok {
		return DoneFailure
	}
	if self.Position.ManhattanTo(prey.Position) <= 1 {
		if preyPool, ok := deps.Needs[a.TargetEntity]; ok {
			preyPool.Health.Value = 0
		}
		if hunterPool, ok := deps.Needs[a.Entity]; ok {
			hunterPool.Replenish(needs.Hunger, hunterPool.Hunger.Max)
		}
		return DoneSuccess
	}
	_, failed := e.moveToward(a, deps, prey.Position)
	if failed {
		return DoneFailure
	}
	return Continue
}

func (e *Executor) stepPatrol(currentTick uint64, a *ActiveAction, deps Deps) Outcome {
	if len(a.Waypoints) == 0 {
		return DoneFailure
	}
	target := a.Waypoints[a.WaypointIndex]
	arrived, failed := e.moveToward(a, deps, target)
	if failed {
		return DoneFailure
	}
	if arrived {
		a.WaypointIndex = (a.WaypointIndex + 1) % len(a.Waypoints)
		a.pathRequested = false
		a.pathRetried = false
	}
	return Continue // patrol ends only via MaxDurationTicks expiry or cancellation
}
