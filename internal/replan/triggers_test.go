package replan

import (
	"testing"

	"github.com/GoCodeAlone/ecotick/internal/entity"
	"github.com/GoCodeAlone/ecotick/internal/movement"
	"github.com/GoCodeAlone/ecotick/internal/needs"
)

func TestRunStatThresholdEnqueuesNormal(t *testing.T) {
	q := New()
	id := entity.NewID()
	crossings := map[entity.ID][]needs.ThresholdCrossed{
		id: {{Kind: needs.Hunger, Urgency: 0.9}},
	}
	RunStatThreshold(q, 5, crossings)

	out := q.Drain(10)
	if len(out) != 1 || out[0].Lane != LaneNormal {
		t.Fatalf("expected a single Normal request, got %+v", out)
	}
}

func TestRunFearSkipsAlreadyFleeing(t *testing.T) {
	q := New()
	fleeing := entity.NewID()
	notFleeing := entity.NewID()
	isFleeing := func(id entity.ID) bool { return id == fleeing }

	RunFear(q, 1, []entity.ID{fleeing, notFleeing}, isFleeing)

	out := q.Drain(10)
	if len(out) != 1 || out[0].Entity != notFleeing || out[0].Lane != LaneHigh {
		t.Fatalf("expected only the non-fleeing entity enqueued at High, got %+v", out)
	}
}

func TestRunActionCompletionFoldsMovementEvents(t *testing.T) {
	q := New()
	completed := entity.NewID()
	arrived := entity.NewID()
	RunActionCompletion(q, 1, []entity.ID{completed}, []movement.Event{{Entity: arrived, Kind: movement.EventArrivedAt}})

	out := q.Drain(10)
	if len(out) != 2 {
		t.Fatalf("expected both the completed action and the arrival to enqueue, got %+v", out)
	}
}

func TestRunLongIdleEnqueuesPastThreshold(t *testing.T) {
	q := New()
	idle := NewIdleTracker()
	id := entity.NewID()
	idle.MarkActive(id, 0)

	alive := map[entity.ID]uint32{id: 2} // threshold = 20 ticks

	RunLongIdle(q, 10, idle, alive) // 10 < 20, not yet idle
	if q.Queued(id) {
		t.Fatal("expected no enqueue before the idle threshold")
	}

	RunLongIdle(q, 25, idle, alive) // 25 >= 20
	if !q.Queued(id) {
		t.Fatal("expected enqueue once the idle threshold is crossed")
	}
}

func TestRunLongIdleTracksFirstSeenWithoutEnqueue(t *testing.T) {
	q := New()
	idle := NewIdleTracker()
	id := entity.NewID()
	alive := map[entity.ID]uint32{id: 2}

	RunLongIdle(q, 100, idle, alive)
	if q.Queued(id) {
		t.Fatal("expected the first observation of an entity to seed tracking, not enqueue")
	}
}
