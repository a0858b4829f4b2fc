package projection

import (
	"testing"

	"github.com/justapithecus/vifei/types"
)

func TestProjectSetsInvariantsVersion(t *testing.T) {
	vm := Project(types.NewState())
	if vm.ProjectionInvariantsVersion != types.ProjectionInvariantsVersion {
		t.Fatalf("invariants version = %q, want %q", vm.ProjectionInvariantsVersion, types.ProjectionInvariantsVersion)
	}
}

func TestQueuePressureDerivedFromMicros(t *testing.T) {
	state := types.NewState()
	state.QueuePressureMicros = 500000
	vm := Project(state)
	if vm.QueuePressure != 0.5 {
		t.Fatalf("queue pressure = %v, want 0.5", vm.QueuePressure)
	}
}

func TestDigestIsDeterministic(t *testing.T) {
	state := types.NewState()
	state.EventCount = 10
	state.DegradationLevel = types.L2
	state.QueuePressureMicros = 123456

	vm1 := Project(state)
	vm2 := Project(state)

	d1, err := Digest(vm1)
	if err != nil {
		t.Fatalf("Digest #1: %v", err)
	}
	d2, err := Digest(vm2)
	if err != nil {
		t.Fatalf("Digest #2: %v", err)
	}
	if d1 != d2 {
		t.Fatalf("two projections of identical state produced different digests: %s vs %s", d1, d2)
	}
	if len(d1) != 64 {
		t.Fatalf("digest length = %d, want 64", len(d1))
	}
}

func TestDigestChangesWithState(t *testing.T) {
	base := types.NewState()
	base.EventCount = 1

	other := types.NewState()
	other.EventCount = 2

	d1, err := Digest(Project(base))
	if err != nil {
		t.Fatalf("Digest base: %v", err)
	}
	d2, err := Digest(Project(other))
	if err != nil {
		t.Fatalf("Digest other: %v", err)
	}
	if d1 == d2 {
		t.Fatalf("digests for distinct states collided")
	}
}
