package cache

import "testing"

func TestComputeIsDeterministic(t *testing.T) {
	subs := []SubsystemVersion{{SystemID: "A", Version: 1}, {SystemID: "B", Version: 2}}

	a := Compute("actor-1", 3, subs)
	b := Compute("actor-1", 3, subs)
	if a != b {
		t.Fatalf("expected identical fingerprints for identical input, got %x vs %x", a, b)
	}
}

func TestComputeChangesOnActorVersionBump(t *testing.T) {
	subs := []SubsystemVersion{{SystemID: "A", Version: 1}}

	a := Compute("actor-1", 1, subs)
	b := Compute("actor-1", 2, subs)
	if a == b {
		t.Fatal("expected fingerprint to change when actor version changes")
	}
}

func TestComputeChangesOnSubsystemVersionBump(t *testing.T) {
	a := Compute("actor-1", 1, []SubsystemVersion{{SystemID: "A", Version: 1}})
	b := Compute("actor-1", 1, []SubsystemVersion{{SystemID: "A", Version: 2}})
	if a == b {
		t.Fatal("expected fingerprint to change when a subsystem version changes")
	}
}

func TestComputeDistinguishesSubsystemOrder(t *testing.T) {
	forward := []SubsystemVersion{{SystemID: "A", Version: 1}, {SystemID: "B", Version: 1}}
	reverse := []SubsystemVersion{{SystemID: "B", Version: 1}, {SystemID: "A", Version: 1}}

	a := Compute("actor-1", 1, forward)
	b := Compute("actor-1", 1, reverse)
	if a == b {
		t.Fatal("expected fingerprint to depend on subsystem order, not just membership")
	}
}
