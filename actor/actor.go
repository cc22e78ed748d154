// Package actor holds the data model aggregation is performed over: actors,
// the subsystems attached to them, and the values subsystems contribute.
package actor

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subsystem is a pluggable contributor of stat adjustments and cap bounds for
// an actor. Implementations are shared: the same subsystem instance may be
// attached to many actors, so contribute must treat the actor as read-only.
type Subsystem interface {
	SystemID() string
	Priority() int64
	Version() uint64
	Contribute(ctx context.Context, a *Actor) (SubsystemOutput, error)
}

// SubsystemOutput is the pair of lists a subsystem hands back from Contribute.
type SubsystemOutput struct {
	Contributions []Contribution
	Caps          []CapContribution
}

// Actor is an identified in-game entity whose stats are computed by the
// aggregation engine. The engine borrows actors during aggregation; it never
// owns or persists them.
type Actor struct {
	mu sync.RWMutex

	id       string
	name     string
	race     string
	lifespan int
	age      int

	createdAt time.Time
	updatedAt time.Time
	version   uint64

	subsystems []Subsystem
}

// New constructs an Actor with the given opaque id. id should be stable and
// unique for the lifetime of the actor; callers typically mint it with
// uuid.NewString().
func New(id, name, race string, lifespan int) *Actor {
	now := time.Now().UTC()
	return &Actor{
		id:        id,
		name:      name,
		race:      race,
		lifespan:  lifespan,
		createdAt: now,
		updatedAt: now,
		version:   1,
	}
}

// NewWithGeneratedID constructs an Actor with a fresh opaque v4 id, for
// callers that have no natural stable identity to supply (tests, scratch
// actors, migration tooling).
func NewWithGeneratedID(name, race string, lifespan int) *Actor {
	return New(uuid.NewString(), name, race, lifespan)
}

func (a *Actor) ID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.id
}

func (a *Actor) Name() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.name
}

func (a *Actor) Race() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.race
}

func (a *Actor) Lifespan() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.lifespan
}

func (a *Actor) Age() int {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.age
}

func (a *Actor) CreatedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.createdAt
}

func (a *Actor) UpdatedAt() time.Time {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.updatedAt
}

// Version returns the monotonic counter that increments on any mutation
// observable by aggregation. It is part of the cache fingerprint.
func (a *Actor) Version() uint64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.version
}

// Subsystems returns the attached subsystem handles in attachment order. The
// Aggregator re-orders them by registry rules before invocation; this order
// is not itself a correctness guarantee.
func (a *Actor) Subsystems() []Subsystem {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make([]Subsystem, len(a.subsystems))
	copy(out, a.subsystems)
	return out
}

// SetName updates the display name and bumps version.
func (a *Actor) SetName(name string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.name = name
	a.touchLocked()
}

// SetAge updates age and bumps version.
func (a *Actor) SetAge(age int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.age = age
	a.touchLocked()
}

// Attach adds a subsystem handle to the actor and bumps version. Attaching
// the same system_id twice is permitted here; the registry built at
// aggregation time is what rejects duplicates.
func (a *Actor) Attach(s Subsystem) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.subsystems = append(a.subsystems, s)
	a.touchLocked()
}

// Detach removes every attached subsystem with the given system_id and bumps
// version if anything was removed.
func (a *Actor) Detach(systemID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	kept := a.subsystems[:0]
	removed := false
	for _, s := range a.subsystems {
		if s.SystemID() == systemID {
			removed = true
			continue
		}
		kept = append(kept, s)
	}
	a.subsystems = kept
	if removed {
		a.touchLocked()
	}
}

// Touch bumps version without any other mutation. Useful when external state
// a subsystem reads through the actor (but does not store on it) changes in a
// way that should invalidate cached snapshots.
func (a *Actor) Touch() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touchLocked()
}

func (a *Actor) touchLocked() {
	a.version++
	a.updatedAt = time.Now().UTC()
}
