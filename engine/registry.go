package engine

import (
	"sort"
	"sync"

	"github.com/forgelabs/actorcore/actor"
)

// SubsystemRegistry holds subsystems keyed by system_id and exposes them in
// the fixed order the rest of the engine relies on: ascending priority, then
// ascending system_id as a stable tiebreak. It is safe for concurrent
// readers; mutation is exclusive.
//
// This is the same shape as a module registry that keeps an explicit
// ordering plus registration order for unlisted entries, generalized here to
// a single deterministic sort key instead of caller-supplied ordering, since
// subsystem order is a correctness requirement rather than an operational
// preference.
type SubsystemRegistry struct {
	mu      sync.RWMutex
	byID    map[string]actor.Subsystem
	ordered []actor.Subsystem // cache of the sorted view, invalidated on mutation
	dirty   bool
}

// NewSubsystemRegistry returns an empty registry.
func NewSubsystemRegistry() *SubsystemRegistry {
	return &SubsystemRegistry{
		byID: make(map[string]actor.Subsystem),
	}
}

// Register adds a subsystem. Duplicate system_id is a RegistryConflict.
func (r *SubsystemRegistry) Register(s actor.Subsystem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := s.SystemID()
	if _, exists := r.byID[id]; exists {
		return newRegistryConflict(id)
	}
	r.byID[id] = s
	r.dirty = true
	return nil
}

// Unregister removes a subsystem by system_id. Removing an unknown id is a
// no-op, mirroring the collector's general tolerance for absent state.
func (r *SubsystemRegistry) Unregister(systemID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[systemID]; !exists {
		return
	}
	delete(r.byID, systemID)
	r.dirty = true
}

// Get returns a subsystem by system_id, or nil.
func (r *SubsystemRegistry) Get(systemID string) actor.Subsystem {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.byID[systemID]
}

// Len returns the number of registered subsystems.
func (r *SubsystemRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID)
}

// IterOrdered returns subsystems ordered by ascending priority, then
// ascending system_id.
func (r *SubsystemRegistry) IterOrdered() []actor.Subsystem {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.dirty || r.ordered == nil {
		r.rebuildLocked()
	}
	out := make([]actor.Subsystem, len(r.ordered))
	copy(out, r.ordered)
	return out
}

func (r *SubsystemRegistry) rebuildLocked() {
	out := make([]actor.Subsystem, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority() != out[j].Priority() {
			return out[i].Priority() < out[j].Priority()
		}
		return out[i].SystemID() < out[j].SystemID()
	})
	r.ordered = out
	r.dirty = false
}

// FromActor builds a registry from an actor's attached subsystems. It
// returns a RegistryConflict if two attached subsystems share a system_id —
// this is how the spec's "duplicate system_id on register is fatal" rule is
// enforced even though Actor.Attach itself tolerates duplicates.
func FromActor(a *actor.Actor) (*SubsystemRegistry, error) {
	r := NewSubsystemRegistry()
	for _, s := range a.Subsystems() {
		if err := r.Register(s); err != nil {
			return nil, err
		}
	}
	return r, nil
}
