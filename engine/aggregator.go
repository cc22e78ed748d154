package engine

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/forgelabs/actorcore/actor"
	"github.com/forgelabs/actorcore/cache"
	"github.com/forgelabs/actorcore/pkg/logger"
)

// Aggregator is the facade orchestrating Registry -> Collector -> Buckets ->
// Caps -> Cache, the same role the teacher's Engine plays composing its own
// registry/lifecycle/health/bus subsystems behind one entry point.
type Aggregator struct {
	cfg Config

	buckets *BucketProcessor
	caps    *CapsResolver
	cache   *cache.Cache[*actor.Snapshot]

	log     *logger.Logger
	metrics Metrics
}

// New builds an Aggregator from Config plus functional options.
func New(cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		cfg:     cfg,
		buckets: NewBucketProcessor(),
		caps:    NewCapsResolver(cfg.CapLayers),
		log:     logger.NewDefault("aggregator"),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.cache = cache.New[*actor.Snapshot](cfg.CacheCapacity, cfg.CacheTTL, a.recordEviction)
	return a
}

// Resolve computes (or returns the cached) Snapshot for an actor. It may
// block on single-flight if another call for the same fingerprint is
// already in flight.
func (a *Aggregator) Resolve(ctx context.Context, act *actor.Actor) (*actor.Snapshot, error) {
	registry, err := FromActor(act)
	if err != nil {
		a.recordFailed(err)
		return nil, err
	}
	ordered := registry.IterOrdered()

	fp := a.fingerprint(act, ordered)
	key := fmt.Sprintf("%x", fp)

	a.recordStarted()

	snap, cerr, hit := a.cache.GetOrCompute(key, func() (*actor.Snapshot, error) {
		return a.compute(ctx, act, ordered, fp)
	})
	if cerr != nil {
		a.recordFailed(cerr)
		return nil, cerr
	}
	a.recordCompleted(hit)
	return snap, nil
}

// Invalidate is a redundant escape hatch: bumping actor.version already
// changes its fingerprint, so entries for the old state simply age out of
// the LRU. It exists for callers who want to free cache space eagerly.
func (a *Aggregator) Invalidate(act *actor.Actor) {
	registry, err := FromActor(act)
	if err != nil {
		return
	}
	fp := a.fingerprint(act, registry.IterOrdered())
	a.cache.Remove(fmt.Sprintf("%x", fp))
}

func (a *Aggregator) compute(ctx context.Context, act *actor.Actor, ordered []actor.Subsystem, fp cache.Fingerprint) (*actor.Snapshot, error) {
	collector := NewCollector(a.log, a.metrics, a.cfg.subsystemDeadline())
	collected, err := collector.Collect(ctx, act, ordered)
	if err != nil {
		return nil, err
	}

	dimensions := make(map[string]struct{})
	for d := range collected.Contribs {
		dimensions[d] = struct{}{}
	}
	for d := range collected.Caps {
		dimensions[d] = struct{}{}
	}

	snap := &actor.Snapshot{
		ActorID:       act.ID(),
		Values:        make(map[string]float64, len(dimensions)),
		EffectiveCaps: make(map[string]actor.Caps, len(dimensions)),
		SourceSystems: collected.Systems,
		Fingerprint:   fp,
	}

	for dimension := range dimensions {
		rule := a.cfg.mergeRuleFor(dimension)

		effectiveCaps, err := a.caps.Resolve(dimension, collected.Caps[dimension], rule)
		if err != nil {
			return nil, err
		}
		if !effectiveCaps.Valid() {
			return nil, newCapPolicyViolation(dimension)
		}

		raw, err := a.buckets.Reduce(dimension, collected.Contribs[dimension], rule, act)
		if err != nil {
			return nil, err
		}

		final := effectiveCaps.Clamp(raw)
		if final != raw {
			a.recordClamp(dimension)
		}

		snap.Values[dimension] = final
		snap.EffectiveCaps[dimension] = effectiveCaps
	}

	return snap, nil
}

// fingerprint mixes actor id/version with each subsystem's (system_id,
// version) pair in registry order, per spec — ordered is already sorted by
// ascending priority then ascending system_id by SubsystemRegistry.IterOrdered.
func (a *Aggregator) fingerprint(act *actor.Actor, ordered []actor.Subsystem) cache.Fingerprint {
	versions := make([]cache.SubsystemVersion, len(ordered))
	for i, s := range ordered {
		versions[i] = cache.SubsystemVersion{SystemID: s.SystemID(), Version: s.Version()}
	}
	return cache.Compute(act.ID(), act.Version(), versions)
}

// Cache exposes the underlying snapshot cache for operational introspection
// (Len, Hits, Misses, Purge), mirroring the teacher's Engine.Registry()/
// Health() escape hatches for advanced callers.
func (a *Aggregator) Cache() *cache.Cache[*actor.Snapshot] { return a.cache }

// Registry builds the ordered SubsystemRegistry for act, the same one
// Resolve uses internally, for callers that want to inspect attachment
// order or detect a RegistryConflict without running a full aggregation.
func (a *Aggregator) Registry(act *actor.Actor) (*SubsystemRegistry, error) {
	return FromActor(act)
}

func (a *Aggregator) recordStarted() {
	if a.metrics != nil {
		a.metrics.Counter("aggregation_started_total", nil, 1)
	}
}

func (a *Aggregator) recordCompleted(cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	if a.metrics != nil {
		a.metrics.Counter("aggregation_completed_total", map[string]string{"cache": label}, 1)
	}
}

func (a *Aggregator) recordFailed(err error) {
	kind := "unknown"
	if ae, ok := err.(*AggregateError); ok {
		kind = string(ae.Kind)
	}
	if a.log != nil {
		a.log.WithFields(logrus.Fields{"error_kind": kind}).Error("aggregation.failed")
	}
	if a.metrics != nil {
		a.metrics.Counter("aggregation_failed_total", map[string]string{"error_kind": kind}, 1)
	}
}

func (a *Aggregator) recordClamp(dimension string) {
	if a.log != nil {
		a.log.WithFields(logrus.Fields{"dimension": dimension}).Debug("clamp.applied")
	}
	if a.metrics != nil {
		a.metrics.Counter("clamp_applied_total", map[string]string{"dimension": dimension}, 1)
	}
}

func (a *Aggregator) recordEviction(key string) {
	if a.log != nil {
		a.log.WithFields(logrus.Fields{"key": key}).Debug("cache.evicted")
	}
	if a.metrics != nil {
		a.metrics.Counter("cache_evicted_total", nil, 1)
	}
}
