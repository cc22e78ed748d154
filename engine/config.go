package engine

import (
	"time"

	"github.com/forgelabs/actorcore/actor"
	"github.com/forgelabs/actorcore/pkg/logger"
)

// DefaultSubsystemDeadline is the per-subsystem call budget applied when
// Config.SubsystemDeadline is left at its zero value, per spec §5.
const DefaultSubsystemDeadline = 100 * time.Millisecond

// NoSubsystemDeadline disables the per-subsystem deadline entirely. Set
// Config.SubsystemDeadline to this value to let subsystem calls run
// unbounded (subject only to the caller's own context).
const NoSubsystemDeadline time.Duration = -1

// Config is the opaque, in-memory configuration injected at construction.
// The engine never reads files or environment itself; hot-reload is modeled
// by constructing a new Aggregator and atomically swapping the shared
// reference at the call site, letting in-flight aggregations finish against
// the old configuration.
type Config struct {
	// MergeRules holds the per-dimension reduction configuration. A
	// dimension with no rule falls back to DefaultMergeRule.
	MergeRules map[string]actor.MergeRule

	// DefaultMergeRule is used for any dimension absent from MergeRules.
	DefaultMergeRule actor.MergeRule

	// CapLayers is the ordered layer registry and across-layer policy.
	CapLayers actor.CapLayerRegistry

	// SubsystemDeadline is the per-subsystem call budget. Zero uses the spec
	// default of 100ms; use NoSubsystemDeadline to disable the deadline
	// entirely.
	SubsystemDeadline time.Duration

	// CacheCapacity and CacheTTL configure the Snapshot Cache. Zero capacity
	// uses the cache's default bound of 100,000 entries; zero TTL means
	// entries never expire on their own.
	CacheCapacity int
	CacheTTL      time.Duration
}

func (c Config) mergeRuleFor(dimension string) actor.MergeRule {
	if rule, ok := c.MergeRules[dimension]; ok {
		return rule
	}
	return c.DefaultMergeRule
}

// subsystemDeadline resolves the configured deadline to the spec default
// when left unset, and to "no deadline" when explicitly disabled.
func (c Config) subsystemDeadline() time.Duration {
	switch {
	case c.SubsystemDeadline == NoSubsystemDeadline:
		return 0
	case c.SubsystemDeadline == 0:
		return DefaultSubsystemDeadline
	default:
		return c.SubsystemDeadline
	}
}

// Option configures an Aggregator at construction time, following the same
// functional-options idiom the teacher's engine facade uses.
type Option func(*Aggregator)

// WithLogger overrides the default logger.
func WithLogger(l *logger.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.log = l
		}
	}
}

// WithMetrics overrides the metrics sink.
func WithMetrics(m Metrics) Option {
	return func(a *Aggregator) {
		if m != nil {
			a.metrics = m
		}
	}
}
