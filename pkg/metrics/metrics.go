package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultNamespace = "actorcore"
	defaultSubsystem = "aggregation"
)

// Registry holds the application-specific Prometheus collectors. A
// dedicated registry (rather than the global default one) keeps these
// metrics off Prometheus's default registry, following the teacher's own
// per-application-registry pattern. It is package-level, so every engine in
// the process shares it.
var Registry = prometheus.NewRegistry()

var (
	aggregationStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "started_total",
			Help:      "Total number of aggregation runs started.",
		},
	)

	aggregationCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "completed_total",
			Help:      "Total number of aggregation runs completed, by cache outcome.",
		},
		[]string{"cache"},
	)

	aggregationFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "failed_total",
			Help:      "Total number of aggregation runs that aborted, by error kind.",
		},
		[]string{"error_kind"},
	)

	subsystemFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "subsystem_failed_total",
			Help:      "Total number of subsystem contribute calls that returned an error.",
		},
		[]string{"system_id"},
	)

	subsystemTimeout = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "subsystem_timeout_total",
			Help:      "Total number of subsystem contribute calls that exceeded their deadline.",
		},
		[]string{"system_id"},
	)

	clampApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "clamp_applied_total",
			Help:      "Total number of dimensions whose raw value was clamped by its effective cap.",
		},
		[]string{"dimension"},
	)

	cacheEvicted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: defaultNamespace,
			Subsystem: defaultSubsystem,
			Name:      "cache_evicted_total",
			Help:      "Total number of snapshot cache entries evicted by capacity or TTL.",
		},
	)
)

func init() {
	Registry.MustRegister(
		aggregationStarted,
		aggregationCompleted,
		aggregationFailed,
		subsystemFailed,
		subsystemTimeout,
		clampApplied,
		cacheEvicted,
	)
}
