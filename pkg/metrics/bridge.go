package metrics

import "github.com/prometheus/client_golang/prometheus"

// Bridge routes the seven named counters spec §6 mandates to the concrete
// vectors declared in metrics.go, and anything else to an embedded Recorder.
// It is the concrete Metrics implementation production callers pass to
// engine.WithMetrics: the fixed vectors give operators a stable dashboard
// query surface, while the Recorder keeps the door open for subsystem
// authors who want ad hoc counters without a metrics.go change.
type Bridge struct {
	recorder *Recorder
}

var _ Metrics = (*Bridge)(nil)

// NewBridge builds a Bridge whose ad hoc Recorder is backed by reg. A nil reg
// uses the package-level Registry the fixed vectors are already registered
// against, so the fixed and ad hoc metrics share one /metrics surface.
func NewBridge(reg *prometheus.Registry) *Bridge {
	return &Bridge{recorder: NewRecorder(reg)}
}

// Counter increments a metric by delta. name is matched against the seven
// events named in spec §6; anything else falls through to the Recorder.
func (b *Bridge) Counter(name string, labels map[string]string, delta float64) {
	if b == nil || delta <= 0 {
		return
	}
	switch name {
	case "aggregation_started_total":
		aggregationStarted.Add(delta)
		return
	case "aggregation_completed_total":
		aggregationCompleted.WithLabelValues(labels["cache"]).Add(delta)
		return
	case "aggregation_failed_total":
		aggregationFailed.WithLabelValues(labels["error_kind"]).Add(delta)
		return
	case "subsystem_failed_total":
		subsystemFailed.WithLabelValues(labels["system_id"]).Add(delta)
		return
	case "subsystem_timeout_total":
		subsystemTimeout.WithLabelValues(labels["system_id"]).Add(delta)
		return
	case "clamp_applied_total":
		clampApplied.WithLabelValues(labels["dimension"]).Add(delta)
		return
	case "cache_evicted_total":
		cacheEvicted.Add(delta)
		return
	}
	b.recorder.Counter(name, labels, delta)
}

// Gauge is not part of the fixed event set; every call goes through the
// Recorder.
func (b *Bridge) Gauge(name string, labels map[string]string, value float64) {
	if b == nil {
		return
	}
	b.recorder.Gauge(name, labels, value)
}

// Histogram is not part of the fixed event set; every call goes through the
// Recorder.
func (b *Bridge) Histogram(name string, labels map[string]string, value float64) {
	if b == nil {
		return
	}
	b.recorder.Histogram(name, labels, value)
}
