package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestBridgeRoutesNamedCountersToFixedVectors(t *testing.T) {
	b := NewBridge(nil)

	b.Counter("aggregation_started_total", nil, 1)
	b.Counter("aggregation_completed_total", map[string]string{"cache": "hit"}, 1)
	b.Counter("subsystem_failed_total", map[string]string{"system_id": "buffs"}, 2)
	b.Counter("cache_evicted_total", nil, 1)

	if got := testutil.ToFloat64(aggregationStarted); got != 1 {
		t.Fatalf("aggregation_started_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(aggregationCompleted.WithLabelValues("hit")); got != 1 {
		t.Fatalf("aggregation_completed_total{cache=hit} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(subsystemFailed.WithLabelValues("buffs")); got != 2 {
		t.Fatalf("subsystem_failed_total{system_id=buffs} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(cacheEvicted); got != 1 {
		t.Fatalf("cache_evicted_total = %v, want 1", got)
	}
}

func TestBridgeFallsThroughToRecorderForAdHocNames(t *testing.T) {
	b := NewBridge(nil)

	b.Counter("custom_widget_total", map[string]string{"shape": "square"}, 3)
	b.Gauge("queue_depth", nil, 5)
	b.Histogram("latency_seconds", nil, 0.25)

	vec := b.recorder.getCounterVec("custom_widget_total", []string{"shape"})
	if vec == nil {
		t.Fatalf("expected ad hoc counter to be registered via recorder")
	}
	if got := testutil.ToFloat64(vec.WithLabelValues("square")); got != 3 {
		t.Fatalf("custom_widget_total{shape=square} = %v, want 3", got)
	}
}

func TestBridgeNilReceiverIsNoop(t *testing.T) {
	var b *Bridge
	b.Counter("aggregation_started_total", nil, 1)
	b.Gauge("queue_depth", nil, 1)
	b.Histogram("latency_seconds", nil, 1)
}
