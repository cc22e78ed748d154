package engine

import (
	"math"
	"testing"

	"github.com/forgelabs/actorcore/actor"
)

func capContrib(layer string, kind actor.CapKind, mode actor.CapMode, v float64) actor.CapContribution {
	return actor.CapContribution{Dimension: "d", Layer: layer, Kind: kind, Mode: mode, Value: v}
}

// S4 - Layer intersect.
func TestCapsLayerIntersect(t *testing.T) {
	registry := actor.CapLayerRegistry{
		Layers:            []string{"REALM", "WORLD", "EVENT"},
		AcrossLayerPolicy: actor.AcrossLayerIntersect,
	}
	r := NewCapsResolver(registry)

	caps := []actor.CapContribution{
		capContrib("REALM", actor.CapKindMin, actor.CapModeBaseline, 0),
		capContrib("REALM", actor.CapKindMax, actor.CapModeBaseline, 1000),
		capContrib("WORLD", actor.CapKindMin, actor.CapModeBaseline, 100),
		capContrib("WORLD", actor.CapKindMax, actor.CapModeBaseline, 500),
		capContrib("EVENT", actor.CapKindMin, actor.CapModeBaseline, 200),
		capContrib("EVENT", actor.CapKindMax, actor.CapModeBaseline, 400),
	}

	effective, err := r.Resolve("d", caps, actor.MergeRule{})
	must(t, err)
	if effective.Min != 200 || effective.Max != 400 {
		t.Fatalf("want [200,400], got [%v,%v]", effective.Min, effective.Max)
	}
	if got := effective.Clamp(350); got != 350 {
		t.Errorf("want 350 unclamped, got %v", got)
	}
	if got := effective.Clamp(450); got != 400 {
		t.Errorf("want clamp to 400, got %v", got)
	}
}

// S5 - HardMax floor.
func TestCapsHardMaxFloor(t *testing.T) {
	registry := actor.CapLayerRegistry{
		Layers:            []string{"REALM"},
		AcrossLayerPolicy: actor.AcrossLayerIntersect,
	}
	r := NewCapsResolver(registry)

	caps := []actor.CapContribution{
		capContrib("REALM", actor.CapKindMax, actor.CapModeHardMax, 0.5),
	}
	effective, err := r.Resolve("cooldown_reduction", caps, actor.MergeRule{})
	must(t, err)

	p := NewBucketProcessor()
	raw, err := p.Reduce("cooldown_reduction", []actor.Contribution{
		flat(0.3, "a"), flat(0.4, "b"),
	}, actor.MergeRule{UsePipeline: true}, nil)
	must(t, err)

	final := effective.Clamp(raw)
	if final != 0.5 {
		t.Fatalf("want 0.5, got %v", final)
	}
}

func TestCapsMonotonicityUnderIntersect(t *testing.T) {
	registry := actor.CapLayerRegistry{
		Layers:            []string{"A", "B"},
		AcrossLayerPolicy: actor.AcrossLayerIntersect,
	}
	r := NewCapsResolver(registry)

	loose := []actor.CapContribution{
		capContrib("A", actor.CapKindMin, actor.CapModeBaseline, 0),
		capContrib("A", actor.CapKindMax, actor.CapModeBaseline, 1000),
	}
	tighter := append(loose,
		capContrib("B", actor.CapKindMin, actor.CapModeBaseline, 100),
		capContrib("B", actor.CapKindMax, actor.CapModeBaseline, 200),
	)

	before, err := r.Resolve("d", loose, actor.MergeRule{})
	must(t, err)
	after, err := r.Resolve("d", tighter, actor.MergeRule{})
	must(t, err)

	if after.Min < before.Min || after.Max > before.Max {
		t.Fatalf("adding a tighter layer loosened the interval: before=%v after=%v", before, after)
	}
}

func TestCapsLayerOverrideReplacesInterval(t *testing.T) {
	registry := actor.CapLayerRegistry{Layers: []string{"REALM"}, AcrossLayerPolicy: actor.AcrossLayerIntersect}
	r := NewCapsResolver(registry)

	caps := []actor.CapContribution{
		capContrib("REALM", actor.CapKindMin, actor.CapModeBaseline, 0),
		capContrib("REALM", actor.CapKindMax, actor.CapModeBaseline, 1000),
		{Dimension: "d", Layer: "REALM", Kind: actor.CapKindMin, Mode: actor.CapModeOverride, Value: 50, Priority: 1},
		{Dimension: "d", Layer: "REALM", Kind: actor.CapKindMax, Mode: actor.CapModeOverride, Value: 60, Priority: 1},
	}
	effective, err := r.Resolve("d", caps, actor.MergeRule{})
	must(t, err)
	if effective.Min != 50 || effective.Max != 60 {
		t.Fatalf("want override [50,60], got [%v,%v]", effective.Min, effective.Max)
	}
}

func TestCapsAcrossLayerPrioritizedOverride(t *testing.T) {
	registry := actor.CapLayerRegistry{
		Layers:            []string{"REALM", "WORLD"},
		AcrossLayerPolicy: actor.AcrossLayerPrioritizedOverride,
	}
	r := NewCapsResolver(registry)

	caps := []actor.CapContribution{
		capContrib("REALM", actor.CapKindMin, actor.CapModeBaseline, 0),
		capContrib("REALM", actor.CapKindMax, actor.CapModeBaseline, 1000),
		capContrib("WORLD", actor.CapKindMin, actor.CapModeBaseline, 100),
		capContrib("WORLD", actor.CapKindMax, actor.CapModeBaseline, 500),
	}
	effective, err := r.Resolve("d", caps, actor.MergeRule{})
	must(t, err)
	if effective.Min != 100 || effective.Max != 500 {
		t.Fatalf("want the last contributing layer (WORLD) to win outright, got [%v,%v]", effective.Min, effective.Max)
	}
}

func TestCapsAcrossLayerCustomCombiner(t *testing.T) {
	registry := actor.CapLayerRegistry{
		Layers:            []string{"REALM", "WORLD"},
		AcrossLayerPolicy: actor.AcrossLayerCustom,
		Combiners: map[string]actor.CombinerFunc{
			"d": func(dimension string, layers []actor.Caps) (actor.Caps, error) {
				// Widest-wins combiner, the opposite of Intersect.
				out := actor.Caps{Min: math.Inf(1), Max: math.Inf(-1)}
				for _, l := range layers {
					if l.Min < out.Min {
						out.Min = l.Min
					}
					if l.Max > out.Max {
						out.Max = l.Max
					}
				}
				return out, nil
			},
		},
	}
	r := NewCapsResolver(registry)

	caps := []actor.CapContribution{
		capContrib("REALM", actor.CapKindMin, actor.CapModeBaseline, 0),
		capContrib("REALM", actor.CapKindMax, actor.CapModeBaseline, 100),
		capContrib("WORLD", actor.CapKindMin, actor.CapModeBaseline, -50),
		capContrib("WORLD", actor.CapKindMax, actor.CapModeBaseline, 500),
	}
	effective, err := r.Resolve("d", caps, actor.MergeRule{})
	must(t, err)
	if effective.Min != -50 || effective.Max != 500 {
		t.Fatalf("want widest-wins [-50,500], got [%v,%v]", effective.Min, effective.Max)
	}
}

func TestCapsCustomCombinerViolationIsPolicyError(t *testing.T) {
	registry := actor.CapLayerRegistry{
		Layers:            []string{"REALM"},
		AcrossLayerPolicy: actor.AcrossLayerCustom,
		Combiners: map[string]actor.CombinerFunc{
			"d": func(string, []actor.Caps) (actor.Caps, error) {
				return actor.Caps{Min: 100, Max: 0}, nil // min > max: invalid
			},
		},
	}
	r := NewCapsResolver(registry)

	caps := []actor.CapContribution{capContrib("REALM", actor.CapKindMin, actor.CapModeBaseline, 0)}
	_, err := r.Resolve("d", caps, actor.MergeRule{})
	if err == nil {
		t.Fatal("expected CapPolicyViolation")
	}
	if ae, ok := err.(*AggregateError); !ok || ae.Kind != ErrCapPolicyViolation {
		t.Fatalf("expected CapPolicyViolation, got %v", err)
	}
}

func TestCapsNoLayerContributesFallsBackToDefault(t *testing.T) {
	registry := actor.CapLayerRegistry{Layers: []string{"REALM"}, AcrossLayerPolicy: actor.AcrossLayerIntersect}
	r := NewCapsResolver(registry)
	rule := actor.MergeRule{ClampDefault: actor.Caps{Min: -10, Max: 10}}

	effective, err := r.Resolve("d", nil, rule)
	must(t, err)
	if effective != rule.ClampDefault {
		t.Fatalf("want default %v, got %v", rule.ClampDefault, effective)
	}
}
