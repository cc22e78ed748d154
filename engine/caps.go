package engine

import (
	"math"
	"sort"

	"github.com/forgelabs/actorcore/actor"
)

// CapsResolver combines cap-contributions across named layers into an
// effective [min, max] interval per dimension using the registry's
// across-layer policy.
type CapsResolver struct {
	registry actor.CapLayerRegistry
}

// NewCapsResolver builds a resolver bound to a fixed layer registry.
func NewCapsResolver(registry actor.CapLayerRegistry) *CapsResolver {
	return &CapsResolver{registry: registry}
}

// Resolve computes the effective cap for one dimension given its
// CapContributions (from any layer) and the dimension's merge rule (used
// only for its ClampDefault fallback).
func (r *CapsResolver) Resolve(dimension string, caps []actor.CapContribution, rule actor.MergeRule) (actor.Caps, error) {
	if len(caps) == 0 {
		return rule.ClampDefault, nil
	}

	byLayer := make(map[string][]actor.CapContribution)
	for _, c := range caps {
		byLayer[c.Layer] = append(byLayer[c.Layer], c)
	}
	for layer := range byLayer {
		if r.registry.LayerIndex(layer) < 0 {
			return actor.Caps{}, newConfigurationMissing(layer)
		}
	}

	var perLayer []actor.Caps
	anyLayerContributed := false
	for _, layer := range r.registry.Layers {
		contribs, ok := byLayer[layer]
		if !ok || len(contribs) == 0 {
			continue
		}
		anyLayerContributed = true
		perLayer = append(perLayer, reduceLayer(contribs, rule.StrictSoft))
	}

	if !anyLayerContributed {
		return rule.ClampDefault, nil
	}

	switch r.registry.AcrossLayerPolicy {
	case actor.AcrossLayerPrioritizedOverride:
		return perLayer[len(perLayer)-1], nil

	case actor.AcrossLayerCustom:
		combiner := r.registry.Combiners[dimension]
		if combiner == nil {
			return intersectLayers(perLayer), nil
		}
		result, err := combiner(dimension, perLayer)
		if err != nil {
			return actor.Caps{}, newCapPolicyViolation(dimension)
		}
		if !result.Valid() {
			return actor.Caps{}, newCapPolicyViolation(dimension)
		}
		return result, nil

	case actor.AcrossLayerIntersect:
		fallthrough
	default:
		return intersectLayers(perLayer), nil
	}
}

// reduceLayer applies cap modes in the order Baseline, Additive,
// HardMax/HardMin, SoftMax/SoftMin, Override to the contributions of one
// layer for one dimension.
func reduceLayer(contribs []actor.CapContribution, strictSoft bool) actor.Caps {
	result := actor.UnboundedCaps()

	// 1. Baseline: last-wins by highest priority, ties by lexicographic
	// source_system, Min and Max kinds resolved independently so a
	// higher-priority Max baseline never shadows a lower-priority Min one.
	var baselines []actor.CapContribution
	for _, c := range contribs {
		if c.Mode == actor.CapModeBaseline {
			baselines = append(baselines, c)
		}
	}
	if len(baselines) > 0 {
		sort.SliceStable(baselines, func(i, j int) bool {
			if baselines[i].Priority != baselines[j].Priority {
				return baselines[i].Priority > baselines[j].Priority
			}
			return baselines[i].SourceSystem < baselines[j].SourceSystem
		})
		seen := map[actor.CapKind]bool{}
		for _, c := range baselines {
			if seen[c.Kind] {
				continue
			}
			setBound(&result, c.Kind, c.Value, false)
			seen[c.Kind] = true
		}
	}

	// 2. Additive.
	for _, c := range contribs {
		if c.Mode == actor.CapModeAdditive {
			addBound(&result, c.Kind, c.Value)
		}
	}

	// 3. HardMax / HardMin.
	for _, c := range contribs {
		switch c.Mode {
		case actor.CapModeHardMax:
			result.Max = math.Min(result.Max, c.Value)
		case actor.CapModeHardMin:
			result.Min = math.Max(result.Min, c.Value)
		}
	}

	// 4. SoftMax / SoftMin: advisory unless StrictSoft is configured for the
	// dimension, in which case they behave like hard bounds.
	if strictSoft {
		for _, c := range contribs {
			switch c.Mode {
			case actor.CapModeSoftMax:
				result.Max = math.Min(result.Max, c.Value)
			case actor.CapModeSoftMin:
				result.Min = math.Max(result.Min, c.Value)
			}
		}
	}

	// 5. Override: each side is replaced by the highest-priority Override
	// contribution of that kind (a layer with both a Min and Max Override
	// gets both sides set independently; a side with no Override keeps the
	// value from the steps above).
	var overrides []actor.CapContribution
	for _, c := range contribs {
		if c.Mode == actor.CapModeOverride {
			overrides = append(overrides, c)
		}
	}
	if len(overrides) > 0 {
		sort.SliceStable(overrides, func(i, j int) bool {
			if overrides[i].Priority != overrides[j].Priority {
				return overrides[i].Priority > overrides[j].Priority
			}
			return overrides[i].SourceSystem < overrides[j].SourceSystem
		})
		seen := map[actor.CapKind]bool{}
		for _, c := range overrides {
			if seen[c.Kind] {
				continue
			}
			setBound(&result, c.Kind, c.Value, true)
			seen[c.Kind] = true
		}
	}

	return result
}

func setBound(c *actor.Caps, kind actor.CapKind, value float64, override bool) {
	switch kind {
	case actor.CapKindMin:
		c.Min = value
	case actor.CapKindMax:
		c.Max = value
	}
	_ = override
}

func addBound(c *actor.Caps, kind actor.CapKind, value float64) {
	switch kind {
	case actor.CapKindMin:
		c.Min += value
	case actor.CapKindMax:
		c.Max += value
	}
}

// intersectLayers combines per-layer intervals as [max(min_i), min(max_i)].
// If the result collapses (min > max), it fails closed: the stricter lower
// bound wins and the interval becomes a single point at that lower bound.
func intersectLayers(layers []actor.Caps) actor.Caps {
	result := actor.UnboundedCaps()
	for _, l := range layers {
		if l.Min > result.Min {
			result.Min = l.Min
		}
		if l.Max < result.Max {
			result.Max = l.Max
		}
	}
	if result.Min > result.Max {
		result.Max = result.Min
	}
	return result
}
