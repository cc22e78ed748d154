package actor

import "math"

// Caps is a closed interval with the invariant Min <= Max. Unbounded sides
// use the +/-Inf sentinels.
type Caps struct {
	Min float64
	Max float64
}

// UnboundedCaps returns the interval [-Inf, +Inf].
func UnboundedCaps() Caps {
	return Caps{Min: math.Inf(-1), Max: math.Inf(1)}
}

// Clamp restricts v to the interval.
func (c Caps) Clamp(v float64) float64 {
	if v < c.Min {
		return c.Min
	}
	if v > c.Max {
		return c.Max
	}
	return v
}

// Valid reports whether the interval satisfies Min <= Max.
func (c Caps) Valid() bool {
	return c.Min <= c.Max
}

// Operator selects the reduction applied to a dimension's raw Flat
// contributions when that dimension is configured outside pipeline mode.
type Operator string

const (
	OperatorSum      Operator = "sum"
	OperatorMax      Operator = "max"
	OperatorMin      Operator = "min"
	OperatorAverage  Operator = "average"
	OperatorMultiply Operator = "multiply"
	OperatorOverride Operator = "override"
)

// MergeRule is the per-dimension configuration governing how its
// contributions are reduced and how its caps default when no layer
// constrains it.
type MergeRule struct {
	UsePipeline  bool
	Operator     Operator
	DefaultValue float64
	ClampDefault Caps

	// StrictSoft turns SoftMin/SoftMax bounds into binding clamps instead of
	// advisory ones. Off by default per design note on soft-vs-hard caps.
	StrictSoft bool
}

// AcrossLayerPolicy selects how per-layer intervals combine into the final
// effective cap for a dimension.
type AcrossLayerPolicy string

const (
	AcrossLayerIntersect           AcrossLayerPolicy = "intersect"
	AcrossLayerPrioritizedOverride AcrossLayerPolicy = "prioritized_override"
	AcrossLayerCustom              AcrossLayerPolicy = "custom"
)

// CombinerFunc is consulted for a dimension when its AcrossLayerPolicy is
// AcrossLayerCustom. It receives the per-layer intervals in registry order
// and must return a Caps with Min <= Max.
type CombinerFunc func(dimension string, layers []Caps) (Caps, error)

// CapLayerRegistry is the ordered sequence of cap layers (e.g. REALM, WORLD,
// EVENT, TOTAL) and the policy combining them.
type CapLayerRegistry struct {
	Layers            []string
	AcrossLayerPolicy AcrossLayerPolicy

	// Combiners holds the optional per-dimension custom combiner, consulted
	// only when AcrossLayerPolicy == AcrossLayerCustom for that dimension.
	Combiners map[string]CombinerFunc
}

// LayerIndex returns the position of a layer name in registry order, or -1.
func (r CapLayerRegistry) LayerIndex(name string) int {
	for i, l := range r.Layers {
		if l == name {
			return i
		}
	}
	return -1
}
