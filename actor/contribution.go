package actor

// Bucket tags where in the reduction pipeline a Contribution applies.
type Bucket string

const (
	BucketOverride    Bucket = "override"
	BucketFlat        Bucket = "flat"
	BucketMult        Bucket = "mult"
	BucketPostAdd     Bucket = "post_add"
	BucketExponential Bucket = "exponential"
	BucketLogarithmic Bucket = "logarithmic"
	BucketConditional Bucket = "conditional"
)

// Predicate gates a Conditional contribution. It is evaluated against the
// actor the contribution was collected for; subsystems supply it as a closure
// over whatever actor state they care about.
type Predicate func(a *Actor) bool

// Contribution is one subsystem's proposed adjustment to a dimension. Values
// are immutable and cheap to copy; the collector groups them per dimension.
type Contribution struct {
	Dimension    string
	Bucket       Bucket
	Value        float64
	SourceSystem string
	Priority     int64

	// Predicate is consulted only for BucketConditional contributions; nil
	// means "always satisfied" (in practice a Conditional contribution
	// should always set one, but a nil predicate is not itself an error).
	Predicate Predicate
}

// CapKind distinguishes a lower bound contribution from an upper bound one.
type CapKind string

const (
	CapKindMin CapKind = "min"
	CapKindMax CapKind = "max"
)

// CapMode selects how a CapContribution participates in per-layer reduction.
type CapMode string

const (
	CapModeBaseline CapMode = "baseline"
	CapModeAdditive CapMode = "additive"
	CapModeHardMax  CapMode = "hard_max"
	CapModeHardMin  CapMode = "hard_min"
	CapModeSoftMax  CapMode = "soft_max"
	CapModeSoftMin  CapMode = "soft_min"
	CapModeOverride CapMode = "override"
)

// CapContribution is a subsystem's proposed bound on a dimension within a
// named layer.
type CapContribution struct {
	Dimension    string
	Kind         CapKind
	Mode         CapMode
	Layer        string
	Value        float64
	SourceSystem string
	Priority     int64
}
