package engine

import (
	"math"
	"sort"

	"github.com/forgelabs/actorcore/actor"
)

// BucketProcessor reduces one dimension's contribution list to a single
// float, either through the fixed pipeline or through a configured operator.
// It performs no I/O and never suspends; all floating-point work is 64-bit
// IEEE-754, and the pipeline order below is contractual.
type BucketProcessor struct{}

// NewBucketProcessor returns a stateless processor. It is a struct (rather
// than free functions) so it composes the same way the rest of the engine's
// components do, and so a future caching layer for intermediate reductions
// has somewhere to live.
func NewBucketProcessor() *BucketProcessor { return &BucketProcessor{} }

// Reduce applies rule to the contributions for one dimension.
func (p *BucketProcessor) Reduce(dimension string, contribs []actor.Contribution, rule actor.MergeRule, a *actor.Actor) (float64, error) {
	if rule.UsePipeline {
		return p.reducePipeline(dimension, contribs, rule, a)
	}
	return p.reduceOperator(dimension, contribs, rule)
}

func (p *BucketProcessor) reducePipeline(dimension string, contribs []actor.Contribution, rule actor.MergeRule, a *actor.Actor) (float64, error) {
	// 1. Override: highest priority wins; ties broken by source_system.
	if winner, ok := highestPriorityOverride(contribs); ok {
		return winner.Value, nil
	}

	value := rule.DefaultValue

	// 2. Flat, in insertion (collection) order.
	for _, c := range contribs {
		if c.Bucket == actor.BucketFlat {
			value += c.Value
		}
	}

	// 3. Mult: multiply by (1 + sum of mult values). Additive in the
	// exponent sense — two +0.10 contributions yield x1.20, not x1.21.
	multSum := 0.0
	for _, c := range contribs {
		if c.Bucket == actor.BucketMult {
			multSum += c.Value
		}
	}
	value *= 1 + multSum
	if !isFinite(value) {
		return 0, newNumericOverflow(dimension)
	}

	// 4. PostAdd.
	for _, c := range contribs {
		if c.Bucket == actor.BucketPostAdd {
			value += c.Value
		}
	}

	// 5. Exponential / Logarithmic / Conditional, each in declaration
	// (collection) order.
	for _, c := range contribs {
		switch c.Bucket {
		case actor.BucketExponential:
			value = value * math.Exp(c.Value)
		case actor.BucketLogarithmic:
			value = value + math.Log(1+math.Max(0, c.Value))
		case actor.BucketConditional:
			if c.Predicate == nil || c.Predicate(a) {
				value += c.Value
			}
		}
		if !isFinite(value) {
			return 0, newNumericOverflow(dimension)
		}
	}

	return value, nil
}

func (p *BucketProcessor) reduceOperator(dimension string, contribs []actor.Contribution, rule actor.MergeRule) (float64, error) {
	var flats []actor.Contribution
	for _, c := range contribs {
		if c.Bucket == actor.BucketFlat {
			flats = append(flats, c)
		}
	}

	switch rule.Operator {
	case actor.OperatorSum:
		v := rule.DefaultValue
		for _, c := range flats {
			v += c.Value
		}
		return checkFinite(v, dimension)

	case actor.OperatorMax:
		if len(flats) == 0 {
			return rule.DefaultValue, nil
		}
		v := flats[0].Value
		for _, c := range flats[1:] {
			if c.Value > v {
				v = c.Value
			}
		}
		return checkFinite(v, dimension)

	case actor.OperatorMin:
		if len(flats) == 0 {
			return rule.DefaultValue, nil
		}
		v := flats[0].Value
		for _, c := range flats[1:] {
			if c.Value < v {
				v = c.Value
			}
		}
		return checkFinite(v, dimension)

	case actor.OperatorAverage:
		if len(flats) == 0 {
			return rule.DefaultValue, nil
		}
		sum := 0.0
		for _, c := range flats {
			sum += c.Value
		}
		return checkFinite(sum/float64(len(flats)), dimension)

	case actor.OperatorMultiply:
		v := 1.0
		for _, c := range flats {
			v *= c.Value
		}
		if len(flats) == 0 {
			v = rule.DefaultValue
		}
		return checkFinite(v, dimension)

	case actor.OperatorOverride:
		if winner, ok := highestPriority(flats); ok {
			return winner.Value, nil
		}
		return rule.DefaultValue, nil

	default:
		return rule.DefaultValue, nil
	}
}

func checkFinite(v float64, dimension string) (float64, error) {
	if !isFinite(v) {
		return 0, newNumericOverflow(dimension)
	}
	return v, nil
}

// highestPriorityOverride returns the winning Override contribution, if any,
// among the given list (used for pipeline step 1; operator-mode
// OperatorOverride uses highestPriority instead).
func highestPriorityOverride(contribs []actor.Contribution) (actor.Contribution, bool) {
	var overrides []actor.Contribution
	for _, c := range contribs {
		if c.Bucket == actor.BucketOverride {
			overrides = append(overrides, c)
		}
	}
	if len(overrides) == 0 {
		return actor.Contribution{}, false
	}
	sort.SliceStable(overrides, func(i, j int) bool {
		if overrides[i].Priority != overrides[j].Priority {
			return overrides[i].Priority > overrides[j].Priority
		}
		return overrides[i].SourceSystem < overrides[j].SourceSystem
	})
	return overrides[0], true
}

// highestPriority returns the highest-priority contribution in contribs,
// ties broken by source_system, without regard to bucket kind. Used by
// operator-mode OperatorOverride, where the candidate list is already
// restricted to Flat contributions.
func highestPriority(contribs []actor.Contribution) (actor.Contribution, bool) {
	if len(contribs) == 0 {
		return actor.Contribution{}, false
	}
	winner := contribs[0]
	for _, c := range contribs[1:] {
		if c.Priority > winner.Priority || (c.Priority == winner.Priority && c.SourceSystem < winner.SourceSystem) {
			winner = c
		}
	}
	return winner, true
}
