package engine

import (
	"math"
	"testing"

	"github.com/forgelabs/actorcore/actor"
)

func flat(v float64, src string) actor.Contribution {
	return actor.Contribution{Dimension: "d", Bucket: actor.BucketFlat, Value: v, SourceSystem: src}
}

func mult(v float64, src string) actor.Contribution {
	return actor.Contribution{Dimension: "d", Bucket: actor.BucketMult, Value: v, SourceSystem: src}
}

func postAdd(v float64, src string) actor.Contribution {
	return actor.Contribution{Dimension: "d", Bucket: actor.BucketPostAdd, Value: v, SourceSystem: src}
}

func override(v float64, priority int64, src string) actor.Contribution {
	return actor.Contribution{Dimension: "d", Bucket: actor.BucketOverride, Value: v, Priority: priority, SourceSystem: src}
}

// S1 - Sum of flats.
func TestBucketsSumOfFlats(t *testing.T) {
	p := NewBucketProcessor()
	contribs := []actor.Contribution{flat(10, "a"), flat(5, "b")}
	rule := actor.MergeRule{UsePipeline: true}

	got, err := p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if got != 15 {
		t.Fatalf("want 15, got %v", got)
	}
}

// S2 - Flat then mult, then PostAdd.
func TestBucketsFlatMultPostAdd(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: true}

	contribs := []actor.Contribution{flat(100, "a"), mult(0.2, "a"), mult(0.3, "b")}
	got, err := p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if got != 150 {
		t.Fatalf("want 150, got %v", got)
	}

	contribs = append(contribs, postAdd(10, "c"))
	got, err = p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if got != 160 {
		t.Fatalf("want 160, got %v", got)
	}
}

// S3 - Override wins regardless of other contributions.
func TestBucketsOverrideWins(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: true}

	contribs := []actor.Contribution{
		flat(100, "a"),
		mult(2.0, "a"),
		override(42, 5, "a"),
		override(30, 10, "b"),
	}
	got, err := p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if got != 30 {
		t.Fatalf("want 30, got %v", got)
	}
}

// Property: Mult commutativity within bucket.
func TestBucketsMultCommutative(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: true, DefaultValue: 10}

	ab := []actor.Contribution{mult(0.1, "a"), mult(0.25, "b")}
	ba := []actor.Contribution{mult(0.25, "b"), mult(0.1, "a")}

	v1, err := p.Reduce("d", ab, rule, nil)
	must(t, err)
	v2, err := p.Reduce("d", ba, rule, nil)
	must(t, err)
	if v1 != v2 {
		t.Fatalf("expected commutative mult reduction, got %v vs %v", v1, v2)
	}
}

func TestBucketsOperatorModes(t *testing.T) {
	p := NewBucketProcessor()

	cases := []struct {
		op   actor.Operator
		want float64
	}{
		{actor.OperatorSum, 15},
		{actor.OperatorMax, 10},
		{actor.OperatorMin, 5},
		{actor.OperatorAverage, 7.5},
		{actor.OperatorMultiply, 50},
	}
	contribs := []actor.Contribution{flat(10, "a"), flat(5, "b")}

	for _, c := range cases {
		rule := actor.MergeRule{UsePipeline: false, Operator: c.op}
		got, err := p.Reduce("d", contribs, rule, nil)
		must(t, err)
		if got != c.want {
			t.Errorf("operator %s: want %v, got %v", c.op, c.want, got)
		}
	}
}

// OperatorOverride picks the highest-priority Flat contribution, not a
// BucketOverride contribution (operator mode never sees that bucket).
func TestBucketsOperatorOverride(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: false, Operator: actor.OperatorOverride, DefaultValue: -1}

	contribs := []actor.Contribution{
		{Dimension: "d", Bucket: actor.BucketFlat, Value: 10, Priority: 1, SourceSystem: "a"},
		{Dimension: "d", Bucket: actor.BucketFlat, Value: 20, Priority: 5, SourceSystem: "b"},
		{Dimension: "d", Bucket: actor.BucketFlat, Value: 30, Priority: 5, SourceSystem: "c"},
	}
	got, err := p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if got != 20 {
		t.Fatalf("want highest priority with source_system tiebreak (20), got %v", got)
	}

	got, err = p.Reduce("d", nil, rule, nil)
	must(t, err)
	if got != -1 {
		t.Fatalf("want DefaultValue when no contributions, got %v", got)
	}
}

func TestBucketsExponentialAndLogarithmic(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: true, DefaultValue: 10}

	contribs := []actor.Contribution{
		{Dimension: "d", Bucket: actor.BucketExponential, Value: math.Log(2), SourceSystem: "a"},
	}
	got, err := p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if math.Abs(got-20) > 1e-9 {
		t.Fatalf("want 10*e^ln(2) = 20, got %v", got)
	}

	contribs = []actor.Contribution{
		{Dimension: "d", Bucket: actor.BucketLogarithmic, Value: math.E - 1, SourceSystem: "a"},
	}
	got, err = p.Reduce("d", contribs, rule, nil)
	must(t, err)
	if math.Abs(got-11) > 1e-9 {
		t.Fatalf("want 10+ln(1+(e-1)) = 11, got %v", got)
	}
}

func TestBucketsConditionalOnlyAppliesWhenSatisfied(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: true}
	a := actor.New("actor-1", "Hero", "human", 100)

	satisfied := actor.Contribution{
		Dimension: "d", Bucket: actor.BucketConditional, Value: 5, SourceSystem: "a",
		Predicate: func(*actor.Actor) bool { return true },
	}
	unsatisfied := actor.Contribution{
		Dimension: "d", Bucket: actor.BucketConditional, Value: 100, SourceSystem: "b",
		Predicate: func(*actor.Actor) bool { return false },
	}

	got, err := p.Reduce("d", []actor.Contribution{satisfied, unsatisfied}, rule, a)
	must(t, err)
	if got != 5 {
		t.Fatalf("want only the satisfied predicate's value (5), got %v", got)
	}
}

func TestBucketsNumericOverflow(t *testing.T) {
	p := NewBucketProcessor()
	rule := actor.MergeRule{UsePipeline: true}
	contribs := []actor.Contribution{
		flat(math.MaxFloat64, "a"),
		mult(math.MaxFloat64, "b"),
	}
	_, err := p.Reduce("d", contribs, rule, nil)
	if err == nil {
		t.Fatal("expected NumericOverflow")
	}
	if ae, ok := err.(*AggregateError); !ok || ae.Kind != ErrNumericOverflow {
		t.Fatalf("expected NumericOverflow, got %v", err)
	}
}
