// Package engine implements the stat-aggregation pipeline: given an actor and
// its attached subsystems, it produces a Snapshot of final per-dimension
// values and effective caps.
//
// # Pipeline
//
//	Actor + Subsystems  →  Registry  →  Collector  →  Buckets  →  Caps  →  Snapshot
//	                        (order)      (contribute)  (reduce)   (clamp)
//
//	┌─────────────┐   ┌───────────┐   ┌────────┐   ┌──────┐
//	│ Registry    │──▶│ Collector │──▶│Buckets │──▶│ Caps │──▶ Snapshot
//	│ (ordering)  │   │(sequential│   │(reduce │   │(clamp│
//	│             │   │  calls)   │   │ to f64)│   │  )   │
//	└─────────────┘   └───────────┘   └────────┘   └──────┘
//
// Aggregator composes all four behind Resolve(ctx, actor), and delegates
// memoization to the cache package, which fingerprints actor and subsystem
// versions and guarantees single-flight computation per fingerprint.
//
// Subsystem calls within one Resolve are sequential and ordered by ascending
// priority then ascending system_id; this ordering is a correctness
// requirement because later buckets in the reduction pipeline depend on
// contribution order within a dimension. Bucket reduction and cap resolution
// are purely computational and never suspend.
package engine
