// Package graph resolves symbolic task references into an immutable,
// validated dependency snapshot.
//
// It is intentionally split into:
//   - Construction (Build): key resolution, canonical ordering, adjacency and
//     degree tables, batch defect reporting
//   - Structural analysis: cycle detection and strongly connected components
//     over blocking edges, both iterative so deep graphs cannot exhaust the
//     call stack
//   - Condensation: collapsing cycle members into super-nodes for best-effort
//     scheduling
//
// A Snapshot is never mutated after Build returns; every derived artifact
// downstream (critical path map, scores) is keyed by the snapshot's
// MutationID and recomputed for the next snapshot rather than patched.
package graph
