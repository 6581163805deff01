// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

package graph

import "github.com/nk/planweave/internal/model"

// NodeID is the stable internal identifier of a task within one Snapshot: its
// index in the canonical node ordering. IDs are only meaningful relative to
// the snapshot that produced them.
type NodeID int

// Node is one resolved task inside a Snapshot.
type Node struct {
	ID    NodeID
	Key   string
	Title string

	// Class is the priority class, already defaulted and clamped to 1..5.
	Class int

	// Effort is the raw caller-supplied estimate; Weight applies the default.
	Effort float64

	// Phase is the workflow phase order, zero when unset.
	Phase int
}

// Weight returns the node's duration for analysis purposes. Absent or
// non-positive estimates count as 1.
func (n *Node) Weight() float64 {
	if n.Effort > 0 {
		return n.Effort
	}
	return 1
}

// Edge is a resolved dependency relationship: From requires To. In walk terms
// the edge points from a task to the task it waits on, so following edges
// leads toward work that must finish earlier.
type Edge struct {
	From NodeID
	To   NodeID
	Kind model.EdgeKind
}

// Snapshot is an immutable view of the dependency graph at one point in time.
//
// All slices are frozen at Build time; concurrent reads never race. Mutation
// means building a brand-new Snapshot with a higher MutationID.
type Snapshot struct {
	MutationID uint64

	nodes []*Node
	byKey map[string]NodeID

	// deps and dependents cover blocking edges only, both sorted ascending.
	// deps[n] lists what n waits on; dependents[n] lists who waits on n.
	deps       [][]NodeID
	dependents [][]NodeID

	// edges retains every kind, canonically ordered, for diagnostics.
	edges []Edge
}

// Len returns the number of nodes.
func (s *Snapshot) Len() int { return len(s.nodes) }

// Node returns the node with the given ID, or nil when out of range.
func (s *Snapshot) Node(id NodeID) *Node {
	if id < 0 || int(id) >= len(s.nodes) {
		return nil
	}
	return s.nodes[id]
}

// NodeByKey resolves a symbolic key to its node.
func (s *Snapshot) NodeByKey(key string) (*Node, bool) {
	id, ok := s.byKey[key]
	if !ok {
		return nil, false
	}
	return s.nodes[id], true
}

// Nodes returns the nodes in canonical (ascending key) order.
func (s *Snapshot) Nodes() []*Node {
	out := make([]*Node, len(s.nodes))
	copy(out, s.nodes)
	return out
}

// Deps returns the blocking dependencies of id: the tasks id waits on.
func (s *Snapshot) Deps(id NodeID) []NodeID {
	out := make([]NodeID, len(s.deps[id]))
	copy(out, s.deps[id])
	return out
}

// Dependents returns the tasks that wait on id.
func (s *Snapshot) Dependents(id NodeID) []NodeID {
	out := make([]NodeID, len(s.dependents[id]))
	copy(out, s.dependents[id])
	return out
}

// InDegree returns the number of blocking dependencies of id. A node is ready
// when this reaches zero.
func (s *Snapshot) InDegree(id NodeID) int { return len(s.deps[id]) }

// OutDegree returns how many tasks wait on id (its unblock count).
func (s *Snapshot) OutDegree(id NodeID) int { return len(s.dependents[id]) }

// Edges returns every resolved edge of every kind in canonical order.
func (s *Snapshot) Edges() []Edge {
	out := make([]Edge, len(s.edges))
	copy(out, s.edges)
	return out
}

// Keys maps node IDs to their symbolic keys, preserving order.
func (s *Snapshot) Keys(ids []NodeID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = s.nodes[id].Key
	}
	return out
}
