// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

// Package score assigns every task a deterministic priority value.
//
// A score is a weighted sum of five normalized signals: urgency (inverted
// priority class), value density (urgency per unit of effort), unblock count
// (how many tasks wait on this one), critical path contribution (completion
// depth), and a workflow phase bonus. The weights are configuration, not
// constants: in particular the direction of the value-density signal is a
// policy decision the caller makes by choosing its weight's sign.
//
// Identical inputs always produce identical scores; nothing here consults
// the clock, random state, or map iteration order.
package score

import (
	"github.com/nk/planweave/internal/critpath"
	"github.com/nk/planweave/internal/graph"
)

// Weights configures the scoring formula. Each field multiplies the signal of
// the same name; PhaseTable maps a workflow phase order to its bonus, phases
// without an entry contribute nothing.
type Weights struct {
	Urgency      float64
	ValueDensity float64
	UnblockCount float64
	CriticalPath float64
	PhaseBonus   float64

	PhaseTable map[int]float64
}

// DefaultWeights returns the urgency-dominant default policy. Value density
// carries a positive weight: between two equally urgent tasks the cheaper one
// floats up. Callers preferring the inverse reward-the-big-rock ordering set
// a negative ValueDensity weight instead.
func DefaultWeights() Weights {
	return Weights{
		Urgency:      10,
		ValueDensity: 2,
		UnblockCount: 1.5,
		CriticalPath: 0.5,
		PhaseBonus:   1,
		PhaseTable:   map[int]float64{1: 2, 2: 1, 3: 0.5},
	}
}

// Compute scores a single node against its snapshot and critical path map.
// Pure and deterministic: same inputs, same score.
func Compute(s *graph.Snapshot, cp critpath.Map, w Weights, id graph.NodeID) float64 {
	n := s.Node(id)

	urgency := float64(6 - n.Class)
	weight := n.Weight()
	if weight < 1 {
		weight = 1
	}
	valueDensity := urgency / weight
	unblock := float64(s.OutDegree(id))
	critical := cp.Depth(id)

	var phaseBonus float64
	if n.Phase > 0 {
		phaseBonus = w.PhaseTable[n.Phase]
	}

	return w.Urgency*urgency +
		w.ValueDensity*valueDensity +
		w.UnblockCount*unblock +
		w.CriticalPath*critical +
		w.PhaseBonus*phaseBonus
}

// ComputeAll scores every node, indexed by NodeID.
func ComputeAll(s *graph.Snapshot, cp critpath.Map, w Weights) []float64 {
	out := make([]float64, s.Len())
	for id := range out {
		out[id] = Compute(s, cp, w, graph.NodeID(id))
	}
	return out
}

// Less reports whether a should be emitted before b: higher score first, then
// the fixed tie-break that keeps scheduling output reproducible: ascending
// priority class, ascending effort, lexicographic symbolic key.
func Less(s *graph.Snapshot, scores []float64, a, b graph.NodeID) bool {
	if scores[a] != scores[b] {
		return scores[a] > scores[b]
	}
	na, nb := s.Node(a), s.Node(b)
	if na.Class != nb.Class {
		return na.Class < nb.Class
	}
	if na.Weight() != nb.Weight() {
		return na.Weight() < nb.Weight()
	}
	return na.Key < nb.Key
}
