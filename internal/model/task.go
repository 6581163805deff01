// SPDX-License-Identifier: MIT
// Copyright (c) 2026 Nikita Kholin

package model

// Dependency is one entry of a task's dependency list: a symbolic key naming
// another task, plus the relationship kind.
type Dependency struct {
	Key  string
	Kind EdgeKind
}

// TaskRecord is one unit of work as supplied by the caller.
//
// Key is the human-authored symbolic reference ("5.1a", "3.2b.2") used by
// other records to point at this one. The engine resolves keys to internal
// node identifiers during graph construction; it never invents keys.
type TaskRecord struct {
	Key   string
	Title string

	// PriorityClass ranges 1 (critical) to 5 (low). Zero means the caller did
	// not set one; graph construction substitutes the default class.
	PriorityClass int

	// Effort is a positive duration estimate in caller-defined units. Zero or
	// negative means "not estimated" and is treated as 1 during analysis.
	Effort float64

	// Phase optionally orders a multi-phase lifecycle (1=analysis,
	// 2=implementation, 3=verification). Zero means unset.
	Phase int

	DependsOn []Dependency
}

// DefaultPriorityClass is substituted when a record carries no class.
const DefaultPriorityClass = 3

// Class returns the record's priority class clamped to the valid 1..5 range,
// substituting the default for the zero value.
func (t TaskRecord) Class() int {
	switch {
	case t.PriorityClass == 0:
		return DefaultPriorityClass
	case t.PriorityClass < 1:
		return 1
	case t.PriorityClass > 5:
		return 5
	default:
		return t.PriorityClass
	}
}

// Weight returns the record's effort estimate with the documented default:
// absent or non-positive estimates count as 1.
func (t TaskRecord) Weight() float64 {
	if t.Effort > 0 {
		return t.Effort
	}
	return 1
}
