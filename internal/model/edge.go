package model

import "fmt"

// EdgeKind classifies a dependency relationship.
//
// Only Blocking edges gate execution: they feed in-degree computation, cycle
// validation and scheduling. Related and Optional edges are advisory; they may
// legally form cycles and the scheduler ignores them.
type EdgeKind int

const (
	Blocking EdgeKind = iota
	Related
	Optional
)

// String returns the wire spelling of the kind.
func (k EdgeKind) String() string {
	switch k {
	case Blocking:
		return "blocking"
	case Related:
		return "related"
	case Optional:
		return "optional"
	default:
		return fmt.Sprintf("EdgeKind(%d)", int(k))
	}
}

// ParseEdgeKind maps a wire spelling to an EdgeKind. The empty string maps to
// Blocking, which is the default kind for a bare dependency reference.
func ParseEdgeKind(s string) (EdgeKind, error) {
	switch s {
	case "", "blocking":
		return Blocking, nil
	case "related":
		return Related, nil
	case "optional":
		return Optional, nil
	default:
		return Blocking, fmt.Errorf("unknown edge kind %q", s)
	}
}
