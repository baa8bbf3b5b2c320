package loops

import (
	"fmt"
	"strings"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/samber/lo"
)

// Loop is a cyclic sequence of arcs in which consecutive arcs share an end
// node, the last arc closing back onto the first. Forward[i] reports whether
// Arcs[i] is walked from its Start end to its Stop end.
type Loop struct {
	Arcs    []graph.ArcID
	Forward []bool
	Bounds  graph.Box
}

// Len returns the number of arcs in the loop.
func (l Loop) Len() int { return len(l.Arcs) }

// Contains reports whether the arc is part of the loop.
func (l Loop) Contains(id graph.ArcID) bool {
	return lo.Contains(l.Arcs, id)
}

// MinArc returns the smallest arc id of the loop.
func (l Loop) MinArc() graph.ArcID {
	if len(l.Arcs) == 0 {
		return graph.NoArc
	}
	return lo.Min(l.Arcs)
}

func (l Loop) String() string {
	parts := make([]string, len(l.Arcs))
	for i, id := range l.Arcs {
		dir := "+"
		if !l.Forward[i] {
			dir = "-"
		}
		parts[i] = fmt.Sprintf("%s%d", dir, int64(id))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

// rotateToMin rotates the loop so it starts at its smallest arc id. The
// cyclic order is unchanged.
func (l Loop) rotateToMin() Loop {
	if len(l.Arcs) < 2 {
		return l
	}
	k := lo.IndexOf(l.Arcs, l.MinArc())
	l.Arcs = append(append([]graph.ArcID(nil), l.Arcs[k:]...), l.Arcs[:k]...)
	l.Forward = append(append([]bool(nil), l.Forward[k:]...), l.Forward[:k]...)
	return l
}

// LoopSet is the classified result of loop extraction: one outer boundary
// and zero or more holes.
type LoopSet struct {
	Outer Loop
	Inner []Loop

	// Ambiguous is set when the loops do not nest inside a single outer
	// box, so Outer was chosen by area and may not enclose every hole.
	Ambiguous bool
}

// All returns the outer loop followed by the inner loops.
func (s LoopSet) All() []Loop {
	return append([]Loop{s.Outer}, s.Inner...)
}

// Len returns the total number of loops.
func (s LoopSet) Len() int { return 1 + len(s.Inner) }

func (s LoopSet) String() string {
	inner := lo.Map(s.Inner, func(l Loop, _ int) string { return l.String() })
	str := fmt.Sprintf("outer %v inner [%s]", s.Outer, strings.Join(inner, " "))
	if s.Ambiguous {
		str += " (ambiguous)"
	}
	return str
}
