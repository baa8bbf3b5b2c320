package graph

import (
	"sort"

	"github.com/samber/lo"
)

// EndNode is a shared vertex where one or more arcs meet. EndNodes are owned
// by an ArcGraph; callers only ever see copies returned by lookups.
type EndNode struct {
	ID       EndNodeID
	Position Vec3

	arcs map[ArcID]struct{}
}

func newEndNode(id EndNodeID, pos Vec3) *EndNode {
	return &EndNode{
		ID:       id,
		Position: pos,
		arcs:     make(map[ArcID]struct{}),
	}
}

// Arcs returns the ids of the arcs incident to this node, ascending.
func (n EndNode) Arcs() []ArcID {
	return sortedArcIDs(n.arcs)
}

// Degree returns the number of incident arcs.
func (n EndNode) Degree() int {
	return len(n.arcs)
}

// HasArc reports whether the arc is incident to this node.
func (n EndNode) HasArc(id ArcID) bool {
	_, ok := n.arcs[id]
	return ok
}

// clone returns a deep copy safe to hand out or snapshot.
func (n *EndNode) clone() EndNode {
	c := EndNode{ID: n.ID, Position: n.Position, arcs: make(map[ArcID]struct{}, len(n.arcs))}
	for id := range n.arcs {
		c.arcs[id] = struct{}{}
	}
	return c
}

func sortedArcIDs(set map[ArcID]struct{}) []ArcID {
	ids := lo.Keys(set)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
