package graph

import (
	"fmt"
	"sort"

	"github.com/samber/lo"
)

// View is a read-only projection of an ArcGraph restricted to an explicit
// subset of arcs and the end nodes they touch. It is a snapshot taken by
// value: later mutations of the graph are not visible through it and it
// allocates no ids in the graph.
type View struct {
	ids   []ArcID
	arcs  map[ArcID]Arc
	nodes map[EndNodeID]EndNode
}

// ScopedView snapshots the given arcs. Duplicate ids are ignored. It fails
// with ErrNotManaged if any id is unknown to the graph.
func (g *ArcGraph) ScopedView(ids []ArcID) (*View, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	ids = lo.Uniq(ids)
	v := &View{
		ids:   make([]ArcID, 0, len(ids)),
		arcs:  make(map[ArcID]Arc, len(ids)),
		nodes: make(map[EndNodeID]EndNode),
	}
	for _, id := range ids {
		a, ok := g.arcs[id]
		if !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotManaged, id)
		}
		v.ids = append(v.ids, id)
		v.arcs[id] = a.clone()
	}
	sort.Slice(v.ids, func(i, j int) bool { return v.ids[i] < v.ids[j] })

	// Node incidence is restricted to arcs inside the view.
	for _, id := range v.ids {
		for _, nid := range v.arcs[id].EndNodes {
			n, ok := v.nodes[nid]
			if !ok {
				n = EndNode{ID: nid, Position: g.nodes[nid].Position, arcs: make(map[ArcID]struct{})}
				v.nodes[nid] = n
			}
			n.arcs[id] = struct{}{}
		}
	}
	return v, nil
}

// FullView snapshots every arc in the graph.
func (g *ArcGraph) FullView() *View {
	v, _ := g.ScopedView(g.ArcIDs())
	return v
}

// ArcIDs returns the arcs in the view, ascending.
func (v *View) ArcIDs() []ArcID {
	return append([]ArcID(nil), v.ids...)
}

// Len returns the number of arcs in the view.
func (v *View) Len() int { return len(v.ids) }

// Contains reports whether the arc is part of the view.
func (v *View) Contains(id ArcID) bool {
	_, ok := v.arcs[id]
	return ok
}

// Arc returns the snapshot of an arc in the view.
func (v *View) Arc(id ArcID) (Arc, bool) {
	a, ok := v.arcs[id]
	if !ok {
		return Arc{}, false
	}
	return a.clone(), true
}

// EndNode returns the snapshot of a node touched by the view. Its incident
// set only lists arcs inside the view.
func (v *View) EndNode(id EndNodeID) (EndNode, bool) {
	n, ok := v.nodes[id]
	if !ok {
		return EndNode{}, false
	}
	return n.clone(), true
}

// Position returns the position of a node touched by the view.
func (v *View) Position(id EndNodeID) Vec3 {
	return v.nodes[id].Position
}

// ArcsAt returns the in-view arcs incident to a node, ascending.
func (v *View) ArcsAt(id EndNodeID) []ArcID {
	n, ok := v.nodes[id]
	if !ok {
		return nil
	}
	return sortedArcIDs(n.arcs)
}

// EndDirection returns the tangent of an in-view arc at the given end.
func (v *View) EndDirection(id ArcID, e End) (Vec3, error) {
	a, ok := v.arcs[id]
	if !ok {
		return Vec3{}, fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	if !e.valid() {
		return Vec3{}, fmt.Errorf("%w: %d", ErrInvalidEnd, int(e))
	}
	return endDirection(a, e, v.Position(a.EndNodes[Start]), v.Position(a.EndNodes[Stop])), nil
}

// Polyline returns the full point sequence of an in-view arc.
func (v *View) Polyline(id ArcID) []Vec3 {
	a, ok := v.arcs[id]
	if !ok {
		return nil
	}
	return a.polyline(v.Position(a.EndNodes[Start]), v.Position(a.EndNodes[Stop]))
}

// Bounds returns the bounding box of an arc's points, end nodes included.
func (v *View) Bounds(id ArcID) Box {
	return BoxOf(v.Polyline(id)...)
}
