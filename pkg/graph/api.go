package graph

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
)

// Editing operations on top of the ArcGraph core. Every operation keeps the
// graph invariants: each arc end resolves to a live node and every live node
// has at least one incident arc.

// SetEndNode repoints one end of an arc to an existing node. The previous
// node is detached and destroyed if that leaves it with no arcs.
func (g *ArcGraph) SetEndNode(id ArcID, e End, node EndNodeID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.arcs[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	if !e.valid() {
		return fmt.Errorf("%w: %d", ErrInvalidEnd, int(e))
	}
	n, ok := g.nodes[node]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotManaged, node)
	}

	old := a.EndNodes[e]
	if old == node {
		return nil
	}
	a.EndNodes[e] = node
	n.arcs[id] = struct{}{}
	if a.EndNodes[e.Other()] != old {
		g.removeEndNodeLocked(old, id)
	}
	g.locator.invalidate()
	log.Debugf("%v %s end moved from %v to %v", id, e, old, node)
	return nil
}

// DeleteArc removes an arc. End nodes left without arcs are destroyed.
func (g *ArcGraph) DeleteArc(id ArcID) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.arcs[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	for _, nid := range lo.Uniq(a.EndNodes[:]) {
		g.removeEndNodeLocked(nid, id)
	}
	delete(g.arcs, id)
	log.Debugf("deleted %v", id)
	return nil
}

// InsertInteriorPoint inserts p before interior point index. An index equal
// to the number of interior points appends.
func (g *ArcGraph) InsertInteriorPoint(id ArcID, index int, p Vec3) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.arcs[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	if index < 0 || index > len(a.Points) {
		return fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(a.Points))
	}
	a.Points = append(a.Points, Vec3{})
	copy(a.Points[index+1:], a.Points[index:])
	a.Points[index] = p
	return nil
}

// SetInteriorPoints replaces every interior point of an arc.
func (g *ArcGraph) SetInteriorPoints(id ArcID, points []Vec3) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.arcs[id]
	if !ok {
		return fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	a.Points = append([]Vec3(nil), points...)
	return nil
}

// ClearInteriorPoints straightens an arc into a single segment between its
// end nodes.
func (g *ArcGraph) ClearInteriorPoints(id ArcID) error {
	return g.SetInteriorPoints(id, nil)
}

// freeEndsLocked returns the ends of an arc whose node touches no other arc.
func (g *ArcGraph) freeEndsLocked(a *Arc) []End {
	if a.IsClosed() {
		return nil
	}
	var ends []End
	for _, e := range []End{Start, Stop} {
		if len(g.nodes[a.EndNodes[e]].arcs) == 1 {
			ends = append(ends, e)
		}
	}
	return ends
}

// ConnectArcs creates a straight arc between the closest pair of free ends
// of a and b. Connecting an arc to itself closes it through a new arc.
// It fails with ErrFullyConnected when either arc has no free end left.
func (g *ArcGraph) ConnectArcs(a, b ArcID) (ArcID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	arcA, ok := g.arcs[a]
	if !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, a)
	}
	arcB, ok := g.arcs[b]
	if !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, b)
	}

	freeA, freeB := g.freeEndsLocked(arcA), g.freeEndsLocked(arcB)
	if a == b {
		if len(freeA) < 2 {
			return NoArc, fmt.Errorf("%w: %v", ErrFullyConnected, a)
		}
		return g.attachArcLocked(arcA.EndNodes[Stop], arcA.EndNodes[Start], nil), nil
	}
	if len(freeA) == 0 {
		return NoArc, fmt.Errorf("%w: %v", ErrFullyConnected, a)
	}
	if len(freeB) == 0 {
		return NoArc, fmt.Errorf("%w: %v", ErrFullyConnected, b)
	}

	var from, to EndNodeID
	best := math.Inf(1)
	for _, ea := range freeA {
		for _, eb := range freeB {
			na, nb := arcA.EndNodes[ea], arcB.EndNodes[eb]
			if d := g.nodes[na].Position.Dist(g.nodes[nb].Position); d < best {
				from, to, best = na, nb, d
			}
		}
	}
	id := g.attachArcLocked(from, to, nil)
	log.Debugf("connected %v and %v with %v (length %.6g)", a, b, id, best)
	return id, nil
}

// SplitArc turns interior point index into a new end node. The arc keeps the
// points before it; a new arc carries the rest and is returned.
func (g *ArcGraph) SplitArc(id ArcID, index int) (ArcID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	a, ok := g.arcs[id]
	if !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	if index < 0 || index >= len(a.Points) {
		return NoArc, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, index, len(a.Points))
	}

	mid := g.createEndNodeLocked(a.Points[index])
	tail := append([]Vec3(nil), a.Points[index+1:]...)
	oldStop := a.EndNodes[Stop]

	a.Points = a.Points[:index:index]
	a.EndNodes[Stop] = mid
	if a.EndNodes[Start] != oldStop && mid != oldStop {
		delete(g.nodes[oldStop].arcs, id)
	}
	g.nodes[mid].arcs[id] = struct{}{}

	created := g.attachArcLocked(mid, oldStop, tail)
	log.Debugf("split %v at %v into %v", id, mid, created)
	return created, nil
}

// JoinArcs merges b into a across an end node that only the two of them
// touch. The shared node is destroyed, its position kept as an interior
// point, and b is deleted. The surviving id a is returned.
func (g *ArcGraph) JoinArcs(a, b ArcID) (ArcID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	arcA, ok := g.arcs[a]
	if !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, a)
	}
	arcB, ok := g.arcs[b]
	if !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, b)
	}
	if a == b || arcA.IsClosed() || arcB.IsClosed() {
		return NoArc, fmt.Errorf("%w: %v and %v", ErrNotAdjacent, a, b)
	}

	shared := lo.Filter(lo.Intersect(arcA.EndNodes[:], arcB.EndNodes[:]), func(n EndNodeID, _ int) bool {
		return len(g.nodes[n].arcs) == 2
	})
	if len(shared) == 0 {
		return NoArc, fmt.Errorf("%w: %v and %v", ErrNotAdjacent, a, b)
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })
	joint := shared[0]

	// Orient a to end at the joint and b to start there.
	if arcA.EndNodes[Start] == joint {
		reverseArc(arcA)
	}
	if arcB.EndNodes[Stop] == joint {
		reverseArc(arcB)
	}

	far := arcB.EndNodes[Stop]
	points := make([]Vec3, 0, len(arcA.Points)+len(arcB.Points)+1)
	points = append(points, arcA.Points...)
	points = append(points, g.nodes[joint].Position)
	points = append(points, arcB.Points...)
	arcA.Points = points
	arcA.EndNodes[Stop] = far

	delete(g.nodes[far].arcs, b)
	g.nodes[far].arcs[a] = struct{}{}
	delete(g.nodes, joint)
	delete(g.arcs, b)
	g.locator.invalidate()

	log.Debugf("joined %v into %v across %v", b, a, joint)
	return a, nil
}

func reverseArc(a *Arc) {
	a.EndNodes[Start], a.EndNodes[Stop] = a.EndNodes[Stop], a.EndNodes[Start]
	lo.Reverse(a.Points)
}

// GrowSelection returns every arc connected, directly or through other arcs,
// to any of the given arcs, ascending.
func (g *ArcGraph) GrowSelection(ids []ArcID) ([]ArcID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen := make(map[ArcID]struct{})
	queue := make([]ArcID, 0, len(ids))
	for _, id := range ids {
		if _, ok := g.arcs[id]; !ok {
			return nil, fmt.Errorf("%w: %v", ErrNotManaged, id)
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range g.connectedArcsLocked(current) {
			if _, ok := seen[next]; !ok {
				seen[next] = struct{}{}
				queue = append(queue, next)
			}
		}
	}
	return sortedArcIDs(seen), nil
}

// ArcLength returns the length of the arc's polyline.
func (g *ArcGraph) ArcLength(id ArcID) (float64, error) {
	pts, err := g.Polyline(id)
	if err != nil {
		return 0, err
	}
	return polylineLength(pts), nil
}

func polylineLength(pts []Vec3) float64 {
	var total float64
	for i := 1; i < len(pts); i++ {
		total += pts[i].Dist(pts[i-1])
	}
	return total
}
