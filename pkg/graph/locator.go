package graph

import (
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
)

const (
	// locatorTolerance pads point entries so every rectangle in the tree has
	// a non-degenerate extent.
	locatorTolerance = 1e-9

	locatorMinChildren = 2
	locatorMaxChildren = 16
)

// nodeEntry is the rtreego record for one end node position.
type nodeEntry struct {
	id   EndNodeID
	pos  Vec3
	rect rtreego.Rect
}

func (e *nodeEntry) Bounds() rtreego.Rect { return e.rect }

func toPoint(p Vec3) rtreego.Point {
	return rtreego.Point{p.X, p.Y, p.Z}
}

// locator is a spatial index over end node positions. It is rebuilt in
// bulk on the first query after invalidate; mutations never touch the tree.
type locator struct {
	tree     *rtreego.Rtree
	dirty    bool
	rebuilds int
}

func newLocator() *locator {
	return &locator{dirty: true}
}

// invalidate marks the tree stale. Must be called on every change to a node
// position or to the set of live nodes.
func (l *locator) invalidate() {
	l.dirty = true
}

func (l *locator) rebuild(nodes map[EndNodeID]*EndNode) {
	ids := make([]EndNodeID, 0, len(nodes))
	for id := range nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	objs := make([]rtreego.Spatial, 0, len(ids))
	for _, id := range ids {
		n := nodes[id]
		objs = append(objs, &nodeEntry{
			id:   id,
			pos:  n.Position,
			rect: toPoint(n.Position).ToRect(locatorTolerance),
		})
	}
	l.tree = rtreego.NewTree(3, locatorMinChildren, locatorMaxChildren, objs...)
	l.dirty = false
	l.rebuilds++
	log.Tracef("rebuilt end node locator (%d nodes, rebuild %d)", len(objs), l.rebuilds)
}

// nearest returns the node closest to p within radius, ignoring exclude.
// Ties on distance go to the lower id. A zero radius finds exact matches.
func (l *locator) nearest(nodes map[EndNodeID]*EndNode, p Vec3, radius float64, exclude EndNodeID) (EndNodeID, bool) {
	if l.dirty || l.tree == nil {
		l.rebuild(nodes)
	}

	hits := l.tree.SearchIntersect(toPoint(p).ToRect(radius + locatorTolerance))
	best, bestDist := NoEndNode, math.Inf(1)
	for _, h := range hits {
		e := h.(*nodeEntry)
		if e.id == exclude {
			continue
		}
		d := e.pos.Dist(p)
		if d > radius {
			continue
		}
		if d < bestDist || (d == bestDist && e.id < best) {
			best, bestDist = e.id, d
		}
	}
	return best, best != NoEndNode
}
