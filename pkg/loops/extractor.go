package loops

import (
	"math"
	"sort"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/samber/lo"
)

// step is one directed traversal of an arc: entered at exit.Other(), left
// at exit.
type step struct {
	arc  graph.ArcID
	exit graph.End
}

// candidate is an arc reachable from the node a frame exits through.
type candidate struct {
	arc   graph.ArcID
	entry graph.End // end of arc at the shared node
	angle float64   // counter-clockwise turn from the incoming arc, [0, 2π)
}

func (c candidate) step() step { return step{arc: c.arc, exit: c.entry.Other()} }

// frame is one level of the explicit DFS stack.
type frame struct {
	step
	cands  []candidate
	cursor int
}

// Extractor discovers the closed loops formed by the arcs of a view.
//
// Every arc can be walked in two directions and each direction is consumed
// by at most one loop. A walk never enters a consumed direction, so the
// extractor itself cannot use an arc a third time; Classify still rejects
// any loop list that does with ErrTooManyLoopUses. The walk always takes
// the smallest counter-clockwise turn first, which traces bounded faces
// clockwise. Walks that close counter-clockwise trace the exterior of a
// connected component; they consume their directions but are not reported.
type Extractor struct {
	view  *graph.View
	used  map[graph.ArcID]*[2]bool
	depth map[graph.ArcID]int
	loops []Loop
	done  bool
}

// NewExtractor returns an extractor over a view.
func NewExtractor(v *graph.View) *Extractor {
	x := &Extractor{
		view:  v,
		used:  make(map[graph.ArcID]*[2]bool, v.Len()),
		depth: make(map[graph.ArcID]int),
	}
	for _, id := range v.ArcIDs() {
		x.used[id] = new([2]bool)
	}
	return x
}

// Uses returns how many loop traversals have consumed the arc (0, 1 or 2).
func (x *Extractor) Uses(id graph.ArcID) int {
	u, ok := x.used[id]
	if !ok {
		return 0
	}
	return lo.Count(u[:], true)
}

// Loops runs the traversal once and returns every bounded loop in discovery
// order. Later calls return the same result.
func (x *Extractor) Loops() []Loop {
	if x.done {
		return x.loops
	}

	for _, id := range x.view.ArcIDs() {
		a, _ := x.view.Arc(id)
		if a.IsClosed() {
			x.emitClosed(a)
			continue
		}
		if !x.canStart(a) {
			log.Tracef("%v dangles, skipped", id)
			continue
		}
		for _, exit := range []graph.End{graph.Stop, graph.Start} {
			for !x.used[id][exit] {
				if !x.search(step{arc: id, exit: exit}) {
					break
				}
			}
		}
	}

	x.done = true
	log.Debugf("found %d loops over %d arcs", len(x.loops), x.view.Len())
	return x.loops
}

// emitClosed reports an arc closed on itself as a one-arc loop. Both of
// its directions are consumed.
func (x *Extractor) emitClosed(a graph.Arc) {
	u := x.used[a.ID]
	if u[graph.Start] || u[graph.Stop] {
		return
	}
	u[graph.Start], u[graph.Stop] = true, true
	x.loops = append(x.loops, Loop{
		Arcs:    []graph.ArcID{a.ID},
		Forward: []bool{true},
		Bounds:  x.view.Bounds(a.ID),
	})
	log.Debugf("closed %v is a loop", a.ID)
}

// canStart reports whether another open arc meets a at both of its ends.
func (x *Extractor) canStart(a graph.Arc) bool {
	for _, e := range []graph.End{graph.Start, graph.Stop} {
		if len(x.openArcsAt(a.End(e), a.ID)) == 0 {
			return false
		}
	}
	return true
}

func (x *Extractor) openArcsAt(n graph.EndNodeID, exclude graph.ArcID) []graph.ArcID {
	return lo.Filter(x.view.ArcsAt(n), func(id graph.ArcID, _ int) bool {
		if id == exclude {
			return false
		}
		a, _ := x.view.Arc(id)
		return !a.IsClosed()
	})
}

// candidates lists the arcs leaving the node s exits through, ordered by
// (angle, arc id, end).
func (x *Extractor) candidates(s step) []candidate {
	a, _ := x.view.Arc(s.arc)
	node := a.End(s.exit)
	tv, _ := x.view.EndDirection(s.arc, s.exit)

	var cands []candidate
	for _, id := range x.openArcsAt(node, s.arc) {
		w, _ := x.view.Arc(id)
		entry, _ := w.EndAt(node)
		tw, _ := x.view.EndDirection(id, entry)
		angle := math.Atan2(tv.Cross2(tw), tv.Dot2(tw))
		if angle < 0 {
			angle += 2 * math.Pi
		}
		cands = append(cands, candidate{arc: id, entry: entry, angle: angle})
	}
	sort.Slice(cands, func(i, j int) bool {
		ci, cj := cands[i], cands[j]
		if ci.angle != cj.angle {
			return ci.angle < cj.angle
		}
		if ci.arc != cj.arc {
			return ci.arc < cj.arc
		}
		return ci.entry < cj.entry
	})
	return cands
}

// search runs one DFS from start. It stops at the first back-edge, commits
// the cycle it closes and reports true; it reports false when every branch
// dead-ends.
func (x *Extractor) search(start step) bool {
	stack := []*frame{{step: start, cands: x.candidates(start)}}
	x.depth[start.arc] = 0
	defer func() {
		for _, f := range stack {
			delete(x.depth, f.arc)
		}
	}()

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.cursor >= len(top.cands) {
			delete(x.depth, top.arc)
			stack = stack[:len(stack)-1]
			continue
		}
		c := top.cands[top.cursor]
		top.cursor++

		next := c.step()
		if x.used[next.arc][next.exit] {
			continue
		}

		if pos, onStack := x.depth[c.arc]; onStack {
			node := x.endNode(top.step, top.exit)
			from := pos
			if x.endNode(stack[pos].step, stack[pos].exit) == node {
				// The stacked arc leaves through this node; the cycle
				// starts right after it.
				from = pos + 1
			}
			steps := make([]step, 0, len(stack)-from)
			for _, f := range stack[from:] {
				steps = append(steps, f.step)
			}
			x.commit(steps)
			return true
		}

		x.depth[next.arc] = len(stack)
		stack = append(stack, &frame{step: next, cands: x.candidates(next)})
	}
	return false
}

func (x *Extractor) endNode(s step, e graph.End) graph.EndNodeID {
	a, _ := x.view.Arc(s.arc)
	return a.End(e)
}

// commit consumes the directions of a closed walk, none of which search
// lets it reuse. Clockwise walks are kept as loops and reported true; the
// rest are component exteriors and only consumed.
func (x *Extractor) commit(steps []step) bool {
	for _, s := range steps {
		x.used[s.arc][s.exit] = true
	}

	l := Loop{
		Arcs:    make([]graph.ArcID, len(steps)),
		Forward: make([]bool, len(steps)),
		Bounds:  graph.EmptyBox(),
	}
	for i, s := range steps {
		l.Arcs[i] = s.arc
		l.Forward[i] = s.exit == graph.Stop
		l.Bounds = l.Bounds.Extend(x.view.Bounds(s.arc))
	}

	if area := SignedArea(x.ring(l)); area >= 0 {
		log.Tracef("discarded exterior walk %v (area %.6g)", l, area)
		return false
	}
	l = l.rotateToMin()
	x.loops = append(x.loops, l)
	log.Debugf("loop %v bounds %v", l, l.Bounds)
	return true
}

// ring returns the loop's points in walk order without the closing
// duplicate.
func (x *Extractor) ring(l Loop) []graph.Vec3 {
	var pts []graph.Vec3
	for i, id := range l.Arcs {
		p := x.view.Polyline(id)
		if !l.Forward[i] {
			p = lo.Reverse(append([]graph.Vec3(nil), p...))
		}
		pts = append(pts, p[:len(p)-1]...)
	}
	return pts
}

// SignedArea returns the shoelace area of a closed ring in the XY plane.
// It is positive for counter-clockwise rings.
func SignedArea(ring []graph.Vec3) float64 {
	var sum float64
	for i := range ring {
		p, q := ring[i], ring[(i+1)%len(ring)]
		sum += p.X*q.Y - q.X*p.Y
	}
	return sum / 2
}

// Extract finds and classifies the loops of a view.
func Extract(v *graph.View) (LoopSet, error) {
	return Classify(NewExtractor(v).Loops())
}

// ExtractArcs snapshots the given arcs of g and extracts their loops.
func ExtractArcs(g *graph.ArcGraph, ids []graph.ArcID) (LoopSet, error) {
	v, err := g.ScopedView(ids)
	if err != nil {
		return LoopSet{}, err
	}
	return Extract(v)
}
