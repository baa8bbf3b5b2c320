package graph

import (
	"fmt"
	"math"
	"sort"
	"sync"
)

// DefaultSnapRadius is the default end node snap tolerance in model units.
const DefaultSnapRadius = 1e-3

// Config holds the externally tunable parameters of an ArcGraph.
type Config struct {
	SnapRadius  float64 `json:"snap_radius"`
	UseSnapping bool    `json:"use_snapping"`
}

// DefaultConfig returns snapping enabled at DefaultSnapRadius.
func DefaultConfig() Config {
	return Config{
		SnapRadius:  DefaultSnapRadius,
		UseSnapping: true,
	}
}

// Validate reports whether the configuration is usable.
func (c Config) Validate() error {
	if math.IsNaN(c.SnapRadius) || math.IsInf(c.SnapRadius, 0) || c.SnapRadius < 0 {
		return fmt.Errorf("%w: snap radius %v", ErrInvalidConfig, c.SnapRadius)
	}
	return nil
}

// radius is the distance within which two positions are the same node.
// With snapping disabled only exact matches count.
func (c Config) radius() float64 {
	if !c.UseSnapping {
		return 0
	}
	return c.SnapRadius
}

// ArcGraph owns every EndNode and Arc of one editing session. All references
// held outside the graph are ids; lookups return copies.
//
// ArcGraph is safe for concurrent use: every operation is serialised on an
// internal mutex. Loop extraction runs against a ScopedView snapshot and so
// never observes a half-applied mutation.
type ArcGraph struct {
	mu sync.Mutex

	cfg   Config
	arcs  map[ArcID]*Arc
	nodes map[EndNodeID]*EndNode

	lastArc  ArcID
	lastNode EndNodeID

	locator *locator
}

// New creates an empty ArcGraph with the default configuration.
func New() *ArcGraph {
	g, _ := NewWithConfig(DefaultConfig())
	return g
}

// NewWithConfig creates an empty ArcGraph with the given configuration.
func NewWithConfig(cfg Config) (*ArcGraph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ArcGraph{
		cfg:     cfg,
		arcs:    make(map[ArcID]*Arc),
		nodes:   make(map[EndNodeID]*EndNode),
		locator: newLocator(),
	}, nil
}

// Config returns the active configuration.
func (g *ArcGraph) Config() Config {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.cfg
}

// SetConfig replaces the configuration. Existing nodes are not re-snapped;
// the new radius applies to subsequent creates and moves.
func (g *ArcGraph) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.cfg = cfg
	return nil
}

// ---------------------------------------------------------------------------
// Lookups
// ---------------------------------------------------------------------------

// Arc returns a copy of the arc with the given id.
func (g *ArcGraph) Arc(id ArcID) (Arc, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.arcs[id]
	if !ok {
		return Arc{}, false
	}
	return a.clone(), true
}

// EndNode returns a copy of the end node with the given id.
func (g *ArcGraph) EndNode(id EndNodeID) (EndNode, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return EndNode{}, false
	}
	return n.clone(), true
}

// ArcIDs returns every live arc id, ascending.
func (g *ArcGraph) ArcIDs() []ArcID {
	g.mu.Lock()
	defer g.mu.Unlock()
	ids := make([]ArcID, 0, len(g.arcs))
	for id := range g.arcs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// EndNodeIDs returns every live end node id, ascending.
func (g *ArcGraph) EndNodeIDs() []EndNodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endNodeIDsLocked()
}

func (g *ArcGraph) endNodeIDsLocked() []EndNodeID {
	ids := make([]EndNodeID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ArcCount returns the number of live arcs.
func (g *ArcGraph) ArcCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.arcs)
}

// EndNodeCount returns the number of live end nodes.
func (g *ArcGraph) EndNodeCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.nodes)
}

// Polyline returns the arc's full point sequence, end nodes included.
func (g *ArcGraph) Polyline(id ArcID) ([]Vec3, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.arcs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	return a.polyline(g.nodes[a.EndNodes[Start]].Position, g.nodes[a.EndNodes[Stop]].Position), nil
}

// ---------------------------------------------------------------------------
// End nodes
// ---------------------------------------------------------------------------

// CreateEndNode returns the id of a node at pos. An existing node within the
// snap radius (exact match when snapping is off) is reused; otherwise a new
// node is allocated. A new node has no incident arcs until one is attached.
func (g *ArcGraph) CreateEndNode(pos Vec3) EndNodeID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.createEndNodeLocked(pos)
}

func (g *ArcGraph) createEndNodeLocked(pos Vec3) EndNodeID {
	if id, ok := g.locator.nearest(g.nodes, pos, g.cfg.radius(), NoEndNode); ok {
		log.Tracef("snapped %v onto %v", pos, id)
		return id
	}
	g.lastNode++
	id := g.lastNode
	g.nodes[id] = newEndNode(id, pos)
	g.locator.invalidate()
	return id
}

// FindEndNode returns the node the graph would snap pos onto, if any.
func (g *ArcGraph) FindEndNode(pos Vec3) (EndNodeID, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.locator.nearest(g.nodes, pos, g.cfg.radius(), NoEndNode)
}

// MergeEndNodes unifies a and b into a, which keeps its position. Every arc
// that referenced b is repointed to a. Returns NoEndNode and ErrNotManaged if
// either id is unknown.
func (g *ArcGraph) MergeEndNodes(a, b EndNodeID) (EndNodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.mergeLocked(a, b)
}

func (g *ArcGraph) mergeLocked(a, b EndNodeID) (EndNodeID, error) {
	na, ok := g.nodes[a]
	if !ok {
		return NoEndNode, fmt.Errorf("%w: %v", ErrNotManaged, a)
	}
	nb, ok := g.nodes[b]
	if !ok {
		return NoEndNode, fmt.Errorf("%w: %v", ErrNotManaged, b)
	}
	if a == b {
		return a, nil
	}

	for arcID := range nb.arcs {
		arc := g.arcs[arcID]
		for e := range arc.EndNodes {
			if arc.EndNodes[e] == b {
				arc.EndNodes[e] = a
			}
		}
		na.arcs[arcID] = struct{}{}
	}
	delete(g.nodes, b)
	g.locator.invalidate()

	log.Debugf("merged %v into %v (%d arcs)", b, a, len(na.arcs))
	return a, nil
}

// MoveEndNode moves a node to pos. If pos lies within the snap radius of
// another node, id is merged into the nearest such node, which then takes
// pos as its position; any further node left within the radius of pos is
// merged into it as well. The surviving id is returned and callers must
// re-resolve any reference to id afterwards.
func (g *ArcGraph) MoveEndNode(id EndNodeID, pos Vec3) (EndNodeID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	n, ok := g.nodes[id]
	if !ok {
		return NoEndNode, fmt.Errorf("%w: %v", ErrNotManaged, id)
	}

	// Every other node is still where the locator last saw it, so the query
	// can run before the index is invalidated.
	other, ok := g.locator.nearest(g.nodes, pos, g.cfg.radius(), id)
	if !ok {
		n.Position = pos
		g.locator.invalidate()
		return id, nil
	}

	log.Debugf("move of %v to %v snaps onto %v", id, pos, other)
	survivor, err := g.mergeLocked(other, id)
	if err != nil {
		return NoEndNode, err
	}
	g.nodes[survivor].Position = pos
	g.locator.invalidate()

	for {
		extra, ok := g.locator.nearest(g.nodes, pos, g.cfg.radius(), survivor)
		if !ok {
			return survivor, nil
		}
		if _, err := g.mergeLocked(survivor, extra); err != nil {
			return NoEndNode, err
		}
	}
}

// RemoveEndNode detaches arcID from node id. When the node's incident set
// becomes empty the node is destroyed. It reports false if either id is not
// managed or the arc was not incident to the node.
//
// This is the low-level half of re-pointing an arc end; SetEndNode and
// DeleteArc use it and keep every arc end resolvable.
func (g *ArcGraph) RemoveEndNode(id EndNodeID, arcID ArcID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeEndNodeLocked(id, arcID)
}

func (g *ArcGraph) removeEndNodeLocked(id EndNodeID, arcID ArcID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return false
	}
	if _, ok := n.arcs[arcID]; !ok {
		return false
	}
	delete(n.arcs, arcID)
	if len(n.arcs) == 0 {
		delete(g.nodes, id)
		g.locator.invalidate()
		log.Tracef("destroyed %v", id)
	}
	return true
}

// ---------------------------------------------------------------------------
// Arcs
// ---------------------------------------------------------------------------

// CreateArc creates an arc with the given interior points whose ends are
// placed at start and stop. End nodes snap onto existing nodes; when both
// ends resolve to the same node the arc is closed.
func (g *ArcGraph) CreateArc(points []Vec3, start, stop Vec3) ArcID {
	g.mu.Lock()
	defer g.mu.Unlock()
	a := g.createEndNodeLocked(start)
	b := g.createEndNodeLocked(stop)
	return g.attachArcLocked(a, b, points)
}

// CreateArcFromPolyline creates an arc whose first and last points become
// its end nodes.
func (g *ArcGraph) CreateArcFromPolyline(points []Vec3) (ArcID, error) {
	if len(points) < 2 {
		return NoArc, fmt.Errorf("%w: got %d", ErrTooFewPoints, len(points))
	}
	return g.CreateArc(points[1:len(points)-1], points[0], points[len(points)-1]), nil
}

// CreateArcBetween creates an arc over two existing end nodes.
func (g *ArcGraph) CreateArcBetween(a, b EndNodeID, points []Vec3) (ArcID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.nodes[a]; !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, a)
	}
	if _, ok := g.nodes[b]; !ok {
		return NoArc, fmt.Errorf("%w: %v", ErrNotManaged, b)
	}
	return g.attachArcLocked(a, b, points), nil
}

func (g *ArcGraph) attachArcLocked(a, b EndNodeID, points []Vec3) ArcID {
	g.lastArc++
	id := g.lastArc
	g.arcs[id] = &Arc{
		ID:       id,
		EndNodes: [2]EndNodeID{a, b},
		Points:   append([]Vec3(nil), points...),
	}
	g.nodes[a].arcs[id] = struct{}{}
	g.nodes[b].arcs[id] = struct{}{}
	g.locator.invalidate()
	log.Tracef("created %v from %v to %v with %d interior points", id, a, b, len(points))
	return id
}

// ---------------------------------------------------------------------------
// Connectivity
// ---------------------------------------------------------------------------

// ConnectedArcsAt returns the arcs incident to an end node, ascending. It
// returns nil for an unknown node.
func (g *ArcGraph) ConnectedArcsAt(id EndNodeID) []ArcID {
	g.mu.Lock()
	defer g.mu.Unlock()
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return sortedArcIDs(n.arcs)
}

// ConnectedArcs returns the arcs sharing either end node with arc id,
// excluding the arc itself, ascending. It returns nil for an unknown arc.
func (g *ArcGraph) ConnectedArcs(id ArcID) []ArcID {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connectedArcsLocked(id)
}

func (g *ArcGraph) connectedArcsLocked(id ArcID) []ArcID {
	a, ok := g.arcs[id]
	if !ok {
		return nil
	}
	set := make(map[ArcID]struct{})
	for _, nid := range a.EndNodes {
		for other := range g.nodes[nid].arcs {
			if other != id {
				set[other] = struct{}{}
			}
		}
	}
	return sortedArcIDs(set)
}

// EndConnectivity returns how many other arcs meet arc id at the given end.
func (g *ArcGraph) EndConnectivity(id ArcID, e End) (int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.endConnectivityLocked(id, e)
}

func (g *ArcGraph) endConnectivityLocked(id ArcID, e End) (int, error) {
	a, ok := g.arcs[id]
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	if !e.valid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidEnd, int(e))
	}
	return len(g.nodes[a.EndNodes[e]].arcs) - 1, nil
}

// EndDirection returns the tangent of arc id at the given end: the vector
// from the end node toward the adjacent interior point, or toward the other
// end node when the arc has no interior points.
func (g *ArcGraph) EndDirection(id ArcID, e End) (Vec3, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	a, ok := g.arcs[id]
	if !ok {
		return Vec3{}, fmt.Errorf("%w: %v", ErrNotManaged, id)
	}
	if !e.valid() {
		return Vec3{}, fmt.Errorf("%w: %d", ErrInvalidEnd, int(e))
	}
	return endDirection(*a, e, g.nodes[a.EndNodes[Start]].Position, g.nodes[a.EndNodes[Stop]].Position), nil
}

// endDirection is shared with View so both compute identical tangents.
func endDirection(a Arc, e End, start, stop Vec3) Vec3 {
	from, other := start, stop
	if e == Stop {
		from, other = stop, start
	}
	if p, ok := a.adjacentPoint(e); ok {
		return p.Sub(from)
	}
	return other.Sub(from)
}
