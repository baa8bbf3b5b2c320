package graph

import (
	"errors"
	"sync"
	"testing"
)

// square builds four straight arcs around the unit-ten square, ordered
// bottom, right, top, left.
func square(t *testing.T, g *ArcGraph) []ArcID {
	t.Helper()
	c := []Vec3{{0, 0, 0}, {10, 0, 0}, {10, 10, 0}, {0, 10, 0}}
	ids := make([]ArcID, 4)
	for i := range c {
		ids[i] = g.CreateArc(nil, c[i], c[(i+1)%4])
	}
	return ids
}

func TestNewArcGraph(t *testing.T) {
	g := New()
	if g.ArcCount() != 0 || g.EndNodeCount() != 0 {
		t.Fatalf("new graph should be empty, got %d arcs %d nodes", g.ArcCount(), g.EndNodeCount())
	}
	cfg := g.Config()
	if cfg.SnapRadius != DefaultSnapRadius || !cfg.UseSnapping {
		t.Errorf("default config = %+v", cfg)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"Default", DefaultConfig(), false},
		{"ZeroRadius", Config{SnapRadius: 0, UseSnapping: true}, false},
		{"Negative", Config{SnapRadius: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v should wrap ErrInvalidConfig", err)
			}
			_, err = NewWithConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewWithConfig() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateEndNodeSnapping(t *testing.T) {
	tests := []struct {
		name     string
		cfg      Config
		second   Vec3
		wantSame bool
	}{
		{"WithinRadius", Config{SnapRadius: 0.5, UseSnapping: true}, Vec3{0.3, 0, 0}, true},
		{"OnRadius", Config{SnapRadius: 0.5, UseSnapping: true}, Vec3{0.5, 0, 0}, true},
		{"BeyondRadius", Config{SnapRadius: 0.5, UseSnapping: true}, Vec3{0.6, 0, 0}, false},
		{"DisabledNear", Config{SnapRadius: 0.5, UseSnapping: false}, Vec3{0.3, 0, 0}, false},
		{"DisabledExact", Config{SnapRadius: 0.5, UseSnapping: false}, Vec3{0, 0, 0}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewWithConfig(tt.cfg)
			if err != nil {
				t.Fatal(err)
			}
			a := g.CreateEndNode(Vec3{})
			b := g.CreateEndNode(tt.second)
			if (a == b) != tt.wantSame {
				t.Errorf("CreateEndNode returned %v and %v, wantSame %v", a, b, tt.wantSame)
			}
		})
	}
}

func TestCreateEndNodePrefersNearest(t *testing.T) {
	g, _ := NewWithConfig(Config{SnapRadius: 1, UseSnapping: true})
	far := g.CreateEndNode(Vec3{0, 0, 0})
	near := g.CreateEndNode(Vec3{1.5, 0, 0})

	if got := g.CreateEndNode(Vec3{0.9, 0, 0}); got != near {
		t.Errorf("snapped onto %v, want nearer %v (far %v)", got, near, far)
	}
}

func TestCreateArc(t *testing.T) {
	g := New()
	id := g.CreateArc([]Vec3{{5, 5, 0}}, Vec3{0, 0, 0}, Vec3{10, 0, 0})

	a, ok := g.Arc(id)
	if !ok {
		t.Fatalf("Arc(%v) not found", id)
	}
	if a.IsClosed() {
		t.Error("open arc reported closed")
	}
	if len(a.Points) != 1 || a.Points[0] != (Vec3{5, 5, 0}) {
		t.Errorf("interior points = %v", a.Points)
	}
	if g.EndNodeCount() != 2 {
		t.Errorf("node count = %d, want 2", g.EndNodeCount())
	}

	// The returned copy is detached from the graph.
	a.Points[0] = Vec3{99, 99, 99}
	again, _ := g.Arc(id)
	if again.Points[0] != (Vec3{5, 5, 0}) {
		t.Error("mutating a returned Arc changed the graph")
	}

	pts, err := g.Polyline(id)
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 3 || pts[0] != (Vec3{}) || pts[2] != (Vec3{10, 0, 0}) {
		t.Errorf("Polyline = %v", pts)
	}
}

func TestCreateArcClosed(t *testing.T) {
	g := New()
	id := g.CreateArc([]Vec3{{1, 0, 0}, {0, 1, 0}}, Vec3{}, Vec3{0.0001, 0, 0})

	a, _ := g.Arc(id)
	if !a.IsClosed() {
		t.Fatal("arc whose ends snap together should be closed")
	}
	if g.EndNodeCount() != 1 {
		t.Errorf("node count = %d, want 1", g.EndNodeCount())
	}
	if n, _ := g.EndNode(a.EndNodes[Start]); n.Degree() != 1 {
		t.Errorf("closed arc node degree = %d, want 1", n.Degree())
	}
}

func TestCreateArcFromPolyline(t *testing.T) {
	g := New()
	if _, err := g.CreateArcFromPolyline([]Vec3{{}}); !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("single point: err = %v, want ErrTooFewPoints", err)
	}
	id, err := g.CreateArcFromPolyline([]Vec3{{0, 0, 0}, {1, 1, 0}, {2, 0, 0}})
	if err != nil {
		t.Fatal(err)
	}
	a, _ := g.Arc(id)
	if len(a.Points) != 1 {
		t.Errorf("interior points = %v, want one", a.Points)
	}
}

func TestCreateArcBetween(t *testing.T) {
	g := New()
	a := g.CreateEndNode(Vec3{0, 0, 0})
	b := g.CreateEndNode(Vec3{3, 0, 0})

	id, err := g.CreateArcBetween(a, b, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.ConnectedArcsAt(a); len(got) != 1 || got[0] != id {
		t.Errorf("ConnectedArcsAt(a) = %v", got)
	}
	if _, err := g.CreateArcBetween(a, 99, nil); !errors.Is(err, ErrNotManaged) {
		t.Errorf("unknown node: err = %v, want ErrNotManaged", err)
	}
}

func TestMergeEndNodes(t *testing.T) {
	g := New()
	x := g.CreateArc(nil, Vec3{0, 0, 0}, Vec3{5, 0, 0})
	y := g.CreateArc(nil, Vec3{5, 1, 0}, Vec3{5, 5, 0})
	z := g.CreateArc(nil, Vec3{5, 1, 0}, Vec3{9, 1, 0})

	ax, _ := g.Arc(x)
	ay, _ := g.Arc(y)
	a, b := ax.EndNodes[Stop], ay.EndNodes[Start]

	before := map[ArcID]bool{}
	for _, id := range append(g.ConnectedArcsAt(a), g.ConnectedArcsAt(b)...) {
		before[id] = true
	}
	posA, _ := g.EndNode(a)

	survivor, err := g.MergeEndNodes(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if survivor != a {
		t.Errorf("survivor = %v, want %v", survivor, a)
	}
	if _, ok := g.EndNode(b); ok {
		t.Errorf("%v should be destroyed", b)
	}
	n, _ := g.EndNode(survivor)
	if n.Position != posA.Position {
		t.Errorf("survivor moved to %v", n.Position)
	}

	after := g.ConnectedArcsAt(survivor)
	if len(after) != len(before) {
		t.Fatalf("incident arcs = %v, want union %v", after, before)
	}
	for _, id := range after {
		if !before[id] {
			t.Errorf("unexpected incident %v", id)
		}
	}
	for _, id := range []ArcID{x, y, z} {
		arc, _ := g.Arc(id)
		for _, nid := range arc.EndNodes {
			if nid == b {
				t.Errorf("%v still references merged %v", id, b)
			}
		}
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("Validate after merge: %v", errs)
	}
}

func TestMergeEndNodesNotManaged(t *testing.T) {
	g := New()
	a := g.CreateEndNode(Vec3{})

	tests := []struct {
		name string
		a, b EndNodeID
	}{
		{"FirstUnknown", 42, a},
		{"SecondUnknown", a, 42},
		{"Sentinel", NoEndNode, a},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.MergeEndNodes(tt.a, tt.b)
			if !errors.Is(err, ErrNotManaged) {
				t.Errorf("err = %v, want ErrNotManaged", err)
			}
			if got != NoEndNode {
				t.Errorf("survivor = %v, want NoEndNode", got)
			}
		})
	}
	if g.EndNodeCount() != 1 {
		t.Error("failed merge changed the graph")
	}
}

func TestMoveEndNodeNoMerge(t *testing.T) {
	g := New()
	id := g.CreateArc(nil, Vec3{0, 0, 0}, Vec3{10, 0, 0})
	a, _ := g.Arc(id)

	got, err := g.MoveEndNode(a.EndNodes[Stop], Vec3{10, 3, 0})
	if err != nil {
		t.Fatal(err)
	}
	if got != a.EndNodes[Stop] {
		t.Errorf("id changed to %v without a merge", got)
	}
	n, _ := g.EndNode(got)
	if n.Position != (Vec3{10, 3, 0}) {
		t.Errorf("position = %v", n.Position)
	}
	if g.EndNodeCount() != 2 {
		t.Errorf("node count = %d, want 2", g.EndNodeCount())
	}
}

// Moving onto another node must leave the graph exactly as merging the two
// nodes and then moving the survivor would.
func TestMoveEndNodeEqualsMerge(t *testing.T) {
	build := func() (*ArcGraph, EndNodeID, EndNodeID) {
		g := New()
		x := g.CreateArc(nil, Vec3{0, 0, 0}, Vec3{5, 0, 0})
		y := g.CreateArc(nil, Vec3{6, 0, 0}, Vec3{6, 5, 0})
		ax, _ := g.Arc(x)
		ay, _ := g.Arc(y)
		return g, ax.EndNodes[Stop], ay.EndNodes[Start]
	}

	moved, mover, target := build()
	survivor, err := moved.MoveEndNode(mover, Vec3{6, 0.0005, 0})
	if err != nil {
		t.Fatal(err)
	}
	if survivor != target {
		t.Fatalf("survivor = %v, want existing node %v", survivor, target)
	}
	if _, ok := moved.EndNode(mover); ok {
		t.Error("moved node should no longer exist")
	}

	merged, _, target2 := build()
	if _, err := merged.MergeEndNodes(target2, mover); err != nil {
		t.Fatal(err)
	}
	if _, err := merged.MoveEndNode(target2, Vec3{6, 0.0005, 0}); err != nil {
		t.Fatal(err)
	}

	for _, id := range moved.ArcIDs() {
		a1, _ := moved.Arc(id)
		a2, _ := merged.Arc(id)
		if a1.EndNodes != a2.EndNodes {
			t.Errorf("%v ends: move %v, merge %v", id, a1.EndNodes, a2.EndNodes)
		}
	}
	n1, _ := moved.EndNode(survivor)
	n2, _ := merged.EndNode(survivor)
	if n1.Position != n2.Position {
		t.Errorf("survivor position: move %v, merge %v", n1.Position, n2.Position)
	}
	if n1.Position != (Vec3{6, 0.0005, 0}) {
		t.Errorf("survivor position = %v, want the move target", n1.Position)
	}
}

// Two nodes 1.6 apart can both lie within the radius of a move target; the
// move absorbs both so no pair is left within the radius.
func TestMoveEndNodeAbsorbsEveryNodeInRadius(t *testing.T) {
	g, err := NewWithConfig(Config{SnapRadius: 1, UseSnapping: true})
	if err != nil {
		t.Fatal(err)
	}
	x := g.CreateArc(nil, Vec3{0, 0, 0}, Vec3{5, 0, 0})
	y := g.CreateArc(nil, Vec3{6.6, 0, 0}, Vec3{6.6, 5, 0})
	z := g.CreateArc(nil, Vec3{5.8, 10, 0}, Vec3{5.8, 20, 0})
	ax, _ := g.Arc(x)
	ay, _ := g.Arc(y)
	az, _ := g.Arc(z)

	// Move z's start next to the midpoint of the two nodes.
	pos := Vec3{5.8, 0, 0}
	survivor, err := g.MoveEndNode(az.EndNodes[Start], pos)
	if err != nil {
		t.Fatal(err)
	}
	if got := g.EndNodeCount(); got != 4 {
		t.Errorf("node count = %d, want 4", got)
	}
	for _, id := range []ArcID{x, y, z} {
		a, _ := g.Arc(id)
		if a.EndNodes[Start] != survivor && a.EndNodes[Stop] != survivor {
			t.Errorf("%v ends %v do not reach survivor %v", id, a.EndNodes, survivor)
		}
	}
	if survivor != ax.EndNodes[Stop] && survivor != ay.EndNodes[Start] {
		t.Errorf("survivor = %v, want one of the existing nodes", survivor)
	}
	n, _ := g.EndNode(survivor)
	if n.Position != pos {
		t.Errorf("survivor position = %v, want %v", n.Position, pos)
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("Validate: %v", errs)
	}
}

func TestMoveEndNodeNotManaged(t *testing.T) {
	g := New()
	if _, err := g.MoveEndNode(5, Vec3{}); !errors.Is(err, ErrNotManaged) {
		t.Errorf("err = %v, want ErrNotManaged", err)
	}
}

func TestRemoveEndNode(t *testing.T) {
	g := New()
	x := g.CreateArc(nil, Vec3{0, 0, 0}, Vec3{5, 0, 0})
	y := g.CreateArc(nil, Vec3{5, 0, 0}, Vec3{5, 5, 0})
	ax, _ := g.Arc(x)
	shared := ax.EndNodes[Stop]

	if g.RemoveEndNode(shared, 999) {
		t.Error("detaching a non-incident arc should fail")
	}
	if g.RemoveEndNode(999, x) {
		t.Error("detaching from an unknown node should fail")
	}
	if !g.RemoveEndNode(shared, x) {
		t.Fatal("detach x failed")
	}
	if _, ok := g.EndNode(shared); !ok {
		t.Fatal("node with a remaining arc should survive")
	}
	if !g.RemoveEndNode(shared, y) {
		t.Fatal("detach y failed")
	}
	if _, ok := g.EndNode(shared); ok {
		t.Error("node with no arcs should be destroyed")
	}
}

func TestConnectedArcs(t *testing.T) {
	g := New()
	ids := square(t, g)
	spur := g.CreateArc(nil, Vec3{10, 10, 0}, Vec3{20, 20, 0})

	got := g.ConnectedArcs(ids[1])
	want := []ArcID{ids[0], ids[2], spur}
	if len(got) != len(want) {
		t.Fatalf("ConnectedArcs = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ConnectedArcs[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if g.ConnectedArcs(999) != nil {
		t.Error("unknown arc should have no connections")
	}

	top, _ := g.Arc(ids[2])
	if got := g.ConnectedArcsAt(top.EndNodes[Start]); len(got) != 3 {
		t.Errorf("ConnectedArcsAt(corner) = %v, want 3 arcs", got)
	}

	n, err := g.EndConnectivity(ids[1], Stop)
	if err != nil || n != 2 {
		t.Errorf("EndConnectivity = %d, %v; want 2", n, err)
	}
	if _, err := g.EndConnectivity(ids[1], End(4)); !errors.Is(err, ErrInvalidEnd) {
		t.Errorf("err = %v, want ErrInvalidEnd", err)
	}
}

func TestEndDirection(t *testing.T) {
	g := New()
	straight := g.CreateArc(nil, Vec3{0, 0, 0}, Vec3{10, 0, 0})
	bent := g.CreateArc([]Vec3{{0, 5, 0}, {5, 5, 0}}, Vec3{0, 20, 0}, Vec3{10, 20, 0})

	tests := []struct {
		name string
		id   ArcID
		end  End
		want Vec3
	}{
		{"StraightStart", straight, Start, Vec3{10, 0, 0}},
		{"StraightStop", straight, Stop, Vec3{-10, 0, 0}},
		{"BentStart", bent, Start, Vec3{0, -15, 0}},
		{"BentStop", bent, Stop, Vec3{-5, -15, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := g.EndDirection(tt.id, tt.end)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("EndDirection = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFindEndNode(t *testing.T) {
	g := New()
	id := g.CreateEndNode(Vec3{1, 1, 0})
	if got, ok := g.FindEndNode(Vec3{1, 1.0005, 0}); !ok || got != id {
		t.Errorf("FindEndNode near = %v, %v", got, ok)
	}
	if _, ok := g.FindEndNode(Vec3{2, 2, 0}); ok {
		t.Error("FindEndNode far should miss")
	}
	if g.EndNodeCount() != 1 {
		t.Error("FindEndNode must not allocate")
	}
}

func TestSetConfigAffectsLaterSnaps(t *testing.T) {
	g := New()
	a := g.CreateEndNode(Vec3{})
	if err := g.SetConfig(Config{SnapRadius: 2, UseSnapping: true}); err != nil {
		t.Fatal(err)
	}
	if b := g.CreateEndNode(Vec3{1.5, 0, 0}); b != a {
		t.Errorf("after widening radius got %v, want %v", b, a)
	}
	if err := g.SetConfig(Config{SnapRadius: -2}); err == nil {
		t.Error("SetConfig should reject a negative radius")
	}
}

func TestConcurrentCreates(t *testing.T) {
	g := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				x := float64(i*100 + j*2)
				g.CreateArc(nil, Vec3{x, 0, 0}, Vec3{x + 1, 0, 0})
			}
		}(i)
	}
	wg.Wait()

	if g.ArcCount() != 200 {
		t.Errorf("arc count = %d, want 200", g.ArcCount())
	}
	if errs := g.Validate(); len(errs) != 0 {
		t.Errorf("Validate: %v", errs)
	}
}
