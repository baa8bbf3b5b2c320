package loops_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/loops"
)

func v(x, y float64) graph.Vec3 { return graph.Vec3{X: x, Y: y} }

// squareArcs adds four straight arcs around the axis-aligned square with
// corners lo and hi, counter-clockwise from the bottom edge.
func squareArcs(g *graph.ArcGraph, lo, hi float64) []graph.ArcID {
	c := []graph.Vec3{v(lo, lo), v(hi, lo), v(hi, hi), v(lo, hi)}
	ids := make([]graph.ArcID, 4)
	for i := range c {
		ids[i] = g.CreateArc(nil, c[i], c[(i+1)%4])
	}
	return ids
}

func sameArcs(got []graph.ArcID, want ...graph.ArcID) bool {
	if len(got) != len(want) {
		return false
	}
	seen := map[graph.ArcID]bool{}
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
	}
	return true
}

func TestSinglePolygon(t *testing.T) {
	g := graph.New()
	ids := squareArcs(g, 0, 10)

	set, err := loops.ExtractArcs(g, ids)
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Inner) != 0 {
		t.Errorf("inner loops = %v, want none", set.Inner)
	}
	if !sameArcs(set.Outer.Arcs, ids...) {
		t.Fatalf("outer = %v, want all of %v", set.Outer, ids)
	}
	assertCyclic(t, g, set.Outer)
}

// assertCyclic checks that consecutive arcs of a loop share an end node in
// walk order, including the wrap from last to first.
func assertCyclic(t *testing.T, g *graph.ArcGraph, l loops.Loop) {
	t.Helper()
	n := l.Len()
	for i := 0; i < n; i++ {
		a, _ := g.Arc(l.Arcs[i])
		b, _ := g.Arc(l.Arcs[(i+1)%n])
		exitA := a.End(graph.Stop)
		if !l.Forward[i] {
			exitA = a.End(graph.Start)
		}
		entryB := b.End(graph.Start)
		if !l.Forward[(i+1)%n] {
			entryB = b.End(graph.Stop)
		}
		if exitA != entryB {
			t.Errorf("loop %v breaks between %v and %v", l, l.Arcs[i], l.Arcs[(i+1)%n])
		}
	}
}

func TestSquareWithInnerClosedTriangle(t *testing.T) {
	g := graph.New()
	square := squareArcs(g, 0, 10)
	tri := g.CreateArc([]graph.Vec3{v(6, 3), v(4.5, 6)}, v(3, 3), v(3, 3))

	set, err := loops.ExtractArcs(g, append(square, tri))
	if err != nil {
		t.Fatal(err)
	}
	if !sameArcs(set.Outer.Arcs, square...) {
		t.Errorf("outer = %v, want the square %v", set.Outer, square)
	}
	if len(set.Inner) != 1 || !sameArcs(set.Inner[0].Arcs, tri) {
		t.Fatalf("inner = %v, want the triangle %v", set.Inner, tri)
	}
}

func TestNestedSquares(t *testing.T) {
	g := graph.New()
	outer := squareArcs(g, 0, 10)
	inner := squareArcs(g, 3, 7)

	set, err := loops.ExtractArcs(g, append(inner, outer...))
	if err != nil {
		t.Fatal(err)
	}
	if !sameArcs(set.Outer.Arcs, outer...) {
		t.Errorf("outer = %v, want %v", set.Outer, outer)
	}
	if len(set.Inner) != 1 || !sameArcs(set.Inner[0].Arcs, inner...) {
		t.Errorf("inner = %v, want %v", set.Inner, inner)
	}
	for _, l := range set.All() {
		assertCyclic(t, g, l)
	}
	if set.Ambiguous {
		t.Error("nested squares should classify unambiguously")
	}
}

// Two squares whose sides cross without sharing a node overlap in the
// plane. Each arc still lies on one loop and the set reports that neither
// loop encloses the other.
func TestOverlappingSquaresAreAmbiguous(t *testing.T) {
	g := graph.New()
	a := squareArcs(g, 0, 10)
	b := squareArcs(g, 5, 15)

	set, err := loops.ExtractArcs(g, append(a, b...))
	if err != nil {
		t.Fatal(err)
	}
	if set.Len() != 2 {
		t.Fatalf("loops = %v, want the two squares", set)
	}
	if !set.Ambiguous {
		t.Error("overlapping squares should mark the set ambiguous")
	}
	count := map[graph.ArcID]int{}
	for _, l := range set.All() {
		for _, id := range l.Arcs {
			count[id]++
		}
	}
	for _, id := range append(a, b...) {
		if count[id] != 1 {
			t.Errorf("%v used by %d loops, want 1", id, count[id])
		}
	}
}

// The full view snapshots the graph; later edits do not reach it.
func TestExtractFullViewSnapshot(t *testing.T) {
	g := graph.New()
	outer := squareArcs(g, 0, 10)
	view := g.FullView()
	squareArcs(g, 3, 7)

	set, err := loops.Extract(view)
	if err != nil {
		t.Fatal(err)
	}
	if !sameArcs(set.Outer.Arcs, outer...) || len(set.Inner) != 0 {
		t.Errorf("set = %+v, want only the square taken before the edit", set)
	}

	set, err = loops.Extract(g.FullView())
	if err != nil {
		t.Fatal(err)
	}
	if len(set.Inner) != 1 {
		t.Errorf("inner loops = %d, want 1 after a fresh view", len(set.Inner))
	}
}

func TestSquareWithDiagonal(t *testing.T) {
	g := graph.New()
	sq := squareArcs(g, 0, 10)
	diag := g.CreateArc(nil, v(0, 0), v(10, 10))

	found := loops.NewExtractor(g.FullView()).Loops()
	if len(found) != 2 {
		t.Fatalf("found %d loops %v, want two triangles", len(found), found)
	}
	if !sameArcs(found[0].Arcs, sq[0], sq[1], diag) {
		t.Errorf("first triangle = %v", found[0])
	}
	if !sameArcs(found[1].Arcs, sq[2], sq[3], diag) {
		t.Errorf("second triangle = %v", found[1])
	}

	// Both boxes are the full square, so the tie goes to the smallest arc.
	set, err := loops.Classify(found)
	if err != nil {
		t.Fatal(err)
	}
	if !set.Outer.Contains(sq[0]) {
		t.Errorf("outer = %v, want the triangle holding %v", set.Outer, sq[0])
	}
	if !set.Ambiguous {
		t.Error("side by side triangles should mark the set ambiguous")
	}
}

func TestCurvedArcsFormLoop(t *testing.T) {
	g := graph.New()
	bottom := g.CreateArc([]graph.Vec3{v(5, -5)}, v(0, 0), v(10, 0))
	top := g.CreateArc([]graph.Vec3{v(5, 5)}, v(10, 0), v(0, 0))

	set, err := loops.ExtractArcs(g, []graph.ArcID{bottom, top})
	if err != nil {
		t.Fatal(err)
	}
	if !sameArcs(set.Outer.Arcs, bottom, top) {
		t.Errorf("outer = %v", set.Outer)
	}
	if set.Outer.Bounds.Min.Y != -5 || set.Outer.Bounds.Max.Y != 5 {
		t.Errorf("bounds = %v, want interior points included", set.Outer.Bounds)
	}
}

func TestDanglingArcIgnored(t *testing.T) {
	g := graph.New()
	sq := squareArcs(g, 0, 10)
	spur := g.CreateArc(nil, v(10, 10), v(20, 20))

	set, err := loops.ExtractArcs(g, append(sq, spur))
	if err != nil {
		t.Fatal(err)
	}
	if set.Outer.Contains(spur) || len(set.Inner) != 0 {
		t.Errorf("spur leaked into %v", set)
	}
}

func TestScopeLimitsExtraction(t *testing.T) {
	g := graph.New()
	sq := squareArcs(g, 0, 10)
	g.CreateArc(nil, v(0, 0), v(10, 10))

	set, err := loops.ExtractArcs(g, sq)
	if err != nil {
		t.Fatal(err)
	}
	if !sameArcs(set.Outer.Arcs, sq...) || len(set.Inner) != 0 {
		t.Errorf("scoped extraction = %v, want only the square", set)
	}
}

func TestNoLoop(t *testing.T) {
	tests := []struct {
		name  string
		build func(g *graph.ArcGraph) []graph.ArcID
	}{
		{"Empty", func(g *graph.ArcGraph) []graph.ArcID { return nil }},
		{"OpenChain", func(g *graph.ArcGraph) []graph.ArcID {
			return []graph.ArcID{
				g.CreateArc(nil, v(0, 0), v(1, 0)),
				g.CreateArc(nil, v(1, 0), v(1, 1)),
			}
		}},
		{"ThreeSidesOfSquare", func(g *graph.ArcGraph) []graph.ArcID {
			return squareArcs(g, 0, 10)[:3]
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := graph.New()
			_, err := loops.ExtractArcs(g, tt.build(g))
			if !errors.Is(err, loops.ErrNoOuterLoop) {
				t.Errorf("err = %v, want ErrNoOuterLoop", err)
			}
		})
	}
}

func TestExtractUnknownArc(t *testing.T) {
	g := graph.New()
	if _, err := loops.ExtractArcs(g, []graph.ArcID{3}); !errors.Is(err, graph.ErrNotManaged) {
		t.Errorf("err = %v, want ErrNotManaged", err)
	}
}

func TestExtractionIsIdempotent(t *testing.T) {
	g := graph.New()
	outer := squareArcs(g, 0, 10)
	inner := squareArcs(g, 3, 7)
	g.CreateArc(nil, v(0, 0), v(3, 3))
	tri := g.CreateArc([]graph.Vec3{v(9, 1), v(8.5, 2)}, v(8, 1), v(8, 1))
	ids := append(append(outer, inner...), tri)

	first, err := loops.ExtractArcs(g, ids)
	if err != nil {
		t.Fatal(err)
	}
	second, err := loops.ExtractArcs(g, ids)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("extraction differs between runs:\n%v\n%v", first, second)
	}
}

// A square with both diagonals meeting at a centre node bounds four
// triangles; every arc lies on exactly two faces.
func TestArcUsedAtMostTwice(t *testing.T) {
	g := graph.New()
	squareArcs(g, 0, 10)
	for _, corner := range []graph.Vec3{v(0, 0), v(10, 0), v(10, 10), v(0, 10)} {
		g.CreateArc(nil, corner, v(5, 5))
	}

	x := loops.NewExtractor(g.FullView())
	found := x.Loops()
	if len(found) != 4 {
		t.Fatalf("found %d loops %v, want 4 triangles", len(found), found)
	}
	count := map[graph.ArcID]int{}
	for _, l := range found {
		if l.Len() != 3 {
			t.Errorf("loop %v is not a triangle", l)
		}
		for _, id := range l.Arcs {
			count[id]++
		}
	}
	for id, n := range count {
		if n > 2 {
			t.Errorf("%v used by %d loops", id, n)
		}
		if x.Uses(id) != 2 {
			t.Errorf("%v: Uses = %d, want 2", id, x.Uses(id))
		}
	}
}

func TestSignedArea(t *testing.T) {
	ccw := []graph.Vec3{v(0, 0), v(2, 0), v(2, 2), v(0, 2)}
	if got := loops.SignedArea(ccw); got != 4 {
		t.Errorf("ccw area = %v, want 4", got)
	}
	cw := []graph.Vec3{v(0, 0), v(0, 2), v(2, 2), v(2, 0)}
	if got := loops.SignedArea(cw); got != -4 {
		t.Errorf("cw area = %v, want -4", got)
	}
}
