// Package tessellate resolves a classified loop set against the arc graph
// into polygon rings and meshes the polygon-with-holes through a geometry
// kernel.
package tessellate

import (
	"fmt"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/kernel"
	"github.com/chazu/arcmesh/pkg/loops"
)

// PolylineSource resolves arc geometry. *graph.ArcGraph satisfies it.
type PolylineSource interface {
	Polyline(id graph.ArcID) ([]graph.Vec3, error)
}

// Polygon is a planar polygon with holes. The outer ring winds
// counter-clockwise and every hole winds clockwise; rings are implicitly
// closed.
type Polygon struct {
	Outer []kernel.Point
	Holes [][]kernel.Point
}

// Rings resolves every loop of set into an XY ring. It is read-only and
// never mutates the graph.
func Rings(src PolylineSource, set loops.LoopSet) (Polygon, error) {
	outer, err := ring(src, set.Outer)
	if err != nil {
		return Polygon{}, fmt.Errorf("tessellate: outer loop %v: %w", set.Outer, err)
	}
	p := Polygon{Outer: orient(outer, true)}
	for _, l := range set.Inner {
		hole, err := ring(src, l)
		if err != nil {
			return Polygon{}, fmt.Errorf("tessellate: inner loop %v: %w", l, err)
		}
		p.Holes = append(p.Holes, orient(hole, false))
	}
	return p, nil
}

// ring concatenates the loop's arcs in walk order, dropping the point each
// arc shares with the next.
func ring(src PolylineSource, l loops.Loop) ([]graph.Vec3, error) {
	var pts []graph.Vec3
	for i, id := range l.Arcs {
		p, err := src.Polyline(id)
		if err != nil {
			return nil, err
		}
		if !l.Forward[i] {
			r := make([]graph.Vec3, len(p))
			for j := range p {
				r[len(p)-1-j] = p[j]
			}
			p = r
		}
		pts = append(pts, p[:len(p)-1]...)
	}
	return pts, nil
}

// orient projects a ring onto XY, reversing it if needed so that it winds
// counter-clockwise when ccw is set and clockwise otherwise.
func orient(r []graph.Vec3, ccw bool) []kernel.Point {
	area := loops.SignedArea(r)
	out := make([]kernel.Point, len(r))
	for i, p := range r {
		out[i] = kernel.Point{p.X, p.Y}
	}
	if (area > 0) != ccw {
		for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
			out[i], out[j] = out[j], out[i]
		}
	}
	return out
}

// Region builds the kernel region for p: the outer ring minus every hole.
func Region(k kernel.Kernel, p Polygon) (kernel.Region, error) {
	region, err := k.Polygon(p.Outer)
	if err != nil {
		return nil, fmt.Errorf("tessellate: outer ring: %w", err)
	}
	for i, h := range p.Holes {
		hole, err := k.Polygon(h)
		if err != nil {
			return nil, fmt.Errorf("tessellate: hole %d: %w", i, err)
		}
		region = k.Difference(region, hole)
	}
	return region, nil
}

// Tessellate meshes the polygon-with-holes described by set as a slab of
// the given height.
func Tessellate(src PolylineSource, set loops.LoopSet, k kernel.Kernel, height float64) (*kernel.Mesh, error) {
	if height <= 0 {
		return nil, fmt.Errorf("tessellate: height must be positive, got %v", height)
	}
	p, err := Rings(src, set)
	if err != nil {
		return nil, err
	}
	region, err := Region(k, p)
	if err != nil {
		return nil, err
	}

	mesh, err := k.ToMesh(k.Extrude(region, height))
	if err != nil {
		return nil, fmt.Errorf("tessellate: ToMesh failed for %v: %w", set.Outer, err)
	}
	mesh.Source = set.Outer.String()
	log.Debugf("meshed %v with %d holes: %d triangles", set.Outer, len(p.Holes), mesh.TriangleCount())
	return mesh, nil
}
