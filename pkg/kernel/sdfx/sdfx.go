// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx SDF-based CAD library.
package sdfx

import (
	"errors"
	"fmt"

	"github.com/chazu/arcmesh/pkg/kernel"
	"github.com/deadsy/sdfx/render"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// DefaultMeshCells controls marching cubes tessellation resolution along the
// longest axis of a solid.
const DefaultMeshCells = 200

// ErrDegenerateRing is returned for rings with fewer than three points.
var ErrDegenerateRing = errors.New("sdfx: ring needs at least three points")

// sdfxRegion wraps an sdf.SDF2 to implement kernel.Region.
type sdfxRegion struct {
	s sdf.SDF2
}

func (r *sdfxRegion) Bounds() (min, max kernel.Point) {
	bb := r.s.BoundingBox()
	return kernel.Point{bb.Min.X, bb.Min.Y}, kernel.Point{bb.Max.X, bb.Max.Y}
}

// sdfxSolid wraps an sdf.SDF3 to implement kernel.Solid.
type sdfxSolid struct {
	s sdf.SDF3
}

// BoundingBox returns the axis-aligned bounding box.
func (s *sdfxSolid) BoundingBox() (min, max [3]float64) {
	bb := s.s.BoundingBox()
	min = [3]float64{bb.Min.X, bb.Min.Y, bb.Min.Z}
	max = [3]float64{bb.Max.X, bb.Max.Y, bb.Max.Z}
	return min, max
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct {
	cells int
}

// New returns a new SdfxKernel at the default resolution.
func New() *SdfxKernel {
	return &SdfxKernel{cells: DefaultMeshCells}
}

// NewWithResolution returns an SdfxKernel meshing with the given number of
// marching cubes cells. Non-positive values select the default.
func NewWithResolution(cells int) *SdfxKernel {
	if cells <= 0 {
		cells = DefaultMeshCells
	}
	return &SdfxKernel{cells: cells}
}

// Resolution returns the marching cubes cell count.
func (k *SdfxKernel) Resolution() int { return k.cells }

func unwrapRegion(r kernel.Region) sdf.SDF2 {
	return r.(*sdfxRegion).s
}

func unwrap(s kernel.Solid) sdf.SDF3 {
	return s.(*sdfxSolid).s
}

// Polygon creates the region bounded by ring.
func (k *SdfxKernel) Polygon(ring []kernel.Point) (kernel.Region, error) {
	if len(ring) < 3 {
		return nil, fmt.Errorf("%w: got %d", ErrDegenerateRing, len(ring))
	}
	verts := make([]v2.Vec, len(ring))
	for i, p := range ring {
		verts[i] = v2.Vec{X: p[0], Y: p[1]}
	}
	s, err := sdf.Polygon2D(verts)
	if err != nil {
		return nil, fmt.Errorf("sdfx.Polygon2D: %w", err)
	}
	return &sdfxRegion{s: s}, nil
}

// Difference returns the region a - b.
func (k *SdfxKernel) Difference(a, b kernel.Region) kernel.Region {
	return &sdfxRegion{s: sdf.Difference2D(unwrapRegion(a), unwrapRegion(b))}
}

// Extrude lifts a region into a solid spanning z in [0, height].
// sdf.Extrude3D centers the solid on z=0, so it is shifted up by half the
// height.
func (k *SdfxKernel) Extrude(r kernel.Region, height float64) kernel.Solid {
	s := sdf.Extrude3D(unwrapRegion(r), height)
	m := sdf.Translate3d(v3.Vec{X: 0, Y: 0, Z: height / 2})
	return &sdfxSolid{s: sdf.Transform3D(s, m)}
}

// ToMesh converts a solid to a triangle mesh using marching cubes.
func (k *SdfxKernel) ToMesh(s kernel.Solid) (*kernel.Mesh, error) {
	sdf3 := unwrap(s)

	renderer := render.NewMarchingCubesUniform(k.cells)
	triangles := render.ToTriangles(sdf3, renderer)
	if len(triangles) == 0 {
		return nil, errors.New("sdfx: solid produced no triangles")
	}

	numVerts := len(triangles) * 3
	vertices := make([]float32, 0, numVerts*3)
	normals := make([]float32, 0, numVerts*3)
	indices := make([]uint32, 0, numVerts)

	for i, tri := range triangles {
		// Compute face normal.
		n := tri.Normal()
		nx := float32(n.X)
		ny := float32(n.Y)
		nz := float32(n.Z)

		for j := 0; j < 3; j++ {
			v := tri[j]
			vertices = append(vertices, float32(v.X), float32(v.Y), float32(v.Z))
			normals = append(normals, nx, ny, nz)
			indices = append(indices, uint32(i*3+j))
		}
	}

	return &kernel.Mesh{
		Vertices: vertices,
		Normals:  normals,
		Indices:  indices,
	}, nil
}
