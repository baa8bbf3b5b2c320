// Package kernel defines the abstract geometry kernel that turns planar
// polygon-with-holes regions into solids and triangle meshes. The sdfx
// subpackage is the implementation used by the application.
package kernel

// Point is a position in the XY plane.
type Point [2]float64

// Region is an opaque handle to a planar area in the kernel.
type Region interface {
	// Bounds returns the axis-aligned bounding box in the XY plane.
	Bounds() (min, max Point)
}

// Solid is an opaque handle to a geometry kernel solid.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)
}

// Kernel builds regions from rings and meshes them.
type Kernel interface {
	// Polygon creates the region enclosed by a ring. The ring is implicitly
	// closed and may wind either way.
	Polygon(ring []Point) (Region, error)

	// Difference returns a - b.
	Difference(a, b Region) Region

	// Extrude lifts a region into a solid spanning z in [0, height].
	Extrude(r Region, height float64) Solid

	// ToMesh converts a solid to a triangle mesh.
	ToMesh(s Solid) (*Mesh, error)
}
