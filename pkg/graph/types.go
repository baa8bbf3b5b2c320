// Package graph defines the core arc graph data structures for arcmesh.
package graph

import (
	"fmt"
	"math"
)

// ArcID is a stable identifier for an arc owned by an ArcGraph.
type ArcID int64

// EndNodeID is a stable identifier for an end node owned by an ArcGraph.
type EndNodeID int64

const (
	// NoArc is the zero ArcID. It never names a live arc.
	NoArc ArcID = 0
	// NoEndNode is the zero EndNodeID, returned as the "not found" sentinel.
	NoEndNode EndNodeID = 0
)

// IsZero reports whether the ID is unset.
func (id ArcID) IsZero() bool { return id == NoArc }

// IsZero reports whether the ID is unset.
func (id EndNodeID) IsZero() bool { return id == NoEndNode }

func (id ArcID) String() string { return fmt.Sprintf("arc#%d", int64(id)) }

func (id EndNodeID) String() string { return fmt.Sprintf("node#%d", int64(id)) }

// Vec3 represents a 3D point or vector. Topology is planar; Z is carried
// through untouched and ignored by every planar computation.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub returns v - o.
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale returns v * s.
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Neg returns -v.
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot returns the 3D dot product.
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Length returns the Euclidean norm.
func (v Vec3) Length() float64 {
	return math.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between v and o.
func (v Vec3) Dist(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Dot2 is the dot product in the XY plane.
func (v Vec3) Dot2(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y
}

// Cross2 is the Z component of the cross product in the XY plane.
func (v Vec3) Cross2(o Vec3) float64 {
	return v.X*o.Y - v.Y*o.X
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Box is an axis-aligned bounding box. The zero Box is empty; use
// EmptyBox or Include to grow one.
type Box struct {
	Min, Max Vec3
	valid    bool
}

// EmptyBox returns a box containing nothing.
func EmptyBox() Box { return Box{} }

// BoxOf returns the smallest box containing all of pts.
func BoxOf(pts ...Vec3) Box {
	b := EmptyBox()
	for _, p := range pts {
		b = b.Include(p)
	}
	return b
}

// IsEmpty reports whether the box contains no points.
func (b Box) IsEmpty() bool { return !b.valid }

// Include returns the box grown to contain p.
func (b Box) Include(p Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	b.Min = Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)}
	b.Max = Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)}
	return b
}

// Extend returns the union of b and o.
func (b Box) Extend(o Box) Box {
	if !o.valid {
		return b
	}
	return b.Include(o.Min).Include(o.Max)
}

// Contains reports whether o lies inside b in the XY plane. Boundaries are
// inclusive, so a box contains itself. Empty boxes are contained by every
// box and contain nothing else.
func (b Box) Contains(o Box) bool {
	if !o.valid {
		return true
	}
	if !b.valid {
		return false
	}
	return b.Min.X <= o.Min.X && b.Min.Y <= o.Min.Y &&
		o.Max.X <= b.Max.X && o.Max.Y <= b.Max.Y
}

// Area returns the XY area of the box.
func (b Box) Area() float64 {
	if !b.valid {
		return 0
	}
	return (b.Max.X - b.Min.X) * (b.Max.Y - b.Min.Y)
}

func (b Box) String() string {
	if !b.valid {
		return "[empty]"
	}
	return fmt.Sprintf("[%v - %v]", b.Min, b.Max)
}
