package kernel

import "testing"

// --- Mesh helper method tests ---

func TestMeshVertexCount(t *testing.T) {
	tests := []struct {
		name     string
		vertices []float32
		want     int
	}{
		{"empty", nil, 0},
		{"one vertex", []float32{1, 2, 3}, 1},
		{"four vertices", []float32{0, 0, 0, 1, 0, 0, 1, 1, 0, 0, 1, 0}, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Vertices: tt.vertices}
			if got := m.VertexCount(); got != tt.want {
				t.Errorf("VertexCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshTriangleCount(t *testing.T) {
	tests := []struct {
		name    string
		indices []uint32
		want    int
	}{
		{"empty", nil, 0},
		{"one triangle", []uint32{0, 1, 2}, 1},
		{"two triangles", []uint32{0, 1, 2, 2, 3, 0}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &Mesh{Indices: tt.indices}
			if got := m.TriangleCount(); got != tt.want {
				t.Errorf("TriangleCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestMeshBounds(t *testing.T) {
	t.Run("empty mesh", func(t *testing.T) {
		m := &Mesh{}
		if !m.IsEmpty() {
			t.Error("IsEmpty() = false for empty mesh, want true")
		}
		min, max := m.Bounds()
		if min != [3]float32{} || max != [3]float32{} {
			t.Errorf("Bounds() = %v, %v; want zero", min, max)
		}
	})
	t.Run("triangle", func(t *testing.T) {
		m := &Mesh{Vertices: []float32{0, 0, 0, 4, -1, 0, 2, 3, 1}}
		min, max := m.Bounds()
		if min != [3]float32{0, -1, 0} {
			t.Errorf("min = %v", min)
		}
		if max != [3]float32{4, 3, 1} {
			t.Errorf("max = %v", max)
		}
	})
}

// --- Compile-time interface check with a stub kernel ---

type stubRegion struct {
	min, max Point
}

func (r *stubRegion) Bounds() (min, max Point) { return r.min, r.max }

type stubSolid struct {
	minBB, maxBB [3]float64
}

func (s *stubSolid) BoundingBox() (min, max [3]float64) {
	return s.minBB, s.maxBB
}

// stubKernel is a minimal Kernel implementation that proves the interface
// is satisfiable.
type stubKernel struct{}

func (k *stubKernel) Polygon(ring []Point) (Region, error) {
	r := &stubRegion{min: ring[0], max: ring[0]}
	for _, p := range ring {
		for i := 0; i < 2; i++ {
			if p[i] < r.min[i] {
				r.min[i] = p[i]
			}
			if p[i] > r.max[i] {
				r.max[i] = p[i]
			}
		}
	}
	return r, nil
}

func (k *stubKernel) Difference(a, _ Region) Region { return a }

func (k *stubKernel) Extrude(r Region, height float64) Solid {
	min, max := r.Bounds()
	return &stubSolid{
		minBB: [3]float64{min[0], min[1], 0},
		maxBB: [3]float64{max[0], max[1], height},
	}
}

func (k *stubKernel) ToMesh(_ Solid) (*Mesh, error) {
	return &Mesh{}, nil
}

var _ Region = (*stubRegion)(nil)
var _ Solid = (*stubSolid)(nil)
var _ Kernel = (*stubKernel)(nil)

func TestStubKernelExtrude(t *testing.T) {
	var k Kernel = &stubKernel{}
	r, err := k.Polygon([]Point{{0, 0}, {10, 0}, {10, 20}})
	if err != nil {
		t.Fatal(err)
	}
	min, max := k.Extrude(r, 3).BoundingBox()
	if min != [3]float64{0, 0, 0} {
		t.Errorf("min = %v, want [0 0 0]", min)
	}
	if max != [3]float64{10, 20, 3} {
		t.Errorf("max = %v, want [10 20 3]", max)
	}
}
