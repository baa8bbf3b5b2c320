package main

import (
	"errors"
	"fmt"

	"github.com/chazu/arcmesh/pkg/engine"
	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/kernel"
	"github.com/chazu/arcmesh/pkg/kernel/sdfx"
	"github.com/chazu/arcmesh/pkg/loops"
	"github.com/chazu/arcmesh/pkg/tessellate"
	"github.com/samber/lo"
)

// NoPolygonWarning is reported when the arcs of a script close no loop.
const NoPolygonWarning = "cannot form a polygon: add a connecting arc"

// NotNestedWarning is reported for a loop set whose loops do not all lie
// inside one outer loop, as with overlapping or side by side shapes.
const NotNestedWarning = "loops do not nest inside one outer loop: the largest was taken as outer"

// DefaultHeight is the slab thickness used when meshing loop sets.
const DefaultHeight = 1.0

// colorPalette is a default palette used to assign distinct colors to meshes.
var colorPalette = []string{
	"#4A90D9", "#E67E22", "#2ECC71", "#9B59B6",
	"#E74C3C", "#1ABC9C", "#F39C12", "#3498DB",
}

// Options controls what App.Evaluate produces beyond the loops themselves.
type Options struct {
	Mesh   bool    // tessellate every loop set
	Height float64 // slab thickness for meshes
}

// App binds the script engine, loop extraction and meshing into one
// Evaluate call whose result serialises straight to JSON.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
	opts   Options
}

// MeshData is the JSON-serializable mesh format.
type MeshData struct {
	Vertices []float32 `json:"vertices"`
	Normals  []float32 `json:"normals"`
	Indices  []uint32  `json:"indices"`
	Source   string    `json:"source"`
	Color    string    `json:"color"`
}

// LoopData is one loop: its arcs in walk order and the ring they trace.
type LoopData struct {
	Arcs    []int64      `json:"arcs"`
	Forward []bool       `json:"forward"`
	Ring    [][2]float64 `json:"ring"`
}

// LoopSetData is a classified loop set. The outer ring winds
// counter-clockwise and inner rings clockwise.
type LoopSetData struct {
	Outer LoopData   `json:"outer"`
	Inner []LoopData `json:"inner"`
}

// EvalErrorData is a JSON-serializable error or warning.
type EvalErrorData struct {
	Line    int     `json:"line"`
	Col     int     `json:"col"`
	Message string  `json:"message"`
	Arcs    []int64 `json:"arcs,omitempty"`
}

// EvalResult is the full result of one evaluation.
type EvalResult struct {
	Session  string          `json:"session"`
	Arcs     int             `json:"arcs"`
	EndNodes int             `json:"endNodes"`
	Loops    []LoopSetData   `json:"loops"`
	Meshes   []MeshData      `json:"meshes"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates an App with a default engine and the sdfx kernel. Meshing
// is off.
func NewApp() *App {
	return NewAppWithOptions(engine.NewEngine(), sdfx.New(), Options{Height: DefaultHeight})
}

// NewAppWithOptions creates an App over an existing engine and kernel.
func NewAppWithOptions(eng *engine.Engine, k kernel.Kernel, opts Options) *App {
	if opts.Height <= 0 {
		opts.Height = DefaultHeight
	}
	return &App{engine: eng, kernel: k, opts: opts}
}

func newResult() EvalResult {
	return EvalResult{
		Loops:    []LoopSetData{},
		Meshes:   []MeshData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}
}

// Evaluate runs a script and returns its loops, meshes, errors and
// warnings. Loop sets come from the script's own (loops ...) calls; a
// script that never asks gets one loop set over all of its arcs.
func (a *App) Evaluate(source string) EvalResult {
	result := newResult()

	// Step 1: Evaluate the script into an editing session.
	s, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		arcmLog.Errorf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			arcmLog.Errorf("script error: %v", e)
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	result.Session = s.ID.String()
	result.Arcs = s.Graph.ArcCount()
	result.EndNodes = s.Graph.EndNodeCount()
	for _, w := range s.Warnings {
		result.Warnings = append(result.Warnings, warningData(w.Line, w.Col, w.Message, w.Err, w.Arcs))
	}

	// Step 2: Check the graph the script left behind.
	v := s.Graph.ValidateAll()
	for _, e := range v.Errors {
		result.Errors = append(result.Errors, validationData(e))
	}
	for _, w := range v.Warnings {
		result.Warnings = append(result.Warnings, validationData(w))
	}

	// Step 3: Extract loops if the script did not.
	sets := s.LoopSets
	if len(sets) == 0 && len(s.Warnings) == 0 && s.Graph.ArcCount() > 0 {
		set, err := loops.Extract(s.Graph.FullView())
		switch {
		case errors.Is(err, loops.ErrNoOuterLoop):
			result.Warnings = append(result.Warnings, warningData(0, 0, err.Error(), err, s.Graph.ArcIDs()))
		case err != nil:
			arcmLog.Errorf("loop extraction failed: %v", err)
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			return result
		default:
			sets = []loops.LoopSet{set}
		}
	}

	// Step 4: Resolve rings and, when asked, meshes.
	for i, set := range sets {
		data, err := loopSetData(s.Graph, set)
		if err != nil {
			result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
			continue
		}
		result.Loops = append(result.Loops, data)
		if set.Ambiguous {
			result.Warnings = append(result.Warnings, EvalErrorData{
				Message: NotNestedWarning,
				Arcs:    arcIDs(lo.FlatMap(set.All(), func(l loops.Loop, _ int) []graph.ArcID { return l.Arcs })),
			})
		}

		if !a.opts.Mesh {
			continue
		}
		m, err := tessellate.Tessellate(s.Graph, set, a.kernel, a.opts.Height)
		if err != nil {
			arcmLog.Errorf("Tessellate error: %v", err)
			result.Errors = append(result.Errors, EvalErrorData{
				Message: "tessellation failed: " + err.Error(),
				Arcs:    arcIDs(set.Outer.Arcs),
			})
			continue
		}
		result.Meshes = append(result.Meshes, MeshData{
			Vertices: m.Vertices,
			Normals:  m.Normals,
			Indices:  m.Indices,
			Source:   m.Source,
			Color:    colorPalette[i%len(colorPalette)],
		})
	}

	arcmLog.Debugf("session %s: %d loop sets, %d meshes, %d errors, %d warnings",
		result.Session, len(result.Loops), len(result.Meshes), len(result.Errors), len(result.Warnings))
	return result
}

// warningData converts a warning, replacing the no-loop error with a
// message that tells the user what to do.
func warningData(line, col int, msg string, err error, arcs []graph.ArcID) EvalErrorData {
	if errors.Is(err, loops.ErrNoOuterLoop) {
		msg = NoPolygonWarning
	}
	return EvalErrorData{Line: line, Col: col, Message: msg, Arcs: arcIDs(arcs)}
}

func validationData(e graph.ValidationError) EvalErrorData {
	d := EvalErrorData{Message: e.Error()}
	if !e.ArcID.IsZero() {
		d.Arcs = []int64{int64(e.ArcID)}
	}
	return d
}

func loopSetData(src tessellate.PolylineSource, set loops.LoopSet) (LoopSetData, error) {
	p, err := tessellate.Rings(src, set)
	if err != nil {
		return LoopSetData{}, fmt.Errorf("resolving %v: %w", set.Outer, err)
	}
	data := LoopSetData{
		Outer: loopData(set.Outer, p.Outer),
		Inner: make([]LoopData, len(set.Inner)),
	}
	for i, l := range set.Inner {
		data.Inner[i] = loopData(l, p.Holes[i])
	}
	return data, nil
}

func loopData(l loops.Loop, ring []kernel.Point) LoopData {
	d := LoopData{
		Arcs:    arcIDs(l.Arcs),
		Forward: append([]bool(nil), l.Forward...),
		Ring:    make([][2]float64, len(ring)),
	}
	for i, p := range ring {
		d.Ring[i] = [2]float64(p)
	}
	return d
}

func arcIDs(ids []graph.ArcID) []int64 {
	if len(ids) == 0 {
		return nil
	}
	out := make([]int64, len(ids))
	for i, id := range ids {
		out[i] = int64(id)
	}
	return out
}
