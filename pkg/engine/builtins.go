package engine

import (
	"errors"
	"fmt"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/loops"
	zygo "github.com/glycerine/zygomys/zygo"
)

// builtinFunc is the signature zygomys expects from Go functions.
type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// registerBuiltins installs the arc editing builtins into a zygomys
// environment. Every builtin operates on the session graph.
//
// Names use underscores because preprocessSource rewrites kebab-case, so
// scripts call (arc-between ...) and the environment sees arc_between.
func registerBuiltins(env *zygo.Zlisp, s *Session) {
	g := s.Graph

	// -----------------------------------------------------------------------
	// (vec 1 2) or (vec 1 2 3)
	// -----------------------------------------------------------------------
	env.AddFunction("vec", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 && len(args) != 3 {
			return zygo.SexpNull, fmt.Errorf("vec requires 2 or 3 arguments, got %d", len(args))
		}
		var c [3]float64
		for i, a := range args {
			f, err := toFloat64(a)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("vec: %c: %w", "xyz"[i], err)
			}
			c[i] = f
		}
		return &sexpVec3{vec: graph.Vec3{X: c[0], Y: c[1], Z: c[2]}}, nil
	})

	// -----------------------------------------------------------------------
	// (arc (vec 0 0) (vec 5 2) (vec 10 0))
	// The first and last points become end nodes.
	// -----------------------------------------------------------------------
	env.AddFunction("arc", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pts, err := toVecs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		id, err := g.CreateArcFromPolyline(pts)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc: %w", err)
		}
		return &sexpArc{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (arc-between n1 n2 :via [(vec 1 1) (vec 2 1)])
	// -----------------------------------------------------------------------
	env.AddFunction("arc_between", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		pa := parseArgs(args)
		if len(pa.positional) != 2 {
			return zygo.SexpNull, fmt.Errorf("arc-between requires two end nodes")
		}
		a, err := toNode(pa.positional[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc-between: %w", err)
		}
		b, err := toNode(pa.positional[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc-between: %w", err)
		}
		var via []graph.Vec3
		if v, ok := pa.kw["via"]; ok {
			if via, err = toVecs([]zygo.Sexp{v}); err != nil {
				return zygo.SexpNull, fmt.Errorf("arc-between: via: %w", err)
			}
		}
		id, err := g.CreateArcBetween(a, b, via)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("arc-between: %w", err)
		}
		return &sexpArc{id: id}, nil
	})

	// -----------------------------------------------------------------------
	// (end-node (vec 0 0))   creates or snaps onto a node
	// (end-node a :start)    the node at one end of an arc
	// -----------------------------------------------------------------------
	env.AddFunction("end_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 1:
			p, err := toVec3(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("end-node: %w", err)
			}
			return &sexpNode{id: g.CreateEndNode(p)}, nil
		case 2:
			id, err := toArc(args[0])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("end-node: %w", err)
			}
			e, err := toEnd(args[1])
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("end-node: %w", err)
			}
			a, ok := g.Arc(id)
			if !ok {
				return zygo.SexpNull, fmt.Errorf("end-node: %w: %v", graph.ErrNotManaged, id)
			}
			return &sexpNode{id: a.End(e)}, nil
		}
		return zygo.SexpNull, fmt.Errorf("end-node requires a vec, or an arc and an end")
	})

	// -----------------------------------------------------------------------
	// (move-node n (vec 3 4))
	// Returns the surviving node, which differs from n after a snap.
	// -----------------------------------------------------------------------
	env.AddFunction("move_node", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("move-node requires a node and a vec")
		}
		n, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		p, err := toVec3(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		survivor, err := g.MoveEndNode(n, p)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("move-node: %w", err)
		}
		return &sexpNode{id: survivor}, nil
	})

	// -----------------------------------------------------------------------
	// (merge-nodes keep drop)
	// -----------------------------------------------------------------------
	env.AddFunction("merge_nodes", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("merge-nodes requires two end nodes")
		}
		a, err := toNode(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge-nodes: %w", err)
		}
		b, err := toNode(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge-nodes: %w", err)
		}
		survivor, err := g.MergeEndNodes(a, b)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("merge-nodes: %w", err)
		}
		return &sexpNode{id: survivor}, nil
	})

	env.AddFunction("connect", arcPairBuiltin("connect", true, g.ConnectArcs))
	env.AddFunction("join", arcPairBuiltin("join", false, g.JoinArcs))

	// -----------------------------------------------------------------------
	// (split a 2)  turns interior point 2 into an end node
	// -----------------------------------------------------------------------
	env.AddFunction("split", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 2 {
			return zygo.SexpNull, fmt.Errorf("split requires an arc and a point index")
		}
		id, err := toArc(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("split: %w", err)
		}
		idx, err := toInt(args[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("split: %w", err)
		}
		created, err := g.SplitArc(id, idx)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("split: %w", err)
		}
		return &sexpArc{id: created}, nil
	})

	env.AddFunction("delete_arc", arcBuiltin("delete-arc", func(id graph.ArcID) (zygo.Sexp, error) {
		return zygo.SexpNull, g.DeleteArc(id)
	}))
	env.AddFunction("straighten", arcBuiltin("straighten", func(id graph.ArcID) (zygo.Sexp, error) {
		return &sexpArc{id: id}, g.ClearInteriorPoints(id)
	}))
	env.AddFunction("arc_length", arcBuiltin("arc-length", func(id graph.ArcID) (zygo.Sexp, error) {
		l, err := g.ArcLength(id)
		return &zygo.SexpFloat{Val: l}, err
	}))

	// -----------------------------------------------------------------------
	// (grow a)  every arc connected to a
	// -----------------------------------------------------------------------
	env.AddFunction("grow", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := toArcs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grow: %w", err)
		}
		grown, err := g.GrowSelection(ids)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("grow: %w", err)
		}
		return arcList(grown), nil
	})

	// -----------------------------------------------------------------------
	// (loops)          loops over every arc of the graph
	// (loops a b c)    loops over the given arcs only
	// Arcs that form no loop produce a warning and nil, not an error.
	// -----------------------------------------------------------------------
	env.AddFunction("loops", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		ids, err := toArcs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loops: %w", err)
		}
		if len(args) == 0 {
			ids = g.ArcIDs()
		}
		set, err := loops.ExtractArcs(g, ids)
		if errors.Is(err, loops.ErrNoOuterLoop) {
			s.warn(EvalWarning{Message: err.Error(), Arcs: ids, Err: err})
			return zygo.SexpNull, nil
		}
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("loops: %w", err)
		}
		s.LoopSets = append(s.LoopSets, set)
		return &sexpLoops{set: set}, nil
	})

	// -----------------------------------------------------------------------
	// (snap-radius 0.01)
	// -----------------------------------------------------------------------
	env.AddFunction("snap_radius", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("snap-radius requires one number")
		}
		r, err := toFloat64(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("snap-radius: %w", err)
		}
		cfg := g.Config()
		cfg.SnapRadius = r
		if err := g.SetConfig(cfg); err != nil {
			return zygo.SexpNull, fmt.Errorf("snap-radius: %w", err)
		}
		return &zygo.SexpFloat{Val: r}, nil
	})

	// -----------------------------------------------------------------------
	// (snapping :on) / (snapping :off)
	// -----------------------------------------------------------------------
	env.AddFunction("snapping", func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("snapping requires :on or :off")
		}
		mode, err := toKeyword(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("snapping: %w", err)
		}
		cfg := g.Config()
		switch mode {
		case "on":
			cfg.UseSnapping = true
		case "off":
			cfg.UseSnapping = false
		default:
			return zygo.SexpNull, fmt.Errorf("snapping: invalid mode %q, expected on or off", mode)
		}
		if err := g.SetConfig(cfg); err != nil {
			return zygo.SexpNull, fmt.Errorf("snapping: %w", err)
		}
		return zygo.SexpNull, nil
	})
}

// arcBuiltin adapts a single-arc operation: (name a).
func arcBuiltin(label string, op func(graph.ArcID) (zygo.Sexp, error)) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return zygo.SexpNull, fmt.Errorf("%s requires one arc", label)
		}
		id, err := toArc(args[0])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		res, err := op(id)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		return res, nil
	}
}

// arcPairBuiltin adapts a two-arc operation returning an arc: (name a b).
// With self set, (name a) is shorthand for (name a a).
func arcPairBuiltin(label string, self bool, op func(a, b graph.ArcID) (graph.ArcID, error)) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if self && len(args) == 1 {
			args = []zygo.Sexp{args[0], args[0]}
		}
		ids, err := toArcs(args)
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		if len(ids) != 2 {
			return zygo.SexpNull, fmt.Errorf("%s requires two arcs, got %d", label, len(ids))
		}
		id, err := op(ids[0], ids[1])
		if err != nil {
			return zygo.SexpNull, fmt.Errorf("%s: %w", label, err)
		}
		return &sexpArc{id: id}, nil
	}
}
