package engine

import (
	"fmt"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/chazu/arcmesh/pkg/loops"
	zygo "github.com/glycerine/zygomys/zygo"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpVec3 wraps a graph.Vec3.
type sexpVec3 struct {
	vec graph.Vec3
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// sexpArc is a handle to an arc of the session graph.
type sexpArc struct {
	id graph.ArcID
}

func (a *sexpArc) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(arc %d)", int64(a.id))
}
func (a *sexpArc) Type() *zygo.RegisteredType { return nil }

// sexpNode is a handle to an end node of the session graph.
type sexpNode struct {
	id graph.EndNodeID
}

func (n *sexpNode) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(end-node %d)", int64(n.id))
}
func (n *sexpNode) Type() *zygo.RegisteredType { return nil }

// sexpLoops wraps the result of a loops call.
type sexpLoops struct {
	set loops.LoopSet
}

func (l *sexpLoops) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(loops %v)", l.set)
}
func (l *sexpLoops) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A keyword
// with no value following it maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

// toInt extracts an int from a SexpInt.
func toInt(s zygo.Sexp) (int, error) {
	if v, ok := s.(*zygo.SexpInt); ok {
		return int(v.Val), nil
	}
	return 0, fmt.Errorf("expected integer, got %T (%s)", s, s.SexpString(nil))
}

// toKeyword extracts a keyword name or plain string from a Sexp.
func toKeyword(s zygo.Sexp) (string, error) {
	if name, ok := isKW(s); ok {
		return name, nil
	}
	if str, ok := s.(*zygo.SexpStr); ok {
		return str.S, nil
	}
	return "", fmt.Errorf("expected keyword, got %T (%s)", s, s.SexpString(nil))
}

// toEnd converts :start or :stop to a graph.End.
func toEnd(s zygo.Sexp) (graph.End, error) {
	name, err := toKeyword(s)
	if err != nil {
		return 0, fmt.Errorf("expected :start or :stop: %w", err)
	}
	switch name {
	case "start":
		return graph.Start, nil
	case "stop":
		return graph.Stop, nil
	}
	return 0, fmt.Errorf("invalid end %q, expected start or stop", name)
}

// toVec3 extracts a Vec3 from a sexpVec3.
func toVec3(s zygo.Sexp) (graph.Vec3, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return graph.Vec3{}, fmt.Errorf("expected vec, got %T (%s)", s, s.SexpString(nil))
}

// toArc extracts an ArcID from a sexpArc.
func toArc(s zygo.Sexp) (graph.ArcID, error) {
	if a, ok := s.(*sexpArc); ok {
		return a.id, nil
	}
	return graph.NoArc, fmt.Errorf("expected arc, got %T (%s)", s, s.SexpString(nil))
}

// toNode extracts an EndNodeID from a sexpNode.
func toNode(s zygo.Sexp) (graph.EndNodeID, error) {
	if n, ok := s.(*sexpNode); ok {
		return n.id, nil
	}
	return graph.NoEndNode, fmt.Errorf("expected end node, got %T (%s)", s, s.SexpString(nil))
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %T", s)
}

// flatten expands list and array arguments one level, so builtins accept
// both (f a b c) and (f [a b c]).
func flatten(args []zygo.Sexp) ([]zygo.Sexp, error) {
	var out []zygo.Sexp
	for _, a := range args {
		switch a.(type) {
		case *zygo.SexpPair, *zygo.SexpArray:
			items, err := sexpListToSlice(a)
			if err != nil {
				return nil, err
			}
			out = append(out, items...)
		default:
			out = append(out, a)
		}
	}
	return out, nil
}

// toVecs converts every argument, lists expanded, to a point.
func toVecs(args []zygo.Sexp) ([]graph.Vec3, error) {
	items, err := flatten(args)
	if err != nil {
		return nil, err
	}
	pts := make([]graph.Vec3, 0, len(items))
	for i, it := range items {
		p, err := toVec3(it)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		pts = append(pts, p)
	}
	return pts, nil
}

// toArcs converts every argument, lists expanded, to an arc id.
func toArcs(args []zygo.Sexp) ([]graph.ArcID, error) {
	items, err := flatten(args)
	if err != nil {
		return nil, err
	}
	ids := make([]graph.ArcID, 0, len(items))
	for i, it := range items {
		id, err := toArc(it)
		if err != nil {
			return nil, fmt.Errorf("arc %d: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func arcList(ids []graph.ArcID) zygo.Sexp {
	items := make([]zygo.Sexp, len(ids))
	for i, id := range ids {
		items[i] = &sexpArc{id: id}
	}
	return zygo.MakeList(items)
}
