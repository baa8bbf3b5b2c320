package graph

// ---------------------------------------------------------------------------
// Arc
// ---------------------------------------------------------------------------

// End selects one of an arc's two ends.
type End int

const (
	Start End = 0 // end node 0, before the first interior point
	Stop  End = 1 // end node 1, after the last interior point
)

// Other returns the opposite end.
func (e End) Other() End { return 1 - e }

func (e End) valid() bool { return e == Start || e == Stop }

func (e End) String() string {
	switch e {
	case Start:
		return "start"
	case Stop:
		return "stop"
	default:
		return "invalid"
	}
}

// Arc is an ordered polyline between two end nodes. When both ends name the
// same node the arc is a closed loop by itself.
//
// Arc values returned from an ArcGraph are copies; mutating them has no
// effect on the graph.
type Arc struct {
	ID       ArcID
	EndNodes [2]EndNodeID
	Points   []Vec3 // interior points, ordered from Start to Stop
}

// End returns the end node id at the given end.
func (a Arc) End(e End) EndNodeID {
	return a.EndNodes[e]
}

// IsClosed reports whether the arc starts and ends on the same node.
func (a Arc) IsClosed() bool {
	return a.EndNodes[Start] == a.EndNodes[Stop]
}

// EndAt returns which end of the arc touches node n. For closed arcs it
// returns Start. ok is false when the arc does not touch n.
func (a Arc) EndAt(n EndNodeID) (e End, ok bool) {
	switch n {
	case a.EndNodes[Start]:
		return Start, true
	case a.EndNodes[Stop]:
		return Stop, true
	}
	return Start, false
}

// adjacentPoint returns the interior point next to the given end, if any.
func (a Arc) adjacentPoint(e End) (Vec3, bool) {
	if len(a.Points) == 0 {
		return Vec3{}, false
	}
	if e == Start {
		return a.Points[0], true
	}
	return a.Points[len(a.Points)-1], true
}

func (a *Arc) clone() Arc {
	c := *a
	c.Points = append([]Vec3(nil), a.Points...)
	return c
}

// polyline returns the full point sequence given resolved end positions.
func (a Arc) polyline(start, stop Vec3) []Vec3 {
	pts := make([]Vec3, 0, len(a.Points)+2)
	pts = append(pts, start)
	pts = append(pts, a.Points...)
	return append(pts, stop)
}
