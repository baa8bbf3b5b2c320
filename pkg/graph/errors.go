package graph

import "errors"

var (
	// ErrNotManaged is returned when an id is unknown to the graph.
	ErrNotManaged = errors.New("graph: id not managed by this graph")

	// ErrInvalidEnd is returned for an End other than Start or Stop.
	ErrInvalidEnd = errors.New("graph: invalid arc end")

	// ErrIndexOutOfRange is returned for an interior point index outside the arc.
	ErrIndexOutOfRange = errors.New("graph: interior point index out of range")

	// ErrFullyConnected is returned by ConnectArcs when an arc has no free end.
	ErrFullyConnected = errors.New("graph: arc ends already fully connected")

	// ErrNotAdjacent is returned by JoinArcs when two arcs do not share a
	// node that only they touch.
	ErrNotAdjacent = errors.New("graph: arcs do not share a degree-two end node")

	// ErrTooFewPoints is returned when a polyline cannot form an arc.
	ErrTooFewPoints = errors.New("graph: an arc needs at least two points")

	// ErrInvalidConfig is returned by Config.Validate.
	ErrInvalidConfig = errors.New("graph: invalid configuration")
)
