package loops

import "errors"

var (
	// ErrNoOuterLoop is returned when the arcs form no closed loop at all,
	// so no polygon can be built from them.
	ErrNoOuterLoop = errors.New("loops: no outer loop found")

	// ErrTooManyLoopUses is returned by Classify when a loop list uses an
	// arc in more than two loops, or twice in the same direction.
	ErrTooManyLoopUses = errors.New("loops: arc used by more than two loops")
)
