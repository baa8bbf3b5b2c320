package loops

import (
	"fmt"

	"github.com/chazu/arcmesh/pkg/graph"
	"github.com/samber/lo"
)

// Classify picks the outer loop, the one whose bounding box contains every
// other loop's box; all remaining loops are holes and keep their order.
//
// When no box contains all the others, or more than one does, the geometry
// breaks the nesting assumption. The loop with the largest box area is taken
// as outer (ties go to the smallest arc id), the set is marked Ambiguous and
// a warning is logged.
//
// An arc may appear in at most two of the loops, once per direction.
// Anything more fails with ErrTooManyLoopUses.
func Classify(loops []Loop) (LoopSet, error) {
	if len(loops) == 0 {
		return LoopSet{}, ErrNoOuterLoop
	}
	if err := checkUses(loops); err != nil {
		return LoopSet{}, err
	}

	idx := lo.Range(len(loops))
	containsAll := lo.Filter(idx, func(i int, _ int) bool {
		for j, o := range loops {
			if i != j && !loops[i].Bounds.Contains(o.Bounds) {
				return false
			}
		}
		return true
	})

	pool := containsAll
	if len(containsAll) != 1 {
		log.Warnf("%d of %d loops contain every other loop; choosing the largest as outer",
			len(containsAll), len(loops))
		if len(pool) == 0 {
			pool = idx
		}
	}

	outer := lo.MaxBy(pool, func(a, b int) bool {
		la, lb := loops[a], loops[b]
		if la.Bounds.Area() != lb.Bounds.Area() {
			return la.Bounds.Area() > lb.Bounds.Area()
		}
		return la.MinArc() < lb.MinArc()
	})

	set := LoopSet{Outer: loops[outer], Ambiguous: len(containsAll) != 1}
	for i, l := range loops {
		if i != outer {
			set.Inner = append(set.Inner, l)
		}
	}
	log.Debugf("classified %d loops: outer %v, %d inner", len(loops), set.Outer, len(set.Inner))
	return set, nil
}

// checkUses rejects loops that use an arc more than twice, or twice in the
// same direction. A closed one-arc loop takes both directions of its arc.
func checkUses(loops []Loop) error {
	type uses struct{ forward, backward int }
	count := make(map[graph.ArcID]*uses)
	for _, l := range loops {
		for i, id := range l.Arcs {
			u, ok := count[id]
			if !ok {
				u = &uses{}
				count[id] = u
			}
			switch {
			case len(l.Arcs) == 1:
				u.forward++
				u.backward++
			case l.Forward[i]:
				u.forward++
			default:
				u.backward++
			}
			if u.forward > 1 || u.backward > 1 {
				return fmt.Errorf("%w: %v", ErrTooManyLoopUses, id)
			}
		}
	}
	return nil
}
