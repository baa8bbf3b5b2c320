package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 1: structural validation
// ---------------------------------------------------------------------------

func (g *ArcGraph) validateStructureLocked() []ValidationError {
	var errs []ValidationError
	errs = append(errs, g.validateArcEnds()...)
	errs = append(errs, g.validateIncidence()...)
	errs = append(errs, g.validateSnapSeparation()...)
	return errs
}

// validateArcEnds checks that every arc end resolves to a live node that
// lists the arc as incident.
func (g *ArcGraph) validateArcEnds() []ValidationError {
	var errs []ValidationError

	for _, id := range sortedKeys(g.arcs) {
		a := g.arcs[id]
		if a.ID != id {
			errs = append(errs, ValidationError{
				ArcID:    id,
				Message:  fmt.Sprintf("arc is registered under %v but records id %v", id, a.ID),
				Severity: SeverityError,
			})
		}
		for _, e := range []End{Start, Stop} {
			nid := a.EndNodes[e]
			n, ok := g.nodes[nid]
			if !ok {
				errs = append(errs, ValidationError{
					ArcID:    id,
					Message:  fmt.Sprintf("%s end references missing %v", e, nid),
					Severity: SeverityError,
				})
				continue
			}
			if !n.HasArc(id) {
				errs = append(errs, ValidationError{
					ArcID:    id,
					NodeID:   nid,
					Message:  fmt.Sprintf("%s end node does not list the arc as incident", e),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateIncidence checks that every node has at least one incident arc
// and that each listed arc really ends on the node.
func (g *ArcGraph) validateIncidence() []ValidationError {
	var errs []ValidationError

	for _, nid := range g.endNodeIDsLocked() {
		n := g.nodes[nid]
		if len(n.arcs) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   nid,
				Message:  "end node has no incident arcs (orphan)",
				Severity: SeverityError,
			})
		}
		for _, aid := range n.Arcs() {
			a, ok := g.arcs[aid]
			if !ok {
				errs = append(errs, ValidationError{
					NodeID:   nid,
					Message:  fmt.Sprintf("incident set lists missing %v", aid),
					Severity: SeverityError,
				})
				continue
			}
			if _, ok := a.EndAt(nid); !ok {
				errs = append(errs, ValidationError{
					ArcID:    aid,
					NodeID:   nid,
					Message:  "incident set lists an arc that does not end here",
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateSnapSeparation checks that no two nodes lie within the snap
// radius of each other. Each offending pair is reported once.
func (g *ArcGraph) validateSnapSeparation() []ValidationError {
	var errs []ValidationError
	radius := g.cfg.radius()

	for _, nid := range g.endNodeIDsLocked() {
		other, ok := g.locator.nearest(g.nodes, g.nodes[nid].Position, radius, nid)
		if !ok || other < nid {
			continue
		}
		errs = append(errs, ValidationError{
			NodeID: nid,
			Message: fmt.Sprintf("%v lies %.6g from %v, within snap radius %.6g",
				nid, g.nodes[nid].Position.Dist(g.nodes[other].Position), other, radius),
			Severity: SeverityError,
		})
	}

	return errs
}

func sortedKeys(m map[ArcID]*Arc) []ArcID {
	set := make(map[ArcID]struct{}, len(m))
	for id := range m {
		set[id] = struct{}{}
	}
	return sortedArcIDs(set)
}
