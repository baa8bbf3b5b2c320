package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2: geometric warnings
// ---------------------------------------------------------------------------

func (g *ArcGraph) validateGeometryLocked() []ValidationError {
	var warnings []ValidationError
	warnings = append(warnings, g.validateArcLengths()...)
	warnings = append(warnings, g.validateClosedArcs()...)
	warnings = append(warnings, g.validateRepeatedPoints()...)
	return warnings
}

// polylineLocked resolves an arc's points, skipping arcs with dangling ends
// (reported by the structural tier).
func (g *ArcGraph) polylineLocked(a *Arc) ([]Vec3, bool) {
	start, ok := g.nodes[a.EndNodes[Start]]
	if !ok {
		return nil, false
	}
	stop, ok := g.nodes[a.EndNodes[Stop]]
	if !ok {
		return nil, false
	}
	return a.polyline(start.Position, stop.Position), true
}

// validateArcLengths warns about arcs whose polyline has zero length.
func (g *ArcGraph) validateArcLengths() []ValidationError {
	var warnings []ValidationError

	for _, id := range sortedKeys(g.arcs) {
		pts, ok := g.polylineLocked(g.arcs[id])
		if !ok {
			continue
		}
		if polylineLength(pts) == 0 {
			warnings = append(warnings, ValidationError{
				ArcID:    id,
				Message:  "arc has zero length",
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}

// validateClosedArcs warns about closed arcs with fewer than two interior
// points. Such an arc encloses no area and can never bound a face.
func (g *ArcGraph) validateClosedArcs() []ValidationError {
	var warnings []ValidationError

	for _, id := range sortedKeys(g.arcs) {
		a := g.arcs[id]
		if a.IsClosed() && len(a.Points) < 2 {
			warnings = append(warnings, ValidationError{
				ArcID:    id,
				NodeID:   a.EndNodes[Start],
				Message:  fmt.Sprintf("closed arc has %d interior points and encloses no area", len(a.Points)),
				Severity: SeverityWarning,
			})
		}
	}

	return warnings
}

// validateRepeatedPoints warns about consecutive coincident points inside
// an arc's polyline.
func (g *ArcGraph) validateRepeatedPoints() []ValidationError {
	var warnings []ValidationError

	for _, id := range sortedKeys(g.arcs) {
		pts, ok := g.polylineLocked(g.arcs[id])
		if !ok || polylineLength(pts) == 0 {
			continue
		}
		for i := 1; i < len(pts); i++ {
			if pts[i] == pts[i-1] {
				warnings = append(warnings, ValidationError{
					ArcID:    id,
					Message:  fmt.Sprintf("points %d and %d coincide at %v", i-1, i, pts[i]),
					Severity: SeverityWarning,
				})
			}
		}
	}

	return warnings
}
