package graph

import "fmt"

// ValidationSeverity indicates whether a validation finding means the graph
// is corrupt or is merely suspicious.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // invariant broken
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding. ArcID and NodeID
// are zero when the finding does not concern a specific arc or node.
type ValidationError struct {
	ArcID    ArcID
	NodeID   EndNodeID
	Message  string
	Severity ValidationSeverity
}

func (e ValidationError) Error() string {
	switch {
	case !e.ArcID.IsZero():
		return fmt.Sprintf("[%s] %v: %s", e.Severity, e.ArcID, e.Message)
	case !e.NodeID.IsZero():
		return fmt.Sprintf("[%s] %v: %s", e.Severity, e.NodeID, e.Message)
	default:
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
}

// ValidationResult bundles errors (invariant violations) and warnings
// (geometric oddities) from both validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether no errors were found.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs the structural checks and returns every finding. An empty
// slice means every graph invariant holds. Validate never mutates the graph
// apart from rebuilding the spatial locator if it is stale.
func (g *ArcGraph) Validate() []ValidationError {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.validateStructureLocked()
}

// ValidateAll runs the structural and geometric tiers and separates errors
// from warnings.
func (g *ArcGraph) ValidateAll() ValidationResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	var result ValidationResult
	findings := append(g.validateStructureLocked(), g.validateGeometryLocked()...)
	for _, f := range findings {
		if f.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, f)
		} else {
			result.Errors = append(result.Errors, f)
		}
	}
	return result
}
