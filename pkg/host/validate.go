package host

import (
	"fmt"

	"github.com/chazu/geonodes/pkg/graph"
)

// ValidationSeverity indicates whether a validation finding makes the tree
// unusable or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // tree is broken
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

// ValidationError describes a single validation finding.
type ValidationError struct {
	NodeID   graph.NodeID       // zero if graph-level
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.NodeID.IsZero() {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] node %s: %s", e.Severity, e.NodeID, e.Message)
}

// ValidationResult splits findings into errors and warnings.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// OK reports whether there are no errors.
func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate runs all structural checks on the graph. It never mutates it.
func Validate(m *Memory) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateDAG(m)...)
	errs = append(errs, validateLinks(m)...)
	errs = append(errs, validateOutputs(m)...)
	errs = append(errs, validateOrphans(m)...)
	errs = append(errs, validateGeometryInputs(m)...)
	errs = append(errs, validateZones(m)...)
	return errs
}

// ValidateAll runs Validate and separates errors from warnings.
func ValidateAll(m *Memory) ValidationResult {
	var result ValidationResult
	for _, e := range Validate(m) {
		if e.Severity == SeverityWarning {
			result.Warnings = append(result.Warnings, e)
		} else {
			result.Errors = append(result.Errors, e)
		}
	}
	return result
}

// validateDAG checks for cycles using DFS with 3-color marking.
// White (0) = unvisited, gray (1) = in current DFS path, black (2) = fully explored.
func validateDAG(m *Memory) []ValidationError {
	const (
		white = iota
		gray
		black
	)

	next := make(map[graph.NodeID][]graph.NodeID)
	for _, l := range m.links {
		next[l.From.Node] = append(next[l.From.Node], l.To.Node)
	}

	color := make(map[graph.NodeID]int)
	var errs []ValidationError

	var visit func(id graph.NodeID) bool
	visit = func(id graph.NodeID) bool {
		switch color[id] {
		case black:
			return false
		case gray:
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  fmt.Sprintf("cycle detected: node %s is part of a cycle", id),
				Severity: SeverityError,
			})
			return true
		}
		color[id] = gray
		for _, n := range next[id] {
			if visit(n) {
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, id := range m.sortedIDs() {
		if color[id] == white && visit(id) {
			// One cycle error is sufficient.
			break
		}
	}
	return errs
}

// validateLinks checks that every link endpoint names an existing node and
// socket.
func validateLinks(m *Memory) []ValidationError {
	var errs []ValidationError
	for _, l := range m.links {
		src, dst := m.Nodes[l.From.Node], m.Nodes[l.To.Node]
		switch {
		case src == nil:
			errs = append(errs, ValidationError{
				NodeID:   l.To.Node,
				Message:  fmt.Sprintf("link source %s does not exist", l.From.Node),
				Severity: SeverityError,
			})
		case dst == nil:
			errs = append(errs, ValidationError{
				NodeID:   l.From.Node,
				Message:  fmt.Sprintf("link target %s does not exist", l.To.Node),
				Severity: SeverityError,
			})
		default:
			if _, ok := src.output(l.From.Socket); !ok {
				errs = append(errs, ValidationError{
					NodeID:   src.ID,
					Message:  fmt.Sprintf("linked output %q does not exist", l.From.Socket),
					Severity: SeverityError,
				})
			}
			if _, ok := dst.input(l.To.Socket); !ok {
				errs = append(errs, ValidationError{
					NodeID:   dst.ID,
					Message:  fmt.Sprintf("linked input %q does not exist", l.To.Socket),
					Severity: SeverityError,
				})
			}
		}
	}
	return errs
}

// validateOutputs warns about group outputs nothing is linked into.
func validateOutputs(m *Memory) []ValidationError {
	out := m.Nodes[GroupOutput]
	if out == nil {
		return nil
	}
	var errs []ValidationError
	for _, s := range out.Inputs {
		if len(m.LinksInto(graph.InputRef{Node: out.ID, Socket: s.Name})) == 0 {
			errs = append(errs, ValidationError{
				NodeID:   out.ID,
				Message:  fmt.Sprintf("group output %q is not linked", s.Name),
				Severity: SeverityWarning,
			})
		}
	}
	return errs
}

// validateOrphans warns about nodes whose results never reach the group
// output. Nodes are walked backwards from the output, BFS-style.
func validateOrphans(m *Memory) []ValidationError {
	out := m.Nodes[GroupOutput]
	if out == nil {
		return nil
	}

	prev := make(map[graph.NodeID][]graph.NodeID)
	for _, l := range m.links {
		prev[l.To.Node] = append(prev[l.To.Node], l.From.Node)
	}

	reached := map[graph.NodeID]bool{out.ID: true}
	queue := []graph.NodeID{out.ID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, p := range prev[id] {
			if !reached[p] {
				reached[p] = true
				queue = append(queue, p)
			}
		}
	}

	var errs []ValidationError
	for _, id := range m.order {
		if reached[id] || id == GroupInput {
			continue
		}
		errs = append(errs, ValidationError{
			NodeID:   id,
			Message:  "result does not reach the group output",
			Severity: SeverityWarning,
		})
	}
	return errs
}

// validateGeometryInputs warns about geometry inputs with nothing linked,
// which the host evaluates as empty geometry.
func validateGeometryInputs(m *Memory) []ValidationError {
	var errs []ValidationError
	for _, id := range m.order {
		n := m.Nodes[id]
		if n.Kind == GroupOutput {
			continue
		}
		for _, s := range n.Inputs {
			if s.Type != graph.TypeGeometry {
				continue
			}
			if len(m.LinksInto(graph.InputRef{Node: id, Socket: s.Name})) == 0 {
				errs = append(errs, ValidationError{
					NodeID:   id,
					Message:  fmt.Sprintf("geometry input %q is not linked", s.Name),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

// validateZones reports zone input nodes without an output node, and warns
// about state items that are never written back.
func validateZones(m *Memory) []ValidationError {
	var errs []ValidationError
	for _, id := range m.order {
		n := m.Nodes[id]
		if _, ok := zoneKinds[n.Kind]; !ok {
			continue
		}
		out, ok := m.zones[id]
		if !ok {
			errs = append(errs, ValidationError{
				NodeID:   id,
				Message:  "zone input is not paired with an output node",
				Severity: SeverityError,
			})
			continue
		}
		for _, s := range m.Nodes[out].Inputs {
			if s.Name == "Skip" {
				continue
			}
			if len(m.LinksInto(graph.InputRef{Node: out, Socket: s.Name})) == 0 {
				errs = append(errs, ValidationError{
					NodeID:   out,
					Message:  fmt.Sprintf("zone item %q is not linked", s.Name),
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}
