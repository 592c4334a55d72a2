package tree

import (
	"fmt"

	"github.com/chazu/geonodes/pkg/graph"
)

// Geometry is a geometry-typed Port that carries a pending selection and a
// pending domain. Both slots are consumed by the next field read, field
// write or geometry operation, so
//
//	geo.Select(3).Position().Set(v)
//
// restricts exactly that one write.
type Geometry struct {
	*Port

	selection once[any]
	domain    once[graph.Domain]
}

// AsGeometry returns s as a Geometry. It fails for non-geometry sockets.
func AsGeometry(s Socket) (*Geometry, error) {
	if g, ok := s.(*Geometry); ok {
		return g, nil
	}
	p := s.socket()
	if p == nil || p.typ != graph.TypeGeometry {
		return nil, fmt.Errorf("expected a Geometry socket, got %v", s)
	}
	return &Geometry{Port: p}, nil
}

// Select attaches a selector for the next operation: an integer index, a
// Span, an Integer port (index equality) or a Boolean port. Select(nil)
// clears a pending selector.
func (g *Geometry) Select(sel any) *Geometry {
	if sel == nil {
		g.selection.Take()
		return g
	}
	g.selection.Put(sel)
	return g
}

// On sets the domain for the next operation.
func (g *Geometry) On(d graph.Domain) *Geometry {
	g.domain.Put(d)
	return g
}

// Point scopes the next operation to points.
func (g *Geometry) Point() *Geometry { return g.On(graph.DomainPoint) }

// Edge scopes the next operation to edges.
func (g *Geometry) Edge() *Geometry { return g.On(graph.DomainEdge) }

// Face scopes the next operation to faces.
func (g *Geometry) Face() *Geometry { return g.On(graph.DomainFace) }

// Corner scopes the next operation to face corners.
func (g *Geometry) Corner() *Geometry { return g.On(graph.DomainCorner) }

// Curve scopes the next operation to curves.
func (g *Geometry) Curve() *Geometry { return g.On(graph.DomainCurve) }

// Spline scopes the next operation to splines.
func (g *Geometry) Spline() *Geometry { return g.On(graph.DomainSpline) }

// Instance scopes the next operation to instances.
func (g *Geometry) Instance() *Geometry { return g.On(graph.DomainInstance) }

// Pending reports whether a selector or a domain is waiting to be consumed.
func (g *Geometry) Pending() (selection, domain bool) {
	return g.selection.Pending(), g.domain.Pending()
}

// Jump points g at the geometry output of to and clears both slots.
func (g *Geometry) Jump(to Socket) error {
	g.selection.Take()
	g.domain.Take()
	return g.Port.Jump(to)
}

// InPlace applies op and jumps g to the result.
func (g *Geometry) InPlace(op Op, other any) error {
	r, err := g.Port.Apply(op, other)
	if err != nil {
		return err
	}
	return g.Jump(r)
}

// AddInPlace joins other into g.
func (g *Geometry) AddInPlace(other any) error { return g.InPlace(OpAdd, other) }

// ---------------------------------------------------------------------------
// Slot resolution
// ---------------------------------------------------------------------------

// resolveSelection takes the pending selector and ANDs it with explicit.
// Nothing attached returns explicit's predicate unchanged.
func (g *Geometry) resolveSelection(explicit any) (*Port, error) {
	raw, ok := g.selection.Take()
	return g.tree.selection(raw, ok, explicit)
}

// resolveDomain takes the pending domain and checks it against allowed.
func (g *Geometry) resolveDomain(name string, allowed []graph.Domain, def graph.Domain) (graph.Domain, error) {
	d, ok := g.domain.Take()
	return domainFor(name, allowed, def, d, ok)
}

func domainFor(name string, allowed []graph.Domain, def graph.Domain, d graph.Domain, set bool) (graph.Domain, error) {
	if !set {
		return def, nil
	}
	for _, a := range allowed {
		if a == d {
			return d, nil
		}
	}
	return graph.DomainNone, &UnsupportedDomainError{Field: name, Domain: d, Allowed: allowed}
}

// mutate creates a geometry-to-geometry node and jumps g to its output.
// sel may be nil.
func (g *Geometry) mutate(kind, geoSocket string, sel *Port, inputs, params map[string]any) error {
	if inputs == nil {
		inputs = make(map[string]any)
	}
	inputs[geoSocket] = g.Port
	if sel != nil {
		inputs["Selection"] = sel
	}
	n, err := g.tree.Node(kind, inputs, params)
	if err != nil {
		return err
	}
	out, err := n.Output(geoSocket)
	if err != nil {
		return err
	}
	return g.Jump(out)
}

// ---------------------------------------------------------------------------
// Geometry operations
// ---------------------------------------------------------------------------

// Join joins others into g. Pending slots are discarded.
func (g *Geometry) Join(others ...any) error {
	items := append([]any{g.Port}, others...)
	j, err := g.tree.JoinGeometry(items...)
	if err != nil {
		return err
	}
	return g.Jump(j)
}

// SetMaterial assigns a material (a name, a graph.Resource or a Material
// port) to the selected faces.
func (g *Geometry) SetMaterial(material any) error {
	if _, err := g.resolveDomain("material", []graph.Domain{graph.DomainFace}, graph.DomainFace); err != nil {
		g.selection.Take()
		return err
	}
	sel, err := g.resolveSelection(nil)
	if err != nil {
		return err
	}
	mat, err := g.tree.resourceOperand(graph.ResourceMaterial, material)
	if err != nil {
		return err
	}
	return g.mutate("Set Material", "Geometry", sel, map[string]any{"Material": mat}, nil)
}

var deleteDomains = []graph.Domain{
	graph.DomainPoint, graph.DomainEdge, graph.DomainFace,
	graph.DomainCurve, graph.DomainSpline, graph.DomainInstance,
}

// Delete removes the selected elements of the pending domain (points by
// default). mode is ALL, EDGE_FACE or ONLY_FACE; empty means ALL.
func (g *Geometry) Delete(mode string) error {
	d, err := g.resolveDomain("delete", deleteDomains, graph.DomainPoint)
	if err != nil {
		g.selection.Take()
		return err
	}
	sel, err := g.resolveSelection(nil)
	if err != nil {
		return err
	}
	if mode == "" {
		mode = "ALL"
	}
	return g.mutate("Delete Geometry", "Geometry", sel, nil,
		map[string]any{"domain": d.HostName(), "mode": mode})
}
