package tree

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
	"github.com/google/uuid"
)

// Tree is the expression-level view of one host graph.
type Tree struct {
	ID   uuid.UUID
	Name string
	Kind graph.TreeKind

	host      graph.Handle
	resources graph.Resources
	encoding  RangeEncoding
	log       *slog.Logger
}

// Option configures a Tree.
type Option func(*Tree)

// WithKind sets the tree kind. The default is a geometry tree.
func WithKind(k graph.TreeKind) Option { return func(t *Tree) { t.Kind = k } }

// WithResources sets where material, object, image and collection names are
// looked up.
func WithResources(r graph.Resources) Option { return func(t *Tree) { t.resources = r } }

// WithRangeEncoding selects how bounded index ranges become predicates.
func WithRangeEncoding(e RangeEncoding) Option { return func(t *Tree) { t.encoding = e } }

// WithLogger sets the logger for node creation events.
func WithLogger(l *slog.Logger) Option { return func(t *Tree) { t.log = l } }

// New returns a tree that builds into host.
func New(name string, host graph.Handle, opts ...Option) *Tree {
	t := &Tree{
		ID:       uuid.New(),
		Name:     name,
		Kind:     graph.TreeGeometry,
		host:     host,
		encoding: RangeAnd,
		log:      logging.NewNop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Host returns the graph the tree builds into.
func (t *Tree) Host() graph.Handle { return t.host }

// RangeEncoding returns the encoding used for bounded index ranges.
func (t *Tree) RangeEncoding() RangeEncoding { return t.encoding }

// Many groups values for a multi-input socket, such as the geometries of
// Join Geometry.
type Many []any

// ---------------------------------------------------------------------------
// Nodes
// ---------------------------------------------------------------------------

// Node is a node created through a Tree.
type Node struct {
	tree   *Tree
	handle graph.NodeHandle
}

// ID returns the host node id.
func (n *Node) ID() graph.NodeID { return n.handle.ID }

// Kind returns the node kind name.
func (n *Node) Kind() string { return n.handle.Kind }

// Handle returns the host handle.
func (n *Node) Handle() graph.NodeHandle { return n.handle }

// Output returns a port on the named output. The name may be the display
// name ("Vertex Count") or its snake_case form ("vertex_count").
func (n *Node) Output(name string) (*Port, error) {
	for _, s := range n.handle.Outputs {
		if s.Name == name || catalog.PyName(s.Name) == name {
			return n.tree.port(graph.OutputRef{Node: n.handle.ID, Socket: s.Name}, s.Type), nil
		}
	}
	return nil, fmt.Errorf("node %s has no output %q", n.handle.ID, name)
}

// Out returns a port on the first output, or nil if the node has none.
func (n *Node) Out() *Port {
	if len(n.handle.Outputs) == 0 {
		return nil
	}
	s := n.handle.Outputs[0]
	return n.tree.port(graph.OutputRef{Node: n.handle.ID, Socket: s.Name}, s.Type)
}

// Geometry returns the named output as a Geometry.
func (n *Node) Geometry(name string) (*Geometry, error) {
	p, err := n.Output(name)
	if err != nil {
		return nil, err
	}
	return AsGeometry(p)
}

// Node creates a node of the given kind. Each input value may be a Socket
// (linked), a Many (each element linked, literals through constant nodes),
// nil (left unset) or a literal stored on the socket. Host failures are
// returned unchanged.
func (t *Tree) Node(kind string, inputs map[string]any, params map[string]any) (*Node, error) {
	type pending struct {
		from   graph.OutputRef
		socket string
	}

	names := make([]string, 0, len(inputs))
	for name := range inputs {
		names = append(names, name)
	}
	sort.Strings(names)

	literals := make(map[string]any)
	var links []pending
	for _, name := range names {
		switch v := inputs[name].(type) {
		case nil:
		case Many:
			for _, item := range v {
				p, err := t.operand(item)
				if err != nil {
					return nil, fmt.Errorf("%s input %s: %w", kind, name, err)
				}
				links = append(links, pending{from: p.ref, socket: name})
			}
		default:
			p, ok, err := t.asPort(v)
			if err != nil {
				return nil, fmt.Errorf("%s input %s: %w", kind, name, err)
			}
			if ok {
				links = append(links, pending{from: p.ref, socket: name})
			} else {
				literals[name] = v
			}
		}
	}

	h, err := t.host.CreateNode(kind, literals, params)
	if err != nil {
		return nil, err
	}
	for _, l := range links {
		if err := t.host.Link(l.from, graph.InputRef{Node: h.ID, Socket: l.socket}); err != nil {
			return nil, err
		}
	}
	t.log.Debug("node", "tree", t.Name, "kind", kind, "id", h.ID, "links", len(links))
	return &Node{tree: t, handle: h}, nil
}

// operand returns v as a port, creating a constant node for literals.
func (t *Tree) operand(v any) (*Port, error) {
	p, ok, err := t.asPort(v)
	if err != nil {
		return nil, err
	}
	if ok {
		return p, nil
	}
	return t.Constant(v)
}

// asPort unwraps a Socket. It fails for sockets from another tree.
func (t *Tree) asPort(v any) (*Port, bool, error) {
	s, ok := v.(Socket)
	if !ok {
		return nil, false, nil
	}
	p := s.socket()
	if p == nil {
		return nil, false, fmt.Errorf("nil socket")
	}
	if p.tree != t {
		return nil, false, fmt.Errorf("socket %s belongs to tree %q, not %q", p.ref, p.tree.Name, t.Name)
	}
	return p, true, nil
}

// Constant creates an input node holding v and returns its output.
func (t *Tree) Constant(v any) (*Port, error) {
	typ, ok := graph.LiteralType(v)
	if !ok {
		return nil, fmt.Errorf("no constant node for %T", v)
	}
	var kind, param string
	switch typ {
	case graph.TypeBoolean:
		kind, param = "Boolean", "boolean"
	case graph.TypeInteger:
		kind, param = "Integer", "integer"
	case graph.TypeFloat:
		kind, param = "Value", "value"
	case graph.TypeVector:
		kind, param = "Vector", "vector"
	case graph.TypeString:
		kind, param = "String", "string"
	default:
		return nil, fmt.Errorf("no constant node for %s values", typ)
	}
	norm, err := graph.ConvertLiteral(v, typ)
	if err != nil {
		return nil, err
	}
	n, err := t.Node(kind, nil, map[string]any{param: norm})
	if err != nil {
		return nil, err
	}
	return n.Out(), nil
}

// ---------------------------------------------------------------------------
// Group interface
// ---------------------------------------------------------------------------

// Input adds a group input socket and returns the value it carries. Geometry
// inputs come back as *Geometry.
func (t *Tree) Input(typ graph.SocketType, name string, def any, description string) (Socket, error) {
	ref, err := t.host.NewInputSocket(typ, name, def, description)
	if err != nil {
		return nil, err
	}
	return Wrap(t.port(ref, typ)), nil
}

// GeometryInput returns a geometry group input. An empty name means
// "Geometry". The host reuses an existing socket of that name, but every
// call returns a new *Geometry, so a jump through one handle is not seen by
// the others.
func (t *Tree) GeometryInput(name string) (*Geometry, error) {
	if name == "" {
		name = "Geometry"
	}
	s, err := t.Input(graph.TypeGeometry, name, nil, "")
	if err != nil {
		return nil, err
	}
	return s.(*Geometry), nil
}

// Output links value into a new group output socket. Literals are stored
// through a constant node.
func (t *Tree) Output(value any, name string) error {
	p, err := t.operand(value)
	if err != nil {
		return fmt.Errorf("output %s: %w", name, err)
	}
	if name == "" {
		name = p.typ.String()
	}
	in, err := t.host.NewOutputSocket(p.typ, name)
	if err != nil {
		return err
	}
	return t.host.Link(p.ref, in)
}

// ---------------------------------------------------------------------------
// Resources
// ---------------------------------------------------------------------------

// Resource resolves v, a graph.Resource or a name, to a resource of kind.
func (t *Tree) Resource(kind graph.ResourceKind, v any) (graph.Resource, error) {
	switch x := v.(type) {
	case graph.Resource:
		if x.Kind != kind {
			return graph.Resource{}, fmt.Errorf("expected %s, got %s", kind, x)
		}
		return x, nil
	case string:
		if t.resources != nil {
			if r, ok := t.resources.Lookup(kind, x); ok {
				return r, nil
			}
		}
		return graph.Resource{}, &ResourceNotFoundError{Kind: kind, Name: x}
	}
	return graph.Resource{}, fmt.Errorf("expected %s name, got %T", kind, v)
}

// resourceOperand passes sockets through and resolves everything else as a
// resource of kind.
func (t *Tree) resourceOperand(kind graph.ResourceKind, v any) (any, error) {
	if _, ok := v.(Socket); ok {
		return v, nil
	}
	return t.Resource(kind, v)
}

// ObjectInfo creates an Object Info node for an object name, resource or
// Object port.
func (t *Tree) ObjectInfo(object any) (*Node, error) {
	obj, err := t.resourceOperand(graph.ResourceObject, object)
	if err != nil {
		return nil, err
	}
	return t.Node("Object Info", map[string]any{"Object": obj}, nil)
}
