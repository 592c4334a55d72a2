// Package host provides Memory, an in-memory node graph that implements
// graph.Handle. It applies the host's own rules: kinds come from a catalog,
// literals must fit their sockets, links must be type compatible and acyclic.
package host

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/chazu/geonodes/internal/logging"
	"github.com/chazu/geonodes/pkg/catalog"
	"github.com/chazu/geonodes/pkg/graph"
)

// Names of the two interface node kinds.
const (
	GroupInput  = "Group Input"
	GroupOutput = "Group Output"
)

// zoneKinds maps each zone input kind to the output kind it pairs with.
var zoneKinds = map[string]string{
	"Simulation Input": "Simulation Output",
}

// Node is one node stored in the graph.
type Node struct {
	ID       graph.NodeID
	Kind     string
	Inputs   []graph.SocketDef
	Outputs  []graph.SocketDef
	Params   map[string]any
	Literals map[string]any
}

func (n *Node) input(name string) (graph.SocketDef, bool) {
	for _, s := range n.Inputs {
		if s.Name == name || catalog.PyName(s.Name) == name {
			return s, true
		}
	}
	return graph.SocketDef{}, false
}

func (n *Node) output(name string) (graph.SocketDef, bool) {
	for _, s := range n.Outputs {
		if s.Name == name {
			return s, true
		}
	}
	return graph.SocketDef{}, false
}

func (n *Node) handle() graph.NodeHandle {
	return graph.NodeHandle{
		ID:      n.ID,
		Kind:    n.Kind,
		Inputs:  append([]graph.SocketDef(nil), n.Inputs...),
		Outputs: append([]graph.SocketDef(nil), n.Outputs...),
	}
}

// Link is one connection from an output socket to an input socket.
type Link struct {
	From graph.OutputRef `json:"from" yaml:"from"`
	To   graph.InputRef  `json:"to" yaml:"to"`
}

// InterfaceSocket is one socket of the group interface.
type InterfaceSocket struct {
	Name        string           `json:"name" yaml:"name"`
	Type        graph.SocketType `json:"type" yaml:"type"`
	Default     any              `json:"default,omitempty" yaml:"default,omitempty"`
	Description string           `json:"description,omitempty" yaml:"description,omitempty"`
}

// Memory is an in-memory host graph. It is not safe for concurrent use.
type Memory struct {
	Name  string
	Kind  graph.TreeKind
	Nodes map[graph.NodeID]*Node

	order   []graph.NodeID
	links   []Link
	inputs  []InterfaceSocket
	outputs []InterfaceSocket
	names   map[string]int
	creates int
	zones   map[graph.NodeID]graph.NodeID // zone input -> zone output

	catalog *catalog.Catalog
	log     *slog.Logger
}

var _ graph.Handle = (*Memory)(nil)

// Option configures a Memory.
type Option func(*Memory)

// WithKind sets the tree kind. The default is a geometry tree.
func WithKind(k graph.TreeKind) Option { return func(m *Memory) { m.Kind = k } }

// WithCatalog replaces the embedded node catalog.
func WithCatalog(c *catalog.Catalog) Option { return func(m *Memory) { m.catalog = c } }

// WithLogger sets the logger used for node and link events.
func WithLogger(l *slog.Logger) Option { return func(m *Memory) { m.log = l } }

// New creates an empty graph.
func New(name string, opts ...Option) *Memory {
	m := &Memory{
		Name:    name,
		Kind:    graph.TreeGeometry,
		Nodes:   make(map[graph.NodeID]*Node),
		names:   make(map[string]int),
		zones:   make(map[graph.NodeID]graph.NodeID),
		catalog: catalog.Default(),
		log:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Catalog returns the catalog the graph validates against.
func (m *Memory) Catalog() *catalog.Catalog { return m.catalog }

// nextID names nodes the way the host does: "Math", "Math.001", ...
func (m *Memory) nextID(kind string) graph.NodeID {
	n := m.names[kind]
	m.names[kind] = n + 1
	if n == 0 {
		return graph.NodeID(kind)
	}
	return graph.NodeID(fmt.Sprintf("%s.%03d", kind, n))
}

func (m *Memory) add(n *Node) {
	m.Nodes[n.ID] = n
	m.order = append(m.order, n.ID)
}

// CreateNode implements graph.Handle.
func (m *Memory) CreateNode(kind string, literals, params map[string]any) (graph.NodeHandle, error) {
	fail := func(format string, args ...any) (graph.NodeHandle, error) {
		return graph.NodeHandle{}, &graph.HostGraphError{Op: "create", Err: fmt.Errorf(format, args...)}
	}

	k, ok := m.catalog.Kind(kind)
	if !ok {
		return fail("unknown node kind %q", kind)
	}
	if k.Name == GroupInput || k.Name == GroupOutput {
		return fail("%s sockets are added through the group interface", k.Name)
	}
	if !k.InTree(m.Kind) {
		return fail("%s is not available in %s trees", k.Name, m.Kind)
	}

	resolved, ins, outs, err := m.catalog.Resolve(k, params)
	if err != nil {
		return fail("%v", err)
	}

	n := &Node{
		Kind:     k.Name,
		Inputs:   ins,
		Outputs:  outs,
		Params:   resolved,
		Literals: make(map[string]any, len(literals)),
	}
	for name, v := range literals {
		def, ok := n.input(name)
		if !ok {
			return fail("%s has no input %q", k.Name, name)
		}
		if def.Multi {
			return fail("%s input %s only takes links", k.Name, def.Name)
		}
		conv, err := graph.ConvertLiteral(v, def.Type)
		if err != nil {
			return fail("%s input %s: %v", k.Name, def.Name, err)
		}
		n.Literals[def.Name] = conv
	}

	n.ID = m.nextID(k.Name)
	m.add(n)
	m.creates++
	m.log.Debug("node created", "tree", m.Name, "node", n.ID, "kind", k.Name)
	return n.handle(), nil
}

// Link implements graph.Handle. Linking into a single input that is already
// linked replaces the old link.
func (m *Memory) Link(from graph.OutputRef, to graph.InputRef) error {
	fail := func(format string, args ...any) error {
		return &graph.HostGraphError{Op: "link", Node: to.Node, Err: fmt.Errorf(format, args...)}
	}

	src, ok := m.Nodes[from.Node]
	if !ok {
		return fail("no source node %s", from.Node)
	}
	out, ok := src.output(from.Socket)
	if !ok {
		return fail("%s has no output %q", src.ID, from.Socket)
	}
	dst, ok := m.Nodes[to.Node]
	if !ok {
		return fail("no target node %s", to.Node)
	}
	in, ok := dst.input(to.Socket)
	if !ok {
		return fail("%s has no input %q", dst.ID, to.Socket)
	}
	if !graph.CanLink(out.Type, in.Type) {
		return fail("cannot link %s output %s into %s input %s", out.Type, from, in.Type, to)
	}
	if from.Node == to.Node || m.reaches(to.Node, from.Node) {
		return fail("link %s -> %s would create a cycle", from, to)
	}

	to.Socket = in.Name
	if !in.Multi {
		kept := m.links[:0]
		for _, l := range m.links {
			if l.To != to {
				kept = append(kept, l)
			}
		}
		m.links = kept
	}
	m.links = append(m.links, Link{From: from, To: to})
	m.log.Debug("linked", "tree", m.Name, "from", from.String(), "to", to.String())
	return nil
}

// reaches reports whether a path of links leads from node a to node b.
func (m *Memory) reaches(a, b graph.NodeID) bool {
	seen := map[graph.NodeID]bool{}
	stack := []graph.NodeID{a}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == b {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, l := range m.links {
			if l.From.Node == id {
				stack = append(stack, l.To.Node)
			}
		}
	}
	return false
}

func (m *Memory) interfaceNode(kind string) *Node {
	if n, ok := m.Nodes[graph.NodeID(kind)]; ok {
		return n
	}
	n := &Node{ID: m.nextID(kind), Kind: kind, Params: map[string]any{}, Literals: map[string]any{}}
	m.add(n)
	return n
}

// NewInputSocket implements graph.Handle. Asking again for an existing name
// with the same type returns the existing socket.
func (m *Memory) NewInputSocket(typ graph.SocketType, name string, def any, description string) (graph.OutputRef, error) {
	fail := func(format string, args ...any) (graph.OutputRef, error) {
		return graph.OutputRef{}, &graph.HostGraphError{Op: "input", Node: GroupInput, Err: fmt.Errorf(format, args...)}
	}
	if !typ.Valid() {
		return fail("invalid socket type %s", typ)
	}
	if name == "" {
		return fail("socket name is required")
	}

	n := m.interfaceNode(GroupInput)
	if s, ok := n.output(name); ok {
		if s.Type != typ {
			return fail("socket %q already exists as %s", name, s.Type)
		}
		return graph.OutputRef{Node: n.ID, Socket: name}, nil
	}

	if def != nil {
		conv, err := graph.ConvertLiteral(def, typ)
		if err != nil {
			return fail("default for %q: %v", name, err)
		}
		def = conv
	}
	n.Outputs = append(n.Outputs, graph.SocketDef{Name: name, Type: typ})
	m.inputs = append(m.inputs, InterfaceSocket{Name: name, Type: typ, Default: def, Description: description})
	return graph.OutputRef{Node: n.ID, Socket: name}, nil
}

// NewOutputSocket implements graph.Handle.
func (m *Memory) NewOutputSocket(typ graph.SocketType, name string) (graph.InputRef, error) {
	fail := func(format string, args ...any) (graph.InputRef, error) {
		return graph.InputRef{}, &graph.HostGraphError{Op: "output", Node: GroupOutput, Err: fmt.Errorf(format, args...)}
	}
	if !typ.Valid() {
		return fail("invalid socket type %s", typ)
	}
	if name == "" {
		return fail("socket name is required")
	}

	n := m.interfaceNode(GroupOutput)
	if s, ok := n.input(name); ok {
		if s.Type != typ {
			return fail("socket %q already exists as %s", name, s.Type)
		}
		return graph.InputRef{Node: n.ID, Socket: name}, nil
	}
	n.Inputs = append(n.Inputs, graph.SocketDef{Name: name, Type: typ})
	m.outputs = append(m.outputs, InterfaceSocket{Name: name, Type: typ})
	return graph.InputRef{Node: n.ID, Socket: name}, nil
}

// ---------------------------------------------------------------------------
// Zones
// ---------------------------------------------------------------------------

// PairZone implements graph.Handle. Each node can belong to one zone only.
func (m *Memory) PairZone(input, output graph.NodeID) error {
	fail := func(format string, args ...any) error {
		return &graph.HostGraphError{Op: "zone", Node: input, Err: fmt.Errorf(format, args...)}
	}

	in, ok := m.Nodes[input]
	if !ok {
		return fail("no node %s", input)
	}
	out, ok := m.Nodes[output]
	if !ok {
		return fail("no node %s", output)
	}
	want, ok := zoneKinds[in.Kind]
	if !ok {
		return fail("%s does not open a zone", in.Kind)
	}
	if out.Kind != want {
		return fail("%s pairs with %s, not %s", in.Kind, want, out.Kind)
	}
	if prev, ok := m.zones[input]; ok {
		return fail("already paired with %s", prev)
	}
	for _, o := range m.zones {
		if o == output {
			return fail("%s already closes another zone", output)
		}
	}

	m.zones[input] = output
	m.log.Debug("zone paired", "tree", m.Name, "input", input, "output", output)
	return nil
}

// NewZoneItem implements graph.Handle.
func (m *Memory) NewZoneItem(input graph.NodeID, typ graph.SocketType, name string) error {
	fail := func(format string, args ...any) error {
		return &graph.HostGraphError{Op: "zone", Node: input, Err: fmt.Errorf(format, args...)}
	}

	output, ok := m.zones[input]
	if !ok {
		return fail("not the input of a paired zone")
	}
	if !typ.Stateful() {
		return fail("zone items cannot hold %s values", typ)
	}
	if name == "" {
		return fail("item name is required")
	}
	in, out := m.Nodes[input], m.Nodes[output]
	for _, n := range []*Node{in, out} {
		_, hasIn := n.input(name)
		_, hasOut := n.output(name)
		if hasIn || hasOut {
			return fail("%s already has a socket %q", n.ID, name)
		}
	}

	def := graph.SocketDef{Name: name, Type: typ}
	in.Inputs = append(in.Inputs, def)
	in.Outputs = append(in.Outputs, def)
	out.Inputs = append(out.Inputs, def)
	out.Outputs = append(out.Outputs, def)
	return nil
}

// Zone returns the output node paired with a zone input node.
func (m *Memory) Zone(input graph.NodeID) (graph.NodeID, bool) {
	out, ok := m.zones[input]
	return out, ok
}

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Get returns the node with the given ID, or nil.
func (m *Memory) Get(id graph.NodeID) *Node {
	return m.Nodes[id]
}

// MustGet returns the node with the given ID, or panics.
func (m *Memory) MustGet(id graph.NodeID) *Node {
	n := m.Get(id)
	if n == nil {
		panic(fmt.Sprintf("host: no node %s", id))
	}
	return n
}

// List returns all nodes in creation order.
func (m *Memory) List() []*Node {
	out := make([]*Node, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.Nodes[id])
	}
	return out
}

// OfKind returns the nodes of the given kind in creation order.
func (m *Memory) OfKind(kind string) []*Node {
	var out []*Node
	for _, id := range m.order {
		if n := m.Nodes[id]; n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

// NodeCount returns the total number of nodes, interface nodes included.
func (m *Memory) NodeCount() int {
	return len(m.Nodes)
}

// CreateCount returns how many CreateNode calls succeeded.
func (m *Memory) CreateCount() int {
	return m.creates
}

// Links returns a copy of all links in creation order.
func (m *Memory) Links() []Link {
	return append([]Link(nil), m.links...)
}

// LinksInto returns the links feeding the named input, in link order.
func (m *Memory) LinksInto(to graph.InputRef) []Link {
	var out []Link
	for _, l := range m.links {
		if l.To == to {
			out = append(out, l)
		}
	}
	return out
}

// Source returns the output linked into a single input.
func (m *Memory) Source(to graph.InputRef) (graph.OutputRef, bool) {
	ls := m.LinksInto(to)
	if len(ls) == 0 {
		return graph.OutputRef{}, false
	}
	return ls[len(ls)-1].From, true
}

// Literal returns the constant stored on an input socket.
func (m *Memory) Literal(to graph.InputRef) (any, bool) {
	n := m.Nodes[to.Node]
	if n == nil {
		return nil, false
	}
	v, ok := n.Literals[to.Socket]
	return v, ok
}

// Interface returns copies of the group input and output sockets.
func (m *Memory) Interface() (inputs, outputs []InterfaceSocket) {
	return append([]InterfaceSocket(nil), m.inputs...), append([]InterfaceSocket(nil), m.outputs...)
}

// sortedIDs returns node IDs in a stable order for deterministic output.
func (m *Memory) sortedIDs() []graph.NodeID {
	ids := make([]graph.NodeID, 0, len(m.Nodes))
	for id := range m.Nodes {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
