package graph

import (
	"fmt"
	"sort"
	"strings"
)

// Handle is a single node graph owned by the host. Implementations are not
// required to be safe for concurrent use.
type Handle interface {
	// CreateNode adds a node of the given kind. literals holds constant
	// values for input sockets keyed by socket name; params holds node
	// properties such as "operation" or "data_type".
	CreateNode(kind string, literals, params map[string]any) (NodeHandle, error)

	// Link connects an output socket to an input socket.
	Link(from OutputRef, to InputRef) error

	// NewInputSocket adds a socket to the group interface and returns the
	// output that carries its value inside the tree.
	NewInputSocket(typ SocketType, name string, def any, description string) (OutputRef, error)

	// NewOutputSocket adds a socket to the group output and returns the
	// input to link the result into.
	NewOutputSocket(typ SocketType, name string) (InputRef, error)

	// PairZone joins a zone input node to its output node, as the host does
	// for simulation zones.
	PairZone(input, output NodeID) error

	// NewZoneItem adds a state item to the zone opened by input. Both zone
	// nodes gain an input and an output socket called name.
	NewZoneItem(input NodeID, typ SocketType, name string) error
}

// HostGraphError is any failure reported by the host graph: unknown kinds,
// bad links, incompatible literals.
type HostGraphError struct {
	Op   string // "create", "link", "input", "output", "zone"
	Node NodeID // zero when not tied to a node
	Err  error
}

func (e *HostGraphError) Error() string {
	if e.Node.IsZero() {
		return fmt.Sprintf("host %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("host %s %s: %v", e.Op, e.Node, e.Err)
}

func (e *HostGraphError) Unwrap() error { return e.Err }

// ---------------------------------------------------------------------------
// Resources
// ---------------------------------------------------------------------------

// ResourceKind names a category of host data-block.
type ResourceKind string

const (
	ResourceMaterial   ResourceKind = "material"
	ResourceObject     ResourceKind = "object"
	ResourceImage      ResourceKind = "image"
	ResourceCollection ResourceKind = "collection"
)

// ResourceKindFor returns the resource kind stored in sockets of type t.
func ResourceKindFor(t SocketType) (ResourceKind, bool) {
	switch t {
	case TypeMaterial:
		return ResourceMaterial, true
	case TypeObject:
		return ResourceObject, true
	case TypeImage:
		return ResourceImage, true
	case TypeCollection:
		return ResourceCollection, true
	}
	return "", false
}

// ParseResourceKind parses a resource kind name.
func ParseResourceKind(s string) (ResourceKind, error) {
	k := ResourceKind(strings.ToLower(s))
	switch k {
	case ResourceMaterial, ResourceObject, ResourceImage, ResourceCollection:
		return k, nil
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// Resource is a handle to a named host data-block.
type Resource struct {
	Kind ResourceKind `json:"kind" yaml:"kind"`
	Name string       `json:"name" yaml:"name"`
}

func (r Resource) String() string { return fmt.Sprintf("%s:%s", r.Kind, r.Name) }

// Resources looks up host data-blocks by name.
type Resources interface {
	Lookup(kind ResourceKind, name string) (Resource, bool)
}

// Library is an in-memory Resources.
type Library struct {
	items map[ResourceKind]map[string]Resource
}

// NewLibrary returns a library holding the given resources.
func NewLibrary(rs ...Resource) *Library {
	l := &Library{items: make(map[ResourceKind]map[string]Resource)}
	for _, r := range rs {
		l.Add(r)
	}
	return l
}

// Add registers r, replacing any resource with the same kind and name.
func (l *Library) Add(r Resource) {
	m, ok := l.items[r.Kind]
	if !ok {
		m = make(map[string]Resource)
		l.items[r.Kind] = m
	}
	m[r.Name] = r
}

// Lookup implements Resources.
func (l *Library) Lookup(kind ResourceKind, name string) (Resource, bool) {
	r, ok := l.items[kind][name]
	return r, ok
}

// Names returns the sorted names registered for kind.
func (l *Library) Names(kind ResourceKind) []string {
	names := make([]string, 0, len(l.items[kind]))
	for n := range l.items[kind] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
